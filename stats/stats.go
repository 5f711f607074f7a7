// Package stats aggregates process-lifetime proposal counters. Counts are
// held in memory, reset only by process restart, and mirrored into
// Prometheus counters for scraping.
package stats

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Aggregator is the single mutation point for proposal statistics.
// It is safe for concurrent use; Record is cheap and never blocks the
// response path on anything slower than a mutex.
type Aggregator struct {
	mu       sync.Mutex
	total    uint64
	fallback uint64
	byTier   map[string]uint64

	promTotal    prometheus.Counter
	promFallback prometheus.Counter
	promByTier   *prometheus.CounterVec
}

// Snapshot is an immutable copy of the current counts.
type Snapshot struct {
	TotalProposalsGenerated uint64            `json:"total_proposals_generated"`
	FallbackCount           uint64            `json:"fallback_count"`
	TierRecommendations     map[string]uint64 `json:"tier_recommendations"`
}

// New creates an Aggregator with zeroed counts and registers its Prometheus
// counters on reg. Pass prometheus.DefaultRegisterer in production and a
// fresh registry in tests.
func New(reg prometheus.Registerer) *Aggregator {
	a := &Aggregator{
		byTier: make(map[string]uint64),
		promTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dealdesk",
			Name:      "proposals_generated_total",
			Help:      "Total proposals generated since process start.",
		}),
		promFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dealdesk",
			Name:      "proposals_fallback_total",
			Help:      "Proposals whose content came from the deterministic fallback.",
		}),
		promByTier: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dealdesk",
			Name:      "proposals_recommended_tier_total",
			Help:      "Proposals by recommended pricing tier.",
		}, []string{"tier"}),
	}

	if reg != nil {
		reg.MustRegister(a.promTotal, a.promFallback, a.promByTier)
	}

	return a
}

// Record increments the counters for one generated proposal. It is called
// after the response payload is already determined and must stay cheap.
func (a *Aggregator) Record(recommendedTier string, fallbackUsed bool) {
	a.mu.Lock()
	a.total++
	a.byTier[recommendedTier]++
	if fallbackUsed {
		a.fallback++
	}
	a.mu.Unlock()

	a.promTotal.Inc()
	a.promByTier.WithLabelValues(recommendedTier).Inc()
	if fallbackUsed {
		a.promFallback.Inc()
	}
}

// Snapshot returns an immutable copy of the current counts.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	byTier := make(map[string]uint64, len(a.byTier))
	for tier, n := range a.byTier {
		byTier[tier] = n
	}

	return Snapshot{
		TotalProposalsGenerated: a.total,
		FallbackCount:           a.fallback,
		TierRecommendations:     byTier,
	}
}
