// Package httpapi exposes the HTTP API layer of the deal desk service.
package httpapi

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/c360studio/dealdesk/config"
	"github.com/c360studio/dealdesk/events"
	"github.com/c360studio/dealdesk/proposal"
	"github.com/c360studio/dealdesk/stats"
)

// App wires the proposal pipeline into HTTP handlers.
type App struct {
	Version string

	cfg       atomic.Pointer[config.Config]
	generator *proposal.Generator
	stats     *stats.Aggregator
	publisher *events.Publisher
	logger    *slog.Logger
	started   time.Time
}

// NewApp creates the HTTP application.
func NewApp(cfg *config.Config, gen *proposal.Generator, agg *stats.Aggregator, pub *events.Publisher, logger *slog.Logger, version string) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		Version:   version,
		generator: gen,
		stats:     agg,
		publisher: pub,
		logger:    logger,
		started:   time.Now(),
	}
	a.cfg.Store(cfg)
	return a
}

// Config returns the current configuration snapshot.
func (a *App) Config() *config.Config {
	return a.cfg.Load()
}

// UpdateConfig swaps in a reloaded configuration. Pricing constants,
// validation limits, and the CORS allow-list take effect on the next
// request; the generative client is fixed for the process lifetime.
func (a *App) UpdateConfig(cfg *config.Config) {
	a.cfg.Store(cfg)
	a.logger.Info("Configuration updated",
		"base_price", cfg.Pricing.BasePrice,
		"allowed_origins", len(cfg.Server.AllowedOrigins))
}
