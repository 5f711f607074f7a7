package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/c360studio/dealdesk/proposal"
)

func (a *App) rootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	info := map[string]any{
		"service":         "AI-Powered Deal Desk",
		"version":         a.Version,
		"generation_time": "60 seconds",
		"pricing": map[string]string{
			"solo":       "$149/month",
			"team":       "$499/month",
			"enterprise": "$1,499/month",
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(info)
}

func (a *App) healthHandler(w http.ResponseWriter, _ *http.Request) {
	// Liveness only: the external generative service being down never
	// makes this process unhealthy, the fallback path still serves.
	payload := map[string]any{
		"status":                "healthy",
		"timestamp":             time.Now().UTC().Format(time.RFC3339),
		"version":               a.Version,
		"generative_configured": !a.generator.FallbackOnly(),
		"uptime_sec":            time.Since(a.started).Seconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

type generationResult struct {
	sections []proposal.Section
	meta     proposal.Metadata
	err      error
}

func (a *App) createProposalHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return
	}

	var req proposal.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	cfg := a.Config()
	validator := proposal.NewValidator(cfg.Server.MinCompanyNameLen)
	if err := validator.Validate(&req); err != nil {
		var verr *proposal.ValidationError
		if errors.As(err, &verr) {
			WriteValidationError(w, verr)
			return
		}
		WriteJSONError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	// Content generation and pricing are independent; run the bounded
	// external call while tiers compute.
	genCh := make(chan generationResult, 1)
	go func() {
		sections, meta, err := a.generator.Generate(r.Context(), &req)
		genCh <- generationResult{sections: sections, meta: meta, err: err}
	}()

	tiers, recommended := proposal.ComputeTiers(&req, cfg.Pricing)

	gen := <-genCh
	if gen.err != nil {
		// Client went away; nothing to respond to and nothing to count.
		a.logger.Debug("Proposal request abandoned",
			"company", req.CompanyName,
			"request_id", RequestIDFromContext(r.Context()))
		return
	}

	prop, err := proposal.Assemble(&req, tiers, recommended, gen.sections, gen.meta)
	if err != nil {
		a.logger.Error("Proposal assembly failed",
			"company", req.CompanyName,
			"request_id", RequestIDFromContext(r.Context()),
			"error", err)
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(prop)

	// Response is determined; side effects must not delay it further.
	a.stats.Record(prop.RecommendedTier, prop.Metadata.FallbackUsed)
	go func() {
		_ = a.publisher.PublishGenerated(prop)
	}()

	a.logger.Info("proposal_generated",
		"proposal_id", prop.ProposalID,
		"company", prop.CompanyName,
		"recommended_tier", prop.RecommendedTier,
		"fallback_used", prop.Metadata.FallbackUsed,
		"request_id", RequestIDFromContext(r.Context()),
	)
}

func (a *App) statsHandler(w http.ResponseWriter, _ *http.Request) {
	snapshot := a.stats.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snapshot)
}
