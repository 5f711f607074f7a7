package httpapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/dealdesk/config"
	"github.com/c360studio/dealdesk/events"
	"github.com/c360studio/dealdesk/httpapi"
	"github.com/c360studio/dealdesk/proposal"
	"github.com/c360studio/dealdesk/stats"
)

type testEnv struct {
	app     *httpapi.App
	handler http.Handler
	stats   *stats.Aggregator
}

// newTestEnv builds an app in fallback-only mode so tests exercise the
// deterministic path without a generative endpoint.
func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())

	reg := prometheus.NewRegistry()
	agg := stats.New(reg)
	gen := proposal.NewGenerator(nil, time.Second, nil)
	pub := events.NewPublisher(nil, nil)

	app := httpapi.NewApp(cfg, gen, agg, pub, nil, "1.0.0")
	return &testEnv{
		app:     app,
		handler: httpapi.NewRouter(app, reg),
		stats:   agg,
	}
}

func postProposal(t *testing.T, env *testEnv, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/proposals", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func validRequestBody() map[string]any {
	return map[string]any{
		"company_name":    "Acme Corp",
		"industry":        "Manufacturing",
		"pain_points":     []string{"manual invoicing"},
		"budget_range":    "$50K",
		"decision_makers": []string{"CTO"},
		"competitors":     []string{"SAP"},
		"urgency":         "high",
	}
}

func TestCreateProposal_Success(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := postProposal(t, env, validRequestBody())
	require.Equal(t, http.StatusOK, rec.Code)

	var prop proposal.Proposal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prop))

	assert.True(t, strings.HasPrefix(prop.ProposalID, "PROP-"))
	assert.Equal(t, "Acme Corp", prop.CompanyName)
	assert.Equal(t, proposal.TierProfessional, prop.RecommendedTier)
	require.Len(t, prop.PricingTiers, 3)

	byName := map[string]float64{}
	for _, tier := range prop.PricingTiers {
		byName[tier.Name] = tier.Price
	}
	assert.InDelta(t, 5750, byName[proposal.TierStarter], 0.01)
	assert.InDelta(t, 11500, byName[proposal.TierProfessional], 0.01)
	assert.InDelta(t, 23000, byName[proposal.TierEnterprise], 0.01)

	names := make([]string, len(prop.Sections))
	for i, s := range prop.Sections {
		names[i] = s.Name
	}
	assert.Equal(t, proposal.DocumentSections, names)

	assert.True(t, prop.Metadata.FallbackUsed)
	assert.Equal(t, proposal.ModelFallback, prop.Metadata.ModelUsed)
}

func TestCreateProposal_RecordsStats(t *testing.T) {
	env := newTestEnv(t, nil)

	before := env.stats.Snapshot()
	rec := postProposal(t, env, validRequestBody())
	require.Equal(t, http.StatusOK, rec.Code)

	after := env.stats.Snapshot()
	assert.Equal(t, before.TotalProposalsGenerated+1, after.TotalProposalsGenerated)
	assert.Equal(t, before.FallbackCount+1, after.FallbackCount)
	assert.Equal(t, uint64(1), after.TierRecommendations[proposal.TierProfessional])
}

func TestCreateProposal_CombinedValidationErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	tooMany := make([]string, proposal.MaxListEntries+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("point %d", i)
	}
	body := map[string]any{
		"company_name": "",
		"pain_points":  tooMany,
	}

	rec := postProposal(t, env, body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var payload struct {
		Error  string `json:"error"`
		Fields []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "validation_error", payload.Error)

	fields := make([]string, len(payload.Fields))
	for i, f := range payload.Fields {
		fields[i] = f.Field
	}
	assert.ElementsMatch(t, []string{"company_name", "pain_points"}, fields)

	// Invalid input is never counted.
	assert.Zero(t, env.stats.Snapshot().TotalProposalsGenerated)
}

func TestCreateProposal_InvalidUrgency(t *testing.T) {
	env := newTestEnv(t, nil)

	body := validRequestBody()
	body["urgency"] = "critical"

	rec := postProposal(t, env, body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "urgency")
}

func TestCreateProposal_FallbackIsDeterministic(t *testing.T) {
	env := newTestEnv(t, nil)

	first := postProposal(t, env, validRequestBody())
	second := postProposal(t, env, validRequestBody())
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	var a, b proposal.Proposal
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))

	// IDs and timestamps differ per request; the generated content and
	// pricing must not.
	require.Len(t, a.Sections, len(b.Sections))
	for i := range a.Sections {
		if a.Sections[i].Name == proposal.SectionCover {
			continue // cover embeds the proposal ID
		}
		assert.Equal(t, a.Sections[i], b.Sections[i])
	}
	assert.Equal(t, a.PricingTiers, b.PricingTiers)
}

func TestCreateProposal_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/proposals", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCreateProposal_InvalidJSON(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/proposals", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "healthy", payload["status"])
	assert.Equal(t, "1.0.0", payload["version"])
	assert.Equal(t, false, payload["generative_configured"])
	assert.NotEmpty(t, payload["timestamp"])
}

func TestRoot(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "AI-Powered Deal Desk", payload["service"])
	pricing, ok := payload["pricing"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, pricing, "solo")
}

func TestStatsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	postProposal(t, env, validRequestBody())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var snap stats.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, uint64(1), snap.TotalProposalsGenerated)
	assert.Equal(t, uint64(1), snap.FallbackCount)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	postProposal(t, env, validRequestBody())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dealdesk_proposals_generated_total")
}

func TestCORS_AllowedOrigin(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.Server.AllowedOrigins = []string{"https://app.example.com"}
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.Server.AllowedOrigins = []string{"https://app.example.com"}
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.Server.AllowedOrigins = []string{"https://app.example.com"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/proposals", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRequestIDAssigned(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "client-supplied")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, "client-supplied", rec.Header().Get("X-Request-Id"))
}

func TestUpdateConfig_AffectsPricing(t *testing.T) {
	env := newTestEnv(t, nil)

	updated := config.DefaultConfig()
	updated.Pricing.BasePrice = 20000
	env.app.UpdateConfig(updated)

	rec := postProposal(t, env, validRequestBody())
	require.Equal(t, http.StatusOK, rec.Code)

	var prop proposal.Proposal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prop))
	for _, tier := range prop.PricingTiers {
		if tier.Name == proposal.TierProfessional {
			assert.InDelta(t, 23000, tier.Price, 0.01) // 20000 × 1.0 × 1.15
		}
	}
}
