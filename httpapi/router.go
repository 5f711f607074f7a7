package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App, gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", app.rootHandler)
	mux.HandleFunc("/health", app.healthHandler)
	mux.HandleFunc("/api/v1/proposals", app.createProposalHandler)
	mux.HandleFunc("/api/v1/stats", app.statsHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return app.WithRequestID(app.WithCORS(app.WithLogging(mux)))
}
