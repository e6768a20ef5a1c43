package router

import (
	"net/http"

	"github.com/joshp123/condor/internal/core"
	"github.com/joshp123/condor/internal/server"
	"github.com/prometheus/client_golang/prometheus"
)

// New builds the hub mux: core handlers plus every plugin's HTTP surface.
func New(plugins []core.Plugin, metricsRegistry *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", server.HealthHandler)
	mux.Handle("/metrics", server.MetricsHandler(metricsRegistry))
	mux.Handle("/dashboards/", server.DashboardsHandler(core.DashboardsMap(plugins)))
	registry := server.RegistryHandler(core.NewRegistryService(plugins))
	mux.Handle("/plugins", registry)
	mux.Handle("/plugins/", registry)

	for _, p := range plugins {
		if registrant, ok := p.(core.HTTPRegistrant); ok {
			registrant.RegisterHTTP(mux)
		}
	}

	return mux
}
