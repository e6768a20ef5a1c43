package core

import "github.com/prometheus/client_golang/prometheus"

// MetricsRegistry assembles a dedicated registry from every plugin's
// collectors, keeping the hub's scrape surface free of the default Go
// runtime noise. Duplicate metric names across plugins panic at startup,
// which is the point: they indicate a plugin id collision.
func MetricsRegistry(plugins []Plugin) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	for _, plugin := range plugins {
		for _, collector := range plugin.Collectors() {
			registry.MustRegister(collector)
		}
	}
	return registry
}
