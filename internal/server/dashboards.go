package server

import "net/http"

// DashboardsHandler serves the pre-rendered dashboard JSON map. Dashboards
// are embedded at compile time, so the map never changes after startup and
// needs no locking.
func DashboardsHandler(dashboards map[string][]byte) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := dashboards[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	})
}
