package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/joshp123/condor/internal/core"
)

// HealthHandler returns a simple OK for liveness checks.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// RegistryHandler serves the plugin registry as JSON.
//
//	GET /plugins           — list
//	GET /plugins/{id}      — describe
func RegistryHandler(registry *core.RegistryService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/plugins"), "/")
		if rest == "" {
			WriteJSON(w, http.StatusOK, registry.ListPlugins())
			return
		}

		descriptor, ok := registry.DescribePlugin(rest)
		if !ok {
			http.NotFound(w, r)
			return
		}
		WriteJSON(w, http.StatusOK, descriptor)
	})
}

// WriteJSON encodes a JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError encodes a JSON error body with the given status.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}
