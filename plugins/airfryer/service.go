package airfryer

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/joshp123/condor/internal/logger"
	"github.com/joshp123/condor/internal/server"
)

const discoverTimeout = 5 * time.Second

// service exposes the plugin over HTTP:
//
//	GET  /plugins/airfryer/status             — snapshot + sensor values
//	POST /plugins/airfryer/actions/{action}   — run an intent
//	POST /plugins/airfryer/discover           — SSDP scan for candidates
type service struct {
	poller    *Poller
	sequencer *Sequencer
	caps      Capabilities
	sensors   []Sensor
	log       *logger.Logger
}

func (s *service) register(mux *http.ServeMux) {
	mux.HandleFunc("/plugins/airfryer/status", s.handleStatus)
	mux.HandleFunc("/plugins/airfryer/actions/", s.handleAction)
	mux.HandleFunc("/plugins/airfryer/discover", s.handleDiscover)
}

func (s *service) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		server.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	status, ok := s.poller.Snapshot()
	body := map[string]any{
		"online":  ok,
		"model":   s.caps.Model,
		"sensors": Evaluate(s.sensors, status, ok),
	}
	if ok {
		body["raw"] = status
	}
	if last := s.poller.LastSuccess(); !last.IsZero() {
		body["fetched_at"] = last.Format(time.RFC3339)
	}
	if err := s.poller.LastError(); err != nil {
		body["error"] = err.Error()
	}

	server.WriteJSON(w, http.StatusOK, body)
}

func (s *service) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		server.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	action := strings.TrimPrefix(r.URL.Path, "/plugins/airfryer/actions/")
	if action == "" || strings.Contains(action, "/") {
		server.WriteError(w, http.StatusNotFound, "unknown action")
		return
	}

	// An empty body means "all defaults".
	var params ActionParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
		server.WriteError(w, http.StatusBadRequest, "bad parameters: "+err.Error())
		return
	}

	s.log.Infow("action requested", "action", action)
	if err := s.sequencer.Dispatch(r.Context(), action, params); err != nil {
		server.WriteError(w, actionErrorStatus(err), err.Error())
		return
	}

	server.WriteJSON(w, http.StatusOK, map[string]string{"result": "ok"})
}

func (s *service) handleDiscover(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		server.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	found, err := Discover(r.Context(), discoverTimeout)
	if err != nil {
		server.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]any{"devices": found})
}

// actionErrorStatus maps the device error taxonomy onto HTTP statuses:
// device-side failures are 502, everything else is caller error.
func actionErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnreachable),
		errors.Is(err, ErrBadResponse),
		errors.Is(err, ErrAuthExhausted):
		return http.StatusBadGateway
	case errors.Is(err, ErrUnsupported):
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}
