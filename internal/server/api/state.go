package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/handlink/internal/action"
)

// StateSource is the live session state exposed over HTTP.
type StateSource interface {
	TrackingServiceState() action.TrackingServiceState
	HandPresenceState() action.HandPresenceState
	InteractionZoneState() action.InteractionZoneState
	ServiceVersion() string
	Plugins() []string
	IsEnabled() bool
	SetEnabled(enabled bool)
}

// StateHandler serves GET and PUT /api/state.
type StateHandler struct {
	source StateSource
}

// NewStateHandler creates a new StateHandler.
func NewStateHandler(source StateSource) *StateHandler {
	return &StateHandler{source: source}
}

type stateResponse struct {
	TrackingServiceState action.TrackingServiceState `json:"trackingServiceState"`
	HandPresence         action.HandPresenceState    `json:"handPresence"`
	InteractionZone      action.InteractionZoneState `json:"interactionZone"`
	ServiceVersion       string                      `json:"serviceVersion,omitempty"`
	Plugins              []string                    `json:"plugins"`
	Enabled              bool                        `json:"enabled"`
}

type updateStateRequest struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP implements the http.Handler interface.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.snapshot())
	case http.MethodPut:
		var req updateStateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		h.source.SetEnabled(*req.Enabled)
		writeJSON(w, http.StatusOK, h.snapshot())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *StateHandler) snapshot() stateResponse {
	plugins := h.source.Plugins()
	if plugins == nil {
		plugins = []string{}
	}
	return stateResponse{
		TrackingServiceState: h.source.TrackingServiceState(),
		HandPresence:         h.source.HandPresenceState(),
		InteractionZone:      h.source.InteractionZoneState(),
		ServiceVersion:       h.source.ServiceVersion(),
		Plugins:              plugins,
		Enabled:              h.source.IsEnabled(),
	}
}
