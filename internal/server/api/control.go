package api

import (
	"net/http"

	"github.com/ayusman/atomesh/internal/app"
	"github.com/ayusman/atomesh/internal/config"
	"github.com/ayusman/atomesh/internal/gesture"
)

// Controller is the part of the running app the control endpoints need.
type Controller interface {
	Snapshot() app.Snapshot
	Request(contract bool) gesture.Command
	SetEnabled(enabled bool)
	IsEnabled() bool
	Settings() *config.Config
}

// ControlHandler serves /api/status, /api/layout, /api/tracking and /api/config.
type ControlHandler struct {
	ctl Controller
}

// NewControlHandler creates a new ControlHandler.
func NewControlHandler(ctl Controller) *ControlHandler {
	return &ControlHandler{ctl: ctl}
}

func (h *ControlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/status":
		h.status(w, r)
	case "/api/layout":
		h.layout(w, r)
	case "/api/tracking":
		h.tracking(w, r)
	case "/api/config":
		h.settings(w, r)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

type statusResponse struct {
	app.Snapshot
	Tracking bool `json:"tracking"`
}

type layoutRequest struct {
	Layout string `json:"layout"`
}

type layoutResponse struct {
	Command string `json:"command"`
	Status  string `json:"status"`
}

type trackingRequest struct {
	Enabled bool `json:"enabled"`
}

type configResponse struct {
	Tunables     config.Tunables `json:"tunables"`
	Addr         string          `json:"addr"`
	CameraID     int             `json:"camera_id"`
	InferenceFPS int             `json:"inference_fps"`
	RenderFPS    int             `json:"render_fps"`
	Preview      bool            `json:"preview"`
	MaxHands     int             `json:"max_hands"`
}

// status handles GET /api/status.
func (h *ControlHandler) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Snapshot: h.ctl.Snapshot(),
		Tracking: h.ctl.IsEnabled(),
	})
}

// layout handles POST /api/layout. A request swallowed by the cooldown or
// matching the current layout reports command "none".
func (h *ControlHandler) layout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req layoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var contract bool
	switch req.Layout {
	case "contracted":
		contract = true
	case "expanded":
	default:
		writeError(w, http.StatusBadRequest, "Layout must be \"contracted\" or \"expanded\"")
		return
	}

	cmd := h.ctl.Request(contract)
	writeJSON(w, http.StatusOK, layoutResponse{
		Command: cmd.String(),
		Status:  h.ctl.Snapshot().Status,
	})
}

// tracking handles GET and POST /api/tracking.
func (h *ControlHandler) tracking(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var req trackingRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.ctl.SetEnabled(req.Enabled)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, trackingRequest{Enabled: h.ctl.IsEnabled()})
}

// settings handles GET /api/config.
func (h *ControlHandler) settings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg := h.ctl.Settings()
	writeJSON(w, http.StatusOK, configResponse{
		Tunables:     cfg.Tunables,
		Addr:         cfg.Addr,
		CameraID:     cfg.CameraID,
		InferenceFPS: cfg.InferenceFPS,
		RenderFPS:    cfg.RenderFPS,
		Preview:      cfg.Preview,
		MaxHands:     cfg.Detector.MaxHands,
	})
}
