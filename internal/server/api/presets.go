package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/atomesh/internal/config"
	"github.com/ayusman/atomesh/internal/store"
)

// PresetHandler handles HTTP requests for stored tunable presets.
type PresetHandler struct {
	store *store.Store
}

// NewPresetHandler creates a new PresetHandler with the given store.
func NewPresetHandler(s *store.Store) *PresetHandler {
	return &PresetHandler{store: s}
}

// ServeHTTP routes /api/presets and /api/presets/{id}.
func (h *PresetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/presets")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// createPresetRequest names a new preset. Tunables win over Base; with
// neither the defaults are stored.
type createPresetRequest struct {
	Name     string           `json:"name"`
	Base     string           `json:"base,omitempty"`
	Tunables *config.Tunables `json:"tunables,omitempty"`
}

type presetResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Tunables  config.Tunables `json:"tunables"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

type listPresetsResponse struct {
	Presets []presetResponse `json:"presets"`
	Builtin []string         `json:"builtin"`
}

func toPresetResponse(p *store.Preset) presetResponse {
	return presetResponse{
		ID:        p.ID,
		Name:      p.Name,
		Tunables:  p.Tunables,
		CreatedAt: timestamp(p.CreatedAt),
		UpdatedAt: timestamp(p.UpdatedAt),
	}
}

// list handles GET /api/presets.
func (h *PresetHandler) list(w http.ResponseWriter, r *http.Request) {
	presets, err := h.store.Presets().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list presets")
		return
	}

	response := listPresetsResponse{
		Presets: make([]presetResponse, 0, len(presets)),
		Builtin: config.ListPresets(),
	}
	for _, p := range presets {
		response.Presets = append(response.Presets, toPresetResponse(p))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/presets/{id}.
func (h *PresetHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.store.Presets().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Preset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get preset")
		return
	}

	writeJSON(w, http.StatusOK, toPresetResponse(p))
}

// create handles POST /api/presets.
func (h *PresetHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createPresetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	tunables := config.DefaultTunables()
	switch {
	case req.Tunables != nil:
		tunables = *req.Tunables
	case req.Base != "":
		base := config.GetPreset(req.Base)
		if base == nil {
			writeError(w, http.StatusBadRequest, "Unknown base preset")
			return
		}
		tunables = *base
	}

	if err := tunables.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := &store.Preset{Name: req.Name, Tunables: tunables}
	if err := h.store.Presets().Create(p); err != nil {
		if errors.Is(err, store.ErrNameTaken) {
			writeError(w, http.StatusConflict, "Preset name already in use")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create preset")
		return
	}

	writeJSON(w, http.StatusCreated, toPresetResponse(p))
}

// delete handles DELETE /api/presets/{id}.
func (h *PresetHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Presets().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Preset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete preset")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
