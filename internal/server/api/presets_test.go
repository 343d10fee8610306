package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/atomesh/internal/config"
	"github.com/ayusman/atomesh/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPresetHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewPresetHandler(s)

	if err := s.Presets().Create(&store.Preset{ID: "p-1", Name: "mine", Tunables: config.DefaultTunables()}); err != nil {
		t.Fatalf("failed to create preset: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/presets", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response listPresetsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Presets) != 1 || response.Presets[0].ID != "p-1" {
		t.Errorf("unexpected presets: %+v", response.Presets)
	}
	if len(response.Builtin) != len(config.ListPresets()) {
		t.Errorf("expected %d builtin presets, got %d", len(config.ListPresets()), len(response.Builtin))
	}
}

func TestPresetHandler_Create(t *testing.T) {
	s := newTestStore(t)
	handler := NewPresetHandler(s)

	t.Run("from base preset", func(t *testing.T) {
		rec := postJSON(t, handler, "/api/presets", createPresetRequest{Name: "thick", Base: "dense"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
		}

		var response presetResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.ID == "" {
			t.Error("expected generated ID")
		}
		if want := config.GetPreset("dense").ParticleCount; response.Tunables.ParticleCount != want {
			t.Errorf("expected %d particles, got %d", want, response.Tunables.ParticleCount)
		}
	})

	t.Run("explicit tunables", func(t *testing.T) {
		tun := config.DefaultTunables()
		tun.Friction = 0.5
		rec := postJSON(t, handler, "/api/presets", createPresetRequest{Name: "sticky", Tunables: &tun})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
		}

		p, err := s.Presets().GetByName("sticky")
		if err != nil {
			t.Fatalf("preset not stored: %v", err)
		}
		if p.Tunables.Friction != 0.5 {
			t.Errorf("expected friction 0.5, got %v", p.Tunables.Friction)
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		rec := postJSON(t, handler, "/api/presets", createPresetRequest{Name: "thick"})
		if rec.Code != http.StatusConflict {
			t.Errorf("expected status %d, got %d", http.StatusConflict, rec.Code)
		}
	})

	t.Run("validation", func(t *testing.T) {
		bad := config.DefaultTunables()
		bad.SmoothFactor = 2

		tests := []struct {
			name string
			body any
		}{
			{"missing name", createPresetRequest{}},
			{"unknown base", createPresetRequest{Name: "x", Base: "nope"}},
			{"invalid tunables", createPresetRequest{Name: "y", Tunables: &bad}},
			{"not json", "{"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := postJSON(t, handler, "/api/presets", tt.body)
				if rec.Code != http.StatusBadRequest {
					t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
				}
			})
		}
	})
}

func TestPresetHandler_GetAndDelete(t *testing.T) {
	s := newTestStore(t)
	handler := NewPresetHandler(s)

	p := &store.Preset{Name: "gone", Tunables: config.DefaultTunables()}
	if err := s.Presets().Create(p); err != nil {
		t.Fatalf("failed to create preset: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/presets/"+p.ID, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET expected status %d, got %d", http.StatusOK, rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/presets/"+p.ID, nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		req = httptest.NewRequest(method, "/api/presets/"+p.ID, nil)
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s after delete expected status %d, got %d", method, http.StatusNotFound, rec.Code)
		}
	}
}

func TestPresetHandler_MethodNotAllowed(t *testing.T) {
	handler := NewPresetHandler(newTestStore(t))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPut, "/api/presets"},
		{http.MethodPatch, "/api/presets/abc"},
		{http.MethodPost, "/api/presets/abc"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, http.StatusMethodNotAllowed, rec.Code)
		}
	}
}
