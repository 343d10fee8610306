package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/atomesh/internal/app"
	"github.com/ayusman/atomesh/internal/store"
)

func TestAPI_PresetWorkflow(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	srv := New(Config{Store: s})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. Create a preset
	createBody := `{"name": "party", "base": "dense"}`
	resp, err := client.Post(ts.URL+"/api/presets", "application/json", bytes.NewBufferString(createBody))
	if err != nil {
		t.Fatalf("POST /api/presets error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	if created.Name != "party" {
		t.Errorf("created name = %s, want party", created.Name)
	}

	// 2. List presets
	resp, _ = client.Get(ts.URL + "/api/presets")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/presets status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var listed struct {
		Presets []struct {
			ID string `json:"id"`
		} `json:"presets"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if len(listed.Presets) != 1 {
		t.Fatalf("len(presets) = %d, want 1", len(listed.Presets))
	}

	// 3. Get single preset
	resp, _ = client.Get(ts.URL + "/api/presets/" + created.ID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/presets/%s status = %d, want %d", created.ID, resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()

	// 4. Delete preset
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/presets/"+created.ID, nil)
	resp, _ = client.Do(req)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	resp.Body.Close()

	// 5. Verify deleted
	resp, _ = client.Get(ts.URL + "/api/presets/" + created.ID)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("GET after delete status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	resp.Body.Close()
}

func TestAPI_HealthCheck(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}

func TestAPI_FramesWebSocket(t *testing.T) {
	engine := &fakeEngine{}
	ts := httptest.NewServer(New(Config{Engine: engine}))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/frames"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	defer conn.Close()

	want := app.Frame{
		Seq:           7,
		Positions:     []float32{1, 2, 3},
		LinePositions: []float32{1, 2, 3, 4, 5, 6},
		LineColors:    []float32{0, 0.5, 0, 0, 0.5, 0},
		VertexCount:   2,
		Status:        "waiting",
	}

	// The handler subscribes after the upgrade; publish until it is listening.
	deadline := time.Now().Add(2 * time.Second)
	for engine.publish(want) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("handler never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got app.Frame
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON error = %v", err)
	}
	if got.Seq != want.Seq || got.VertexCount != want.VertexCount || len(got.LinePositions) != 6 {
		t.Errorf("got frame %+v, want %+v", got, want)
	}
}

func TestAPI_PreviewStream(t *testing.T) {
	engine := &fakeEngine{preview: []byte{0xFF, 0xD8, 0xFF, 0xD9}}
	ts := httptest.NewServer(New(Config{Engine: engine}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/stream", nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("GET /api/stream error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Fatalf("Content-Type = %q", ct)
	}

	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		t.Fatalf("parse Content-Type: %v", err)
	}

	part, err := multipart.NewReader(resp.Body, params["boundary"]).NextPart()
	if err != nil {
		t.Fatalf("NextPart() error = %v", err)
	}
	if ct := part.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("part Content-Type = %q", ct)
	}
	body, err := io.ReadAll(io.LimitReader(part, 4))
	if err != nil {
		t.Fatalf("read part: %v", err)
	}
	if !bytes.Equal(body, engine.preview) {
		t.Errorf("part body = % x, want % x", body, engine.preview)
	}
}
