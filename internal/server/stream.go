package server

import (
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"
)

// StreamInterval is how often the preview is polled, matching the default
// inference rate.
const StreamInterval = 66 * time.Millisecond

const streamBoundary = "frame"

// StreamHandler serves the annotated camera preview as MJPEG.
type StreamHandler struct {
	engine Engine
}

func NewStreamHandler(engine Engine) *StreamHandler {
	return &StreamHandler{engine: engine}
}

// ServeHTTP writes one multipart part per new preview until the client or
// the server goes away.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	mw := multipart.NewWriter(w)
	if err := mw.SetBoundary(streamBoundary); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+streamBoundary)
	w.Header().Set("Cache-Control", "no-cache")
	flusher, _ := w.(http.Flusher)

	ticker := time.NewTicker(StreamInterval)
	defer ticker.Stop()

	var sent []byte
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		// Previews are replaced, never mutated, so identity means unchanged.
		jpeg := h.engine.Preview()
		if len(jpeg) == 0 || (len(sent) > 0 && &jpeg[0] == &sent[0]) {
			continue
		}
		sent = jpeg

		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":   {"image/jpeg"},
			"Content-Length": {strconv.Itoa(len(jpeg))},
		})
		if err != nil {
			return
		}
		if _, err := part.Write(jpeg); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}
