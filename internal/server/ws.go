package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 2 * time.Second

// DefaultFramesFPS caps frames per client when no ?fps is given.
const DefaultFramesFPS = 30

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// FramesHandler streams animation frames to WebSocket clients as JSON.
// The ?fps=N query parameter sets the per-client rate, DefaultFramesFPS
// otherwise.
type FramesHandler struct {
	engine Engine
}

// NewFramesHandler creates a FramesHandler fed by engine.
func NewFramesHandler(engine Engine) *FramesHandler {
	return &FramesHandler{engine: engine}
}

// ServeHTTP upgrades the request and writes frames until the client goes away.
func (h *FramesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	minGap, err := frameInterval(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	frames, unsubscribe := h.engine.Subscribe()
	defer unsubscribe()

	// Reads only detect the close; clients send nothing meaningful.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	goingAway := func() {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
	}

	var last time.Time
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			goingAway()
			return
		case f, ok := <-frames:
			if !ok {
				goingAway()
				return
			}
			if time.Since(last) < minGap {
				continue
			}
			last = time.Now()

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(f); err != nil {
				return
			}
		}
	}
}

// frameInterval is the minimum gap between frames sent to one client.
func frameInterval(r *http.Request) (time.Duration, error) {
	fps := DefaultFramesFPS
	if v := r.URL.Query().Get("fps"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return 0, errors.New("fps must be a positive integer")
		}
		fps = n
	}
	return time.Second / time.Duration(fps), nil
}
