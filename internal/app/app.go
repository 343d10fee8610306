// Package app wires the camera, hand detector and visualization session together.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/ayusman/atomesh/internal/capture"
	"github.com/ayusman/atomesh/internal/config"
	"github.com/ayusman/atomesh/internal/detector"
	"github.com/ayusman/atomesh/internal/gesture"
	"github.com/ayusman/atomesh/internal/hook"
)

// Config holds configuration options for the application.
type Config struct {
	Settings *config.Config

	// Camera and Detector override the real device and MediaPipe service.
	Camera   capture.Camera
	Detector detector.Detector
}

// App runs the landmark pipeline and the animation loop against one Session.
type App struct {
	settings *config.Config
	session  *Session
	camera   capture.Camera
	detector detector.Detector
	hooks    *hook.Dispatcher
	gate     *capture.MotionGate

	// Owned by the pipeline goroutine.
	lastHands  []detector.HandLandmarks
	lastDetect time.Time
	detected   bool

	enabled bool
	mu      sync.RWMutex
	stopCh  chan struct{}
	wg      sync.WaitGroup

	subMu       sync.Mutex
	subscribers map[int]chan Frame
	nextSub     int

	frameMu sync.RWMutex
	latest  Frame
	preview []byte
}

// New creates a new App instance with the given configuration.
func New(cfg Config) *App {
	settings := cfg.Settings
	if settings == nil {
		settings = config.DefaultConfig()
	}

	a := &App{
		settings:    settings,
		session:     NewSession(settings.Tunables),
		camera:      cfg.Camera,
		detector:    cfg.Detector,
		enabled:     true,
		subscribers: make(map[int]chan Frame),
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(capture.DeviceConfig{ID: settings.CameraID})
	}
	a.camera.SetFPS(settings.InferenceFPS)

	// Try MediaPipe first, fall back to mock detector
	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(detector.ConfigFrom(settings.Detector)); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	if settings.HookDir != "" {
		m := hook.NewManager(settings.HookDir)
		if err := m.Discover(); err != nil {
			log.Printf("Hooks disabled: %v", err)
		} else {
			if n := len(m.List()); n > 0 {
				log.Printf("Loaded %d layout hooks from %s", n, settings.HookDir)
			}
			a.hooks = hook.NewDispatcher(m, hook.NewRunner(settings.HookTimeout))
		}
	}

	if settings.MotionThreshold > 0 {
		a.gate = capture.NewMotionGate(settings.MotionThreshold)
	}

	return a
}

// SetEnabled enables or disables hand tracking. While disabled every
// landmark frame is treated as carrying no hand.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether hand tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Start opens the camera and begins both loops. A camera failure is
// reported through the session status and returned, but the animation loop
// keeps running so the mesh stays on screen.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}
	a.stopCh = make(chan struct{})

	a.wg.Add(1)
	go a.runAnimation(a.stopCh)

	if err := a.camera.Open(); err != nil {
		a.session.Fail(err)
		log.Printf("Camera unavailable: %v", err)
		return err
	}

	a.wg.Add(1)
	go a.runPipeline(a.stopCh)

	log.Printf("Pipeline started (session %s)", a.session.ID())
	return nil
}

// Stop halts both loops and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}
	a.mu.Unlock()

	a.wg.Wait()
	if a.hooks != nil {
		a.hooks.Wait()
	}
	if a.gate != nil {
		a.gate.Close()
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	a.subMu.Lock()
	for id, ch := range a.subscribers {
		close(ch)
		delete(a.subscribers, id)
	}
	a.subMu.Unlock()

	log.Println("Pipeline stopped")
}

// Subscribe registers for animation frames. Frames are dropped for a
// subscriber that has not consumed the previous one. The returned func
// unsubscribes and closes the channel.
func (a *App) Subscribe() (<-chan Frame, func()) {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	id := a.nextSub
	a.nextSub++
	ch := make(chan Frame, 1)
	a.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			a.subMu.Lock()
			defer a.subMu.Unlock()
			if c, ok := a.subscribers[id]; ok {
				close(c)
				delete(a.subscribers, id)
			}
		})
	}
}

func (a *App) publish(f Frame) {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	for _, ch := range a.subscribers {
		select {
		case ch <- f:
		default:
		}
	}
}

// Latest returns the most recent animation frame.
func (a *App) Latest() Frame {
	a.frameMu.RLock()
	defer a.frameMu.RUnlock()
	return a.latest
}

// Preview returns the latest annotated camera frame as JPEG, or nil.
func (a *App) Preview() []byte {
	a.frameMu.RLock()
	defer a.frameMu.RUnlock()
	return a.preview
}

func (a *App) setPreview(jpeg []byte) {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	a.preview = jpeg
}

// Snapshot returns the session's controller state.
func (a *App) Snapshot() Snapshot {
	return a.session.Snapshot()
}

// Request asks for a layout change outside of gestures, subject to the
// same cooldown.
func (a *App) Request(contract bool) gesture.Command {
	now := time.Now()
	cmd := a.session.Request(contract, now)
	if cmd != gesture.CommandNone {
		log.Printf("Layout requested: %s", cmd)
		a.notify(cmd, hook.SourceRequest, now)
	}
	return cmd
}

// notify hands a fired command to the layout hooks.
func (a *App) notify(cmd gesture.Command, source string, now time.Time) {
	if a.hooks == nil {
		return
	}
	snap := a.session.Snapshot()
	a.hooks.Notify(hook.Event{
		Command:    cmd.String(),
		Source:     source,
		Status:     snap.Status,
		Contracted: snap.Contracted,
		SessionID:  snap.SessionID,
		Time:       now,
	})
}

// Session returns the visualization session.
func (a *App) Session() *Session {
	return a.session
}

// Settings returns the configuration the app was built with.
func (a *App) Settings() *config.Config {
	return a.settings
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

func interval(fps int) time.Duration {
	if fps <= 0 {
		fps = 1
	}
	return time.Second / time.Duration(fps)
}
