package app

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/atomesh/internal/capture"
	"github.com/ayusman/atomesh/internal/config"
	"github.com/ayusman/atomesh/internal/detector"
	"github.com/ayusman/atomesh/internal/field"
	"github.com/ayusman/atomesh/internal/gesture"
	"github.com/ayusman/atomesh/internal/motion"
)

// Frame is everything the renderer needs for one animation tick.
type Frame struct {
	Seq           uint64             `json:"seq"`
	Positions     []float32          `json:"positions"`
	LinePositions []float32          `json:"line_positions"`
	LineColors    []float32          `json:"line_colors"`
	VertexCount   int                `json:"vertex_count"`
	Rotation      motion.Orientation `json:"rotation"`
	Status        string             `json:"status"`
	Contracted    bool               `json:"contracted"`
	HandPresent   bool               `json:"hand_present"`
}

// Snapshot is the controller state without geometry.
type Snapshot struct {
	SessionID   string             `json:"session_id"`
	Status      string             `json:"status"`
	Contracted  bool               `json:"contracted"`
	Cooldown    bool               `json:"cooldown"`
	HandPresent bool               `json:"hand_present"`
	Failed      bool               `json:"failed"`
	Rotation    motion.Orientation `json:"rotation"`
	Velocity    motion.Velocity    `json:"velocity"`
	Particles   int                `json:"particles"`
	Segments    int                `json:"segments"`
}

// Session is the gesture, rotation and particle state of one visualization.
// Landmark results and animation ticks arrive on different goroutines; each
// call runs as one critical section so they never interleave mid-update.
type Session struct {
	id string

	mu         sync.Mutex
	classifier gesture.Classifier
	machine    *gesture.Machine
	inertia    *motion.Inertia
	field      *field.Field
	failure    string
	seq        uint64
}

// NewSession creates an expanded, idle session.
func NewSession(t config.Tunables) *Session {
	return &Session{
		id:         uuid.NewString(),
		classifier: gesture.NewClassifier(t),
		machine:    gesture.NewMachine(t.Cooldown),
		inertia:    motion.NewInertia(t),
		field: field.New(field.Options{
			Count:              t.ParticleCount,
			ExpandedRadius:     t.ExpandedRadius,
			ContractedRadius:   t.ContractedRadius,
			SmoothFactor:       t.SmoothFactor,
			ConnectionDistance: t.ConnectionDistance,
			LineColor:          field.ColorFromHex(t.LineColor),
		}),
	}
}

func (s *Session) ID() string {
	return s.id
}

// OnResults consumes one landmark result and returns the command it fired.
func (s *Session) OnResults(hands []detector.HandLandmarks, now time.Time) gesture.Command {
	s.mu.Lock()
	defer s.mu.Unlock()

	sig := s.classifier.Classify(hands)
	if sig.Present {
		s.inertia.Track(sig.Wrist.X, sig.Wrist.Y)
	} else {
		s.inertia.Lose()
	}

	cmd := s.machine.Observe(sig, now)
	s.apply(cmd)
	return cmd
}

// Request asks for the contracted or expanded layout directly, under the
// same cooldown and idempotency rules as gestures.
func (s *Session) Request(contract bool, now time.Time) gesture.Command {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd := s.machine.Request(contract, now)
	s.apply(cmd)
	return cmd
}

func (s *Session) apply(cmd gesture.Command) {
	switch cmd {
	case gesture.CommandContract:
		s.field.SetLayout(field.LayoutContracted)
	case gesture.CommandExpand:
		s.field.SetLayout(field.LayoutExpanded)
	}
}

// Tick advances one animation frame and writes the result into dst, reusing
// its slices.
func (s *Session) Tick(now time.Time, dst *Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.machine.Tick(now)
	s.field.Step()
	rotation := s.inertia.Step()
	s.seq++

	edges := s.field.Edges()
	dst.Seq = s.seq
	dst.Positions = append(dst.Positions[:0], s.field.Positions()...)
	dst.LinePositions = append(dst.LinePositions[:0], edges.Positions()...)
	dst.LineColors = append(dst.LineColors[:0], edges.Colors()...)
	dst.VertexCount = edges.VertexCount()
	dst.Rotation = rotation
	dst.Status = s.statusLocked()
	dst.Contracted = s.machine.State().Contracted
	dst.HandPresent = s.machine.HandPresent()
}

// Fail records a fatal acquisition error. The mesh keeps animating but the
// status reports the failure from now on.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = capture.Message(err)
}

// Status returns the current status line.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() string {
	if s.failure != "" {
		return s.failure
	}
	return s.machine.Status().String()
}

// Snapshot returns the controller state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.machine.State()
	return Snapshot{
		SessionID:   s.id,
		Status:      s.statusLocked(),
		Contracted:  st.Contracted,
		Cooldown:    st.Cooldown,
		HandPresent: s.machine.HandPresent(),
		Failed:      s.failure != "",
		Rotation:    s.inertia.Orientation(),
		Velocity:    s.inertia.Velocity(),
		Particles:   s.field.Len(),
		Segments:    s.field.Edges().SegmentCount(),
	}
}

// Targets returns a copy of every particle's target position and current layout.
func (s *Session) Targets() ([]field.Particle, field.Layout) {
	s.mu.Lock()
	defer s.mu.Unlock()

	particles := make([]field.Particle, s.field.Len())
	copy(particles, s.field.Particles())
	return particles, s.field.Layout()
}

// Impulse nudges the rotation velocity, as a wrist movement would.
func (s *Session) Impulse(yaw, pitch float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inertia.Impulse(yaw, pitch)
}
