package termview

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/ayusman/atomesh/internal/detector"
)

// SimulatorHelp lists the simulator keys.
const SimulatorHelp = "f fist  o open  r relaxed  arrows move  space hand in/out  c/e contract/expand"

// WristStep is how far one arrow press moves the simulated hand.
const WristStep = 0.04

// Pose is a simulated hand shape.
type Pose int

const (
	PoseRelaxed Pose = iota
	PoseFist
	PoseOpen
)

func (p Pose) String() string {
	switch p {
	case PoseFist:
		return "fist"
	case PoseOpen:
		return "open"
	default:
		return "relaxed"
	}
}

func (p Pose) landmarks() detector.HandLandmarks {
	switch p {
	case PoseFist:
		return detector.FistLandmarks()
	case PoseOpen:
		return detector.OpenPalmLandmarks()
	default:
		return detector.RelaxedLandmarks()
	}
}

// Simulator drives a MockDetector from the keyboard.
type Simulator struct {
	mu      sync.Mutex
	det     *detector.MockDetector
	pose    Pose
	dx, dy  float64
	present bool
	request func(contract bool)
}

// NewSimulator starts with a relaxed hand in frame.
func NewSimulator(det *detector.MockDetector) *Simulator {
	s := &Simulator{det: det, present: true}
	s.apply()
	return s
}

// OnRequest sets the callback for the c and e keys.
func (s *Simulator) OnRequest(fn func(contract bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.request = fn
}

// HandleKey is a KeyHandler.
func (s *Simulator) HandleKey(key tcell.Key, r rune) bool {
	s.mu.Lock()
	request := s.request

	handled := true
	switch key {
	case tcell.KeyLeft:
		s.dx -= WristStep
	case tcell.KeyRight:
		s.dx += WristStep
	case tcell.KeyUp:
		s.dy -= WristStep
	case tcell.KeyDown:
		s.dy += WristStep
	case tcell.KeyRune:
		switch r {
		case 'f':
			s.pose = PoseFist
		case 'o':
			s.pose = PoseOpen
		case 'r':
			s.pose = PoseRelaxed
		case ' ':
			s.present = !s.present
		case 'c', 'e':
			s.mu.Unlock()
			if request != nil {
				request(r == 'c')
			}
			return true
		default:
			handled = false
		}
	default:
		handled = false
	}

	if handled {
		s.apply()
	}
	s.mu.Unlock()
	return handled
}

func (s *Simulator) apply() {
	if !s.present {
		s.det.SetHands(nil)
		return
	}
	s.det.SetHands([]detector.HandLandmarks{s.pose.landmarks().Translate(s.dx, s.dy)})
}

// State reports the simulated pose, wrist offset and presence.
func (s *Simulator) State() (Pose, float64, float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pose, s.dx, s.dy, s.present
}
