// Package detector provides the hand landmark source consumed by the mesh.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// HandConnections lists the landmark pairs forming the hand skeleton.
var HandConnections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{MiddleMCP, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{RingMCP, PinkyMCP}, {Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}

// Point3D represents a landmark in normalized image coordinates.
// X and Y are in [0,1]; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Finite reports whether all coordinates are finite numbers.
func (p Point3D) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}

// HandLandmarks represents one detected hand. A complete hand carries
// NumLandmarks points; fewer points are passed through as reported.
type HandLandmarks struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"` // "Left" or "Right"
	Score      float64   `json:"score"`
}

// Complete reports whether the hand carries the full landmark set.
func (h *HandLandmarks) Complete() bool {
	return h != nil && len(h.Points) >= NumLandmarks
}

// Wrist returns the wrist landmark and whether it is present and finite.
func (h *HandLandmarks) Wrist() (Point3D, bool) {
	if h == nil || len(h.Points) == 0 {
		return Point3D{}, false
	}
	w := h.Points[Wrist]
	return w, w.Finite()
}

// Finite reports whether every landmark of the hand has finite coordinates.
func (h *HandLandmarks) Finite() bool {
	if h == nil {
		return false
	}
	for _, p := range h.Points {
		if !p.Finite() {
			return false
		}
	}
	return true
}

// PlanarDistance is the Euclidean distance between two landmarks on the
// image plane. Depth is ignored because monocular depth estimates are noisy.
func PlanarDistance(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Translate returns a copy of the hand shifted by (dx, dy) on the image plane.
func (h HandLandmarks) Translate(dx, dy float64) HandLandmarks {
	moved := HandLandmarks{
		Points:     make([]Point3D, len(h.Points)),
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	for i, p := range h.Points {
		moved.Points[i] = Point3D{X: p.X + dx, Y: p.Y + dy, Z: p.Z}
	}
	return moved
}
