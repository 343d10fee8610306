package field

import (
	"math"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"
)

// Color is a linear RGB color with components in [0,1].
type Color struct {
	R, G, B float32
}

// ColorFromHex converts a 0xRRGGBB value.
func ColorFromHex(hex uint32) Color {
	return Color{
		R: float32((hex>>16)&0xFF) / 255,
		G: float32((hex>>8)&0xFF) / 255,
		B: float32(hex&0xFF) / 255,
	}
}

// Scale multiplies every component by s.
func (c Color) Scale(s float32) Color {
	return Color{R: c.R * s, G: c.G * s, B: c.B * s}
}

// EdgeBuffer is the proximity graph as line-segment vertex and color data.
// Both buffers are sized for every pair being connected; only the first
// VertexCount vertices are populated after a Rebuild.
type EdgeBuffer struct {
	positions   []float32
	colors      []float32
	vertexCount int
	distance    float64
	distanceSq  float64
	base        Color
}

// MaxSegments is the number of unordered pairs among n particles.
func MaxSegments(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// NewEdgeBuffer preallocates buffers for n particles.
func NewEdgeBuffer(n int, connectionDistance float64, base Color) *EdgeBuffer {
	size := MaxSegments(n) * 2 * 3
	return &EdgeBuffer{
		positions:  make([]float32, size),
		colors:     make([]float32, size),
		distance:   connectionDistance,
		distanceSq: connectionDistance * connectionDistance,
		base:       base,
	}
}

// Rebuild scans every pair and emits a segment for each pair closer than the
// connection distance. Brightness falls off linearly from 1 at contact to 0
// at the connection distance.
func (b *EdgeBuffer) Rebuild(particles []Particle) {
	idx := 0
	n := len(particles)

	for i := 0; i < n; i++ {
		p1 := particles[i].Current

		for j := i + 1; j < n; j++ {
			p2 := particles[j].Current

			// Compare in float64; buffers are narrowed on write only.
			distSq := r3.Norm2(r3.Sub(p1, p2))
			if distSq >= b.distanceSq {
				continue
			}
			if idx+6 > len(b.positions) {
				break
			}

			dist := float32(math.Sqrt(distSq))
			c := b.base.Scale(Intensity(dist, float32(b.distance)))

			b.positions[idx], b.positions[idx+1], b.positions[idx+2] = float32(p1.X), float32(p1.Y), float32(p1.Z)
			b.positions[idx+3], b.positions[idx+4], b.positions[idx+5] = float32(p2.X), float32(p2.Y), float32(p2.Z)

			b.colors[idx], b.colors[idx+1], b.colors[idx+2] = c.R, c.G, c.B
			b.colors[idx+3], b.colors[idx+4], b.colors[idx+5] = c.R, c.G, c.B

			idx += 6
		}
	}

	b.vertexCount = idx / 3
}

// Intensity is the line brightness for two particles dist apart.
func Intensity(dist, connectionDistance float32) float32 {
	return math32.Max(0, 1-dist/connectionDistance)
}

// VertexCount is the number of populated vertices (two per segment).
func (b *EdgeBuffer) VertexCount() int {
	return b.vertexCount
}

// SegmentCount is the number of populated segments.
func (b *EdgeBuffer) SegmentCount() int {
	return b.vertexCount / 2
}

// Positions returns the populated prefix of the vertex buffer.
func (b *EdgeBuffer) Positions() []float32 {
	return b.positions[:3*b.vertexCount]
}

// Colors returns the populated prefix of the color buffer.
func (b *EdgeBuffer) Colors() []float32 {
	return b.colors[:3*b.vertexCount]
}

// Capacity is the number of floats each backing buffer holds.
func (b *EdgeBuffer) Capacity() int {
	return len(b.positions)
}
