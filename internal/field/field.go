// Package field owns the particle positions handed to the renderer and the
// proximity graph drawn between them.
package field

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/atomesh/internal/geometry"
)

// Layout selects one of the two canonical particle arrangements.
type Layout int

const (
	LayoutExpanded Layout = iota
	LayoutContracted
)

func (l Layout) String() string {
	if l == LayoutContracted {
		return "contracted"
	}
	return "expanded"
}

// Particle is one point of the mesh. Expanded and Contracted never change
// after construction.
type Particle struct {
	Current    r3.Vec
	Target     r3.Vec
	Expanded   r3.Vec
	Contracted r3.Vec
}

// Field holds every particle and its render buffers. Not safe for concurrent use.
type Field struct {
	particles []Particle
	layout    Layout
	smooth    float64
	positions []float32
	edges     *EdgeBuffer
}

// Options configures a Field.
type Options struct {
	Count              int
	ExpandedRadius     float64
	ContractedRadius   float64
	SmoothFactor       float64
	ConnectionDistance float64
	LineColor          Color
}

// New creates a field with every particle resting on the expanded sphere.
func New(opts Options) *Field {
	layouts := geometry.NewLayouts(opts.Count, opts.ExpandedRadius, opts.ContractedRadius)

	particles := make([]Particle, len(layouts.Expanded))
	for i := range particles {
		particles[i] = Particle{
			Current:    layouts.Expanded[i],
			Target:     layouts.Expanded[i],
			Expanded:   layouts.Expanded[i],
			Contracted: layouts.Contracted[i],
		}
	}

	f := &Field{
		particles: particles,
		layout:    LayoutExpanded,
		smooth:    opts.SmoothFactor,
		positions: make([]float32, 3*len(particles)),
		edges:     NewEdgeBuffer(len(particles), opts.ConnectionDistance, opts.LineColor),
	}
	f.writePositions()
	return f
}

// SetLayout retargets every particle to the given canonical layout.
func (f *Field) SetLayout(l Layout) {
	f.layout = l
	for i := range f.particles {
		p := &f.particles[i]
		if l == LayoutContracted {
			p.Target = p.Contracted
		} else {
			p.Target = p.Expanded
		}
	}
}

func (f *Field) Layout() Layout {
	return f.layout
}

// Step moves each particle a fixed fraction of its remaining distance to the
// target, then rebuilds the position buffer and the proximity graph.
func (f *Field) Step() {
	for i := range f.particles {
		p := &f.particles[i]
		p.Current = lerp(p.Current, p.Target, f.smooth)
	}
	f.writePositions()
	f.edges.Rebuild(f.particles)
}

// Particles returns the live particle slice. Callers must not modify it.
func (f *Field) Particles() []Particle {
	return f.particles
}

// Positions returns the xyz-interleaved position buffer, reused across steps.
func (f *Field) Positions() []float32 {
	return f.positions
}

func (f *Field) Edges() *EdgeBuffer {
	return f.edges
}

func (f *Field) Len() int {
	return len(f.particles)
}

func (f *Field) writePositions() {
	for i, p := range f.particles {
		f.positions[3*i] = float32(p.Current.X)
		f.positions[3*i+1] = float32(p.Current.Y)
		f.positions[3*i+2] = float32(p.Current.Z)
	}
}

func lerp(from, to r3.Vec, t float64) r3.Vec {
	return r3.Add(from, r3.Scale(t, r3.Sub(to, from)))
}
