package termview

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/atomesh/internal/app"
	"github.com/ayusman/atomesh/internal/field"
)

// FrameSource delivers animation frames.
type FrameSource interface {
	Subscribe() (<-chan app.Frame, func())
}

// KeyHandler reacts to a key press. It returns true if it consumed the key.
type KeyHandler func(key tcell.Key, r rune) bool

// Viewer draws frames from a FrameSource onto a tcell screen.
type Viewer struct {
	screen   tcell.Screen
	source   FrameSource
	camera   Camera
	canvas   *Canvas
	particle field.Color
	help     string
	keys     KeyHandler
}

// New creates a Viewer. The screen must already be initialized.
func New(screen tcell.Screen, source FrameSource, particleColor uint32) *Viewer {
	w, h := screen.Size()
	return &Viewer{
		screen:   screen,
		source:   source,
		camera:   DefaultCamera(),
		canvas:   NewCanvas(w, h),
		particle: field.ColorFromHex(particleColor),
		help:     "q quit",
	}
}

// OnKey installs a handler for keys the viewer does not use itself.
func (v *Viewer) OnKey(fn KeyHandler, help string) {
	v.keys = fn
	if help != "" {
		v.help = help + "  q quit"
	}
}

// Run draws frames until ctx is done, the source closes or the user quits.
func (v *Viewer) Run(ctx context.Context) error {
	frames, unsubscribe := v.source.Subscribe()
	defer unsubscribe()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			v.Draw(f)
		case ev := <-events:
			if !v.handleEvent(ev) {
				return nil
			}
		}
	}
}

func (v *Viewer) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune && ev.Rune() == 'q' {
			return false
		}
		if v.keys != nil {
			v.keys(ev.Key(), ev.Rune())
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// Draw renders one frame: green proximity lines, blue particles, then the
// status and help lines.
func (v *Viewer) Draw(f app.Frame) {
	w, h := v.screen.Size()
	if cw, ch := v.canvas.Size(); cw != w || ch != h {
		v.canvas.Resize(w, h)
	} else {
		v.canvas.Clear()
	}

	v.render(f)
	v.canvas.Blit(v.screen)
	v.screen.Show()
}

func (v *Viewer) render(f app.Frame) {
	w, h := v.canvas.Size()

	for s := 0; s < f.VertexCount/2; s++ {
		i := s * 6
		if i+6 > len(f.LinePositions) || i+6 > len(f.LineColors) {
			break
		}
		a := Rotate(vec(f.LinePositions[i:]), f.Rotation)
		b := Rotate(vec(f.LinePositions[i+3:]), f.Rotation)
		x0, y0, ok0 := v.camera.Project(a, w, h)
		x1, y1, ok1 := v.camera.Project(b, w, h)
		if !ok0 || !ok1 {
			continue
		}
		color := field.Color{R: f.LineColors[i], G: f.LineColors[i+1], B: f.LineColors[i+2]}
		v.canvas.Line(x0, y0, x1, y1, color)
	}

	for i := 0; i+3 <= len(f.Positions); i += 3 {
		p := Rotate(vec(f.Positions[i:]), f.Rotation)
		x, y, ok := v.camera.Project(p, w, h)
		if !ok {
			continue
		}
		v.canvas.Plot(int(x+0.5), int(y+0.5), '●', v.particle)
	}

	v.canvas.Text(0, 0, f.Status)
	v.canvas.Text(0, 1, fmt.Sprintf("yaw %+.2f  pitch %+.2f  lines %d", f.Rotation.Yaw, f.Rotation.Pitch, f.VertexCount/2))
	v.canvas.Text(0, h-1, v.help)
}

// Canvas exposes the off-screen buffer of the last drawn frame.
func (v *Viewer) Canvas() *Canvas {
	return v.canvas
}

func vec(xyz []float32) r3.Vec {
	return r3.Vec{X: float64(xyz[0]), Y: float64(xyz[1]), Z: float64(xyz[2])}
}
