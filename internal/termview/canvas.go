package termview

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/ayusman/atomesh/internal/field"
)

// Cell is one character of the canvas.
type Cell struct {
	Rune  rune
	Color field.Color
}

func (c Cell) brightness() float32 {
	return c.Color.R + c.Color.G + c.Color.B
}

// Canvas is an off-screen character grid. Brighter content wins when two
// things land on the same cell.
type Canvas struct {
	w, h  int
	cells []Cell
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{}
	c.Resize(w, h)
	return c
}

// Resize clears the canvas and changes its size, reusing storage when it fits.
func (c *Canvas) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c.w, c.h = w, h
	if cap(c.cells) >= w*h {
		c.cells = c.cells[:w*h]
	} else {
		c.cells = make([]Cell, w*h)
	}
	c.Clear()
}

func (c *Canvas) Size() (int, int) {
	return c.w, c.h
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = Cell{}
	}
}

// At returns the cell at (x, y), or the zero Cell outside the canvas.
func (c *Canvas) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return Cell{}
	}
	return c.cells[y*c.w+x]
}

// Plot sets a cell unless it already holds something brighter.
func (c *Canvas) Plot(x, y int, r rune, color field.Color) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	cell := &c.cells[y*c.w+x]
	next := Cell{Rune: r, Color: color}
	if cell.Rune != 0 && cell.brightness() > next.brightness() {
		return
	}
	*cell = next
}

// Line draws a segment between fractional cell coordinates.
func (c *Canvas) Line(x0, y0, x1, y1 float64, color field.Color) {
	dx, dy := x1-x0, y1-y0
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		c.Plot(int(math.Round(x0)), int(math.Round(y0)), '·', color)
		return
	}
	// Segments far off screen are not worth walking.
	if steps > 4*(c.w+c.h) {
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.Plot(int(math.Round(x0+dx*t)), int(math.Round(y0+dy*t)), '·', color)
	}
}

// Text writes s starting at (x, y) in white, overriding anything beneath.
func (c *Canvas) Text(x, y int, s string) {
	white := field.Color{R: 1, G: 1, B: 1}
	for _, r := range s {
		if x >= c.w {
			return
		}
		if x >= 0 && y >= 0 && y < c.h {
			c.cells[y*c.w+x] = Cell{Rune: r, Color: white}
		}
		x++
	}
}

// Blit copies the canvas onto the screen.
func (c *Canvas) Blit(screen tcell.Screen) {
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			cell := c.cells[y*c.w+x]
			r := cell.Rune
			if r == 0 {
				r = ' '
			}
			screen.SetContent(x, y, r, nil, tcell.StyleDefault.Foreground(toTcell(cell.Color)))
		}
	}
}

func toTcell(c field.Color) tcell.Color {
	return tcell.NewRGBColor(channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float32) int32 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return int32(v*255 + 0.5)
	}
}
