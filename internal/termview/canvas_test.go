package termview

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/atomesh/internal/field"
)

var (
	dimGreen    = field.Color{G: 0.2}
	brightGreen = field.Color{G: 0.9}
)

func TestCanvas_PlotKeepsBrighter(t *testing.T) {
	c := NewCanvas(4, 3)

	c.Plot(1, 1, 'a', brightGreen)
	c.Plot(1, 1, 'b', dimGreen)
	assert.Equal(t, 'a', c.At(1, 1).Rune)

	c.Plot(2, 1, 'a', dimGreen)
	c.Plot(2, 1, 'b', brightGreen)
	assert.Equal(t, 'b', c.At(2, 1).Rune)

	// Out of bounds is ignored.
	c.Plot(-1, 0, 'x', brightGreen)
	c.Plot(4, 0, 'x', brightGreen)
	assert.Equal(t, Cell{}, c.At(4, 0))
}

func TestCanvas_Line(t *testing.T) {
	c := NewCanvas(10, 5)
	c.Line(0, 2, 9, 2, dimGreen)

	for x := 0; x < 10; x++ {
		assert.Equal(t, '·', c.At(x, 2).Rune, "column %d", x)
	}
	assert.Equal(t, rune(0), c.At(0, 1).Rune)

	c.Clear()
	c.Line(3, 3, 3, 3, dimGreen)
	assert.Equal(t, '·', c.At(3, 3).Rune)
}

func TestCanvas_TextAndResize(t *testing.T) {
	c := NewCanvas(5, 2)
	c.Text(3, 0, "hello")
	assert.Equal(t, 'h', c.At(3, 0).Rune)
	assert.Equal(t, 'e', c.At(4, 0).Rune)

	c.Resize(8, 4)
	w, h := c.Size()
	assert.Equal(t, 8, w)
	assert.Equal(t, 4, h)
	assert.Equal(t, Cell{}, c.At(3, 0), "resize clears")
}

func TestChannel(t *testing.T) {
	assert.Equal(t, int32(0), channel(-1))
	assert.Equal(t, int32(255), channel(2))
	assert.Equal(t, int32(128), channel(0.5))
}
