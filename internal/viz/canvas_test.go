package viz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanvasBounds(t *testing.T) {
	c := NewCanvas(80, 24)
	b, ok := c.Bounds()
	assert.True(t, ok)
	assert.Equal(t, Bounds{W: 160, H: 96}, b)

	c.Resize(40, 10)
	b, _ = c.Bounds()
	assert.Equal(t, Bounds{W: 80, H: 40}, b)
	assert.Len(t, c.Grid, 10)
	assert.Len(t, c.Grid[0], 40)

	c.Resize(0, 0)
	_, ok = c.Bounds()
	assert.False(t, ok)
}

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	assert.Equal(t, rune(0x2801), c.Grid[0][0])
	assert.Equal(t, rune(0x2880), c.Grid[0][1])
	assert.True(t, c.IsSet(3, 3))

	c.Unset(3, 3)
	assert.False(t, c.IsSet(3, 3))

	// out of range is ignored
	c.Set(-1, 0)
	c.Set(100, 100)
	assert.Equal(t, "⠁⠀\n", c.String())
}

func TestCanvasDrawFrame(t *testing.T) {
	c := NewCanvas(20, 5)
	f := Frame{Bounds: Bounds{W: 40, H: 20}, Commands: []Command{
		FillRect(RoleBackground, 0, 0, 40, 20),
		Line(RoleAxis, 0, 10, 39, 10),
		FillRect(RoleOpen, 2, 2, 3, 3),
		Circle(RoleClosed, 30, 4, 1),
		Text(RoleLabel, 0, 0, "ignored"),
	}}
	c.Draw(f)

	for x := 0; x < 40; x++ {
		assert.True(t, c.IsSet(x, 10), "axis pixel %d", x)
	}
	assert.True(t, c.IsSet(3, 3))
	assert.True(t, c.IsSet(30, 4))
	assert.False(t, c.IsSet(0, 0), "background should not be rasterised")
	assert.Equal(t, RoleOpen, c.Roles[0][1])

	// redraw clears previous content
	c.Draw(Frame{Bounds: f.Bounds})
	assert.False(t, c.IsSet(3, 3))
}

func TestCanvasDashedLine(t *testing.T) {
	c := NewCanvas(10, 1)
	c.Draw(Frame{Commands: []Command{DashedLine(RoleTarget, 0, 0, 11, 0)}})

	lit := 0
	for x := 0; x < 12; x++ {
		if c.IsSet(x, 0) {
			lit++
		}
	}
	assert.Equal(t, 6, lit)
}

func TestCanvasRender(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Draw(Frame{Commands: []Command{Line(RoleSpike, 0, 0, 7, 0)}})
	out := c.Render(ThemeZinc)
	assert.Equal(t, 2, strings.Count(out, "\n"))
	assert.Contains(t, out, "⠉")
}

func TestThemes(t *testing.T) {
	assert.Equal(t, ThemeZinc, GetTheme("nope"))
	assert.Equal(t, "ocean", GetTheme("ocean").Name)
	assert.Equal(t, ThemeCyberpunk.Name, NextTheme(ThemeZinc).Name)
	assert.Equal(t, ThemeZinc.Name, NextTheme(ThemeOcean).Name)
	assert.Len(t, ThemeNames(), len(Themes))
	assert.Equal(t, ThemeZinc.Theory, ThemeZinc.Color(RoleTheory))
}
