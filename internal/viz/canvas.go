package viz

import (
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// dash pattern for dashed lines, in sub-pixels
const dashOn, dashPeriod = 3, 6

// Canvas is a terminal surface of Width x Height cells, each holding a
// 2x4 Braille dot matrix. Its pixel bounds are (Width*2) x (Height*4).
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Roles         [][]Role
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{}
	c.Resize(w, h)
	return c
}

// Resize reallocates the grid for a new cell size and clears it.
func (c *Canvas) Resize(w, h int) {
	w, h = max(w, 0), max(h, 0)
	c.Width, c.Height = w, h
	c.Grid = make([][]rune, h)
	c.Roles = make([][]Role, h)
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Roles[i] = make([]Role, w)
	}
	c.Clear()
}

// Bounds reports the sub-pixel size; a zero-sized canvas is not drawable.
func (c *Canvas) Bounds() (Bounds, bool) {
	b := Bounds{W: c.Width * 2, H: c.Height * 4}
	return b, b.Valid()
}

// Set sets a pixel at (x, y) in sub-pixel coordinates.
func (c *Canvas) Set(x, y int) {
	c.set(x, y, RoleLabel)
}

func (c *Canvas) set(x, y int, role Role) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	c.Roles[row][col] = role
}

// Unset clears a pixel
func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	mask := ^rune(pixelMap[y%4][x%2])
	c.Grid[row][col] &= mask
	if c.Grid[row][col] < blank {
		c.Grid[row][col] = blank
	}
}

// IsSet reports whether the sub-pixel at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Roles[i][j] = RoleBackground
		}
	}
}

// line draws with Bresenham's algorithm; dashed lines light dashOn of every
// dashPeriod steps.
func (c *Canvas) line(x0, y0, x1, y1 int, role Role, dashed bool) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for n := 0; ; n++ {
		if !dashed || n%dashPeriod < dashOn {
			c.set(x0, y0, role)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) fillRect(x, y, w, h int, role Role) {
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			c.set(px, py, role)
		}
	}
}

func (c *Canvas) fillCircle(cx, cy, r int, role Role) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				c.set(cx+dx, cy+dy, role)
			}
		}
	}
}

// Draw clears the canvas and rasterises f. Background fills and text are
// skipped: the terminal background is the fill and labels go in the side
// panel.
func (c *Canvas) Draw(f Frame) {
	c.Clear()
	for _, cmd := range f.Commands {
		if cmd.Role == RoleBackground {
			continue
		}
		switch cmd.Op {
		case OpLine:
			c.line(round(cmd.X0), round(cmd.Y0), round(cmd.X1), round(cmd.Y1), cmd.Role, cmd.Dashed)
		case OpRect:
			if cmd.Fill {
				c.fillRect(round(cmd.X0), round(cmd.Y0), round(cmd.W), round(cmd.H), cmd.Role)
				continue
			}
			x0, y0 := round(cmd.X0), round(cmd.Y0)
			x1, y1 := round(cmd.X0+cmd.W), round(cmd.Y0+cmd.H)
			c.line(x0, y0, x1, y0, cmd.Role, false)
			c.line(x1, y0, x1, y1, cmd.Role, false)
			c.line(x1, y1, x0, y1, cmd.Role, false)
			c.line(x0, y1, x0, y0, cmd.Role, false)
		case OpArc:
			c.fillCircle(round(cmd.X0), round(cmd.Y0), max(round(cmd.R), 0), cmd.Role)
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render returns the canvas with each run of same-role cells coloured by
// theme.
func (c *Canvas) Render(theme Theme) string {
	var b strings.Builder
	for row := range c.Grid {
		start := 0
		for col := 1; col <= c.Width; col++ {
			if col < c.Width && c.Roles[row][col] == c.Roles[row][start] {
				continue
			}
			run := string(c.Grid[row][start:col])
			b.WriteString(theme.Style(c.Roles[row][start]).Render(run))
			start = col
		}
		b.WriteString("\n")
	}
	return b.String()
}

func round(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

var _ Surface = (*Canvas)(nil)
