package viz

// Bounds is the drawable area in surface pixels.
type Bounds struct {
	W, H int
}

func (b Bounds) Valid() bool { return b.W > 0 && b.H > 0 }

// Surface is anything the engine can draw onto. ok is false while the
// surface is not attached; the host skips that frame.
type Surface interface {
	Bounds() (b Bounds, ok bool)
}

// FixedSurface is a Surface with constant bounds.
type FixedSurface Bounds

func (s FixedSurface) Bounds() (Bounds, bool) {
	b := Bounds(s)
	return b, b.Valid()
}

type Op uint8

const (
	OpLine Op = iota
	OpRect
	OpArc
	OpText
)

type Role uint8

const (
	RoleBackground Role = iota
	RoleAxis
	RoleOpen
	RoleClosed
	RoleTarget
	RoleSpike
	RoleHistogram
	RoleTheory
	RoleLabel
)

var roleNames = [...]string{"background", "axis", "open", "closed", "target", "spike", "histogram", "theory", "label"}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "unknown"
}

// Command is one draw primitive. Lines use (X0,Y0)-(X1,Y1); rects use
// (X0,Y0) as top-left with W,H; arcs are full circles centred on (X0,Y0)
// with radius R; text is anchored at (X0,Y0) baseline-left.
type Command struct {
	Op     Op
	Role   Role
	X0, Y0 float64
	X1, Y1 float64
	W, H   float64
	R      float64
	Fill   bool
	Dashed bool
	Text   string
}

func Line(role Role, x0, y0, x1, y1 float64) Command {
	return Command{Op: OpLine, Role: role, X0: x0, Y0: y0, X1: x1, Y1: y1}
}

func DashedLine(role Role, x0, y0, x1, y1 float64) Command {
	c := Line(role, x0, y0, x1, y1)
	c.Dashed = true
	return c
}

func FillRect(role Role, x, y, w, h float64) Command {
	return Command{Op: OpRect, Role: role, X0: x, Y0: y, W: w, H: h, Fill: true}
}

func Circle(role Role, cx, cy, r float64) Command {
	return Command{Op: OpArc, Role: role, X0: cx, Y0: cy, R: r, Fill: true}
}

func Text(role Role, x, y float64, s string) Command {
	return Command{Op: OpText, Role: role, X0: x, Y0: y, Text: s}
}

// Frame is the output of one render pass.
type Frame struct {
	Bounds   Bounds
	Commands []Command
}

func (f *Frame) add(c Command) { f.Commands = append(f.Commands, c) }

// ByRole returns the commands drawn with role, in order.
func (f Frame) ByRole(role Role) []Command {
	var out []Command
	for _, c := range f.Commands {
		if c.Role == role {
			out = append(out, c)
		}
	}
	return out
}

// Texts returns all text labels in draw order.
func (f Frame) Texts() []string {
	var out []string
	for _, c := range f.Commands {
		if c.Op == OpText {
			out = append(out, c.Text)
		}
	}
	return out
}
