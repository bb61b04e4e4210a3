package viz

import "math"

// Reference surface the lab was laid out for; all geometry scales from it.
const (
	refWidth  = 800.0
	refHeight = 400.0
)

type layout struct {
	w, h   float64
	sx, sy float64
}

func newLayout(b Bounds) layout {
	w, h := float64(b.W), float64(b.H)
	return layout{w: w, h: h, sx: w / refWidth, sy: h / refHeight}
}

func (l layout) x(px float64) float64 { return px * l.sx }
func (l layout) y(py float64) float64 { return py * l.sy }

// s scales a size that should stay round, such as a dot radius.
func (l layout) s(v float64) float64 { return v * math.Min(l.sx, l.sy) }
