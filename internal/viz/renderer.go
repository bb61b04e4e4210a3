package viz

import (
	"github.com/san-kum/stochlab/internal/stats"
	"github.com/san-kum/stochlab/internal/stochastic"
)

// Input is everything a render pass may read. Events is the history
// snapshot, oldest first.
type Input struct {
	Rate   float64
	Now    float64
	Events []stochastic.Event
}

// Renderer draws one mode. Render must be a pure function of its arguments.
type Renderer interface {
	Render(b Bounds, in Input) Frame
}

func NewRenderer(mode stochastic.Mode) Renderer {
	if mode == stochastic.Poisson {
		return NewPoissonRenderer()
	}
	return BernoulliRenderer{}
}

func background(f *Frame, l layout) {
	f.add(FillRect(RoleBackground, 0, 0, l.w, l.h))
}

// PoissonRenderer draws the raster, ISI histogram and exponential overlay.
type PoissonRenderer struct {
	Bins   int
	MaxISI float64
	// ScrollSpeed is in reference pixels per second.
	ScrollSpeed float64
}

func NewPoissonRenderer() PoissonRenderer {
	return PoissonRenderer{
		Bins:        stats.DefaultBins,
		MaxISI:      stats.DefaultMaxISI,
		ScrollSpeed: 150,
	}
}
