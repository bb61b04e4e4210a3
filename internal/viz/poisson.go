package viz

import (
	"fmt"

	"github.com/san-kum/stochlab/internal/stats"
	"github.com/san-kum/stochlab/internal/stochastic"
)

const (
	rasterY       = 80.0
	rasterTick    = 15.0
	rasterMargin  = 50.0
	histBottomPad = 40.0
	histHeight    = 150.0
	histLeft      = 60.0
	// theory curve sample spacing, in surface pixels
	curveStep = 2
)

func (r PoissonRenderer) Render(b Bounds, in Input) Frame {
	f := Frame{Bounds: b}
	if !b.Valid() {
		return f
	}
	l := newLayout(b)
	background(&f, l)

	lambda := stochastic.EffectiveRate(in.Rate)
	f.add(Text(RoleLabel, l.x(20), l.y(30), fmt.Sprintf("RASTER PLOT (Rate: ~%.0fHz)", lambda)))

	ry := l.y(rasterY)
	f.add(Line(RoleAxis, 0, ry, l.w, ry))

	speed := l.x(r.ScrollSpeed)
	for _, ev := range in.Events {
		x := l.w - l.x(rasterMargin) - (in.Now-ev.Time)*speed
		if x <= 0 || x >= l.w {
			continue
		}
		f.add(Line(RoleSpike, x, ry-l.y(rasterTick), x, ry+l.y(rasterTick)))
	}

	isis := stats.InterArrivals(in.Events)
	if len(isis) < stats.MinISISamples {
		return f
	}

	hist := stats.BuildHistogram(isis, r.Bins, r.MaxISI)
	bottom := l.h - l.y(histBottomPad)
	height := l.y(histHeight)
	left := l.x(histLeft)
	width := l.w - 2*left

	f.add(Text(RoleLabel, l.x(20), bottom-height-l.y(20), "ISI HISTOGRAM (Inter-Spike Intervals)"))

	barW := width / float64(len(hist.Bins))
	gap := min(1, barW/4)
	for i, v := range hist.Normalized() {
		h := v * height
		f.add(FillRect(RoleHistogram, left+float64(i)*barW, bottom-h, barW-gap, h))
	}

	if width <= 0 {
		return f
	}
	px, py := left, bottom-stats.ExpSurvival(lambda, 0)*height
	// the last segment always ends on the right edge, however narrow
	for c := 0.0; c < width; {
		c = min(c+curveStep, width)
		t := c / width * r.MaxISI
		nx, ny := left+c, bottom-stats.ExpSurvival(lambda, t)*height
		f.add(Line(RoleTheory, px, py, nx, ny))
		px, py = nx, ny
	}
	return f
}
