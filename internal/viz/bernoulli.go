package viz

import (
	"fmt"

	"github.com/san-kum/stochlab/internal/stats"
	"github.com/san-kum/stochlab/internal/stochastic"
)

const (
	coinSize     = 10.0
	coinGap      = 5.0
	streamY      = 100.0
	streamMargin = 50.0
	barWidth     = 60.0
	maxBarHeight = 150.0
	barBaseline  = 50.0
)

// BernoulliRenderer draws the coin stream, the two outcome bars and the
// target probability line.
type BernoulliRenderer struct{}

func (BernoulliRenderer) Render(b Bounds, in Input) Frame {
	f := Frame{Bounds: b}
	if !b.Valid() {
		return f
	}
	l := newLayout(b)
	background(&f, l)

	events := in.Events
	pitch := l.x(coinSize + coinGap)
	radius := l.s(coinSize / 2)
	for i, ev := range events {
		age := float64(len(events) - 1 - i)
		x := l.w - l.x(streamMargin) - age*pitch
		if x < 0 {
			continue
		}
		role := RoleClosed
		if ev.Outcome == stochastic.Open {
			role = RoleOpen
		}
		f.add(Circle(role, x, l.y(streamY), radius))
	}

	live := stats.Bernoulli(events)
	denom := float64(max(live.Total, 1))
	closedFrac := float64(live.Closed()) / denom
	openFrac := float64(live.Open) / denom

	bw := l.x(barWidth)
	baseline := l.h - l.y(barBaseline)
	maxH := l.y(maxBarHeight)

	hClosed := closedFrac * maxH
	f.add(FillRect(RoleClosed, l.w/4-bw/2, baseline-hClosed, bw, hClosed))
	f.add(Text(RoleLabel, l.w/4-l.x(40), l.h-l.y(30), fmt.Sprintf("0 (Closed): %.2f", closedFrac)))

	hOpen := openFrac * maxH
	f.add(FillRect(RoleOpen, 3*l.w/4-bw/2, baseline-hOpen, bw, hOpen))
	f.add(Text(RoleLabel, 3*l.w/4-l.x(35), l.h-l.y(30), fmt.Sprintf("1 (Open): %.2f", openFrac)))

	rate := stochastic.ClampRate(in.Rate)
	targetY := baseline - rate*maxH
	f.add(DashedLine(RoleTarget, l.w/2, targetY, l.w, targetY))
	f.add(Text(RoleTarget, l.w-l.x(100), targetY-l.y(5), fmt.Sprintf("Target p=%.2f", rate)))

	return f
}
