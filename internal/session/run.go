package session

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/stochlab/internal/stats"
	"github.com/san-kum/stochlab/internal/stochastic"
)

var ErrInvalidRun = errors.New("session: invalid run config")

// RunConfig describes a headless run of fixed-size ticks.
type RunConfig struct {
	Dt       float64
	Duration float64
}

// Tick is what a run reports to its callback after every step.
type Tick struct {
	Step  int
	Now   float64
	Event stochastic.Event
	Fired bool
}

// Result is the outcome of a headless run. Events holds every event
// emitted, not just the ones still inside the window.
type Result struct {
	Mode   stochastic.Mode
	Rate   float64
	Steps  int
	Events []stochastic.Event
	Final  stats.Live
}

func (c RunConfig) validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidRun, c.Dt)
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidRun, c.Duration)
	}
	return nil
}

// Run steps the session with synthetic ticks of cfg.Dt from its current
// clock until cfg.Duration has elapsed. fn may be nil; returning false from
// it stops the run early. Cancelling ctx stops the run and returns the
// partial result with ctx.Err().
func (s *Session) Run(ctx context.Context, cfg RunConfig, fn func(Tick) bool) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	res := &Result{Mode: s.mode, Rate: s.rate}
	start := s.now

	s.log.Debug("run", "mode", s.mode, "rate", s.rate, "dt", cfg.Dt, "steps", steps)

	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			res.Final = s.Refresh()
			return res, ctx.Err()
		default:
		}

		now := start + float64(i)*cfg.Dt
		ev, ok := s.Tick(cfg.Dt, now)
		if ok {
			res.Events = append(res.Events, ev)
		}
		res.Steps++

		if fn != nil && !fn(Tick{Step: i, Now: now, Event: ev, Fired: ok}) {
			break
		}
	}

	res.Final = s.Refresh()
	return res, nil
}
