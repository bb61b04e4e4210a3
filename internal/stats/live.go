package stats

import (
	"fmt"
	"math"

	"github.com/san-kum/stochlab/internal/stochastic"
)

// Live is the readout handed to the host shell.
type Live struct {
	Mode stochastic.Mode

	// Bernoulli
	Open        int
	Total       int
	Probability float64

	// Poisson
	SpikeCount int
	MeanISI    float64
	CV         float64
	Rate       float64
}

// Empty is the zeroed readout for mode.
func Empty(mode stochastic.Mode) Live {
	return Live{Mode: mode}
}

func Compute(mode stochastic.Mode, events []stochastic.Event) Live {
	if mode == stochastic.Poisson {
		return Poisson(events)
	}
	return Bernoulli(events)
}

func Bernoulli(events []stochastic.Event) Live {
	open := 0
	for _, ev := range events {
		if ev.Outcome == stochastic.Open {
			open++
		}
	}
	return Live{
		Mode:        stochastic.Bernoulli,
		Open:        open,
		Total:       len(events),
		Probability: float64(open) / float64(max(len(events), 1)),
	}
}

func Poisson(events []stochastic.Event) Live {
	l := Live{Mode: stochastic.Poisson, SpikeCount: len(events)}
	isis := InterArrivals(events)
	if len(isis) == 0 {
		return l
	}
	mean, sd := meanStd(isis)
	l.MeanISI = mean
	if mean > 0 {
		l.CV = sd / mean
		l.Rate = 1 / mean
	}
	return l
}

// Closed returns the Bernoulli closed count.
func (l Live) Closed() int { return l.Total - l.Open }

func (l Live) String() string {
	if l.Mode == stochastic.Poisson {
		return fmt.Sprintf("Count: %d spikes", l.SpikeCount)
	}
	return fmt.Sprintf("Heads: %d/%d (%.2f)", l.Open, l.Total, l.Probability)
}

func meanStd(xs []float64) (float64, float64) {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(xs)))
}
