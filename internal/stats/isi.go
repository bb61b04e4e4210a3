package stats

import (
	"math"

	"github.com/san-kum/stochlab/internal/stochastic"
)

const (
	DefaultBins   = 30
	DefaultMaxISI = 0.2

	// MinISISamples is the fewest intervals for which the ISI histogram and
	// theory curve are meaningful.
	MinISISamples = 3
)

// InterArrivals returns consecutive timestamp differences, len(events)-1 long.
func InterArrivals(events []stochastic.Event) []float64 {
	if len(events) < 2 {
		return nil
	}
	out := make([]float64, len(events)-1)
	for i := 1; i < len(events); i++ {
		out[i-1] = events[i].Time - events[i-1].Time
	}
	return out
}

type Histogram struct {
	Bins  []int
	Width float64
	Max   float64
}

// BuildHistogram buckets samples into n equal bins over [0, maxV). Samples
// outside the range are dropped.
func BuildHistogram(samples []float64, n int, maxV float64) Histogram {
	if n < 1 {
		n = 1
	}
	h := Histogram{Bins: make([]int, n), Width: maxV / float64(n), Max: maxV}
	if maxV <= 0 {
		return h
	}
	for _, s := range samples {
		if s < 0 || s >= maxV {
			continue
		}
		idx := int(s / h.Width)
		if idx >= n {
			idx = n - 1
		}
		h.Bins[idx]++
	}
	return h
}

// Count is the number of samples that landed in a bin.
func (h Histogram) Count() int {
	n := 0
	for _, c := range h.Bins {
		n += c
	}
	return n
}

// Peak is the tallest bin, at least 1.
func (h Histogram) Peak() int {
	peak := 1
	for _, c := range h.Bins {
		peak = max(peak, c)
	}
	return peak
}

// Normalized scales bins so the tallest is 1.
func (h Histogram) Normalized() []float64 {
	peak := float64(h.Peak())
	out := make([]float64, len(h.Bins))
	for i, c := range h.Bins {
		out[i] = float64(c) / peak
	}
	return out
}

// ExpSurvival is the exponential ISI shape exp(-λt) used as the reference
// curve, 1 at t=0.
func ExpSurvival(lambda, t float64) float64 {
	return math.Exp(-lambda * t)
}

// TheoryCurve samples ExpSurvival at n evenly spaced points over [0, maxV].
func TheoryCurve(lambda, maxV float64, n int) []float64 {
	if n < 2 {
		n = 2
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = ExpSurvival(lambda, maxV*float64(i)/float64(n-1))
	}
	return out
}
