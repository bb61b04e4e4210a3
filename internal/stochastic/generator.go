package stochastic

import (
	"math"
	"math/rand"
)

const (
	MinRate = 0.01
	MaxRate = 0.99

	// FlipRate is how often the Bernoulli channel is sampled, independent of p.
	FlipRate = 5.0

	BaseSpikeRate  = 5.0
	SpikeRateRange = 45.0
)

// Source is the randomness a generator draws from. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

type Generator interface {
	Mode() Mode
	// Step advances by dt seconds with the host clock at now and returns the
	// event emitted on this tick, if any.
	Step(dt, now, rate float64) (Event, bool)
}

func NewSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func New(mode Mode, src Source) Generator {
	if mode == Poisson {
		return NewPoisson(src)
	}
	return NewBernoulli(src)
}

// ClampRate pins rate into [MinRate, MaxRate]. NaN maps to MinRate.
func ClampRate(rate float64) float64 {
	if math.IsNaN(rate) || rate < MinRate {
		return MinRate
	}
	if rate > MaxRate {
		return MaxRate
	}
	return rate
}

func sanitizeDt(dt float64) float64 {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return 0
	}
	return dt
}

// EffectiveRate maps the normalised control onto a spike rate in Hz.
func EffectiveRate(rate float64) float64 {
	return BaseSpikeRate + ClampRate(rate)*SpikeRateRange
}

// FireProbability is the per-tick firing probability for the mode, capped
// at 1 so a long stall cannot produce more than a certain fire.
func FireProbability(mode Mode, dt, rate float64) float64 {
	dt = sanitizeDt(dt)
	var p float64
	if mode == Poisson {
		p = EffectiveRate(rate) * dt
	} else {
		p = FlipRate * dt
	}
	return math.Min(p, 1)
}

type BernoulliGenerator struct {
	src Source
	seq uint64
}

func NewBernoulli(src Source) *BernoulliGenerator {
	return &BernoulliGenerator{src: src}
}

func (g *BernoulliGenerator) Mode() Mode { return Bernoulli }

func (g *BernoulliGenerator) Step(dt, now, rate float64) (Event, bool) {
	if g.src.Float64() >= FireProbability(Bernoulli, dt, rate) {
		return Event{}, false
	}
	outcome := Closed
	if g.src.Float64() < ClampRate(rate) {
		outcome = Open
	}
	g.seq++
	return Event{Seq: g.seq, Time: now, Outcome: outcome}, true
}

type PoissonGenerator struct {
	src Source
	seq uint64
}

func NewPoisson(src Source) *PoissonGenerator {
	return &PoissonGenerator{src: src}
}

func (g *PoissonGenerator) Mode() Mode { return Poisson }

func (g *PoissonGenerator) Step(dt, now, rate float64) (Event, bool) {
	if g.src.Float64() >= FireProbability(Poisson, dt, rate) {
		return Event{}, false
	}
	g.seq++
	return Event{Seq: g.seq, Time: now, Outcome: Open}, true
}
