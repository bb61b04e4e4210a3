package session_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/stochlab/internal/history"
	"github.com/san-kum/stochlab/internal/session"
	"github.com/san-kum/stochlab/internal/stats"
	"github.com/san-kum/stochlab/internal/stochastic"
	"github.com/san-kum/stochlab/internal/viz"
)

// script replays fixed draws and then repeats the last one.
type script struct {
	draws []float64
	i     int
}

func (s *script) Float64() float64 {
	if s.i >= len(s.draws) {
		return s.draws[len(s.draws)-1]
	}
	v := s.draws[s.i]
	s.i++
	return v
}

var _ = Describe("Session", func() {
	var s *session.Session

	Describe("Bernoulli mode", func() {
		It("reports 6/10 for six open flips out of ten", func() {
			// each tick with dt=1 always fires; the second draw picks the outcome
			var draws []float64
			for _, open := range []bool{true, false, true, true, false, false, true, false, true, true} {
				d := 0.9
				if open {
					d = 0.1
				}
				draws = append(draws, 0, d)
			}
			s = session.New(session.Config{Mode: stochastic.Bernoulli, Rate: 0.5, Source: &script{draws: draws}})

			for i := 1; i <= 10; i++ {
				_, ok := s.Tick(1, float64(i))
				Expect(ok).To(BeTrue())
			}

			live := s.Stats()
			Expect(live.Open).To(Equal(6))
			Expect(live.Total).To(Equal(10))
			Expect(live.Probability).To(BeNumerically("~", 0.6, 1e-12))
			Expect(live.String()).To(Equal("Heads: 6/10 (0.60)"))

			f, ok := s.Frame(viz.FixedSurface{W: 800, H: 400})
			Expect(ok).To(BeTrue())
			Expect(f.Texts()).To(ContainElements("0 (Closed): 0.40", "1 (Open): 0.60", "Target p=0.50"))
		})

		It("never holds more than the window capacity", func() {
			s = session.New(session.Config{Mode: stochastic.Bernoulli, Rate: 0.3, Seed: 7})
			now := 0.0
			for i := 0; i < 5000; i++ {
				now += 0.05
				s.Tick(0.05, now)
				Expect(s.Len()).To(BeNumerically("<=", history.DefaultCapacity))
			}
			Expect(s.Len()).To(Equal(history.DefaultCapacity))

			snap := s.Snapshot()
			for i := 1; i < len(snap); i++ {
				Expect(snap[i].Seq).To(BeNumerically(">", snap[i-1].Seq))
			}
		})

		It("converges on the target probability", func() {
			s = session.New(session.Config{Mode: stochastic.Bernoulli, Rate: 0.8, Seed: 42})
			res, err := s.Run(context.Background(), session.RunConfig{Dt: 0.2, Duration: 4000}, nil)
			Expect(err).NotTo(HaveOccurred())

			open := 0
			for _, ev := range res.Events {
				if ev.Outcome == stochastic.Open {
					open++
				}
			}
			Expect(len(res.Events)).To(Equal(20000))
			Expect(float64(open) / float64(len(res.Events))).To(BeNumerically("~", 0.8, 0.02))
		})
	})

	Describe("Poisson mode", func() {
		spikeAt := func(times ...float64) *session.Session {
			// zero draws fire with dt=1; the trailing 0.999 keeps later ticks quiet
			draws := make([]float64, len(times), len(times)+1)
			draws = append(draws, 0.999)
			s := session.New(session.Config{Mode: stochastic.Poisson, Rate: 0.5, Source: &script{draws: draws}})
			for _, t := range times {
				_, ok := s.Tick(1, t)
				Expect(ok).To(BeTrue())
			}
			_, ok := s.Tick(0.001, 0.25)
			Expect(ok).To(BeFalse())
			return s
		}

		It("derives inter-spike intervals from the window", func() {
			s = spikeAt(0, 0.05, 0.07, 0.20)
			isis := stats.InterArrivals(s.Snapshot())
			Expect(isis).To(HaveLen(3))
			Expect(isis[0]).To(BeNumerically("~", 0.05, 1e-9))
			Expect(isis[1]).To(BeNumerically("~", 0.02, 1e-9))
			Expect(isis[2]).To(BeNumerically("~", 0.13, 1e-9))

			f, ok := s.Frame(viz.FixedSurface{W: 800, H: 400})
			Expect(ok).To(BeTrue())
			Expect(f.ByRole(viz.RoleTheory)).NotTo(BeEmpty())
		})

		It("omits the theory curve with only two intervals", func() {
			s = spikeAt(0, 0.05, 0.07)
			f, ok := s.Frame(viz.FixedSurface{W: 800, H: 400})
			Expect(ok).To(BeTrue())
			Expect(f.ByRole(viz.RoleTheory)).To(BeEmpty())
		})

		It("only keeps spikes from the last five seconds", func() {
			s = session.New(session.Config{Mode: stochastic.Poisson, Rate: 0.99, Seed: 3})
			now := 0.0
			for i := 0; i < 1200; i++ {
				now += 1.0 / 60
				s.Tick(1.0/60, now)
				for _, ev := range s.Snapshot() {
					Expect(ev.Time).To(BeNumerically(">=", now-history.DefaultSpan))
				}
			}
			Expect(s.Len()).To(BeNumerically(">", 0))
		})

		It("fires at roughly the effective rate", func() {
			s = session.New(session.Config{Mode: stochastic.Poisson, Rate: 0.5, Seed: 11})
			res, err := s.Run(context.Background(), session.RunConfig{Dt: 0.001, Duration: 200}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(float64(len(res.Events)) / 200).To(BeNumerically("~", 27.5, 1.5))
			Expect(res.Final.Rate).To(BeNumerically("~", 27.5, 7))
		})
	})

	Describe("state transitions", func() {
		BeforeEach(func() {
			s = session.New(session.Config{Mode: stochastic.Bernoulli, Rate: 0.5, Seed: 1})
			_, err := s.Run(context.Background(), session.RunConfig{Dt: 0.2, Duration: 10}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Len()).To(BeNumerically(">", 0))
		})

		It("keeps history when switching to the current mode", func() {
			n := s.Len()
			s.SetMode(stochastic.Bernoulli)
			Expect(s.Len()).To(Equal(n))
		})

		It("clears history and stats on a mode switch", func() {
			s.SetMode(stochastic.Poisson)
			Expect(s.Mode()).To(Equal(stochastic.Poisson))
			Expect(s.Len()).To(BeZero())
			Expect(s.Stats()).To(Equal(stats.Empty(stochastic.Poisson)))
			Expect(s.Rate()).To(Equal(0.5))
		})

		It("is idempotent on reset", func() {
			s.Reset()
			first := s.Stats()
			Expect(s.Len()).To(BeZero())
			s.Reset()
			Expect(s.Len()).To(BeZero())
			Expect(s.Stats()).To(Equal(first))
			Expect(first).To(Equal(stats.Empty(stochastic.Bernoulli)))
		})

		It("clamps the rate", func() {
			s.SetRate(2)
			Expect(s.Rate()).To(Equal(stochastic.MaxRate))
			s.SetRate(-1)
			Expect(s.Rate()).To(Equal(stochastic.MinRate))
			s.SetRate(math.NaN())
			Expect(s.Rate()).To(Equal(stochastic.MinRate))
		})
	})

	Describe("stats refresh", func() {
		It("updates at most every 100ms of host clock", func() {
			s = session.New(session.Config{Mode: stochastic.Bernoulli, Rate: 0.5, Source: &script{draws: []float64{0}}})
			s.Tick(1, 1.0)
			Expect(s.Stats().Total).To(Equal(1))

			s.Tick(1, 1.05)
			Expect(s.Len()).To(Equal(2))
			Expect(s.Stats().Total).To(Equal(1))

			s.Tick(1, 1.2)
			Expect(s.Stats().Total).To(Equal(3))
		})
	})

	Describe("rendering", func() {
		BeforeEach(func() {
			s = session.New(session.Config{Mode: stochastic.Poisson, Rate: 0.7, Seed: 5})
		})

		It("skips frames while the surface is unattached", func() {
			_, ok := s.Frame(viz.FixedSurface{})
			Expect(ok).To(BeFalse())
		})

		It("follows a resize mid-run", func() {
			_, err := s.Run(context.Background(), session.RunConfig{Dt: 1.0 / 60, Duration: 2}, nil)
			Expect(err).NotTo(HaveOccurred())

			for _, b := range []viz.Bounds{{W: 800, H: 400}, {W: 400, H: 200}} {
				f, ok := s.Frame(viz.FixedSurface(b))
				Expect(ok).To(BeTrue())
				Expect(f.Bounds).To(Equal(b))
				bg := f.ByRole(viz.RoleBackground)
				Expect(bg).To(HaveLen(1))
				Expect(bg[0].W).To(Equal(float64(b.W)))
				for _, c := range f.ByRole(viz.RoleSpike) {
					Expect(c.X0).To(BeNumerically(">", 0))
					Expect(c.X0).To(BeNumerically("<", float64(b.W)))
				}
			}
		})
	})

	Describe("Run", func() {
		BeforeEach(func() {
			s = session.New(session.Config{Mode: stochastic.Bernoulli, Rate: 0.5, Seed: 9})
		})

		It("rejects a non-positive step", func() {
			_, err := s.Run(context.Background(), session.RunConfig{Dt: 0, Duration: 1}, nil)
			Expect(err).To(MatchError(session.ErrInvalidRun))
		})

		It("stops when the callback returns false", func() {
			res, err := s.Run(context.Background(), session.RunConfig{Dt: 0.1, Duration: 10}, func(t session.Tick) bool {
				return t.Step < 5
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Steps).To(Equal(5))
			Expect(s.Now()).To(BeNumerically("~", 0.5, 1e-9))
		})

		It("returns the partial result when cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			res, err := s.Run(ctx, session.RunConfig{Dt: 0.1, Duration: 10}, func(t session.Tick) bool {
				if t.Step == 3 {
					cancel()
				}
				return true
			})
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.Steps).To(Equal(3))
		})

		It("continues the clock across runs", func() {
			_, err := s.Run(context.Background(), session.RunConfig{Dt: 0.5, Duration: 1}, nil)
			Expect(err).NotTo(HaveOccurred())
			_, err = s.Run(context.Background(), session.RunConfig{Dt: 0.5, Duration: 1}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Now()).To(BeNumerically("~", 2, 1e-9))
		})

		It("never produces events for a negative or non-finite dt", func() {
			for _, dt := range []float64{-1, math.NaN(), math.Inf(1)} {
				_, ok := s.Tick(dt, 1)
				Expect(ok).To(BeFalse())
			}
		})
	})
})
