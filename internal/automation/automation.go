// Package automation runs scripted and batch experiments on headless
// sessions: YAML scenarios, rate sweeps and repeated Monte Carlo trials.
package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"

	"github.com/san-kum/stochlab/internal/logging"
	"github.com/san-kum/stochlab/internal/session"
	"github.com/san-kum/stochlab/internal/stochastic"
	"gopkg.in/yaml.v3"
)

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Seed        int64          `yaml:"seed"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run in a scenario. Steps share a session, so a step
// with the same mode as the previous one continues its history and clock
// unless Reset is set.
type ScenarioStep struct {
	Mode     stochastic.Mode `yaml:"mode"`
	Rate     float64         `yaml:"rate"`
	Duration float64         `yaml:"duration"`
	Dt       float64         `yaml:"dt"`
	Reset    bool            `yaml:"reset"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyScenario, path)
	}
	return &scenario, nil
}

// RunScenario executes all steps in order on one session.
func RunScenario(ctx context.Context, scenario *Scenario, log *slog.Logger) ([]session.Result, error) {
	log = logging.OrDefault(log)
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}

	first := scenario.Steps[0]
	s := session.New(session.Config{Mode: first.Mode, Rate: first.Rate, Seed: scenario.Seed, Logger: log})
	results := make([]session.Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		log.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "mode", step.Mode, "rate", step.Rate)

		s.SetMode(step.Mode)
		s.SetRate(step.Rate)
		if step.Reset {
			s.Reset()
		}

		res, err := s.Run(ctx, session.RunConfig{Dt: step.Dt, Duration: step.Duration}, nil)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		results = append(results, *res)
	}

	return results, nil
}

// RateSweep runs one fresh session per rate value between RateMin and
// RateMax inclusive.
type RateSweep struct {
	Mode     stochastic.Mode
	RateMin  float64
	RateMax  float64
	NumSteps int
	Duration float64
	Dt       float64
	Seed     int64
}

// SweepResult compares the observed estimate at one rate with theory:
// the open fraction against p for Bernoulli, the spike rate in Hz against
// λ_eff for Poisson.
type SweepResult struct {
	Rate     float64
	Expected float64
	Observed float64
	Events   int
}

// AbsError is |Observed - Expected|.
func (r SweepResult) AbsError() float64 { return math.Abs(r.Observed - r.Expected) }

func RunSweep(ctx context.Context, sweep *RateSweep, log *slog.Logger) ([]SweepResult, error) {
	log = logging.OrDefault(log)
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("%w: sweep needs at least one step", session.ErrInvalidRun)
	}

	rateStep := 0.0
	if sweep.NumSteps > 1 {
		rateStep = (sweep.RateMax - sweep.RateMin) / float64(sweep.NumSteps-1)
	}
	cfg := session.RunConfig{Dt: sweep.Dt, Duration: sweep.Duration}
	results := make([]SweepResult, 0, sweep.NumSteps)

	for i := 0; i < sweep.NumSteps; i++ {
		rate := stochastic.ClampRate(sweep.RateMin + float64(i)*rateStep)
		s := session.New(session.Config{Mode: sweep.Mode, Rate: rate, Seed: sweep.Seed + int64(i)})

		res, err := s.Run(ctx, cfg, nil)
		if err != nil {
			return results, err
		}

		results = append(results, SweepResult{
			Rate:     rate,
			Expected: Expected(sweep.Mode, rate),
			Observed: Observed(res, cfg.Dt),
			Events:   len(res.Events),
		})
		log.Debug("sweep", "step", i+1, "of", sweep.NumSteps, "rate", rate)
	}

	return results, nil
}

// Expected is the theoretical value a run at rate estimates.
func Expected(mode stochastic.Mode, rate float64) float64 {
	if mode == stochastic.Poisson {
		return stochastic.EffectiveRate(rate)
	}
	return stochastic.ClampRate(rate)
}

// Observed estimates Expected from every event of a run, not just the
// ones left in the window.
func Observed(res *session.Result, dt float64) float64 {
	if res.Mode == stochastic.Poisson {
		elapsed := float64(res.Steps) * dt
		if elapsed <= 0 {
			return 0
		}
		return float64(len(res.Events)) / elapsed
	}
	open := 0
	for _, ev := range res.Events {
		if ev.Outcome == stochastic.Open {
			open++
		}
	}
	return float64(open) / float64(max(len(res.Events), 1))
}

// MonteCarloConfig repeats one run with consecutive seeds.
type MonteCarloConfig struct {
	Mode      stochastic.Mode
	Rate      float64
	NumTrials int
	Duration  float64
	Dt        float64
	Seed      int64
}

type MonteCarloResult struct {
	TrialID  int
	Seed     int64
	Observed float64
	Events   int
}

// RunMonteCarlo runs every trial in its own goroutine on its own session.
// Results are indexed by trial, so their order does not depend on
// scheduling.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, log *slog.Logger) ([]MonteCarloResult, error) {
	log = logging.OrDefault(log)
	if cfg.NumTrials < 1 {
		return nil, fmt.Errorf("%w: monte carlo needs at least one trial", session.ErrInvalidRun)
	}
	runCfg := session.RunConfig{Dt: cfg.Dt, Duration: cfg.Duration}
	results := make([]MonteCarloResult, cfg.NumTrials)
	errs := make([]error, cfg.NumTrials)

	var wg sync.WaitGroup
	for trial := 0; trial < cfg.NumTrials; trial++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			seed := cfg.Seed + int64(idx)
			s := session.New(session.Config{Mode: cfg.Mode, Rate: cfg.Rate, Seed: seed})
			res, err := s.Run(ctx, runCfg, nil)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx] = MonteCarloResult{
				TrialID:  idx,
				Seed:     seed,
				Observed: Observed(res, cfg.Dt),
				Events:   len(res.Events),
			}
		}(trial)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	log.Info("monte carlo", "trials", cfg.NumTrials, "mode", cfg.Mode, "rate", cfg.Rate)
	return results, nil
}

// MonteCarloStats summarises the spread of the per-trial estimates.
func MonteCarloStats(results []MonteCarloResult) (mean, stddev float64) {
	if len(results) == 0 {
		return 0, 0
	}
	for _, r := range results {
		mean += r.Observed
	}
	mean /= float64(len(results))
	for _, r := range results {
		d := r.Observed - mean
		stddev += d * d
	}
	return mean, math.Sqrt(stddev / float64(len(results)))
}
