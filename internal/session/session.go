// Package session ties the generator, history window, statistics and
// renderer together into one lab session driven by host ticks.
//
// A Session is not safe for concurrent use. The host calls Tick, Frame and
// the setters from a single goroutine.
package session

import (
	"log/slog"

	"github.com/san-kum/stochlab/internal/history"
	"github.com/san-kum/stochlab/internal/logging"
	"github.com/san-kum/stochlab/internal/stats"
	"github.com/san-kum/stochlab/internal/stochastic"
	"github.com/san-kum/stochlab/internal/viz"
)

type Config struct {
	Mode stochastic.Mode
	Rate float64
	Seed int64
	// Source overrides the seeded generator randomness, mainly for tests.
	Source stochastic.Source
	// Refresh is the stats refresh interval in seconds; zero means
	// stats.DefaultRefresh.
	Refresh float64
	Logger  *slog.Logger
}

type Session struct {
	mode     stochastic.Mode
	rate     float64
	now      float64
	src      stochastic.Source
	gen      stochastic.Generator
	window   history.Window
	renderer viz.Renderer
	throttle *stats.Throttle
	live     stats.Live
	log      *slog.Logger
}

func New(cfg Config) *Session {
	src := cfg.Source
	if src == nil {
		src = stochastic.NewSource(cfg.Seed)
	}
	refresh := cfg.Refresh
	if refresh <= 0 {
		refresh = stats.DefaultRefresh
	}
	s := &Session{
		rate:     stochastic.ClampRate(cfg.Rate),
		src:      src,
		throttle: stats.NewThrottle(refresh),
		log:      logging.OrDefault(cfg.Logger),
	}
	s.enter(cfg.Mode)
	return s
}

// enter installs the per-mode generator, window and renderer with empty
// state.
func (s *Session) enter(mode stochastic.Mode) {
	s.mode = mode
	s.gen = stochastic.New(mode, s.src)
	s.window = history.New(mode)
	s.renderer = viz.NewRenderer(mode)
	s.throttle.Reset()
	s.live = stats.Empty(mode)
}

// Tick advances the session by dt seconds with the host clock at now. It
// returns the event emitted on this tick, if any.
func (s *Session) Tick(dt, now float64) (stochastic.Event, bool) {
	s.now = now
	ev, ok := s.gen.Step(dt, now, s.rate)
	if ok {
		s.window.Append(ev)
	}
	s.window.Prune(now)
	if s.throttle.Ready(now) {
		s.Refresh()
	}
	return ev, ok
}

// Refresh recomputes the stats readout immediately, bypassing the throttle.
func (s *Session) Refresh() stats.Live {
	s.live = stats.Compute(s.mode, s.window.Snapshot())
	return s.live
}

// Frame renders the current window onto surface. ok is false when the
// surface is not attached; nothing is drawn and the host retries next tick.
func (s *Session) Frame(surface viz.Surface) (viz.Frame, bool) {
	b, ok := surface.Bounds()
	if !ok {
		return viz.Frame{}, false
	}
	return s.renderer.Render(b, viz.Input{
		Rate:   s.rate,
		Now:    s.now,
		Events: s.window.Snapshot(),
	}), true
}

// SetMode switches process. Switching to the current mode is a no-op;
// any other switch discards history and stats.
func (s *Session) SetMode(mode stochastic.Mode) {
	if mode == s.mode {
		return
	}
	s.log.Debug("mode switch", "from", s.mode, "to", mode)
	s.enter(mode)
}

// Reset clears history and stats, keeping mode and rate.
func (s *Session) Reset() {
	s.log.Debug("reset", "mode", s.mode, "events", s.window.Len())
	s.enter(s.mode)
}

// SetRate updates the rate control, clamped into range.
func (s *Session) SetRate(rate float64) {
	s.rate = stochastic.ClampRate(rate)
}

func (s *Session) Mode() stochastic.Mode { return s.mode }
func (s *Session) Rate() float64         { return s.rate }
func (s *Session) Now() float64          { return s.now }

// Stats returns the last refreshed readout.
func (s *Session) Stats() stats.Live { return s.live }

// Snapshot returns a copy of the current history, oldest first.
func (s *Session) Snapshot() []stochastic.Event {
	evs := s.window.Snapshot()
	out := make([]stochastic.Event, len(evs))
	copy(out, evs)
	return out
}

// Len is the number of events currently in the window.
func (s *Session) Len() int { return s.window.Len() }
