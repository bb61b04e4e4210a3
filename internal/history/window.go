// Package history keeps the bounded record of emitted events.
package history

import "github.com/san-kum/stochlab/internal/stochastic"

const (
	DefaultCapacity = 200
	DefaultSpan     = 5.0
)

// Window is an arrival-ordered event buffer with FIFO eviction.
type Window interface {
	Append(ev stochastic.Event)
	Prune(now float64)
	Clear()
	// Snapshot returns the current events oldest first. The slice aliases
	// internal storage and must not be modified or retained across ticks.
	Snapshot() []stochastic.Event
	Len() int
}

// New returns the window policy used by mode.
func New(mode stochastic.Mode) Window {
	if mode == stochastic.Poisson {
		return NewTimeWindow(DefaultSpan)
	}
	return NewCountWindow(DefaultCapacity)
}

// CountWindow retains the most recent capacity events.
type CountWindow struct {
	capacity int
	events   []stochastic.Event
}

func NewCountWindow(capacity int) *CountWindow {
	if capacity < 1 {
		capacity = 1
	}
	return &CountWindow{
		capacity: capacity,
		events:   make([]stochastic.Event, 0, capacity),
	}
}

func (w *CountWindow) Append(ev stochastic.Event) {
	if len(w.events) == w.capacity {
		copy(w.events, w.events[1:])
		w.events = w.events[:len(w.events)-1]
	}
	w.events = append(w.events, ev)
}

// Prune is a no-op; the count bound is enforced on Append.
func (w *CountWindow) Prune(float64) {}

func (w *CountWindow) Clear()                       { w.events = w.events[:0] }
func (w *CountWindow) Snapshot() []stochastic.Event { return w.events }
func (w *CountWindow) Len() int                     { return len(w.events) }
func (w *CountWindow) Capacity() int                { return w.capacity }

// TimeWindow retains events with Time >= now - span.
type TimeWindow struct {
	span   float64
	events []stochastic.Event
	head   int
}

func NewTimeWindow(span float64) *TimeWindow {
	return &TimeWindow{
		span:   span,
		events: make([]stochastic.Event, 0, 256),
	}
}

func (w *TimeWindow) Append(ev stochastic.Event) {
	w.events = append(w.events, ev)
}

func (w *TimeWindow) Prune(now float64) {
	cutoff := now - w.span
	for w.head < len(w.events) && w.events[w.head].Time < cutoff {
		w.head++
	}
	// compact once the dead prefix dominates
	if w.head > 0 && w.head >= len(w.events)/2 {
		n := copy(w.events, w.events[w.head:])
		w.events = w.events[:n]
		w.head = 0
	}
}

func (w *TimeWindow) Clear() {
	w.events = w.events[:0]
	w.head = 0
}

func (w *TimeWindow) Snapshot() []stochastic.Event { return w.events[w.head:] }
func (w *TimeWindow) Len() int                     { return len(w.events) - w.head }
func (w *TimeWindow) Span() float64                { return w.span }
