package stats

// DefaultRefresh is the readout refresh interval in host-clock seconds.
const DefaultRefresh = 0.1

// Throttle gates readout refreshes to at most one per Interval.
type Throttle struct {
	Interval float64
	last     float64
	started  bool
}

func NewThrottle(interval float64) *Throttle {
	return &Throttle{Interval: interval}
}

// Ready reports whether a refresh is due at now and, if so, records it.
// A clock that jumps backwards counts as due.
func (t *Throttle) Ready(now float64) bool {
	if t.started && now >= t.last && now-t.last <= t.Interval {
		return false
	}
	t.last = now
	t.started = true
	return true
}

func (t *Throttle) Reset() {
	t.last = 0
	t.started = false
}
