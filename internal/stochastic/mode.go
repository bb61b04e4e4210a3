package stochastic

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownMode = errors.New("stochastic: unknown mode")

type Mode int

const (
	Bernoulli Mode = iota
	Poisson
)

var Modes = []Mode{Bernoulli, Poisson}

func (m Mode) String() string {
	switch m {
	case Bernoulli:
		return "bernoulli"
	case Poisson:
		return "poisson"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Next cycles to the other mode.
func (m Mode) Next() Mode {
	if m == Bernoulli {
		return Poisson
	}
	return Bernoulli
}

// ParseMode accepts the canonical names plus the "coin"/"spikes" aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bernoulli", "coin":
		return Bernoulli, nil
	case "poisson", "spikes", "spike":
		return Poisson, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if m != Bernoulli && m != Poisson {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Info holds the user-facing labels for a mode.
type Info struct {
	Header      string
	ParamLabel  string
	Description string
}

func (m Mode) Info() Info {
	if m == Poisson {
		return Info{
			Header:      "Poisson Process",
			ParamLabel:  "Firing Rate (λ)",
			Description: "Simulating random spike arrival times.",
		}
	}
	return Info{
		Header:      "Bernoulli Process",
		ParamLabel:  "Probability (p)",
		Description: "Simulating independent binary events (Ion Channels).",
	}
}
