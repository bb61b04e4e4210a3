package stochastic

type Outcome uint8

const (
	Closed Outcome = iota
	Open
)

func (o Outcome) String() string {
	if o == Open {
		return "open"
	}
	return "closed"
}

// Event is a single emitted record. Bernoulli events carry an Outcome,
// Poisson events carry the clock reading at which they fired. Seq is the
// arrival order within a generator and is strictly increasing.
type Event struct {
	Seq     uint64
	Time    float64
	Outcome Outcome
}
