package stats

// Accumulator holds every RequestOutcome produced during a run, in the order the calls were made.
//
// An Accumulator is created once at the start of a run, passed to everything that makes API
// calls, and read once when the report is rendered. It is not safe for concurrent use; all calls
// are expected to come from the goroutine that drives the run.
type Accumulator struct {
	outcomes []RequestOutcome
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add appends an outcome. Outcomes are never rejected or deduplicated.
func (a *Accumulator) Add(outcome RequestOutcome) {
	a.outcomes = append(a.outcomes, outcome)
}

// Len returns the number of recorded outcomes.
func (a *Accumulator) Len() int {
	return len(a.outcomes)
}

// Outcomes returns a copy of the recorded outcomes in call order.
func (a *Accumulator) Outcomes() []RequestOutcome {
	return append([]RequestOutcome(nil), a.outcomes...)
}

// Summary computes aggregate statistics over the current outcomes. It does not modify the
// Accumulator, so calling it repeatedly without an intervening Add gives identical results.
func (a *Accumulator) Summary() Summary {
	return Summarize(a.outcomes)
}
