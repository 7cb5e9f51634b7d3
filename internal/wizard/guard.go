package wizard

import "github.com/kode4food/intake/pkg/api"

// Guard tracks which steps have already committed their remote mutation.
// Flags transition false to true only; they revert solely through explicit
// reset. When a step's flag is set, its remote operation is skipped and
// previously stored context values are authoritative
type Guard struct {
	committed map[api.StepID]bool
}

// NewGuard creates an empty idempotency guard
func NewGuard() *Guard {
	return &Guard{
		committed: map[api.StepID]bool{},
	}
}

// HasCommitted returns whether the step's remote mutation has committed
func (g *Guard) HasCommitted(stepID api.StepID) bool {
	return g.committed[stepID]
}

// MarkCommitted records that the step's remote mutation committed
func (g *Guard) MarkCommitted(stepID api.StepID) {
	g.committed[stepID] = true
}

// Reset clears a single step's flag
func (g *Guard) Reset(stepID api.StepID) {
	delete(g.committed, stepID)
}

// ResetAll clears every flag
func (g *Guard) ResetAll() {
	g.committed = map[api.StepID]bool{}
}

// AnyCommitted returns whether any step has committed remote state
func (g *Guard) AnyCommitted() bool {
	for _, v := range g.committed {
		if v {
			return true
		}
	}
	return false
}

// Flags returns a copy of the guard flags for persistence
func (g *Guard) Flags() api.Guards {
	res := make(api.Guards, len(g.committed))
	for k, v := range g.committed {
		if v {
			res[k] = true
		}
	}
	return res
}

// Restore replaces the guard flags from a persisted draft
func (g *Guard) Restore(flags api.Guards) {
	g.committed = map[api.StepID]bool{}
	for k, v := range flags {
		if v {
			g.committed[k] = true
		}
	}
}
