package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/kode4food/intake/pkg/api"
	"github.com/kode4food/intake/pkg/util"
)

type (
	// Flow is an immutable, ordered list of steps assembled before the
	// controller starts. Ordering never changes at runtime
	Flow struct {
		finish FinishFunc
		name   string
		steps  []Step
	}

	// FinishFunc performs the wizard-level finish operation, analogous to
	// a step's OnNext and gated by the same idempotency policy
	FinishFunc func(context.Context, *Context) api.StepResult
)

var (
	ErrFlowNameEmpty   = errors.New("flow name empty")
	ErrFlowNoSteps     = errors.New("flow has no steps")
	ErrStepIDEmpty     = errors.New("step ID empty")
	ErrStepIDDuplicate = errors.New("duplicate step ID")
	ErrStepIDReserved  = errors.New("step ID reserved")
)

// NewFlow builds a flow from an ordered list of steps. The optional finish
// function runs when the wizard completes; a nil finish means completion
// requires no remote operation of its own
func NewFlow(name string, steps []Step, finish FinishFunc) (*Flow, error) {
	if name == "" {
		return nil, ErrFlowNameEmpty
	}
	if len(steps) == 0 {
		return nil, ErrFlowNoSteps
	}

	seen := util.Set[api.StepID]{}
	for _, s := range steps {
		id := s.ID()
		if id == "" {
			return nil, ErrStepIDEmpty
		}
		if id == api.FinishStepID {
			return nil, fmt.Errorf("%w: %s", ErrStepIDReserved, id)
		}
		if seen.Contains(id) {
			return nil, fmt.Errorf("%w: %s", ErrStepIDDuplicate, id)
		}
		seen.Add(id)
	}

	res := &Flow{
		name:   name,
		steps:  make([]Step, len(steps)),
		finish: finish,
	}
	copy(res.steps, steps)
	return res, nil
}

// Name returns the flow's registered name
func (f *Flow) Name() string {
	return f.name
}

// Len returns the number of steps in the flow
func (f *Flow) Len() int {
	return len(f.steps)
}

// Step returns the step at the given index
func (f *Flow) Step(index int) Step {
	return f.steps[index]
}
