package wizard

import (
	"github.com/kode4food/intake/pkg/api"
	"github.com/kode4food/intake/pkg/util"
)

// StateTransitions maps states to their set of valid next states
type StateTransitions[T comparable] map[T]util.Set[T]

var (
	wizardTransitions = StateTransitions[api.WizardStatus]{
		api.WizardActive: util.SetOf(
			api.WizardFinished,
			api.WizardCancelled,
			api.WizardFailed,
		),
		api.WizardFinished:  {},
		api.WizardCancelled: {},
		api.WizardFailed:    {},
	}

	// A completed step returns to active on backward navigation without
	// clearing its guard or its committed context values
	stepTransitions = StateTransitions[api.StepStatus]{
		api.StepNotStarted: util.SetOf(
			api.StepActive,
		),
		api.StepActive: util.SetOf(
			api.StepCompleted,
		),
		api.StepCompleted: util.SetOf(
			api.StepActive,
		),
	}
)

// CanTransition returns whether transition from one state to another is valid
func (t StateTransitions[T]) CanTransition(from, to T) bool {
	allowed, ok := t[from]
	if !ok {
		return false
	}
	return allowed.Contains(to)
}

// IsTerminal returns true if the state has no valid transitions
func (t StateTransitions[T]) IsTerminal(state T) bool {
	allowed, ok := t[state]
	return ok && allowed.IsEmpty()
}
