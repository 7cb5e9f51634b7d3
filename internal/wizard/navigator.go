package wizard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kode4food/intake/pkg/api"
	"github.com/kode4food/intake/pkg/log"
	"github.com/kode4food/intake/pkg/util"
)

type (
	// Navigator sequences steps and gates transitions between them. The
	// index is always within [0, N-1]; backward transitions never invoke
	// Validate or trigger remote mutation
	Navigator struct {
		flow     *Flow
		guard    *Guard
		states   []api.StepState
		prepared util.Set[int]
		index    int
	}

	// NavResult reports the outcome of a forward navigation attempt
	NavResult struct {
		// Validation is non-nil when the current step's data is invalid
		// and the navigator stayed put
		Validation []api.FieldError

		// StepResult carries retry or fatal detail from OnNext
		StepResult *api.StepResult

		// Advanced is set once the current step completed, whether the
		// index moved or the wizard-level finish is now required
		Advanced bool

		// AtEnd is set when the last step completed; the controller must
		// run the wizard-level finish instead of incrementing the index
		AtEnd bool

		// Committed is set when OnNext actually ran this call rather than
		// being skipped by the idempotency guard
		Committed bool
	}
)

// NewNavigator creates a navigator over the flow's steps, all NotStarted
func NewNavigator(flow *Flow, guard *Guard) *Navigator {
	states := make([]api.StepState, flow.Len())
	for i := range states {
		step := flow.Step(i)
		states[i] = api.StepState{
			ID:     step.ID(),
			Title:  step.Title(),
			Index:  i,
			Status: api.StepNotStarted,
		}
	}
	return &Navigator{
		flow:     flow,
		guard:    guard,
		states:   states,
		prepared: util.Set[int]{},
	}
}

// Current returns the current step index
func (n *Navigator) Current() int {
	return n.index
}

// CurrentStep returns the current step
func (n *Navigator) CurrentStep() Step {
	return n.flow.Step(n.index)
}

// CanGoBack returns whether backward navigation is possible
func (n *Navigator) CanGoBack() bool {
	return n.index > 0
}

// AtLastStep returns whether the current step is the final one
func (n *Navigator) AtLastStep() bool {
	return n.index == n.flow.Len()-1
}

// Status returns the lifecycle status of the step at the given index
func (n *Navigator) Status(index int) api.StepStatus {
	return n.states[index].Status
}

// States returns a copy of all step states in order
func (n *Navigator) States() []api.StepState {
	res := make([]api.StepState, len(n.states))
	copy(res, n.states)
	return res
}

// Activate prepares and shows the current step. Setup runs only on the
// step's first activation; OnShow runs on every activation
func (n *Navigator) Activate(wctx *Context) error {
	step := n.CurrentStep()
	if !n.prepared.Contains(n.index) {
		if err := step.Setup(); err != nil {
			return fmt.Errorf("step %s setup: %w", step.ID(), err)
		}
		n.prepared.Add(n.index)
	}
	n.setStatus(n.index, api.StepActive)
	step.OnShow(wctx)
	return nil
}

// GoNext validates the current step, performs its guarded forward
// transition, and on success either advances the index or reports AtEnd.
// On retry or fatal outcomes the index and guard are unchanged
func (n *Navigator) GoNext(ctx context.Context, wctx *Context) (*NavResult, error) {
	step := n.CurrentStep()

	if errs := n.checkRequirements(step, wctx); len(errs) > 0 {
		return &NavResult{Validation: errs}, nil
	}

	if res := step.Validate(wctx); !res.Valid {
		return &NavResult{Validation: res.Errors}, nil
	}

	committed := false
	if !n.guard.HasCommitted(step.ID()) {
		res := step.OnNext(ctx, wctx)
		switch res.Outcome {
		case api.OutcomeAdvance:
			// Commit point: the step's remote work succeeded and its
			// results are in the context. Never run OnNext again
			n.guard.MarkCommitted(step.ID())
			committed = true
		case api.OutcomeRetry, api.OutcomeFatal:
			return &NavResult{StepResult: &res}, nil
		default:
			return nil, fmt.Errorf("step %s: unknown outcome %q",
				step.ID(), res.Outcome)
		}
	} else {
		slog.Debug("Step already committed, skipping remote operation",
			log.StepID(step.ID()))
	}

	n.setStatus(n.index, api.StepCompleted)

	if n.AtLastStep() {
		return &NavResult{
			Advanced:  true,
			AtEnd:     true,
			Committed: committed,
		}, nil
	}

	step.OnHide(wctx)
	n.index++
	if err := n.Activate(wctx); err != nil {
		return nil, err
	}
	return &NavResult{Advanced: true, Committed: committed}, nil
}

// GoBack moves to the previous step without validation or remote calls.
// At index 0 it is a no-op
func (n *Navigator) GoBack(wctx *Context) (bool, error) {
	if !n.CanGoBack() {
		return false, nil
	}

	n.CurrentStep().OnHide(wctx)
	n.index--
	if err := n.Activate(wctx); err != nil {
		return false, err
	}
	return true, nil
}

// JumpTo restores the navigator to a saved position without re-running
// Validate or OnNext for steps already completed. Steps before the target
// index are marked Completed; the target step is activated
func (n *Navigator) JumpTo(index int, wctx *Context) error {
	if index < 0 || index >= n.flow.Len() {
		return fmt.Errorf("step index out of range: %d", index)
	}

	for i := 0; i < index; i++ {
		n.states[i].Status = api.StepCompleted
	}
	n.index = index
	return n.Activate(wctx)
}

func (n *Navigator) checkRequirements(
	step Step, wctx *Context,
) []api.FieldError {
	var errs []api.FieldError
	for _, key := range step.Requires() {
		if _, ok := wctx.Get(key); !ok || !wctx.Finalized(key) {
			errs = append(errs, api.FieldError{
				Field:   key,
				Message: "required value has not been finalized",
			})
		}
	}
	return errs
}

func (n *Navigator) setStatus(index int, to api.StepStatus) {
	from := n.states[index].Status
	if from == to {
		return
	}
	if !stepTransitions.CanTransition(from, to) {
		slog.Error("Invalid step status transition",
			log.StepID(n.states[index].ID),
			slog.String("from", string(from)),
			slog.String("to", string(to)))
		return
	}
	n.states[index].Status = to
}
