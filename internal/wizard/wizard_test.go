package wizard_test

import (
	"context"

	"github.com/kode4food/intake/internal/wizard"
	"github.com/kode4food/intake/pkg/api"
)

type (
	// countingStep records lifecycle invocations and delegates OnNext to an
	// optional function, so tests can assert exactly-once semantics
	countingStep struct {
		wizard.BaseStep
		validateFn func(*wizard.Context) api.ValidationResult
		onNextFn   func(context.Context, *wizard.Context) api.StepResult
		setupCalls int
		showCalls  int
		hideCalls  int
		nextCalls  int
		validCalls int
	}
)

func newStep(id, title string, needs ...string) *countingStep {
	return &countingStep{
		BaseStep: wizard.BaseStep{
			StepID: api.StepID(id),
			Name:   title,
			Needs:  needs,
		},
	}
}

func (s *countingStep) Setup() error {
	s.setupCalls++
	return nil
}

func (s *countingStep) OnShow(*wizard.Context) {
	s.showCalls++
}

func (s *countingStep) OnHide(*wizard.Context) {
	s.hideCalls++
}

func (s *countingStep) Validate(wctx *wizard.Context) api.ValidationResult {
	s.validCalls++
	if s.validateFn != nil {
		return s.validateFn(wctx)
	}
	return api.ValidResult()
}

func (s *countingStep) OnNext(
	ctx context.Context, wctx *wizard.Context,
) api.StepResult {
	s.nextCalls++
	if s.onNextFn != nil {
		return s.onNextFn(ctx, wctx)
	}
	return api.Advance()
}

func mustFlow(name string, steps ...wizard.Step) *wizard.Flow {
	f, err := wizard.NewFlow(name, steps, nil)
	if err != nil {
		panic(err)
	}
	return f
}

func mustFlowWithFinish(
	name string, finish wizard.FinishFunc, steps ...wizard.Step,
) *wizard.Flow {
	f, err := wizard.NewFlow(name, steps, finish)
	if err != nil {
		panic(err)
	}
	return f
}
