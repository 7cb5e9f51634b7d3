package wizard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/intake/internal/wizard"
	"github.com/kode4food/intake/pkg/api"
)

func TestNewFlow(t *testing.T) {
	as := assert.New(t)

	f, err := wizard.NewFlow("survey", []wizard.Step{
		newStep("building", "Building"),
		newStep("unit", "Unit"),
	}, nil)
	as.NoError(err)
	as.Equal("survey", f.Name())
	as.Equal(2, f.Len())
	as.Equal(api.StepID("building"), f.Step(0).ID())
	as.Equal(api.StepID("unit"), f.Step(1).ID())
}

func TestNewFlowErrors(t *testing.T) {
	as := assert.New(t)

	_, err := wizard.NewFlow("", []wizard.Step{newStep("a", "A")}, nil)
	as.ErrorIs(err, wizard.ErrFlowNameEmpty)

	_, err = wizard.NewFlow("survey", nil, nil)
	as.ErrorIs(err, wizard.ErrFlowNoSteps)

	_, err = wizard.NewFlow("survey", []wizard.Step{
		newStep("", "Nameless"),
	}, nil)
	as.ErrorIs(err, wizard.ErrStepIDEmpty)

	_, err = wizard.NewFlow("survey", []wizard.Step{
		newStep("a", "A"),
		newStep("a", "A again"),
	}, nil)
	as.ErrorIs(err, wizard.ErrStepIDDuplicate)

	_, err = wizard.NewFlow("survey", []wizard.Step{
		newStep(string(api.FinishStepID), "Bad"),
	}, nil)
	as.ErrorIs(err, wizard.ErrStepIDReserved)
}
