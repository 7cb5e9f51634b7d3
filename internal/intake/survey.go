package intake

import (
	"context"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/kode4food/intake/internal/remote"
	"github.com/kode4food/intake/internal/wizard"
	"github.com/kode4food/intake/pkg/api"
)

type (
	// Survey builds office survey flow instances over a shared step service
	// and rule engine
	Survey struct {
		remote remote.Service
		rules  *wizard.RuleEngine
	}

	unitData struct {
		UnitID     string `mapstructure:"unit_id"`
		UnitNumber string `mapstructure:"unit_number"`
		UnitType   string `mapstructure:"unit_type"`
		Floor      int    `mapstructure:"floor"`
	}

	claimData struct {
		Kind  string  `mapstructure:"kind"`
		Share float64 `mapstructure:"share"`
	}
)

// FlowName is the registered name of the office survey flow
const FlowName = "office-survey"

// Step identifiers within the office survey flow
const (
	StepBuilding api.StepID = "building"
	StepUnit     api.StepID = "unit"
	StepClaimant api.StepID = "claimant"
	StepClaim    api.StepID = "claim"
	StepReview   api.StepID = "review"
)

// Context slot names written by the survey steps
const (
	SlotBuildingID = "building_id"
	SlotUnitID     = "unit_id"
	SlotIsNewUnit  = "is_new_unit"
	SlotClaimantID = "claimant_id"
	SlotClaimID    = "claim_id"
	SlotReference  = "reference_number"
)

const (
	unitRule = `
		local errs = {}
		if unit_number == nil or unit_number == "" then
			errs.unit_number = "unit number is required"
		end
		if floor ~= nil and floor < 0 then
			errs.floor = "floor cannot be negative"
		end
		if next(errs) == nil then
			return true
		end
		return errs
	`

	claimRule = `
		local errs = {}
		if kind == nil or kind == "" then
			errs.kind = "claim kind must be selected"
		end
		if share == nil or share <= 0 or share > 100 then
			errs.share = "ownership share must be between 0 and 100"
		end
		if next(errs) == nil then
			return true
		end
		return errs
	`
)

var ErrNoIdentifier = errors.New("step service returned no identifier")

// NewSurvey creates a survey flow factory over the given step service
func NewSurvey(svc remote.Service) *Survey {
	return &Survey{
		remote: svc,
		rules:  wizard.NewRuleEngine(),
	}
}

// RegisterFlows registers the flows this package provides
func RegisterFlows(r *Registry, svc remote.Service) {
	s := NewSurvey(svc)
	r.Register(FlowName, s.Flow)
}

// Flow builds a fresh office survey flow instance
func (s *Survey) Flow() (*wizard.Flow, error) {
	unitCheck, err := s.rules.Compile(StepUnit, unitRule, []string{
		"unit_number", "floor",
	})
	if err != nil {
		return nil, err
	}
	claimCheck, err := s.rules.Compile(StepClaim, claimRule, []string{
		"kind", "share",
	})
	if err != nil {
		return nil, err
	}

	steps := []wizard.Step{
		&buildingStep{
			BaseStep: wizard.BaseStep{
				StepID: StepBuilding,
				Name:   "Select Building",
			},
		},
		&unitStep{
			BaseStep: wizard.BaseStep{
				StepID: StepUnit,
				Name:   "Select Unit",
				Needs:  []string{SlotBuildingID},
			},
			survey: s,
			rule:   unitCheck,
		},
		&claimantStep{
			BaseStep: wizard.BaseStep{
				StepID: StepClaimant,
				Name:   "Register Claimant",
				Needs:  []string{SlotUnitID},
			},
			survey: s,
		},
		&claimStep{
			BaseStep: wizard.BaseStep{
				StepID: StepClaim,
				Name:   "Create Claim",
				Needs:  []string{SlotUnitID, SlotClaimantID},
			},
			survey: s,
			rule:   claimCheck,
		},
		&reviewStep{
			BaseStep: wizard.BaseStep{
				StepID: StepReview,
				Name:   "Review and Submit",
			},
		},
	}
	return wizard.NewFlow(FlowName, steps, s.submit)
}

// submit performs the wizard-level finish: the whole survey is handed to
// the backend, which replies with its reference number
func (s *Survey) submit(
	ctx context.Context, wctx *wizard.Context,
) api.StepResult {
	snap := wctx.Snapshot()
	res, err := s.remote.Execute(ctx, stepRequest(wctx, "submit", snap.Values))
	if err != nil {
		return mapFailure(err)
	}

	ref, ok := res.Identifiers[SlotReference].(string)
	if !ok || ref == "" {
		return serverFault(fmt.Errorf("%w: %s", ErrNoIdentifier, "submit"))
	}
	if err := wctx.SetFinal(SlotReference, ref); err != nil {
		return serverFault(err)
	}
	return api.Advance()
}

// mapFailure converts a classified remote error into a step outcome. Only a
// missing resource is unrecoverable; everything else can be corrected or
// retried in place
func mapFailure(err error) api.StepResult {
	var failure *api.Failure
	if !errors.As(err, &failure) {
		failure = &api.Failure{
			Category: api.FailureServer,
			Message:  err.Error(),
		}
	}
	if failure.Category == api.FailureNotFound {
		return api.Fatal(failure)
	}
	return api.RetryWithFailure(failure)
}

func serverFault(err error) api.StepResult {
	return api.Fatal(&api.Failure{
		Category: api.FailureServer,
		Message:  err.Error(),
	})
}

func decodeData[T any](data api.Args, out *T) error {
	return mapstructure.Decode(map[string]any(data), out)
}

// stepRequest stamps a remote request with the wizard identity the
// controller seeds into the context
func stepRequest(
	wctx *wizard.Context, id api.StepID, data api.Args,
) *api.StepRequest {
	return &api.StepRequest{
		WizardID: api.WizardID(wctx.GetString(wizard.SlotWizardID)),
		StepID:   id,
		Data:     data,
	}
}
