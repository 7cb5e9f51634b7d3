package intake

import (
	"context"
	"fmt"

	"github.com/kode4food/intake/internal/wizard"
	"github.com/kode4food/intake/pkg/api"
)

type (
	// buildingStep records which building the survey concerns. Selection is
	// purely local; the identifier is finalized on advance
	buildingStep struct {
		wizard.BaseStep
	}

	// unitStep selects an existing unit or creates a new one through the
	// step service. Creation finalizes the returned unit identifier
	unitStep struct {
		wizard.BaseStep
		survey *Survey
		rule   *wizard.CompiledRule
	}

	// claimantStep registers the person making the claim
	claimantStep struct {
		wizard.BaseStep
		survey *Survey
	}

	// claimStep links the claimant to the unit through a claim record
	claimStep struct {
		wizard.BaseStep
		survey *Survey
		rule   *wizard.CompiledRule
	}

	// reviewStep presents the completed survey. It has no editable data and
	// no remote work of its own; submission happens at wizard finish
	reviewStep struct {
		wizard.BaseStep
	}
)

func (s *buildingStep) Validate(*wizard.Context) api.ValidationResult {
	if s.LocalString(SlotBuildingID) == "" {
		return api.InvalidResult(api.FieldError{
			Field:   SlotBuildingID,
			Message: "a building must be selected",
		})
	}
	return api.ValidResult()
}

func (s *buildingStep) OnNext(
	_ context.Context, wctx *wizard.Context,
) api.StepResult {
	if err := wctx.SetFinal(
		SlotBuildingID, s.LocalString(SlotBuildingID),
	); err != nil {
		return serverFault(err)
	}
	return api.Advance()
}

func (s *unitStep) Validate(*wizard.Context) api.ValidationResult {
	// Choosing an existing unit needs no field checks
	if s.LocalString(SlotUnitID) != "" {
		return api.ValidResult()
	}

	res, err := s.survey.rules.Evaluate(s.rule, s.CollectData())
	if err != nil {
		return api.InvalidResult(api.FieldError{
			Message: fmt.Sprintf("rule evaluation failed: %s", err),
		})
	}
	return res
}

func (s *unitStep) OnNext(
	ctx context.Context, wctx *wizard.Context,
) api.StepResult {
	var data unitData
	if err := decodeData(s.CollectData(), &data); err != nil {
		return serverFault(err)
	}

	// An existing unit needs no remote call
	if data.UnitID != "" {
		if err := wctx.SetFinal(SlotUnitID, data.UnitID); err != nil {
			return serverFault(err)
		}
		return api.Advance()
	}

	res, err := s.survey.remote.Execute(ctx, stepRequest(wctx, s.ID(), api.Args{
		SlotBuildingID: wctx.GetString(SlotBuildingID),
		"unit_number":  data.UnitNumber,
		"unit_type":    data.UnitType,
		"floor":        data.Floor,
	}))
	if err != nil {
		return mapFailure(err)
	}

	unitID, ok := res.Identifiers[SlotUnitID].(string)
	if !ok || unitID == "" {
		return serverFault(fmt.Errorf("%w: %s", ErrNoIdentifier, s.ID()))
	}
	if err := wctx.SetFinal(SlotUnitID, unitID); err != nil {
		return serverFault(err)
	}
	if err := wctx.Set(SlotIsNewUnit, true); err != nil {
		return serverFault(err)
	}
	return api.Advance()
}

func (s *claimantStep) Validate(*wizard.Context) api.ValidationResult {
	if s.LocalString("name") == "" {
		return api.InvalidResult(api.FieldError{
			Field:   "name",
			Message: "at least one person must be registered",
		})
	}
	if s.LocalString("national_id") == "" {
		return api.InvalidResult(api.FieldError{
			Field:   "national_id",
			Message: "national ID is required",
		})
	}
	return api.ValidResult()
}

func (s *claimantStep) OnNext(
	ctx context.Context, wctx *wizard.Context,
) api.StepResult {
	res, err := s.survey.remote.Execute(
		ctx, stepRequest(wctx, s.ID(), s.CollectData()),
	)
	if err != nil {
		return mapFailure(err)
	}

	claimantID, ok := res.Identifiers[SlotClaimantID].(string)
	if !ok || claimantID == "" {
		return serverFault(fmt.Errorf("%w: %s", ErrNoIdentifier, s.ID()))
	}
	if err := wctx.SetFinal(SlotClaimantID, claimantID); err != nil {
		return serverFault(err)
	}
	return api.Advance()
}

func (s *claimStep) Validate(*wizard.Context) api.ValidationResult {
	res, err := s.survey.rules.Evaluate(s.rule, s.CollectData())
	if err != nil {
		return api.InvalidResult(api.FieldError{
			Message: fmt.Sprintf("rule evaluation failed: %s", err),
		})
	}
	return res
}

func (s *claimStep) OnNext(
	ctx context.Context, wctx *wizard.Context,
) api.StepResult {
	var data claimData
	if err := decodeData(s.CollectData(), &data); err != nil {
		return serverFault(err)
	}

	res, err := s.survey.remote.Execute(ctx, stepRequest(wctx, s.ID(), api.Args{
		SlotUnitID:     wctx.GetString(SlotUnitID),
		SlotClaimantID: wctx.GetString(SlotClaimantID),
		"kind":         data.Kind,
		"share":        data.Share,
	}))
	if err != nil {
		return mapFailure(err)
	}

	claimID, ok := res.Identifiers[SlotClaimID].(string)
	if !ok || claimID == "" {
		return serverFault(fmt.Errorf("%w: %s", ErrNoIdentifier, s.ID()))
	}
	if err := wctx.SetFinal(SlotClaimID, claimID); err != nil {
		return serverFault(err)
	}
	return api.Advance()
}
