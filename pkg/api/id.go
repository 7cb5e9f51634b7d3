package api

import "github.com/google/uuid"

type (
	// WizardID uniquely identifies a wizard instance
	WizardID string

	// StepID names a step within a flow definition
	StepID string

	// DraftID uniquely identifies a persisted draft
	DraftID string
)

// FinishStepID is the reserved guard key for the wizard-level finish
// operation. Flow step IDs may not collide with it
const FinishStepID = StepID("__finish__")

// NewWizardID mints a random wizard identifier
func NewWizardID() WizardID {
	return WizardID(uuid.NewString())
}

// NewDraftID mints a random draft identifier
func NewDraftID() DraftID {
	return DraftID(uuid.NewString())
}
