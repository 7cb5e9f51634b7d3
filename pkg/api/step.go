package api

type (
	// StepRequest is the payload sent to the remote service for a step's
	// side-effecting operation
	StepRequest struct {
		Data     Args     `json:"data"`
		WizardID WizardID `json:"wizard_id"`
		StepID   StepID   `json:"step_id"`
	}

	// StepResponse is the successful result of a remote step operation.
	// Identifiers are written into the wizard context and finalized
	StepResponse struct {
		Identifiers Args `json:"identifiers,omitempty"`
	}
)
