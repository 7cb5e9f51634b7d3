package api

type (
	// Outcome is the tri-state result of a step's forward transition
	Outcome string

	// StepResult carries a step's forward-transition outcome. Retry results
	// include the errors to surface; fatal results include the underlying
	// failure
	StepResult struct {
		Failure *Failure     `json:"failure,omitempty"`
		Errors  []FieldError `json:"errors,omitempty"`
		Outcome Outcome      `json:"outcome"`
	}
)

const (
	OutcomeAdvance Outcome = "advance"
	OutcomeRetry   Outcome = "retry"
	OutcomeFatal   Outcome = "fatal"
)

// Advance creates a successful forward-transition result
func Advance() StepResult {
	return StepResult{Outcome: OutcomeAdvance}
}

// RetryWithErrors creates a retry result carrying correctable field errors
func RetryWithErrors(errs ...FieldError) StepResult {
	return StepResult{Outcome: OutcomeRetry, Errors: errs}
}

// RetryWithFailure creates a retry result from a recoverable or transient
// remote failure
func RetryWithFailure(f *Failure) StepResult {
	return StepResult{Outcome: OutcomeRetry, Failure: f, Errors: f.Fields}
}

// Fatal creates a result that halts the wizard
func Fatal(f *Failure) StepResult {
	return StepResult{Outcome: OutcomeFatal, Failure: f}
}
