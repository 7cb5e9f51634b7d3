package api

import "fmt"

// FailureCategory classifies a remote failure. All remote errors are
// normalized into one of these categories before they reach the navigator
type FailureCategory string

const (
	FailureValidation   FailureCategory = "validation"
	FailureUnauthorized FailureCategory = "unauthorized"
	FailureForbidden    FailureCategory = "forbidden"
	FailureNotFound     FailureCategory = "not_found"
	FailureConflict     FailureCategory = "conflict"
	FailureServer       FailureCategory = "server"
	FailureNetwork      FailureCategory = "network"
	FailureTimeout      FailureCategory = "timeout"
)

// Failure is a classified remote error. It carries server-side field errors
// for the validation category so they can be surfaced inline
type Failure struct {
	Category FailureCategory `json:"category"`
	Message  string          `json:"message"`
	Fields   []FieldError    `json:"fields,omitempty"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Category, f.Message)
}

// Recoverable returns whether the user can correct the failure in place
// without leaving the current step
func (f *Failure) Recoverable() bool {
	return f.Category == FailureValidation || f.Category == FailureConflict
}

// RequiresReauth returns whether the failure halts navigation until the
// session re-authenticates
func (f *Failure) RequiresReauth() bool {
	return f.Category == FailureUnauthorized ||
		f.Category == FailureForbidden
}

// Transient returns whether a user-triggered retry may succeed without any
// change to the submitted data
func (f *Failure) Transient() bool {
	switch f.Category {
	case FailureServer, FailureNetwork, FailureTimeout:
		return true
	}
	return false
}
