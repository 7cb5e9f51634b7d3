package api

type (
	// FieldError associates a validation message with the field it concerns
	FieldError struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}

	// ValidationResult reports the outcome of validating a step's editable
	// data. Errors preserve the order in which they were added
	ValidationResult struct {
		Errors []FieldError `json:"errors,omitempty"`
		Valid  bool         `json:"valid"`
	}
)

// ValidResult creates a passing validation result
func ValidResult() ValidationResult {
	return ValidationResult{Valid: true}
}

// InvalidResult creates a failing validation result with the given errors
func InvalidResult(errs ...FieldError) ValidationResult {
	return ValidationResult{Errors: errs}
}

// AddError appends a field error and marks the result invalid
func (r *ValidationResult) AddError(field, message string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message})
	r.Valid = false
}

// HasErrors returns whether any field errors were recorded
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}
