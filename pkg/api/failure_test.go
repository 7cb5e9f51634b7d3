package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/intake/pkg/api"
)

func TestFailureError(t *testing.T) {
	f := &api.Failure{
		Category: api.FailureConflict,
		Message:  "unit already linked",
	}
	assert.Equal(t, "conflict: unit already linked", f.Error())
}

func TestFailureRecoverable(t *testing.T) {
	for _, c := range []api.FailureCategory{
		api.FailureValidation, api.FailureConflict,
	} {
		f := &api.Failure{Category: c}
		assert.True(t, f.Recoverable(), string(c))
		assert.False(t, f.RequiresReauth(), string(c))
	}
}

func TestFailureRequiresReauth(t *testing.T) {
	for _, c := range []api.FailureCategory{
		api.FailureUnauthorized, api.FailureForbidden,
	} {
		f := &api.Failure{Category: c}
		assert.True(t, f.RequiresReauth(), string(c))
		assert.False(t, f.Transient(), string(c))
	}
}

func TestFailureTransient(t *testing.T) {
	for _, c := range []api.FailureCategory{
		api.FailureServer, api.FailureNetwork, api.FailureTimeout,
	} {
		f := &api.Failure{Category: c}
		assert.True(t, f.Transient(), string(c))
		assert.False(t, f.Recoverable(), string(c))
	}

	f := &api.Failure{Category: api.FailureNotFound}
	assert.False(t, f.Transient())
	assert.False(t, f.Recoverable())
	assert.False(t, f.RequiresReauth())
}

func TestOutcomeConstructors(t *testing.T) {
	assert.Equal(t, api.OutcomeAdvance, api.Advance().Outcome)

	retry := api.RetryWithErrors(
		api.FieldError{Field: "area", Message: "must be positive"},
	)
	assert.Equal(t, api.OutcomeRetry, retry.Outcome)
	assert.Len(t, retry.Errors, 1)

	f := &api.Failure{
		Category: api.FailureValidation,
		Message:  "invalid",
		Fields: []api.FieldError{
			{Field: "name", Message: "too long"},
		},
	}
	retry = api.RetryWithFailure(f)
	assert.Equal(t, api.OutcomeRetry, retry.Outcome)
	assert.Equal(t, f.Fields, retry.Errors)
	assert.Same(t, f, retry.Failure)

	fatal := api.Fatal(&api.Failure{Category: api.FailureNotFound})
	assert.Equal(t, api.OutcomeFatal, fatal.Outcome)
	assert.NotNil(t, fatal.Failure)
}
