package remote

import (
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/kode4food/intake/pkg/api"
)

// Classify maps an HTTP status and response body to a failure. Field-level
// details are extracted from the body for validation failures
func Classify(status int, body []byte) *api.Failure {
	category := categoryFor(status)
	return &api.Failure{
		Category: category,
		Message:  extractMessage(status, body),
		Fields:   extractFieldErrors(body),
	}
}

func categoryFor(status int) api.FailureCategory {
	switch {
	case status == http.StatusBadRequest ||
		status == http.StatusUnprocessableEntity:
		return api.FailureValidation
	case status == http.StatusUnauthorized:
		return api.FailureUnauthorized
	case status == http.StatusForbidden:
		return api.FailureForbidden
	case status == http.StatusNotFound:
		return api.FailureNotFound
	case status == http.StatusConflict:
		return api.FailureConflict
	case status == http.StatusRequestTimeout ||
		status == http.StatusGatewayTimeout:
		return api.FailureTimeout
	case status >= http.StatusInternalServerError:
		return api.FailureServer
	default:
		return api.FailureServer
	}
}

func extractMessage(status int, body []byte) string {
	for _, path := range []string{"message", "title", "error", "detail"} {
		if res := gjson.GetBytes(body, path); res.Type == gjson.String {
			return res.String()
		}
	}
	return fmt.Sprintf("%d %s", status, http.StatusText(status))
}

// extractFieldErrors handles the two error body shapes the backend emits:
// an object of field name to message (or list of messages), or an array of
// {field, message} records
func extractFieldErrors(body []byte) []api.FieldError {
	errs := gjson.GetBytes(body, "errors")
	if !errs.Exists() {
		return nil
	}

	var fields []api.FieldError
	if errs.IsObject() {
		errs.ForEach(func(key, value gjson.Result) bool {
			if value.IsArray() {
				value.ForEach(func(_, msg gjson.Result) bool {
					fields = append(fields, api.FieldError{
						Field:   key.String(),
						Message: msg.String(),
					})
					return true
				})
				return true
			}
			fields = append(fields, api.FieldError{
				Field:   key.String(),
				Message: value.String(),
			})
			return true
		})
		return fields
	}

	if errs.IsArray() {
		errs.ForEach(func(_, value gjson.Result) bool {
			fields = append(fields, api.FieldError{
				Field:   value.Get("field").String(),
				Message: value.Get("message").String(),
			})
			return true
		})
	}
	return fields
}
