// Package remote implements the boundary to the service that performs each
// step's side-effecting operation. All failures are classified into the
// engine's failure categories before they leave this package
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/kode4food/intake"
	"github.com/kode4food/intake/pkg/api"
	"github.com/kode4food/intake/pkg/log"
)

type (
	// Service executes a step's remote operation. A nil error means the
	// operation committed; any non-nil error is an *api.Failure
	Service interface {
		Execute(
			context.Context, *api.StepRequest,
		) (*api.StepResponse, error)
	}

	// HTTPService performs step operations against a JSON HTTP backend
	HTTPService struct {
		httpClient *http.Client
		baseURL    string
	}
)

const (
	contentTypeJSON = "application/json"
	userAgent       = intake.Name + "-engine/" + intake.Version
)

var ErrBaseURLEmpty = errors.New("remote base URL empty")

var _ Service = (*HTTPService)(nil)

// NewHTTPService creates an HTTP-backed step service
func NewHTTPService(baseURL string, timeout time.Duration) (*HTTPService, error) {
	if baseURL == "" {
		return nil, ErrBaseURLEmpty
	}
	return &HTTPService{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
	}, nil
}

// Execute posts the step request to the backend and classifies the response
func (s *HTTPService) Execute(
	ctx context.Context, req *api.StepRequest,
) (*api.StepResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &api.Failure{
			Category: api.FailureValidation,
			Message:  err.Error(),
		}
	}

	endpoint := fmt.Sprintf("%s/steps/%s", s.baseURL, req.StepID)
	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, endpoint, bytes.NewBuffer(body),
	)
	if err != nil {
		return nil, &api.Failure{
			Category: api.FailureNetwork,
			Message:  err.Error(),
		}
	}

	httpReq.Header.Set("Content-Type", contentTypeJSON)
	httpReq.Header.Set("Accept", contentTypeJSON)
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &api.Failure{
			Category: api.FailureNetwork,
			Message:  err.Error(),
		}
	}

	if resp.StatusCode < http.StatusOK ||
		resp.StatusCode >= http.StatusMultipleChoices {
		failure := Classify(resp.StatusCode, data)
		slog.Warn("Remote step operation failed",
			log.WizardID(req.WizardID),
			log.StepID(req.StepID),
			log.Category(failure.Category),
			log.ErrorString(failure.Message))
		return nil, failure
	}

	var stepResp api.StepResponse
	if err := json.Unmarshal(data, &stepResp); err != nil {
		return nil, &api.Failure{
			Category: api.FailureServer,
			Message:  fmt.Sprintf("malformed response: %s", err),
		}
	}
	return &stepResp, nil
}

func classifyTransport(err error) *api.Failure {
	if errors.Is(err, context.DeadlineExceeded) {
		return &api.Failure{
			Category: api.FailureTimeout,
			Message:  err.Error(),
		}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &api.Failure{
			Category: api.FailureTimeout,
			Message:  err.Error(),
		}
	}
	return &api.Failure{
		Category: api.FailureNetwork,
		Message:  err.Error(),
	}
}
