package api

import "time"

type (
	// CreateWizardRequest contains parameters for starting a new wizard
	CreateWizardRequest struct {
		Flow string `json:"flow"`
	}

	// UpdateDataRequest pushes edited field values into the current step
	UpdateDataRequest struct {
		Data Args `json:"data"`
	}

	// CancelRequest confirms discarding a wizard. Force must be set when
	// any step has already committed remote state
	CancelRequest struct {
		Force bool `json:"force"`
	}

	// NextStatus summarizes the result of a forward navigation command
	NextStatus string

	// NextResponse is returned by the next, finish, and retry commands
	NextResponse struct {
		Failure    *Failure     `json:"failure,omitempty"`
		Validation []FieldError `json:"validation,omitempty"`
		Status     NextStatus   `json:"status"`
		StepIndex  int          `json:"step_index"`
	}

	// WizardView is the externally visible state of a wizard instance
	WizardView struct {
		Steps     []StepState  `json:"steps"`
		Guards    Guards       `json:"guards"`
		ID        WizardID     `json:"id"`
		Flow      string       `json:"flow"`
		Status    WizardStatus `json:"status"`
		StepIndex int          `json:"step_index"`
		CanGoBack bool         `json:"can_go_back"`
	}

	// WizardsListResponse contains summaries of open wizard sessions
	WizardsListResponse struct {
		Wizards []*WizardView `json:"wizards"`
		Count   int           `json:"count"`
	}

	// DraftDigest provides summary information about a saved draft
	DraftDigest struct {
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
		ID        DraftID   `json:"id"`
		Flow      string    `json:"flow"`
		StepIndex int       `json:"step_index"`
	}

	// DraftsListResponse contains a list of saved drafts
	DraftsListResponse struct {
		Drafts []*DraftDigest `json:"drafts"`
		Count  int            `json:"count"`
	}

	// SaveDraftResponse is returned when a draft save succeeds
	SaveDraftResponse struct {
		DraftID   DraftID `json:"draft_id"`
		StepIndex int     `json:"step_index"`
	}

	// SubscribeRequest narrows a WebSocket client's event stream to a
	// single wizard and/or a set of event types
	SubscribeRequest struct {
		Type       string      `json:"type"`
		WizardID   WizardID    `json:"wizard_id,omitempty"`
		EventTypes []EventType `json:"event_types,omitempty"`
	}

	// MessageResponse contains a simple message string
	MessageResponse struct {
		Message string `json:"message"`
	}

	// ErrorResponse contains error details for failed requests
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status,omitempty"`
	}
)

const (
	NextAdvanced NextStatus = "advanced"
	NextInvalid  NextStatus = "invalid"
	NextRetry    NextStatus = "retry"
	NextFatal    NextStatus = "fatal"
	NextFinished NextStatus = "finished"
)
