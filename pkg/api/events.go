package api

import "time"

type (
	// EventType identifies a wizard lifecycle event
	EventType string

	// Event is the envelope published on the wizard event stream
	Event struct {
		Timestamp time.Time `json:"timestamp"`
		Data      any       `json:"data,omitempty"`
		Type      EventType `json:"type"`
		WizardID  WizardID  `json:"wizard_id"`
		StepID    StepID    `json:"step_id,omitempty"`
	}
)

const (
	EventTypeWizardStarted    EventType = "wizard_started"
	EventTypeStepShown        EventType = "step_shown"
	EventTypeStepCommitted    EventType = "step_committed"
	EventTypeValidationFailed EventType = "validation_failed"
	EventTypeStepFailed       EventType = "step_failed"
	EventTypeWizardFinished   EventType = "wizard_finished"
	EventTypeWizardCancelled  EventType = "wizard_cancelled"
	EventTypeWizardFailed     EventType = "wizard_failed"
	EventTypeDraftSaved       EventType = "draft_saved"
	EventTypeDraftLoaded      EventType = "draft_loaded"
)

type (
	// StepCommittedEvent is published when a step's remote mutation commits
	StepCommittedEvent struct {
		Identifiers Args `json:"identifiers,omitempty"`
	}

	// ValidationFailedEvent carries the errors that blocked an advance
	ValidationFailedEvent struct {
		Errors []FieldError `json:"errors"`
	}

	// StepFailedEvent carries a classified remote failure
	StepFailedEvent struct {
		Failure *Failure `json:"failure"`
	}

	// DraftSavedEvent is published after a successful draft save
	DraftSavedEvent struct {
		DraftID   DraftID `json:"draft_id"`
		StepIndex int     `json:"step_index"`
	}
)
