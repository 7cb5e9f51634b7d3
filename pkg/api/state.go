package api

import (
	"slices"
	"time"
)

type (
	// WizardStatus represents the lifecycle state of a wizard instance
	WizardStatus string

	// StepStatus represents the lifecycle state of a single step
	StepStatus string

	// StepState tracks one step's position and status within a wizard.
	// Ordering is fixed at construction and never changes at runtime
	StepState struct {
		ID     StepID     `json:"id"`
		Title  string     `json:"title,omitempty"`
		Status StepStatus `json:"status"`
		Index  int        `json:"index"`
	}

	// Snapshot is a serializable copy of a wizard context: slot values plus
	// the set of finalized slot names
	Snapshot struct {
		Values    Args     `json:"values"`
		Finalized []string `json:"finalized,omitempty"`
	}

	// DraftRecord is a persisted wizard snapshot enabling resumption
	DraftRecord struct {
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
		Snapshot  *Snapshot `json:"snapshot"`
		Guards    Guards    `json:"guards"`
		ID        DraftID   `json:"id"`
		WizardID  WizardID  `json:"wizard_id"`
		Flow      string    `json:"flow"`
		StepIndex int       `json:"step_index"`
		Completed bool      `json:"completed"`
	}

	// ArchiveRecord is the immutable record written to the archive bucket
	// when a wizard finishes
	ArchiveRecord struct {
		FinishedAt time.Time `json:"finished_at"`
		Snapshot   *Snapshot `json:"snapshot"`
		WizardID   WizardID  `json:"wizard_id"`
		Flow       string    `json:"flow"`
	}
)

const (
	WizardActive    WizardStatus = "active"
	WizardFinished  WizardStatus = "finished"
	WizardCancelled WizardStatus = "cancelled"
	WizardFailed    WizardStatus = "failed"
)

const (
	StepNotStarted StepStatus = "not_started"
	StepActive     StepStatus = "active"
	StepCompleted  StepStatus = "completed"
)

// Terminal returns whether the wizard status admits no further commands
func (s WizardStatus) Terminal() bool {
	switch s {
	case WizardFinished, WizardCancelled, WizardFailed:
		return true
	}
	return false
}

// Clone returns a deep copy of the snapshot
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	return &Snapshot{
		Values:    s.Values.Clone(),
		Finalized: slices.Clone(s.Finalized),
	}
}

// Equal reports whether two snapshots carry the same finalized set and the
// same top-level slot keys. Used by tests and draft round-trip checks
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.Values) != len(other.Values) {
		return false
	}
	for k := range s.Values {
		if _, ok := other.Values[k]; !ok {
			return false
		}
	}
	a := slices.Clone(s.Finalized)
	b := slices.Clone(other.Finalized)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}
