package wizard

import (
	"context"

	"github.com/kode4food/intake/pkg/api"
)

type (
	// Step is the contract every step variant implements. Lifecycle: Setup
	// runs once before first activation; OnShow runs on every activation
	// and must not mutate the context; Validate is pure; OnNext performs
	// the step's side-effecting work and returns a tri-state outcome;
	// OnHide is bookkeeping only and runs on exit in either direction
	Step interface {
		ID() api.StepID
		Title() string

		// Requires names the context slots that must be written and
		// finalized by earlier steps before this step's OnNext may execute
		Requires() []string

		Setup() error
		OnShow(*Context)
		Validate(*Context) api.ValidationResult
		OnNext(context.Context, *Context) api.StepResult
		OnHide(*Context)

		// Apply merges edited field values into the step's local data
		Apply(api.Args)

		// CollectData returns the step's current local editable data
		CollectData() api.Args
	}

	// BaseStep provides the common local-data plumbing for step variants.
	// Concrete steps embed it and override the lifecycle hooks they need
	BaseStep struct {
		data   api.Args
		StepID api.StepID
		Name   string
		Needs  []string
	}
)

func (s *BaseStep) ID() api.StepID     { return s.StepID }
func (s *BaseStep) Title() string      { return s.Name }
func (s *BaseStep) Requires() []string { return s.Needs }

func (s *BaseStep) Setup() error { return nil }

func (s *BaseStep) OnShow(*Context) {}
func (s *BaseStep) OnHide(*Context) {}

// Validate passes by default; steps with editable fields override it
func (s *BaseStep) Validate(*Context) api.ValidationResult {
	return api.ValidResult()
}

// OnNext advances by default; steps with remote mutations override it
func (s *BaseStep) OnNext(context.Context, *Context) api.StepResult {
	return api.Advance()
}

// Apply merges edited values into the step's local data. Re-entries
// preserve local edits until the step commits
func (s *BaseStep) Apply(data api.Args) {
	if s.data == nil {
		s.data = api.Args{}
	}
	s.data = s.data.Merge(data)
}

// CollectData returns a copy of the step's local editable data
func (s *BaseStep) CollectData() api.Args {
	return s.data.Clone()
}

// SetLocal stores a single local field value
func (s *BaseStep) SetLocal(key string, value any) {
	if s.data == nil {
		s.data = api.Args{}
	}
	s.data[key] = value
}

// Local retrieves a single local field value
func (s *BaseStep) Local(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// LocalString retrieves a local field as a string
func (s *BaseStep) LocalString(key string) string {
	if v, ok := s.data[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}
