package intake

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kode4food/intake/internal/wizard"
)

type (
	// FlowBuilder constructs a fresh flow instance. Steps carry local
	// editable data, so every wizard needs its own instances
	FlowBuilder func() (*wizard.Flow, error)

	// Registry maps flow names to their builders
	Registry struct {
		mu       sync.RWMutex
		builders map[string]FlowBuilder
	}
)

var ErrFlowUnknown = errors.New("unknown flow")

// NewRegistry creates an empty flow registry
func NewRegistry() *Registry {
	return &Registry{
		builders: map[string]FlowBuilder{},
	}
}

// Register adds a flow builder under the given name
func (r *Registry) Register(name string, builder FlowBuilder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[name] = builder
}

// Build constructs a fresh flow instance by name
func (r *Registry) Build(name string) (*wizard.Flow, error) {
	r.mu.RLock()
	builder, ok := r.builders[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFlowUnknown, name)
	}
	return builder()
}

// Names returns the registered flow names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]string, 0, len(r.builders))
	for name := range r.builders {
		res = append(res, name)
	}
	return res
}
