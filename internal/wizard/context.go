package wizard

import (
	"errors"
	"fmt"
	"slices"

	"github.com/kode4food/intake/pkg/api"
	"github.com/kode4food/intake/pkg/util"
)

// Context is the shared mutable state bag passed between steps. It is the
// only channel for inter-step communication; a slot marked finalized is
// immutable until the context is reset
type Context struct {
	values    api.Args
	finalized util.Set[string]
}

var ErrImmutableField = errors.New("field is finalized")

// NewContext creates an empty wizard context
func NewContext() *Context {
	return &Context{
		values:    api.Args{},
		finalized: util.Set[string]{},
	}
}

// Get retrieves a slot value
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// GetString retrieves a slot value as a string, or "" when absent or not a
// string
func (c *Context) GetString(key string) string {
	if v, ok := c.values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Set stores a slot value. Fails if the slot has been finalized
func (c *Context) Set(key string, value any) error {
	if c.finalized.Contains(key) {
		return fmt.Errorf("%w: %s", ErrImmutableField, key)
	}
	c.values[key] = value
	return nil
}

// MarkFinalized makes a slot immutable until the context is reset
func (c *Context) MarkFinalized(key string) {
	c.finalized.Add(key)
}

// SetFinal stores a slot value and finalizes it in one operation
func (c *Context) SetFinal(key string, value any) error {
	if err := c.Set(key, value); err != nil {
		return err
	}
	c.MarkFinalized(key)
	return nil
}

// Finalized returns whether a slot has been finalized
func (c *Context) Finalized(key string) bool {
	return c.finalized.Contains(key)
}

// Snapshot returns a deep, serializable copy of the context
func (c *Context) Snapshot() *api.Snapshot {
	finalized := make([]string, 0, c.finalized.Len())
	for key := range c.finalized {
		finalized = append(finalized, key)
	}
	slices.Sort(finalized)

	return &api.Snapshot{
		Values:    c.values.Clone(),
		Finalized: finalized,
	}
}

// Restore replaces the context contents with a snapshot's. A nil snapshot
// restores to the empty state
func (c *Context) Restore(snap *api.Snapshot) {
	if snap == nil {
		c.Reset()
		return
	}
	c.values = snap.Values.Clone()
	if c.values == nil {
		c.values = api.Args{}
	}
	c.finalized = util.SetOf(snap.Finalized...)
}

// seed force-writes a reserved slot, bypassing finalization
func (c *Context) seed(key string, value any) {
	c.values[key] = value
	c.finalized.Add(key)
}

// Reset discards all slot values and finalization marks
func (c *Context) Reset() {
	c.values = api.Args{}
	c.finalized = util.Set[string]{}
}
