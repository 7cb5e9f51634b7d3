package wizard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/intake/internal/wizard"
	"github.com/kode4food/intake/pkg/api"
)

func TestGuardCommit(t *testing.T) {
	as := assert.New(t)
	g := wizard.NewGuard()

	as.False(g.HasCommitted("unit"))
	as.False(g.AnyCommitted())

	g.MarkCommitted("unit")
	as.True(g.HasCommitted("unit"))
	as.True(g.AnyCommitted())
	as.False(g.HasCommitted("claim"))
}

func TestGuardReset(t *testing.T) {
	as := assert.New(t)
	g := wizard.NewGuard()

	g.MarkCommitted("unit")
	g.MarkCommitted("claim")

	g.Reset("unit")
	as.False(g.HasCommitted("unit"))
	as.True(g.HasCommitted("claim"))

	g.ResetAll()
	as.False(g.HasCommitted("claim"))
	as.False(g.AnyCommitted())
}

func TestGuardFlagsRestore(t *testing.T) {
	as := assert.New(t)
	g := wizard.NewGuard()

	g.MarkCommitted("unit")
	flags := g.Flags()
	as.Equal(api.Guards{"unit": true}, flags)

	other := wizard.NewGuard()
	other.Restore(flags)
	as.True(other.HasCommitted("unit"))
	as.False(other.HasCommitted("claim"))
}
