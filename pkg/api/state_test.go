package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/intake/pkg/api"
)

func TestWizardStatusTerminal(t *testing.T) {
	assert.False(t, api.WizardActive.Terminal())
	assert.True(t, api.WizardFinished.Terminal())
	assert.True(t, api.WizardCancelled.Terminal())
	assert.True(t, api.WizardFailed.Terminal())
}

func TestSnapshotClone(t *testing.T) {
	snap := &api.Snapshot{
		Values:    api.Args{"building_id": "B1"},
		Finalized: []string{"building_id"},
	}

	clone := snap.Clone()
	clone.Values["building_id"] = "B2"
	clone.Finalized[0] = "other"

	assert.Equal(t, "B1", snap.Values["building_id"])
	assert.Equal(t, "building_id", snap.Finalized[0])
}

func TestSnapshotCloneNil(t *testing.T) {
	var snap *api.Snapshot
	assert.Nil(t, snap.Clone())
}

func TestSnapshotEqual(t *testing.T) {
	a := &api.Snapshot{
		Values:    api.Args{"x": 1, "y": 2},
		Finalized: []string{"x", "y"},
	}
	b := &api.Snapshot{
		Values:    api.Args{"y": 2, "x": 1},
		Finalized: []string{"y", "x"},
	}
	assert.True(t, a.Equal(b))

	c := &api.Snapshot{Values: api.Args{"x": 1}}
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))

	var nilSnap *api.Snapshot
	assert.True(t, nilSnap.Equal(nil))
}
