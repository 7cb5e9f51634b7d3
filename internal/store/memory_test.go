package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/intake/internal/store"
	"github.com/kode4food/intake/pkg/api"
)

func draftFixture() *api.DraftRecord {
	return &api.DraftRecord{
		WizardID: api.NewWizardID(),
		Flow:     "survey",
		Snapshot: &api.Snapshot{
			Values:    api.Args{"unit_id": "u-1", "name": "Ada"},
			Finalized: []string{"unit_id"},
		},
		Guards:    api.Guards{"unit": true},
		StepIndex: 2,
	}
}

func TestMemoryStoreSaveLoad(t *testing.T) {
	as := assert.New(t)
	s := store.NewMemoryStore()
	ctx := context.Background()

	rec := draftFixture()
	id, err := s.Save(ctx, rec)
	as.NoError(err)
	as.NotEmpty(id)
	as.Equal(id, rec.ID)
	as.False(rec.CreatedAt.IsZero())
	as.False(rec.UpdatedAt.IsZero())

	loaded, err := s.Load(ctx, id)
	as.NoError(err)
	as.Equal(rec.WizardID, loaded.WizardID)
	as.Equal("survey", loaded.Flow)
	as.Equal(2, loaded.StepIndex)
	as.True(rec.Snapshot.Equal(loaded.Snapshot))
	as.True(loaded.Guards["unit"])
}

func TestMemoryStoreUpsert(t *testing.T) {
	as := assert.New(t)
	s := store.NewMemoryStore()
	ctx := context.Background()

	rec := draftFixture()
	id, err := s.Save(ctx, rec)
	as.NoError(err)
	created := rec.CreatedAt

	rec.StepIndex = 3
	id2, err := s.Save(ctx, rec)
	as.NoError(err)
	as.Equal(id, id2)

	loaded, err := s.Load(ctx, id)
	as.NoError(err)
	as.Equal(3, loaded.StepIndex)
	as.Equal(created, loaded.CreatedAt)

	all, err := s.List(ctx)
	as.NoError(err)
	as.Len(all, 1)
}

func TestMemoryStoreIsolation(t *testing.T) {
	as := assert.New(t)
	s := store.NewMemoryStore()
	ctx := context.Background()

	rec := draftFixture()
	id, err := s.Save(ctx, rec)
	as.NoError(err)

	// Mutating the caller's record must not affect the stored copy
	rec.Snapshot.Values["name"] = "Grace"
	rec.Guards["claim"] = true

	loaded, err := s.Load(ctx, id)
	as.NoError(err)
	as.Equal("Ada", loaded.Snapshot.Values["name"])
	as.False(loaded.Guards["claim"])
}

func TestMemoryStoreDelete(t *testing.T) {
	as := assert.New(t)
	s := store.NewMemoryStore()
	ctx := context.Background()

	id, err := s.Save(ctx, draftFixture())
	as.NoError(err)

	as.NoError(s.Delete(ctx, id))
	_, err = s.Load(ctx, id)
	as.ErrorIs(err, store.ErrDraftNotFound)

	// Deleting a missing draft is not an error
	as.NoError(s.Delete(ctx, id))
}

func TestMemoryStoreLoadMissing(t *testing.T) {
	as := assert.New(t)
	s := store.NewMemoryStore()

	_, err := s.Load(context.Background(), "missing")
	as.ErrorIs(err, store.ErrDraftNotFound)
}
