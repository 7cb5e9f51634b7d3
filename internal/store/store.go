// Package store provides draft persistence for in-progress wizards and the
// archive for finished ones
package store

import (
	"context"
	"errors"

	"github.com/kode4food/intake/pkg/api"
)

// DraftStore persists wizard drafts for later resumption
type DraftStore interface {
	Save(context.Context, *api.DraftRecord) (api.DraftID, error)
	Load(context.Context, api.DraftID) (*api.DraftRecord, error)
	Delete(context.Context, api.DraftID) error
	List(context.Context) ([]*api.DraftRecord, error)
}

var ErrDraftNotFound = errors.New("draft not found")
