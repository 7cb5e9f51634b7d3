package store

import (
	"context"
	"encoding/json"
	"fmt"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/kode4food/intake/pkg/api"
)

// Archive writes finished wizard records to a blob bucket, supporting S3,
// GCS, Azure Blob Storage, and local file buckets
type Archive struct {
	bucket *blob.Bucket
	prefix string
}

var ErrArchiveNotFound = fmt.Errorf("archive record not found")

// OpenArchive opens the archive bucket at the given URL
func OpenArchive(
	ctx context.Context, bucketURL, prefix string,
) (*Archive, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	return &Archive{bucket: bucket, prefix: prefix}, nil
}

// NewArchive wraps an already-open bucket; used by tests with memblob
func NewArchive(bucket *blob.Bucket, prefix string) *Archive {
	return &Archive{bucket: bucket, prefix: prefix}
}

// Put writes a finished wizard record
func (a *Archive) Put(ctx context.Context, rec *api.ArchiveRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return a.bucket.WriteAll(ctx, a.keyFor(rec.WizardID), data, nil)
}

// Get reads a finished wizard record back
func (a *Archive) Get(
	ctx context.Context, id api.WizardID,
) (*api.ArchiveRecord, error) {
	data, err := a.bucket.ReadAll(ctx, a.keyFor(id))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrArchiveNotFound
		}
		return nil, err
	}

	var rec api.ArchiveRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Close releases the underlying bucket
func (a *Archive) Close() error {
	return a.bucket.Close()
}

func (a *Archive) keyFor(id api.WizardID) string {
	return fmt.Sprintf("%s%s.json", a.prefix, id)
}
