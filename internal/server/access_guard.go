package server

import (
	"context"
	"fmt"
	"io"

	"filebox/internal/models"
	"filebox/internal/thumbnail"
)

// BlobReader is the read-side blob surface the access guard needs.
type BlobReader interface {
	Exists(ctx context.Context, key string) (bool, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// AccessGuard decides whether a caller may read a file's metadata or
// content. A caller who lacks permission learns nothing: missing files
// and forbidden files both resolve to nil.
type AccessGuard struct {
	store FileStore
	blobs BlobReader
}

func NewAccessGuard(store FileStore, blobs BlobReader) *AccessGuard {
	if store == nil || blobs == nil {
		return nil
	}
	return &AccessGuard{store: store, blobs: blobs}
}

// ResolveReadable resolves a file for reading on behalf of callerID,
// which may be empty for anonymous callers. width zero selects the
// original content; a positive width selects that thumbnail variant.
// The returned storage key is empty for folders. A readable file whose
// content is missing from the blob store resolves to nil.
func (g *AccessGuard) ResolveReadable(ctx context.Context, callerID, fileID string, width int) (*models.FileRecord, string, error) {
	if g == nil || g.store == nil {
		return nil, "", internalError(fmt.Errorf("access guard is not configured"))
	}
	if !validateFileID(fileID) {
		return nil, "", nil
	}

	record, err := g.store.GetFile(ctx, fileID)
	if err != nil {
		return nil, "", err
	}
	if record == nil {
		return nil, "", nil
	}
	if !record.IsPublic && record.OwnerID != callerID {
		return nil, "", nil
	}

	if record.IsFolder() {
		return record, "", nil
	}

	key := record.StoragePath
	if width > 0 {
		key = thumbnail.VariantKey(record.StoragePath, width)
	}
	ok, err := g.blobs.Exists(ctx, key)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", nil
	}
	return record, key, nil
}

// OpenContent opens the blob at key for streaming to a client.
func (g *AccessGuard) OpenContent(ctx context.Context, key string) (io.ReadCloser, error) {
	if g == nil || g.blobs == nil {
		return nil, internalError(fmt.Errorf("access guard is not configured"))
	}
	return g.blobs.Open(ctx, key)
}
