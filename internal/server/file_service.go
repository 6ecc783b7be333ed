package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"filebox/internal/api"
	"filebox/internal/models"
	"filebox/internal/thumbnail"
)

// FileStore is the metadata-store surface the file directory needs.
type FileStore interface {
	CreateFile(ctx context.Context, record *models.FileRecord, now time.Time) (*models.FileRecord, error)
	GetFile(ctx context.Context, id string) (*models.FileRecord, error)
	GetFileByOwner(ctx context.Context, ownerID, id string) (*models.FileRecord, error)
	ListFiles(ctx context.Context, ownerID, parentID string, page int) ([]models.FileRecord, error)
	SetFilePublic(ctx context.Context, ownerID, id string, isPublic bool) (*models.FileRecord, error)
}

// ContentStore is the blob surface the file directory needs.
type ContentStore interface {
	Put(ctx context.Context, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// ThumbnailEnqueuer accepts derivative-generation jobs for images.
// Enqueue reports whether the job was accepted; a full queue drops the
// job.
type ThumbnailEnqueuer interface {
	Enqueue(job thumbnail.Job) bool
}

// FileService owns the file and folder hierarchy for all accounts.
type FileService struct {
	store  FileStore
	blobs  ContentStore
	thumbs ThumbnailEnqueuer
	logger *slog.Logger
}

func NewFileService(store FileStore, blobs ContentStore, thumbs ThumbnailEnqueuer, logger *slog.Logger) *FileService {
	if store == nil || blobs == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileService{store: store, blobs: blobs, thumbs: thumbs, logger: logger}
}

// Create validates and persists one node in the hierarchy. Folders
// carry no content; files and images decode their base64 payload into
// the blob store before the metadata row is written, so a stored row
// always has readable content.
func (f *FileService) Create(ctx context.Context, ownerID string, req api.FileCreateRequest, now time.Time) (*models.FileRecord, error) {
	if f == nil || f.store == nil {
		return nil, internalError(fmt.Errorf("file service is not configured"))
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, unauthorized(fmt.Errorf("Unauthorized"))
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, badRequestCode(fmt.Errorf("Missing name"), ErrCodeMissingName)
	}

	kind, err := models.ParseFileKind(req.Type)
	if err != nil {
		return nil, badRequestCode(err, ErrCodeMissingType)
	}

	parentID := models.NormalizeParentID(req.ParentID)
	if parentID != models.RootParentID {
		parent, err := f.store.GetFile(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, badRequestCode(fmt.Errorf("Parent not found"), ErrCodeParentNotFound)
		}
		if !parent.IsFolder() {
			return nil, badRequestCode(fmt.Errorf("Parent is not a folder"), ErrCodeParentNotFolder)
		}
	}

	var storagePath string
	if kind != models.FileKindFolder {
		if req.Data == "" {
			return nil, badRequestCode(fmt.Errorf("Missing data"), ErrCodeMissingData)
		}
		content, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			return nil, badRequestCode(fmt.Errorf("Missing data"), ErrCodeMissingData)
		}
		storagePath, err = f.blobs.Put(ctx, bytes.NewReader(content))
		if err != nil {
			return nil, err
		}
	}

	record, err := f.store.CreateFile(ctx, &models.FileRecord{
		OwnerID:     ownerID,
		Name:        name,
		Kind:        string(kind),
		ParentID:    parentID,
		IsPublic:    req.IsPublic,
		StoragePath: storagePath,
	}, now)
	if err != nil {
		if storagePath != "" {
			// The blob is unreferenced; drop it rather than leak it.
			if delErr := f.blobs.Delete(ctx, storagePath); delErr != nil {
				f.logger.Warn("orphan blob cleanup failed", "storage_path", storagePath, "error", delErr)
			}
		}
		return nil, err
	}

	if record.IsImage() && f.thumbs != nil {
		if !f.thumbs.Enqueue(thumbnail.Job{OwnerID: ownerID, FileID: record.ID}) {
			f.logger.Warn("thumbnail job dropped", "file_id", record.ID)
		}
	}
	return record, nil
}

// GetByID loads one file owned by ownerID, or nil.
func (f *FileService) GetByID(ctx context.Context, ownerID, id string) (*models.FileRecord, error) {
	if f == nil || f.store == nil {
		return nil, internalError(fmt.Errorf("file service is not configured"))
	}
	if !validateFileID(id) {
		return nil, nil
	}
	return f.store.GetFileByOwner(ctx, ownerID, id)
}

// List returns one page of the owner's children under parentID. An
// unknown or non-folder parent yields an empty page, not an error.
func (f *FileService) List(ctx context.Context, ownerID, parentID string, page int) ([]models.FileRecord, error) {
	if f == nil || f.store == nil {
		return nil, internalError(fmt.Errorf("file service is not configured"))
	}
	if page < 0 {
		page = 0
	}
	parentID = models.NormalizeParentID(parentID)
	if parentID != models.RootParentID {
		parent, err := f.store.GetFile(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || !parent.IsFolder() {
			return []models.FileRecord{}, nil
		}
	}
	return f.store.ListFiles(ctx, ownerID, parentID, page)
}

// SetPublic flips the visibility flag on a file the caller owns.
// Returns nil when the file is missing or owned by someone else; the
// two cases are deliberately indistinguishable.
func (f *FileService) SetPublic(ctx context.Context, ownerID, id string, isPublic bool) (*models.FileRecord, error) {
	if f == nil || f.store == nil {
		return nil, internalError(fmt.Errorf("file service is not configured"))
	}
	if !validateFileID(id) {
		return nil, nil
	}
	return f.store.SetFilePublic(ctx, ownerID, id, isPublic)
}
