// Package thumbnail derives fixed-width variants for uploaded images.
// Jobs are enqueued on the upload path and processed by a worker pool;
// no request ever waits on a job. Output keys are deterministic, so
// replaying a job overwrites the same variants.
package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"

	"github.com/disintegration/imaging"

	"filebox/internal/models"
)

// Widths are the fixed variant widths, largest first.
var Widths = []int{500, 250, 100}

const (
	defaultQueueSize = 256
	defaultWorkers   = 2
)

var (
	errMissingFileID = errors.New("Missing fileId")
	errMissingUserID = errors.New("Missing userId")
	errFileNotFound  = errors.New("File not found")
)

// Job identifies one uploaded image to process.
type Job struct {
	OwnerID string
	FileID  string
}

// FileResolver resolves an owner's file record.
type FileResolver interface {
	GetFileByOwner(ctx context.Context, ownerID, id string) (*models.FileRecord, error)
}

// BlobStore is the byte-storage surface the pipeline needs.
type BlobStore interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	PutAt(ctx context.Context, key string, r io.Reader) error
}

// VariantKey returns the storage key of the width variant derived from
// a source key.
func VariantKey(storagePath string, width int) string {
	return fmt.Sprintf("%s_%d", storagePath, width)
}

// Pipeline is the asynchronous thumbnail worker pool.
type Pipeline struct {
	files  FileResolver
	blobs  BlobStore
	logger *slog.Logger

	jobs chan Job
	wg   sync.WaitGroup
}

// New creates a pipeline. Start must be called before Enqueue.
func New(files FileResolver, blobs BlobStore, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		files:  files,
		blobs:  blobs,
		logger: logger.With("component", "thumbnail"),
		jobs:   make(chan Job, defaultQueueSize),
	}
}

// Start launches the worker pool. Workers stop when ctx is cancelled or
// when Close is called and the queue has drained.
func (p *Pipeline) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = defaultWorkers
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.work(ctx)
	}
}

// Close stops accepting jobs and waits for in-flight work to finish.
func (p *Pipeline) Close() {
	close(p.jobs)
	p.wg.Wait()
}

// Enqueue queues one job without blocking. A full queue drops the job;
// delivery is at-least-once only while the process lives, and dropped
// jobs are logged so an operator can replay the upload.
func (p *Pipeline) Enqueue(job Job) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		p.logger.Warn("thumbnail queue full, dropping job",
			"owner_id", job.OwnerID, "file_id", job.FileID)
		return false
	}
}

func (p *Pipeline) work(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			if err := p.Process(ctx, job); err != nil {
				// Failed jobs are logged and dropped; the pipeline is
				// decoupled from the request path and has no dead-letter
				// handling.
				p.logger.Error("thumbnail job failed",
					"owner_id", job.OwnerID, "file_id", job.FileID, "error", err)
				continue
			}
			p.logger.Debug("thumbnail job done",
				"owner_id", job.OwnerID, "file_id", job.FileID)
		}
	}
}

// Process generates every width variant for one job. Each width is
// attempted independently; one width's failure never prevents the
// others. The job fails if any width failed.
func (p *Pipeline) Process(ctx context.Context, job Job) error {
	if job.FileID == "" {
		return errMissingFileID
	}
	if job.OwnerID == "" {
		return errMissingUserID
	}

	record, err := p.files.GetFileByOwner(ctx, job.OwnerID, job.FileID)
	if err != nil {
		return err
	}
	if record == nil {
		return errFileNotFound
	}
	if !record.IsImage() || record.StoragePath == "" {
		return fmt.Errorf("file %s is not an image", job.FileID)
	}

	rc, err := p.blobs.Open(ctx, record.StoragePath)
	if err != nil {
		return fmt.Errorf("open source blob: %w", err)
	}
	src, format, err := image.Decode(rc)
	_ = rc.Close()
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	var failures []error
	for _, width := range Widths {
		if err := p.writeVariant(ctx, record.StoragePath, src, format, width); err != nil {
			p.logger.Error("thumbnail variant failed",
				"file_id", job.FileID, "width", width, "error", err)
			failures = append(failures, fmt.Errorf("width %d: %w", width, err))
		}
	}
	return errors.Join(failures...)
}

func (p *Pipeline) writeVariant(ctx context.Context, sourceKey string, src image.Image, format string, width int) error {
	resized := imaging.Resize(src, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, encodeFormat(format)); err != nil {
		return err
	}
	return p.blobs.PutAt(ctx, VariantKey(sourceKey, width), &buf)
}

// encodeFormat maps the registered decoder name to an output format.
// Unknown formats fall back to PNG to stay lossless.
func encodeFormat(decoded string) imaging.Format {
	switch decoded {
	case "jpeg":
		return imaging.JPEG
	case "gif":
		return imaging.GIF
	case "bmp":
		return imaging.BMP
	case "tiff":
		return imaging.TIFF
	default:
		return imaging.PNG
	}
}
