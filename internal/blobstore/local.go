// Package blobstore persists file content bytes under a configured
// local root. Every write goes through a temp file and a rename, so a
// reader never observes partial content once a path exists.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local stores blob bytes in a local directory tree. Put generates a
// fresh unique key per blob; PutAt writes derivative content at a
// caller-chosen key.
type Local struct {
	root string
}

// NewLocal creates a local blob store rooted at root.
func NewLocal(root string) (*Local, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("blob root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, "tmp"), 0o755); err != nil {
		return nil, err
	}
	return &Local{root: abs}, nil
}

// Put streams bytes to a freshly generated unique key and returns it.
func (l *Local) Put(ctx context.Context, r io.Reader) (string, error) {
	if l == nil {
		return "", fmt.Errorf("blob store is not configured")
	}
	if r == nil {
		return "", fmt.Errorf("reader is required")
	}
	key := newBlobKey()
	if err := l.writeAtKey(ctx, key, r); err != nil {
		return "", err
	}
	return key, nil
}

// PutAt streams bytes to a caller-chosen key, overwriting any previous
// content. Used for derivative outputs with deterministic keys, so
// re-running a producer is idempotent.
func (l *Local) PutAt(ctx context.Context, key string, r io.Reader) error {
	if l == nil {
		return fmt.Errorf("blob store is not configured")
	}
	if r == nil {
		return fmt.Errorf("reader is required")
	}
	return l.writeAtKey(ctx, key, r)
}

// Exists reports whether blob content exists at key.
func (l *Local) Exists(ctx context.Context, key string) (bool, error) {
	if l == nil {
		return false, fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	path, err := l.pathFromKey(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Open returns a reader for blob content at key.
func (l *Local) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if l == nil {
		return nil, fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := l.pathFromKey(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Delete removes blob content at key. Missing content is not an error.
func (l *Local) Delete(ctx context.Context, key string) error {
	if l == nil {
		return fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := l.pathFromKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (l *Local) writeAtKey(ctx context.Context, key string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := l.pathFromKey(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Join(l.root, "tmp"), "put-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := io.Copy(tmp, r); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// newBlobKey returns a fresh unique key, sharded by the first two
// characters to keep directories small.
func newBlobKey() string {
	id := uuid.NewString()
	return fmt.Sprintf("%s/%s", id[0:2], id)
}

func (l *Local) pathFromKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("blob key is required")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("blob key must be relative")
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || strings.Contains(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid blob key")
	}
	return filepath.Join(l.root, clean), nil
}
