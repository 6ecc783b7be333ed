package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filebox/internal/models"
)

type fakeResolver struct {
	records map[string]*models.FileRecord
}

func (f *fakeResolver) GetFileByOwner(_ context.Context, ownerID, id string) (*models.FileRecord, error) {
	record, ok := f.records[id]
	if !ok || record.OwnerID != ownerID {
		return nil, nil
	}
	return record, nil
}

type fakeBlobs struct {
	objects map[string][]byte
	putErr  map[string]error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string][]byte{}, putErr: map[string]error{}}
}

func (f *fakeBlobs) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("no blob at %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeBlobs) PutAt(_ context.Context, key string, r io.Reader) error {
	if err := f.putErr[key]; err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func encodeTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestVariantKey(t *testing.T) {
	assert.Equal(t, "ab/blob_500", VariantKey("ab/blob", 500))
	assert.Equal(t, "ab/blob_100", VariantKey("ab/blob", 100))
}

func TestProcessGeneratesAllWidths(t *testing.T) {
	blobs := newFakeBlobs()
	blobs.objects["ab/src"] = encodeTestPNG(t, 800, 600)
	files := &fakeResolver{records: map[string]*models.FileRecord{
		"fl-1": {ID: "fl-1", OwnerID: "ac-1", Kind: string(models.FileKindImage), StoragePath: "ab/src"},
	}}

	p := New(files, blobs, testLogger())
	require.NoError(t, p.Process(context.Background(), Job{OwnerID: "ac-1", FileID: "fl-1"}))

	for _, width := range Widths {
		data, ok := blobs.objects[VariantKey("ab/src", width)]
		require.True(t, ok, "missing variant for width %d", width)

		img, _, err := image.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, width, img.Bounds().Dx())
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	blobs := newFakeBlobs()
	blobs.objects["ab/src"] = encodeTestPNG(t, 640, 480)
	files := &fakeResolver{records: map[string]*models.FileRecord{
		"fl-1": {ID: "fl-1", OwnerID: "ac-1", Kind: string(models.FileKindImage), StoragePath: "ab/src"},
	}}

	p := New(files, blobs, testLogger())
	job := Job{OwnerID: "ac-1", FileID: "fl-1"}
	require.NoError(t, p.Process(context.Background(), job))
	require.NoError(t, p.Process(context.Background(), job))

	assert.Len(t, blobs.objects, 1+len(Widths))
}

func TestProcessValidation(t *testing.T) {
	p := New(&fakeResolver{records: map[string]*models.FileRecord{}}, newFakeBlobs(), testLogger())
	ctx := context.Background()

	err := p.Process(ctx, Job{OwnerID: "ac-1"})
	assert.ErrorIs(t, err, errMissingFileID)

	err = p.Process(ctx, Job{FileID: "fl-1"})
	assert.ErrorIs(t, err, errMissingUserID)

	err = p.Process(ctx, Job{OwnerID: "ac-1", FileID: "fl-1"})
	assert.ErrorIs(t, err, errFileNotFound)
}

func TestProcessWrongOwnerFailsFast(t *testing.T) {
	blobs := newFakeBlobs()
	blobs.objects["ab/src"] = encodeTestPNG(t, 100, 100)
	files := &fakeResolver{records: map[string]*models.FileRecord{
		"fl-1": {ID: "fl-1", OwnerID: "ac-1", Kind: string(models.FileKindImage), StoragePath: "ab/src"},
	}}

	p := New(files, blobs, testLogger())
	err := p.Process(context.Background(), Job{OwnerID: "ac-other", FileID: "fl-1"})
	assert.ErrorIs(t, err, errFileNotFound)
	assert.Len(t, blobs.objects, 1, "no variants for a job whose owner does not match")
}

func TestProcessOneWidthFailureDoesNotStopOthers(t *testing.T) {
	blobs := newFakeBlobs()
	blobs.objects["ab/src"] = encodeTestPNG(t, 800, 600)
	blobs.putErr[VariantKey("ab/src", 250)] = fmt.Errorf("disk full")
	files := &fakeResolver{records: map[string]*models.FileRecord{
		"fl-1": {ID: "fl-1", OwnerID: "ac-1", Kind: string(models.FileKindImage), StoragePath: "ab/src"},
	}}

	p := New(files, blobs, testLogger())
	err := p.Process(context.Background(), Job{OwnerID: "ac-1", FileID: "fl-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "width 250")

	_, has500 := blobs.objects[VariantKey("ab/src", 500)]
	_, has100 := blobs.objects[VariantKey("ab/src", 100)]
	assert.True(t, has500, "width 500 must still be produced")
	assert.True(t, has100, "width 100 must still be produced")
}

func TestEnqueueAndWorkers(t *testing.T) {
	blobs := newFakeBlobs()
	blobs.objects["ab/src"] = encodeTestPNG(t, 300, 300)
	files := &fakeResolver{records: map[string]*models.FileRecord{
		"fl-1": {ID: "fl-1", OwnerID: "ac-1", Kind: string(models.FileKindImage), StoragePath: "ab/src"},
	}}

	p := New(files, blobs, testLogger())
	p.Start(context.Background(), 1)
	assert.True(t, p.Enqueue(Job{OwnerID: "ac-1", FileID: "fl-1"}))
	p.Close()

	for _, width := range Widths {
		_, ok := blobs.objects[VariantKey("ab/src", width)]
		assert.True(t, ok, "worker must have produced width %d", width)
	}
}
