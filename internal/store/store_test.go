package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filebox/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "filebox.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedAccount(t *testing.T, s *Store, email string) *models.Account {
	t.Helper()
	account, err := s.CreateAccount(context.Background(), email, "hash", time.Now())
	require.NoError(t, err)
	require.NotNil(t, account)
	return account
}

func TestCreateAccountAndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	account := seedAccount(t, s, "bob@dylan.com")
	assert.NotEmpty(t, account.ID)

	byEmail, err := s.GetAccountByEmail(ctx, "bob@dylan.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, account.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.SecretHash)

	byID, err := s.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "bob@dylan.com", byID.Email)

	missing, err := s.GetAccountByEmail(ctx, "nobody@dylan.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	seedAccount(t, s, "bob@dylan.com")

	_, err := s.CreateAccount(context.Background(), "bob@dylan.com", "hash2", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE")
}

func TestCreateFileAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedAccount(t, s, "bob@dylan.com")

	created, err := s.CreateFile(ctx, &models.FileRecord{
		OwnerID:     owner.ID,
		Name:        "notes.txt",
		Kind:        string(models.FileKindFile),
		ParentID:    models.RootParentID,
		StoragePath: "ab/blob-1",
	}, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := s.GetFileByOwner(ctx, owner.ID, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "notes.txt", got.Name)
	assert.Equal(t, "ab/blob-1", got.StoragePath)
	assert.False(t, got.IsPublic)

	other := seedAccount(t, s, "eve@dylan.com")
	hidden, err := s.GetFileByOwner(ctx, other.ID, created.ID)
	require.NoError(t, err)
	assert.Nil(t, hidden, "records must not resolve for a different owner")
}

func TestListFilesPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedAccount(t, s, "bob@dylan.com")

	for i := 0; i < 25; i++ {
		_, err := s.CreateFile(ctx, &models.FileRecord{
			OwnerID:     owner.ID,
			Name:        "doc",
			Kind:        string(models.FileKindFile),
			ParentID:    models.RootParentID,
			StoragePath: "ab/blob",
		}, time.Now())
		require.NoError(t, err)
	}

	page0, err := s.ListFiles(ctx, owner.ID, models.RootParentID, 0)
	require.NoError(t, err)
	assert.Len(t, page0, 20)

	page1, err := s.ListFiles(ctx, owner.ID, models.RootParentID, 1)
	require.NoError(t, err)
	assert.Len(t, page1, 5)

	seen := map[string]struct{}{}
	for _, record := range append(page0, page1...) {
		_, dup := seen[record.ID]
		assert.False(t, dup, "page overlap on %s", record.ID)
		seen[record.ID] = struct{}{}
	}
	assert.Len(t, seen, 25)

	page2, err := s.ListFiles(ctx, owner.ID, models.RootParentID, 2)
	require.NoError(t, err)
	assert.Empty(t, page2)
}

func TestListFilesScopedToParentAndOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedAccount(t, s, "bob@dylan.com")
	other := seedAccount(t, s, "eve@dylan.com")

	folder, err := s.CreateFile(ctx, &models.FileRecord{
		OwnerID:  owner.ID,
		Name:     "pictures",
		Kind:     string(models.FileKindFolder),
		ParentID: models.RootParentID,
	}, time.Now())
	require.NoError(t, err)

	_, err = s.CreateFile(ctx, &models.FileRecord{
		OwnerID:     owner.ID,
		Name:        "cat.png",
		Kind:        string(models.FileKindImage),
		ParentID:    folder.ID,
		StoragePath: "ab/blob-cat",
	}, time.Now())
	require.NoError(t, err)

	inFolder, err := s.ListFiles(ctx, owner.ID, folder.ID, 0)
	require.NoError(t, err)
	require.Len(t, inFolder, 1)
	assert.Equal(t, "cat.png", inFolder[0].Name)

	root, err := s.ListFiles(ctx, owner.ID, "", 0)
	require.NoError(t, err)
	require.Len(t, root, 1)
	assert.Equal(t, "pictures", root[0].Name)

	foreign, err := s.ListFiles(ctx, other.ID, folder.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, foreign)
}

func TestSetFilePublic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedAccount(t, s, "bob@dylan.com")
	other := seedAccount(t, s, "eve@dylan.com")

	created, err := s.CreateFile(ctx, &models.FileRecord{
		OwnerID:     owner.ID,
		Name:        "notes.txt",
		Kind:        string(models.FileKindFile),
		ParentID:    models.RootParentID,
		StoragePath: "ab/blob-1",
	}, time.Now())
	require.NoError(t, err)

	updated, err := s.SetFilePublic(ctx, owner.ID, created.ID, true)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, updated.IsPublic)

	denied, err := s.SetFilePublic(ctx, other.ID, created.ID, false)
	require.NoError(t, err)
	assert.Nil(t, denied, "publish flag must only change for the owner")

	reverted, err := s.SetFilePublic(ctx, owner.ID, created.ID, false)
	require.NoError(t, err)
	require.NotNil(t, reverted)
	assert.False(t, reverted.IsPublic)
}
