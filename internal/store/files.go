package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"filebox/internal/models"
)

// ListPageSize is the fixed number of records per listing page.
const ListPageSize = 20

const fileColumns = "id, owner_id, name, kind, parent_id, is_public, storage_path, created_at"

// CreateFile inserts one file record. The caller is responsible for
// having persisted the byte blob first; records must never point at a
// missing blob.
func (s *Store) CreateFile(ctx context.Context, record *models.FileRecord, now time.Time) (*models.FileRecord, error) {
	if record == nil {
		return nil, fmt.Errorf("file record is required")
	}
	if strings.TrimSpace(record.OwnerID) == "" {
		return nil, fmt.Errorf("owner id is required")
	}

	id, err := GenerateFileID(func(candidate string) (bool, error) {
		return s.fileExists(ctx, candidate)
	})
	if err != nil {
		return nil, err
	}

	isPublic := 0
	if record.IsPublic {
		isPublic = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO files (id, owner_id, name, kind, parent_id, is_public, storage_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, record.OwnerID, record.Name, record.Kind, record.ParentID, isPublic,
		nullString(record.StoragePath), formatTime(now))
	if err != nil {
		return nil, err
	}

	stored := *record
	stored.ID = id
	stored.CreatedAt = now.UTC()
	return &stored, nil
}

// GetFileByOwner returns one record matching both id and owner, or nil.
func (s *Store) GetFileByOwner(ctx context.Context, ownerID, id string) (*models.FileRecord, error) {
	ownerID = strings.TrimSpace(ownerID)
	id = strings.TrimSpace(id)
	if ownerID == "" || id == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT `+fileColumns+`
		FROM files
		WHERE id = ? AND owner_id = ?
		LIMIT 1
	`, id, ownerID)
	return scanFile(row)
}

// GetFile returns one record by id regardless of owner, or nil. Used
// for parent lookups and public-access resolution; callers decide what
// the caller may see.
func (s *Store) GetFile(ctx context.Context, id string) (*models.FileRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT `+fileColumns+`
		FROM files
		WHERE id = ?
		LIMIT 1
	`, id)
	return scanFile(row)
}

// ListFiles returns one page of an owner's records under parentID in
// insertion (rowid) order. Ordering across pages is only approximate
// under concurrent inserts.
func (s *Store) ListFiles(ctx context.Context, ownerID, parentID string, page int) ([]models.FileRecord, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("owner id is required")
	}
	if page < 0 {
		page = 0
	}
	parentID = models.NormalizeParentID(parentID)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+fileColumns+`
		FROM files
		WHERE owner_id = ? AND parent_id = ?
		ORDER BY rowid ASC
		LIMIT ? OFFSET ?
	`, ownerID, parentID, ListPageSize, page*ListPageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]models.FileRecord, 0)
	for rows.Next() {
		record, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		if record == nil {
			continue
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// SetFilePublic flips the publish flag on a record matching both id and
// owner. Returns the updated record, or nil when nothing matched.
func (s *Store) SetFilePublic(ctx context.Context, ownerID, id string, isPublic bool) (*models.FileRecord, error) {
	ownerID = strings.TrimSpace(ownerID)
	id = strings.TrimSpace(id)
	if ownerID == "" || id == "" {
		return nil, nil
	}

	value := 0
	if isPublic {
		value = 1
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE files
		SET is_public = ?
		WHERE id = ? AND owner_id = ?
	`, value, id, ownerID)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetFileByOwner(ctx, ownerID, id)
}

func (s *Store) fileExists(ctx context.Context, id string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM files WHERE id = ? LIMIT 1", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func scanFile(scanner interface {
	Scan(dest ...any) error
}) (*models.FileRecord, error) {
	var record models.FileRecord
	var isPublic int
	var storagePath sql.NullString
	var createdAt string
	if err := scanner.Scan(&record.ID, &record.OwnerID, &record.Name, &record.Kind,
		&record.ParentID, &isPublic, &storagePath, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	record.IsPublic = isPublic != 0
	record.StoragePath = storagePath.String
	parsed, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	record.CreatedAt = parsed
	return &record, nil
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
