package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"filebox/internal/models"
)

// CreateAccount inserts one account row. The email must already be
// normalized; uniqueness is enforced by the schema.
func (s *Store) CreateAccount(ctx context.Context, email, secretHash string, now time.Time) (*models.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if strings.TrimSpace(secretHash) == "" {
		return nil, fmt.Errorf("secret hash is required")
	}

	id, err := GenerateAccountID(func(candidate string) (bool, error) {
		return s.accountExists(ctx, candidate)
	})
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, secret_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, id, email, secretHash, formatTime(now))
	if err != nil {
		return nil, err
	}

	return &models.Account{
		ID:         id,
		Email:      email,
		SecretHash: secretHash,
		CreatedAt:  now.UTC(),
	}, nil
}

// GetAccountByEmail returns one account by normalized email, or nil.
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, secret_hash, created_at
		FROM accounts
		WHERE email = ?
		LIMIT 1
	`, email)
	return scanAccount(row)
}

// GetAccountByID returns one account by id, or nil.
func (s *Store) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, secret_hash, created_at
		FROM accounts
		WHERE id = ?
		LIMIT 1
	`, id)
	return scanAccount(row)
}

func (s *Store) accountExists(ctx context.Context, id string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM accounts WHERE id = ? LIMIT 1", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func scanAccount(scanner interface {
	Scan(dest ...any) error
}) (*models.Account, error) {
	var account models.Account
	var createdAt string
	if err := scanner.Scan(&account.ID, &account.Email, &account.SecretHash, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	parsed, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	account.CreatedAt = parsed
	return &account, nil
}
