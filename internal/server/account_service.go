package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	internalauth "filebox/internal/auth"
	"filebox/internal/models"
)

// AccountStore is the metadata-store surface the account directory
// needs.
type AccountStore interface {
	CreateAccount(ctx context.Context, email, secretHash string, now time.Time) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
}

// AccountService owns account records and credential checks.
type AccountService struct {
	store AccountStore
}

func NewAccountService(store AccountStore) *AccountService {
	if store == nil {
		return nil
	}
	return &AccountService{store: store}
}

// Register creates one account with a hashed secret. The plaintext
// secret is never persisted.
func (a *AccountService) Register(ctx context.Context, email, secret string, now time.Time) (*models.Account, error) {
	if a == nil || a.store == nil {
		return nil, internalError(fmt.Errorf("account service is not configured"))
	}

	if strings.TrimSpace(email) == "" {
		return nil, badRequestCode(fmt.Errorf("Missing email"), ErrCodeMissingEmail)
	}
	if secret == "" {
		return nil, badRequestCode(fmt.Errorf("Missing password"), ErrCodeMissingPassword)
	}

	normalized, err := internalauth.NormalizeEmail(email)
	if err != nil {
		return nil, badRequestCode(err, ErrCodeMissingEmail)
	}

	existing, err := a.store.GetAccountByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, badRequestCode(fmt.Errorf("Already exist"), ErrCodeAccountExists)
	}

	secretHash, err := internalauth.HashSecret(secret)
	if err != nil {
		return nil, badRequestCode(err, ErrCodeMissingPassword)
	}

	account, err := a.store.CreateAccount(ctx, normalized, secretHash, now)
	if err != nil {
		if isUniqueConstraint(err) {
			// Lost a registration race for the same email.
			return nil, badRequestCode(fmt.Errorf("Already exist"), ErrCodeAccountExists)
		}
		return nil, err
	}
	return account, nil
}

// Authenticate checks credentials and returns the matching account, or
// nil on any mismatch. Missing account and wrong secret are not
// distinguished.
func (a *AccountService) Authenticate(ctx context.Context, email, secret string) (*models.Account, error) {
	if a == nil || a.store == nil {
		return nil, internalError(fmt.Errorf("account service is not configured"))
	}

	normalized, err := internalauth.NormalizeEmail(email)
	if err != nil {
		return nil, nil
	}
	account, err := a.store.GetAccountByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if account == nil || !internalauth.VerifySecret(account.SecretHash, secret) {
		return nil, nil
	}
	return account, nil
}

// GetByID loads one account by id, or nil.
func (a *AccountService) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if a == nil || a.store == nil {
		return nil, internalError(fmt.Errorf("account service is not configured"))
	}
	return a.store.GetAccountByID(ctx, id)
}

func isUniqueConstraint(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
