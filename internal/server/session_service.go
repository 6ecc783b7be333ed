package server

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"filebox/internal/models"
)

const sessionTokenHeader = "X-Token"

var defaultSessionTTL = 24 * time.Hour

var errInvalidCredentials = errors.New("invalid credentials")

// SessionStore is the TTL key-value surface the session manager needs.
type SessionStore interface {
	Put(ctx context.Context, key, accountID string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) (bool, error)
}

// SessionService issues, resolves, and revokes bearer session tokens.
// Tokens are stored hashed; expiry is handled by the store's TTL, so a
// resolved token is always live. Expiry does not slide on access.
type SessionService struct {
	accounts   *AccountService
	sessions   SessionStore
	sessionTTL time.Duration
}

func NewSessionService(accounts *AccountService, sessions SessionStore) *SessionService {
	if accounts == nil || sessions == nil {
		return nil
	}
	return &SessionService{accounts: accounts, sessions: sessions, sessionTTL: defaultSessionTTL}
}

// SetTTL overrides the session lifetime. Zero or negative values keep
// the default.
func (s *SessionService) SetTTL(ttl time.Duration) {
	if s == nil || ttl <= 0 {
		return
	}
	s.sessionTTL = ttl
}

// Login checks credentials and issues a fresh opaque token. An account
// may hold any number of concurrent sessions.
func (s *SessionService) Login(ctx context.Context, email, secret string) (string, error) {
	if s == nil || s.sessions == nil {
		return "", internalError(fmt.Errorf("session service is not configured"))
	}

	account, err := s.accounts.Authenticate(ctx, email, secret)
	if err != nil {
		return "", err
	}
	if account == nil {
		return "", errInvalidCredentials
	}

	token, err := generateSessionToken()
	if err != nil {
		return "", err
	}
	if err := s.sessions.Put(ctx, hashSessionToken(token), account.ID, s.sessionTTL); err != nil {
		return "", err
	}
	return token, nil
}

// Logout revokes one token. Returns false when the token is unknown or
// already expired; revocation is immediate and not reversible.
func (s *SessionService) Logout(ctx context.Context, token string) (bool, error) {
	if s == nil || s.sessions == nil {
		return false, internalError(fmt.Errorf("session service is not configured"))
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return false, nil
	}
	return s.sessions.Delete(ctx, hashSessionToken(token))
}

// Resolve maps a token to its account, or nil for an unknown, expired,
// or dangling token. A mapping whose account no longer exists resolves
// to nil rather than an error; the stores are not transactional with
// each other.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.Account, error) {
	if s == nil || s.sessions == nil {
		return nil, internalError(fmt.Errorf("session service is not configured"))
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	accountID, ok, err := s.sessions.Get(ctx, hashSessionToken(token))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return s.accounts.GetByID(ctx, accountID)
}

func hashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
