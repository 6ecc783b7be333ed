package server

import (
	"context"
	"strings"
	"testing"
	"time"
)

type recordingSessionStore struct {
	entries map[string]string
	ttls    map[string]time.Duration
}

func newRecordingSessionStore() *recordingSessionStore {
	return &recordingSessionStore{entries: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *recordingSessionStore) Put(_ context.Context, key, accountID string, ttl time.Duration) error {
	s.entries[key] = accountID
	s.ttls[key] = ttl
	return nil
}

func (s *recordingSessionStore) Get(_ context.Context, key string) (string, bool, error) {
	accountID, ok := s.entries[key]
	return accountID, ok, nil
}

func (s *recordingSessionStore) Delete(_ context.Context, key string) (bool, error) {
	_, ok := s.entries[key]
	delete(s.entries, key)
	return ok, nil
}

func TestGenerateSessionToken(t *testing.T) {
	first, err := generateSessionToken()
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	second, err := generateSessionToken()
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct tokens")
	}
	if strings.ContainsAny(first, "+/=") {
		t.Fatalf("token %q is not url-safe", first)
	}
}

func TestHashSessionToken(t *testing.T) {
	if hashSessionToken("abc") != hashSessionToken("abc") {
		t.Fatal("expected deterministic hash")
	}
	if hashSessionToken("abc") == hashSessionToken("abd") {
		t.Fatal("expected distinct hashes for distinct tokens")
	}
	if hashSessionToken("abc") == "abc" {
		t.Fatal("hash must not equal the token")
	}
}

func TestSessionStoreKeepsHashedTokensOnly(t *testing.T) {
	// A plain recording store is enough to observe what Login persists.
	sessions := newRecordingSessionStore()
	accounts := newTestServer(t).accounts
	service := NewSessionService(accounts, sessions)
	service.SetTTL(2 * time.Hour)

	ctx := context.Background()
	if _, err := accounts.Register(ctx, "bob@dylan.com", "toto1234!", time.Now().UTC()); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, err := service.Login(ctx, "bob@dylan.com", "toto1234!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, raw := sessions.entries[token]; raw {
		t.Fatal("plaintext token must not be a storage key")
	}
	if _, hashed := sessions.entries[hashSessionToken(token)]; !hashed {
		t.Fatal("expected the hashed token as storage key")
	}
	if got := sessions.ttls[hashSessionToken(token)]; got != 2*time.Hour {
		t.Fatalf("expected configured ttl, got %v", got)
	}

	account, err := service.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if account == nil || account.Email != "bob@dylan.com" {
		t.Fatalf("unexpected resolved account: %+v", account)
	}

	revoked, err := service.Logout(ctx, token)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if !revoked {
		t.Fatal("expected logout to revoke the session")
	}
	if account, err := service.Resolve(ctx, token); err != nil || account != nil {
		t.Fatalf("expected revoked token to resolve to nil, got %+v (%v)", account, err)
	}
}
