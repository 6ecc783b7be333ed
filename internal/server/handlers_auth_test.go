package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"filebox/internal/api"
)

func TestRegisterConnectDisconnectFlow(t *testing.T) {
	h := newTestServer(t).routes()

	account := registerAccount(t, h, "bob@dylan.com", "toto1234!")
	if account.ID == "" {
		t.Fatal("expected non-empty account id")
	}
	if account.Email != "bob@dylan.com" {
		t.Fatalf("expected email bob@dylan.com, got %q", account.Email)
	}

	token := connectAccount(t, h, "bob@dylan.com", "toto1234!")

	meW := doJSON(t, h, http.MethodGet, "/accounts/me", token, nil)
	if meW.Code != http.StatusOK {
		t.Fatalf("expected me 200, got %d (%s)", meW.Code, meW.Body.String())
	}
	var me api.AccountResponse
	decodeInto(t, meW, &me)
	if me.ID != account.ID || me.Email != account.Email {
		t.Fatalf("unexpected me response: %+v", me)
	}

	discW := doJSON(t, h, http.MethodGet, "/disconnect", token, nil)
	if discW.Code != http.StatusNoContent {
		t.Fatalf("expected disconnect 204, got %d (%s)", discW.Code, discW.Body.String())
	}

	// The revoked token no longer resolves.
	afterW := doJSON(t, h, http.MethodGet, "/accounts/me", token, nil)
	if afterW.Code != http.StatusUnauthorized {
		t.Fatalf("expected me after disconnect 401, got %d", afterW.Code)
	}

	// Revoking twice fails the second time.
	againW := doJSON(t, h, http.MethodGet, "/disconnect", token, nil)
	if againW.Code != http.StatusUnauthorized {
		t.Fatalf("expected second disconnect 401, got %d", againW.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	h := newTestServer(t).routes()

	t.Run("missing email", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/accounts", "", api.RegisterRequest{Password: "secret"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		var resp api.ErrorResponse
		decodeInto(t, w, &resp)
		if resp.Error != "Missing email" {
			t.Fatalf("expected error %q, got %q", "Missing email", resp.Error)
		}
		if resp.ErrorCode != ErrCodeMissingEmail {
			t.Fatalf("expected error_code %d, got %d", ErrCodeMissingEmail, resp.ErrorCode)
		}
	})

	t.Run("missing password", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/accounts", "", api.RegisterRequest{Email: "bob@dylan.com"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		var resp api.ErrorResponse
		decodeInto(t, w, &resp)
		if resp.Error != "Missing password" {
			t.Fatalf("expected error %q, got %q", "Missing password", resp.Error)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		registerAccount(t, h, "dup@dylan.com", "toto1234!")
		w := doJSON(t, h, http.MethodPost, "/accounts", "", api.RegisterRequest{Email: "dup@dylan.com", Password: "other"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
		}
		var resp api.ErrorResponse
		decodeInto(t, w, &resp)
		if resp.Error != "Already exist" {
			t.Fatalf("expected error %q, got %q", "Already exist", resp.Error)
		}
		if resp.ErrorCode != ErrCodeAccountExists {
			t.Fatalf("expected error_code %d, got %d", ErrCodeAccountExists, resp.ErrorCode)
		}
	})

	t.Run("email case folds to one account", func(t *testing.T) {
		registerAccount(t, h, "case@dylan.com", "toto1234!")
		w := doJSON(t, h, http.MethodPost, "/accounts", "", api.RegisterRequest{Email: "CASE@Dylan.com", Password: "other"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for case-folded duplicate, got %d", w.Code)
		}
	})
}

func TestConnectRejectsBadCredentials(t *testing.T) {
	h := newTestServer(t).routes()
	registerAccount(t, h, "bob@dylan.com", "toto1234!")

	t.Run("no basic auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/connect", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/connect", nil)
		req.SetBasicAuth("bob@dylan.com", "wrong")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
		var resp api.ErrorResponse
		decodeInto(t, w, &resp)
		if resp.Error != "Unauthorized" {
			t.Fatalf("expected error %q, got %q", "Unauthorized", resp.Error)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/connect", nil)
		req.SetBasicAuth("nobody@dylan.com", "toto1234!")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
}

func TestSessionTokensAreIndependent(t *testing.T) {
	h := newTestServer(t).routes()
	registerAccount(t, h, "bob@dylan.com", "toto1234!")

	first := connectAccount(t, h, "bob@dylan.com", "toto1234!")
	second := connectAccount(t, h, "bob@dylan.com", "toto1234!")
	if first == second {
		t.Fatal("expected distinct tokens per connect")
	}

	// Revoking one session leaves the other live.
	if w := doJSON(t, h, http.MethodGet, "/disconnect", first, nil); w.Code != http.StatusNoContent {
		t.Fatalf("expected disconnect 204, got %d", w.Code)
	}
	if w := doJSON(t, h, http.MethodGet, "/accounts/me", second, nil); w.Code != http.StatusOK {
		t.Fatalf("expected surviving session 200, got %d", w.Code)
	}
}

func TestMeRequiresToken(t *testing.T) {
	h := newTestServer(t).routes()

	w := doJSON(t, h, http.MethodGet, "/accounts/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	var resp api.ErrorResponse
	decodeInto(t, w, &resp)
	if resp.Error != "Unauthorized" {
		t.Fatalf("expected error %q, got %q", "Unauthorized", resp.Error)
	}

	garbageW := doJSON(t, h, http.MethodGet, "/accounts/me", "not-a-token", nil)
	if garbageW.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", garbageW.Code)
	}
}
