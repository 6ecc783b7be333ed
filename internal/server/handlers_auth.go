package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"filebox/internal/api"
	"filebox/internal/models"
)

// sessionTokenFromRequest extracts the bearer token from the X-Token
// header.
func sessionTokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.Header.Get(sessionTokenHeader))
}

// requireSession resolves the caller's session or writes a 401. The
// response never reveals whether the token was absent, malformed,
// expired, or dangling.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) (*models.Account, bool) {
	if s.sessions == nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, internalError(fmt.Errorf("session service unavailable")))
		return nil, false
	}

	account, err := s.sessions.Resolve(r.Context(), sessionTokenFromRequest(r))
	if err != nil {
		s.writeStoreError(w, r, err)
		return nil, false
	}
	if account == nil {
		s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized(fmt.Errorf("Unauthorized")))
		return nil, false
	}
	return account, true
}

// optionalSession resolves the caller's session if a valid token is
// present. An absent or bad token yields an anonymous caller, not an
// error.
func (s *Server) optionalSession(r *http.Request) (*models.Account, error) {
	if s.sessions == nil {
		return nil, nil
	}
	return s.sessions.Resolve(r.Context(), sessionTokenFromRequest(r))
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, internalError(fmt.Errorf("session service unavailable")))
		return
	}

	email, password, ok := r.BasicAuth()
	if !ok {
		s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized(fmt.Errorf("Unauthorized")))
		return
	}

	token, err := s.sessions.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, errInvalidCredentials) {
			s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized(fmt.Errorf("Unauthorized")))
			return
		}
		s.writeStoreError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.TokenResponse{Token: token})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, internalError(fmt.Errorf("session service unavailable")))
		return
	}

	token := sessionTokenFromRequest(r)
	revoked, err := s.sessions.Logout(r.Context(), token)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if !revoked {
		s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized(fmt.Errorf("Unauthorized")))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
