package server

import (
	"fmt"
	"net/http"
	"time"

	"filebox/internal/api"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if s.accounts == nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, internalError(fmt.Errorf("account service unavailable")))
		return
	}

	var req api.RegisterRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	account, err := s.accounts.Register(r.Context(), req.Email, req.Password, time.Now().UTC())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, api.AccountResponse{ID: account.ID, Email: account.Email})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	account, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, api.AccountResponse{ID: account.ID, Email: account.Email})
}
