package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /health", s.handleHealth)

	// Accounts and sessions.
	mux.HandleFunc("POST /accounts", s.handleRegister)
	mux.HandleFunc("GET /accounts/me", s.handleMe)
	mux.HandleFunc("GET /connect", s.handleConnect)
	mux.HandleFunc("GET /disconnect", s.handleDisconnect)

	// Files collection.
	mux.HandleFunc("POST /files", s.handleCreateFile)
	mux.HandleFunc("GET /files", s.handleListFiles)

	// Single file.
	mux.HandleFunc("GET /files/{id}", s.handleGetFile)
	mux.HandleFunc("PUT /files/{id}/publish", s.handlePublish)
	mux.HandleFunc("PUT /files/{id}/unpublish", s.handleUnpublish)
	mux.HandleFunc("GET /files/{id}/data", s.handleFileData)

	return s.withRequestLogging(mux)
}
