package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"filebox/internal/api"
)

func (s *Server) handleCreateFile(w http.ResponseWriter, r *http.Request) {
	account, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if s.files == nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, internalError(fmt.Errorf("file service unavailable")))
		return
	}

	var req api.FileCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	record, err := s.files.Create(r.Context(), account.ID, req, time.Now().UTC())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	account, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if s.files == nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, internalError(fmt.Errorf("file service unavailable")))
		return
	}

	page, err := queryInt(r, "page")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	records, err := s.files.List(r.Context(), account.ID, r.URL.Query().Get("parentId"), page)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	account, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if s.files == nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, internalError(fmt.Errorf("file service unavailable")))
		return
	}

	record, err := s.files.GetByID(r.Context(), account.ID, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if record == nil {
		s.writeErrorReq(w, r, http.StatusNotFound, notFound(fmt.Errorf("Not found")))
		return
	}

	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	s.handleSetPublic(w, r, true)
}

func (s *Server) handleUnpublish(w http.ResponseWriter, r *http.Request) {
	s.handleSetPublic(w, r, false)
}

func (s *Server) handleSetPublic(w http.ResponseWriter, r *http.Request, isPublic bool) {
	account, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if s.files == nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, internalError(fmt.Errorf("file service unavailable")))
		return
	}

	record, err := s.files.SetPublic(r.Context(), account.ID, r.PathValue("id"), isPublic)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if record == nil {
		s.writeErrorReq(w, r, http.StatusNotFound, notFound(fmt.Errorf("Not found")))
		return
	}

	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleFileData(w http.ResponseWriter, r *http.Request) {
	if s.guard == nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, internalError(fmt.Errorf("access guard unavailable")))
		return
	}

	// Content is readable without a session when the file is public;
	// a bad token degrades to an anonymous caller.
	account, err := s.optionalSession(r)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	callerID := ""
	if account != nil {
		callerID = account.ID
	}

	width, err := parseThumbnailWidth(r.URL.Query().Get("size"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	record, key, err := s.guard.ResolveReadable(r.Context(), callerID, r.PathValue("id"), width)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if record == nil {
		s.writeErrorReq(w, r, http.StatusNotFound, notFound(fmt.Errorf("Not found")))
		return
	}
	if record.IsFolder() {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("A folder doesn't have content"), ErrCodeFolderContent))
		return
	}

	content, err := s.guard.OpenContent(r.Context(), key)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusNotFound, notFound(fmt.Errorf("Not found")))
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", contentTypeForName(record.Name))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, content); err != nil {
		s.log().Debug("stream file content", "file_id", record.ID, "error", err)
	}
}
