package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/autoeval/internal/analysis"
	"github.com/hyperjump/autoeval/internal/config"
	"github.com/hyperjump/autoeval/internal/ingest"
	"github.com/hyperjump/autoeval/internal/models"
	"go.uber.org/zap"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	msgInvalidSession = "Invalid or expired session. Please re-upload your file."
	msgUnsupported    = "Unsupported file format"

	defaultPageSize = 50
	maxPageSize     = 500
	multipartMemory = 8 << 20
)

type uploadResponse struct {
	Status    string          `json:"status"`
	SessionID string          `json:"session_id"`
	Summary   *models.Summary `json:"summary"`
}

type analyzeResponse struct {
	Status   string                 `json:"status"`
	Analysis *models.AnalysisResult `json:"analysis"`
}

type sessionEntry struct {
	*models.Upload
	Live bool `json:"live"`
}

type sessionsResponse struct {
	Status   string          `json:"status"`
	Sessions []*sessionEntry `json:"sessions"`
	Total    int64           `json:"total"`
	Offset   int             `json:"offset"`
	Limit    int             `json:"limit"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if limit := s.config.Server.MaxUploadBytes; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			s.respondError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if _, err := ingest.FormatFromFilename(header.Filename); err != nil {
		s.respondError(w, http.StatusBadRequest, msgUnsupported)
		return
	}
	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	s.logger.Debug("upload request", zap.String("filename", header.Filename), zap.Int("bytes", len(content)))

	res, err := s.intake.IngestBytes(r.Context(), header.Filename, content, models.SourceHTTP)
	switch {
	case err == nil:
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		s.respondError(w, http.StatusBadRequest, msgUnsupported)
		return
	case errors.Is(err, ingest.ErrTooLarge):
		s.respondError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	default:
		s.logger.Error("upload parse failed", zap.String("filename", header.Filename), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, uploadResponse{
		Status:    statusSuccess,
		SessionID: res.SessionID,
		Summary:   res.Summary,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusNotFound, msgInvalidSession)
		return
	}
	s.logger.Debug("analyze request", zap.String("session_id", req.SessionID), zap.String("type", req.Type), zap.String("viz", req.Viz))

	result, err := s.dispatcher.Analyze(r.Context(), req.SessionID, req.Type, req.Viz)
	switch {
	case err == nil:
	case errors.Is(err, analysis.ErrSessionNotFound):
		s.respondError(w, http.StatusNotFound, msgInvalidSession)
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.respondError(w, http.StatusServiceUnavailable, "request cancelled")
		return
	default:
		s.logger.Error("analysis failed", zap.String("session_id", req.SessionID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Analytical engine error: "+err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, analyzeResponse{Status: statusSuccess, Analysis: result})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r)
	ctx := r.Context()
	uploads, err := s.ledger.ListUploads(ctx, offset, limit)
	if err != nil {
		s.logger.Error("list uploads failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := s.ledger.CountUploads(ctx)
	if err != nil {
		s.logger.Error("count uploads failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	entries := make([]*sessionEntry, len(uploads))
	for i, u := range uploads {
		_, live := s.sessions.Get(u.SessionID)
		entries[i] = &sessionEntry{Upload: u, Live: live}
	}
	s.respondJSON(w, http.StatusOK, sessionsResponse{
		Status:   statusSuccess,
		Sessions: entries,
		Total:    total,
		Offset:   offset,
		Limit:    limit,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ds, ok := s.sessions.Get(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, msgInvalidSession)
		return
	}
	s.respondJSON(w, http.StatusOK, uploadResponse{
		Status:    statusSuccess,
		SessionID: id,
		Summary:   ingest.Summarize(ds),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	uploads, err := s.ledger.CountUploads(r.Context())
	if err != nil {
		s.logger.Error("status: count uploads failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	cfg := s.config
	resp := map[string]interface{}{
		"status":           statusSuccess,
		"live_sessions":    s.sessions.Len(),
		"recorded_uploads": uploads,
	}
	if sz, ok := s.ledger.(sizer); ok {
		if n, err := sz.SizeBytes(); err == nil {
			resp["ledger_bytes"] = n
		}
	}
	configInfo := map[string]interface{}{
		"max_upload_bytes": cfg.Server.MaxUploadBytes,
		"request_timeout":  cfg.Server.RequestTimeout.String(),
		"session_ttl":      cfg.Session.TTL.String(),
		"max_sessions":     cfg.Session.MaxSessions,
		"max_rows":         cfg.Analysis.MaxRows,
		"cluster_seed":     cfg.Analysis.ClusterSeed,
		"max_iterations":   cfg.Analysis.MaxIterations,
		"database_path":    cfg.Storage.DatabasePath,
	}
	if s.watch != nil {
		configInfo["watch_directories"] = s.watch.Directories()
	}
	resp["config"] = configInfo
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWatchDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      statusSuccess,
		"directories": s.watch.Directories(),
	})
}

type watchAddRequest struct {
	Path string `json:"path"`
	Sync *bool  `json:"sync,omitempty"`
}

func (s *Server) handleWatchDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	var req watchAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "directory not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !info.IsDir() {
		s.respondError(w, http.StatusBadRequest, "path is not a directory")
		return
	}
	syncExisting := true
	if req.Sync != nil {
		syncExisting = *req.Sync
	}
	if err := s.watch.AddDirectory(abs, syncExisting); err != nil {
		s.logger.Error("watch add directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusCreated, map[string]string{"status": statusSuccess, "path": abs})
}

func (s *Server) handleWatchDirectoriesRemove(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	if err := s.watch.RemoveDirectory(abs); err != nil {
		s.logger.Error("watch remove directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusOK, map[string]string{"status": statusSuccess, "path": abs})
}

// persistWatchDirectories writes the current inbox roots back to the config file.
func (s *Server) persistWatchDirectories() {
	if s.configPath == "" {
		return
	}
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.config.Watch.Directories = s.watch.Directories()
	if err := config.Save(s.configPath, s.config); err != nil {
		s.logger.Warn("failed to persist watch config", zap.Error(err))
	}
}

// pageParams reads offset and limit from the query string. Bad values fall back to defaults.
func pageParams(r *http.Request) (offset, limit int) {
	limit = defaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return offset, limit
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"status": statusError, "message": message})
}
