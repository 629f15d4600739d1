// Package server provides the HTTP API and the embedded web UI for autoeval.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/autoeval/internal/analysis"
	"github.com/hyperjump/autoeval/internal/config"
	"github.com/hyperjump/autoeval/internal/intake"
	"github.com/hyperjump/autoeval/internal/session"
	"github.com/hyperjump/autoeval/internal/storage"
	"go.uber.org/zap"
)

// SessionStore is the session store view the server needs.
type SessionStore interface {
	session.Store
	Len() int
}

// WatchService manages inbox directories at runtime. Implemented by *watcher.Watcher.
type WatchService interface {
	Directories() []string
	AddDirectory(path string, syncExisting bool) error
	RemoveDirectory(path string) error
}

// sizer reports the on-disk size of the ledger. Implemented by *storage.SQLiteStorage.
type sizer interface {
	SizeBytes() (int64, error)
}

// Server is the HTTP server for the autoeval API.
type Server struct {
	dispatcher *analysis.Dispatcher
	intake     *intake.Intake
	sessions   SessionStore
	ledger     storage.Storage
	config     *config.Config
	logger     *zap.Logger
	server     *http.Server

	watch      WatchService // optional
	configPath string       // when set, inbox changes are persisted here
	configMu   sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithWatch enables the inbox directory endpoints. When configPath is non-empty,
// directory changes are saved back to the config file.
func WithWatch(ws WatchService, configPath string) Option {
	return func(s *Server) {
		s.watch = ws
		s.configPath = configPath
	}
}

// NewServer creates a server with the given dependencies.
func NewServer(
	dispatcher *analysis.Dispatcher,
	in *intake.Intake,
	sessions SessionStore,
	ledger storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
	opts ...Option,
) *Server {
	s := &Server{
		dispatcher: dispatcher,
		intake:     in,
		sessions:   sessions,
		ledger:     ledger,
		config:     cfg,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout()))
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleIndex)
	r.Handle("/static/*", staticHandler())
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/sessions", s.handleListSessions)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Get("/status", s.handleStatus)

		r.Get("/watch/directories", s.handleWatchDirectoriesList)
		r.Post("/watch/directories", s.handleWatchDirectoriesAdd)
		r.Delete("/watch/directories", s.handleWatchDirectoriesRemove)
	})
	return r
}

func (s *Server) requestTimeout() time.Duration {
	if s.config.Server.RequestTimeout > 0 {
		return s.config.Server.RequestTimeout
	}
	return 60 * time.Second
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
