// Package intake turns uploaded or dropped files into live sessions: parse, store, and record in the ledger.
package intake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/autoeval/internal/ingest"
	"github.com/hyperjump/autoeval/internal/models"
	"github.com/hyperjump/autoeval/internal/session"
	"github.com/hyperjump/autoeval/internal/storage"
	"go.uber.org/zap"
)

// Result is a freshly created session.
type Result struct {
	SessionID string
	Dataset   *models.Dataset
	Summary   *models.Summary
}

// Intake parses datasets into the session store and records each upload.
type Intake struct {
	parser *ingest.Parser
	store  session.Store
	ledger storage.Storage // optional
	logger *zap.Logger
}

// Option configures an Intake.
type Option func(*Intake)

// WithLogger sets a logger for ingestion events.
func WithLogger(l *zap.Logger) Option {
	return func(in *Intake) { in.logger = l }
}

// WithLedger records every ingested dataset in the upload ledger.
func WithLedger(s storage.Storage) Option {
	return func(in *Intake) { in.ledger = s }
}

// New creates an Intake writing sessions into store.
func New(parser *ingest.Parser, store session.Store, opts ...Option) *Intake {
	in := &Intake{
		parser: parser,
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// IngestBytes parses content named filename and stores it under a new session.
// The format is derived from the filename extension. A ledger failure is logged, not returned:
// the session is already live and usable.
func (in *Intake) IngestBytes(ctx context.Context, filename string, content []byte, source string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	format, err := ingest.FormatFromFilename(filename)
	if err != nil {
		return nil, err
	}
	ds, err := in.parser.Parse(filename, content, format)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	id := in.store.Put(ds)

	if in.ledger != nil {
		u := &models.Upload{
			SessionID: id,
			Filename:  filename,
			Format:    format,
			Rows:      ds.Rows(),
			Columns:   ds.Width(),
			Source:    source,
			CreatedAt: time.Now().UTC(),
		}
		if err := in.ledger.RecordUpload(ctx, u); err != nil {
			in.logger.Warn("failed to record upload", zap.String("session_id", id), zap.Error(err))
		}
	}
	in.logger.Info("dataset ingested",
		zap.String("session_id", id),
		zap.String("filename", filename),
		zap.String("format", format),
		zap.String("source", source),
		zap.Int("rows", ds.Rows()),
		zap.Int("columns", ds.Width()),
	)
	return &Result{SessionID: id, Dataset: ds, Summary: ingest.Summarize(ds)}, nil
}

// IngestFile reads a regular file from path and ingests it.
func (in *Intake) IngestFile(ctx context.Context, path, source string) (*Result, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", absPath)
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return in.IngestBytes(ctx, filepath.Base(absPath), content, source)
}

// IngestDirectory ingests every regular file in dir whose extension is in allowedExts
// (all supported formats when empty), in lexical order. Files that fail to parse are
// logged and skipped.
func (in *Intake) IngestDirectory(ctx context.Context, dir string, allowedExts []string, recursive bool, source string) ([]*Result, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", absDir)
	}
	var results []*Result
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != absDir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !Accepts(path, allowedExts) {
			return nil
		}
		res, err := in.IngestFile(ctx, path, source)
		if err != nil {
			in.logger.Warn("skipping file", zap.String("path", path), zap.Error(err))
			return nil
		}
		results = append(results, res)
		return nil
	})
	return results, err
}

// Accepts reports whether path has a supported format and, when allowedExts is non-empty,
// an extension in that list (case-insensitive, leading dot optional).
func Accepts(path string, allowedExts []string) bool {
	if _, err := ingest.FormatFromFilename(path); err != nil {
		return false
	}
	if len(allowedExts) == 0 {
		return true
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, a := range allowedExts {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == ext {
			return true
		}
	}
	return false
}
