package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/autoeval/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist. ":memory:" opens a private in-memory ledger.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each in-memory connection would see its own empty database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS uploads (
		session_id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		format TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		column_count INTEGER NOT NULL,
		source TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_uploads_created_at ON uploads(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// RecordUpload inserts a ledger row. CreatedAt is set when zero.
func (s *SQLiteStorage) RecordUpload(ctx context.Context, u *models.Upload) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uploads (session_id, filename, format, row_count, column_count, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.SessionID, u.Filename, u.Format, u.Rows, u.Columns, u.Source, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record upload %s: %w", u.SessionID, err)
	}
	return nil
}

// GetUpload returns the ledger row for a session.
func (s *SQLiteStorage) GetUpload(ctx context.Context, sessionID string) (*models.Upload, error) {
	var u models.Upload
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, filename, format, row_count, column_count, source, created_at
		 FROM uploads WHERE session_id = ?`, sessionID,
	).Scan(&u.SessionID, &u.Filename, &u.Format, &u.Rows, &u.Columns, &u.Source, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUploads returns ledger rows newest first.
func (s *SQLiteStorage) ListUploads(ctx context.Context, offset, limit int) ([]*models.Upload, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, filename, format, row_count, column_count, source, created_at
		 FROM uploads ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	uploads := []*models.Upload{}
	for rows.Next() {
		var u models.Upload
		if err := rows.Scan(&u.SessionID, &u.Filename, &u.Format, &u.Rows, &u.Columns, &u.Source, &u.CreatedAt); err != nil {
			return nil, err
		}
		uploads = append(uploads, &u)
	}
	return uploads, rows.Err()
}

// CountUploads returns the total number of ledger rows.
func (s *SQLiteStorage) CountUploads(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM uploads`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
