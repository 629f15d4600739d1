package models

import "time"

// Upload sources.
const (
	SourceHTTP  = "http"
	SourceWatch = "watch"
	SourceCLI   = "cli"
)

// Upload is the ledger record of one ingested dataset. It never holds dataset contents.
type Upload struct {
	SessionID string    `json:"session_id" db:"session_id"`
	Filename  string    `json:"filename" db:"filename"`
	Format    string    `json:"format" db:"format"`
	Rows      int       `json:"rows" db:"row_count"`
	Columns   int       `json:"columns" db:"column_count"`
	Source    string    `json:"source" db:"source"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
