// Package ingest parses uploaded tabular files (CSV, Excel, JSON) into datasets.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/autoeval/internal/models"
)

// Supported format hints.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatJSON  = "json"
)

var (
	// ErrUnsupportedFormat is returned for files that are not CSV, Excel, or JSON.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyDataset is returned when the content has no header row.
	ErrEmptyDataset = errors.New("dataset has no columns")
	// ErrTooLarge is returned when the dataset has more rows than the parser allows.
	ErrTooLarge = errors.New("dataset exceeds row limit")
)

// FormatFromFilename maps a filename extension to a format hint. Excel means OOXML
// workbooks only; legacy BIFF .xls files are rejected.
func FormatFromFilename(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatExcel, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// Parser turns raw bytes into a Dataset.
type Parser struct {
	// MaxRows rejects datasets with more data rows; 0 means unlimited.
	MaxRows int
}

// NewParser returns a Parser with the given row limit.
func NewParser(maxRows int) *Parser {
	return &Parser{MaxRows: maxRows}
}

// ParseFile reads the file at path and parses it according to its extension.
func (p *Parser) ParseFile(path string) (*models.Dataset, error) {
	format, err := FormatFromFilename(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return p.Parse(filepath.Base(path), content, format)
}

// Parse parses content in the given format. name is kept as the dataset name.
func (p *Parser) Parse(name string, content []byte, format string) (*models.Dataset, error) {
	var (
		header []string
		rows   [][]string
		err    error
	)
	switch format {
	case FormatCSV:
		header, rows, err = readCSV(content)
	case FormatExcel:
		header, rows, err = readExcel(content)
	case FormatJSON:
		header, rows, err = readJSON(content)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if len(header) == 0 {
		return nil, ErrEmptyDataset
	}
	if p.MaxRows > 0 && len(rows) > p.MaxRows {
		return nil, fmt.Errorf("%w: %d rows, limit %d", ErrTooLarge, len(rows), p.MaxRows)
	}
	return buildDataset(name, format, header, rows), nil
}

// buildDataset transposes rows into typed columns. Short rows are padded with missing cells.
func buildDataset(name, format string, header []string, rows [][]string) *models.Dataset {
	header = uniqueHeaders(header)
	ds := &models.Dataset{Name: name, Format: format, Columns: make([]models.Column, len(header))}
	for j, h := range header {
		cells := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				cells[i] = strings.TrimSpace(row[j])
			}
		}
		ds.Columns[j] = buildColumn(h, cells)
	}
	return ds
}

// uniqueHeaders names blank headers "Unnamed: i" and suffixes repeated names with ".n".
func uniqueHeaders(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, ok := seen[h]; ok {
			seen[h] = n + 1
			h = fmt.Sprintf("%s.%d", h, n+1)
		} else {
			seen[h] = 0
		}
		out[i] = h
	}
	return out
}
