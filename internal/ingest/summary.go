package ingest

import (
	"strconv"

	"github.com/hyperjump/autoeval/internal/models"
)

// PreviewRows is the number of leading rows included in a summary.
const PreviewRows = 10

// Summarize builds the structural summary of a dataset: shape, kinds, missing counts and a preview.
func Summarize(ds *models.Dataset) *models.Summary {
	s := &models.Summary{
		Columns:       ds.ColumnNames(),
		Shape:         [2]int{ds.Rows(), ds.Width()},
		MissingValues: make(map[string]int, ds.Width()),
		DataTypes:     make(map[string]models.ColumnKind, ds.Width()),
	}
	for i := range ds.Columns {
		c := &ds.Columns[i]
		s.MissingValues[c.Name] = c.MissingCount()
		s.DataTypes[c.Name] = c.Kind
	}
	n := ds.Rows()
	if n > PreviewRows {
		n = PreviewRows
	}
	s.Preview = make([]map[string]interface{}, n)
	for r := 0; r < n; r++ {
		row := make(map[string]interface{}, ds.Width())
		for i := range ds.Columns {
			row[ds.Columns[i].Name] = previewValue(&ds.Columns[i], r)
		}
		s.Preview[r] = row
	}
	return s
}

// previewValue renders one cell for JSON: missing as null, numbers and booleans natively,
// datetimes and text as strings.
func previewValue(c *models.Column, r int) interface{} {
	if c.Missing[r] {
		return nil
	}
	switch c.Kind {
	case models.KindInteger:
		// Reparsed from text: float64 holds integers exactly only up to 2^53.
		n, _ := strconv.ParseInt(c.Cells[r], 10, 64)
		return n
	case models.KindFloat:
		return c.Numbers[r]
	case models.KindBoolean:
		b, _ := parseBool(c.Cells[r])
		return b
	default:
		return c.Cells[r]
	}
}
