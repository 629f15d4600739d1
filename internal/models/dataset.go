// Package models defines core data structures for datasets, uploads, and analysis results.
package models

// ColumnKind is the inferred value kind of a dataset column.
type ColumnKind string

const (
	KindInteger  ColumnKind = "integer"
	KindFloat    ColumnKind = "float"
	KindBoolean  ColumnKind = "boolean"
	KindDatetime ColumnKind = "datetime"
	KindText     ColumnKind = "text"
)

// IsNumeric reports whether the kind holds integer or floating point values.
func (k ColumnKind) IsNumeric() bool {
	return k == KindInteger || k == KindFloat
}

// Column is a named, single-kind sequence of values.
// Cells keeps the original text of every row; Numbers is populated for numeric kinds.
// Missing[i] is true when row i has no value.
type Column struct {
	Name    string     `json:"name"`
	Kind    ColumnKind `json:"kind"`
	Cells   []string   `json:"-"`
	Numbers []float64  `json:"-"`
	Missing []bool     `json:"-"`
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	return len(c.Cells)
}

// MissingCount returns how many rows of the column have no value.
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.Missing {
		if m {
			n++
		}
	}
	return n
}

// Dataset is an ordered collection of equal-length columns.
// A Dataset is never mutated after it has been handed to a session store.
type Dataset struct {
	Name    string
	Format  string
	Columns []Column
}

// Rows returns the row count. All columns have the same length.
func (d *Dataset) Rows() int {
	if d == nil || len(d.Columns) == 0 {
		return 0
	}
	return d.Columns[0].Len()
}

// Width returns the number of columns.
func (d *Dataset) Width() int {
	if d == nil {
		return 0
	}
	return len(d.Columns)
}

// ColumnNames returns column names in declaration order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i := range d.Columns {
		names[i] = d.Columns[i].Name
	}
	return names
}
