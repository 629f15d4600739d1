package analysis

import (
	"github.com/hyperjump/autoeval/internal/models"
	"gonum.org/v1/gonum/stat"
)

// Projection is the numeric-only, complete-rows-only view of a dataset.
// Columns are stored column-major in declaration order.
type Projection struct {
	Names []string
	cols  [][]float64
}

// Project keeps numeric columns and drops every row with a missing value in any of them.
// The dataset is not modified.
func Project(ds *models.Dataset) *Projection {
	var numeric []*models.Column
	for i := range ds.Columns {
		if ds.Columns[i].Kind.IsNumeric() {
			numeric = append(numeric, &ds.Columns[i])
		}
	}
	p := &Projection{
		Names: make([]string, len(numeric)),
		cols:  make([][]float64, len(numeric)),
	}
	for j, c := range numeric {
		p.Names[j] = c.Name
		p.cols[j] = make([]float64, 0, c.Len())
	}
	if len(numeric) == 0 {
		return p
	}
	for r := 0; r < ds.Rows(); r++ {
		complete := true
		for _, c := range numeric {
			if c.Missing[r] {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		for j, c := range numeric {
			p.cols[j] = append(p.cols[j], c.Numbers[r])
		}
	}
	return p
}

// Rows returns the number of complete rows.
func (p *Projection) Rows() int {
	if len(p.cols) == 0 {
		return 0
	}
	return len(p.cols[0])
}

// Cols returns the number of numeric columns.
func (p *Projection) Cols() int {
	return len(p.cols)
}

// Empty reports whether the projection has no rows or no columns.
func (p *Projection) Empty() bool {
	return p.Rows() == 0 || p.Cols() == 0
}

// Column returns the values of column j. The slice must not be modified.
func (p *Projection) Column(j int) []float64 {
	return p.cols[j]
}

// Matrix returns a row-major copy of the data.
func (p *Projection) Matrix() [][]float64 {
	out := make([][]float64, p.Rows())
	for i := range out {
		row := make([]float64, p.Cols())
		for j := range p.cols {
			row[j] = p.cols[j][i]
		}
		out[i] = row
	}
	return out
}

// meansChart charts the means of up to limit leading columns.
func (p *Projection) meansChart(limit int) models.ChartData {
	if p.Empty() {
		return models.EmptyChart()
	}
	n := p.Cols()
	if n > limit {
		n = limit
	}
	chart := models.ChartData{Labels: make([]string, n), Values: make([]float64, n)}
	for j := 0; j < n; j++ {
		chart.Labels[j] = p.Names[j]
		chart.Values[j] = stat.Mean(p.cols[j], nil)
	}
	return chart
}
