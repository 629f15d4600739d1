package analysis

import (
	"fmt"
	"math"

	"github.com/hyperjump/autoeval/internal/models"
	"gonum.org/v1/gonum/stat"
)

const chartColumns = 5

// Correlator reports the strongest Pearson pair and charts column means.
type Correlator struct{}

// NewCorrelator returns a Correlator.
func NewCorrelator() *Correlator {
	return &Correlator{}
}

// PairCorr is one off-diagonal entry of the correlation matrix.
type PairCorr struct {
	A, B string
	R    float64
}

// Run finds the pair with the largest |r|. With fewer than two usable columns it yields
// no insight but still returns the means chart.
func (c *Correlator) Run(p *Projection) (Outcome, error) {
	if p.Empty() {
		return emptyOutcome(models.EmptyChart()), nil
	}
	chart := p.meansChart(chartColumns)
	best, ok := StrongestPair(p)
	if !ok {
		return emptyOutcome(chart), nil
	}
	return okOutcome(chart, models.Insight{
		Type: models.InsightStat,
		Text: fmt.Sprintf("Strong correlation between '%s' and '%s' (r=%.2f).", best.A, best.B, best.R),
	}), nil
}

// StrongestPair scans the strict upper triangle of the correlation matrix, so a column is
// never paired with itself or reported twice. Undefined correlations (constant columns)
// are skipped. Ties on |r| keep the earliest pair in column declaration order.
func StrongestPair(p *Projection) (PairCorr, bool) {
	var best PairCorr
	found := false
	for i := 0; i < p.Cols(); i++ {
		for j := i + 1; j < p.Cols(); j++ {
			r := stat.Correlation(p.Column(i), p.Column(j), nil)
			if math.IsNaN(r) || math.IsInf(r, 0) {
				continue
			}
			r = math.Max(-1, math.Min(1, r))
			if !found || math.Abs(r) > math.Abs(best.R) {
				best = PairCorr{A: p.Names[i], B: p.Names[j], R: r}
				found = true
			}
		}
	}
	return best, found
}
