package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/hyperjump/autoeval/internal/models"
	"gonum.org/v1/gonum/mat"
)

const (
	minRegressionRows = 5
	trendPoints       = 10
	rankTolerance     = 1e-10
)

// Regressor fits an ordinary least squares model of the last numeric column
// on all other numeric columns, with an intercept.
type Regressor struct{}

// NewRegressor returns a Regressor.
func NewRegressor() *Regressor {
	return &Regressor{}
}

// Run fits the model and reports R² with a chart of the first raw target values.
func (r *Regressor) Run(p *Projection) (Outcome, error) {
	if p.Rows() < minRegressionRows || p.Cols() < 2 {
		return warningOutcome(fmt.Sprintf(
			"Predictive modeling requires at least %d complete rows and 2 numeric columns.", minRegressionRows)), nil
	}
	n, preds := p.Rows(), p.Cols()-1
	targetName := p.Names[preds]
	target := p.Column(preds)

	X := mat.NewDense(n, preds+1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1)
		for j := 0; j < preds; j++ {
			X.Set(i, j+1, p.Column(j)[i])
		}
	}
	y := mat.NewVecDense(n, append([]float64(nil), target...))

	var svd mat.SVD
	if !svd.Factorize(X, mat.SVDNone) {
		return Outcome{}, fmt.Errorf("%w: regression design matrix factorization failed", ErrComputation)
	}
	if svd.Rank(rankTolerance) < preds+1 {
		return Outcome{}, fmt.Errorf("%w: singular predictor matrix for target %q", ErrComputation, targetName)
	}
	var beta mat.VecDense
	if err := beta.SolveVec(X, y); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return Outcome{}, fmt.Errorf("%w: least squares solve: %v", ErrComputation, err)
		}
	}
	for i := 0; i < beta.Len(); i++ {
		if v := beta.AtVec(i); math.IsNaN(v) || math.IsInf(v, 0) {
			return Outcome{}, fmt.Errorf("%w: non-finite regression coefficient", ErrComputation)
		}
	}
	var fitted mat.VecDense
	fitted.MulVec(X, &beta)
	score := rSquared(target, fitted.RawVector().Data)

	m := n
	if m > trendPoints {
		m = trendPoints
	}
	chart := models.ChartData{Labels: make([]string, m), Values: make([]float64, m)}
	for i := 0; i < m; i++ {
		chart.Labels[i] = fmt.Sprintf("Row %d", i+1)
		chart.Values[i] = target[i]
	}
	return okOutcome(chart, models.Insight{
		Type: models.InsightML,
		Text: fmt.Sprintf("Linear Regression predicting '%s' achieved (R²=%.2f).", targetName, score),
	}), nil
}

// exactFitTolerance is the relative residual RMS below which a fit of a constant target is exact.
const exactFitTolerance = 1e-9

// rSquared is 1 - SSres/SStot. It is not clamped and may be negative.
// A constant target scores 1 when the fit matches it up to float rounding and 0 otherwise.
func rSquared(y, yhat []float64) float64 {
	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))
	var ssTot, ssRes float64
	for i, v := range y {
		d := v - mean
		ssTot += d * d
		e := v - yhat[i]
		ssRes += e * e
	}
	if ssTot == 0 {
		if rms := math.Sqrt(ssRes / float64(len(y))); rms <= exactFitTolerance*math.Max(1, math.Abs(mean)) {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}
