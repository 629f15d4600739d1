// Package analysis selects, guards and runs the canned analyses over the numeric
// projection of a dataset and shapes their results into a uniform envelope.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/autoeval/internal/models"
	"github.com/hyperjump/autoeval/internal/session"
	"go.uber.org/zap"
)

// Dispatcher answers analysis requests against datasets held in a session store.
// It keeps no per-request state and is safe for concurrent use.
type Dispatcher struct {
	store      session.Store
	clusterer  *Clusterer
	regressor  *Regressor
	correlator *Correlator
	logger     *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithClusterSeed sets the k-means seeding source.
func WithClusterSeed(seed int64) Option {
	return func(d *Dispatcher) { d.clusterer.Seed = seed }
}

// WithMaxIterations bounds k-means iterations. Non-positive values are ignored.
func WithMaxIterations(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.clusterer.MaxIter = n
		}
	}
}

// NewDispatcher creates a dispatcher reading datasets from store.
func NewDispatcher(store session.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:      store,
		clusterer:  NewClusterer(),
		regressor:  NewRegressor(),
		correlator: NewCorrelator(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Analyze runs the requested mode against the dataset of sessionID.
// It returns ErrSessionNotFound for unknown sessions and wraps ErrComputation for numeric failures.
// Insufficient data is not an error: it is reported as a warning insight.
func (d *Dispatcher) Analyze(ctx context.Context, sessionID, mode, viz string) (*models.AnalysisResult, error) {
	ds, ok := d.store.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return d.AnalyzeDataset(ctx, ds, mode, viz)
}

// AnalyzeDataset runs the requested mode against ds directly.
func (d *Dispatcher) AnalyzeDataset(ctx context.Context, ds *models.Dataset, mode, viz string) (*models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mode = strings.TrimSpace(mode)
	if mode == "" {
		mode = ModeDescriptive.String()
	}
	if viz == "" {
		viz = "auto"
	}
	start := time.Now()
	p := Project(ds)
	m := ParseMode(mode)

	out, err := d.run(m, p)
	if err != nil {
		d.logger.Warn("analysis failed", zap.String("mode", mode), zap.String("dataset", ds.Name), zap.Error(err))
		return nil, err
	}
	if len(out.Insights) == 0 {
		out = describe(ds, p, out.Chart)
	}
	d.logger.Debug("analysis done",
		zap.String("mode", mode),
		zap.Stringer("routine", m),
		zap.Int("rows", ds.Rows()),
		zap.Int("projected_rows", p.Rows()),
		zap.Int("numeric_columns", p.Cols()),
		zap.Int("insights", len(out.Insights)),
		zap.Duration("elapsed", time.Since(start)),
	)
	chart := out.Chart
	if chart.Labels == nil || chart.Values == nil {
		chart = models.EmptyChart()
	}
	return &models.AnalysisResult{
		Type:          mode,
		VizPreference: viz,
		Insights:      out.Insights,
		ChartData:     chart,
	}, nil
}

// run routes a mode to its routine. Descriptive and unknown modes produce nothing so
// the caller falls back to the dataset summary. A panicking routine is reported as ErrComputation.
func (d *Dispatcher) run(m Mode, p *Projection) (out Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = Outcome{}, fmt.Errorf("%w: %s routine: %v", ErrComputation, m, r)
		}
	}()
	switch m {
	case ModeClustering:
		return d.clusterer.Run(p)
	case ModePrediction:
		return d.regressor.Run(p)
	case ModeCorrelation:
		return d.correlator.Run(p)
	case ModeDescriptive, ModeUnknown:
		return emptyOutcome(models.EmptyChart()), nil
	default:
		return emptyOutcome(models.EmptyChart()), nil
	}
}
