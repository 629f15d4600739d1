package analysis

import (
	"fmt"

	"github.com/hyperjump/autoeval/internal/models"
)

// describe is the fallback answer: the shape of the full dataset, plus the means chart
// when the projection has data. Otherwise the previous chart is kept.
func describe(ds *models.Dataset, p *Projection, prev models.ChartData) Outcome {
	chart := prev
	if !p.Empty() {
		chart = p.meansChart(chartColumns)
	}
	return okOutcome(chart, models.Insight{
		Type: models.InsightStat,
		Text: fmt.Sprintf("Summary check: Found %d rows and %d features.", ds.Rows(), ds.Width()),
	})
}
