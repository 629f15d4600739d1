package analysis

import "github.com/hyperjump/autoeval/internal/models"

// OutcomeStatus classifies what a routine produced.
type OutcomeStatus int

const (
	// OutcomeEmpty means the routine had nothing to say; the descriptive fallback answers instead.
	OutcomeEmpty OutcomeStatus = iota
	// OutcomeOK carries insights and chart data.
	OutcomeOK
	// OutcomeWarning carries a single warning insight and no chart.
	OutcomeWarning
)

// Outcome is the explicit result of one routine. Fatal failures are returned as errors instead.
type Outcome struct {
	Status   OutcomeStatus
	Insights []models.Insight
	Chart    models.ChartData
}

func okOutcome(chart models.ChartData, insights ...models.Insight) Outcome {
	return Outcome{Status: OutcomeOK, Insights: insights, Chart: chart}
}

func warningOutcome(text string) Outcome {
	return Outcome{
		Status:   OutcomeWarning,
		Insights: []models.Insight{{Type: models.InsightWarning, Text: text}},
		Chart:    models.EmptyChart(),
	}
}

func emptyOutcome(chart models.ChartData) Outcome {
	return Outcome{Status: OutcomeEmpty, Chart: chart}
}
