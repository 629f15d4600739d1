package models

import "fmt"

// Insight types.
const (
	InsightStat    = "stat"
	InsightML      = "ml"
	InsightWarning = "warning"
)

// Insight is a short categorized finding.
type Insight struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ChartData is a parallel label/value series. Empty slices mean "no chart".
type ChartData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// EmptyChart returns chart data with non-nil empty series, so it encodes as [] rather than null.
func EmptyChart() ChartData {
	return ChartData{Labels: []string{}, Values: []float64{}}
}

// IsEmpty reports whether the chart carries no points.
func (c ChartData) IsEmpty() bool {
	return len(c.Labels) == 0
}

// AnalysisResult is the full payload of one analysis request.
type AnalysisResult struct {
	Type          string    `json:"type"`
	VizPreference string    `json:"viz_preference"`
	Insights      []Insight `json:"insights"`
	ChartData     ChartData `json:"chart_data"`
}

// AnalyzeRequest is the body of an analysis request.
type AnalyzeRequest struct {
	SessionID string `json:"session_id"`
	Type      string `json:"type,omitempty"`
	Viz       string `json:"viz,omitempty"`
}

// Validate checks the request and fills defaults: type "descriptive", viz "auto".
func (r *AnalyzeRequest) Validate() error {
	if r.SessionID == "" {
		return fmt.Errorf("session_id cannot be empty")
	}
	if r.Type == "" {
		r.Type = "descriptive"
	}
	if r.Viz == "" {
		r.Viz = "auto"
	}
	return nil
}
