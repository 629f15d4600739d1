// Package cli renders dataset summaries and analysis results for the command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/hyperjump/autoeval/internal/models"
	"github.com/hyperjump/autoeval/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const (
	barWidth     = 40
	cellMaxWidth = 24
)

// ParseOutputFormat accepts "text" and "json" (case-insensitive).
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// WriteAnalysis writes an analysis result to w in the given format.
func WriteAnalysis(w io.Writer, result *models.AnalysisResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, result)
	}
	fmt.Fprintf(w, "\nAnalysis: %s (viz: %s)\n\n", result.Type, result.VizPreference)
	for _, in := range result.Insights {
		fmt.Fprintf(w, "[%s] %s\n", in.Type, in.Text)
	}
	if !result.ChartData.IsEmpty() {
		fmt.Fprintln(w)
		writeBars(w, result.ChartData)
	}
	fmt.Fprintln(w)
	return nil
}

// WriteSummary writes a dataset summary to w in the given format.
func WriteSummary(w io.Writer, s *models.Summary, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, s)
	}
	fmt.Fprintf(w, "\n%d rows x %d columns\n\n", s.Shape[0], s.Shape[1])
	nameWidth := 0
	for _, c := range s.Columns {
		if n := len([]rune(c)); n > nameWidth {
			nameWidth = n
		}
	}
	for _, c := range s.Columns {
		fmt.Fprintf(w, "  %-*s  %-8s  missing: %d\n", nameWidth, c, s.DataTypes[c], s.MissingValues[c])
	}
	if len(s.Preview) == 0 {
		fmt.Fprintln(w)
		return nil
	}
	fmt.Fprintf(w, "\nPreview (first %d rows):\n", len(s.Preview))
	header := make([]string, len(s.Columns))
	for j, c := range s.Columns {
		header[j] = utils.Truncate(c, cellMaxWidth)
	}
	fmt.Fprintf(w, "  %s\n", strings.Join(header, " | "))
	for _, row := range s.Preview {
		cells := make([]string, len(s.Columns))
		for j, c := range s.Columns {
			cells[j] = utils.Truncate(formatCell(row[c]), cellMaxWidth)
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(cells, " | "))
	}
	fmt.Fprintln(w)
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeBars draws one horizontal bar per chart point, scaled to the largest magnitude.
func writeBars(w io.Writer, chart models.ChartData) {
	labelWidth, maxAbs := 0, 0.0
	for i, l := range chart.Labels {
		if n := len([]rune(l)); n > labelWidth {
			labelWidth = n
		}
		maxAbs = math.Max(maxAbs, math.Abs(chart.Values[i]))
	}
	for i, l := range chart.Labels {
		n := 0
		if maxAbs > 0 {
			n = int(math.Round(math.Abs(chart.Values[i]) / maxAbs * barWidth))
		}
		fmt.Fprintf(w, "  %-*s  %s %s\n", labelWidth, l, strings.Repeat("█", n), utils.FormatNumber(chart.Values[i]))
	}
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case float64:
		return utils.FormatNumber(x)
	default:
		return fmt.Sprint(x)
	}
}
