package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/autoeval/internal/models"
)

// missingTokens are cell values read as "no value".
var missingTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

var timeLayouts = []string{
	time.RFC3339, time.RFC3339Nano, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02T15:04:05",
	"1/2/2006 15:04", "1/2/2006 15:04:05", "01-02-06", "1/2/06",
}

// IsMissing reports whether a trimmed cell represents a missing value.
func IsMissing(cell string) bool {
	_, ok := missingTokens[cell]
	return ok
}

func buildColumn(name string, cells []string) models.Column {
	missing := make([]bool, len(cells))
	for i, c := range cells {
		missing[i] = IsMissing(c)
	}
	col := models.Column{Name: name, Kind: inferKind(cells, missing), Cells: cells, Missing: missing}
	if col.Kind.IsNumeric() {
		col.Numbers = make([]float64, len(cells))
		for i, c := range cells {
			if missing[i] {
				continue
			}
			x, _ := parseFloat(c)
			if math.IsNaN(x) || math.IsInf(x, 0) {
				missing[i] = true
				continue
			}
			col.Numbers[i] = x
		}
	}
	return col
}

// inferKind picks the narrowest kind every present cell parses as.
// A column without any present cell is text.
func inferKind(cells []string, missing []bool) models.ColumnKind {
	present := 0
	isBool, isInt, isFloat, isTime := true, true, true, true
	for i, c := range cells {
		if missing[i] {
			continue
		}
		present++
		if isBool {
			_, isBool = parseBool(c)
		}
		if isInt {
			_, err := strconv.ParseInt(c, 10, 64)
			isInt = err == nil
		}
		if isFloat {
			_, isFloat = parseFloat(c)
		}
		if isTime {
			_, isTime = parseTime(c)
		}
		if !isBool && !isInt && !isFloat && !isTime {
			return models.KindText
		}
	}
	switch {
	case present == 0:
		return models.KindText
	case isBool:
		return models.KindBoolean
	case isInt:
		return models.KindInteger
	case isFloat:
		return models.KindFloat
	case isTime:
		return models.KindDatetime
	default:
		return models.KindText
	}
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func parseTime(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
