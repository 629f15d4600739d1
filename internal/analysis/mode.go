package analysis

import "strings"

// Mode selects an analysis routine.
type Mode int

const (
	// ModeUnknown is any unrecognized mode string. It is answered by the descriptive fallback.
	ModeUnknown Mode = iota
	ModeDescriptive
	ModeClustering
	ModePrediction
	ModeCorrelation
)

var modeNames = map[Mode]string{
	ModeUnknown:     "unknown",
	ModeDescriptive: "descriptive",
	ModeClustering:  "clustering",
	ModePrediction:  "prediction",
	ModeCorrelation: "correlation",
}

// ParseMode maps a requested mode string to a Mode. Matching is exact after trimming.
func ParseMode(s string) Mode {
	switch strings.TrimSpace(s) {
	case "descriptive":
		return ModeDescriptive
	case "clustering":
		return ModeClustering
	case "prediction":
		return ModePrediction
	case "correlation":
		return ModeCorrelation
	default:
		return ModeUnknown
	}
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "unknown"
}
