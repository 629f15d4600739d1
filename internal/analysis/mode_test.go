package analysis

import "testing"

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"descriptive":   ModeDescriptive,
		"clustering":    ModeClustering,
		"prediction":    ModePrediction,
		"correlation":   ModeCorrelation,
		" correlation ": ModeCorrelation,
		"Clustering":    ModeUnknown,
		"banana":        ModeUnknown,
		"":              ModeUnknown,
	}
	for in, want := range tests {
		if got := ParseMode(in); got != want {
			t.Errorf("ParseMode(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMode_String(t *testing.T) {
	if ModePrediction.String() != "prediction" || Mode(99).String() != "unknown" {
		t.Error("unexpected mode names")
	}
}
