package analysis

import (
	"testing"

	"github.com/hyperjump/autoeval/internal/ingest"
	"github.com/hyperjump/autoeval/internal/models"
)

func parseCSV(t *testing.T, content string) *models.Dataset {
	t.Helper()
	ds, err := ingest.NewParser(0).Parse("test.csv", []byte(content), ingest.FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

// scenarioAgeIncome has one missing income; income is exactly 2000 * age on complete rows.
const scenarioAgeIncome = "age,income\n25,50000\n30,60000\n35,\n40,80000\n45,90000\n50,100000\n"

func sum(values []float64) float64 {
	s := 0.0
	for _, v := range values {
		s += v
	}
	return s
}
