package ingest

import (
	"math"
	"testing"

	"github.com/hyperjump/autoeval/internal/models"
)

func TestSummarize(t *testing.T) {
	content := "id,score,ok,when\n1,1.5,true,2024-01-01\n2,,false,2024-01-02\n"
	for i := 3; i <= 12; i++ {
		content += "3,2.5,true,2024-01-03\n"
	}
	ds, err := NewParser(0).Parse("s.csv", []byte(content), FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	s := Summarize(ds)
	if s.Shape != [2]int{12, 4} {
		t.Errorf("shape = %v", s.Shape)
	}
	if s.MissingValues["score"] != 1 || s.MissingValues["id"] != 0 {
		t.Errorf("missing = %v", s.MissingValues)
	}
	if s.DataTypes["when"] != models.KindDatetime || s.DataTypes["ok"] != models.KindBoolean {
		t.Errorf("types = %v", s.DataTypes)
	}
	if len(s.Preview) != PreviewRows {
		t.Fatalf("preview rows = %d", len(s.Preview))
	}
	first := s.Preview[0]
	if first["id"] != int64(1) || first["score"] != 1.5 || first["ok"] != true || first["when"] != "2024-01-01" {
		t.Errorf("first preview row = %v", first)
	}
	if s.Preview[1]["score"] != nil {
		t.Errorf("missing cell should be nil, got %v", s.Preview[1]["score"])
	}
}

func TestSummarize_LargeIntegers(t *testing.T) {
	content := "id\n9007199254740993\n9223372036854775807\n-9223372036854775808\n"
	ds, err := NewParser(0).Parse("big.csv", []byte(content), FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Columns[0].Kind != models.KindInteger {
		t.Fatalf("kind = %s", ds.Columns[0].Kind)
	}
	s := Summarize(ds)
	want := []int64{9007199254740993, math.MaxInt64, math.MinInt64}
	for i, w := range want {
		if got := s.Preview[i]["id"]; got != w {
			t.Errorf("preview[%d] = %v, want %d", i, got, w)
		}
	}
}
