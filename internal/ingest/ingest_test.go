package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/hyperjump/autoeval/internal/models"
	"github.com/xuri/excelize/v2"
)

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"data.csv", FormatCSV, false},
		{"DATA.CSV", FormatCSV, false},
		{"sheet.xlsx", FormatExcel, false},
		{"macro.xlsm", FormatExcel, false},
		{"legacy.xls", "", true},
		{"records.json", FormatJSON, false},
		{"notes.txt", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFromFilename(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatFromFilename(%q) error = %v", tt.name, err)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("FormatFromFilename(%q) error should wrap ErrUnsupportedFormat", tt.name)
		}
		if got != tt.want {
			t.Errorf("FormatFromFilename(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestParse_CSV(t *testing.T) {
	content := "age,income,city\n25,50000,Oslo\n30,60000,Bergen\n35,,Oslo\n40,80000.5,\n"
	ds, err := NewParser(0).Parse("people.csv", []byte(content), FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Rows() != 4 || ds.Width() != 3 {
		t.Fatalf("shape = %dx%d", ds.Rows(), ds.Width())
	}
	if ds.Columns[0].Kind != models.KindInteger {
		t.Errorf("age kind = %s", ds.Columns[0].Kind)
	}
	if ds.Columns[1].Kind != models.KindFloat {
		t.Errorf("income kind = %s", ds.Columns[1].Kind)
	}
	if ds.Columns[2].Kind != models.KindText {
		t.Errorf("city kind = %s", ds.Columns[2].Kind)
	}
	if !ds.Columns[1].Missing[2] || ds.Columns[1].MissingCount() != 1 {
		t.Errorf("income missing = %v", ds.Columns[1].Missing)
	}
	if ds.Columns[1].Numbers[3] != 80000.5 {
		t.Errorf("income[3] = %v", ds.Columns[1].Numbers[3])
	}
	if ds.Name != "people.csv" || ds.Format != FormatCSV {
		t.Errorf("name=%q format=%q", ds.Name, ds.Format)
	}
}

func TestParse_CSVSemicolonAndBOM(t *testing.T) {
	content := "\xEF\xBB\xBFa;b\n1;x\n2;y\n"
	ds, err := NewParser(0).Parse("x.csv", []byte(content), FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Width() != 2 || ds.Columns[0].Name != "a" {
		t.Errorf("columns = %v", ds.ColumnNames())
	}
}

func TestParse_InfIsMissing(t *testing.T) {
	content := "x,y\n1,2\ninf,3\n"
	ds, err := NewParser(0).Parse("x.csv", []byte(content), FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Columns[0].Kind != models.KindFloat {
		t.Fatalf("kind = %s", ds.Columns[0].Kind)
	}
	if !ds.Columns[0].Missing[1] {
		t.Error("inf should be treated as missing")
	}
}

func TestParse_EmptyAndTooLarge(t *testing.T) {
	p := NewParser(2)
	if _, err := p.Parse("e.csv", nil, FormatCSV); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("empty: got %v", err)
	}
	if _, err := p.Parse("big.csv", []byte("a\n1\n2\n3\n"), FormatCSV); !errors.Is(err, ErrTooLarge) {
		t.Errorf("too large: got %v", err)
	}
	if _, err := p.Parse("x.bin", []byte("a\n1\n"), "parquet"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("format: got %v", err)
	}
}

func TestParse_JSONRecords(t *testing.T) {
	content := `[{"b": 1, "a": "x"}, {"a": "y", "b": null, "c": true}]`
	ds, err := NewParser(0).Parse("r.json", []byte(content), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	names := ds.ColumnNames()
	if len(names) != 3 || names[0] != "b" || names[1] != "a" || names[2] != "c" {
		t.Fatalf("columns = %v", names)
	}
	if ds.Columns[0].Kind != models.KindInteger || !ds.Columns[0].Missing[1] {
		t.Errorf("b: kind=%s missing=%v", ds.Columns[0].Kind, ds.Columns[0].Missing)
	}
	if ds.Columns[2].Kind != models.KindBoolean || !ds.Columns[2].Missing[0] {
		t.Errorf("c: kind=%s missing=%v", ds.Columns[2].Kind, ds.Columns[2].Missing)
	}
}

func TestParse_JSONColumns(t *testing.T) {
	content := `{"x": {"0": 1.5, "1": 2.5}, "y": [10, 20]}`
	ds, err := NewParser(0).Parse("c.json", []byte(content), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Rows() != 2 || ds.Width() != 2 {
		t.Fatalf("shape = %dx%d", ds.Rows(), ds.Width())
	}
	if ds.Columns[0].Numbers[1] != 2.5 || ds.Columns[1].Numbers[1] != 20 {
		t.Errorf("values: %v %v", ds.Columns[0].Numbers, ds.Columns[1].Numbers)
	}
}

func TestParse_JSONInvalid(t *testing.T) {
	if _, err := NewParser(0).Parse("bad.json", []byte(`{"a": [1,`), FormatJSON); err == nil {
		t.Error("expected error for truncated JSON")
	}
	if _, err := NewParser(0).Parse("scalar.json", []byte(`42`), FormatJSON); err == nil {
		t.Error("expected error for scalar JSON")
	}
}

func TestParse_Excel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetRow(sheet, "A1", &[]interface{}{"x", "label"})
	_ = f.SetSheetRow(sheet, "A2", &[]interface{}{1, "a"})
	_ = f.SetSheetRow(sheet, "A3", &[]interface{}{2, "b"})
	_ = f.SetSheetRow(sheet, "A4", &[]interface{}{3, "c"})
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	ds, err := NewParser(0).Parse("s.xlsx", buf.Bytes(), FormatExcel)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Rows() != 3 || ds.Width() != 2 {
		t.Fatalf("shape = %dx%d", ds.Rows(), ds.Width())
	}
	if ds.Columns[0].Kind != models.KindInteger || ds.Columns[0].Numbers[2] != 3 {
		t.Errorf("x: kind=%s values=%v", ds.Columns[0].Kind, ds.Columns[0].Numbers)
	}
}

func TestParse_ExcelFormattedCells(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetRow(sheet, "A1", &[]interface{}{"revenue", "price", "when", "paid"})
	revenue := []float64{1234.5, 2500, 3999.25}
	for i, v := range revenue {
		row := i + 2
		_ = f.SetCellValue(sheet, cell(t, 1, row), v)
		_ = f.SetCellValue(sheet, cell(t, 2, row), (i+1)*10)
		_ = f.SetCellValue(sheet, cell(t, 3, row), time.Date(2024, 1, 15+i, 0, 0, 0, 0, time.UTC))
		_ = f.SetCellValue(sheet, cell(t, 4, row), i != 1)
	}
	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		t.Fatal(err)
	}
	currency := "$#,##0"
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &currency})
	if err != nil {
		t.Fatal(err)
	}
	date, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		t.Fatal(err)
	}
	_ = f.SetCellStyle(sheet, "A2", "A4", thousands)
	_ = f.SetCellStyle(sheet, "B2", "B4", money)
	_ = f.SetCellStyle(sheet, "C2", "C4", date)
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	ds, err := NewParser(0).Parse("styled.xlsx", buf.Bytes(), FormatExcel)
	if err != nil {
		t.Fatal(err)
	}
	if c := ds.Columns[0]; c.Kind != models.KindFloat || !reflect.DeepEqual(c.Numbers, revenue) {
		t.Errorf("revenue: kind=%s cells=%q numbers=%v", c.Kind, c.Cells, c.Numbers)
	}
	if c := ds.Columns[1]; c.Kind != models.KindInteger || c.Numbers[2] != 30 {
		t.Errorf("price: kind=%s cells=%q", c.Kind, c.Cells)
	}
	if c := ds.Columns[2]; c.Kind != models.KindDatetime || c.Cells[0] != "2024-01-15" {
		t.Errorf("when: kind=%s cells=%q", c.Kind, c.Cells)
	}
	if c := ds.Columns[3]; c.Kind != models.KindBoolean || !reflect.DeepEqual(c.Cells, []string{"TRUE", "FALSE", "TRUE"}) {
		t.Errorf("paid: kind=%s cells=%q", c.Kind, c.Cells)
	}
}

func cell(t *testing.T, col, row int) string {
	t.Helper()
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		t.Fatal(err)
	}
	return name
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"yyyy-mm-dd", true},
		{"d-mmm-yy", true},
		{"hh:mm:ss", true},
		{"[h]:mm", true},
		{"[$-409]mmmm d, yyyy", true},
		{"$#,##0", false},
		{"#,##0.00", false},
		{`0.0 "days"`, false},
		{"[Red]#,##0", false},
		{"General", false},
	}
	for _, tt := range tests {
		if got := isDateFormatCode(tt.code); got != tt.want {
			t.Errorf("isDateFormatCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "d.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0600); err != nil {
		t.Fatal(err)
	}
	ds, err := NewParser(0).ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Name != "d.csv" || ds.Rows() != 1 {
		t.Errorf("name=%q rows=%d", ds.Name, ds.Rows())
	}
	if _, err := NewParser(0).ParseFile(filepath.Join(dir, "d.txt")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestUniqueHeaders(t *testing.T) {
	got := uniqueHeaders([]string{"a", "", "a", " b ", "a"})
	want := []string{"a", "Unnamed: 1", "a.1", "b", "a.2"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("uniqueHeaders[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
