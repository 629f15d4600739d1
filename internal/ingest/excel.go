package ingest

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readExcel reads the first sheet; its first row is the header.
// Numeric cells are read as stored, not as displayed, so "#,##0.00" or currency formats
// still parse as numbers. Date-formatted serials are rendered as ISO dates.
func readExcel(content []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, nil
	}
	sheet := sheets[0]
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
	}
	if len(raw) == 0 {
		return nil, nil, nil
	}
	shown, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
	}

	dates := newDateStyles(f, sheet)
	var data [][]string
	for i := 1; i < len(raw); i++ {
		row := raw[i]
		if isBlankRecord(row) {
			continue
		}
		for j, cell := range row {
			serial, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				continue
			}
			if disp := displayed(shown, i, j); disp == "TRUE" || disp == "FALSE" {
				row[j] = disp
				continue
			}
			if dates.isDate(j+1, i+1) {
				if s, ok := dates.format(serial); ok {
					row[j] = s
				}
			}
		}
		data = append(data, row)
	}
	return raw[0], data, nil
}

func displayed(rows [][]string, i, j int) string {
	if i < len(rows) && j < len(rows[i]) {
		return rows[i][j]
	}
	return ""
}

// dateStyles answers whether a cell's number format is a date or time, cached per style id.
type dateStyles struct {
	f       *excelize.File
	sheet   string
	use1904 bool
	byStyle map[int]bool
}

func newDateStyles(f *excelize.File, sheet string) *dateStyles {
	d := &dateStyles{f: f, sheet: sheet, byStyle: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.use1904 = *props.Date1904
	}
	return d
}

func (d *dateStyles) isDate(col, row int) bool {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false
	}
	id, err := d.f.GetCellStyle(d.sheet, cell)
	if err != nil || id == 0 {
		return false
	}
	if v, ok := d.byStyle[id]; ok {
		return v
	}
	v := false
	if style, err := d.f.GetStyle(id); err == nil && style != nil {
		v = isDateNumFmt(style.NumFmt)
		if style.CustomNumFmt != nil {
			v = isDateFormatCode(*style.CustomNumFmt)
		}
	}
	d.byStyle[id] = v
	return v
}

func (d *dateStyles) format(serial float64) (string, bool) {
	t, err := excelize.ExcelDateToTime(serial, d.use1904)
	if err != nil {
		return "", false
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02"), true
	}
	return t.Format("2006-01-02 15:04:05"), true
}

// isDateNumFmt reports whether a built-in number format id is a date or time format.
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22, id >= 27 && id <= 36, id >= 45 && id <= 47, id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom format code contains date or time tokens
// outside quoted literals, escapes and bracketed sections like [Red] or [$-409].
func isDateFormatCode(code string) bool {
	code = strings.ToLower(code)
	if strings.Contains(code, "[h") || strings.Contains(code, "[m") || strings.Contains(code, "[s") {
		return true
	}
	var b strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case inQuote:
			inQuote = c != '"'
		case inBracket:
			inBracket = c != ']'
		case c == '"':
			inQuote = true
		case c == '[':
			inBracket = true
		case c == '\\' || c == '_' || c == '*':
			i++
		default:
			b.WriteByte(c)
		}
	}
	stripped := b.String()
	if stripped == "general" {
		return false
	}
	return strings.ContainsAny(stripped, "ydhs")
}
