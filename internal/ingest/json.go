package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// orderedObject is a JSON object that remembers key order.
type orderedObject struct {
	keys   []string
	values map[string]interface{}
}

// readJSON accepts three layouts: an array of records, an object of column arrays,
// and an object of column objects keyed by row label. A bare array of scalars is a
// single column named "0".
func readJSON(content []byte) ([]string, [][]string, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("parse JSON: %w", err)
	}
	switch t := v.(type) {
	case []interface{}:
		return recordsTable(t)
	case *orderedObject:
		return columnsTable(t)
	default:
		return nil, nil, fmt.Errorf("parse JSON: top-level value must be an array or object")
	}
}

func recordsTable(items []interface{}) ([]string, [][]string, error) {
	if len(items) == 0 {
		return nil, nil, nil
	}
	if _, ok := items[0].(*orderedObject); !ok {
		rows := make([][]string, len(items))
		for i, it := range items {
			rows[i] = []string{cellText(it)}
		}
		return []string{"0"}, rows, nil
	}
	var header []string
	index := map[string]int{}
	for _, it := range items {
		obj, ok := it.(*orderedObject)
		if !ok {
			return nil, nil, fmt.Errorf("parse JSON: mixed records and scalars")
		}
		for _, k := range obj.keys {
			if _, seen := index[k]; !seen {
				index[k] = len(header)
				header = append(header, k)
			}
		}
	}
	rows := make([][]string, len(items))
	for i, it := range items {
		obj := it.(*orderedObject)
		row := make([]string, len(header))
		for _, k := range obj.keys {
			row[index[k]] = cellText(obj.values[k])
		}
		rows[i] = row
	}
	return header, rows, nil
}

func columnsTable(obj *orderedObject) ([]string, [][]string, error) {
	header := obj.keys
	// Row labels in first-seen order across all columns.
	var labels []string
	labelIndex := map[string]int{}
	maxLen := 0
	for _, k := range header {
		switch col := obj.values[k].(type) {
		case []interface{}:
			if len(col) > maxLen {
				maxLen = len(col)
			}
		case *orderedObject:
			for _, l := range col.keys {
				if _, seen := labelIndex[l]; !seen {
					labelIndex[l] = len(labels)
					labels = append(labels, l)
				}
			}
		default:
			return nil, nil, fmt.Errorf("parse JSON: column %q is not an array or object", k)
		}
	}
	n := maxLen
	if len(labels) > n {
		n = len(labels)
	}
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = make([]string, len(header))
	}
	for j, k := range header {
		switch col := obj.values[k].(type) {
		case []interface{}:
			for i, v := range col {
				rows[i][j] = cellText(v)
			}
		case *orderedObject:
			for _, l := range col.keys {
				rows[labelIndex[l]][j] = cellText(col.values[l])
			}
		}
	}
	return header, rows, nil
}

// cellText renders a decoded JSON value as cell text. null becomes the empty (missing) cell.
func cellText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(plain(t))
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func plain(v interface{}) interface{} {
	switch t := v.(type) {
	case *orderedObject:
		m := make(map[string]interface{}, len(t.keys))
		for _, k := range t.keys {
			m[k] = plain(t.values[k])
		}
		return m
	case []interface{}:
		out := make([]interface{}, len(t))
		for i := range t {
			out[i] = plain(t[i])
		}
		return out
	default:
		return t
	}
}

func decodeValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '[':
		var arr []interface{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		if arr == nil {
			arr = []interface{}{}
		}
		return arr, nil
	case '{':
		obj := &orderedObject{values: map[string]interface{}{}}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := kt.(string)
			if !ok {
				return nil, fmt.Errorf("object key is not a string")
			}
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			if _, dup := obj.values[key]; !dup {
				obj.keys = append(obj.keys, key)
			}
			obj.values[key] = v
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}
