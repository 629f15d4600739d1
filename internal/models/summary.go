package models

// Summary is the structural overview returned after an upload.
type Summary struct {
	Columns       []string                 `json:"columns"`
	Shape         [2]int                   `json:"shape"`
	MissingValues map[string]int           `json:"missing_values"`
	DataTypes     map[string]ColumnKind    `json:"data_types"`
	Preview       []map[string]interface{} `json:"preview"`
}
