package output

import "probecov/internal/calc"

// RowKind is the aggregation level of a report row
type RowKind string

const (
	RowBundle  RowKind = "bundle"
	RowPackage RowKind = "package"
	RowClass   RowKind = "class"
	RowMethod  RowKind = "method"
)

// Row is one counter of a bundle report
type Row struct {
	Kind     RowKind        `json:"kind"`
	Name     string         `json:"name"`
	Parent   string         `json:"parent,omitempty"`
	Covered  int64          `json:"covered"`
	Total    int64          `json:"total"`
	Percent  float64        `json:"percent"`
	Arrow    calc.ArrowType `json:"arrow,omitempty"`
	Previous *calc.Count    `json:"previous,omitempty"`
}

// Warning is a report warning
type Warning struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Subject  string `json:"subject,omitempty"`
	Text     string `json:"text"`
}
