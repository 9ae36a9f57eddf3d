package impact

import (
	"probecov/internal/calc"
	"probecov/internal/model"
)

// RiskKind tells why a method is a risk
type RiskKind string

const (
	RiskNew      RiskKind = "new"
	RiskModified RiskKind = "modified"
)

// Risks holds the methods of a target build that changed since the baseline
type Risks struct {
	New      []model.Method `json:"new"`
	Modified []model.Method `json:"modified"`
}

// Len returns the number of risk methods
func (r Risks) Len() int {
	return len(r.New) + len(r.Modified)
}

// RiskItem is one risk method annotated with its coverage
type RiskItem struct {
	Method  model.Method `json:"method"`
	Kind    RiskKind     `json:"kind"`
	Count   calc.Count   `json:"count"`
	Covered bool         `json:"covered"`
	Score   *RiskScore   `json:"score,omitempty"`
}

// Probed reports whether the method has probes at all. Abstract and native
// methods have none and are never reported as uncovered.
func (r RiskItem) Probed() bool {
	return !r.Count.IsEmpty()
}

// RiskSummary aggregates a list of risk items
type RiskSummary struct {
	Total     int        `json:"total"`
	New       int        `json:"new"`
	Modified  int        `json:"modified"`
	Uncovered int        `json:"uncovered"`
	High      int        `json:"high"`
	Coverage  calc.Count `json:"coverage"`
}
