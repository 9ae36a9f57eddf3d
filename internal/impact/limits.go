package impact

import "probecov/internal/probes"

// DataCompleteness describes how much per-test attribution the exec data carries
type DataCompleteness string

const (
	DataFull    DataCompleteness = "full"    // Every record names its test
	DataPartial DataCompleteness = "partial" // Some records name their test
	DataNone    DataCompleteness = "none"    // No record names its test
)

// AnalysisLimits describes the limitations of the impact analysis
type AnalysisLimits struct {
	PerTestData DataCompleteness `json:"perTestData"`
	Notes       []string         `json:"notes,omitempty"`
}

// NewAnalysisLimits creates a new AnalysisLimits with default values
func NewAnalysisLimits() *AnalysisLimits {
	return &AnalysisLimits{
		PerTestData: DataNone,
		Notes:       make([]string, 0),
	}
}

// AddNote adds a limitation note to the analysis
func (al *AnalysisLimits) AddNote(note string) {
	al.Notes = append(al.Notes, note)
}

// HasLimitations returns true if there are any limitations
func (al *AnalysisLimits) HasLimitations() bool {
	return al.PerTestData != DataFull || len(al.Notes) > 0
}

// DeterminePerTestData checks how many records can be attributed to a test
func DeterminePerTestData(records []probes.ExecClassData) DataCompleteness {
	named := 0
	for _, r := range records {
		if r.Test() != "" {
			named++
		}
	}

	switch {
	case len(records) > 0 && named == len(records):
		return DataFull
	case named > 0:
		return DataPartial
	default:
		return DataNone
	}
}
