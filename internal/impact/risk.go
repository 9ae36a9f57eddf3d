package impact

import (
	"fmt"
	"math"
)

// RiskLevel represents the risk level of a change
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// RiskScore contains the calculated risk assessment
type RiskScore struct {
	Level       RiskLevel    `json:"level"`       // Overall risk level
	Score       float64      `json:"score"`       // Numeric score (0.0 - 1.0)
	Factors     []RiskFactor `json:"factors"`     // Contributing factors
	Explanation string       `json:"explanation"` // Human-readable explanation
}

// RiskFactor represents a single contributing factor to risk
type RiskFactor struct {
	Name   string  `json:"name"`   // Factor name
	Weight float64 `json:"weight"` // Weight in the overall calculation
	Value  float64 `json:"value"`  // Normalized value (0.0 - 1.0)
}

// Weights configures the risk score
type Weights struct {
	CoverageGap     float64 `json:"coverageGap" mapstructure:"coverageGap"`
	ChangeKind      float64 `json:"changeKind" mapstructure:"changeKind"`
	MethodSize      float64 `json:"methodSize" mapstructure:"methodSize"`
	HighThreshold   float64 `json:"highThreshold" mapstructure:"highThreshold"`
	MediumThreshold float64 `json:"mediumThreshold" mapstructure:"mediumThreshold"`
}

// DefaultWeights returns the default factor weights and level thresholds
func DefaultWeights() Weights {
	return Weights{
		CoverageGap:     0.5,
		ChangeKind:      0.3,
		MethodSize:      0.2,
		HighThreshold:   0.7,
		MediumThreshold: 0.4,
	}
}

// ComputeRiskScore calculates risk based on multiple factors:
// - Coverage gap (unexecuted share of the method's probes)
// - Change kind (modified vs new)
// - Method size (probe count)
func ComputeRiskScore(item *RiskItem, w Weights) *RiskScore {
	factors := []RiskFactor{
		{Name: "coverage-gap", Weight: w.CoverageGap, Value: calculateCoverageGap(item)},
		{Name: "change-kind", Weight: w.ChangeKind, Value: calculateChangeKindRisk(item.Kind)},
		{Name: "method-size", Weight: w.MethodSize, Value: calculateSizeRisk(item.Count.Total)},
	}

	totalScore := 0.0
	for _, factor := range factors {
		totalScore += factor.Weight * factor.Value
	}
	if totalScore > 1.0 {
		totalScore = 1.0
	}

	level := determineRiskLevel(totalScore, w)

	return &RiskScore{
		Level:       level,
		Score:       totalScore,
		Factors:     factors,
		Explanation: generateExplanation(level, item),
	}
}

// calculateCoverageGap returns the unexecuted share of the method.
// Methods without probes have nothing left to execute.
func calculateCoverageGap(item *RiskItem) float64 {
	if item.Count.Total == 0 {
		return 0.0
	}
	return 1.0 - float64(item.Count.Covered)/float64(item.Count.Total)
}

// calculateChangeKindRisk rates modified code above new code: existing callers
// rely on its old behavior.
func calculateChangeKindRisk(kind RiskKind) float64 {
	switch kind {
	case RiskModified:
		return 0.9
	case RiskNew:
		return 0.6
	default:
		return 0.0
	}
}

// calculateSizeRisk uses a logarithmic scale for probe count
// 0 probes = 0.0, 9 probes = 0.5, 100+ probes = 1.0
func calculateSizeRisk(probes int64) float64 {
	if probes <= 0 {
		return 0.0
	}
	score := math.Log10(float64(probes)+1) / math.Log10(101)
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// determineRiskLevel converts numeric score to risk level
func determineRiskLevel(score float64, w Weights) RiskLevel {
	if score >= w.HighThreshold {
		return RiskHigh
	}
	if score >= w.MediumThreshold {
		return RiskMedium
	}
	return RiskLow
}

// generateExplanation creates a human-readable explanation
func generateExplanation(level RiskLevel, item *RiskItem) string {
	switch level {
	case RiskHigh:
		return fmt.Sprintf("High risk: %s method with %s probes covered. Add or run tests before release.", item.Kind, item.Count)
	case RiskMedium:
		return fmt.Sprintf("Medium risk: %s method with %s probes covered. Parts of the change are untested.", item.Kind, item.Count)
	case RiskLow:
		return fmt.Sprintf("Low risk: %s method with %s probes covered.", item.Kind, item.Count)
	default:
		return "Unknown risk level."
	}
}
