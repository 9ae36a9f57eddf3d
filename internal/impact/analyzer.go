package impact

import (
	"context"
	"fmt"

	"probecov/internal/bundle"
	"probecov/internal/diff"
	"probecov/internal/model"
	"probecov/internal/probes"
)

// Analyzer runs the diff, aggregation and risk steps for one target build
type Analyzer struct {
	aggregator *bundle.Aggregator
	differ     *diff.Differ
	weights    Weights
}

// NewAnalyzer creates an analyzer from its collaborators
func NewAnalyzer(aggregator *bundle.Aggregator, differ *diff.Differ, weights Weights) *Analyzer {
	return &Analyzer{
		aggregator: aggregator,
		differ:     differ,
		weights:    weights,
	}
}

// Input is the data of one analysis. Baseline may be nil for a first build.
type Input struct {
	Baseline *model.PackageTree
	Target   *model.PackageTree
	Exec     []probes.ExecClassData
}

// AnalysisResult contains the complete results of an impact analysis
type AnalysisResult struct {
	Diff           *diff.Result          `json:"diff"`
	Bundle         *bundle.BundleCounter `json:"bundle"`
	Risks          []RiskItem            `json:"risks"`
	Summary        RiskSummary           `json:"summary"`
	Associations   *Associations         `json:"-"`
	Tests          []MethodTestsEntry    `json:"tests,omitempty"`
	Recommendation *Recommendation       `json:"recommendation,omitempty"`
	Limits         *AnalysisLimits       `json:"limits"`
}

// Analyze diffs the builds, aggregates the exec data against the target and
// annotates every new or modified method.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (*AnalysisResult, error) {
	if in.Target == nil {
		return nil, fmt.Errorf("target model cannot be nil")
	}

	result := &AnalysisResult{Limits: NewAnalysisLimits()}

	var baseline []model.Method
	if in.Baseline != nil {
		baseline = in.Baseline.Methods()
	} else {
		result.Limits.AddNote("No baseline build; every method is reported as new")
	}
	result.Diff = a.differ.Diff(baseline, in.Target.Methods())
	for _, w := range result.Diff.Warnings {
		result.Limits.AddNote(w.String())
	}

	b, err := a.aggregator.Bundle(ctx, in.Exec, in.Target)
	if err != nil {
		return nil, err
	}
	result.Bundle = b
	for _, w := range b.Warnings {
		result.Limits.AddNote(w.String())
	}

	result.Risks = Annotate(RisksFrom(result.Diff), b, a.weights)
	result.Summary = Summarize(result.Risks)

	result.Limits.PerTestData = DeterminePerTestData(in.Exec)
	switch result.Limits.PerTestData {
	case DataNone:
		result.Limits.AddNote("Exec data carries no test names; test recommendations unavailable")
		return result, nil
	case DataPartial:
		result.Limits.AddNote("Some exec records carry no test name; they are grouped under an unnamed test")
	}

	perTest, err := a.aggregator.BundleByTest(ctx, in.Exec, in.Target)
	if err != nil {
		return nil, err
	}
	result.Associations = Associate(perTest)
	result.Tests = result.Associations.Entries()
	result.Recommendation = RecommendTests(result.Associations, result.Risks)
	if n := len(result.Recommendation.Unreachable); n > 0 {
		result.Limits.AddNote(fmt.Sprintf("%d risk method(s) are not exercised by any test", n))
	}

	return result, nil
}
