package main

import (
	"probecov/internal/baseline"
	"probecov/internal/bundle"
	"probecov/internal/calc"
	"probecov/internal/diff"
	"probecov/internal/impact"
	"probecov/internal/model"
	"probecov/internal/output"
	"probecov/internal/probes"
	"probecov/internal/storage"
)

// BundleResponseCLI is the output of the bundle command
type BundleResponseCLI struct {
	Build        string           `json:"build,omitempty"`
	Name         string           `json:"name"`
	Count        calc.Count       `json:"count"`
	Percent      float64          `json:"percent"`
	MethodCount  calc.Count       `json:"methodCount"`
	ClassCount   calc.Count       `json:"classCount"`
	PackageCount calc.Count       `json:"packageCount"`
	Rows         []output.Row     `json:"rows"`
	Warnings     []output.Warning `json:"warnings,omitempty"`
	Verified     bool             `json:"verified,omitempty"`
	BundleID     string           `json:"bundleId,omitempty"`
	ComparedTo   string           `json:"comparedTo,omitempty"`
}

func convertBundle(b, prev *bundle.BundleCounter, depth output.Depth) *BundleResponseCLI {
	return &BundleResponseCLI{
		Name:         b.Name,
		Count:        b.Count,
		Percent:      output.RoundFloat(b.Count.Percentage()),
		MethodCount:  b.MethodCount,
		ClassCount:   b.ClassCount,
		PackageCount: b.PackageCount,
		Rows:         output.Rows(b, prev, depth),
		Warnings:     output.Warnings(b.Warnings),
	}
}

// RenamedCLI is a match whose baseline and target identities differ
type RenamedCLI struct {
	Baseline string       `json:"baseline"`
	Target   string       `json:"target"`
	Verdict  diff.Verdict `json:"verdict"`
}

// DiffResponseCLI is the output of the diff command
type DiffResponseCLI struct {
	BaselineID string                 `json:"baselineId"`
	TargetID   string                 `json:"targetId"`
	Stats      diff.Stats             `json:"stats"`
	New        []string               `json:"new"`
	Modified   []string               `json:"modified"`
	Deleted    []string               `json:"deleted"`
	Unaffected []string               `json:"unaffected,omitempty"`
	Renamed    []RenamedCLI           `json:"renamed,omitempty"`
	Warnings   []output.Warning       `json:"warnings,omitempty"`
	Validation *diff.ValidationResult `json:"validation,omitempty"`
}

func convertDiff(r *diff.Result, includeUnaffected bool) *DiffResponseCLI {
	resp := &DiffResponseCLI{
		BaselineID: r.BaselineID,
		TargetID:   r.TargetID,
		Stats:      r.Stats(),
		New:        methodKeys(r.New),
		Modified:   methodKeys(r.Modified),
		Deleted:    methodKeys(r.Deleted),
		Warnings:   output.Warnings(r.Warnings),
	}
	if includeUnaffected {
		resp.Unaffected = methodKeys(r.Unaffected)
	}
	for _, m := range r.Matches {
		if m.Baseline.Key() != m.Target.Key() {
			resp.Renamed = append(resp.Renamed, RenamedCLI{
				Baseline: m.Baseline.Key().String(),
				Target:   m.Target.Key().String(),
				Verdict:  m.Verdict,
			})
		}
	}
	return resp
}

func methodKeys(methods []model.Method) []string {
	out := make([]string, 0, len(methods))
	for _, m := range methods {
		out = append(out, m.Key().String())
	}
	return out
}

// RiskCLI is one risk method
type RiskCLI struct {
	Method      string           `json:"method"`
	Kind        impact.RiskKind  `json:"kind"`
	Count       calc.Count       `json:"count"`
	Percent     float64          `json:"percent"`
	Level       impact.RiskLevel `json:"level,omitempty"`
	Score       float64          `json:"score"`
	Explanation string           `json:"explanation,omitempty"`
	Tests       []string         `json:"tests,omitempty"`
}

// RisksResponseCLI is the output of the risks command
type RisksResponseCLI struct {
	BaselineID string                 `json:"baselineId,omitempty"`
	TargetID   string                 `json:"targetId"`
	Summary    impact.RiskSummary     `json:"summary"`
	Risks      []RiskCLI              `json:"risks"`
	Limits     *impact.AnalysisLimits `json:"limits,omitempty"`
}

func convertRisks(res *impact.AnalysisResult) *RisksResponseCLI {
	resp := &RisksResponseCLI{
		BaselineID: res.Diff.BaselineID,
		TargetID:   res.Diff.TargetID,
		Summary:    res.Summary,
		Risks:      make([]RiskCLI, 0, len(res.Risks)),
		Limits:     res.Limits,
	}
	for _, item := range res.Risks {
		r := RiskCLI{
			Method:  item.Method.Key().String(),
			Kind:    item.Kind,
			Count:   item.Count,
			Percent: output.RoundFloat(item.Count.Percentage()),
		}
		if item.Score != nil {
			r.Level = item.Score.Level
			r.Score = output.RoundFloat(item.Score.Score)
			r.Explanation = item.Score.Explanation
		}
		if res.Associations != nil {
			r.Tests = res.Associations.TestsFor(item.Method.Key())
		}
		resp.Risks = append(resp.Risks, r)
	}
	return resp
}

// TestsResponseCLI is the output of the tests command
type TestsResponseCLI struct {
	TargetID    string                    `json:"targetId"`
	Tests       []impact.MethodTestsEntry `json:"tests"`
	Recommended []string                  `json:"recommended"`
	Covers      []string                  `json:"covers"`
	Unreachable []string                  `json:"unreachable"`
	Limits      *impact.AnalysisLimits    `json:"limits,omitempty"`
}

func convertTests(res *impact.AnalysisResult, riskOnly bool) *TestsResponseCLI {
	resp := &TestsResponseCLI{
		TargetID:    res.Diff.TargetID,
		Tests:       []impact.MethodTestsEntry{},
		Recommended: []string{},
		Covers:      []string{},
		Unreachable: []string{},
		Limits:      res.Limits,
	}
	if res.Recommendation != nil {
		resp.Recommended = res.Recommendation.Tests
		resp.Covers = keyStrings(res.Recommendation.Covered)
		resp.Unreachable = keyStrings(res.Recommendation.Unreachable)
	}

	risk := make(map[string]bool, len(res.Risks))
	for _, item := range res.Risks {
		risk[item.Method.Key().String()] = true
	}
	for _, entry := range res.Tests {
		if riskOnly && !risk[entry.Method] {
			continue
		}
		resp.Tests = append(resp.Tests, entry)
	}
	return resp
}

func keyStrings(keys []model.MethodKey) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.String())
	}
	return out
}

// ExecClassCLI is the coverage of one merged record
type ExecClassCLI struct {
	ClassName string     `json:"className"`
	Count     calc.Count `json:"count"`
}

// ExecResponseCLI is the output of the merge and intersect commands
type ExecResponseCLI struct {
	Operation string         `json:"operation"`
	Inputs    int            `json:"inputs"`
	Records   int            `json:"records"`
	Count     calc.Count     `json:"count"`
	Classes   []ExecClassCLI `json:"classes"`
	Output    string         `json:"output,omitempty"`
}

func convertExec(op string, inputs int, records []probes.ExecClassData) *ExecResponseCLI {
	resp := &ExecResponseCLI{
		Operation: op,
		Inputs:    inputs,
		Records:   len(records),
		Classes:   make([]ExecClassCLI, 0, len(records)),
	}
	for _, r := range records {
		c := r.Probes.Count()
		resp.Count = resp.Count.Add(c)
		resp.Classes = append(resp.Classes, ExecClassCLI{ClassName: r.ClassName, Count: c})
	}
	return resp
}

// ModelCheckResponseCLI is the output of the model check command
type ModelCheckResponseCLI struct {
	Path        string `json:"path"`
	Build       string `json:"build,omitempty"`
	Valid       bool   `json:"valid"`
	Error       string `json:"error,omitempty"`
	Packages    int    `json:"packages"`
	Classes     int    `json:"classes"`
	Methods     int    `json:"methods"`
	Lambdas     int    `json:"lambdas"`
	TotalProbes int64  `json:"totalProbes"`
	Inventory   string `json:"inventory"`
}

func convertModelCheck(path string, tree *model.PackageTree, validateErr error) *ModelCheckResponseCLI {
	methods := tree.Methods()
	resp := &ModelCheckResponseCLI{
		Path:        path,
		Build:       tree.Build,
		Valid:       validateErr == nil,
		Packages:    len(tree.Packages),
		Classes:     tree.ClassCount(),
		Methods:     len(methods),
		TotalProbes: tree.TotalCount,
		Inventory:   diff.NewHasher().InventoryID(methods),
	}
	if validateErr != nil {
		resp.Error = validateErr.Error()
	}
	for _, m := range methods {
		if m.IsLambda() {
			resp.Lambdas++
		}
	}
	return resp
}

// SnapshotListResponseCLI is the output of the snapshot commands
type SnapshotListResponseCLI struct {
	Group     string                 `json:"group"`
	Snapshots []storage.SnapshotInfo `json:"snapshots"`
}

// BaselineResponseCLI is the output of the baseline commands
type BaselineResponseCLI struct {
	File      string           `json:"file"`
	Replaced  bool             `json:"replaced,omitempty"`
	Baselines []baseline.Entry `json:"baselines"`
}
