package main

import (
	"fmt"
	"strings"

	"probecov/internal/calc"
	"probecov/internal/impact"
	"probecov/internal/output"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as deterministic indented JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := output.DeterministicEncodeIndented(resp, "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *BundleResponseCLI:
		return formatBundleHuman(v), nil
	case *DiffResponseCLI:
		return formatDiffHuman(v), nil
	case *RisksResponseCLI:
		return formatRisksHuman(v), nil
	case *TestsResponseCLI:
		return formatTestsHuman(v), nil
	case *ExecResponseCLI:
		return formatExecHuman(v), nil
	case *ModelCheckResponseCLI:
		return formatModelCheckHuman(v), nil
	case *SnapshotListResponseCLI:
		return formatSnapshotsHuman(v), nil
	case *BaselineResponseCLI:
		return formatBaselineHuman(v), nil
	case *ConfigResponseCLI:
		return formatConfigHuman(v), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func countCell(c calc.Count) string {
	return fmt.Sprintf("%s (%s)", c.String(), output.FormatPercent(c.Percentage()))
}

func arrowMark(a calc.ArrowType) string {
	switch a {
	case calc.ArrowIncrease:
		return " ↑"
	case calc.ArrowDecrease:
		return " ↓"
	default:
		return ""
	}
}

func formatBundleHuman(resp *BundleResponseCLI) string {
	var b strings.Builder

	title := "Coverage"
	if resp.Name != "" {
		title += " of " + resp.Name
	}
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Probes:   %s\n", countCell(resp.Count)))
	b.WriteString(fmt.Sprintf("Methods:  %s\n", countCell(resp.MethodCount)))
	b.WriteString(fmt.Sprintf("Classes:  %s\n", countCell(resp.ClassCount)))
	b.WriteString(fmt.Sprintf("Packages: %s\n", countCell(resp.PackageCount)))
	if resp.Verified {
		b.WriteString("Additivity verified\n")
	}
	if resp.BundleID != "" {
		b.WriteString(fmt.Sprintf("Stored as %s\n", resp.BundleID))
	}

	if len(resp.Rows) > 1 {
		b.WriteString("\n")
		for _, row := range resp.Rows[1:] {
			indent := "  "
			switch row.Kind {
			case output.RowClass:
				indent = "    "
			case output.RowMethod:
				indent = "      "
			}
			name := row.Name
			if row.Kind == output.RowMethod {
				name = strings.TrimPrefix(name, row.Parent+".")
			}
			b.WriteString(fmt.Sprintf("%s%-40s %6s  %d/%d%s\n",
				indent, name, output.FormatPercent(row.Percent), row.Covered, row.Total, arrowMark(row.Arrow)))
		}
	}

	writeWarnings(&b, resp.Warnings)
	return b.String()
}

func formatDiffHuman(resp *DiffResponseCLI) string {
	var b strings.Builder

	b.WriteString("Method Diff\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	if resp.BaselineID != "" {
		b.WriteString(fmt.Sprintf("Baseline: %s\n", shortID(resp.BaselineID)))
	}
	b.WriteString(fmt.Sprintf("Target:   %s\n\n", shortID(resp.TargetID)))
	b.WriteString(fmt.Sprintf("New: %d  Modified: %d  Unaffected: %d  Deleted: %d\n",
		resp.Stats.New, resp.Stats.Modified, resp.Stats.Unaffected, resp.Stats.Deleted))

	writeList(&b, "New", "+", resp.New)
	writeList(&b, "Modified", "~", resp.Modified)
	writeList(&b, "Deleted", "-", resp.Deleted)
	if len(resp.Renamed) > 0 {
		b.WriteString("\nRenumbered:\n")
		for _, r := range resp.Renamed {
			b.WriteString(fmt.Sprintf("  %s -> %s (%s)\n", r.Baseline, r.Target, r.Verdict))
		}
	}
	if resp.Validation != nil {
		if resp.Validation.Valid {
			b.WriteString("\nPartition valid\n")
		} else {
			b.WriteString("\nPartition INVALID:\n")
			for _, e := range resp.Validation.Errors {
				b.WriteString("  " + e.Error() + "\n")
			}
		}
	}

	writeWarnings(&b, resp.Warnings)
	return b.String()
}

func formatRisksHuman(resp *RisksResponseCLI) string {
	var b strings.Builder

	b.WriteString("Risk Methods\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	s := resp.Summary
	b.WriteString(fmt.Sprintf("Total: %d (new %d, modified %d)  Uncovered: %d  High: %d\n",
		s.Total, s.New, s.Modified, s.Uncovered, s.High))
	b.WriteString(fmt.Sprintf("Risk coverage: %s\n", countCell(s.Coverage)))

	if len(resp.Risks) > 0 {
		b.WriteString("\n")
		for _, r := range resp.Risks {
			b.WriteString(fmt.Sprintf("  %s %-8s %-6s %s\n", riskEmoji(r.Level), r.Kind, output.FormatPercent(r.Percent), r.Method))
			if len(r.Tests) > 0 {
				b.WriteString(fmt.Sprintf("      tests: %s\n", strings.Join(r.Tests, ", ")))
			}
		}
	}

	writeLimits(&b, resp.Limits)
	return b.String()
}

func formatTestsHuman(resp *TestsResponseCLI) string {
	var b strings.Builder

	b.WriteString("Test Impact\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if len(resp.Recommended) > 0 {
		b.WriteString(fmt.Sprintf("Recommended tests (%d, covering %d risk methods):\n", len(resp.Recommended), len(resp.Covers)))
		for _, t := range resp.Recommended {
			b.WriteString("  " + t + "\n")
		}
	} else {
		b.WriteString("No tests reach the risk methods\n")
	}
	writeList(&b, "Unreachable", "!", resp.Unreachable)

	if len(resp.Tests) > 0 {
		b.WriteString("\nMethods by test:\n")
		for _, e := range resp.Tests {
			b.WriteString(fmt.Sprintf("  %s\n      %s\n", e.Method, strings.Join(e.Tests, ", ")))
		}
	}

	writeLimits(&b, resp.Limits)
	return b.String()
}

func formatExecHuman(resp *ExecResponseCLI) string {
	var b strings.Builder

	op := resp.Operation
	if op != "" {
		op = strings.ToUpper(op[:1]) + op[1:]
	}
	b.WriteString(fmt.Sprintf("%s of %d input(s): %d record(s), %s\n",
		op, resp.Inputs, resp.Records, countCell(resp.Count)))
	for _, c := range resp.Classes {
		b.WriteString(fmt.Sprintf("  %-50s %s\n", c.ClassName, countCell(c.Count)))
	}
	if resp.Output != "" {
		b.WriteString(fmt.Sprintf("Written to %s\n", resp.Output))
	}
	return b.String()
}

func formatModelCheckHuman(resp *ModelCheckResponseCLI) string {
	var b strings.Builder

	status := "valid"
	if !resp.Valid {
		status = "INVALID"
	}
	b.WriteString(fmt.Sprintf("Model %s: %s\n", resp.Path, status))
	if resp.Build != "" {
		b.WriteString(fmt.Sprintf("  Build:     %s\n", resp.Build))
	}
	b.WriteString(fmt.Sprintf("  Packages:  %d\n", resp.Packages))
	b.WriteString(fmt.Sprintf("  Classes:   %d\n", resp.Classes))
	b.WriteString(fmt.Sprintf("  Methods:   %d (%d lambdas)\n", resp.Methods, resp.Lambdas))
	b.WriteString(fmt.Sprintf("  Probes:    %d\n", resp.TotalProbes))
	b.WriteString(fmt.Sprintf("  Inventory: %s\n", resp.Inventory))
	if resp.Error != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", resp.Error))
	}
	return b.String()
}

func formatSnapshotsHuman(resp *SnapshotListResponseCLI) string {
	var b strings.Builder

	if len(resp.Snapshots) == 0 {
		return fmt.Sprintf("No snapshots for group %q\n", resp.Group)
	}
	b.WriteString(fmt.Sprintf("Snapshots of %s:\n", resp.Group))
	for _, s := range resp.Snapshots {
		b.WriteString(fmt.Sprintf("  %s  %s  v%d  %d records  %s\n",
			shortID(s.ID), s.CreatedAt.Format("2006-01-02 15:04:05"), s.Version, s.RecordCount, countCell(s.Count)))
	}
	return b.String()
}

func formatBaselineHuman(resp *BaselineResponseCLI) string {
	var b strings.Builder

	if resp.Replaced {
		b.WriteString("Replaced existing pin\n")
	}
	if len(resp.Baselines) == 0 {
		b.WriteString(fmt.Sprintf("No baselines in %s\n", resp.File))
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Baselines in %s:\n", resp.File))
	for _, e := range resp.Baselines {
		b.WriteString(fmt.Sprintf("  %-20s %-20s %s\n", e.Group, e.Build, e.PinnedAt.Format("2006-01-02")))
		if e.Model != "" {
			b.WriteString(fmt.Sprintf("      model: %s\n", e.Model))
		}
	}
	return b.String()
}

func writeList(b *strings.Builder, title, mark string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("\n%s:\n", title))
	for _, item := range items {
		b.WriteString(fmt.Sprintf("  %s %s\n", mark, item))
	}
}

func writeWarnings(b *strings.Builder, warnings []output.Warning) {
	if len(warnings) == 0 {
		return
	}
	b.WriteString("\nWarnings:\n")
	for _, w := range warnings {
		if w.Subject != "" {
			b.WriteString(fmt.Sprintf("  [%s] %s: %s\n", w.Code, w.Subject, w.Text))
		} else {
			b.WriteString(fmt.Sprintf("  [%s] %s\n", w.Code, w.Text))
		}
	}
}

func writeLimits(b *strings.Builder, limits *impact.AnalysisLimits) {
	if limits == nil || len(limits.Notes) == 0 {
		return
	}
	b.WriteString("\nNotes:\n")
	for _, note := range limits.Notes {
		b.WriteString("  - " + note + "\n")
	}
}

func riskEmoji(level impact.RiskLevel) string {
	switch level {
	case impact.RiskHigh:
		return "🔴"
	case impact.RiskMedium:
		return "🟡"
	default:
		return "🟢"
	}
}

// shortID trims long fingerprints and ids for display
func shortID(id string) string {
	if len(id) > 20 {
		return id[:20]
	}
	return id
}
