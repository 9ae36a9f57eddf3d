package impact

import (
	"sort"

	"probecov/internal/bundle"
	"probecov/internal/calc"
	"probecov/internal/diff"
	"probecov/internal/model"
)

// RisksFrom extracts the new and modified methods of a diff.
func RisksFrom(r *diff.Result) Risks {
	return Risks{New: r.New, Modified: r.Modified}
}

// Annotate attaches coverage from b and a risk score to every risk method.
// A method missing from the bundle counts as uncovered. Uncovered items come
// first, then items are ordered by method key.
func Annotate(risks Risks, b *bundle.BundleCounter, w Weights) []RiskItem {
	counts := b.MethodCounts()

	items := make([]RiskItem, 0, risks.Len())
	for _, group := range []struct {
		kind    RiskKind
		methods []model.Method
	}{
		{RiskNew, risks.New},
		{RiskModified, risks.Modified},
	} {
		for _, m := range group.methods {
			count, ok := counts[m.Key()]
			if !ok {
				count = calc.NewCount(0, int64(m.Probes.Len()))
			}
			item := RiskItem{Method: m, Kind: group.kind, Count: count, Covered: count.IsCovered()}
			item.Score = ComputeRiskScore(&item, w)
			items = append(items, item)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Covered != items[j].Covered {
			return !items[i].Covered
		}
		return items[i].Method.Key().Less(items[j].Method.Key())
	})
	return items
}

// Summarize counts risk items by kind and coverage.
func Summarize(items []RiskItem) RiskSummary {
	var s RiskSummary
	for _, item := range items {
		s.Total++
		switch item.Kind {
		case RiskNew:
			s.New++
		case RiskModified:
			s.Modified++
		}
		if !item.Covered && item.Probed() {
			s.Uncovered++
		}
		if item.Score != nil && item.Score.Level == RiskHigh {
			s.High++
		}
		s.Coverage = s.Coverage.Add(item.Count)
	}
	return s
}

// Uncovered returns the probed items no test exercised.
func Uncovered(items []RiskItem) []RiskItem {
	var out []RiskItem
	for _, item := range items {
		if !item.Covered && item.Probed() {
			out = append(out, item)
		}
	}
	return out
}
