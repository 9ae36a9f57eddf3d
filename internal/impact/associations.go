package impact

import (
	"sort"

	"probecov/internal/bundle"
	"probecov/internal/model"
)

// Associations maps methods to the tests that exercise them and back.
// All slices are sorted.
type Associations struct {
	MethodTests map[model.MethodKey][]string
	TestMethods map[string][]model.MethodKey
}

// MethodTestsEntry is one row of the method to tests view.
type MethodTestsEntry struct {
	Method string   `json:"method"`
	Tests  []string `json:"tests"`
}

// Associate builds associations from per-test bundles. A test covers a method
// when the method has at least one covered probe in the test's bundle.
func Associate(perTest map[string]*bundle.BundleCounter) *Associations {
	a := &Associations{
		MethodTests: make(map[model.MethodKey][]string),
		TestMethods: make(map[string][]model.MethodKey),
	}

	tests := make([]string, 0, len(perTest))
	for test := range perTest {
		tests = append(tests, test)
	}
	sort.Strings(tests)

	for _, test := range tests {
		var methods []model.MethodKey
		for key, count := range perTest[test].MethodCounts() {
			if count.IsCovered() {
				methods = append(methods, key)
			}
		}
		sort.Slice(methods, func(i, j int) bool { return methods[i].Less(methods[j]) })
		if len(methods) == 0 {
			continue
		}
		a.TestMethods[test] = methods
		for _, key := range methods {
			a.MethodTests[key] = append(a.MethodTests[key], test)
		}
	}
	return a
}

// TestsFor returns the tests covering a method.
func (a *Associations) TestsFor(key model.MethodKey) []string {
	return a.MethodTests[key]
}

// Tests returns every test that covers at least one method.
func (a *Associations) Tests() []string {
	tests := make([]string, 0, len(a.TestMethods))
	for test := range a.TestMethods {
		tests = append(tests, test)
	}
	sort.Strings(tests)
	return tests
}

// Entries returns the method to tests view ordered by method.
func (a *Associations) Entries() []MethodTestsEntry {
	keys := make([]model.MethodKey, 0, len(a.MethodTests))
	for key := range a.MethodTests {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	entries := make([]MethodTestsEntry, len(keys))
	for i, key := range keys {
		entries[i] = MethodTestsEntry{Method: key.String(), Tests: a.MethodTests[key]}
	}
	return entries
}

// Recommendation is a small test set covering the reachable risk methods.
type Recommendation struct {
	Tests       []string          `json:"tests"`
	Covered     []model.MethodKey `json:"covered"`
	Unreachable []model.MethodKey `json:"unreachable"`
}

// RecommendTests greedily picks the test covering the most remaining risk
// methods until every reachable risk method is covered. Ties go to the test
// covering more methods overall, then to the smaller test id. Risk methods no
// test covers are reported as unreachable; methods without probes are skipped.
func RecommendTests(a *Associations, items []RiskItem) *Recommendation {
	rec := &Recommendation{Tests: []string{}, Covered: []model.MethodKey{}, Unreachable: []model.MethodKey{}}

	remaining := make(map[model.MethodKey]bool)
	for _, item := range items {
		if !item.Probed() {
			continue
		}
		key := item.Method.Key()
		if len(a.MethodTests[key]) == 0 {
			rec.Unreachable = append(rec.Unreachable, key)
			continue
		}
		remaining[key] = true
	}

	candidates := a.Tests()
	for len(remaining) > 0 {
		best, bestGain := "", 0
		for _, test := range candidates {
			gain := 0
			for _, key := range a.TestMethods[test] {
				if remaining[key] {
					gain++
				}
			}
			if gain == 0 {
				continue
			}
			if gain > bestGain ||
				(gain == bestGain && len(a.TestMethods[test]) > len(a.TestMethods[best])) {
				best, bestGain = test, gain
			}
		}
		if bestGain == 0 {
			break
		}

		rec.Tests = append(rec.Tests, best)
		for _, key := range a.TestMethods[best] {
			if remaining[key] {
				delete(remaining, key)
				rec.Covered = append(rec.Covered, key)
			}
		}
	}

	sort.Slice(rec.Covered, func(i, j int) bool { return rec.Covered[i].Less(rec.Covered[j]) })
	sort.Slice(rec.Unreachable, func(i, j int) bool { return rec.Unreachable[i].Less(rec.Unreachable[j]) })
	return rec
}
