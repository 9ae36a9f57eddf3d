package diff

import (
	"fmt"
	"sort"

	"probecov/internal/model"
)

// ValidationError describes one broken partition property.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Method  string `json:"method,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("%s: %s (method: %s)", e.Code, e.Message, e.Method)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes
const (
	ErrCodeMissing    = "MISSING"
	ErrCodeDuplicate  = "DUPLICATE"
	ErrCodeUnknown    = "UNKNOWN"
	ErrCodeMatchCount = "MATCH_COUNT"
)

// ValidationResult contains the outcome of validation
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Validate checks that r partitions the two inventories: every target identity
// lands in exactly one of New, Modified, Unaffected, and every baseline identity
// is either deleted or the baseline side of exactly one match.
func Validate(r *Result, baseline, target []model.Method) *ValidationResult {
	result := &ValidationResult{Valid: true}
	fail := func(code, format string, key model.MethodKey, args ...interface{}) {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Code:    code,
			Message: fmt.Sprintf(format, args...),
			Method:  key.String(),
		})
	}

	targetSeen := make(map[model.MethodKey]int)
	for _, list := range [][]model.Method{r.New, r.Modified, r.Unaffected} {
		for _, m := range list {
			targetSeen[m.Key()]++
		}
	}
	baselineSeen := make(map[model.MethodKey]int)
	for _, m := range r.Deleted {
		baselineSeen[m.Key()]++
	}
	for _, match := range r.Matches {
		baselineSeen[match.Baseline.Key()]++
	}

	check := func(side string, inputs []model.Method, seen map[model.MethodKey]int) {
		want := make(map[model.MethodKey]bool, len(inputs))
		for _, m := range inputs {
			want[m.Key()] = true
		}
		for key := range want {
			switch n := seen[key]; {
			case n == 0:
				fail(ErrCodeMissing, "%s method not classified", key, side)
			case n > 1:
				fail(ErrCodeDuplicate, "%s method classified %d times", key, side, n)
			}
		}
		for key := range seen {
			if !want[key] {
				fail(ErrCodeUnknown, "classified method not in %s inventory", key, side)
			}
		}
	}
	check("target", target, targetSeen)
	check("baseline", baseline, baselineSeen)

	if len(r.Matches) != len(r.Modified)+len(r.Unaffected) {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Code:    ErrCodeMatchCount,
			Message: fmt.Sprintf("%d matches for %d modified and %d unaffected", len(r.Matches), len(r.Modified), len(r.Unaffected)),
		})
	}

	sort.SliceStable(result.Errors, func(i, j int) bool {
		if result.Errors[i].Method != result.Errors[j].Method {
			return result.Errors[i].Method < result.Errors[j].Method
		}
		return result.Errors[i].Code < result.Errors[j].Code
	})
	return result
}

// QuickValidate returns the first partition error, if any.
func QuickValidate(r *Result, baseline, target []model.Method) error {
	result := Validate(r, baseline, target)
	if !result.Valid {
		return &result.Errors[0]
	}
	return nil
}
