// Package diff classifies the methods of two builds as new, modified,
// unaffected or deleted, matching synthetic lambda bodies by content so that
// renumbering alone never reports a change.
package diff

import (
	cverrors "probecov/internal/errors"
	"probecov/internal/model"
)

// Verdict is the classification of one method.
type Verdict string

const (
	VerdictNew        Verdict = "new"
	VerdictModified   Verdict = "modified"
	VerdictUnaffected Verdict = "unaffected"
	VerdictDeleted    Verdict = "deleted"
)

// Match pairs the baseline and target entries judged to be the same method.
// For renumbered lambdas the two keys differ.
type Match struct {
	Baseline model.Method `json:"baseline"`
	Target   model.Method `json:"target"`
	Verdict  Verdict      `json:"verdict"`
}

// Result partitions the union of both inventories. New, Modified and
// Unaffected hold target entries; Deleted holds baseline entries.
type Result struct {
	BaselineID string             `json:"baselineId"`
	TargetID   string             `json:"targetId"`
	New        []model.Method     `json:"new"`
	Modified   []model.Method     `json:"modified"`
	Unaffected []model.Method     `json:"unaffected"`
	Deleted    []model.Method     `json:"deleted"`
	Matches    []Match            `json:"matches"`
	Warnings   []cverrors.Warning `json:"warnings,omitempty"`
}

// Stats summarizes a result.
type Stats struct {
	New        int `json:"new"`
	Modified   int `json:"modified"`
	Unaffected int `json:"unaffected"`
	Deleted    int `json:"deleted"`
}

// Stats counts each verdict.
func (r *Result) Stats() Stats {
	return Stats{
		New:        len(r.New),
		Modified:   len(r.Modified),
		Unaffected: len(r.Unaffected),
		Deleted:    len(r.Deleted),
	}
}

// Changed reports whether anything besides unaffected methods was found.
func (r *Result) Changed() bool {
	return len(r.New)+len(r.Modified)+len(r.Deleted) > 0
}

// VerdictOf returns the verdict of a target method key, or of a deleted baseline key.
func (r *Result) VerdictOf(key model.MethodKey) (Verdict, bool) {
	lists := []struct {
		methods []model.Method
		verdict Verdict
	}{
		{r.New, VerdictNew},
		{r.Modified, VerdictModified},
		{r.Unaffected, VerdictUnaffected},
		{r.Deleted, VerdictDeleted},
	}
	for _, l := range lists {
		for _, m := range l.methods {
			if m.Key() == key {
				return l.verdict, true
			}
		}
	}
	return "", false
}
