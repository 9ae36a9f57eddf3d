package diff

import (
	"log/slog"
	"sort"

	cverrors "probecov/internal/errors"
	"probecov/internal/model"
	"probecov/internal/slogutil"
)

// Differ compares two method inventories.
type Differ struct {
	hasher *Hasher
	logger *slog.Logger
}

// NewDiffer creates a differ. A nil logger discards output.
func NewDiffer(logger *slog.Logger) *Differ {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Differ{hasher: NewHasher(), logger: logger}
}

type lambdaGroup struct {
	owner     string
	enclosing string
}

// inventory is one side of a diff after identity resolution.
type inventory struct {
	regular map[model.MethodKey]model.Method
	lambdas map[lambdaGroup][]model.Method
	// declared lambda hashes by owner and lambda name, taken from enclosing methods
	declared map[[2]string]string
}

func (inv *inventory) effectiveHash(m model.Method) string {
	if m.Hash != "" {
		return m.Hash
	}
	return inv.declared[[2]string{m.OwnerClass, m.Name}]
}

// Diff classifies target methods against baseline methods by identity
// (owner, name, desc) and content hash.
//
// A regular method's verdict depends on its own hash only; lambda hash changes
// never mark the enclosing method modified. Lambda bodies are matched within
// their enclosing method by body hash first, in synthetic index order, then by
// identity. Duplicate identities within one list keep the last entry and add a
// DIFF_IDENTITY_COLLISION warning.
func (d *Differ) Diff(baseline, target []model.Method) *Result {
	r := &Result{
		BaselineID: d.hasher.InventoryID(baseline),
		TargetID:   d.hasher.InventoryID(target),
	}
	base := d.index("baseline", baseline, r)
	tgt := d.index("target", target, r)

	for key, t := range tgt.regular {
		b, ok := base.regular[key]
		if !ok {
			r.New = append(r.New, t)
			continue
		}
		r.match(b, t, b.Hash == t.Hash)
	}
	for key, b := range base.regular {
		if _, ok := tgt.regular[key]; !ok {
			r.Deleted = append(r.Deleted, b)
		}
	}

	groups := make(map[lambdaGroup]bool)
	for g := range base.lambdas {
		groups[g] = true
	}
	for g := range tgt.lambdas {
		groups[g] = true
	}
	for g := range groups {
		matchLambdas(r, base, tgt, g)
	}

	r.sort()

	d.logger.Debug("Method inventories compared",
		"baseline", r.BaselineID,
		"target", r.TargetID,
		"new", len(r.New),
		"modified", len(r.Modified),
		"unaffected", len(r.Unaffected),
		"deleted", len(r.Deleted),
	)
	return r
}

func (d *Differ) index(side string, methods []model.Method, r *Result) *inventory {
	byKey := make(map[model.MethodKey]model.Method, len(methods))
	inv := &inventory{
		regular:  make(map[model.MethodKey]model.Method),
		lambdas:  make(map[lambdaGroup][]model.Method),
		declared: make(map[[2]string]string),
	}

	for _, m := range methods {
		key := m.Key()
		if _, dup := byKey[key]; dup {
			w := cverrors.NewWarning(cverrors.DiffIdentityCollision, key.String(),
				"%s inventory declares %s more than once; keeping the last entry", side, key)
			r.Warnings = append(r.Warnings, w)
			d.logger.Warn("Duplicate method identity", "side", side, "method", key.String())
		}
		byKey[key] = m
		for name, hash := range m.LambdaHashes {
			inv.declared[[2]string{m.OwnerClass, name}] = hash
		}
	}

	for key, m := range byKey {
		if !m.IsLambda() {
			inv.regular[key] = m
			continue
		}
		g := lambdaGroup{owner: m.OwnerClass, enclosing: m.Enclosing()}
		inv.lambdas[g] = append(inv.lambdas[g], m)
	}
	for _, group := range inv.lambdas {
		sort.Slice(group, func(i, j int) bool {
			if a, b := group[i].LambdaIndex(), group[j].LambdaIndex(); a != b {
				return a < b
			}
			return group[i].Key().Less(group[j].Key())
		})
	}
	return inv
}

func matchLambdas(r *Result, base, tgt *inventory, g lambdaGroup) {
	bs, ts := base.lambdas[g], tgt.lambdas[g]
	usedB := make([]bool, len(bs))
	usedT := make([]bool, len(ts))

	// Same body, possibly renumbered.
	for i, t := range ts {
		th := tgt.effectiveHash(t)
		if th == "" {
			continue
		}
		for j, b := range bs {
			if !usedB[j] && base.effectiveHash(b) == th {
				usedB[j], usedT[i] = true, true
				r.match(b, t, true)
				break
			}
		}
	}

	// Same name, body changed.
	for i, t := range ts {
		if usedT[i] {
			continue
		}
		for j, b := range bs {
			if !usedB[j] && b.Key() == t.Key() {
				usedB[j], usedT[i] = true, true
				r.match(b, t, base.effectiveHash(b) == tgt.effectiveHash(t))
				break
			}
		}
	}

	for i, t := range ts {
		if !usedT[i] {
			r.New = append(r.New, t)
		}
	}
	for j, b := range bs {
		if !usedB[j] {
			r.Deleted = append(r.Deleted, b)
		}
	}
}

func (r *Result) match(b, t model.Method, same bool) {
	verdict := VerdictModified
	if same {
		verdict = VerdictUnaffected
		r.Unaffected = append(r.Unaffected, t)
	} else {
		r.Modified = append(r.Modified, t)
	}
	r.Matches = append(r.Matches, Match{Baseline: b, Target: t, Verdict: verdict})
}

func (r *Result) sort() {
	for _, list := range [][]model.Method{r.New, r.Modified, r.Unaffected, r.Deleted} {
		sort.Slice(list, func(i, j int) bool { return list[i].Key().Less(list[j].Key()) })
	}
	sort.Slice(r.Matches, func(i, j int) bool {
		if a, b := r.Matches[i].Target.Key(), r.Matches[j].Target.Key(); a != b {
			return a.Less(b)
		}
		return r.Matches[i].Baseline.Key().Less(r.Matches[j].Baseline.Key())
	})
}
