package bundle

import (
	"context"
	"log/slog"
	"runtime"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"probecov/internal/calc"
	cverrors "probecov/internal/errors"
	"probecov/internal/model"
	"probecov/internal/probes"
	"probecov/internal/slogutil"
)

// Options controls aggregation.
type Options struct {
	// Lenient pads or truncates probe vectors whose length disagrees with the
	// model and attaches a warning, instead of rejecting the call.
	Lenient bool
	// Parallelism bounds the per-class workers. Zero or less uses GOMAXPROCS.
	Parallelism int
}

// Aggregator builds counter trees. It holds no state between calls.
type Aggregator struct {
	opts   Options
	logger *slog.Logger
}

// NewAggregator creates an aggregator. A nil logger discards output.
func NewAggregator(opts Options, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.GOMAXPROCS(0)
	}
	return &Aggregator{opts: opts, logger: logger}
}

// Bundle merges execData per class and rolls it up through tree.
//
// Every class of the model appears in the result; classes without data count as
// uncovered. A record naming a class the model does not know fails with
// MODEL_MISMATCH. A probe vector of the wrong length fails with
// MALFORMED_PROBE_LENGTH unless the aggregator is lenient.
func (a *Aggregator) Bundle(ctx context.Context, execData []probes.ExecClassData, tree *model.PackageTree) (*BundleCounter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := tree.Validate(); err != nil {
		return nil, err
	}

	merged, warnings, err := a.mergeByClass(execData, tree.Index())
	if err != nil {
		return nil, err
	}

	// slots[p][c] mirrors tree.Packages[p].Classes[c].
	slots := make([][]ClassCounter, len(tree.Packages))
	for p, pkg := range tree.Packages {
		slots[p] = make([]ClassCounter, len(pkg.Classes))
	}

	workers := pool.New().WithMaxGoroutines(a.opts.Parallelism).WithContext(ctx).WithCancelOnError().WithFirstError()
	for p := range tree.Packages {
		for c := range tree.Packages[p].Classes {
			info := &tree.Packages[p].Classes[c]
			slot := &slots[p][c]
			workers.Go(func(ctx context.Context) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				vec, ok := merged[info.Path]
				if !ok {
					vec = probes.New(info.ProbeCount)
				}
				cc, err := classCounter(info, vec)
				if err != nil {
					return err
				}
				*slot = cc
				return nil
			})
		}
	}
	if err := workers.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := rollup(tree, slots)
	b.Warnings = warnings

	a.logger.Debug("Bundle aggregated",
		"build", tree.Build,
		"records", len(execData),
		"classes", b.ClassCount.Total,
		"covered", b.Count.Covered,
		"total", b.Count.Total,
		"warnings", len(warnings),
	)
	return b, nil
}

// BundleByTest builds one bundle per test. Records are keyed by test id,
// falling back to the test name.
func (a *Aggregator) BundleByTest(ctx context.Context, execData []probes.ExecClassData, tree *model.PackageTree) (map[string]*BundleCounter, error) {
	byTest := make(map[string][]probes.ExecClassData)
	for _, r := range execData {
		byTest[r.Test()] = append(byTest[r.Test()], r)
	}

	tests := make([]string, 0, len(byTest))
	for t := range byTest {
		tests = append(tests, t)
	}
	sort.Strings(tests)

	out := make(map[string]*BundleCounter, len(tests))
	for _, test := range tests {
		b, err := a.Bundle(ctx, byTest[test], tree)
		if err != nil {
			return nil, err
		}
		b.Name = test
		out[test] = b
	}
	return out, nil
}

func (a *Aggregator) mergeByClass(execData []probes.ExecClassData, index *model.Index) (map[string]probes.Probes, []cverrors.Warning, error) {
	merged := make(map[string]probes.Probes)
	var warnings []cverrors.Warning
	warned := make(map[string]bool)

	for _, r := range execData {
		info, ok := index.Class(r.ClassName)
		if !ok {
			return nil, nil, cverrors.Newf(cverrors.ModelMismatch,
				"class %q has probe data but is not in the structural model", r.ClassName).
				WithDetails(map[string]interface{}{"class": r.ClassName, "classId": r.ID})
		}

		vec := r.Probes
		if len(vec) != info.ProbeCount {
			if !a.opts.Lenient {
				a.logger.Error("Rejected probe vector",
					"class", r.ClassName,
					"length", len(vec),
					"expected", info.ProbeCount,
				)
				return nil, nil, cverrors.Newf(cverrors.MalformedProbeLength,
					"class %q: probe vector has %d entries, model expects %d", r.ClassName, len(vec), info.ProbeCount).
					WithDetails(map[string]interface{}{"class": r.ClassName, "length": len(vec), "expected": info.ProbeCount})
			}
			if !warned[r.ClassName] {
				warned[r.ClassName] = true
				w := cverrors.NewWarning(cverrors.MalformedProbeLength, r.ClassName,
					"probe vector has %d entries, model expects %d; normalized", len(vec), info.ProbeCount)
				warnings = append(warnings, w)
				a.logger.Warn("Normalized probe vector",
					"class", r.ClassName,
					"length", len(vec),
					"expected", info.ProbeCount,
				)
			}
			vec = vec.Normalize(info.ProbeCount)
		}

		if prev, ok := merged[r.ClassName]; ok {
			merged[r.ClassName] = prev.Merge(vec)
		} else {
			merged[r.ClassName] = vec.Clone()
		}
	}

	sort.Slice(warnings, func(i, j int) bool { return warnings[i].Subject < warnings[j].Subject })
	return merged, warnings, nil
}

func classCounter(info *model.ClassInfo, vec probes.Probes) (ClassCounter, error) {
	cc := ClassCounter{
		Path:    info.Path,
		Name:    info.SimpleName(),
		Count:   vec.Count(),
		Methods: make([]MethodCounter, len(info.Methods)),
	}
	for i, m := range info.Methods {
		part, ok := vec.Slice(m.Probes)
		if !ok {
			return ClassCounter{}, cverrors.Newf(cverrors.ModelMismatch,
				"%s: range [%d,%d] outside %d probes", m.Key(), m.Probes.First, m.Probes.Last, len(vec))
		}
		count := part.Count()
		cc.Methods[i] = MethodCounter{Name: m.Name, Desc: m.Desc, Decl: m.Decl, Count: count}
		cc.MethodCount = cc.MethodCount.Add(coveredUnit(count))
	}
	return cc, nil
}

func rollup(tree *model.PackageTree, slots [][]ClassCounter) *BundleCounter {
	b := &BundleCounter{Name: tree.Build, Packages: make([]PackageCounter, len(tree.Packages))}
	for p, pkg := range tree.Packages {
		pc := PackageCounter{Name: pkg.Name, Classes: slots[p]}
		for _, cc := range slots[p] {
			pc.Count = pc.Count.Add(cc.Count)
			pc.MethodCount = pc.MethodCount.Add(cc.MethodCount)
			pc.ClassCount = pc.ClassCount.Add(coveredUnit(cc.Count))
		}
		b.Packages[p] = pc
		b.Count = b.Count.Add(pc.Count)
		b.MethodCount = b.MethodCount.Add(pc.MethodCount)
		b.ClassCount = b.ClassCount.Add(pc.ClassCount)
		b.PackageCount = b.PackageCount.Add(coveredUnit(pc.Count))
	}
	return b
}

// coveredUnit counts one item, covered when it has at least one covered probe.
// Items without probes cannot be executed and count as nothing.
func coveredUnit(c calc.Count) calc.Count {
	if c.IsEmpty() {
		return calc.Count{}
	}
	if c.IsCovered() {
		return calc.NewCount(1, 1)
	}
	return calc.NewCount(0, 1)
}
