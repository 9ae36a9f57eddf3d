package main

import (
	"fmt"

	"probecov/internal/baseline"
	"probecov/internal/bundle"
	"probecov/internal/config"
	"probecov/internal/diff"
	"probecov/internal/impact"
	"probecov/internal/model"
	"probecov/internal/paths"
	"probecov/internal/probes"
	"probecov/internal/storage"
)

func errRequired(flag string) error {
	return fmt.Errorf("--%s is required", flag)
}

// loadModel reads and validates a structural model relative to the project root
func (e *cliEnv) loadModel(flag, path string) (*model.PackageTree, error) {
	if path == "" {
		return nil, errRequired(flag)
	}
	tree, err := model.LoadFile(paths.ResolvePath(e.root, path))
	if err != nil {
		return nil, err
	}
	if err := tree.Validate(); err != nil {
		return nil, err
	}
	e.logger.Debug("Loaded model", "path", path, "build", tree.Build, "classes", tree.ClassCount(), "probes", tree.TotalCount)
	return tree, nil
}

// loadExec reads and concatenates exec data files
func (e *cliEnv) loadExec(files []string) ([]probes.ExecClassData, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("at least one --exec file is required")
	}
	var all []probes.ExecClassData
	for _, f := range files {
		records, err := probes.LoadFile(paths.ResolvePath(e.root, f))
		if err != nil {
			return nil, err
		}
		e.logger.Debug("Loaded exec data", "path", f, "records", len(records))
		all = append(all, records...)
	}
	return all, nil
}

// loadRuns reads each exec file as a separate run
func (e *cliEnv) loadRuns(files []string) ([][]probes.ExecClassData, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("at least one --exec file is required")
	}
	runs := make([][]probes.ExecClassData, 0, len(files))
	for _, f := range files {
		records, err := probes.LoadFile(paths.ResolvePath(e.root, f))
		if err != nil {
			return nil, err
		}
		runs = append(runs, records)
	}
	return runs, nil
}

// aggregator builds an aggregator from the config; lenient forces lenient mode
func (e *cliEnv) aggregator(lenient bool) *bundle.Aggregator {
	return bundle.NewAggregator(bundle.Options{
		Lenient:     lenient || e.cfg.Aggregation.Lenient,
		Parallelism: e.cfg.Aggregation.Parallelism,
	}, e.logger)
}

// analyzer wires the aggregator, differ and configured risk weights
func (e *cliEnv) analyzer(lenient bool) *impact.Analyzer {
	return impact.NewAnalyzer(e.aggregator(lenient), diff.NewDiffer(e.logger), weightsFrom(e.cfg))
}

func weightsFrom(cfg *config.Config) impact.Weights {
	return impact.Weights{
		CoverageGap:     cfg.Risk.Weights.CoverageGap,
		ChangeKind:      cfg.Risk.Weights.ChangeKind,
		MethodSize:      cfg.Risk.Weights.MethodSize,
		HighThreshold:   cfg.Risk.HighThreshold,
		MediumThreshold: cfg.Risk.MediumThreshold,
	}
}

// baselinePath returns the BASELINE.toml location
func (e *cliEnv) baselinePath() string {
	return paths.ResolvePath(e.root, e.cfg.Baseline.File)
}

// resolveBaseline loads the baseline model from the flag, or from the pin of
// group in BASELINE.toml. It returns nil without error when neither exists.
func (e *cliEnv) resolveBaseline(path, group string) (*model.PackageTree, error) {
	if path != "" {
		return e.loadModel("baseline", path)
	}
	if group == "" {
		return nil, nil
	}

	decl, err := baseline.Load(e.baselinePath())
	if err != nil {
		return nil, err
	}
	entry, ok := decl.Get(group)
	if !ok {
		e.logger.Warn("No baseline pinned", "group", group, "file", e.cfg.Baseline.File)
		return nil, nil
	}
	if entry.Model == "" {
		return nil, fmt.Errorf("baseline of %q pins build %s without a model path", group, entry.Build)
	}

	tree, err := e.loadModel("baseline", entry.Model)
	if err != nil {
		return nil, err
	}
	if entry.Inventory != "" {
		if got := diff.NewHasher().InventoryID(tree.Methods()); got != entry.Inventory {
			e.logger.Warn("Baseline model does not match pinned inventory",
				"group", group, "pinned", entry.Inventory, "model", got)
		}
	}
	return tree, nil
}

// openStore opens the snapshot database configured for the project
func (e *cliEnv) openStore() (*storage.DB, error) {
	return storage.OpenPath(paths.DatabasePath(e.root, e.cfg.Storage.Path), e.logger)
}
