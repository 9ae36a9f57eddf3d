package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"probecov/internal/bundle"
	"probecov/internal/output"
	"probecov/internal/probes"
	"probecov/internal/storage"
)

var (
	bundleModel        string
	bundleExec         []string
	bundleLenient      bool
	bundleVerify       bool
	bundleDepth        string
	bundleGroup        string
	bundleSave         bool
	bundleCompare      string
	bundleFromSnapshot bool
)

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Aggregate exec data into bundle coverage",
	Long: `Aggregate per-class probe vectors against a structural model and print
coverage at bundle, package, class and method level.

Examples:
  # Coverage of one test run
  probecov bundle --model build/model.json --exec run1.json

  # Merge several runs, tolerate stale agents and check additivity
  probecov bundle --model model.yaml --exec a.json --exec b.json --lenient --verify

  # Aggregate the latest stored snapshot and store the result
  probecov bundle --model model.json --group checkout --from-snapshot --save`,
	RunE: runBundle,
}

func init() {
	bundleCmd.Flags().StringVar(&bundleModel, "model", "", "Structural model file (.json, .yaml, .toml)")
	bundleCmd.Flags().StringArrayVar(&bundleExec, "exec", nil, "Exec data file (repeatable)")
	bundleCmd.Flags().BoolVar(&bundleLenient, "lenient", false, "Pad or truncate mismatched probe vectors instead of failing")
	bundleCmd.Flags().BoolVar(&bundleVerify, "verify", false, "Check hierarchical additivity of the result")
	bundleCmd.Flags().StringVar(&bundleDepth, "depth", "package", "Report depth: bundle, package, class or method")
	bundleCmd.Flags().StringVar(&bundleGroup, "group", "default", "Group the bundle is stored under")
	bundleCmd.Flags().BoolVar(&bundleSave, "save", false, "Store the bundle in the snapshot database")
	bundleCmd.Flags().StringVar(&bundleCompare, "compare", "", "Stored bundle id to compare against")
	bundleCmd.Flags().BoolVar(&bundleFromSnapshot, "from-snapshot", false, "Use the latest stored snapshot of --group as exec data")

	rootCmd.AddCommand(bundleCmd)
}

func runBundle(cmd *cobra.Command, args []string) error {
	env, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	resp, err := env.bundleReport(cmd.Context(), bundleRequest{
		Model:        bundleModel,
		Exec:         bundleExec,
		Lenient:      bundleLenient,
		Verify:       bundleVerify,
		Depth:        output.ParseDepth(bundleDepth),
		Group:        bundleGroup,
		Save:         bundleSave || env.cfg.Storage.Enabled,
		Compare:      bundleCompare,
		FromSnapshot: bundleFromSnapshot,
	})
	if err != nil {
		return err
	}
	return env.print(cmd, resp)
}

type bundleRequest struct {
	Model        string
	Exec         []string
	Lenient      bool
	Verify       bool
	Depth        output.Depth
	Group        string
	Save         bool
	Compare      string
	FromSnapshot bool
}

func (e *cliEnv) bundleReport(ctx context.Context, req bundleRequest) (*BundleResponseCLI, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	tree, err := e.loadModel("model", req.Model)
	if err != nil {
		return nil, err
	}

	var store *storage.DB
	if req.Save || req.Compare != "" || req.FromSnapshot {
		if store, err = e.openStore(); err != nil {
			return nil, err
		}
		defer store.Close()
	}

	var records []probes.ExecClassData
	if req.FromSnapshot {
		snap, err := storage.NewSnapshotRepository(store).Latest(req.Group)
		if err != nil {
			return nil, err
		}
		if snap == nil {
			return nil, fmt.Errorf("no snapshot stored for group %q", req.Group)
		}
		records = snap.Records
	}
	if len(req.Exec) > 0 || !req.FromSnapshot {
		extra, err := e.loadExec(req.Exec)
		if err != nil {
			return nil, err
		}
		records = append(records, extra...)
	}

	b, err := e.aggregator(req.Lenient).Bundle(ctx, records, tree)
	if err != nil {
		return nil, err
	}
	if b.Name == "" {
		b.Name = tree.Build
	}
	if req.Verify {
		if err := bundle.Verify(b); err != nil {
			return nil, err
		}
	}

	var prev *bundle.BundleCounter
	var comparedTo string
	if store != nil {
		bundles := storage.NewBundleRepository(store)
		var rec *storage.BundleRecord
		if req.Compare != "" {
			if rec, err = bundles.Get(req.Compare); err != nil {
				return nil, err
			}
			if rec == nil {
				return nil, fmt.Errorf("no stored bundle %s", req.Compare)
			}
		} else if rec, err = bundles.LatestForBuild(req.Group, tree.Build); err != nil {
			return nil, err
		}
		if rec != nil {
			prev, comparedTo = rec.Bundle, rec.ID
		}
	}

	resp := convertBundle(b, prev, req.Depth)
	resp.Build = tree.Build
	resp.Verified = req.Verify
	resp.ComparedTo = comparedTo

	if req.Save {
		id, err := storage.NewBundleRepository(store).Save(req.Group, tree.Build, b)
		if err != nil {
			return nil, err
		}
		resp.BundleID = id
	}
	return resp, nil
}
