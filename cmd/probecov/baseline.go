package main

import (
	"github.com/spf13/cobra"

	"probecov/internal/baseline"
	"probecov/internal/diff"
)

var (
	pinGroup     string
	pinBuild     string
	pinModel     string
	pinInventory string
	pinNote      string
	unpinGroup   string
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Manage pinned baseline builds",
	Long: `Baseline builds are pinned per group in BASELINE.toml at the project root.
risks and tests use the pin of --group when no --baseline is given.`,
}

var baselinePinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Pin the baseline build of a group",
	Long: `Pin a build as the baseline of a group. The inventory id is computed from
--model unless --inventory is given.

Examples:
  probecov baseline pin --group checkout --build 1.4.0 --model models/1.4.0.json
  probecov baseline pin --group checkout --build 1.4.0 --model m.json --note "release"`,
	RunE: runBaselinePin,
}

var baselineUnpinCmd = &cobra.Command{
	Use:   "unpin",
	Short: "Remove the baseline pin of a group",
	RunE:  runBaselineUnpin,
}

var baselineShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List pinned baselines",
	RunE:  runBaselineShow,
}

func init() {
	baselinePinCmd.Flags().StringVar(&pinGroup, "group", "", "Service group")
	baselinePinCmd.Flags().StringVar(&pinBuild, "build", "", "Build version")
	baselinePinCmd.Flags().StringVar(&pinModel, "model", "", "Structural model of the build")
	baselinePinCmd.Flags().StringVar(&pinInventory, "inventory", "", "Inventory id, computed from --model when omitted")
	baselinePinCmd.Flags().StringVar(&pinNote, "note", "", "Free-form note")
	baselineUnpinCmd.Flags().StringVar(&unpinGroup, "group", "", "Service group")

	baselineCmd.AddCommand(baselinePinCmd, baselineUnpinCmd, baselineShowCmd)
	rootCmd.AddCommand(baselineCmd)
}

func runBaselinePin(cmd *cobra.Command, args []string) error {
	env, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	resp, err := env.pinBaseline(baseline.Entry{
		Group:     pinGroup,
		Build:     pinBuild,
		Model:     pinModel,
		Inventory: pinInventory,
		Note:      pinNote,
	})
	if err != nil {
		return err
	}
	return env.print(cmd, resp)
}

func runBaselineUnpin(cmd *cobra.Command, args []string) error {
	env, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	if unpinGroup == "" {
		return errRequired("group")
	}
	path := env.baselinePath()
	decl, err := baseline.Load(path)
	if err != nil {
		return err
	}
	if decl.Unpin(unpinGroup) {
		if err := decl.Save(path); err != nil {
			return err
		}
	} else {
		env.logger.Warn("No baseline pinned", "group", unpinGroup)
	}
	return env.print(cmd, &BaselineResponseCLI{File: env.cfg.Baseline.File, Baselines: decl.Baselines})
}

func runBaselineShow(cmd *cobra.Command, args []string) error {
	env, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	decl, err := baseline.Load(env.baselinePath())
	if err != nil {
		return err
	}
	return env.print(cmd, &BaselineResponseCLI{File: env.cfg.Baseline.File, Baselines: decl.Baselines})
}

// pinBaseline records e in BASELINE.toml, computing the inventory id from the model
func (e *cliEnv) pinBaseline(entry baseline.Entry) (*BaselineResponseCLI, error) {
	if entry.Inventory == "" && entry.Model != "" {
		tree, err := e.loadModel("model", entry.Model)
		if err != nil {
			return nil, err
		}
		entry.Inventory = diff.NewHasher().InventoryID(tree.Methods())
		if entry.Build == "" {
			entry.Build = tree.Build
		}
	}

	path := e.baselinePath()
	decl, err := baseline.Load(path)
	if err != nil {
		return nil, err
	}
	replaced, err := decl.Pin(entry)
	if err != nil {
		return nil, err
	}
	if err := decl.Save(path); err != nil {
		return nil, err
	}
	e.logger.Info("Pinned baseline", "group", entry.Group, "build", entry.Build, "inventory", entry.Inventory)
	return &BaselineResponseCLI{File: e.cfg.Baseline.File, Replaced: replaced, Baselines: decl.Baselines}, nil
}
