package main

import (
	"github.com/spf13/cobra"

	"probecov/internal/paths"
	"probecov/internal/probes"
)

var (
	execFiles  []string
	execOutput string
)

var execCmd = &cobra.Command{
	Use:   "exec",
	Short: "Combine exec data files",
}

var execMergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Union of the probes executed by any run",
	Long: `Merge exec data of several runs. A probe is executed in the result when any
run executed it. Records of the same class identity are combined.

Examples:
  probecov exec merge --exec unit.json --exec integration.json --output all.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExec(cmd, execMerge)
	},
}

var execIntersectCmd = &cobra.Command{
	Use:   "intersect",
	Short: "Probes executed by every run",
	Long: `Intersect exec data of several runs. A class is kept only when every run
reports it, and a probe is executed only when every run executed it.

Examples:
  probecov exec intersect --exec run1.json --exec run2.json --exec run3.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExec(cmd, execIntersect)
	},
}

func init() {
	for _, c := range []*cobra.Command{execMergeCmd, execIntersectCmd} {
		c.Flags().StringArrayVar(&execFiles, "exec", nil, "Exec data file (repeatable)")
		c.Flags().StringVarP(&execOutput, "output", "o", "", "Write the combined exec data to this file")
		execCmd.AddCommand(c)
	}
	rootCmd.AddCommand(execCmd)
}

const (
	execMerge     = "merge"
	execIntersect = "intersect"
)

func runExec(cmd *cobra.Command, op string) error {
	env, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	resp, err := env.combineExec(op, execFiles, execOutput)
	if err != nil {
		return err
	}
	return env.print(cmd, resp)
}

// combineExec merges or intersects the runs and optionally writes the result
func (e *cliEnv) combineExec(op string, files []string, out string) (*ExecResponseCLI, error) {
	runs, err := e.loadRuns(files)
	if err != nil {
		return nil, err
	}

	var combined probes.ExecMap
	switch op {
	case execIntersect:
		combined = probes.CommonCoverage(runs...)
	default:
		var all []probes.ExecClassData
		for _, run := range runs {
			all = append(all, run...)
		}
		combined = probes.MergeAll(nil, all)
	}

	records := combined.Records()
	resp := convertExec(op, len(runs), records)
	if out != "" {
		if err := probes.WriteFile(paths.ResolvePath(e.root, out), records); err != nil {
			return nil, err
		}
		resp.Output = out
		e.logger.Info("Wrote exec data", "path", out, "records", len(records))
	}
	return resp, nil
}
