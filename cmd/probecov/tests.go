package main

import (
	"github.com/spf13/cobra"
)

var (
	testsBaseline string
	testsTarget   string
	testsExec     []string
	testsGroup    string
	testsLenient  bool
	testsAll      bool
)

var testsCmd = &cobra.Command{
	Use:   "tests",
	Short: "Recommend a minimal test set for the changed methods",
	Long: `Associate every method with the tests that execute it and pick a small set
of tests that reaches every new or modified method that any test reaches.

Exec records must carry a test id or test name.

Examples:
  probecov tests --baseline models/1.4.0.json --target models/1.5.0.json --exec run.json
  probecov tests --group checkout --target model.json --exec run.json --all`,
	RunE: runTests,
}

func init() {
	testsCmd.Flags().StringVar(&testsBaseline, "baseline", "", "Baseline structural model")
	testsCmd.Flags().StringVar(&testsTarget, "target", "", "Target structural model")
	testsCmd.Flags().StringArrayVar(&testsExec, "exec", nil, "Exec data file (repeatable)")
	testsCmd.Flags().StringVar(&testsGroup, "group", "", "Group whose pinned baseline to use")
	testsCmd.Flags().BoolVar(&testsLenient, "lenient", false, "Pad or truncate mismatched probe vectors instead of failing")
	testsCmd.Flags().BoolVar(&testsAll, "all", false, "List associations of every method, not only risk methods")

	rootCmd.AddCommand(testsCmd)
}

func runTests(cmd *cobra.Command, args []string) error {
	env, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	res, err := env.analyze(cmd.Context(), analyzeRequest{
		Baseline: testsBaseline,
		Target:   testsTarget,
		Exec:     testsExec,
		Group:    testsGroup,
		Lenient:  testsLenient,
	})
	if err != nil {
		return err
	}
	return env.print(cmd, convertTests(res, !testsAll))
}
