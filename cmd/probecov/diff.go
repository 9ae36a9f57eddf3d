package main

import (
	"github.com/spf13/cobra"

	"probecov/internal/diff"
)

var (
	diffBaseline   string
	diffTarget     string
	diffUnaffected bool
	diffValidate   bool
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Classify the methods of two builds",
	Long: `Compare the method inventories of a baseline and a target model and list
new, modified and deleted methods. Lambda bodies are matched by content, so
renumbering alone never reports a change.

Examples:
  probecov diff --baseline models/1.4.0.json --target models/1.5.0.json
  probecov diff --baseline old.yaml --target new.yaml --validate --format json`,
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringVar(&diffBaseline, "baseline", "", "Baseline structural model")
	diffCmd.Flags().StringVar(&diffTarget, "target", "", "Target structural model")
	diffCmd.Flags().BoolVar(&diffUnaffected, "unaffected", false, "Also list unaffected methods")
	diffCmd.Flags().BoolVar(&diffValidate, "validate", false, "Check that the result partitions both inventories")

	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	env, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	resp, err := env.diffReport(diffBaseline, diffTarget, diffUnaffected, diffValidate)
	if err != nil {
		return err
	}
	return env.print(cmd, resp)
}

func (e *cliEnv) diffReport(baselinePath, targetPath string, unaffected, validate bool) (*DiffResponseCLI, error) {
	base, err := e.loadModel("baseline", baselinePath)
	if err != nil {
		return nil, err
	}
	target, err := e.loadModel("target", targetPath)
	if err != nil {
		return nil, err
	}

	baseMethods, targetMethods := base.Methods(), target.Methods()
	result := diff.NewDiffer(e.logger).Diff(baseMethods, targetMethods)

	resp := convertDiff(result, unaffected)
	if validate {
		resp.Validation = diff.Validate(result, baseMethods, targetMethods)
	}
	return resp, nil
}
