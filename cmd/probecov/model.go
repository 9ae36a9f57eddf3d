package main

import (
	"github.com/spf13/cobra"

	"probecov/internal/model"
	"probecov/internal/paths"
)

var modelCheckPath string

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect structural models",
}

var modelCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a structural model",
	Long: `Parse a structural model, check that every class's method ranges tile its
probe vector and print its size and inventory id.

An invalid model is reported, not treated as a command failure.

Examples:
  probecov model check --model build/model.json`,
	RunE: runModelCheck,
}

func init() {
	modelCheckCmd.Flags().StringVar(&modelCheckPath, "model", "", "Structural model file")
	modelCmd.AddCommand(modelCheckCmd)
	rootCmd.AddCommand(modelCmd)
}

func runModelCheck(cmd *cobra.Command, args []string) error {
	env, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	resp, err := env.checkModel(modelCheckPath)
	if err != nil {
		return err
	}
	return env.print(cmd, resp)
}

func (e *cliEnv) checkModel(path string) (*ModelCheckResponseCLI, error) {
	if path == "" {
		return nil, errRequired("model")
	}
	tree, err := model.LoadFile(paths.ResolvePath(e.root, path))
	if err != nil {
		return nil, err
	}
	return convertModelCheck(path, tree, tree.Validate()), nil
}
