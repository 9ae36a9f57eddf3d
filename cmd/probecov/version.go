package main

import (
	"github.com/spf13/cobra"

	"probecov/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		if env.format == FormatJSON {
			return env.print(cmd, version.Fields())
		}
		_, err = cmd.OutOrStdout().Write([]byte(version.Full() + "\n"))
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
