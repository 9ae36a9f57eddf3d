package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"probecov/internal/config"
	"probecov/internal/slogutil"
	"probecov/internal/version"
)

var (
	rootFlag    string
	verboseFlag int
	quietFlag   bool
	formatFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "probecov",
	Short: "probecov - probe coverage aggregation and test impact",
	Long: `probecov aggregates per-class probe vectors reported by instrumented builds
into bundle, package, class and method coverage, diffs the method inventories of
two builds and ranks the changed methods by risk and by the tests that reach them.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("probecov version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".", "Project root holding .probecov/")
	rootCmd.PersistentFlags().CountVarP(&verboseFlag, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress all logs")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", string(FormatHuman), "Output format: json or human")
}

// cliEnv is the per-invocation state shared by commands
type cliEnv struct {
	root    string
	cfg     *config.Config
	logger  *slog.Logger
	factory *slogutil.LoggerFactory
	format  OutputFormat
}

// newEnv loads the configuration and builds the logger.
// Log level precedence: -v/-q flags > config > warn.
func newEnv(cmd *cobra.Command) (*cliEnv, error) {
	format := OutputFormat(formatFlag)
	if format != FormatJSON && format != FormatHuman {
		return nil, fmt.Errorf("unsupported format: %s", formatFlag)
	}

	cfg, err := config.LoadConfig(rootFlag)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var cliLevel *slog.Level
	if verboseFlag > 0 || quietFlag {
		level := slogutil.LevelFromVerbosity(verboseFlag, quietFlag)
		cliLevel = &level
	}
	factory := slogutil.NewLoggerFactory(rootFlag, cfg, cliLevel)
	logger := factory.CLILogger(cmd.ErrOrStderr()).With("command", cmd.Name())

	return &cliEnv{
		root:    rootFlag,
		cfg:     cfg,
		logger:  logger,
		factory: factory,
		format:  format,
	}, nil
}

// Close releases log files
func (e *cliEnv) Close() {
	_ = e.factory.Close()
}

// print writes resp to the command output in the selected format
func (e *cliEnv) print(cmd *cobra.Command, resp interface{}) error {
	out, err := FormatResponse(resp, e.format)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
