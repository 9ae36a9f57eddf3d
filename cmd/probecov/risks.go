package main

import (
	"context"

	"github.com/spf13/cobra"

	"probecov/internal/impact"
)

var (
	risksBaseline string
	risksTarget   string
	risksExec     []string
	risksGroup    string
	risksLenient  bool
	risksOnlyOpen bool
)

var risksCmd = &cobra.Command{
	Use:   "risks",
	Short: "Rank new and modified methods by coverage risk",
	Long: `Diff the target build against its baseline, aggregate the exec data against
the target and score every new or modified method.

The baseline is read from --baseline, or from the pin of --group in
BASELINE.toml when the flag is omitted. Without any baseline every method is
treated as new.

Examples:
  probecov risks --baseline models/1.4.0.json --target models/1.5.0.json --exec run.json
  probecov risks --group checkout --target model.json --exec run.json --uncovered`,
	RunE: runRisks,
}

func init() {
	risksCmd.Flags().StringVar(&risksBaseline, "baseline", "", "Baseline structural model")
	risksCmd.Flags().StringVar(&risksTarget, "target", "", "Target structural model")
	risksCmd.Flags().StringArrayVar(&risksExec, "exec", nil, "Exec data file (repeatable)")
	risksCmd.Flags().StringVar(&risksGroup, "group", "", "Group whose pinned baseline to use")
	risksCmd.Flags().BoolVar(&risksLenient, "lenient", false, "Pad or truncate mismatched probe vectors instead of failing")
	risksCmd.Flags().BoolVar(&risksOnlyOpen, "uncovered", false, "List uncovered risk methods only")

	rootCmd.AddCommand(risksCmd)
}

func runRisks(cmd *cobra.Command, args []string) error {
	env, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	res, err := env.analyze(cmd.Context(), analyzeRequest{
		Baseline: risksBaseline,
		Target:   risksTarget,
		Exec:     risksExec,
		Group:    risksGroup,
		Lenient:  risksLenient,
	})
	if err != nil {
		return err
	}
	if risksOnlyOpen {
		res.Risks = impact.Uncovered(res.Risks)
	}
	return env.print(cmd, convertRisks(res))
}

type analyzeRequest struct {
	Baseline string
	Target   string
	Exec     []string
	Group    string
	Lenient  bool
}

// analyze runs the full impact pipeline shared by risks and tests
func (e *cliEnv) analyze(ctx context.Context, req analyzeRequest) (*impact.AnalysisResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	target, err := e.loadModel("target", req.Target)
	if err != nil {
		return nil, err
	}
	base, err := e.resolveBaseline(req.Baseline, req.Group)
	if err != nil {
		return nil, err
	}
	records, err := e.loadExec(req.Exec)
	if err != nil {
		return nil, err
	}

	res, err := e.analyzer(req.Lenient).Analyze(ctx, impact.Input{
		Baseline: base,
		Target:   target,
		Exec:     records,
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("Analysis complete",
		"risks", res.Summary.Total,
		"uncovered", res.Summary.Uncovered,
		"high", res.Summary.High,
	)
	return res, nil
}
