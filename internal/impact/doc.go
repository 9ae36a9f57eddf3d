// Package impact turns a method diff and a coverage bundle into actionable
// risk data.
//
// A risk is a new or modified method of the target build. Each risk is
// annotated with its coverage in the bundle and a weighted risk score:
//
//   - Coverage gap (weight 0.5): share of the method's probes never executed
//   - Change kind (weight 0.3): modified code weighs more than new code
//   - Method size (weight 0.2): larger methods hide more untested paths
//
// The final score (0.0-1.0) is mapped to risk levels:
//   - Low: 0.0 - 0.39
//   - Medium: 0.4 - 0.69
//   - High: 0.7 - 1.0
//
// Per-test bundles yield method to test associations, from which
// RecommendTests picks a small set of tests that exercises every reachable
// risk method.
//
// Basic usage:
//
//	analyzer := impact.NewAnalyzer(bundle.NewAggregator(bundle.Options{}, logger), diff.NewDiffer(logger), impact.DefaultWeights())
//	result, err := analyzer.Analyze(ctx, impact.Input{
//	    Baseline: baselineTree,
//	    Target:   targetTree,
//	    Exec:     records,
//	})
//	if err != nil {
//	    return err
//	}
//	for _, item := range result.Risks {
//	    fmt.Printf("%s %s %s (%s)\n", item.Kind, item.Method.Key(), item.Count, item.Score.Level)
//	}
package impact
