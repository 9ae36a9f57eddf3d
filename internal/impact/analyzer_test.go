package impact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"probecov/internal/bundle"
	"probecov/internal/diff"
	cverrors "probecov/internal/errors"
	"probecov/internal/probes"
)

func newAnalyzer(opts bundle.Options) *Analyzer {
	return NewAnalyzer(bundle.NewAggregator(opts, nil), diff.NewDiffer(nil), DefaultWeights())
}

func TestAnalyze(t *testing.T) {
	baseline, target := builds()
	exec := []probes.ExecClassData{
		{ClassName: "p/A", TestID: "t1", Probes: probes.Parse("1000000")},
		{ClassName: "p/A", TestID: "t2", Probes: probes.Parse("0001000")},
	}

	result, err := newAnalyzer(bundle.Options{}).Analyze(context.Background(), Input{Baseline: baseline, Target: target, Exec: exec})
	require.NoError(t, err)

	assert.Equal(t, diff.Stats{New: 2, Modified: 1, Unaffected: 1, Deleted: 1}, result.Diff.Stats())
	assert.Equal(t, 3, result.Summary.Total)
	assert.Equal(t, DataFull, result.Limits.PerTestData)
	require.NotNil(t, result.Recommendation)
	assert.Equal(t, []string{"t1", "t2"}, result.Recommendation.Tests)
	assert.Len(t, result.Recommendation.Unreachable, 1)
	assert.True(t, result.Limits.HasLimitations())
	assert.NoError(t, bundle.Verify(result.Bundle))
}

func TestAnalyzeWithoutBaselineOrTests(t *testing.T) {
	_, target := builds()
	result, err := newAnalyzer(bundle.Options{}).Analyze(context.Background(), Input{Target: target})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Summary.New)
	assert.Equal(t, 4, result.Summary.Uncovered)
	assert.Nil(t, result.Recommendation)
	assert.Equal(t, DataNone, result.Limits.PerTestData)
	assert.Len(t, result.Limits.Notes, 2)
}

func TestAnalyzePropagatesMismatch(t *testing.T) {
	baseline, target := builds()
	_, err := newAnalyzer(bundle.Options{}).Analyze(context.Background(), Input{
		Baseline: baseline,
		Target:   target,
		Exec:     []probes.ExecClassData{{ClassName: "p/Unknown", Probes: probes.Parse("1")}},
	})
	assert.True(t, cverrors.Is(err, cverrors.ModelMismatch))
}

func TestAnalyzeNilTarget(t *testing.T) {
	_, err := newAnalyzer(bundle.Options{}).Analyze(context.Background(), Input{})
	assert.Error(t, err)
}
