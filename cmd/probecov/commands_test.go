package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"probecov/internal/baseline"
	"probecov/internal/calc"
	"probecov/internal/config"
	"probecov/internal/output"
	"probecov/internal/probes"
	"probecov/internal/slogutil"
)

const baselineModelJSON = `{
  "build": "1.4.0",
  "classes": [
    {
      "path": "com/example/Cart",
      "probeCount": 4,
      "methods": [
        {"name": "add", "desc": "()V", "hash": "a1", "probes": {"first": 0, "last": 1}},
        {"name": "total", "desc": "()I", "hash": "t1", "probes": {"first": 2, "last": 3}}
      ]
    },
    {
      "path": "com/example/util/Money",
      "probeCount": 2,
      "methods": [
        {"name": "of", "desc": "(J)V", "hash": "m1", "probes": {"first": 0, "last": 1}}
      ]
    }
  ]
}`

const targetModelJSON = `{
  "build": "1.5.0",
  "classes": [
    {
      "path": "com/example/Cart",
      "probeCount": 5,
      "methods": [
        {"name": "add", "desc": "()V", "hash": "a2", "probes": {"first": 0, "last": 1}},
        {"name": "total", "desc": "()I", "hash": "t1", "probes": {"first": 2, "last": 3}},
        {"name": "clear", "desc": "()V", "hash": "c1", "probes": {"first": 4, "last": 4}}
      ]
    },
    {
      "path": "com/example/util/Money",
      "probeCount": 2,
      "methods": [
        {"name": "of", "desc": "(J)V", "hash": "m1", "probes": {"first": 0, "last": 1}}
      ]
    }
  ]
}`

const cartRunJSON = `[
  {"className": "com/example/Cart", "probes": [true, true, false, false, false], "testName": "CartTest"}
]`

const moneyRunJSON = `[
  {"className": "com/example/util/Money", "probes": [true, false], "testName": "MoneyTest"},
  {"className": "com/example/Cart", "probes": [false, false, true, false, false], "testName": "MoneyTest"}
]`

func newTestEnv(t *testing.T) *cliEnv {
	t.Helper()
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Storage.Enabled = false

	files := map[string]string{
		"base.json":  baselineModelJSON,
		"model.json": targetModelJSON,
		"cart.json":  cartRunJSON,
		"money.json": moneyRunJSON,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0644))
	}

	return &cliEnv{
		root:    root,
		cfg:     cfg,
		logger:  slogutil.NewDiscardLogger(),
		factory: slogutil.NewLoggerFactory(root, cfg, nil),
		format:  FormatJSON,
	}
}

func TestBundleReport(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.bundleReport(context.Background(), bundleRequest{
		Model:  "model.json",
		Exec:   []string{"cart.json", "money.json"},
		Verify: true,
		Depth:  output.DepthClass,
	})
	require.NoError(t, err)

	assert.Equal(t, "1.5.0", resp.Name)
	assert.Equal(t, calc.Count{Covered: 4, Total: 7}, resp.Count)
	assert.True(t, resp.Verified)
	assert.Empty(t, resp.BundleID)
	require.NotEmpty(t, resp.Rows)
	assert.Equal(t, output.RowBundle, resp.Rows[0].Kind)
}

func TestBundleReport_MissingModel(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.bundleReport(context.Background(), bundleRequest{Exec: []string{"cart.json"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--model is required")
}

func TestBundleReport_SaveAndCompare(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.bundleReport(context.Background(), bundleRequest{
		Model: "model.json",
		Exec:  []string{"cart.json"},
		Group: "checkout",
		Save:  true,
		Depth: output.DepthPackage,
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.BundleID)
	assert.Empty(t, first.ComparedTo)

	second, err := env.bundleReport(context.Background(), bundleRequest{
		Model: "model.json",
		Exec:  []string{"cart.json", "money.json"},
		Group: "checkout",
		Save:  true,
		Depth: output.DepthPackage,
	})
	require.NoError(t, err)
	assert.Equal(t, first.BundleID, second.ComparedTo)
	assert.NotEqual(t, first.BundleID, second.BundleID)

	var arrows []calc.ArrowType
	for _, row := range second.Rows {
		arrows = append(arrows, row.Arrow)
	}
	assert.Contains(t, arrows, calc.ArrowIncrease)
}

func TestDiffReport(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.diffReport("base.json", "model.json", true, true)
	require.NoError(t, err)

	want := &DiffResponseCLI{
		New:        []string{"com/example/Cart.clear()V"},
		Modified:   []string{"com/example/Cart.add()V"},
		Deleted:    []string{},
		Unaffected: []string{"com/example/Cart.total()I", "com/example/util/Money.of(J)V"},
	}
	got := &DiffResponseCLI{New: resp.New, Modified: resp.Modified, Deleted: resp.Deleted, Unaffected: resp.Unaffected}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("diff mismatch (-want +got):\n%s", diff)
	}
	require.NotNil(t, resp.Validation)
	assert.True(t, resp.Validation.Valid)
	assert.NotEqual(t, resp.BaselineID, resp.TargetID)
}

func TestAnalyze_RisksAndTests(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.analyze(context.Background(), analyzeRequest{
		Baseline: "base.json",
		Target:   "model.json",
		Exec:     []string{"cart.json", "money.json"},
	})
	require.NoError(t, err)

	risks := convertRisks(res)
	assert.Equal(t, 2, risks.Summary.Total)
	assert.Equal(t, 1, risks.Summary.New)
	assert.Equal(t, 1, risks.Summary.Modified)
	assert.Equal(t, 1, risks.Summary.Uncovered)

	tests := convertTests(res, true)
	assert.Equal(t, []string{"CartTest"}, tests.Recommended)
	assert.Equal(t, []string{"com/example/Cart.clear()V"}, tests.Unreachable)
}

func TestAnalyze_PinnedBaseline(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.pinBaseline(baseline.Entry{Group: "checkout", Model: "base.json"})
	require.NoError(t, err)

	decl, err := baseline.Load(env.baselinePath())
	require.NoError(t, err)
	entry, ok := decl.Get("checkout")
	require.True(t, ok)
	assert.Equal(t, "1.4.0", entry.Build)
	assert.NotEmpty(t, entry.Inventory)

	res, err := env.analyze(context.Background(), analyzeRequest{
		Group:  "checkout",
		Target: "model.json",
		Exec:   []string{"cart.json"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Summary.Total)
}

func TestAnalyze_NoBaseline(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.analyze(context.Background(), analyzeRequest{
		Target: "model.json",
		Exec:   []string{"cart.json"},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Summary.New)
	assert.Equal(t, 0, res.Summary.Modified)
}

func TestCombineExec(t *testing.T) {
	env := newTestEnv(t)

	t.Run("merge", func(t *testing.T) {
		resp, err := env.combineExec(execMerge, []string{"cart.json", "money.json"}, "merged.json")
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Inputs)
		assert.Equal(t, 2, resp.Records)
		assert.Equal(t, calc.Count{Covered: 4, Total: 7}, resp.Count)

		written, err := probes.LoadFile(filepath.Join(env.root, "merged.json"))
		require.NoError(t, err)
		assert.Len(t, written, 2)
	})

	t.Run("intersect", func(t *testing.T) {
		again := `[{"className": "com/example/Cart", "probes": [true, false, true, false, false]}]`
		require.NoError(t, os.WriteFile(filepath.Join(env.root, "again.json"), []byte(again), 0644))

		resp, err := env.combineExec(execIntersect, []string{"cart.json", "again.json"}, "")
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Records)
		assert.Equal(t, calc.Count{Covered: 1, Total: 5}, resp.Count)

		disjoint, err := env.combineExec(execIntersect, []string{"cart.json", "money.json"}, "")
		require.NoError(t, err)
		assert.Equal(t, 0, disjoint.Records)
	})

	t.Run("no input", func(t *testing.T) {
		_, err := env.combineExec(execMerge, nil, "")
		assert.Error(t, err)
	})
}

func TestCheckModel(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.checkModel("model.json")
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, 2, resp.Packages)
	assert.Equal(t, 2, resp.Classes)
	assert.Equal(t, 4, resp.Methods)
	assert.Equal(t, int64(7), resp.TotalProbes)

	broken := `{"classes": [{"path": "a/B", "probeCount": 3, "methods": [
	  {"name": "m", "desc": "()V", "probes": {"first": 0, "last": 0}}
	]}]}`
	require.NoError(t, os.WriteFile(filepath.Join(env.root, "broken.json"), []byte(broken), 0644))

	resp, err = env.checkModel("broken.json")
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.NotEmpty(t, resp.Error)
}

func TestSnapshots(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.saveSnapshot("checkout", []string{"cart.json"}, false)
	require.NoError(t, err)
	require.Len(t, first.Snapshots, 1)
	assert.Equal(t, uint64(1), first.Snapshots[0].Version)
	assert.Equal(t, 1, first.Snapshots[0].RecordCount)

	second, err := env.saveSnapshot("checkout", []string{"money.json"}, false)
	require.NoError(t, err)
	info := second.Snapshots[0]
	assert.Equal(t, uint64(2), info.Version)
	assert.Equal(t, 2, info.RecordCount)
	assert.Equal(t, calc.Count{Covered: 4, Total: 7}, info.Count)

	fresh, err := env.saveSnapshot("checkout", []string{"money.json"}, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), fresh.Snapshots[0].Version)

	list, err := env.listSnapshots("checkout")
	require.NoError(t, err)
	require.Len(t, list.Snapshots, 3)
	assert.Equal(t, fresh.Snapshots[0].ID, list.Snapshots[0].ID)
}

func TestBundleReport_FromSnapshot(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.saveSnapshot("checkout", []string{"cart.json", "money.json"}, false)
	require.NoError(t, err)

	resp, err := env.bundleReport(context.Background(), bundleRequest{
		Model:        "model.json",
		Group:        "checkout",
		FromSnapshot: true,
		Depth:        output.DepthBundle,
	})
	require.NoError(t, err)
	assert.Equal(t, calc.Count{Covered: 4, Total: 7}, resp.Count)

	_, err = env.bundleReport(context.Background(), bundleRequest{
		Model:        "model.json",
		Group:        "empty",
		FromSnapshot: true,
	})
	assert.Error(t, err)
}

func TestConfigSettings(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Aggregation.Lenient = true

	all, err := configSettings(cfg, false)
	require.NoError(t, err)
	assert.Greater(t, len(all.Settings), 5)

	changed, err := configSettings(cfg, true)
	require.NoError(t, err)
	require.Len(t, changed.Settings, 1)
	assert.Equal(t, "aggregation.lenient", changed.Settings[0].Key)
	assert.Equal(t, true, changed.Settings[0].Value)
	assert.Equal(t, false, changed.Settings[0].Default)
}
