package bundle

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"probecov/internal/calc"
	cverrors "probecov/internal/errors"
	"probecov/internal/model"
	"probecov/internal/probes"
)

func method(name string, first, last int) model.Method {
	return model.Method{Name: name, Desc: "()V", Probes: model.ProbeRange{First: first, Last: last}}
}

func exec(class, bits string) probes.ExecClassData {
	return probes.ExecClassData{ClassName: class, Probes: probes.Parse(bits)}
}

func TestBundleSingleMethod(t *testing.T) {
	tree := model.NewPackageTree("b1", []model.ClassInfo{{
		Path:       "com/example/Foo",
		ProbeCount: 2,
		Methods:    []model.Method{method("foo", 0, 1)},
	}})

	b, err := NewAggregator(Options{}, nil).Bundle(context.Background(), []probes.ExecClassData{exec("com/example/Foo", "11")}, tree)
	require.NoError(t, err)

	assert.Equal(t, calc.NewCount(2, 2), b.Count)
	assert.Equal(t, calc.NewCount(1, 1), b.MethodCount)
	assert.Equal(t, calc.NewCount(1, 1), b.ClassCount)
	assert.Equal(t, calc.NewCount(1, 1), b.PackageCount)
	require.Len(t, b.Packages, 1)
	assert.Equal(t, calc.NewCount(1, 1), b.Packages[0].ClassCount)
	assert.Equal(t, "Foo", b.Packages[0].Classes[0].Name)
}

func TestBundleTwoMethods(t *testing.T) {
	tree := model.NewPackageTree("b1", []model.ClassInfo{{
		Path:       "com/example/Foo",
		ProbeCount: 5,
		Methods:    []model.Method{method("a", 0, 2), method("b", 3, 4)},
	}})

	b, err := NewAggregator(Options{}, nil).Bundle(context.Background(), []probes.ExecClassData{exec("com/example/Foo", "10010")}, tree)
	require.NoError(t, err)

	cls, ok := b.Class("com/example/Foo")
	require.True(t, ok)
	assert.Equal(t, calc.NewCount(2, 5), cls.Count)
	assert.Equal(t, calc.NewCount(1, 3), cls.Methods[0].Count)
	assert.Equal(t, calc.NewCount(1, 2), cls.Methods[1].Count)
	assert.Equal(t, calc.NewCount(2, 2), cls.MethodCount)
}

func TestBundleMergesRecordsOfOneClass(t *testing.T) {
	tree := model.NewPackageTree("", []model.ClassInfo{{
		Path:       "p/A",
		ProbeCount: 4,
		Methods:    []model.Method{method("x", 0, 1), method("y", 2, 3)},
	}})

	b, err := NewAggregator(Options{}, nil).Bundle(context.Background(), []probes.ExecClassData{
		exec("p/A", "1000"),
		exec("p/A", "0100"),
		exec("p/A", "1000"),
	}, tree)
	require.NoError(t, err)

	assert.Equal(t, calc.NewCount(2, 4), b.Count)
	assert.Equal(t, calc.NewCount(1, 2), b.MethodCount)
}

func TestBundleIncludesUnexecutedClasses(t *testing.T) {
	tree := model.NewPackageTree("", []model.ClassInfo{
		{Path: "p/A", ProbeCount: 2, Methods: []model.Method{method("x", 0, 1)}},
		{Path: "q/B", ProbeCount: 3, Methods: []model.Method{method("y", 0, 2)}},
	})

	b, err := NewAggregator(Options{}, nil).Bundle(context.Background(), []probes.ExecClassData{exec("p/A", "01")}, tree)
	require.NoError(t, err)

	assert.Equal(t, tree.TotalCount, b.Count.Total)
	assert.Equal(t, calc.NewCount(1, 5), b.Count)
	assert.Equal(t, calc.NewCount(1, 2), b.ClassCount)
	assert.Equal(t, calc.NewCount(1, 2), b.PackageCount)
	assert.NoError(t, Verify(b))
}

func TestBundleModelMismatch(t *testing.T) {
	tree := model.NewPackageTree("", []model.ClassInfo{
		{Path: "p/A", ProbeCount: 1, Methods: []model.Method{method("x", 0, 0)}},
	})

	_, err := NewAggregator(Options{Lenient: true}, nil).Bundle(context.Background(), []probes.ExecClassData{exec("p/Gone", "1")}, tree)
	require.Error(t, err)
	assert.Equal(t, cverrors.ModelMismatch, cverrors.CodeOf(err))
}

func TestBundleProbeLength(t *testing.T) {
	tree := model.NewPackageTree("", []model.ClassInfo{
		{Path: "p/A", ProbeCount: 3, Methods: []model.Method{method("x", 0, 1), method("y", 2, 2)}},
	})

	tests := []struct {
		name string
		bits string
		want calc.Count
	}{
		{"short", "11", calc.NewCount(2, 3)},
		{"long", "00111", calc.NewCount(1, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name+" rejected by default", func(t *testing.T) {
			_, err := NewAggregator(Options{}, nil).Bundle(context.Background(), []probes.ExecClassData{exec("p/A", tt.bits)}, tree)
			assert.Equal(t, cverrors.MalformedProbeLength, cverrors.CodeOf(err))
		})

		t.Run(tt.name+" normalized when lenient", func(t *testing.T) {
			b, err := NewAggregator(Options{Lenient: true}, nil).Bundle(context.Background(), []probes.ExecClassData{
				exec("p/A", tt.bits),
				exec("p/A", tt.bits),
			}, tree)
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.Count)
			require.Len(t, b.Warnings, 1)
			assert.Equal(t, cverrors.MalformedProbeLength, b.Warnings[0].Code)
			assert.Equal(t, "p/A", b.Warnings[0].Subject)
			assert.NoError(t, Verify(b))
		})
	}
}

func TestBundleRejectsInvalidModel(t *testing.T) {
	tree := model.NewPackageTree("", []model.ClassInfo{
		{Path: "p/A", ProbeCount: 3, Methods: []model.Method{method("x", 0, 1), method("y", 1, 2)}},
	})
	_, err := NewAggregator(Options{}, nil).Bundle(context.Background(), nil, tree)
	assert.Equal(t, cverrors.InvalidModel, cverrors.CodeOf(err))
}

func TestBundleCancelled(t *testing.T) {
	tree := largeTree(20, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAggregator(Options{}, nil).Bundle(ctx, largeExec(tree, 1), tree)
	assert.ErrorIs(t, err, context.Canceled)
}

// largeTree builds packages*classes classes with methods of varying size.
func largeTree(packages, classes int) *model.PackageTree {
	var infos []model.ClassInfo
	for p := 0; p < packages; p++ {
		for c := 0; c < classes; c++ {
			var methods []model.Method
			next := 0
			for m := 0; m < 1+(p+c)%4; m++ {
				size := 1 + (p*7+c*3+m)%5
				methods = append(methods, model.Method{
					Name:   fmt.Sprintf("m%d", m),
					Desc:   "()V",
					Probes: model.ProbeRange{First: next, Last: next + size - 1},
				})
				next += size
			}
			methods = append(methods, model.Method{Name: "abstract", Desc: "()V", Probes: model.EmptyRange(next)})
			infos = append(infos, model.ClassInfo{
				Path:       fmt.Sprintf("pkg%d/C%d", p, c),
				ProbeCount: next,
				Methods:    methods,
			})
		}
	}
	return model.NewPackageTree("large", infos)
}

// largeExec emits one record per test for every other class.
func largeExec(tree *model.PackageTree, tests int) []probes.ExecClassData {
	var out []probes.ExecClassData
	for t := 0; t < tests; t++ {
		for i, cls := range tree.Classes() {
			if i%2 == 1 {
				continue
			}
			p := probes.New(cls.ProbeCount)
			for j := range p {
				p[j] = (i+j+t)%3 == 0
			}
			out = append(out, probes.ExecClassData{
				ClassName: cls.Path,
				Probes:    p,
				TestID:    fmt.Sprintf("test-%d", t),
			})
		}
	}
	return out
}

func TestBundleAdditivityAndDeterminism(t *testing.T) {
	tree := largeTree(12, 9)
	data := largeExec(tree, 3)

	serial, err := NewAggregator(Options{Parallelism: 1}, nil).Bundle(context.Background(), data, tree)
	require.NoError(t, err)
	require.NoError(t, Verify(serial))
	assert.Equal(t, tree.TotalCount, serial.Count.Total)

	for _, workers := range []int{2, 8, 0} {
		parallel, err := NewAggregator(Options{Parallelism: workers}, nil).Bundle(context.Background(), data, tree)
		require.NoError(t, err)
		if diff := cmp.Diff(serial, parallel); diff != "" {
			t.Errorf("parallelism %d changed the result (-serial +parallel):\n%s", workers, diff)
		}
	}
}

func TestBundleByTest(t *testing.T) {
	tree := model.NewPackageTree("", []model.ClassInfo{
		{Path: "p/A", ProbeCount: 2, Methods: []model.Method{method("x", 0, 0), method("y", 1, 1)}},
	})
	data := []probes.ExecClassData{
		{ClassName: "p/A", Probes: probes.Parse("10"), TestID: "t1"},
		{ClassName: "p/A", Probes: probes.Parse("01"), TestName: "named"},
		{ClassName: "p/A", Probes: probes.Parse("10"), TestID: "t1"},
	}

	byTest, err := NewAggregator(Options{}, nil).BundleByTest(context.Background(), data, tree)
	require.NoError(t, err)
	require.Len(t, byTest, 2)

	t1 := byTest["t1"].MethodCounts()
	assert.Equal(t, calc.NewCount(1, 1), t1[model.MethodKey{OwnerClass: "p/A", Name: "x", Desc: "()V"}])
	assert.Equal(t, calc.NewCount(0, 1), t1[model.MethodKey{OwnerClass: "p/A", Name: "y", Desc: "()V"}])
	assert.Equal(t, "named", byTest["named"].Name)
	assert.Equal(t, calc.NewCount(1, 2), byTest["named"].Count)
}

func TestVerifyDetectsBrokenTree(t *testing.T) {
	tree := largeTree(2, 2)
	b, err := NewAggregator(Options{}, nil).Bundle(context.Background(), largeExec(tree, 1), tree)
	require.NoError(t, err)

	b.Packages[1].Classes[0].Methods[0].Count.Total++
	assert.Equal(t, cverrors.InternalError, cverrors.CodeOf(Verify(b)))
}

func TestWalkVisitsEveryLevel(t *testing.T) {
	tree := largeTree(2, 3)
	b, err := NewAggregator(Options{}, nil).Bundle(context.Background(), nil, tree)
	require.NoError(t, err)

	kinds := map[string]int{}
	b.Walk(func(c Counter) {
		switch c.(type) {
		case *BundleCounter:
			kinds["bundle"]++
		case *PackageCounter:
			kinds["package"]++
		case *ClassCounter:
			kinds["class"]++
		case *MethodCounter:
			kinds["method"]++
		}
	})

	assert.Equal(t, 1, kinds["bundle"])
	assert.Equal(t, 2, kinds["package"])
	assert.Equal(t, 6, kinds["class"])
	// every class carries one abstract method, which is not a method unit
	assert.Equal(t, int(b.MethodCount.Total)+6, kinds["method"])
	assert.Equal(t, int64(0), b.Count.Covered)
}

func TestBundleSkipsMethodsWithoutProbes(t *testing.T) {
	tree := model.NewPackageTree("", []model.ClassInfo{
		{Path: "p/A", ProbeCount: 2, Methods: []model.Method{
			method("x", 0, 1),
			{Name: "abs", Desc: "()V", Probes: model.EmptyRange(2)},
		}},
		{Path: "p/Iface", Methods: []model.Method{
			{Name: "run", Desc: "()V", Probes: model.EmptyRange(0)},
		}},
	})
	require.NoError(t, tree.Validate())
	data := []probes.ExecClassData{{ClassName: "p/A", Probes: probes.Parse("10")}}

	b, err := NewAggregator(Options{}, nil).Bundle(context.Background(), data, tree)
	require.NoError(t, err)
	require.NoError(t, Verify(b))

	assert.Equal(t, calc.NewCount(1, 2), b.Count)
	assert.Equal(t, calc.NewCount(1, 1), b.MethodCount)
	assert.Equal(t, calc.NewCount(1, 1), b.ClassCount)
	assert.Equal(t, calc.NewCount(1, 1), b.PackageCount)
	counts := b.MethodCounts()
	assert.Equal(t, calc.Count{}, counts[model.MethodKey{OwnerClass: "p/Iface", Name: "run", Desc: "()V"}])
}
