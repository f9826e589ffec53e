package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/convene/internal/ir"
	"github.com/roach88/convene/internal/testutil"
)

func entries(t *testing.T, cs ...any) []*ir.Entry {
	t.Helper()
	out := make([]*ir.Entry, 0, len(cs))
	for _, c := range cs {
		e, ok := ir.FromContribution(c)
		require.True(t, ok)
		out = append(out, e)
	}
	return out
}

func TestBuildGraph_DirectThenReverse(t *testing.T) {
	g := buildGraph(entries(t,
		testutil.Convention("target", testutil.After("x", "y")),
		testutil.Convention("x"),
		testutil.Convention("y"),
		testutil.Convention("z", testutil.Before("target")),
		testutil.Convention("w", testutil.DependentOf("target")),
	))

	assert.Equal(t, []int{1, 2, 3, 4}, g.deps[0])
	assert.Empty(t, g.deps[1])
	assert.Empty(t, g.deps[3])
	assert.Equal(t, 4, g.edgeCount())
}

func TestBuildGraph_DelegatesHaveNoEdges(t *testing.T) {
	fn := func() {}
	g := buildGraph(entries(t,
		fn,
		testutil.Convention("a", testutil.After(string(ir.TypeIDOf(fn)))),
		testutil.Convention("b", testutil.Before(string(ir.TypeIDOf(fn)))),
	))

	assert.Zero(t, g.edgeCount())
}

func TestTopoSort_EmitsDependenciesFirst(t *testing.T) {
	g := buildGraph(entries(t,
		testutil.Convention("c", testutil.After("b")),
		testutil.Convention("b", testutil.After("a")),
		testutil.Convention("a"),
	))

	out, err := topoSort(g)
	require.NoError(t, err)

	names := make([]string, len(out))
	for i, e := range out {
		names[i] = e.Name()
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestTopoSort_CyclePath(t *testing.T) {
	g := buildGraph(entries(t,
		testutil.Convention("root", testutil.After("a")),
		testutil.Convention("a", testutil.After("b")),
		testutil.Convention("b", testutil.After("c")),
		testutil.Convention("c", testutil.After("a")),
	))

	out, err := topoSort(g)
	assert.Nil(t, out)

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "a", ce.Node)
	assert.Equal(t, []string{"a", "b", "c", "a"}, ce.Path)
}

func TestSortByPriority_Stable(t *testing.T) {
	in := entries(t, testutil.Convention("a", testutil.Priority(1)), testutil.Convention("b"), testutil.Convention("c", testutil.Priority(1)), testutil.Convention("d", testutil.Priority(-3)))
	out := sortByPriority(in)

	names := make([]string, len(out))
	for i, e := range out {
		names[i] = e.Name()
	}
	assert.Equal(t, []string{"d", "b", "a", "c"}, names)
	assert.Equal(t, "a", in[0].Name(), "input is not reordered")
}

func TestConfigError_Message(t *testing.T) {
	assert.Equal(t, "UNKNOWN_HOST_TYPE: unknown host type host(9)", newUnknownHostError(ir.HostType(9)).Error())
	assert.Equal(t,
		"CYCLIC_DEPENDENCY: convention dependency graph contains a cycle (node=a, path=a -> a)",
		NewCycleError("a", []string{"a", "a"}).Error(),
	)
}
