package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/convene/internal/ir"
)

func TestAnalyzeCyclesAcyclic(t *testing.T) {
	reports := AnalyzeCycles([]ir.Declared{
		{Name: "A"},
		{Name: "B", After: []string{"A"}},
		{Name: "C", After: []string{"B"}, Before: []string{"D"}},
		{Name: "D"},
	})
	assert.Empty(t, reports)
	assert.NotNil(t, reports)
}

func TestAnalyzeCyclesEmpty(t *testing.T) {
	assert.Empty(t, AnalyzeCycles(nil))
}

func TestAnalyzeCyclesMutual(t *testing.T) {
	reports := AnalyzeCycles([]ir.Declared{
		{Name: "Cyclic1"},
		{Name: "Cyclic2", Before: []string{"Cyclic1"}, DependsOn: []string{"Cyclic1"}},
	})
	require.Len(t, reports, 1)
	assert.Equal(t, []string{"Cyclic1", "Cyclic2"}, reports[0].Members)
	assert.Equal(t, []string{"Cyclic1", "Cyclic2", "Cyclic1"}, reports[0].Path)
	assert.Equal(t, "dependency cycle: Cyclic1 -> Cyclic2 -> Cyclic1", reports[0].Message)
}

func TestAnalyzeCyclesSelfLoop(t *testing.T) {
	reports := AnalyzeCycles([]ir.Declared{{Name: "A", After: []string{"A"}}})
	require.Len(t, reports, 1)
	assert.Equal(t, []string{"A", "A"}, reports[0].Path)
}

func TestAnalyzeCyclesReportsEveryCycle(t *testing.T) {
	reports := AnalyzeCycles([]ir.Declared{
		{Name: "X", After: []string{"Y"}},
		{Name: "A", After: []string{"B"}},
		{Name: "B", After: []string{"C"}},
		{Name: "C", DependentOf: []string{"B"}, After: []string{"A"}},
		{Name: "Y", After: []string{"X"}},
		{Name: "Free", After: []string{"Ghost"}},
	})
	require.Len(t, reports, 2)

	assert.Equal(t, []string{"X", "Y"}, reports[0].Members)
	assert.Equal(t, []string{"X", "Y", "X"}, reports[0].Path)

	assert.Equal(t, []string{"A", "B", "C"}, reports[1].Members)
	assert.Equal(t, []string{"A", "B", "C", "A"}, reports[1].Path)
}
