package compose

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/convene/internal/engine"
	"github.com/roach88/convene/internal/ir"
)

type journal struct {
	lines []string
}

type step interface {
	Apply(*journal) error
}

type stepFunc func(*journal) error

type note struct{ text string }

func (n *note) Apply(j *journal) error {
	j.lines = append(j.lines, n.text)
	return nil
}

type failing struct{ err error }

func (f *failing) Apply(*journal) error { return f.err }

type unrelated struct{ id int }

func stepComposer() Composer[*journal, step, stepFunc] {
	return Composer[*journal, step, stepFunc]{
		Convention: func(s step, j *journal) error { return s.Apply(j) },
		Delegate:   func(f stepFunc, j *journal) error { return f(j) },
	}
}

func TestComposer_AppliesInOrder(t *testing.T) {
	var fn stepFunc = func(j *journal) error {
		j.lines = append(j.lines, "delegate")
		return nil
	}

	p := engine.NewProvider(ir.HostUndefined, nil, []any{
		ir.NewEntry(&note{text: "second"}, ir.Metadata{Priority: 2}),
		ir.Delegate(fn, ir.WithPriority(1)),
		ir.NewEntry(&note{text: "first"}, ir.Metadata{Priority: -1}),
	}, nil, nil)

	var j journal
	require.NoError(t, stepComposer().Register(p, ir.HostUndefined, &j))
	assert.Equal(t, []string{"first", "delegate", "second"}, j.lines)
}

func TestComposer_SkipsOtherCapabilities(t *testing.T) {
	calls := 0
	p := engine.NewProvider(ir.HostUndefined, nil, []any{
		&unrelated{id: 1},
		func() {},
		func(*journal) int { calls++; return 0 },
		&note{text: "kept"},
	}, nil, nil)

	var j journal
	require.NoError(t, stepComposer().Register(p, ir.HostUndefined, &j))
	assert.Equal(t, []string{"kept"}, j.lines)
	assert.Zero(t, calls)
}

func TestComposer_FuncLiteralDelegate(t *testing.T) {
	p := engine.NewProvider(ir.HostUndefined, nil, []any{
		&note{text: "convention"},
		func(j *journal) error {
			j.lines = append(j.lines, "literal")
			return nil
		},
	}, nil, nil)

	var j journal
	require.NoError(t, stepComposer().Register(p, ir.HostUndefined, &j))
	assert.Equal(t, []string{"convention", "literal"}, j.lines)
}

func TestComposer_StopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	p := engine.NewProvider(ir.HostUndefined, nil, []any{
		&note{text: "before"},
		&failing{err: boom},
		&note{text: "after"},
	}, nil, nil)

	var j journal
	err := stepComposer().Register(p, ir.HostUndefined, &j)
	assert.Same(t, boom, err)
	assert.Equal(t, []string{"before"}, j.lines)
}

func TestComposer_PropagatesResolutionError(t *testing.T) {
	p := engine.NewProvider(ir.HostUndefined, nil, []any{
		&ir.Declared{Name: "a", After: []string{"b"}},
		&ir.Declared{Name: "b", After: []string{"a"}},
	}, nil, nil)

	var j journal
	err := stepComposer().Register(p, ir.HostUndefined, &j)
	assert.True(t, engine.IsCycleError(err))
	assert.Empty(t, j.lines)
}

func TestComposer_Observer(t *testing.T) {
	var seen []int
	c := stepComposer()
	c.Observer = func(inv Invocation) { seen = append(seen, inv.Index) }

	p := engine.NewProvider(ir.HostUndefined, nil, []any{
		&note{text: "a"},
		&unrelated{id: 1},
		&note{text: "b"},
	}, nil, nil)

	var j journal
	require.NoError(t, c.Register(p, ir.HostUndefined, &j))
	assert.Equal(t, []int{0, 2}, seen)
}

func TestComposer_NilFuncsSkip(t *testing.T) {
	var fn stepFunc = func(j *journal) error {
		j.lines = append(j.lines, "delegate")
		return nil
	}
	c := Composer[*journal, step, stepFunc]{
		Convention: func(s step, j *journal) error { return s.Apply(j) },
	}

	var j journal
	seq := ir.NewSequence([]*ir.Entry{ir.Delegate(fn), ir.NewEntry(&note{text: "conv"}, ir.Metadata{})})
	require.NoError(t, c.Apply(seq, &j))
	assert.Equal(t, []string{"conv"}, j.lines)
}
