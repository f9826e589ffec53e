package engine

import (
	"cmp"
	"slices"

	"github.com/roach88/convene/internal/ir"
)

// visitState is the DFS mark of a node.
type visitState uint8

const (
	unvisited visitState = iota
	inProgress
	done
)

// sortByPriority returns entries stably sorted by ascending priority.
func sortByPriority(entries []*ir.Entry) []*ir.Entry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b *ir.Entry) int {
		return cmp.Compare(a.Priority(), b.Priority())
	})
	return out
}

// topoSort emits the nodes of g so that every node follows its dependencies.
//
// Roots are visited in node order and dependencies in edge order, so the
// result is fully determined by the input. The first edge that reaches an
// in-progress node fails the sort with a cycle error.
func topoSort(g *graph) ([]*ir.Entry, error) {
	s := &sorter{
		g:     g,
		state: make([]visitState, len(g.nodes)),
		out:   make([]*ir.Entry, 0, len(g.nodes)),
	}
	for i := range g.nodes {
		if err := s.visit(i); err != nil {
			return nil, err
		}
	}
	return s.out, nil
}

type sorter struct {
	g     *graph
	state []visitState
	stack []int
	out   []*ir.Entry
}

func (s *sorter) visit(i int) error {
	switch s.state[i] {
	case done:
		return nil
	case inProgress:
		return s.cycleAt(i)
	}

	s.state[i] = inProgress
	s.stack = append(s.stack, i)
	for _, j := range s.g.deps[i] {
		if err := s.visit(j); err != nil {
			return err
		}
	}
	s.stack = s.stack[:len(s.stack)-1]
	s.state[i] = done
	s.out = append(s.out, s.g.nodes[i])
	return nil
}

// cycleAt builds the error for a revisit of node i. The path runs from i
// along the visit stack and back to i.
func (s *sorter) cycleAt(i int) error {
	start := slices.Index(s.stack, i)
	path := make([]string, 0, len(s.stack)-start+1)
	for _, n := range s.stack[start:] {
		path = append(path, s.g.nodes[n].Name())
	}
	path = append(path, s.g.nodes[i].Name())
	return NewCycleError(s.g.nodes[i].Name(), path)
}
