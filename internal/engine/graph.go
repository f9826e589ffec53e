package engine

import "github.com/roach88/convene/internal/ir"

// graph is the arena form of a working set.
//
// Node i is nodes[i]. deps[i] lists the nodes that must be emitted before
// node i: its direct DependsOn targets in declaration order, followed by the
// nodes whose DependentOf edges name i's type.
type graph struct {
	nodes []*ir.Entry
	deps  [][]int
}

// buildGraph resolves the dependency edges of entries by type.
// Targets absent from entries resolve to no nodes.
func buildGraph(entries []*ir.Entry) *graph {
	byType := make(map[ir.TypeID][]int)
	for i, e := range entries {
		if e.IsDelegate() {
			continue
		}
		byType[e.Type()] = append(byType[e.Type()], i)
	}

	direct := make([][]int, len(entries))
	reverse := make([][]int, len(entries))
	for i, e := range entries {
		if e.IsDelegate() {
			continue
		}
		for _, dep := range e.Dependencies() {
			targets := byType[dep.Target]
			switch dep.Direction {
			case ir.DirectionDependsOn:
				direct[i] = append(direct[i], targets...)
			case ir.DirectionDependentOf:
				for _, j := range targets {
					reverse[j] = append(reverse[j], i)
				}
			}
		}
	}

	deps := make([][]int, len(entries))
	for i := range entries {
		if len(direct[i])+len(reverse[i]) == 0 {
			continue
		}
		deps[i] = make([]int, 0, len(direct[i])+len(reverse[i]))
		deps[i] = append(deps[i], direct[i]...)
		deps[i] = append(deps[i], reverse[i]...)
	}

	return &graph{nodes: entries, deps: deps}
}

// edgeCount returns the number of resolved edges.
func (g *graph) edgeCount() int {
	n := 0
	for _, d := range g.deps {
		n += len(d)
	}
	return n
}
