package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/convene/internal/ir"
)

// CycleReport describes one dependency cycle among declared conventions.
type CycleReport struct {
	Members []string `json:"members"` // Conventions in the cycle, in declaration order
	Path    []string `json:"path"`    // Cycle path: ["A", "B", "A"]
	Message string   `json:"message"` // Human-readable description
}

// AnalyzeCycles performs static cycle analysis on declared conventions.
//
// The algorithm:
//  1. Normalize every declaration to "runs after" edges by name; before and
//     dependent_of edges are reversed
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or self-loops as a cycle
//
// Edges to undeclared names are ignored. A DAG returns an empty report list.
// Reports are ordered by the first declared member of each cycle.
func AnalyzeCycles(decls []ir.Declared) []CycleReport {
	if len(decls) == 0 {
		return []CycleReport{}
	}

	g := buildDependencyGraph(decls)
	sccs := tarjanSCC(g)

	reports := []CycleReport{}
	for _, scc := range sccs {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], g)) {
			reports = append(reports, sccToReport(scc, g))
		}
	}

	slices.SortFunc(reports, func(a, b CycleReport) int {
		return g.rank[a.Members[0]] - g.rank[b.Members[0]]
	})
	return reports
}

// dependencyGraph maps a convention name to the names it runs after.
type dependencyGraph struct {
	order []string
	rank  map[string]int
	edges map[string][]string
}

func buildDependencyGraph(decls []ir.Declared) *dependencyGraph {
	g := &dependencyGraph{
		rank:  make(map[string]int),
		edges: make(map[string][]string),
	}
	for _, d := range decls {
		if _, ok := g.rank[d.Name]; ok {
			continue
		}
		g.rank[d.Name] = len(g.order)
		g.order = append(g.order, d.Name)
	}

	add := func(from, to string) {
		if !slices.Contains(g.edges[from], to) {
			g.edges[from] = append(g.edges[from], to)
		}
	}
	for _, d := range decls {
		for _, dep := range d.Dependencies() {
			target := string(dep.Target)
			if _, ok := g.rank[target]; !ok {
				continue
			}
			switch dep.Direction {
			case ir.DirectionDependsOn:
				add(d.Name, target)
			case ir.DirectionDependentOf:
				add(target, d.Name)
			}
		}
	}
	return g
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, g *dependencyGraph) bool {
	return slices.Contains(g.edges[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in declaration order so the result is deterministic.
func tarjanSCC(g *dependencyGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.edges[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack and create an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range g.order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

func sccToReport(scc []string, g *dependencyGraph) CycleReport {
	members := slices.Clone(scc)
	slices.SortFunc(members, func(a, b string) int { return g.rank[a] - g.rank[b] })

	path := reconstructCyclePath(members, g)
	return CycleReport{
		Members: members,
		Path:    path,
		Message: fmt.Sprintf("dependency cycle: %s", strings.Join(path, " -> ")),
	}
}

// reconstructCyclePath returns the shortest path through the SCC that
// starts and ends at its first member.
func reconstructCyclePath(members []string, g *dependencyGraph) []string {
	start := members[0]
	inSCC := make(map[string]bool, len(members))
	for _, m := range members {
		inSCC[m] = true
	}

	prev := make(map[string]string)
	seen := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range g.edges[v] {
			if !inSCC[w] {
				continue
			}
			if w == start {
				var back []string
				for n := v; n != start; n = prev[n] {
					back = append(back, n)
				}
				slices.Reverse(back)
				path := append([]string{start}, back...)
				return append(path, start)
			}
			if !seen[w] {
				seen[w] = true
				prev[w] = v
				queue = append(queue, w)
			}
		}
	}
	return []string{start, start}
}
