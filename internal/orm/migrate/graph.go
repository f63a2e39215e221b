package migrate

import (
	"fmt"
	"slices"
	"strings"
)

// dependencyGraph orders tables by their foreign keys
type dependencyGraph struct {
	nodes []string
	edges map[string][]string // table -> principal tables
}

// newDependencyGraph builds the graph over tables. Foreign keys to tables
// outside the set and self references are not dependencies.
func newDependencyGraph(tables []*Table) *dependencyGraph {
	g := &dependencyGraph{edges: make(map[string][]string)}
	known := make(map[string]bool, len(tables))
	for _, t := range tables {
		name := t.QualifiedName()
		g.nodes = append(g.nodes, name)
		known[name] = true
	}
	slices.Sort(g.nodes)

	for _, t := range tables {
		name := t.QualifiedName()
		for _, fk := range t.ForeignKeys {
			principal := qualify(fk.PrincipalSchema, fk.PrincipalTable)
			if principal == name || !known[principal] || slices.Contains(g.edges[name], principal) {
				continue
			}
			g.edges[name] = append(g.edges[name], principal)
		}
		slices.Sort(g.edges[name])
	}
	return g
}

// DetectCycles detects circular dependencies in the graph
func (g *dependencyGraph) DetectCycles() [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	recursionStack := make(map[string]bool)

	var dfs func(node string, path []string) bool
	dfs = func(node string, path []string) bool {
		visited[node] = true
		recursionStack[node] = true
		path = append(path, node)

		for _, neighbor := range g.edges[node] {
			if !visited[neighbor] {
				if dfs(neighbor, path) {
					return true
				}
			} else if recursionStack[neighbor] {
				start := slices.Index(path, neighbor)
				if start >= 0 {
					cycles = append(cycles, slices.Clone(path[start:]))
				}
				return true
			}
		}

		recursionStack[node] = false
		return false
	}

	for _, node := range g.nodes {
		if !visited[node] {
			dfs(node, nil)
		}
	}
	return cycles
}

// TopologicalSort returns tables in dependency order, principal tables first.
// Ties are broken by name.
func (g *dependencyGraph) TopologicalSort() ([]string, error) {
	outDegree := make(map[string]int)
	for _, node := range g.nodes {
		outDegree[node] = len(g.edges[node])
	}

	reverseEdges := make(map[string][]string)
	for _, node := range g.nodes {
		for _, target := range g.edges[node] {
			reverseEdges[target] = append(reverseEdges[target], node)
		}
	}

	var queue []string
	for _, node := range g.nodes {
		if outDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	result := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		var ready []string
		for _, dependent := range reverseEdges[node] {
			outDegree[dependent]--
			if outDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
		slices.Sort(ready)
		queue = append(queue, ready...)
	}

	if len(result) != len(g.nodes) {
		if cycles := g.DetectCycles(); len(cycles) > 0 {
			return nil, fmt.Errorf("circular dependency detected: %s", formatCycles(cycles))
		}
		return nil, fmt.Errorf("circular dependency detected")
	}
	return result, nil
}

// formatCycles formats cycle information for error messages
func formatCycles(cycles [][]string) string {
	var b strings.Builder
	for i, cycle := range cycles {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s -> %s", strings.Join(cycle, " -> "), cycle[0])
	}
	return b.String()
}
