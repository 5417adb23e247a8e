// SPDX-License-Identifier: MPL-2.0

// Package dag provides directed graph operations over Bakefile targets:
// topological ordering and cycle detection. The executor reports recursion
// cycles with CycleError, and `bake validate` uses Graph to check a whole
// rule file before anything runs.
package dag

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bakebuild/bake/pkg/bakefile"
)

type (
	// CycleError indicates that the graph contains a cycle, preventing topological ordering.
	CycleError struct {
		// Cycle contains the targets that form the cycle. When produced by a
		// traversal the first target is repeated at the end (A -> B -> A).
		Cycle []string
	}

	// Graph is a directed graph for topological sorting.
	// Nodes are identified by target name. An edge from A to B means
	// A must complete before B starts (B depends on A).
	Graph struct {
		// adjacency maps each node to its outgoing neighbors (nodes that depend on it).
		adjacency map[string][]string
		// nodes tracks all nodes in insertion order for deterministic output.
		nodes []string
		// nodeSet provides O(1) lookup for node existence.
		nodeSet map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[string][]string),
		nodeSet:   make(map[string]bool),
	}
}

// FromBakefile builds the dependency graph of every rule in bf. Only the
// first declaration of a target contributes edges, matching rule lookup.
// Dependencies without a rule are included as leaf nodes.
func FromBakefile(bf *bakefile.Bakefile) *Graph {
	g := New()
	seen := make(map[string]bool, len(bf.Rules))
	for _, rule := range bf.Rules {
		if seen[rule.Target] {
			continue
		}
		seen[rule.Target] = true
		g.AddNode(rule.Target)
		for _, dep := range rule.Dependencies {
			g.AddEdge(dep, rule.Target)
		}
	}
	return g
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph) AddNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

// AddEdge adds a directed edge from -> to, meaning "from" must run before "to".
// Both nodes are implicitly added if they don't exist.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.adjacency[from] = append(g.adjacency[from], to)
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.nodes)
}

// TopologicalSort returns a valid execution order using Kahn's algorithm.
// Returns CycleError if the graph contains a cycle.
// The returned order is deterministic: nodes at the same topological level
// appear in the order they were first added to the graph.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = 0
	}
	for _, neighbors := range g.adjacency {
		for _, neighbor := range neighbors {
			inDegree[neighbor]++
		}
	}

	queue := make([]string, 0)
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range g.adjacency[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
			}
		}
	}

	if len(result) != len(g.nodes) {
		// Remaining nodes with non-zero in-degree form the cycle.
		var cycleNodes []string
		for _, node := range g.nodes {
			if inDegree[node] > 0 {
				cycleNodes = append(cycleNodes, node)
			}
		}
		return nil, &CycleError{Cycle: cycleNodes}
	}

	return result, nil
}

// CyclePath builds the CycleError for a traversal stack that re-entered
// target. The returned cycle starts at the first occurrence of target.
func CyclePath(stack []string, target string) *CycleError {
	start := slices.Index(stack, target)
	if start < 0 {
		start = 0
	}
	cycle := append(slices.Clone(stack[start:]), target)
	return &CycleError{Cycle: cycle}
}
