// Package linkgraph provides directed graph operations over document
// cross-links. Unlike a dependency DAG, link graphs may contain cycles
// (two articles referencing each other is normal), so the operations
// here are reachability and depth rather than topological order.
package linkgraph

import (
	"fmt"
	"sort"
)

// Graph represents the cross-link structure of a documentation set.
// Nodes are document paths relative to the docs root; an edge from A
// to B means A contains at least one link to B.
type Graph struct {
	nodes    map[string]bool
	outbound map[string][]string // doc -> docs it links to
	inbound  map[string][]string // doc -> docs that link to it
}

// New creates a new empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]bool),
		outbound: make(map[string][]string),
		inbound:  make(map[string][]string),
	}
}

// AddDoc adds a document to the graph. Adding an existing document is a no-op.
func (g *Graph) AddDoc(path string) {
	if !g.nodes[path] {
		g.nodes[path] = true
		g.outbound[path] = []string{}
		g.inbound[path] = []string{}
	}
}

// AddLink adds a directed edge from one document to another. Both
// documents must already be in the graph. Self-links are ignored;
// duplicate links collapse to a single edge.
func (g *Graph) AddLink(from, to string) error {
	if !g.nodes[from] {
		return fmt.Errorf("document %q not in graph", from)
	}
	if !g.nodes[to] {
		return fmt.Errorf("document %q not in graph", to)
	}
	if from == to {
		return nil
	}

	if !contains(g.outbound[from], to) {
		g.outbound[from] = append(g.outbound[from], to)
	}
	if !contains(g.inbound[to], from) {
		g.inbound[to] = append(g.inbound[to], from)
	}
	return nil
}

// Has reports whether the document is in the graph.
func (g *Graph) Has(path string) bool {
	return g.nodes[path]
}

// LinksFrom returns the documents the given document links to.
func (g *Graph) LinksFrom(path string) []string {
	return g.outbound[path]
}

// LinksTo returns the documents that link to the given document.
func (g *Graph) LinksTo(path string) []string {
	return g.inbound[path]
}

// Paths returns all document paths in the graph, sorted.
func (g *Graph) Paths() []string {
	paths := make([]string, 0, len(g.nodes))
	for p := range g.nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// NodeCount returns the number of documents in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct links in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, targets := range g.outbound {
		count += len(targets)
	}
	return count
}

// Reachable returns the set of documents reachable from start by
// following links, including start itself. An unknown start yields an
// empty set.
func (g *Graph) Reachable(start string) map[string]bool {
	reached := make(map[string]bool)
	if !g.nodes[start] {
		return reached
	}

	queue := []string{start}
	reached[start] = true
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range g.outbound[current] {
			if !reached[next] {
				reached[next] = true
				queue = append(queue, next)
			}
		}
	}
	return reached
}

// Depths returns the shortest link distance from start to every
// reachable document. Start itself has depth 0.
func (g *Graph) Depths(start string) map[string]int {
	depths := make(map[string]int)
	if !g.nodes[start] {
		return depths
	}

	queue := []string{start}
	depths[start] = 0
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range g.outbound[current] {
			if _, seen := depths[next]; !seen {
				depths[next] = depths[current] + 1
				queue = append(queue, next)
			}
		}
	}
	return depths
}

// MaxDepth returns the greatest shortest-path distance from start to
// any reachable document. A lone document has depth 0.
func (g *Graph) MaxDepth(start string) int {
	max := 0
	for _, d := range g.Depths(start) {
		if d > max {
			max = d
		}
	}
	return max
}

// Unreachable returns the documents that cannot be reached from start,
// sorted. Start itself is never included.
func (g *Graph) Unreachable(start string) []string {
	reached := g.Reachable(start)
	var orphans []string
	for p := range g.nodes {
		if !reached[p] {
			orphans = append(orphans, p)
		}
	}
	sort.Strings(orphans)
	return orphans
}

// Roots returns documents with no inbound links, sorted. These are the
// natural entry points of the set.
func (g *Graph) Roots() []string {
	var roots []string
	for p := range g.nodes {
		if len(g.inbound[p]) == 0 {
			roots = append(roots, p)
		}
	}
	sort.Strings(roots)
	return roots
}

// Leaves returns documents with no outbound links, sorted.
func (g *Graph) Leaves() []string {
	var leaves []string
	for p := range g.nodes {
		if len(g.outbound[p]) == 0 {
			leaves = append(leaves, p)
		}
	}
	sort.Strings(leaves)
	return leaves
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
