// Package depgraph builds directed dependency graphs over the projects of a
// repository and produces deterministic build/install/publish orderings.
//
// An edge A -> B means "A must be installed, built or released before B",
// i.e. B declares a requirement on A. Requirements that do not name another
// known project are external and are not represented in the graph at all.
package depgraph

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// CyclicDependencyError is returned by [Sort] when the graph contains a
// cycle. Remaining holds every node that could not be ordered (the
// strongly-connected remainder, not necessarily a minimal cycle), sorted
// by ID.
type CyclicDependencyError struct {
	Remaining []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency between: %s", strings.Join(e.Remaining, ", "))
}

// Edge is a directed connection between two nodes. Group records which
// requirement group (run, dev, build, or an extra name) produced the edge,
// for diagnostics.
type Edge struct {
	From  string
	To    string
	Group string
}

// Graph is a directed graph keyed by node ID. The zero value is not usable;
// use [New]. Graph is not safe for concurrent use, which is fine: every
// command invocation is single-threaded end to end.
type Graph struct {
	nodes    map[string]bool
	edges    []Edge
	outgoing map[string][]string
	incoming map[string][]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]bool),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode adds a node to the graph.
func (g *Graph) AddNode(id string) error {
	if id == "" {
		return ErrInvalidNodeID
	}
	if g.nodes[id] {
		return ErrDuplicateNodeID
	}
	g.nodes[id] = true
	return nil
}

// HasNode reports whether id is a node of the graph.
func (g *Graph) HasNode(id string) bool { return g.nodes[id] }

// AddEdge adds a directed edge between two existing nodes. Parallel edges
// between the same pair are collapsed (the first Group wins).
func (g *Graph) AddEdge(e Edge) error {
	if !g.nodes[e.From] {
		return ErrUnknownSourceNode
	}
	if !g.nodes[e.To] {
		return ErrUnknownTargetNode
	}
	if slices.Contains(g.outgoing[e.From], e.To) {
		return nil
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// Nodes returns all node IDs sorted ascending.
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Dependents returns the IDs that have an incoming edge from id.
func (g *Graph) Dependents(id string) []string { return g.outgoing[id] }

// Dependencies returns the IDs that id has an incoming edge from.
func (g *Graph) Dependencies(id string) []string { return g.incoming[id] }

// Sort returns the nodes in topological order: for every edge (u, v), u
// appears before v. The order is deterministic: whenever several nodes
// have no remaining unsatisfied predecessors, the one with the smallest
// key(id) is emitted first; never insertion or map order. Pass nil for key
// to order by the IDs themselves.
//
// Returns a *CyclicDependencyError listing all unorderable nodes when the
// graph has a cycle.
func (g *Graph) Sort(key func(id string) string) ([]string, error) {
	if key == nil {
		key = func(id string) string { return id }
	}

	indegree := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		indegree[id] = len(g.incoming[id])
	}

	var frontier []string
	for id, deg := range indegree {
		if deg == 0 {
			frontier = append(frontier, id)
		}
	}

	byKey := func(a, b string) bool {
		ka, kb := key(a), key(b)
		if ka != kb {
			return ka < kb
		}
		return a < b
	}
	sort.Slice(frontier, func(i, j int) bool { return byKey(frontier[i], frontier[j]) })

	order := make([]string, 0, len(g.nodes))
	for len(frontier) > 0 {
		id := frontier[0]
		frontier = frontier[1:]
		order = append(order, id)

		for _, next := range g.outgoing[id] {
			indegree[next]--
			if indegree[next] == 0 {
				// Insert keeping the frontier sorted; graphs here are small.
				pos := sort.Search(len(frontier), func(i int) bool { return byKey(next, frontier[i]) })
				frontier = slices.Insert(frontier, pos, next)
			}
		}
	}

	if len(order) != len(g.nodes) {
		var remaining []string
		for id := range g.nodes {
			if !slices.Contains(order, id) {
				remaining = append(remaining, id)
			}
		}
		slices.Sort(remaining)
		return nil, &CyclicDependencyError{Remaining: remaining}
	}
	return order, nil
}
