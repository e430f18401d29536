package depgraph

import "slices"

// Requirement names a dependency of a node together with the requirement
// group it was declared in ("run", "dev", "build" or an extra name).
type Requirement struct {
	Name  string
	Group string
}

// NodeSpec describes one package or project to add to a graph.
type NodeSpec struct {
	ID       string
	Requires []Requirement
}

// Build constructs the dependency graph over the given nodes. For every
// requirement whose name matches another node, an edge is added from the
// dependency to the dependent (producer before consumer). Requirements
// naming anything else are external and dropped.
//
// When groups is non-empty, only requirements from those groups produce
// edges: install ordering passes run+dev, publish ordering additionally
// passes build.
func Build(nodes []NodeSpec, groups ...string) (*Graph, error) {
	g := New()
	for _, n := range nodes {
		if err := g.AddNode(n.ID); err != nil {
			return nil, err
		}
	}
	for _, n := range nodes {
		for _, req := range n.Requires {
			if len(groups) > 0 && !slices.Contains(groups, req.Group) {
				continue
			}
			if !g.HasNode(req.Name) {
				continue
			}
			if err := g.AddEdge(Edge{From: req.Name, To: n.ID, Group: req.Group}); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}
