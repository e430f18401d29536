package depgraph

import (
	"encoding/json"
	"fmt"
	"io"
)

type jsonGraph struct {
	Nodes []string   `json:"nodes"`
	Edges []jsonEdge `json:"edges"`
}

type jsonEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Group string `json:"group,omitempty"`
}

// WriteJSON encodes the graph as JSON and writes it to w. Nodes are emitted
// sorted and edges in insertion order, so output is deterministic for a
// given repository state.
func (g *Graph) WriteJSON(w io.Writer) error {
	out := jsonGraph{
		Nodes: g.Nodes(),
		Edges: make([]jsonEdge, len(g.edges)),
	}
	for i, e := range g.edges {
		out.Edges[i] = jsonEdge{From: e.From, To: e.To, Group: e.Group}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a graph previously written with [Graph.WriteJSON].
func ReadJSON(r io.Reader) (*Graph, error) {
	var in jsonGraph
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := New()
	for _, id := range in.Nodes {
		if err := g.AddNode(id); err != nil {
			return nil, fmt.Errorf("node %q: %w", id, err)
		}
	}
	for _, e := range in.Edges {
		if err := g.AddEdge(Edge{From: e.From, To: e.To, Group: e.Group}); err != nil {
			return nil, fmt.Errorf("edge %s -> %s: %w", e.From, e.To, err)
		}
	}
	return g, nil
}
