package layout

const (
	PlanarWeight   = 1 // move between neighbouring cells of one floor
	VerticalWeight = 2 // elevator move between floors
)

// Edge is one adjacency entry.
type Edge struct {
	To     int
	Weight int
}

// Graph is an undirected, edge-weighted graph with one vertex per grid cell.
// It is built once at load time and never mutated afterwards.
type Graph struct {
	Adj [][]Edge
}

// NewGraph allocates a graph with v isolated vertices.
func NewGraph(v int) *Graph {
	return &Graph{Adj: make([][]Edge, v)}
}

// V returns the vertex count.
func (g *Graph) V() int {
	return len(g.Adj)
}

// Link inserts an undirected edge between a and b.
// Neighbour lists are kept newest link first; search tie-breaks depend on it.
func (g *Graph) Link(a, b, weight int) {
	g.Adj[a] = append([]Edge{{To: b, Weight: weight}}, g.Adj[a]...)
	g.Adj[b] = append([]Edge{{To: a, Weight: weight}}, g.Adj[b]...)
}

// Neighbors returns the adjacency list of v. Callers must not modify it.
func (g *Graph) Neighbors(v int) []Edge {
	return g.Adj[v]
}

// Adjacent reports whether a and b share an edge.
func (g *Graph) Adjacent(a, b int) bool {
	for _, e := range g.Adj[a] {
		if e.To == b {
			return true
		}
	}
	return false
}
