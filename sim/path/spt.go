// Package path computes shortest-path trees over a parking-structure graph and
// stitches entry and exit trees into a single route through a parking cell.
package path

import (
	"container/heap"
	"errors"
	"fmt"

	"github.com/autopark-sim/autopark/sim/layout"
)

const (
	Unreached = -1 // parent and weight of a vertex the search never touched
	Blocked   = -2 // parent of a vertex that was reached but is invalid or restricted
)

// ErrUnreachable is returned when a route is requested through a vertex one of
// the trees does not reach.
var ErrUnreachable = errors.New("vertex not reachable")

// Tree is a shortest-path tree rooted at one access point. Parent[root] == root.
type Tree struct {
	Parent []int
	Weight []int
}

// NewTree allocates a tree for v vertices with every vertex unreached.
func NewTree(v int) *Tree {
	t := &Tree{Parent: make([]int, v), Weight: make([]int, v)}
	t.reset()
	return t
}

func (t *Tree) reset() {
	for i := range t.Parent {
		t.Parent[i] = Unreached
		t.Weight[i] = Unreached
	}
}

// Reached reports whether v has a finite weight in the tree.
func (t *Tree) Reached(v int) bool {
	return t.Weight[v] != Unreached
}

// Root returns the vertex the tree was grown from, or Unreached for an empty tree.
func (t *Tree) Root() int {
	for v, p := range t.Parent {
		if p == v {
			return v
		}
	}
	return Unreached
}

type fringeItem struct {
	vertex int
	weight int
}

// fringe implements heap.Interface as a min-heap on cumulative weight.
type fringe []fringeItem

func (f fringe) Len() int           { return len(f) }
func (f fringe) Less(i, j int) bool { return f[i].weight < f[j].weight }
func (f fringe) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }

func (f *fringe) Push(x any) {
	*f = append(*f, x.(fringeItem))
}

func (f *fringe) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[0 : n-1]
	return item
}

// Searcher runs priority-first searches over one graph, reusing its fringe.
type Searcher struct {
	graph  *layout.Graph
	dims   layout.Dims
	fringe fringe
}

// NewSearcher creates a searcher for the given graph and grid dimensions.
func NewSearcher(g *layout.Graph, dims layout.Dims) *Searcher {
	return &Searcher{graph: g, dims: dims, fringe: make(fringe, 0, g.V())}
}

// GenerateSPT fills tree with the shortest-path tree from source over the current
// cell state. A restricted source yields an empty tree. Invalid and restricted
// vertices are marked Blocked and never expanded; parking cells are reached but
// never expanded. An elevator cell entered from its own floor may only continue
// vertically. Edge weights are 1 or 2, so the first settlement of a vertex in
// priority order is final.
func (s *Searcher) GenerateSPT(cells []layout.Cell, source int, tree *Tree) {
	tree.reset()
	s.fringe = s.fringe[:0]

	if !cells[source].Restricted {
		tree.Parent[source] = source
		tree.Weight[source] = 0
		heap.Push(&s.fringe, fringeItem{vertex: source, weight: 0})
	}

	for s.fringe.Len() > 0 {
		cur := heap.Pop(&s.fringe).(fringeItem).vertex
		curType := cells[cur].Type
		enteredFlat := s.dims.Floor(tree.Parent[cur]) == s.dims.Floor(cur)

		for _, e := range s.graph.Neighbors(cur) {
			adj := e.To
			if tree.Parent[adj] != Unreached {
				continue
			}
			adjCell := cells[adj]
			if adjCell.Restricted || adjCell.Type == layout.Invalid {
				tree.Parent[adj] = Blocked
				continue
			}
			if curType == layout.ElevatorUp && adjCell.Type != layout.ElevatorDown && enteredFlat {
				continue
			}
			if curType == layout.ElevatorDown && adjCell.Type != layout.ElevatorUp && enteredFlat {
				continue
			}

			tree.Parent[adj] = cur
			tree.Weight[adj] = tree.Weight[cur] + e.Weight
			if !adjCell.Type.IsParking() {
				heap.Push(&s.fringe, fringeItem{vertex: adj, weight: tree.Weight[adj]})
			}
		}
	}
}

// GetPath stitches the route entry -> park -> exit: the entry segment is walked
// backwards from park along entryTree, the exit segment forwards along exitTree.
// The result starts at entryTree's root and ends at exitTree's root.
func GetPath(park int, entryTree, exitTree *Tree) ([]int, error) {
	if !entryTree.Reached(park) || !exitTree.Reached(park) {
		return nil, fmt.Errorf("stitching route through %d: %w", park, ErrUnreachable)
	}

	var toEntry []int
	for v := entryTree.Parent[park]; ; v = entryTree.Parent[v] {
		toEntry = append(toEntry, v)
		if entryTree.Parent[v] == v {
			break
		}
	}

	route := make([]int, 0, len(toEntry)+exitTree.Weight[park]+1)
	for i := len(toEntry) - 1; i >= 0; i-- {
		route = append(route, toEntry[i])
	}
	route = append(route, park)
	for v := exitTree.Parent[park]; ; v = exitTree.Parent[v] {
		route = append(route, v)
		if exitTree.Parent[v] == v {
			break
		}
	}
	return route, nil
}
