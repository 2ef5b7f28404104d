package path

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopark-sim/autopark/sim/layout"
)

func mustParse(t *testing.T, lines ...string) *layout.Layout {
	t.Helper()
	l, err := layout.Parse(strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	return l
}

func smallGarage(t *testing.T) *layout.Layout {
	return mustParse(t,
		"3 3 1 1 2",
		"  a",
		" . ",
		"e  ",
		"E1 0 0 0 C",
		"A1 2 2 0 C",
		"+",
	)
}

func TestGenerateSPT_SmallGarage_EntryAndExitTrees(t *testing.T) {
	// GIVEN the 3x3 garage with entry 0, park 4 and exit 8
	l := smallGarage(t)
	s := NewSearcher(l.Graph, l.Dims)

	// WHEN trees are grown from the entry and from the exit
	entry := NewTree(l.Dims.Vertices())
	exit := NewTree(l.Dims.Vertices())
	s.GenerateSPT(l.Cells, 0, entry)
	s.GenerateSPT(l.Cells, 8, exit)

	// THEN the park is two moves from both, reached through the expected parents
	assert.Equal(t, 0, entry.Root())
	assert.Equal(t, 2, entry.Weight[4])
	assert.Equal(t, 1, entry.Parent[4])
	assert.Equal(t, Blocked, entry.Parent[8], "the exit marker blocks the entry search")
	assert.Equal(t, Unreached, entry.Weight[8])

	assert.Equal(t, 8, exit.Root())
	assert.Equal(t, 2, exit.Weight[4])
	assert.Equal(t, 5, exit.Parent[4])
	assert.Equal(t, Blocked, exit.Parent[0])
}

func TestGenerateSPT_ParkingCell_IsNotAThoroughfare(t *testing.T) {
	// GIVEN a single row where the only way to the last cell crosses a parking cell
	l := mustParse(t, "4 1 1 1 0", "e . ", "E1 0 0 0 C", "+")
	s := NewSearcher(l.Graph, l.Dims)
	tree := NewTree(l.Dims.Vertices())

	s.GenerateSPT(l.Cells, 0, tree)

	// THEN the parking cell is reached but nothing beyond it
	assert.Equal(t, 2, tree.Weight[2])
	assert.Equal(t, Unreached, tree.Weight[3])
	assert.Equal(t, Unreached, tree.Parent[3])
}

func TestGenerateSPT_RestrictedCells(t *testing.T) {
	l := smallGarage(t)
	s := NewSearcher(l.Graph, l.Dims)
	tree := NewTree(l.Dims.Vertices())

	t.Run("restricted park is blocked", func(t *testing.T) {
		cells := append([]layout.Cell(nil), l.Cells...)
		cells[4].Restricted = true
		s.GenerateSPT(cells, 0, tree)
		assert.Equal(t, Blocked, tree.Parent[4])
		assert.False(t, tree.Reached(4))
		assert.True(t, tree.Reached(7), "the park is not needed to reach the far aisle")
	})

	t.Run("restricted source grows nothing", func(t *testing.T) {
		cells := append([]layout.Cell(nil), l.Cells...)
		cells[0].Restricted = true
		s.GenerateSPT(cells, 0, tree)
		for v := range tree.Parent {
			assert.Equal(t, Unreached, tree.Parent[v])
			assert.Equal(t, Unreached, tree.Weight[v])
		}
		assert.Equal(t, Unreached, tree.Root())
	})
}

func TestGenerateSPT_ElevatorUp_CannotBeSameFloorPassThrough(t *testing.T) {
	// GIVEN an up cell between the entry and the park; crossing it flat would
	// reach the park in 2 moves, the legal detour around it takes 4
	l := mustParse(t,
		"3 3 2 1 0",
		"   ",
		"eu.",
		"   ",
		"E1 0 1 0 C",
		"+",
		"   ",
		" d ",
		"   ",
		"+",
	)
	s := NewSearcher(l.Graph, l.Dims)
	tree := NewTree(l.Dims.Vertices())
	up := l.Dims.Index(1, 1, 0)
	down := l.Dims.Index(1, 1, 1)
	park := l.Dims.Index(2, 1, 0)

	// WHEN the entry tree is grown
	s.GenerateSPT(l.Cells, l.Dims.Index(0, 1, 0), tree)

	// THEN the park is reached by the longer planar detour
	assert.Equal(t, 4, tree.Weight[park])
	assert.NotEqual(t, up, tree.Parent[park])
	// AND the up cell only continues vertically
	assert.Equal(t, up, tree.Parent[down])
	assert.Equal(t, 3, tree.Weight[down])
	for _, v := range []int{l.Dims.Index(1, 0, 0), l.Dims.Index(1, 2, 0)} {
		assert.NotEqual(t, up, tree.Parent[v], "aisle cell %v entered through the elevator", l.Dims.Coord(v))
	}
	// AND the floor above is open beyond the down cell
	assert.Equal(t, 4, tree.Weight[l.Dims.Index(0, 1, 1)])
	assert.Equal(t, down, tree.Parent[l.Dims.Index(0, 1, 1)])
}

// referenceDistances is a plain Dijkstra without elevator rules: invalid vertices
// other than the source are unreachable and parking vertices are not expanded.
func referenceDistances(l *layout.Layout, source int) []int {
	dist := make([]int, l.Dims.Vertices())
	for i := range dist {
		dist[i] = Unreached
	}
	done := make([]bool, len(dist))
	dist[source] = 0
	for {
		cur := -1
		for v := range dist {
			if !done[v] && dist[v] != Unreached && (cur == -1 || dist[v] < dist[cur]) {
				cur = v
			}
		}
		if cur == -1 {
			return dist
		}
		done[cur] = true
		if cur != source && l.Cells[cur].Type.IsParking() {
			continue
		}
		for _, e := range l.Graph.Neighbors(cur) {
			if l.Cells[e.To].Type == layout.Invalid {
				continue
			}
			if d := dist[cur] + e.Weight; dist[e.To] == Unreached || d < dist[e.To] {
				dist[e.To] = d
			}
		}
	}
}

func randomFloor(rng *rand.Rand, n, m int) []string {
	symbols := []byte{' ', ' ', ' ', '@', '.'}
	rows := make([]string, m)
	for y := range rows {
		row := make([]byte, n)
		for x := range row {
			row[x] = symbols[rng.Intn(len(symbols))]
		}
		rows[y] = string(row)
	}
	// the entry sits at (0,0), the last file row
	last := []byte(rows[m-1])
	last[0] = 'e'
	rows[m-1] = string(last)
	return rows
}

func TestGenerateSPT_RandomGrids_MatchReferenceDijkstra(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		n, m := 3+rng.Intn(5), 3+rng.Intn(5)
		lines := append([]string{fmt.Sprintf("%d %d 1 1 0", n, m)}, randomFloor(rng, n, m)...)
		lines = append(lines, "E1 0 0 0 C", "+")
		l := mustParse(t, lines...)

		tree := NewTree(l.Dims.Vertices())
		NewSearcher(l.Graph, l.Dims).GenerateSPT(l.Cells, 0, tree)
		want := referenceDistances(l, 0)

		for v := range want {
			require.Equal(t, want[v], tree.Weight[v], "trial %d vertex %v", trial, l.Dims.Coord(v))
			if v != 0 && tree.Reached(v) {
				p := tree.Parent[v]
				require.True(t, l.Graph.Adjacent(p, v), "parent of %d is not adjacent", v)
				require.Equal(t, tree.Weight[p]+1, tree.Weight[v])
			}
		}
	}
}

func TestGetPath_RoundTrip_ConnectsEntryToExit(t *testing.T) {
	// GIVEN trees from the entry and the exit
	l := smallGarage(t)
	s := NewSearcher(l.Graph, l.Dims)
	entry := NewTree(l.Dims.Vertices())
	exit := NewTree(l.Dims.Vertices())
	s.GenerateSPT(l.Cells, 0, entry)
	s.GenerateSPT(l.Cells, 8, exit)

	// WHEN the route through the park is stitched
	route, err := GetPath(4, entry, exit)
	require.NoError(t, err)

	// THEN it runs from the entry root to the exit root through adjacent vertices
	assert.Equal(t, []int{0, 1, 4, 5, 8}, route)
	assert.Equal(t, entry.Root(), route[0])
	assert.Equal(t, exit.Root(), route[len(route)-1])
	for i := 1; i < len(route); i++ {
		assert.True(t, l.Graph.Adjacent(route[i-1], route[i]), "step %d", i)
	}
	assert.Len(t, route, entry.Weight[4]+exit.Weight[4]+1)
}

func TestGetPath_UnreachedPark_ReturnsErrUnreachable(t *testing.T) {
	l := smallGarage(t)
	s := NewSearcher(l.Graph, l.Dims)
	entry := NewTree(l.Dims.Vertices())
	exit := NewTree(l.Dims.Vertices())
	s.GenerateSPT(l.Cells, 0, entry)

	_, err := GetPath(4, entry, exit)
	assert.True(t, errors.Is(err, ErrUnreachable))
}
