package layout

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/tiendc/go-deepcopy"
)

// NumExitBuckets is the number of exit types: C, H, E, L and everything else.
const NumExitBuckets = 5

// ErrMalformed is wrapped by every structure-file parse error.
var ErrMalformed = errors.New("malformed structure file")

// ExitBucket maps an exit-type letter to its bucket index.
func ExitBucket(letter byte) int {
	switch letter {
	case 'C':
		return 0
	case 'H':
		return 1
	case 'E':
		return 2
	case 'L':
		return 3
	default:
		return 4
	}
}

// Access is a named entry or exit vertex.
type Access struct {
	Name   string
	Vertex int
	Type   byte // exit-type letter as written in the structure file
}

// Layout is the parsed structure: grid, graph, parking lists and access points.
// Cells is the only part a simulation mutates; run simulations on a Clone.
type Layout struct {
	Dims        Dims
	EntryCount  int // entries declared in the header
	AccessCount int // access names declared in the header, bookkeeping only

	Cells []Cell
	Graph *Graph

	// ParkingByFloor lists every parking vertex of a floor, in reverse reading order.
	ParkingByFloor [][]int
	FreeParking    int

	Entries []Access
	// Exits is indexed by ExitBucket; each bucket lists exits in reverse file order.
	Exits [][]Access
}

// EntryIndex returns the index in Entries of the entry at vertex v.
func (l *Layout) EntryIndex(v int) (int, bool) {
	for i, e := range l.Entries {
		if e.Vertex == v {
			return i, true
		}
	}
	return -1, false
}

// Clone returns an independent deep copy of the layout.
func (l *Layout) Clone() (*Layout, error) {
	cp := new(Layout)
	if err := deepcopy.Copy(cp, l); err != nil {
		return nil, fmt.Errorf("cloning layout: %w", err)
	}
	return cp, nil
}

type lineReader struct {
	sc   *bufio.Scanner
	line int
}

func (lr *lineReader) next() (string, bool) {
	if !lr.sc.Scan() {
		return "", false
	}
	lr.line++
	return strings.TrimRight(lr.sc.Text(), "\r"), true
}

func (lr *lineReader) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformed, lr.line, fmt.Sprintf(format, args...))
}

func atoiFields(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Parse reads a structure file: a header "N M P E A", then per floor M map rows
// (top row first) followed by an access block terminated by '+' or end of input.
func Parse(r io.Reader) (*Layout, error) {
	lr := &lineReader{sc: bufio.NewScanner(r)}
	lr.sc.Buffer(make([]byte, 0, 4096), 1<<20)

	header, ok := lr.next()
	if !ok {
		if err := lr.sc.Err(); err != nil {
			return nil, fmt.Errorf("reading structure file: %w", err)
		}
		return nil, fmt.Errorf("%w: missing dimensions line", ErrMalformed)
	}
	fields := strings.Fields(header)
	if len(fields) < 5 {
		return nil, lr.errorf("dimensions need 5 integers, got %q", header)
	}
	dims, err := atoiFields(fields[:5])
	if err != nil {
		return nil, lr.errorf("dimensions: %v", err)
	}
	if dims[0] <= 0 || dims[1] <= 0 || dims[2] <= 0 || dims[3] < 0 {
		return nil, lr.errorf("invalid dimensions %v", dims)
	}

	l := &Layout{
		Dims:           Dims{Width: dims[0], Depth: dims[1], Floors: dims[2]},
		EntryCount:     dims[3],
		AccessCount:    dims[4],
		ParkingByFloor: make([][]int, dims[2]),
		Exits:          make([][]Access, NumExitBuckets),
	}
	l.Cells = make([]Cell, l.Dims.Vertices())
	l.Graph = NewGraph(l.Dims.Vertices())

	for floor := 0; floor < l.Dims.Floors; floor++ {
		if err := l.readMap(lr, floor); err != nil {
			return nil, err
		}
		if err := l.readAccesses(lr); err != nil {
			return nil, err
		}
	}
	if err := lr.sc.Err(); err != nil {
		return nil, fmt.Errorf("reading structure file: %w", err)
	}
	for _, bucket := range l.Exits {
		slices.Reverse(bucket)
	}
	return l, nil
}

// readMap reads one floor, linking each cell to the cell above it in the file and
// to its left neighbour. Walls are never linked; neither are two access-like cells.
func (l *Layout) readMap(lr *lineReader, floor int) error {
	n, m := l.Dims.Width, l.Dims.Depth
	var last string
	for y := m - 1; y >= 0; y-- {
		row, ok := lr.next()
		if !ok {
			return fmt.Errorf("%w: floor %d: missing map row %d", ErrMalformed, floor, m-1-y)
		}
		if len(row) < n {
			return lr.errorf("floor %d: map row has %d symbols, want %d", floor, len(row), n)
		}
		for x := 0; x < n; x++ {
			sym := row[x]
			v := l.Dims.Index(x, y, floor)
			l.Cells[v] = Cell{Type: TypeOf(sym)}
			if isWall(sym) {
				continue
			}
			if y != m-1 && !isWall(last[x]) && !(isAccessLike(last[x]) && isAccessLike(sym)) {
				l.Graph.Link(v, l.Dims.Index(x, y+1, floor), PlanarWeight)
			}
			if x != 0 && !isWall(row[x-1]) && !(isAccessLike(row[x-1]) && isAccessLike(sym)) {
				l.Graph.Link(v, l.Dims.Index(x-1, y, floor), PlanarWeight)
			}
			if sym == 'u' && floor+1 < l.Dims.Floors {
				l.Graph.Link(v, l.Dims.Index(x, y, floor+1), VerticalWeight)
			}
			if sym == '.' {
				l.FreeParking++
			}
			if sym == '.' || sym == 'x' {
				l.ParkingByFloor[floor] = append(l.ParkingByFloor[floor], v)
			}
		}
		last = row
	}
	slices.Reverse(l.ParkingByFloor[floor])
	return nil
}

// readAccesses reads "TAG x y z TYPE" records until a line starting with '+'.
// Tags starting with 'E' register entries, tags starting with 'A' register exits.
func (l *Layout) readAccesses(lr *lineReader) error {
	for {
		line, ok := lr.next()
		if !ok || strings.HasPrefix(line, "+") {
			return nil
		}
		if line == "" || (line[0] != 'E' && line[0] != 'A') {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return lr.errorf("access record %q needs a tag and 3 coordinates", line)
		}
		xyz, err := atoiFields(fields[1:4])
		if err != nil {
			return lr.errorf("access %s: %v", fields[0], err)
		}
		if !l.Dims.Contains(xyz[0], xyz[1], xyz[2]) {
			return lr.errorf("access %s at %v lies outside the grid", fields[0], xyz)
		}
		acc := Access{Name: fields[0], Vertex: l.Dims.Index(xyz[0], xyz[1], xyz[2])}
		if len(fields) > 4 {
			acc.Type = fields[4][0]
		}

		if line[0] == 'E' {
			if len(l.Entries) >= l.EntryCount {
				return lr.errorf("entry %s exceeds the %d declared entries", acc.Name, l.EntryCount)
			}
			l.Entries = append(l.Entries, acc)
			continue
		}
		if len(fields) < 5 {
			return lr.errorf("exit %s has no type letter", acc.Name)
		}
		b := ExitBucket(acc.Type)
		l.Exits[b] = append(l.Exits[b], acc)
	}
}
