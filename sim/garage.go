package sim

import (
	"errors"
	"fmt"

	"github.com/autopark-sim/autopark/sim/layout"
	"github.com/autopark-sim/autopark/sim/path"
	"github.com/autopark-sim/autopark/sim/restriction"
)

var (
	// ErrVehicleNotParked is returned when a departure names a tag with no parked vehicle.
	ErrVehicleNotParked = errors.New("vehicle is not parked")
	// ErrCellNotOccupied is returned when an explicit vacate targets a cell that is not
	// an occupied parking cell, or one held by a tracked vehicle.
	ErrCellNotOccupied = errors.New("cell is not an untracked occupied parking cell")
	// ErrUnknownEntry is returned when an arrival names coordinates with no entry.
	ErrUnknownEntry = errors.New("no entry at coordinates")
	// ErrDuplicateVehicle is returned when a tag arrives while already parked or queued.
	ErrDuplicateVehicle = errors.New("vehicle already in the garage")
	// ErrNoFreeCell is returned by Allocate when no reachable free cell exists.
	ErrNoFreeCell = errors.New("no reachable free parking cell")
)

// access is an entry or exit together with its cached shortest-path tree.
// The tree is recomputed on first use after invalidation.
type access struct {
	layout.Access
	tree  *path.Tree
	valid bool
}

// Allocation describes where a vehicle was parked and how it gets there.
type Allocation struct {
	Cell  int
	Exit  layout.Access
	Cost  int   // entry weight + CostMult * exit weight
	Route []int // entry, ..., Cell, ..., exit
}

// Garage is the mutable state of one simulation run: cell occupancy, restriction
// flags, cached access trees and the parked-vehicle records.
//
// Invariant: every ParkingOccupied cell held by a vehicle has exactly one entry in
// parked, and FreeParking equals the number of ParkingFree cells.
type Garage struct {
	Layout       *layout.Layout
	CostMult     int
	ClosedFloors []bool
	FreeParking  int

	searcher *path.Searcher
	entries  []access
	exits    [][]access
	parked   map[string]int // tag -> cell
	holders  map[int]string // cell -> tag
}

// NewGarage builds a garage on a private copy of l.
func NewGarage(l *layout.Layout, costMult int) (*Garage, error) {
	cp, err := l.Clone()
	if err != nil {
		return nil, err
	}
	v := cp.Dims.Vertices()
	g := &Garage{
		Layout:       cp,
		CostMult:     costMult,
		ClosedFloors: make([]bool, cp.Dims.Floors),
		FreeParking:  cp.FreeParking,
		searcher:     path.NewSearcher(cp.Graph, cp.Dims),
		entries:      make([]access, len(cp.Entries)),
		exits:        make([][]access, len(cp.Exits)),
		parked:       make(map[string]int),
		holders:      make(map[int]string),
	}
	for i, e := range cp.Entries {
		g.entries[i] = access{Access: e, tree: path.NewTree(v)}
	}
	for b, bucket := range cp.Exits {
		g.exits[b] = make([]access, len(bucket))
		for i, a := range bucket {
			g.exits[b][i] = access{Access: a, tree: path.NewTree(v)}
		}
	}
	return g, nil
}

// Cells returns the live cell array.
func (g *Garage) Cells() []layout.Cell {
	return g.Layout.Cells
}

// EntryAt returns the index of the entry at the given coordinates.
func (g *Garage) EntryAt(c layout.Coord) (int, error) {
	d := g.Layout.Dims
	if d.Contains(c.X, c.Y, c.Z) {
		if i, ok := g.Layout.EntryIndex(d.Index(c.X, c.Y, c.Z)); ok {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w %s", ErrUnknownEntry, c)
}

// InvalidateTrees marks every cached access tree stale.
func (g *Garage) InvalidateTrees() {
	for i := range g.entries {
		g.entries[i].valid = false
	}
	for b := range g.exits {
		for i := range g.exits[b] {
			g.exits[b][i].valid = false
		}
	}
}

// ApplyRestrictions refreshes closure flags after the restriction engine reported
// a change. A floor-only change leaves reachability, and so every tree, intact.
func (g *Garage) ApplyRestrictions(e *restriction.Engine, change restriction.Change) {
	switch change {
	case restriction.FloorChanged:
		e.ApplyFloors(g.ClosedFloors)
	case restriction.CellChanged:
		e.ApplyCells(g.Layout.Cells, g.ClosedFloors)
		g.InvalidateTrees()
	}
}

func (g *Garage) treeOf(a *access) *path.Tree {
	if !a.valid {
		g.searcher.GenerateSPT(g.Layout.Cells, a.Vertex, a.tree)
		a.valid = true
	}
	return a.tree
}

// Allocate parks v in the cheapest reachable free cell. Floors are scanned in
// ascending order, cells in parking-list order and exits in bucket order; the
// first minimum wins. Returns ErrNoFreeCell, with no state changed, when nothing fits.
func (g *Garage) Allocate(v *Vehicle) (*Allocation, error) {
	if g.FreeParking <= 0 {
		return nil, ErrNoFreeCell
	}
	if v.Entry < 0 || v.Entry >= len(g.entries) {
		return nil, fmt.Errorf("vehicle %s: entry %d: %w", v.Tag, v.Entry, ErrUnknownEntry)
	}
	entryTree := g.treeOf(&g.entries[v.Entry])
	bucket := g.exits[v.ExitBucket()]
	for i := range bucket {
		g.treeOf(&bucket[i])
	}

	best, bestCost := -1, 0
	var bestExit *access
	for floor, parks := range g.Layout.ParkingByFloor {
		if g.ClosedFloors[floor] {
			continue
		}
		for _, p := range parks {
			cell := g.Layout.Cells[p]
			if cell.Type != layout.ParkingFree || cell.Restricted || !entryTree.Reached(p) {
				continue
			}
			for i := range bucket {
				exit := &bucket[i]
				if !exit.tree.Reached(p) {
					continue
				}
				cost := entryTree.Weight[p] + g.CostMult*exit.tree.Weight[p]
				if best == -1 || cost < bestCost {
					best, bestCost, bestExit = p, cost, exit
				}
			}
		}
	}
	if best == -1 {
		return nil, ErrNoFreeCell
	}

	route, err := path.GetPath(best, entryTree, bestExit.tree)
	if err != nil {
		return nil, fmt.Errorf("vehicle %s: %w", v.Tag, err)
	}
	g.occupy(best, v.Tag)
	return &Allocation{Cell: best, Exit: bestExit.Access, Cost: bestCost, Route: route}, nil
}

func (g *Garage) occupy(cell int, tag string) {
	g.Layout.Cells[cell].Type = layout.ParkingOccupied
	g.FreeParking--
	g.parked[tag] = cell
	g.holders[cell] = tag
}

// Parked returns the cell held by tag.
func (g *Garage) Parked(tag string) (int, bool) {
	cell, ok := g.parked[tag]
	return cell, ok
}

// ParkedCount returns the number of tracked parked vehicles.
func (g *Garage) ParkedCount() int {
	return len(g.parked)
}

// Vacate removes tag's parked-vehicle record and frees its cell.
func (g *Garage) Vacate(tag string) (int, error) {
	cell, ok := g.parked[tag]
	if !ok {
		return -1, fmt.Errorf("departure of %s: %w", tag, ErrVehicleNotParked)
	}
	delete(g.parked, tag)
	delete(g.holders, cell)
	g.free(cell)
	return cell, nil
}

// VacateCell frees a cell that was occupied at load time and has no tracked vehicle.
func (g *Garage) VacateCell(c layout.Coord) (int, error) {
	d := g.Layout.Dims
	if !d.Contains(c.X, c.Y, c.Z) {
		return -1, fmt.Errorf("vacating %s: outside the grid: %w", c, ErrCellNotOccupied)
	}
	cell := d.Index(c.X, c.Y, c.Z)
	if g.Layout.Cells[cell].Type != layout.ParkingOccupied {
		return -1, fmt.Errorf("vacating %s: cell is %s: %w", c, g.Layout.Cells[cell].Type, ErrCellNotOccupied)
	}
	if tag, held := g.holders[cell]; held {
		return -1, fmt.Errorf("vacating %s: held by %s: %w", c, tag, ErrCellNotOccupied)
	}
	g.free(cell)
	return cell, nil
}

func (g *Garage) free(cell int) {
	g.Layout.Cells[cell].Type = layout.ParkingFree
	g.FreeParking++
}
