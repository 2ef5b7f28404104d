// Package restriction tracks scheduled floor and cell closures and reports, as the
// simulation clock advances, whether the active closure set changed.
package restriction

import (
	"slices"

	"github.com/autopark-sim/autopark/sim/layout"
)

// Kind selects a restriction domain.
type Kind int

const (
	FloorKind Kind = iota // closes a whole floor to new allocations
	CellKind              // makes a single vertex unreachable
)

func (k Kind) String() string {
	if k == FloorKind {
		return "floor"
	}
	return "cell"
}

// Restriction closes Target (a floor index or a vertex id) from Start until End.
// End == 0 means the restriction never ends.
type Restriction struct {
	Start  int64
	End    int64
	Target int
}

type status int

const (
	pending status = iota
	inEffect
	ended
)

func (r Restriction) statusAt(t int64) status {
	if t < r.Start {
		return pending
	}
	if r.End != 0 && t >= r.End {
		return ended
	}
	return inEffect
}

// Change reports how much of the active restriction set moved on Advance.
type Change int

const (
	NoChange     Change = iota
	FloorChanged        // only floor restrictions changed
	CellChanged         // cell restrictions changed, floors may have too
)

func (c Change) String() string {
	switch c {
	case FloorChanged:
		return "floor-changed"
	case CellChanged:
		return "cell-changed"
	default:
		return "no-change"
	}
}

// domain holds one kind of restriction: scheduled, active, and the sorted,
// duplicate-free instants at which any of them starts or ends.
type domain struct {
	onHold   []Restriction
	active   []Restriction
	instants []int64
}

func (d *domain) add(r Restriction) {
	d.onHold = append(d.onHold, r)
	if r.End != 0 {
		d.addInstant(r.End)
	}
	d.addInstant(r.Start)
}

func (d *domain) addInstant(t int64) {
	i, found := slices.BinarySearch(d.instants, t)
	if !found {
		d.instants = slices.Insert(d.instants, i, t)
	}
}

// advance pops every instant <= t and reclassifies the records. It reports
// whether any instant was passed.
func (d *domain) advance(t int64) bool {
	passed := 0
	for passed < len(d.instants) && d.instants[passed] <= t {
		passed++
	}
	if passed == 0 {
		return false
	}
	d.instants = d.instants[passed:]

	d.active = slices.DeleteFunc(d.active, func(r Restriction) bool {
		return r.statusAt(t) == ended
	})
	var waiting []Restriction
	for _, r := range d.onHold {
		switch r.statusAt(t) {
		case pending:
			waiting = append(waiting, r)
		case inEffect:
			d.active = append(d.active, r)
		}
		// started and ended between two processed ticks: dropped
	}
	d.onHold = waiting
	return true
}

// Engine owns both restriction domains and the clock they were last advanced to.
type Engine struct {
	floors domain
	cells  domain
	clock  int64
}

// NewEngine returns an engine with no restrictions whose clock precedes tick 0.
func NewEngine() *Engine {
	return &Engine{clock: -1}
}

// Add schedules a restriction.
func (e *Engine) Add(kind Kind, r Restriction) {
	if kind == FloorKind {
		e.floors.add(r)
		return
	}
	e.cells.add(r)
}

// Clock returns the tick the engine was last advanced to.
func (e *Engine) Clock() int64 {
	return e.clock
}

// Advance moves the clock to t and reclassifies every domain whose next change
// instant was reached. Advancing to a tick at or before the clock is a no-op.
func (e *Engine) Advance(t int64) Change {
	if t <= e.clock {
		return NoChange
	}
	e.clock = t
	res := NoChange
	if e.floors.advance(t) {
		res = FloorChanged
	}
	if e.cells.advance(t) {
		res = CellChanged
	}
	return res
}

// Pending returns the number of scheduled restrictions not yet in effect.
func (e *Engine) Pending(kind Kind) int {
	if kind == FloorKind {
		return len(e.floors.onHold)
	}
	return len(e.cells.onHold)
}

// Active returns the targets of the restrictions currently in effect.
func (e *Engine) Active(kind Kind) []int {
	d := &e.cells
	if kind == FloorKind {
		d = &e.floors
	}
	out := make([]int, 0, len(d.active))
	for _, r := range d.active {
		out = append(out, r.Target)
	}
	return out
}

// ApplyFloors rewrites closed from the active floor restrictions.
func (e *Engine) ApplyFloors(closed []bool) {
	clear(closed)
	for _, r := range e.floors.active {
		closed[r.Target] = true
	}
}

// ApplyCells rewrites every cell's Restricted flag and the closed floors from
// the active restrictions.
func (e *Engine) ApplyCells(cells []layout.Cell, closed []bool) {
	for i := range cells {
		cells[i].Restricted = false
	}
	e.ApplyFloors(closed)
	for _, r := range e.cells.active {
		cells[r.Target].Restricted = true
	}
}
