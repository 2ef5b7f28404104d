package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/autopark-sim/autopark/sim/layout"
	"github.com/autopark-sim/autopark/sim/trace"
)

// Event defines the interface for all simulation events.
// Each event must have a Timestamp (in ticks) and an Execute method
// that advances simulation state when invoked.
type Event interface {
	Timestamp() int64
	Execute(*Simulator) error
}

// ArrivalEvent represents a vehicle entering the garage through one of its entries.
type ArrivalEvent struct {
	time     int64
	Tag      string
	Entry    layout.Coord // must be a declared entry
	ExitType byte         // exit-type letter the driver wants to leave through
}

// NewArrivalEvent creates an arrival at tick t.
func NewArrivalEvent(t int64, tag string, entry layout.Coord, exitType byte) *ArrivalEvent {
	return &ArrivalEvent{time: t, Tag: tag, Entry: entry, ExitType: exitType}
}

// Timestamp returns the tick of the ArrivalEvent.
func (e *ArrivalEvent) Timestamp() int64 {
	return e.time
}

// Execute records the entry, then parks the vehicle if any cell is free and
// queues it otherwise. A new arrival may park while older vehicles wait.
func (e *ArrivalEvent) Execute(sim *Simulator) error {
	logrus.Infof("<< Arrival: %s at %d ticks", e.Tag, e.time)

	entry, err := sim.Garage.EntryAt(e.Entry)
	if err != nil {
		return fmt.Errorf("arrival of %s: %w", e.Tag, err)
	}
	if _, parked := sim.Garage.Parked(e.Tag); parked || sim.WaitQ.Contains(e.Tag) {
		return fmt.Errorf("arrival of %s: %w", e.Tag, ErrDuplicateVehicle)
	}

	v := NewVehicle(e.Tag, e.time, entry, e.ExitType)
	sim.Metrics.Arrivals++
	if err := sim.Trace.Write(trace.Record{
		Tag:  v.Tag,
		Tick: e.time,
		X:    int64(e.Entry.X),
		Y:    int64(e.Entry.Y),
		Z:    int64(e.Entry.Z),
		Code: trace.Entered,
	}); err != nil {
		return err
	}

	parked, err := sim.tryPark(v, e.time)
	if err != nil {
		return err
	}
	if !parked {
		sim.WaitQ.Enqueue(v)
		sim.Metrics.Queued++
		logrus.Debugf("[tick %07d] %s queued, %d waiting", e.time, v.Tag, sim.WaitQ.Len())
	}
	return nil
}

// DepartureEvent represents a vehicle leaving its parking cell. Cell is set only
// for cells occupied at load time, which have no tracked vehicle.
type DepartureEvent struct {
	time int64
	Tag  string
	Cell *layout.Coord
}

// NewDepartureEvent creates a departure at tick t. cell may be nil.
func NewDepartureEvent(t int64, tag string, cell *layout.Coord) *DepartureEvent {
	return &DepartureEvent{time: t, Tag: tag, Cell: cell}
}

// Timestamp returns the tick of the DepartureEvent.
func (e *DepartureEvent) Timestamp() int64 {
	return e.time
}

// Execute frees the cell, records the departure and retries the head of the
// wait queue once.
func (e *DepartureEvent) Execute(sim *Simulator) error {
	logrus.Infof("<< Departure: %s at %d ticks", e.Tag, e.time)

	var (
		cell int
		err  error
	)
	if e.Cell != nil {
		cell, err = sim.Garage.VacateCell(*e.Cell)
	} else {
		cell, err = sim.Garage.Vacate(e.Tag)
	}
	if err != nil {
		return err
	}
	sim.Metrics.Departures++

	c := sim.Garage.Layout.Dims.Coord(cell)
	if err := sim.Trace.Write(trace.Record{
		Tag:  e.Tag,
		Tick: e.time,
		X:    int64(c.X),
		Y:    int64(c.Y),
		Z:    int64(c.Z),
		Code: trace.Departed,
	}); err != nil {
		return err
	}

	head := sim.WaitQ.Peek()
	if head == nil {
		return nil
	}
	parked, err := sim.tryPark(head, e.time)
	if err != nil {
		return err
	}
	if parked {
		sim.WaitQ.Dequeue()
	}
	return nil
}

// tryPark allocates a cell for v and writes its journey starting at tick start.
// It reports false when no cell is available.
func (sim *Simulator) tryPark(v *Vehicle, start int64) (bool, error) {
	alloc, err := sim.Garage.Allocate(v)
	if errors.Is(err, ErrNoFreeCell) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	v.State = StateParked
	v.ParkedAt = start
	v.Cell = alloc.Cell
	logrus.Debugf("[tick %07d] %s -> cell %s via exit %s, cost %d",
		start, v.Tag, sim.Garage.Layout.Dims.Coord(alloc.Cell), alloc.Exit.Name, alloc.Cost)

	j, err := writeDirection(sim.Trace, v, alloc.Route, alloc.Cell, start, sim.Garage.Layout.Dims, sim.Garage.CostMult)
	if err != nil {
		return true, err
	}
	sim.Metrics.Parked++
	sim.Metrics.Costs = append(sim.Metrics.Costs, j.Cost)
	sim.Metrics.Waits = append(sim.Metrics.Waits, start-v.ArrivalTime)
	return true, nil
}
