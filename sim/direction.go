package sim

import (
	"fmt"

	"github.com/autopark-sim/autopark/sim/layout"
	"github.com/autopark-sim/autopark/sim/trace"
)

// RecordWriter receives trace records. *trace.Writer implements it.
type RecordWriter interface {
	Write(trace.Record) error
}

// Journey holds the derived instants of one allocated vehicle.
type Journey struct {
	EntryTick int64
	ParkTick  int64
	ExitTick  int64
	Cost      int64 // drive ticks + CostMult * walk ticks
}

// movement tracks who is moving along the route. Zero: driving with no turn
// recorded yet. Negative: driving, one per recorded turn. Positive: on foot,
// 1 right after parking and one more per recorded turn.
type movement int

// writeDirection replays route from tick start and emits a record at every
// change of direction, on reaching park, and on reaching the exit, followed by
// the journey summary. A planar step takes one tick and a vertical step two.
func writeDirection(w RecordWriter, v *Vehicle, route []int, park int, start int64, dims layout.Dims, costMult int) (Journey, error) {
	if len(route) < 3 {
		return Journey{}, fmt.Errorf("vehicle %s: route %v has no interior cell", v.Tag, route)
	}
	emit := func(tick int64, vertex int, code trace.Code) error {
		c := dims.Coord(vertex)
		return w.Write(trace.Record{
			Tag:  v.Tag,
			Tick: tick,
			X:    int64(c.X),
			Y:    int64(c.Y),
			Z:    int64(c.Z),
			Code: code,
		})
	}

	j := Journey{EntryTick: v.ArrivalTime, ParkTick: -1}
	t := start
	var mode movement
	cur := route[0]
	for i := 1; i < len(route)-1; i++ {
		t++
		prev := route[i-1]
		cur = route[i]
		ahead := route[i+1] - cur
		behind := cur - prev
		if behind == dims.FloorSize() || behind == -dims.FloorSize() {
			t++
		}

		var err error
		switch {
		case cur == park:
			j.ParkTick = t
			if mode == 0 {
				// straight drive: mark the last aisle cell before parking
				if err = emit(t-1, prev, trace.Moving); err != nil {
					return j, err
				}
			}
			mode = 1
			err = emit(t, cur, trace.Parked)
		case ahead != behind && mode <= 0:
			err = emit(t, cur, trace.Moving)
			mode--
		case ahead != behind:
			err = emit(t, cur, trace.Walking)
			mode++
		}
		if err != nil {
			return j, err
		}
	}
	if j.ParkTick < 0 {
		return j, fmt.Errorf("vehicle %s: route %v does not pass %d", v.Tag, route, park)
	}
	if mode == 1 {
		// straight walk: mark the last cell before the exit
		if err := emit(t, cur, trace.Walking); err != nil {
			return j, err
		}
	}

	t++
	j.ExitTick = t
	if err := emit(t, route[len(route)-1], trace.Exited); err != nil {
		return j, err
	}
	j.Cost = (j.ParkTick - j.EntryTick) + int64(costMult)*(j.ExitTick-j.ParkTick)
	return j, w.Write(trace.NewSummary(v.Tag, j.EntryTick, j.ParkTick, j.ExitTick, j.Cost))
}
