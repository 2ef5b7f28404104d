// Package workload generates synthetic event files for a garage structure.
// Generated files are replayed through the simulator while they are built, so
// every departure they contain names a vehicle that is parked at that tick.
package workload

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/autopark-sim/autopark/sim"
	"github.com/autopark-sim/autopark/sim/layout"
	"github.com/autopark-sim/autopark/sim/restriction"
	"github.com/autopark-sim/autopark/sim/trace"
)

// Result is a generated event sequence.
type Result struct {
	Events []sim.Event
	// SkippedDepartures counts vehicles still waiting when their stay ended.
	// Their departure is left out; they stay in the garage.
	SkippedDepartures int
}

// candidate is an event before replay. Departures sort ahead of arrivals at the
// same tick so freed cells are offered to the queue first.
type candidate struct {
	ev        sim.Event
	tag       string
	departure bool
	seq       int
}

// Generate draws spec.Vehicles arrivals and departures over l. restrictions may
// be nil; when given it must be fresh, since the replay advances it.
// Deterministic given the same spec, structure and restrictions.
func Generate(spec *GeneratorSpec, l *layout.Layout, restrictions *restriction.Engine, costMult int) (*Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator spec: %w", err)
	}
	if len(l.Entries) == 0 {
		return nil, fmt.Errorf("structure declares no entries")
	}
	exitTypes, err := resolveExitTypes(spec.ExitTypes, l)
	if err != nil {
		return nil, err
	}
	staySampler, err := NewStaySampler(spec.Stay)
	if err != nil {
		return nil, fmt.Errorf("stay distribution: %w", err)
	}

	rng := NewPartitionedRNG(NewSimulationKey(spec.Seed))
	arrivalRNG := rng.ForSubsystem(SubsystemArrivals)
	stayRNG := rng.ForSubsystem(SubsystemStays)
	routeRNG := rng.ForSubsystem(SubsystemRoutes)
	arrivals := NewArrivalSampler(spec.Arrival)

	cands := make([]candidate, 0, 2*spec.Vehicles)
	now := int64(0)
	for i := 0; i < spec.Vehicles; i++ {
		now += arrivals.SampleIAT(arrivalRNG)
		tag := fmt.Sprintf("%s%d", spec.TagPrefix, i+1)
		entry := l.Entries[routeRNG.Intn(len(l.Entries))]
		exitType := exitTypes[routeRNG.Intn(len(exitTypes))]
		stay := staySampler.Sample(stayRNG)

		cands = append(cands,
			candidate{ev: sim.NewArrivalEvent(now, tag, l.Dims.Coord(entry.Vertex), exitType), tag: tag, seq: len(cands)},
			candidate{ev: sim.NewDepartureEvent(now+stay, tag, nil), tag: tag, departure: true, seq: len(cands) + 1},
		)
	}
	slices.SortFunc(cands, func(a, b candidate) int {
		if c := cmp.Compare(a.ev.Timestamp(), b.ev.Timestamp()); c != 0 {
			return c
		}
		if a.departure != b.departure {
			if a.departure {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.seq, b.seq)
	})

	return replay(cands, l, restrictions, costMult)
}

// replay runs the candidates through a simulator with a discarded trace and
// keeps every arrival and each departure whose vehicle is parked.
func replay(cands []candidate, l *layout.Layout, restrictions *restriction.Engine, costMult int) (*Result, error) {
	g, err := sim.NewGarage(l, costMult)
	if err != nil {
		return nil, err
	}
	s := sim.NewSimulator(g, restrictions, nil, trace.NewWriter(io.Discard))
	res := &Result{Events: make([]sim.Event, 0, len(cands))}
	for _, c := range cands {
		if c.departure {
			if _, parked := g.Parked(c.tag); !parked {
				logrus.Debugf("[tick %07d] %s still waiting, departure dropped", c.ev.Timestamp(), c.tag)
				res.SkippedDepartures++
				continue
			}
		}
		if err := s.Step(c.ev); err != nil {
			return nil, fmt.Errorf("replaying generated events: %w", err)
		}
		res.Events = append(res.Events, c.ev)
	}
	s.Finish()
	logrus.Infof("Generated %d events: %d arrivals, %d parked, %d departures dropped",
		len(res.Events), s.Metrics.Arrivals, s.Metrics.Parked, res.SkippedDepartures)
	return res, nil
}

// resolveExitTypes returns the requested letters, or every exit type in l.
func resolveExitTypes(requested []string, l *layout.Layout) ([]byte, error) {
	if len(requested) > 0 {
		types := make([]byte, len(requested))
		for i, t := range requested {
			types[i] = t[0]
		}
		return types, nil
	}
	var types []byte
	for _, bucket := range l.Exits {
		for _, a := range bucket {
			if a.Type != 'S' && !slices.Contains(types, a.Type) {
				types = append(types, a.Type)
			}
		}
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("structure declares no exits")
	}
	slices.Sort(types)
	return types, nil
}
