// Tracks run-wide metrics: arrivals, departures, queueing, parking cost and the
// number of trace records written or dropped.

package sim

import (
	"fmt"
	"io"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Metrics aggregates statistics about the simulation for final reporting.
type Metrics struct {
	Arrivals   int // Vehicles that entered the garage
	Departures int // Vehicles and pre-occupied cells that were vacated
	Parked     int // Successful allocations
	Queued     int // Arrivals that found no eligible cell

	StillWaiting int // Vehicles left in the wait queue at the end
	StillParked  int // Tracked vehicles still parked at the end

	WrittenRecords int
	DroppedRecords int // Records rejected by the trace validator

	SimEndedTime int64

	Costs []int64 // journey cost per allocation, in allocation order
	Waits []int64 // ticks from arrival to allocation, per allocation
}

// NewMetrics returns empty metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Distribution summarizes a sample of tick counts.
type Distribution struct {
	Mean float64
	P50  float64
	P95  float64
	Max  float64
}

// NewDistribution computes the summary of values. Returns the zero value for
// an empty sample.
func NewDistribution(values []int64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	xs := make([]float64, len(values))
	for i, v := range values {
		xs[i] = float64(v)
	}
	slices.Sort(xs)
	return Distribution{
		Mean: stat.Mean(xs, nil),
		P50:  stat.Quantile(0.5, stat.Empirical, xs, nil),
		P95:  stat.Quantile(0.95, stat.Empirical, xs, nil),
		Max:  xs[len(xs)-1],
	}
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Arrivals             : %d\n", m.Arrivals)
	fmt.Fprintf(w, "Parked               : %d\n", m.Parked)
	fmt.Fprintf(w, "Queued on arrival    : %d\n", m.Queued)
	fmt.Fprintf(w, "Departures           : %d\n", m.Departures)
	fmt.Fprintf(w, "Still waiting        : %d\n", m.StillWaiting)
	fmt.Fprintf(w, "Still parked         : %d\n", m.StillParked)
	fmt.Fprintf(w, "Trace records        : %d written, %d dropped\n", m.WrittenRecords, m.DroppedRecords)
	fmt.Fprintf(w, "Last tick            : %d\n", m.SimEndedTime)
	if m.Parked > 0 {
		cost := NewDistribution(m.Costs)
		wait := NewDistribution(m.Waits)
		fmt.Fprintf(w, "Cost                 : mean %.2f p50 %.0f p95 %.0f max %.0f\n", cost.Mean, cost.P50, cost.P95, cost.Max)
		fmt.Fprintf(w, "Wait (ticks)         : mean %.2f p50 %.0f p95 %.0f max %.0f\n", wait.Mean, wait.P50, wait.P95, wait.Max)
	}
}
