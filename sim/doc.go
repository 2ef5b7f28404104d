// Package sim provides the discrete-event simulation engine for autopark.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - vehicle.go: Vehicle lifecycle (queued → parked)
//   - event.go: Arrival and departure events that drive the simulation
//   - garage.go: Occupancy, cached access trees and cost-minimizing allocation
//   - direction.go: Replaying an allocated route into timed trace records
//   - simulator.go: The event loop and restriction handling
//
// # Architecture
//
// The sim package owns the mutable run state; the pieces it composes live in
// sub-packages:
//   - sim/layout/: structure-file parsing, the grid graph and cell types
//   - sim/path/: shortest-path trees with elevator continuity
//   - sim/restriction/: time-windowed floor and cell closures
//   - sim/trace/: trace records, the validating writer and trace summaries
//   - sim/workload/: synthetic event files replayed through the simulator
//
// Every run works on a private copy of the parsed layout, so one layout can
// drive any number of runs.
package sim
