// Defines the Vehicle struct that models one car moving through the garage.
// Tracks arrival tick, entry, requested exit type and where it ended up.

package sim

import (
	"fmt"

	"github.com/autopark-sim/autopark/sim/layout"
)

// VehicleState represents the lifecycle state of a vehicle.
type VehicleState string

const (
	StateQueued VehicleState = "queued"
	StateParked VehicleState = "parked"
)

type Vehicle struct {
	Tag         string       // Unique identifier from the event file
	ArrivalTime int64        // Tick at which the vehicle entered the garage
	Entry       int          // Index into Layout.Entries
	ExitType    byte         // Exit-type letter the driver wants to leave through
	State       VehicleState // queued, parked

	ParkedAt int64 // Tick at which allocation succeeded (-1 while queued)
	Cell     int   // Parking vertex, -1 until parked
}

// NewVehicle returns a queued vehicle that has not been allocated a cell.
func NewVehicle(tag string, arrival int64, entry int, exitType byte) *Vehicle {
	return &Vehicle{
		Tag:         tag,
		ArrivalTime: arrival,
		Entry:       entry,
		ExitType:    exitType,
		State:       StateQueued,
		ParkedAt:    -1,
		Cell:        -1,
	}
}

// ExitBucket returns the exit bucket the vehicle is routed to.
func (v *Vehicle) ExitBucket() int {
	return layout.ExitBucket(v.ExitType)
}

// This method returns a human-readable string representation of a Vehicle.
func (v Vehicle) String() string {
	return fmt.Sprintf("Vehicle: (Tag: %s, State: %s, ArrivalTime: %d, Exit: %c)", v.Tag, v.State, v.ArrivalTime, v.ExitType)
}
