// Package trace provides the per-vehicle movement trace written by a simulation:
// the record type, the validator every record passes before it is written, and
// trace-file parsing and summaries.
// This package has no dependencies on sim/; it stores pure data types.
package trace

import (
	"fmt"
	"strconv"
	"strings"
)

// Code is the movement type of a record.
type Code byte

const (
	Entered  Code = 'i' // vehicle appeared at its entry
	Moving   Code = 'm' // vehicle changed direction while driving
	Parked   Code = 'e' // vehicle reached its parking cell
	Walking  Code = 'p' // driver changed direction on foot
	Exited   Code = 'a' // driver reached the exit
	Summary  Code = 'x' // fields hold entry tick, park tick, exit tick, cost
	Departed Code = 's' // vehicle left its parking cell
)

// validCodes maps accepted movement codes.
var validCodes = map[Code]bool{
	Entered:  true,
	Moving:   true,
	Parked:   true,
	Walking:  true,
	Exited:   true,
	Summary:  true,
	Departed: true,
}

// IsValidCode returns true if c is a recognized movement code.
func IsValidCode(c Code) bool {
	return validCodes[c]
}

// IsMovement reports whether records with this code describe a position in a
// vehicle's journey and are therefore subject to continuity checks.
func (c Code) IsMovement() bool {
	switch c {
	case Entered, Moving, Parked, Walking, Exited:
		return true
	}
	return false
}

// Record is one trace line: "TAG tick x y z CODE".
// For Summary records X, Y and Z hold the park tick, exit tick and cost.
type Record struct {
	Tag  string
	Tick int64
	X    int64
	Y    int64
	Z    int64
	Code Code
}

// NewSummary builds the closing record of a vehicle's journey.
func NewSummary(tag string, entryTick, parkTick, exitTick, cost int64) Record {
	return Record{Tag: tag, Tick: entryTick, X: parkTick, Y: exitTick, Z: cost, Code: Summary}
}

// String formats the record as a trace-file line, without the newline.
func (r Record) String() string {
	return fmt.Sprintf("%s %d %d %d %d %c", r.Tag, r.Tick, r.X, r.Y, r.Z, r.Code)
}

// ParseRecord parses one trace-file line.
func ParseRecord(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) != 6 {
		return Record{}, fmt.Errorf("trace line %q: want 6 fields, got %d", line, len(fields))
	}
	var nums [4]int64
	for i := range nums {
		v, err := strconv.ParseInt(fields[i+1], 10, 64)
		if err != nil {
			return Record{}, fmt.Errorf("trace line %q: %w", line, err)
		}
		nums[i] = v
	}
	if len(fields[5]) != 1 {
		return Record{}, fmt.Errorf("trace line %q: code must be one character", line)
	}
	return Record{
		Tag:  fields[0],
		Tick: nums[0],
		X:    nums[1],
		Y:    nums[2],
		Z:    nums[3],
		Code: Code(fields[5][0]),
	}, nil
}
