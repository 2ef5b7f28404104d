package sim

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/autopark-sim/autopark/sim/layout"
)

// ErrMalformedEvent is wrapped by every event-file parse error.
var ErrMalformedEvent = errors.New("malformed event file")

// departureType marks a departure line; any other type letter is an arrival's exit type.
const departureType = "S"

// LoadEvents reads an event file of lines "TAG tick TYPE [x y z]". Lines without
// a numeric tick in second position are skipped. Arrival coordinates must name
// an entry of l.
func LoadEvents(r io.Reader, l *layout.Layout) ([]Event, error) {
	var events []Event
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		tick, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		ev, err := parseEvent(fields, tick, l)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedEvent, lineNo, err)
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading event file: %w", err)
	}
	return events, nil
}

func parseEvent(fields []string, tick int64, l *layout.Layout) (Event, error) {
	tag := fields[0]
	if tick < 0 {
		return nil, fmt.Errorf("negative tick %d", tick)
	}
	if len(fields) < 3 {
		return nil, fmt.Errorf("%s: missing event type", tag)
	}
	coord, hasCoord, err := parseCoord(fields[3:])
	if err != nil {
		return nil, fmt.Errorf("%s: %v", tag, err)
	}

	if fields[2] == departureType {
		if !hasCoord {
			return NewDepartureEvent(tick, tag, nil), nil
		}
		if !l.Dims.Contains(coord.X, coord.Y, coord.Z) {
			return nil, fmt.Errorf("%s: departure cell %s outside the grid", tag, coord)
		}
		return NewDepartureEvent(tick, tag, &coord), nil
	}

	if !hasCoord {
		return nil, fmt.Errorf("%s: arrival without entry coordinates", tag)
	}
	if !l.Dims.Contains(coord.X, coord.Y, coord.Z) {
		return nil, fmt.Errorf("%s: entry %s outside the grid", tag, coord)
	}
	if _, ok := l.EntryIndex(l.Dims.Index(coord.X, coord.Y, coord.Z)); !ok {
		return nil, fmt.Errorf("%s: %w %s", tag, ErrUnknownEntry, coord)
	}
	return NewArrivalEvent(tick, tag, coord, fields[2][0]), nil
}

// parseCoord reads "x y z". No fields means no coordinates; anything else
// short of three integers is an error.
func parseCoord(fields []string) (layout.Coord, bool, error) {
	if len(fields) == 0 {
		return layout.Coord{}, false, nil
	}
	if len(fields) < 3 {
		return layout.Coord{}, false, fmt.Errorf("want 3 coordinates, got %v", fields)
	}
	var xyz [3]int
	for i := range xyz {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return layout.Coord{}, false, fmt.Errorf("coordinate %q: %v", fields[i], err)
		}
		xyz[i] = v
	}
	return layout.Coord{X: xyz[0], Y: xyz[1], Z: xyz[2]}, true, nil
}

// WriteEvents writes events in the format LoadEvents reads.
func WriteEvents(w io.Writer, events []Event) error {
	bw := bufio.NewWriter(w)
	for _, ev := range events {
		var line string
		switch e := ev.(type) {
		case *ArrivalEvent:
			line = fmt.Sprintf("%s %d %c %d %d %d", e.Tag, e.time, e.ExitType, e.Entry.X, e.Entry.Y, e.Entry.Z)
		case *DepartureEvent:
			line = fmt.Sprintf("%s %d %s", e.Tag, e.time, departureType)
			if e.Cell != nil {
				line += fmt.Sprintf(" %d %d %d", e.Cell.X, e.Cell.Y, e.Cell.Z)
			}
		default:
			return fmt.Errorf("cannot write event of type %T", ev)
		}
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return fmt.Errorf("writing events: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing events: %w", err)
	}
	return nil
}
