package restriction

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/autopark-sim/autopark/sim/layout"
)

// ErrMalformed is wrapped by every restriction-file parse error.
var ErrMalformed = errors.New("malformed restriction file")

// Load reads a restriction file. Lines "R start end x y z" close a cell and lines
// "R start end floor" close a floor; lines not starting with R are ignored.
func Load(r io.Reader, dims layout.Dims) (*Engine, error) {
	e := NewEngine()
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || fields[0] != "R" {
			continue
		}
		kind, res, err := parseLine(fields[1:], dims)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNo, err)
		}
		e.Add(kind, res)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading restriction file: %w", err)
	}
	return e, nil
}

func parseLine(fields []string, dims layout.Dims) (Kind, Restriction, error) {
	var nums []int64
	for _, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			break
		}
		nums = append(nums, v)
	}
	if len(nums) < 3 {
		return 0, Restriction{}, fmt.Errorf("need start, end and a floor or 3 coordinates, got %v", fields)
	}
	start, end := nums[0], nums[1]
	if start < 0 || end < 0 {
		return 0, Restriction{}, fmt.Errorf("negative instant in %v", nums[:2])
	}

	if len(nums) >= 5 {
		x, y, z := int(nums[2]), int(nums[3]), int(nums[4])
		if !dims.Contains(x, y, z) {
			return 0, Restriction{}, fmt.Errorf("cell (%d,%d,%d) lies outside the grid", x, y, z)
		}
		return CellKind, Restriction{Start: start, End: end, Target: dims.Index(x, y, z)}, nil
	}
	floor := int(nums[2])
	if floor < 0 || floor >= dims.Floors {
		return 0, Restriction{}, fmt.Errorf("floor %d outside 0..%d", floor, dims.Floors-1)
	}
	return FloorKind, Restriction{Start: start, End: end, Target: floor}, nil
}
