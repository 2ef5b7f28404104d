package sim

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopark-sim/autopark/sim/internal/testutil"
	"github.com/autopark-sim/autopark/sim/layout"
	"github.com/autopark-sim/autopark/sim/trace"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// TestSimulator_GoldenScenarios runs every scenario under testdata/scenarios and
// compares the trace line by line.
func TestSimulator_GoldenScenarios(t *testing.T) {
	for _, sc := range testutil.LoadScenarios(t) {
		t.Run(sc.Name, func(t *testing.T) {
			run := newTestRun(t, readFile(t, sc.Structure), readFile(t, sc.Events), readFile(t, sc.Restrictions))

			require.NoError(t, run.sim.Run())

			assert.Equal(t, testutil.ReadLines(t, sc.Expected), run.lines())
			assert.Zero(t, run.sim.Metrics.DroppedRecords, "a generated journey must pass the validator")
		})
	}
}

func TestSimulator_EndToEnd_SingleCell(t *testing.T) {
	// GIVEN one free cell between the entry and a C exit
	run := newTestRun(t, smallGarage, "V1 5 C 0 0 0\n", "")

	// WHEN V1 arrives at tick 5
	require.NoError(t, run.sim.Run())

	// THEN it drives 2 ticks, walks 2 ticks and pays 2 + 3*2
	assert.Equal(t, []string{
		"V1 5 0 0 0 i",
		"V1 6 1 0 0 m",
		"V1 7 1 1 0 e",
		"V1 8 2 1 0 p",
		"V1 9 2 2 0 a",
		"V1 5 7 9 8 x",
	}, run.lines())
	cell, ok := run.sim.Garage.Parked("V1")
	require.True(t, ok)
	assert.Equal(t, 4, cell)
	assert.Equal(t, 0, run.sim.Garage.FreeParking)
}

func TestSimulator_Queueing_OnlyHeadIsRetried(t *testing.T) {
	// GIVEN the only cell occupied at load time and two vehicles waiting
	structure := testutil.Lines("3 3 1 1 1", "  a", " x ", "e  ", "E1 0 0 0 C", "A1 2 2 0 C", "+")
	events := testutil.Lines("V1 1 C 0 0 0", "V2 2 C 0 0 0", "X0 3 S 1 1 0")
	run := newTestRun(t, structure, events, "")

	// WHEN the pre-occupied cell is vacated
	require.NoError(t, run.sim.Run())

	// THEN only the queue head is allocated, starting from the departure tick
	assert.Equal(t, []string{
		"V1 1 0 0 0 i",
		"V2 2 0 0 0 i",
		"X0 3 1 1 0 s",
		"V1 4 1 0 0 m",
		"V1 5 1 1 0 e",
		"V1 6 2 1 0 p",
		"V1 7 2 2 0 a",
		"V1 1 5 7 10 x",
	}, run.lines())
	assert.Equal(t, []string{"V2"}, run.sim.WaitQ.Tags())
	assert.Equal(t, 2, run.sim.Metrics.Queued)
	assert.Equal(t, 1, run.sim.Metrics.StillWaiting)
	assert.Equal(t, []int64{2}, run.sim.Metrics.Waits)
}

func TestSimulator_FloorRestriction_QueuesThenReopens(t *testing.T) {
	// GIVEN floor 0 closed from tick 0 until tick 10
	events := testutil.Lines("V1 5 C 0 0 0", "V2 11 C 0 0 0")
	run := newTestRun(t, smallGarage, events, "R 0 10 0\n")

	// WHEN vehicles arrive during and after the closure
	require.NoError(t, run.sim.Run())

	// THEN the first is queued although a cell is free, the second parks
	lines := run.lines()
	require.Len(t, lines, 7)
	assert.Equal(t, "V1 5 0 0 0 i", lines[0])
	assert.Equal(t, "V2 11 0 0 0 i", lines[1])
	assert.Equal(t, "V2 11 13 15 8 x", lines[6])
	assert.Equal(t, []string{"V1"}, run.sim.WaitQ.Tags())
}

func TestSimulator_CellRestriction_BlocksRoute(t *testing.T) {
	// GIVEN both aisle cells next to the entry closed from tick 0
	run := newTestRun(t, smallGarage, "V1 5 C 0 0 0\n", "R 0 0 1 0 0\nR 0 0 0 1 0\n")

	// WHEN V1 arrives
	require.NoError(t, run.sim.Run())

	// THEN no route exists and it waits
	assert.Equal(t, []string{"V1 5 0 0 0 i"}, run.lines())
	assert.Equal(t, 1, run.sim.WaitQ.Len())
}

func TestSimulator_UnknownDepartureTag_FailsFast(t *testing.T) {
	// GIVEN a departure for a tag that never parked
	events := testutil.Lines("V1 1 C 0 0 0", "GHOST 2 S", "V2 3 C 0 0 0")
	run := newTestRun(t, smallGarage, events, "")

	// WHEN the run reaches it
	err := run.sim.Run()

	// THEN the run stops with ErrVehicleNotParked and later events are not processed
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVehicleNotParked), "got %v", err)
	assert.Equal(t, int64(2), run.sim.Clock)
	assert.Equal(t, 1, run.sim.Metrics.Arrivals)
	assert.Len(t, run.lines(), 6, "records before the failure are flushed")
}

func TestSimulator_DuplicateArrival_Fails(t *testing.T) {
	events := testutil.Lines("V1 1 C 0 0 0", "V1 2 C 0 0 0")
	run := newTestRun(t, smallGarage, events, "")

	err := run.sim.Run()

	assert.True(t, errors.Is(err, ErrDuplicateVehicle), "got %v", err)
}

func TestSimulator_DepartThenReturn_EntryRecordDroppedAsDiagonal(t *testing.T) {
	// GIVEN V1 leaves (1,1,0) and comes back through the entry at (0,0,0)
	events := testutil.Lines("V1 1 C 0 0 0", "V1 10 S", "V1 12 C 0 0 0")
	run := newTestRun(t, smallGarage, events, "")

	// WHEN the run completes
	require.NoError(t, run.sim.Run())

	// THEN the second entry record fails the continuity check against the
	// departure record and is dropped; the journey itself is written
	lines := run.lines()
	require.Len(t, lines, 12)
	assert.Equal(t, "V1 10 1 1 0 s", lines[6])
	assert.Equal(t, "V1 13 1 0 0 m", lines[7])
	assert.Equal(t, "V1 12 14 16 8 x", lines[11])
	assert.Equal(t, 1, run.sim.Metrics.DroppedRecords)
	assert.Equal(t, 1, run.sim.Metrics.Departures)
	assert.Equal(t, 2, run.sim.Metrics.Parked)
}

func TestSimulator_TwoFloors_Metrics(t *testing.T) {
	for _, sc := range testutil.LoadScenarios(t) {
		if sc.Name != "two-floors" {
			continue
		}
		run := newTestRun(t, readFile(t, sc.Structure), readFile(t, sc.Events), readFile(t, sc.Restrictions))
		require.NoError(t, run.sim.Run())

		m := run.sim.Metrics
		assert.Equal(t, 10, m.Arrivals)
		assert.Equal(t, 8, m.Parked)
		assert.Equal(t, 4, m.Queued)
		assert.Equal(t, 3, m.Departures)
		assert.Equal(t, 2, m.StillWaiting)
		assert.Equal(t, 6, m.StillParked)
		assert.Equal(t, []string{"C8", "C10"}, run.sim.WaitQ.Tags())
		assert.Equal(t, int64(35), m.SimEndedTime)
		assert.Equal(t, len(run.lines()), m.WrittenRecords)
		return
	}
	t.Fatal("two-floors scenario missing")
}

func TestSimulator_SameLayoutTwice_IdenticalTraces(t *testing.T) {
	// GIVEN one parsed layout driving two runs
	l := mustParse(t, smallGarage)
	run := func() string {
		evs, err := LoadEvents(strings.NewReader("V1 5 C 0 0 0\nV1 9 S\nV2 10 C 0 0 0\n"), l)
		require.NoError(t, err)
		g, err := NewGarage(l, DefaultCostMultiplier)
		require.NoError(t, err)
		var sink bytes.Buffer
		sim := NewSimulator(g, nil, evs, trace.NewWriter(&sink))
		require.NoError(t, sim.Run())
		return sink.String()
	}

	// WHEN the runs complete
	first, second := run(), run()

	// THEN the traces match and the parsed layout still has its free cell
	assert.Equal(t, first, second)
	assert.Equal(t, 1, l.FreeParking)
	assert.Equal(t, layout.ParkingFree, l.Cells[4].Type)
}

func TestSimulator_BackwardsTick_ProcessedInInputOrder(t *testing.T) {
	events := testutil.Lines("V1 5 C 0 0 0", "V1 3 S")
	run := newTestRun(t, smallGarage, events, "")

	require.NoError(t, run.sim.Run())

	lines := run.lines()
	assert.Equal(t, "V1 3 1 1 0 s", lines[len(lines)-1])
	assert.Equal(t, int64(3), run.sim.Clock)
}
