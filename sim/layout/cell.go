// Package layout holds the static model of a parking structure: the cell grid,
// its adjacency graph, and the entry/exit access points read from a structure file.
// This package has no dependencies on sim/; it stores pure data types.
package layout

import "fmt"

// CellType classifies a grid position.
type CellType int

const (
	Empty           CellType = iota // drivable aisle
	ElevatorUp                      // links to the same position one floor above
	ElevatorDown                    // reached from the elevator-up cell one floor below
	ParkingFree                     // parking cell available for allocation
	ParkingOccupied                 // parking cell holding a vehicle
	Invalid                         // wall, access point or unknown symbol
)

func (c CellType) String() string {
	switch c {
	case Empty:
		return "empty"
	case ElevatorUp:
		return "elevator-up"
	case ElevatorDown:
		return "elevator-down"
	case ParkingFree:
		return "parking-free"
	case ParkingOccupied:
		return "parking-occupied"
	default:
		return "invalid"
	}
}

// IsParking reports whether the cell is a parking position, free or occupied.
func (c CellType) IsParking() bool {
	return c == ParkingFree || c == ParkingOccupied
}

// Cell is one grid position. Restricted is set while an active cell-level
// restriction covers the position and is orthogonal to Type.
type Cell struct {
	Type       CellType
	Restricted bool
}

// Coord is a (column, row, floor) grid position.
type Coord struct {
	X, Y, Z int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Dims describes the grid size: Width columns (N), Depth rows (M), Floors levels (P).
// Vertex ids are col + N*row + M*N*floor.
type Dims struct {
	Width, Depth, Floors int
}

// Vertices returns the number of grid positions.
func (d Dims) Vertices() int {
	return d.Width * d.Depth * d.Floors
}

// FloorSize returns the number of positions on a single floor; it is also the
// vertex-id distance of a vertical move.
func (d Dims) FloorSize() int {
	return d.Width * d.Depth
}

// Index maps coordinates to a vertex id.
func (d Dims) Index(x, y, z int) int {
	return x + d.Width*y + d.Width*d.Depth*z
}

// Contains reports whether the coordinates lie inside the grid.
func (d Dims) Contains(x, y, z int) bool {
	return x >= 0 && x < d.Width && y >= 0 && y < d.Depth && z >= 0 && z < d.Floors
}

// Coord maps a vertex id back to coordinates.
func (d Dims) Coord(v int) Coord {
	z := v / d.FloorSize()
	rest := v - z*d.FloorSize()
	return Coord{X: rest % d.Width, Y: rest / d.Width, Z: z}
}

// Floor returns the floor of a vertex.
func (d Dims) Floor(v int) int {
	return v / d.FloorSize()
}

// symbolTypes maps structure-file symbols to cell types. Entry ('e') and exit ('a')
// markers are not traversable; their vertices act only as search roots.
var symbolTypes = map[byte]CellType{
	' ': Empty,
	'@': Invalid,
	'.': ParkingFree,
	'x': ParkingOccupied,
	'e': Invalid,
	'a': Invalid,
	'u': ElevatorUp,
	'd': ElevatorDown,
}

// TypeOf returns the cell type for a map symbol; unknown symbols are Invalid.
func TypeOf(symbol byte) CellType {
	if t, ok := symbolTypes[symbol]; ok {
		return t
	}
	return Invalid
}

func isWall(symbol byte) bool {
	return symbol == '@'
}

// isAccessLike reports whether the symbol is a parking cell or an access marker.
// Two such cells are never linked: they are sinks, not thoroughfares.
func isAccessLike(symbol byte) bool {
	switch symbol {
	case '.', 'x', 'a', 'e':
		return true
	}
	return false
}
