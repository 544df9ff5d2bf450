package engine

// Loop names one of the two tracks of the board
type Loop string

const (
	LoopOuter Loop = "OUTER"
	LoopInner Loop = "INNER"
)

// Boundary reports which loop edge a single step crossed
type Boundary string

const (
	BoundaryNone Boundary = ""
	OuterWrap    Boundary = "OUTER_WRAP"
	InnerWrap    Boundary = "INNER_WRAP"
	InnerExit    Boundary = "INNER_EXIT"
)

// NoInnerExit disables the inner-loop exit redirect so the inner loop wraps to its first tile
const NoInnerExit = -1

// Topology describes the two nested loops and their junction tiles.
// Outer tiles are 0..OuterSize-1, inner tiles follow immediately after.
type Topology struct {
	OuterSize int `json:"outer_size"`
	InnerSize int `json:"inner_size"`
	Hub       int `json:"hub_tile"`
	InnerExit int `json:"inner_exit_tile"`
	Jail      int `json:"jail_tile"`
	GoToJail  int `json:"go_to_jail_tile"`
}

// DefaultTopology returns the 32+16 board layout
func DefaultTopology() Topology {
	return Topology{
		OuterSize: 32,
		InnerSize: 16,
		Hub:       32,
		InnerExit: 31,
		Jail:      8,
		GoToJail:  24,
	}
}

// Size returns the total number of tiles
func (t Topology) Size() int {
	return t.OuterSize + t.InnerSize
}

// LoopOf returns the loop a position belongs to
func (t Topology) LoopOf(pos int) Loop {
	if pos < t.OuterSize {
		return LoopOuter
	}
	return LoopInner
}

// Bounds returns the first tile and size of the loop containing pos
func (t Topology) Bounds(pos int) (start, size int) {
	if t.LoopOf(pos) == LoopOuter {
		return 0, t.OuterSize
	}
	return t.OuterSize, t.InnerSize
}

// Next advances one tile and reports any boundary crossed.
// Completing the inner loop redirects to the inner exit tile instead of the hub.
func (t Topology) Next(pos int) (int, Boundary) {
	start, size := t.Bounds(pos)
	next := pos + 1
	if next < start+size {
		return next, BoundaryNone
	}
	if t.LoopOf(pos) == LoopOuter {
		return 0, OuterWrap
	}
	if t.InnerExit != NoInnerExit {
		return t.InnerExit, InnerExit
	}
	return start, InnerWrap
}

// Shift moves pos by delta tiles, wrapping within its own loop only
func (t Topology) Shift(pos, delta int) int {
	start, size := t.Bounds(pos)
	offset := ((pos-start+delta)%size + size) % size
	return start + offset
}

// Contains reports whether pos is a valid tile id
func (t Topology) Contains(pos int) bool {
	return pos >= 0 && pos < t.Size()
}
