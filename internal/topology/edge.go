package topology

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// MaxOwners is the number of blocks sharing an interior edge.
const MaxOwners = 4

// CurveType selects how interior edge points are interpreted.
type CurveType int

const (
	// Line is a straight edge without interior points.
	Line CurveType = iota
	// PolyLine passes through its interior points in order.
	PolyLine
)

// String returns the curve keyword used in mesh output.
func (c CurveType) String() string {
	switch c {
	case Line:
		return "line"
	case PolyLine:
		return "polyLine"
	default:
		return fmt.Sprintf("CurveType(%d)", int(c))
	}
}

// Edge is a curved block edge between two arena points. An edge and its
// reverse are the same edge; only one direction is stored.
type Edge struct {
	Start, End int
	Curve      CurveType
	Points     []r3.Vec

	// Owners lists the blocks using this edge, in registration order.
	Owners []int
	// Steps is the cell count along the edge, fixed by its first owner.
	Steps int
}

// Segments returns the number of straight pieces of the curve.
func (e Edge) Segments() int {
	return len(e.Points) + 1
}

// SamplesPerStep returns how many curve segments fall in one cell, or 0
// while the edge has no owner.
func (e Edge) SamplesPerStep() int {
	if e.Steps == 0 {
		return 0
	}
	return e.Segments() / e.Steps
}

func (e Edge) clone() Edge {
	e.Points = slices.Clone(e.Points)
	e.Owners = slices.Clone(e.Owners)
	return e
}

type edgeKey [2]int

// checkSteps validates that a curve with the given segment count can be
// split evenly into steps cells.
func checkSteps(curve CurveType, segments, steps int) error {
	if curve != PolyLine || steps == 0 {
		return nil
	}
	if segments%steps != 0 {
		return fmt.Errorf("polyline with %d segments cannot be divided into %d cells", segments, steps)
	}
	return nil
}
