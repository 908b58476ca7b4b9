package topology

import "gonum.org/v1/gonum/spatial/r3"

// Arena is a flat growable store of points. Everything else refers to
// points by their arena index.
type Arena struct {
	points []r3.Vec
}

// NewArena returns an arena with room for n points.
func NewArena(n int) *Arena {
	return &Arena{points: make([]r3.Vec, 0, n)}
}

// Add appends p and returns its index.
func (a *Arena) Add(p r3.Vec) int {
	a.points = append(a.points, p)
	return len(a.points) - 1
}

// At returns the point at index i.
func (a *Arena) At(i int) r3.Vec {
	return a.points[i]
}

// Set overwrites the point at index i.
func (a *Arena) Set(i int, p r3.Vec) {
	a.points[i] = p
}

// Len returns the number of stored points.
func (a *Arena) Len() int {
	return len(a.points)
}

// Points returns a copy of all points in index order.
func (a *Arena) Points() []r3.Vec {
	out := make([]r3.Vec, len(a.points))
	copy(out, a.points)
	return out
}
