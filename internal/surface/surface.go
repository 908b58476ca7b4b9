package surface

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrNoIntersection is returned when a vertical ray finds no surface.
var ErrNoIntersection = errors.New("no surface intersection")

// ProjectionError describes a failed vertical projection.
type ProjectionError struct {
	X, Y, Z        float64
	SearchDistance float64
	Reason         string
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("%v at (%g, %g) from z=%g: %s", ErrNoIntersection, e.X, e.Y, e.Z, e.Reason)
}

func (e *ProjectionError) Unwrap() error {
	return ErrNoIntersection
}

// Surface is a sampled terrain surface placed in local mesh coordinates.
type Surface struct {
	Grid *Heightfield

	// ZeroLevel is the raw elevation that maps to local z = 0.
	ZeroLevel float64

	// SearchDistance limits how far a projection may travel vertically.
	// Zero means unlimited.
	SearchDistance float64
}

// Elevation returns the local elevation at (x, y) without a distance limit.
func (s *Surface) Elevation(x, y float64) (float64, bool) {
	v, ok := s.Grid.HeightAt(x, y)
	if !ok {
		return 0, false
	}
	return v - s.ZeroLevel, true
}

// Project casts a vertical ray through (x, y, z) and returns the local
// elevation of its intersection with the surface.
func (s *Surface) Project(x, y, z float64) (float64, error) {
	if !s.Grid.Bounds().Contains(vec(x, y)) {
		return 0, &ProjectionError{X: x, Y: y, Z: z, SearchDistance: s.SearchDistance, Reason: "outside sampled area"}
	}
	e, ok := s.Elevation(x, y)
	if !ok {
		return 0, &ProjectionError{X: x, Y: y, Z: z, SearchDistance: s.SearchDistance, Reason: "hole in sampled data"}
	}
	if s.SearchDistance > 0 && math.Abs(e-z) > s.SearchDistance {
		return 0, &ProjectionError{
			X: x, Y: y, Z: z,
			SearchDistance: s.SearchDistance,
			Reason:         fmt.Sprintf("surface at %g is beyond search distance %g", e, s.SearchDistance),
		}
	}
	return e, nil
}

func vec(x, y float64) r2.Vec {
	return r2.Vec{X: x, Y: y}
}
