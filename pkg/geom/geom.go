// Package geom provides coordinate frames and planar boxes for mesh placement.
package geom

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerateFrame is returned when frame axes are zero or parallel.
var ErrDegenerateFrame = errors.New("degenerate frame axes")

// Frame is a right-handed orthonormal coordinate system anchored at Origin.
type Frame struct {
	Origin  r3.Vec
	X, Y, Z r3.Vec
}

// Identity returns the global frame.
func Identity() Frame {
	return Frame{
		X: r3.Vec{X: 1},
		Y: r3.Vec{Y: 1},
		Z: r3.Vec{Z: 1},
	}
}

// NewFrame builds a frame from an origin, an x direction and an approximate
// up direction. The up direction is orthogonalised against x.
func NewFrame(origin, xAxis, zAxis r3.Vec) (Frame, error) {
	if r3.Norm(xAxis) == 0 || r3.Norm(zAxis) == 0 {
		return Frame{}, ErrDegenerateFrame
	}
	x := r3.Unit(xAxis)
	z := r3.Sub(zAxis, r3.Scale(r3.Dot(zAxis, x), x))
	if r3.Norm(z) < 1e-12 {
		return Frame{}, ErrDegenerateFrame
	}
	z = r3.Unit(z)
	y := r3.Cross(z, x)
	return Frame{Origin: origin, X: x, Y: y, Z: z}, nil
}

// ToGlobal maps local coordinates to global coordinates.
func (f Frame) ToGlobal(local r3.Vec) r3.Vec {
	p := f.Origin
	p = r3.Add(p, r3.Scale(local.X, f.X))
	p = r3.Add(p, r3.Scale(local.Y, f.Y))
	p = r3.Add(p, r3.Scale(local.Z, f.Z))
	return p
}

// ToLocal maps global coordinates into the frame.
func (f Frame) ToLocal(global r3.Vec) r3.Vec {
	d := r3.Sub(global, f.Origin)
	return r3.Vec{X: r3.Dot(d, f.X), Y: r3.Dot(d, f.Y), Z: r3.Dot(d, f.Z)}
}

// Box2 is an axis-aligned rectangle in the horizontal plane.
type Box2 struct {
	Min, Max r2.Vec
}

// NewBox2 returns the box spanned by two corners in any order.
func NewBox2(a, b r2.Vec) Box2 {
	return Box2{
		Min: r2.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: r2.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

// Contains reports whether p lies inside or on the boundary of the box.
func (b Box2) Contains(p r2.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// ContainsBox reports whether o lies entirely within b.
func (b Box2) ContainsBox(o Box2) bool {
	return b.Contains(o.Min) && b.Contains(o.Max)
}

// Size returns the box extent along each axis.
func (b Box2) Size() r2.Vec {
	return r2.Sub(b.Max, b.Min)
}

// Center returns the midpoint of the box.
func (b Box2) Center() r2.Vec {
	return r2.Scale(0.5, r2.Add(b.Min, b.Max))
}

// Empty reports whether the box has no area.
func (b Box2) Empty() bool {
	return b.Max.X <= b.Min.X || b.Max.Y <= b.Min.Y
}

// Horizontal drops the vertical component of p.
func Horizontal(p r3.Vec) r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}
