package surface

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Faultbox/terramesh/internal/blend"
	"github.com/Faultbox/terramesh/pkg/geom"
)

// ErrInvalidBlender is returned for inconsistent blending geometry.
var ErrInvalidBlender = errors.New("invalid boundary blender")

// degenerate is the path length below which a query counts as on the
// domain boundary.
const degenerate = 1e-12

// Case locates a query point relative to the sampled rectangle.
type Case int

const (
	Inside Case = iota
	West
	East
	South
	North
	SouthWest
	SouthEast
	NorthWest
	NorthEast
)

// String returns a human-readable case name.
func (c Case) String() string {
	switch c {
	case Inside:
		return "inside"
	case West:
		return "west"
	case East:
		return "east"
	case South:
		return "south"
	case North:
		return "north"
	case SouthWest:
		return "southwest"
	case SouthEast:
		return "southeast"
	case NorthWest:
		return "northwest"
	case NorthEast:
		return "northeast"
	default:
		return fmt.Sprintf("Case(%d)", int(c))
	}
}

// IsCorner reports whether c is one of the four diagonal regions.
func (c Case) IsCorner() bool {
	return c >= SouthWest
}

// Attachment is the blending path for one query point.
type Attachment struct {
	Case Case

	// Attach lies on the sampled rectangle, Boundary on the domain edge.
	Attach   r2.Vec
	Boundary r2.Vec

	// S is the normalised position of the query along Attach -> Boundary.
	S float64
}

// Blender interpolates between the sampled surface and the flat level
// across the band between the sampled rectangle and the domain boundary.
type Blender struct {
	Domain    geom.Box2
	Sample    geom.Box2
	Surface   *Surface
	Strategy  blend.Strategy
	FlatLevel float64
}

// NewBlender validates the geometry and returns a Blender.
func NewBlender(domain, sample geom.Box2, surf *Surface, st blend.Strategy, flat float64) (*Blender, error) {
	if domain.Empty() || sample.Empty() {
		return nil, fmt.Errorf("%w: empty domain or sample rectangle", ErrInvalidBlender)
	}
	if !domain.ContainsBox(sample) {
		return nil, fmt.Errorf("%w: sample rectangle %v not inside domain %v", ErrInvalidBlender, sample, domain)
	}
	if surf == nil || surf.Grid == nil {
		return nil, fmt.Errorf("%w: no surface", ErrInvalidBlender)
	}
	if !surf.Grid.Bounds().ContainsBox(sample) {
		return nil, fmt.Errorf("%w: sample rectangle %v not covered by surface %v", ErrInvalidBlender, sample, surf.Grid.Bounds())
	}
	if st == nil {
		st = blend.LinearBlend{Transition: blend.Linear{}}
	}
	return &Blender{Domain: domain, Sample: sample, Surface: surf, Strategy: st, FlatLevel: flat}, nil
}

// Classify locates q relative to the sampled rectangle.
func (b *Blender) Classify(q r2.Vec) Case {
	west := q.X < b.Sample.Min.X
	east := q.X > b.Sample.Max.X
	south := q.Y < b.Sample.Min.Y
	north := q.Y > b.Sample.Max.Y

	switch {
	case south && west:
		return SouthWest
	case south && east:
		return SouthEast
	case north && west:
		return NorthWest
	case north && east:
		return NorthEast
	case west:
		return West
	case east:
		return East
	case south:
		return South
	case north:
		return North
	default:
		return Inside
	}
}

// Attach computes the attach and boundary points for q and its normalised
// position between them.
func (b *Blender) Attach(q r2.Vec) Attachment {
	c := b.Classify(q)
	a := Attachment{Case: c, Attach: q, Boundary: q}

	switch c {
	case Inside:
		return a
	case West:
		a.Attach = r2.Vec{X: b.Sample.Min.X, Y: q.Y}
		a.Boundary = r2.Vec{X: b.Domain.Min.X, Y: q.Y}
	case East:
		a.Attach = r2.Vec{X: b.Sample.Max.X, Y: q.Y}
		a.Boundary = r2.Vec{X: b.Domain.Max.X, Y: q.Y}
	case South:
		a.Attach = r2.Vec{X: q.X, Y: b.Sample.Min.Y}
		a.Boundary = r2.Vec{X: q.X, Y: b.Domain.Min.Y}
	case North:
		a.Attach = r2.Vec{X: q.X, Y: b.Sample.Max.Y}
		a.Boundary = r2.Vec{X: q.X, Y: b.Domain.Max.Y}
	default:
		a.Attach, a.Boundary = b.cornerPath(c, q)
	}

	span := r2.Norm(r2.Sub(a.Boundary, a.Attach))
	if span <= degenerate {
		a.S = 1
		return a
	}
	a.S = clamp(r2.Norm(r2.Sub(q, a.Attach))/span, 0, 1)
	return a
}

// cornerPath casts a ray from the sample corner through q and stops it on
// the domain edge it reaches first. The corner bisector splits the region;
// the half-angle between the bisector and the domain/sample corner diagonal
// decides which edge the ray meets.
func (b *Blender) cornerPath(c Case, q r2.Vec) (attach, boundary r2.Vec) {
	var cs, cd r2.Vec
	switch c {
	case SouthWest:
		cs, cd = b.Sample.Min, b.Domain.Min
	case SouthEast:
		cs = r2.Vec{X: b.Sample.Max.X, Y: b.Sample.Min.Y}
		cd = r2.Vec{X: b.Domain.Max.X, Y: b.Domain.Min.Y}
	case NorthWest:
		cs = r2.Vec{X: b.Sample.Min.X, Y: b.Sample.Max.Y}
		cd = r2.Vec{X: b.Domain.Min.X, Y: b.Domain.Max.Y}
	default:
		cs, cd = b.Sample.Max, b.Domain.Max
	}

	v := r2.Sub(q, cs)
	n := r2.Norm(v)
	if n <= degenerate {
		return cs, cs
	}
	dx := math.Abs(cd.X - cs.X)
	dy := math.Abs(cd.Y - cs.Y)

	// Angles are measured from the outward x direction of the corner.
	phi := math.Atan2(math.Abs(v.Y), math.Abs(v.X))
	half := math.Atan2(dy, dx) - math.Pi/4
	var length float64
	if phi-math.Pi/4 <= half {
		length = dx / math.Cos(phi)
	} else {
		length = dy / math.Sin(phi)
	}
	return cs, r2.Add(cs, r2.Scale(length/n, v))
}

// S returns the normalised blending parameter at q; zero inside the sample.
func (b *Blender) S(q r2.Vec) float64 {
	return b.Attach(q).S
}

// Elevation returns the blended ground elevation at q. Inside the sampled
// rectangle it is the surface itself; outside it runs from the surface at
// the attach point (s = 0) to FlatLevel at the domain boundary (s = 1).
func (b *Blender) Elevation(q r2.Vec) (float64, error) {
	a := b.Attach(q)
	if a.Case == Inside {
		return b.Surface.Project(q.X, q.Y, b.FlatLevel)
	}
	d0, err := b.Surface.Project(a.Attach.X, a.Attach.Y, b.FlatLevel)
	if err != nil {
		return 0, fmt.Errorf("blending %s of sample at (%g, %g): %w", a.Case, q.X, q.Y, err)
	}
	return b.Strategy.Blend(a.Attach, a.Boundary, d0, b.FlatLevel, a.S), nil
}
