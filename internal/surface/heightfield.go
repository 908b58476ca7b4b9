// Package surface samples an external terrain surface and blends it into the
// flat ground of the surrounding domain.
package surface

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Faultbox/terramesh/pkg/formats"
	"github.com/Faultbox/terramesh/pkg/geom"
)

// ErrInvalidHeightfield is returned for grids that cannot be sampled.
var ErrInvalidHeightfield = errors.New("invalid heightfield")

// Heightfield is a regular grid of elevations. Values are row-major with
// row j at Origin.Y + j*DY. NaN marks a hole.
type Heightfield struct {
	Origin r2.Vec
	DX, DY float64
	NX, NY int
	Values []float64
}

// NewHeightfield validates and wraps a sampled grid.
func NewHeightfield(origin r2.Vec, dx, dy float64, nx, ny int, values []float64) (*Heightfield, error) {
	if nx < 2 || ny < 2 {
		return nil, fmt.Errorf("%w: %dx%d samples, need at least 2x2", ErrInvalidHeightfield, nx, ny)
	}
	if !(dx > 0) || !(dy > 0) {
		return nil, fmt.Errorf("%w: spacing %v x %v", ErrInvalidHeightfield, dx, dy)
	}
	if len(values) != nx*ny {
		return nil, fmt.Errorf("%w: %d values for %dx%d", ErrInvalidHeightfield, len(values), nx, ny)
	}
	return &Heightfield{Origin: origin, DX: dx, DY: dy, NX: nx, NY: ny, Values: values}, nil
}

// FromGrid builds a heightfield from a parsed elevation grid.
func FromGrid(g *formats.Grid) (*Heightfield, error) {
	values := make([]float64, len(g.Values))
	for i, v := range g.Values {
		values[i] = float64(v)
	}
	return NewHeightfield(r2.Vec{X: g.OriginX, Y: g.OriginY}, g.DX, g.DY, g.Width, g.Height, values)
}

// Bounds returns the rectangle covered by the sample nodes.
func (h *Heightfield) Bounds() geom.Box2 {
	return geom.Box2{
		Min: h.Origin,
		Max: r2.Vec{
			X: h.Origin.X + float64(h.NX-1)*h.DX,
			Y: h.Origin.Y + float64(h.NY-1)*h.DY,
		},
	}
}

// At returns the sample at column i, row j.
func (h *Heightfield) At(i, j int) float64 {
	return h.Values[j*h.NX+i]
}

// HeightAt returns the bilinearly interpolated elevation at (x, y).
// The second result is false outside the grid or when a surrounding sample
// is a hole.
func (h *Heightfield) HeightAt(x, y float64) (float64, bool) {
	if !h.Bounds().Contains(r2.Vec{X: x, Y: y}) {
		return 0, false
	}

	fx := (x - h.Origin.X) / h.DX
	fy := (y - h.Origin.Y) / h.DY
	i := int(fx)
	j := int(fy)

	// Points on the far edges use the last cell.
	if i >= h.NX-1 {
		i = h.NX - 2
	}
	if j >= h.NY-1 {
		j = h.NY - 2
	}
	tx := clamp(fx-float64(i), 0, 1)
	ty := clamp(fy-float64(j), 0, 1)

	sw := h.At(i, j)
	se := h.At(i+1, j)
	nw := h.At(i, j+1)
	ne := h.At(i+1, j+1)

	south := sw*(1-tx) + se*tx
	north := nw*(1-tx) + ne*tx
	v := south*(1-ty) + north*ty
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Range returns the minimum and maximum defined elevation.
func (h *Heightfield) Range() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range h.Values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
