// Package terrain models parametric hill features that perturb a flat base
// terrain.
//
// A hill profile is defined implicitly by a shape parameter xi in [0, R]:
//
//	t     = pi * xi / R
//	d(xi) = xi - (R/(2*pi)) * sin t   horizontal distance from the summit
//	e(xi) = (H/2) * (1 + cos t)       elevation
//
// The slope is zero at the summit and at the foot. d is Kepler's equation in
// disguise and has no closed-form inverse, so heights are found by bisecting xi.
package terrain

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// ErrInvalidProfile is returned for malformed profile parameters.
var ErrInvalidProfile = errors.New("invalid terrain profile")

// maxBisectionDepth bounds the bisection depth for extreme radius/step ratios.
const maxBisectionDepth = 60

// Profile is a radially symmetric hill.
type Profile struct {
	Radius    float64
	MaxHeight float64
	Step      float64 // Distance resolution

	depth int
	table *Table
}

// NewProfile creates a profile with its own memo table.
func NewProfile(radius, maxHeight, step float64) (*Profile, error) {
	return NewProfileWithTable(radius, maxHeight, step, NewTable())
}

// NewProfileWithTable creates a profile that memoises into table.
func NewProfileWithTable(radius, maxHeight, step float64, table *Table) (*Profile, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("%w: radius %v", ErrInvalidProfile, radius)
	}
	if !(maxHeight >= 0) || math.IsInf(maxHeight, 0) {
		return nil, fmt.Errorf("%w: max height %v", ErrInvalidProfile, maxHeight)
	}
	if !(step > 0) || step >= radius {
		return nil, fmt.Errorf("%w: step %v for radius %v", ErrInvalidProfile, step, radius)
	}
	if table == nil {
		table = NewTable()
	}

	// d'(xi) <= 1.5, so after k halvings every bracket spans at most
	// 1.5R/2^k in distance. Pick k so that span is within one step.
	depth := int(math.Ceil(math.Log2(1.5 * radius / step)))
	depth = max(1, min(depth, maxBisectionDepth))

	return &Profile{
		Radius:    radius,
		MaxHeight: maxHeight,
		Step:      step,
		depth:     depth,
		table:     table,
	}, nil
}

// Distance returns the horizontal distance from the summit at shape parameter xi.
func (p *Profile) Distance(xi float64) float64 {
	t := math.Pi * xi / p.Radius
	return xi - p.Radius/(2*math.Pi)*math.Sin(t)
}

// Elevation returns the elevation at shape parameter xi.
func (p *Profile) Elevation(xi float64) float64 {
	t := math.Pi * xi / p.Radius
	return 0.5 * p.MaxHeight * (1 + math.Cos(t))
}

// Height returns the elevation at horizontal distance d from the summit.
// Distances are quantised to Step and memoised.
func (p *Profile) Height(d float64) float64 {
	if d <= 0 {
		return p.MaxHeight
	}
	if d >= p.Radius {
		return 0
	}
	key := int64(math.Round(d / p.Step))
	if h, ok := p.table.Get(key); ok {
		return h
	}
	h := p.evaluate(float64(key) * p.Step)
	p.table.Put(key, h)
	return h
}

// IsInside reports whether d lies within the hill footprint.
func (p *Profile) IsInside(d float64) bool {
	return d < p.Radius
}

// Table returns the memo table backing Height.
func (p *Profile) Table() *Table {
	return p.table
}

// Depth returns the number of bisection steps per evaluation.
func (p *Profile) Depth() int {
	return p.depth
}

// evaluate inverts d by bisection and interpolates the bracket elevations by
// inverse distance.
func (p *Profile) evaluate(q float64) float64 {
	if q <= 0 {
		return p.MaxHeight
	}
	if q >= p.Radius {
		return 0
	}

	lo, hi := 0.0, p.Radius
	for i := 0; i < p.depth; i++ {
		mid := 0.5 * (lo + hi)
		if p.Distance(mid) < q {
			lo = mid
		} else {
			hi = mid
		}
	}

	wLo := q - p.Distance(lo)
	wHi := p.Distance(hi) - q
	eLo, eHi := p.Elevation(lo), p.Elevation(hi)
	if wHi <= 0 {
		return eHi
	}
	if wLo <= 0 {
		return eLo
	}
	// Inverse distance weights 1/wLo and 1/wHi, normalised.
	return (eLo*wHi + eHi*wLo) / (wLo + wHi)
}

// Table memoises heights keyed by quantised distance. It is safe for
// concurrent use.
type Table struct {
	mu     sync.Mutex
	values map[int64]float64
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{values: make(map[int64]float64)}
}

// Get returns the cached value for key.
func (t *Table) Get(key int64) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.values[key]
	return v, ok
}

// Put stores a value for key.
func (t *Table) Put(key int64, v float64) {
	t.mu.Lock()
	t.values[key] = v
	t.mu.Unlock()
}

// Len returns the number of cached entries.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.values)
}

// Reset drops every cached entry.
func (t *Table) Reset() {
	t.mu.Lock()
	clear(t.values)
	t.mu.Unlock()
}
