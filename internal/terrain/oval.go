package terrain

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultAngleStep is the angular resolution used when none is configured.
const DefaultAngleStep = math.Pi / 180

// Oval stretches a radially symmetric profile into an elliptic footprint.
// The base profile radius is the major semi-axis a, along Direction; CoRadius
// is the minor semi-axis b.
type Oval struct {
	base      *Profile
	coRadius  float64
	direction r2.Vec
	angleStep float64

	mu       sync.Mutex
	profiles map[int]*Profile
}

// NewOval creates an oval profile around base.
func NewOval(base *Profile, coRadius float64, direction r2.Vec, angleStep float64) (*Oval, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: nil base profile", ErrInvalidProfile)
	}
	if !(coRadius > 0) || math.IsInf(coRadius, 0) {
		return nil, fmt.Errorf("%w: co-radius %v", ErrInvalidProfile, coRadius)
	}
	if r2.Norm(direction) == 0 {
		return nil, fmt.Errorf("%w: zero direction", ErrInvalidProfile)
	}
	if angleStep <= 0 {
		angleStep = DefaultAngleStep
	}
	if angleStep > math.Pi/2 {
		return nil, fmt.Errorf("%w: angle step %v", ErrInvalidProfile, angleStep)
	}
	return &Oval{
		base:      base,
		coRadius:  coRadius,
		direction: r2.Unit(direction),
		angleStep: angleStep,
		profiles:  map[int]*Profile{0: base},
	}, nil
}

// Base returns the major-axis profile.
func (o *Oval) Base() *Profile {
	return o.base
}

// EffectiveRadius returns the footprint radius at angle theta from the major axis.
func (o *Oval) EffectiveRadius(theta float64) float64 {
	_, q := o.quantize(theta)
	return o.radiusAt(q)
}

// Height returns the elevation at radial distance r and angle theta from the
// major axis.
func (o *Oval) Height(theta, r float64) float64 {
	return o.profileAt(theta).Height(r)
}

// HeightAt returns the elevation at an offset from the summit.
func (o *Oval) HeightAt(offset r2.Vec) float64 {
	r := r2.Norm(offset)
	if r == 0 {
		return o.base.MaxHeight
	}
	return o.Height(o.angleOf(offset), r)
}

// IsInside reports whether offset lies within the footprint.
func (o *Oval) IsInside(offset r2.Vec) bool {
	r := r2.Norm(offset)
	if r == 0 {
		return true
	}
	return r < o.profileAt(o.angleOf(offset)).Radius
}

// CachedAngles returns the number of cached angular profiles.
func (o *Oval) CachedAngles() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.profiles)
}

func (o *Oval) angleOf(offset r2.Vec) float64 {
	return math.Atan2(math.Abs(r2.Cross(o.direction, offset)), r2.Dot(o.direction, offset))
}

// quantize folds theta into [0, pi/2] and snaps it to the angle step.
// Angles within half a step of pi/2 snap to the minor axis itself, which
// gets its own key even when the step does not divide pi/2.
func (o *Oval) quantize(theta float64) (int, float64) {
	theta = math.Mod(math.Abs(theta), math.Pi)
	if theta > math.Pi/2 {
		theta = math.Pi - theta
	}
	if theta >= math.Pi/2-o.angleStep/2 {
		return int(math.Ceil(math.Pi/2/o.angleStep)), math.Pi / 2
	}
	k := int(math.Round(theta / o.angleStep))
	return k, float64(k) * o.angleStep
}

func (o *Oval) radiusAt(theta float64) float64 {
	a, b := o.base.Radius, o.coRadius
	switch theta {
	case 0:
		return a
	case math.Pi / 2:
		return b
	}
	bc := b * math.Cos(theta)
	as := a * math.Sin(theta)
	return a * b / math.Sqrt(bc*bc+as*as)
}

func (o *Oval) profileAt(theta float64) *Profile {
	k, q := o.quantize(theta)

	o.mu.Lock()
	defer o.mu.Unlock()
	if p, ok := o.profiles[k]; ok {
		return p
	}
	radius := o.radiusAt(q)
	step := math.Min(o.base.Step, radius/2)
	p, err := NewProfile(radius, o.base.MaxHeight, step)
	if err != nil {
		// radius and step are positive by construction
		panic(err)
	}
	o.profiles[k] = p
	return p
}
