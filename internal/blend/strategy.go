package blend

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrInvalidStrategy is returned for malformed blending parameters.
var ErrInvalidStrategy = errors.New("invalid blending strategy")

// Strategy blends two data values attached to two points.
//
// Transform remaps the path parameter s before interpolation. Blend returns
// exactly d0 for s <= 0 and exactly d1 for s >= 1.
type Strategy interface {
	Transform(p0, p1 r2.Vec, s float64) float64
	Blend(p0, p1 r2.Vec, d0, d1, s float64) float64
}

// StrategyKind enumerates the blending strategies.
type StrategyKind int

// Strategy kinds.
const (
	StrategyLinear StrategyKind = iota
	StrategyDistance
	StrategyRadial
)

// String returns the configuration name of the kind.
func (k StrategyKind) String() string {
	switch k {
	case StrategyLinear:
		return "linear"
	case StrategyDistance:
		return "distance"
	case StrategyRadial:
		return "radial"
	default:
		return fmt.Sprintf("StrategyKind(%d)", int(k))
	}
}

// ParseStrategyKind converts a configuration name into a StrategyKind.
func ParseStrategyKind(s string) (StrategyKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return StrategyLinear, nil
	case "distance":
		return StrategyDistance, nil
	case "radial":
		return StrategyRadial, nil
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidStrategy, s)
	}
}

// StrategySpec selects and parameterises a strategy.
type StrategySpec struct {
	Kind       StrategyKind
	Transition TransitionSpec

	// Distance: blending starts Start units from p0 and completes at End.
	// End <= 0 means the full p0-p1 distance.
	Start, End float64

	// Radial: blending runs from Inner to Outer distance from Center.
	Center       r2.Vec
	Inner, Outer float64
}

// NewStrategy resolves a spec into a Strategy.
func NewStrategy(spec StrategySpec) (Strategy, error) {
	t, err := NewTransition(spec.Transition)
	if err != nil {
		return nil, err
	}
	switch spec.Kind {
	case StrategyLinear:
		return LinearBlend{Transition: t}, nil
	case StrategyDistance:
		if spec.Start < 0 {
			return nil, fmt.Errorf("%w: distance start %v is negative", ErrInvalidStrategy, spec.Start)
		}
		if spec.End > 0 && spec.End <= spec.Start {
			return nil, fmt.Errorf("%w: distance end %v not beyond start %v", ErrInvalidStrategy, spec.End, spec.Start)
		}
		return DistanceBlend{Transition: t, Start: spec.Start, End: spec.End}, nil
	case StrategyRadial:
		if spec.Inner < 0 || spec.Outer <= spec.Inner {
			return nil, fmt.Errorf("%w: radial range [%v, %v]", ErrInvalidStrategy, spec.Inner, spec.Outer)
		}
		return RadialBlend{Transition: t, Center: spec.Center, Inner: spec.Inner, Outer: spec.Outer}, nil
	default:
		return nil, fmt.Errorf("%w: kind %v", ErrInvalidStrategy, spec.Kind)
	}
}

// LinearBlend applies the transition directly to s.
type LinearBlend struct {
	Transition Transition
}

// Transform implements Strategy.
func (b LinearBlend) Transform(_, _ r2.Vec, s float64) float64 {
	return apply(b.Transition, s)
}

// Blend implements Strategy.
func (b LinearBlend) Blend(p0, p1 r2.Vec, d0, d1, s float64) float64 {
	return mix(b, p0, p1, d0, d1, s)
}

// DistanceBlend remaps s by the distance travelled from p0.
type DistanceBlend struct {
	Transition Transition
	Start, End float64
}

// Transform implements Strategy.
func (b DistanceBlend) Transform(p0, p1 r2.Vec, s float64) float64 {
	total := r2.Norm(r2.Sub(p1, p0))
	end := b.End
	if end <= 0 || end > total {
		end = total
	}
	l := clamp01(s) * total
	if end <= b.Start {
		if l >= end {
			return apply(b.Transition, 1)
		}
		return apply(b.Transition, 0)
	}
	return apply(b.Transition, (l-b.Start)/(end-b.Start))
}

// Blend implements Strategy.
func (b DistanceBlend) Blend(p0, p1 r2.Vec, d0, d1, s float64) float64 {
	return mix(b, p0, p1, d0, d1, s)
}

// RadialBlend remaps s by the distance of the path point from Center.
type RadialBlend struct {
	Transition   Transition
	Center       r2.Vec
	Inner, Outer float64
}

// Transform implements Strategy.
func (b RadialBlend) Transform(p0, p1 r2.Vec, s float64) float64 {
	p := r2.Add(p0, r2.Scale(clamp01(s), r2.Sub(p1, p0)))
	r := r2.Norm(r2.Sub(p, b.Center))
	return apply(b.Transition, (r-b.Inner)/(b.Outer-b.Inner))
}

// Blend implements Strategy.
func (b RadialBlend) Blend(p0, p1 r2.Vec, d0, d1, s float64) float64 {
	return mix(b, p0, p1, d0, d1, s)
}

func mix(st Strategy, p0, p1 r2.Vec, d0, d1, s float64) float64 {
	if s <= 0 || math.IsNaN(s) {
		return d0
	}
	if s >= 1 {
		return d1
	}
	t := st.Transform(p0, p1, s)
	return (1-t)*d0 + t*d1
}

func apply(t Transition, s float64) float64 {
	if t == nil {
		return clamp01(s)
	}
	return t.Apply(s)
}
