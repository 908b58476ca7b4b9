// Package blend provides transition functions and blending strategies used to
// combine two elevation candidates across a transition zone.
package blend

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/interp"
)

// ErrInvalidTransition is returned for malformed transition parameters.
var ErrInvalidTransition = errors.New("invalid transition")

// Transition maps a normalised path parameter s in [0,1] onto [0,1].
// Implementations satisfy Apply(0) == 0 and Apply(1) == 1.
type Transition interface {
	Apply(s float64) float64
}

// TransitionKind enumerates the available transition functions.
type TransitionKind int

// Transition kinds.
const (
	TransitionLinear TransitionKind = iota
	TransitionArctan
	TransitionPoints
)

// String returns the configuration name of the kind.
func (k TransitionKind) String() string {
	switch k {
	case TransitionLinear:
		return "linear"
	case TransitionArctan:
		return "arctan"
	case TransitionPoints:
		return "points"
	default:
		return fmt.Sprintf("TransitionKind(%d)", int(k))
	}
}

// ParseTransitionKind converts a configuration name into a TransitionKind.
func ParseTransitionKind(s string) (TransitionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return TransitionLinear, nil
	case "arctan", "atan":
		return TransitionArctan, nil
	case "points", "controlpoints", "control_points":
		return TransitionPoints, nil
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidTransition, s)
	}
}

// TransitionSpec selects and parameterises a transition.
type TransitionSpec struct {
	Kind      TransitionKind
	Steepness float64      // Arctan only
	Window    float64      // Arctan only, width of the core window in (0,1]
	Points    [][2]float64 // Control points only, interior (s, value) pairs
}

// NewTransition resolves a spec into a Transition.
func NewTransition(spec TransitionSpec) (Transition, error) {
	switch spec.Kind {
	case TransitionLinear:
		return Linear{}, nil
	case TransitionArctan:
		if spec.Steepness < 0 || math.IsNaN(spec.Steepness) {
			return nil, fmt.Errorf("%w: arctan steepness %v", ErrInvalidTransition, spec.Steepness)
		}
		if spec.Window < 0 || spec.Window > 1 || math.IsNaN(spec.Window) {
			return nil, fmt.Errorf("%w: arctan window %v outside [0,1]", ErrInvalidTransition, spec.Window)
		}
		return Arctan{Steepness: spec.Steepness, Window: spec.Window}, nil
	case TransitionPoints:
		return NewControlPoints(spec.Points)
	default:
		return nil, fmt.Errorf("%w: kind %v", ErrInvalidTransition, spec.Kind)
	}
}

// Linear is the identity transition.
type Linear struct{}

// Apply returns s clamped to [0,1].
func (Linear) Apply(s float64) float64 {
	return clamp01(s)
}

// Arctan is an arctangent step confined to a core window centred on 0.5.
// Outside the window the transition is the identity, so values never
// overshoot the linear ramp at the window edges.
type Arctan struct {
	Steepness float64
	Window    float64
}

// Apply evaluates the transition.
func (a Arctan) Apply(s float64) float64 {
	s = clamp01(s)
	if a.Steepness <= 0 || a.Window <= 0 {
		return s
	}
	half := 0.5 * math.Min(a.Window, 1)
	if math.Abs(s-0.5) >= half {
		return s
	}
	u := (s - 0.5) / half
	return 0.5 + half*math.Atan(a.Steepness*u)/math.Atan(a.Steepness)
}

// ControlPoints is a monotone path through user points with forced
// endpoints (0,0) and (1,1).
type ControlPoints struct {
	xs, ys []float64
	pred   interp.Predictor
}

// NewControlPoints fits a monotone interpolant through points. Points must
// have strictly increasing s inside (0,1) and non-decreasing values in [0,1].
func NewControlPoints(points [][2]float64) (*ControlPoints, error) {
	xs := make([]float64, 0, len(points)+2)
	ys := make([]float64, 0, len(points)+2)
	xs = append(xs, 0)
	ys = append(ys, 0)
	for i, p := range points {
		x, y := p[0], p[1]
		if !(x > 0 && x < 1) {
			return nil, fmt.Errorf("%w: point %d has s=%v outside (0,1)", ErrInvalidTransition, i, x)
		}
		if !(y >= 0 && y <= 1) {
			return nil, fmt.Errorf("%w: point %d has value %v outside [0,1]", ErrInvalidTransition, i, y)
		}
		if x <= xs[len(xs)-1] {
			return nil, fmt.Errorf("%w: point %d s=%v is not increasing", ErrInvalidTransition, i, x)
		}
		if y < ys[len(ys)-1] {
			return nil, fmt.Errorf("%w: point %d value %v decreases", ErrInvalidTransition, i, y)
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	xs = append(xs, 1)
	ys = append(ys, 1)

	var pred interp.FittablePredictor
	if len(xs) < 3 {
		pred = &interp.PiecewiseLinear{}
	} else {
		pred = &interp.FritschButland{}
	}
	if err := pred.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
	return &ControlPoints{xs: xs, ys: ys, pred: pred}, nil
}

// Apply evaluates the path at s.
func (c *ControlPoints) Apply(s float64) float64 {
	s = clamp01(s)
	switch s {
	case 0:
		return 0
	case 1:
		return 1
	}
	return clamp01(c.pred.Predict(s))
}

// Points returns the knots including the forced endpoints.
func (c *ControlPoints) Points() [][2]float64 {
	out := make([][2]float64, len(c.xs))
	for i := range c.xs {
		out[i] = [2]float64{c.xs[i], c.ys[i]}
	}
	return out
}

func clamp01(s float64) float64 {
	if s < 0 || math.IsNaN(s) {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
