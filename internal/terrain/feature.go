package terrain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Faultbox/terramesh/internal/blend"
)

// ErrInvalidFeature is returned for malformed feature specs.
var ErrInvalidFeature = errors.New("invalid terrain feature")

// Policy governs how a feature height h updates an existing elevation h0.
type Policy int

// Combination policies.
const (
	PolicyAdd Policy = iota
	PolicyMax
	PolicyAverage
	PolicyHill
)

// String returns the configuration name of the policy.
func (p Policy) String() string {
	switch p {
	case PolicyAdd:
		return "add"
	case PolicyMax:
		return "max"
	case PolicyAverage:
		return "average"
	case PolicyHill:
		return "hill"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy converts a configuration name into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "add":
		return PolicyAdd, nil
	case "max":
		return PolicyMax, nil
	case "average", "avg":
		return PolicyAverage, nil
	case "hill":
		return PolicyHill, nil
	default:
		return 0, fmt.Errorf("%w: unknown policy %q", ErrInvalidFeature, s)
	}
}

// Combine returns the new elevation. PolicyHill blends from h0 towards h
// with weight t(h/maxHeight), so the feature replaces the terrain fully at
// its summit; a nil t is linear.
func (p Policy) Combine(h0, h, maxHeight float64, t blend.Transition) float64 {
	switch p {
	case PolicyMax:
		return math.Max(h0, h)
	case PolicyAverage:
		return 0.5 * (h0 + h)
	case PolicyHill:
		if maxHeight <= 0 {
			return h0
		}
		s := h / maxHeight
		w := s
		if t != nil {
			w = t.Apply(s)
		}
		return (1-w)*h0 + w*h
	default:
		return h0 + h
	}
}

// Feature is a ground object that contributes elevation near its footprint.
type Feature interface {
	HeightAt(p r2.Vec) float64
	IsInside(p r2.Vec) bool
}

// Hill is a radially symmetric hill centred at Center.
type Hill struct {
	Center  r2.Vec
	Profile *Profile
}

// HeightAt implements Feature.
func (h Hill) HeightAt(p r2.Vec) float64 {
	return h.Profile.Height(r2.Norm(r2.Sub(p, h.Center)))
}

// IsInside implements Feature.
func (h Hill) IsInside(p r2.Vec) bool {
	return h.Profile.IsInside(r2.Norm(r2.Sub(p, h.Center)))
}

// OvalHill is an elliptic hill centred at Center.
type OvalHill struct {
	Center r2.Vec
	Oval   *Oval
}

// HeightAt implements Feature.
func (h OvalHill) HeightAt(p r2.Vec) float64 {
	return h.Oval.HeightAt(r2.Sub(p, h.Center))
}

// IsInside implements Feature.
func (h OvalHill) IsInside(p r2.Vec) bool {
	return h.Oval.IsInside(r2.Sub(p, h.Center))
}

// Placed is a feature with its combination policy.
type Placed struct {
	Feature
	Name       string
	Policy     Policy
	MaxHeight  float64
	Transition blend.Transition
}

// Features applies an ordered list of placed features.
type Features []Placed

// Apply combines every feature whose footprint contains p with h0, in order.
func (fs Features) Apply(p r2.Vec, h0 float64) float64 {
	h := h0
	for _, f := range fs {
		if !f.IsInside(p) {
			continue
		}
		h = f.Policy.Combine(h, f.HeightAt(p), f.MaxHeight, f.Transition)
	}
	return h
}

// FeatureKind enumerates feature shapes.
type FeatureKind int

// Feature kinds.
const (
	FeatureHill FeatureKind = iota
	FeatureOval
)

// String returns the configuration name of the kind.
func (k FeatureKind) String() string {
	switch k {
	case FeatureHill:
		return "hill"
	case FeatureOval:
		return "oval"
	default:
		return fmt.Sprintf("FeatureKind(%d)", int(k))
	}
}

// ParseFeatureKind converts a configuration name into a FeatureKind.
func ParseFeatureKind(s string) (FeatureKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "hill":
		return FeatureHill, nil
	case "oval", "ovalhill", "oval_hill":
		return FeatureOval, nil
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidFeature, s)
	}
}

// FeatureSpec describes one configured feature.
type FeatureSpec struct {
	Name       string
	Kind       FeatureKind
	Center     r2.Vec
	Radius     float64
	Height     float64
	Step       float64 // 0 selects Radius/1000
	CoRadius   float64 // Oval only
	Direction  r2.Vec  // Oval only, major axis direction
	AngleStep  float64 // Oval only, 0 selects DefaultAngleStep
	Policy     Policy
	Transition blend.TransitionSpec
}

// NewFeature resolves a spec into a placed feature.
func NewFeature(spec FeatureSpec) (Placed, error) {
	step := spec.Step
	if step == 0 {
		step = spec.Radius / 1000
	}
	profile, err := NewProfile(spec.Radius, spec.Height, step)
	if err != nil {
		return Placed{}, fmt.Errorf("feature %q: %w", spec.Name, err)
	}
	t, err := blend.NewTransition(spec.Transition)
	if err != nil {
		return Placed{}, fmt.Errorf("feature %q: %w", spec.Name, err)
	}

	var f Feature
	switch spec.Kind {
	case FeatureHill:
		f = Hill{Center: spec.Center, Profile: profile}
	case FeatureOval:
		dir := spec.Direction
		if dir == (r2.Vec{}) {
			dir = r2.Vec{X: 1}
		}
		oval, err := NewOval(profile, spec.CoRadius, dir, spec.AngleStep)
		if err != nil {
			return Placed{}, fmt.Errorf("feature %q: %w", spec.Name, err)
		}
		f = OvalHill{Center: spec.Center, Oval: oval}
	default:
		return Placed{}, fmt.Errorf("%w: feature %q has kind %v", ErrInvalidFeature, spec.Name, spec.Kind)
	}

	return Placed{
		Feature:    f,
		Name:       spec.Name,
		Policy:     spec.Policy,
		MaxHeight:  spec.Height,
		Transition: t,
	}, nil
}

// NewFeatures resolves specs in order.
func NewFeatures(specs []FeatureSpec) (Features, error) {
	out := make(Features, 0, len(specs))
	for _, s := range specs {
		f, err := NewFeature(s)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
