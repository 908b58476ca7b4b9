package config

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/terramesh/internal/blend"
	"github.com/Faultbox/terramesh/internal/grading"
	"github.com/Faultbox/terramesh/internal/terrain"
	"github.com/Faultbox/terramesh/pkg/geom"
)

// Frame returns the local coordinate frame of the domain.
func (c *Config) Frame() (geom.Frame, error) {
	return geom.NewFrame(vec3(c.Domain.Origin), vec3(c.Domain.XAxis), vec3(c.Domain.ZAxis))
}

// Axis returns the grading axis description for axis i.
func (c *Config) Axis(i int) grading.Axis {
	return grading.Axis{
		Length: c.Domain.Dimensions[i],
		Blocks: c.Domain.Blocks[i],
		Cells:  c.Domain.Cells[i],
	}
}

// Regions converts the region list of axis i. An empty list yields one
// uniform remainder region.
func (c *Config) Regions(i int) ([]grading.Region, error) {
	list := c.gradingList(i)
	if len(list) == 0 {
		return []grading.Region{{Remainder: true, Mode: grading.Uniform}}, nil
	}
	out := make([]grading.Region, len(list))
	for k, r := range list {
		mode, err := grading.ParseMode(r.Mode)
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", k, err)
		}
		out[k] = grading.Region{Width: r.Width, Blocks: r.Blocks, Remainder: r.Remainder, Mode: mode}
	}
	return out, nil
}

// FeatureSpecs converts the feature list.
func (c *Config) FeatureSpecs() ([]terrain.FeatureSpec, error) {
	out := make([]terrain.FeatureSpec, len(c.Features))
	for i, f := range c.Features {
		spec, err := f.spec()
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		out[i] = spec
	}
	return out, nil
}

func (f FeatureConfig) spec() (terrain.FeatureSpec, error) {
	kind, err := terrain.ParseFeatureKind(f.Kind)
	if err != nil {
		return terrain.FeatureSpec{}, err
	}
	policy, err := terrain.ParsePolicy(f.Policy)
	if err != nil {
		return terrain.FeatureSpec{}, err
	}
	t, err := f.Transition.spec()
	if err != nil {
		return terrain.FeatureSpec{}, err
	}
	return terrain.FeatureSpec{
		Name:       f.Name,
		Kind:       kind,
		Center:     vec2(f.Center),
		Radius:     f.Radius,
		Height:     f.Height,
		Step:       f.Step,
		CoRadius:   f.CoRadius,
		Direction:  vec2(f.Direction),
		AngleStep:  f.AngleStep * math.Pi / 180,
		Policy:     policy,
		Transition: t,
	}, nil
}

func (t TransitionConfig) spec() (blend.TransitionSpec, error) {
	kind, err := blend.ParseTransitionKind(t.Kind)
	if err != nil {
		return blend.TransitionSpec{}, err
	}
	return blend.TransitionSpec{Kind: kind, Steepness: t.Steepness, Window: t.Window, Points: t.Points}, nil
}

// StrategySpec converts the blending section.
func (c *Config) StrategySpec() (blend.StrategySpec, error) {
	b := c.Blending
	kind, err := blend.ParseStrategyKind(b.Strategy)
	if err != nil {
		return blend.StrategySpec{}, err
	}
	t, err := b.Transition.spec()
	if err != nil {
		return blend.StrategySpec{}, err
	}
	return blend.StrategySpec{
		Kind:       kind,
		Transition: t,
		Start:      b.Start,
		End:        b.End,
		Center:     vec2(b.Center),
		Inner:      b.Inner,
		Outer:      b.Outer,
	}, nil
}

// Strategy resolves the blending section into a Strategy.
func (c *Config) Strategy() (blend.Strategy, error) {
	spec, err := c.StrategySpec()
	if err != nil {
		return nil, err
	}
	return blend.NewStrategy(spec)
}

// DomainBox returns the horizontal footprint of the domain in local
// coordinates.
func (c *Config) DomainBox() geom.Box2 {
	return geom.Box2{Max: r2.Vec{X: c.Domain.Dimensions[0], Y: c.Domain.Dimensions[1]}}
}

// SampleBox returns the sampled surface rectangle in local coordinates.
func (c *Config) SampleBox() geom.Box2 {
	b := c.Surface.Bounds
	return geom.NewBox2(r2.Vec{X: b[0], Y: b[1]}, r2.Vec{X: b[2], Y: b[3]})
}

func vec3(v [3]float64) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

func vec2(v [2]float64) r2.Vec {
	return r2.Vec{X: v[0], Y: v[1]}
}
