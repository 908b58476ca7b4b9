package mesher

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Faultbox/terramesh/internal/config"
	"github.com/Faultbox/terramesh/internal/surface"
	"github.com/Faultbox/terramesh/internal/terrain"
	"github.com/Faultbox/terramesh/pkg/formats"
)

// Ground evaluates the terrain elevation of the domain footprint in local
// coordinates: the blended sampled surface (or flat zero without one), then
// the terrain features in order.
type Ground struct {
	Blender  *surface.Blender
	Features terrain.Features
}

// NewGround builds the ground model of cfg. surf overrides the configured
// surface file when non-nil.
func NewGround(cfg *config.Config, surf *surface.Surface) (*Ground, error) {
	specs, err := cfg.FeatureSpecs()
	if err != nil {
		return nil, err
	}
	features, err := terrain.NewFeatures(specs)
	if err != nil {
		return nil, err
	}
	g := &Ground{Features: features}

	if surf == nil && cfg.Surface.File != "" {
		grid, err := formats.ParseGridFile(cfg.Surface.File)
		if err != nil {
			return nil, fmt.Errorf("loading surface: %w", err)
		}
		field, err := surface.FromGrid(grid)
		if err != nil {
			return nil, fmt.Errorf("loading surface %s: %w", cfg.Surface.File, err)
		}
		surf = &surface.Surface{Grid: field}
	}
	if surf == nil {
		return g, nil
	}
	placed := *surf
	placed.ZeroLevel = cfg.Surface.ZeroLevel
	placed.SearchDistance = cfg.Surface.SearchDistance

	st, err := cfg.Strategy()
	if err != nil {
		return nil, err
	}
	g.Blender, err = surface.NewBlender(cfg.DomainBox(), cfg.SampleBox(), &placed, st, 0)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Elevation returns the ground height at q.
func (g *Ground) Elevation(q r2.Vec) (float64, error) {
	h := 0.0
	if g.Blender != nil {
		var err error
		h, err = g.Blender.Elevation(q)
		if err != nil {
			return 0, err
		}
	}
	return g.Features.Apply(q, h), nil
}

// Flat reports whether the ground is identically zero.
func (g *Ground) Flat() bool {
	return g.Blender == nil && len(g.Features) == 0
}
