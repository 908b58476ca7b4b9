package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Faultbox/terramesh/internal/grading"
	"github.com/Faultbox/terramesh/internal/terrain"
	"github.com/Faultbox/terramesh/internal/topology"
)

// ErrInvalidConfig marks configuration errors.
var ErrInvalidConfig = errors.New("invalid configuration")

// FieldError reports a rejected configuration field.
type FieldError struct {
	Field  string
	Value  any
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s = %v: %s", ErrInvalidConfig, e.Field, e.Value, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidConfig
}

var axisNames = [3]string{"x", "y", "z"}

// Validate checks the whole configuration and returns every problem found,
// joined. It runs the grading solver and resolves features and strategies,
// so a nil result means Build will not fail on configuration.
func (c *Config) Validate() error {
	var errs []error
	add := func(field string, value any, reason string, args ...any) {
		errs = append(errs, &FieldError{Field: field, Value: value, Reason: fmt.Sprintf(reason, args...)})
	}

	d := c.Domain
	for i, name := range axisNames {
		if !(d.Dimensions[i] > 0) || math.IsInf(d.Dimensions[i], 0) {
			add("domain.dimensions."+name, d.Dimensions[i], "must be positive")
		}
		if d.Blocks[i] < 1 {
			add("domain.blocks."+name, d.Blocks[i], "must be at least 1")
		}
		if d.Cells[i] < 1 {
			add("domain.cells."+name, d.Cells[i], "must be at least 1")
		}
	}
	if _, err := c.Frame(); err != nil {
		add("domain.x_axis", d.XAxis, "%v with z_axis %v", err, d.ZAxis)
	}

	if len(errs) == 0 {
		for i, name := range axisNames {
			regions, err := c.Regions(i)
			if err != nil {
				add("grading."+name, c.gradingList(i), "%v", err)
				continue
			}
			if _, err := grading.Solve(c.Axis(i), regions); err != nil {
				add("grading."+name, c.gradingList(i), "%v", err)
			}
		}
	}

	for i, f := range c.Features {
		spec, err := f.spec()
		if err == nil {
			_, err = terrain.NewFeature(spec)
		}
		if err != nil {
			add(fmt.Sprintf("features[%d]", i), f.Name, "%v", err)
		}
	}

	if _, err := c.Strategy(); err != nil {
		add("blending", c.Blending.Strategy, "%v", err)
	}

	if c.Surface.File != "" {
		sample := c.SampleBox()
		if sample.Empty() {
			add("surface.bounds", c.Surface.Bounds, "sampled rectangle has no area")
		} else if !c.DomainBox().ContainsBox(sample) {
			add("surface.bounds", c.Surface.Bounds, "sampled rectangle must lie inside the domain footprint")
		}
		if c.Surface.SearchDistance < 0 {
			add("surface.search_distance", c.Surface.SearchDistance, "must not be negative")
		}
	}

	for _, axis := range c.Patches.Cyclic {
		if axis != "x" && axis != "y" {
			add("patches.cyclic", axis, "only horizontal axes x and y can be cyclic")
		}
	}
	for name, typ := range c.Patches.Types {
		if !isPatchName(name) {
			add("patches.types", name, "unknown patch")
			continue
		}
		if _, err := topology.ParsePatchType(typ); err != nil {
			add("patches.types."+name, typ, "%v", err)
		}
	}

	if c.Edges.SamplesPerCell < 0 {
		add("edges.samples_per_cell", c.Edges.SamplesPerCell, "must not be negative")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		add("logging.level", c.Logging.Level, "expected debug, info, warn or error")
	}

	return errors.Join(errs...)
}

// PatchNames lists the boundary patches of the box domain in output order.
var PatchNames = []string{"west", "east", "south", "north", "ground", "sky"}

func isPatchName(name string) bool {
	for _, n := range PatchNames {
		if n == name {
			return true
		}
	}
	return false
}

func (c *Config) gradingList(axis int) []RegionConfig {
	switch axis {
	case 0:
		return c.Grading.X
	case 1:
		return c.Grading.Y
	default:
		return c.Grading.Z
	}
}
