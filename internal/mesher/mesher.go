// Package mesher turns a configuration into a terrain-following block mesh.
//
// A build validates the configuration, solves the grading of all three axes
// concurrently, evaluates the ground elevation on the block grid, and then
// assembles blocks, curved ground-following edges and boundary patches
// strictly in order. Any error discards the whole build.
package mesher

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/terramesh/internal/config"
	"github.com/Faultbox/terramesh/internal/grading"
	"github.com/Faultbox/terramesh/internal/logger"
	"github.com/Faultbox/terramesh/internal/surface"
	"github.com/Faultbox/terramesh/internal/topology"
	"github.com/Faultbox/terramesh/pkg/geom"
)

// ErrGroundAboveTop is returned when the terrain reaches the domain top.
var ErrGroundAboveTop = errors.New("ground reaches the top of the domain")

// straightTolerance is the largest chord deviation, relative to the domain
// height, for which a ground edge stays straight.
const straightTolerance = 1e-9

// Mesh is the result of a build.
type Mesh struct {
	BuildID string
	Shape   [3]int // Blocks per axis
	Points  []r3.Vec
	Blocks  []topology.Block
	Edges   []topology.Edge
	Patches []topology.Patch
	Grading [3]*grading.Result
}

// Option configures a build.
type Option func(*options)

type options struct {
	log     *zap.Logger
	surface *surface.Surface
}

// WithLogger logs the build to l instead of the package logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithSurface uses s as the sampled surface instead of loading
// surface.file.
func WithSurface(s *surface.Surface) Option {
	return func(o *options) { o.surface = s }
}

// Build generates the mesh described by cfg.
func Build(ctx context.Context, cfg *config.Config, opts ...Option) (*Mesh, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Named("mesher")
	}

	id := uuid.New().String()
	log := o.log.With(zap.String("build", id))
	start := time.Now()
	log.Info("build started", zap.Ints("blocks", cfg.Domain.Blocks[:]))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	frame, err := cfg.Frame()
	if err != nil {
		return nil, err
	}

	res, err := solveGrading(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Debug("grading solved",
		zap.Float64s("x", res[0].Boundaries),
		zap.Float64s("y", res[1].Boundaries),
		zap.Float64s("z", res[2].Boundaries))

	ground, err := NewGround(cfg, o.surface)
	if err != nil {
		return nil, err
	}

	b := &build{
		cfg:    cfg,
		frame:  frame,
		ground: ground,
		res:    res,
		nx:     cfg.Domain.Blocks[0],
		ny:     cfg.Domain.Blocks[1],
		nz:     cfg.Domain.Blocks[2],
		top:    cfg.Domain.Dimensions[2],
	}
	steps := []struct {
		name string
		run  func() error
	}{
		{"ground", b.elevations},
		{"points", b.points},
		{"blocks", b.blocks},
		{"edges", b.edges},
		{"patches", b.patches},
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		done := logger.Timed(s.name, zap.String("build", id))
		if err := s.run(); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		done()
	}

	m := &Mesh{
		BuildID: id,
		Shape:   [3]int{b.nx, b.ny, b.nz},
		Points:  b.topo.Arena.Points(),
		Blocks:  b.topo.Blocks(),
		Edges:   b.topo.Edges(),
		Patches: b.topo.Patches(),
		Grading: res,
	}
	log.Info("build finished",
		zap.Int("points", len(m.Points)),
		zap.Int("blocks", len(m.Blocks)),
		zap.Int("edges", len(m.Edges)),
		zap.Duration("took", time.Since(start)))
	return m, nil
}

// solveGrading solves the three axes concurrently.
func solveGrading(ctx context.Context, cfg *config.Config) ([3]*grading.Result, error) {
	var res [3]*grading.Result
	g, ctx := errgroup.WithContext(ctx)
	for i := range 3 {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			regions, err := cfg.Regions(i)
			if err != nil {
				return err
			}
			r, err := grading.Solve(cfg.Axis(i), regions)
			if err != nil {
				return fmt.Errorf("grading axis %d: %w", i, err)
			}
			res[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	return res, nil
}

// build holds the state of one Build call.
type build struct {
	cfg        *config.Config
	frame      geom.Frame
	ground     *Ground
	res        [3]*grading.Result
	nx, ny, nz int
	top        float64

	// heights holds the ground elevation of each (i, j) grid column.
	heights []float64
	topo    *topology.Builder
}

func (b *build) column(i, j int) int {
	return i + (b.nx+1)*j
}

func (b *build) node(i, j, k int) int {
	return i + (b.nx+1)*(j+(b.ny+1)*k)
}

func (b *build) elevations() error {
	xs, ys := b.res[0].Boundaries, b.res[1].Boundaries
	b.heights = make([]float64, (b.nx+1)*(b.ny+1))
	for j, y := range ys {
		for i, x := range xs {
			h, err := b.groundAt(r2.Vec{X: x, Y: y})
			if err != nil {
				return err
			}
			b.heights[b.column(i, j)] = h
		}
	}
	return nil
}

// groundAt evaluates and checks the ground height at q.
func (b *build) groundAt(q r2.Vec) (float64, error) {
	h, err := b.ground.Elevation(q)
	if err != nil {
		return 0, err
	}
	if h >= b.top || math.IsNaN(h) {
		return 0, fmt.Errorf("%w: elevation %g at (%g, %g), top %g", ErrGroundAboveTop, h, q.X, q.Y, b.top)
	}
	return h, nil
}

// lift maps a flat-domain height z onto the column whose ground is h.
func (b *build) lift(h, z float64) float64 {
	return h + (b.top-h)*z/b.top
}

func (b *build) points() error {
	xs, ys, zs := b.res[0].Boundaries, b.res[1].Boundaries, b.res[2].Boundaries
	arena := topology.NewArena((b.nx + 1) * (b.ny + 1) * (b.nz + 1))
	for _, z := range zs {
		for j, y := range ys {
			for i, x := range xs {
				local := r3.Vec{X: x, Y: y, Z: b.lift(b.heights[b.column(i, j)], z)}
				arena.Add(b.frame.ToGlobal(local))
			}
		}
	}
	b.topo = topology.NewBuilder(arena)
	return nil
}

func (b *build) blocks() error {
	cells := b.cfg.Domain.Cells
	for k := range b.nz {
		for j := range b.ny {
			for i := range b.nx {
				verts := [8]int{
					b.node(i, j, k), b.node(i+1, j, k), b.node(i+1, j+1, k), b.node(i, j+1, k),
					b.node(i, j, k+1), b.node(i+1, j, k+1), b.node(i+1, j+1, k+1), b.node(i, j+1, k+1),
				}
				ratios := [3]float64{b.res[0].Ratios[i], b.res[1].Ratios[j], b.res[2].Ratios[k]}
				if _, err := b.topo.AddBlock(verts, cells, ratios); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// edges curves every horizontal block edge below the top so it follows the
// ground between grid nodes.
func (b *build) edges() error {
	spc := b.cfg.Edges.SamplesPerCell
	if spc == 0 || b.ground.Flat() {
		return nil
	}
	xs, ys, zs := b.res[0].Boundaries, b.res[1].Boundaries, b.res[2].Boundaries
	cells := b.cfg.Domain.Cells

	for k := range b.nz {
		z := zs[k]
		for j := range b.ny + 1 {
			for i := range b.nx {
				p0 := r2.Vec{X: xs[i], Y: ys[j]}
				p1 := r2.Vec{X: xs[i+1], Y: ys[j]}
				if err := b.edge(b.node(i, j, k), b.node(i+1, j, k), p0, p1, z, cells[0]*spc); err != nil {
					return err
				}
			}
		}
		for i := range b.nx + 1 {
			for j := range b.ny {
				p0 := r2.Vec{X: xs[i], Y: ys[j]}
				p1 := r2.Vec{X: xs[i], Y: ys[j+1]}
				if err := b.edge(b.node(i, j, k), b.node(i, j+1, k), p0, p1, z, cells[1]*spc); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// edge registers a polyline from start to end with the given number of
// segments, unless the lifted ground is straight along it.
func (b *build) edge(start, end int, p0, p1 r2.Vec, z float64, segments int) error {
	a := b.topo.Arena.At(start)
	c := b.topo.Arena.At(end)
	interior := make([]r3.Vec, 0, segments-1)
	curved := false
	for m := 1; m < segments; m++ {
		t := float64(m) / float64(segments)
		q := r2.Add(p0, r2.Scale(t, r2.Sub(p1, p0)))
		h, err := b.groundAt(q)
		if err != nil {
			return err
		}
		p := b.frame.ToGlobal(r3.Vec{X: q.X, Y: q.Y, Z: b.lift(h, z)})
		chord := r3.Add(a, r3.Scale(t, r3.Sub(c, a)))
		if r3.Norm(r3.Sub(p, chord)) > straightTolerance*b.top {
			curved = true
		}
		interior = append(interior, p)
	}
	if !curved {
		return nil
	}
	_, err := b.topo.AddEdge(start, end, interior, topology.PolyLine)
	return err
}

func (b *build) patches() error {
	types := b.cfg.Patches.Types
	ids := make(map[string]int, len(config.PatchNames))
	for _, name := range config.PatchNames {
		typ, err := topology.ParsePatchType(types[name])
		if err != nil {
			return err
		}
		id, err := b.topo.AddPatch(name, typ)
		if err != nil {
			return err
		}
		ids[name] = id
	}

	add := func(name string, i, j, k, face int) error {
		return b.topo.AddPatchFace(ids[name], i+b.nx*(j+b.ny*k), face)
	}
	for k := range b.nz {
		for j := range b.ny {
			if err := add("west", 0, j, k, topology.XMin); err != nil {
				return err
			}
			if err := add("east", b.nx-1, j, k, topology.XMax); err != nil {
				return err
			}
		}
		for i := range b.nx {
			if err := add("south", i, 0, k, topology.YMin); err != nil {
				return err
			}
			if err := add("north", i, b.ny-1, k, topology.YMax); err != nil {
				return err
			}
		}
	}
	for j := range b.ny {
		for i := range b.nx {
			if err := add("ground", i, j, 0, topology.ZMin); err != nil {
				return err
			}
			if err := add("sky", i, j, b.nz-1, topology.ZMax); err != nil {
				return err
			}
		}
	}

	for _, axis := range b.cfg.Patches.Cyclic {
		var err error
		switch axis {
		case "x":
			err = b.topo.SetCyclic("west", "east")
		case "y":
			err = b.topo.SetCyclic("south", "north")
		}
		if err != nil {
			return err
		}
	}

	if open := b.topo.UnpatchedFaces(); len(open) > 0 {
		return fmt.Errorf("%d boundary faces without a patch, first block %d face %s",
			len(open), open[0].Block, topology.FaceName(open[0].Face))
	}
	return nil
}
