package surface

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Faultbox/terramesh/internal/blend"
	"github.com/Faultbox/terramesh/pkg/formats"
	"github.com/Faultbox/terramesh/pkg/geom"
)

// planeField samples z = a + bx*x + by*y on an n x n grid.
func planeField(t *testing.T, origin r2.Vec, spacing float64, n int, a, bx, by float64) *Heightfield {
	t.Helper()
	values := make([]float64, n*n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			x := origin.X + float64(i)*spacing
			y := origin.Y + float64(j)*spacing
			values[j*n+i] = a + bx*x + by*y
		}
	}
	h, err := NewHeightfield(origin, spacing, spacing, n, n, values)
	require.NoError(t, err)
	return h
}

func TestHeightfield_BilinearReproducesPlane(t *testing.T) {
	t.Parallel()
	h := planeField(t, r2.Vec{X: 10, Y: -5}, 2.5, 9, 1, 2, 3)

	for _, p := range []r2.Vec{
		{X: 10, Y: -5},
		{X: 11.3, Y: -2.2},
		{X: 27.9, Y: 9.1},
		{X: 30, Y: 15}, // far corner
		{X: 30, Y: 0},  // far x edge
	} {
		got, ok := h.HeightAt(p.X, p.Y)
		require.True(t, ok, "point %v", p)
		assert.InDelta(t, 1+2*p.X+3*p.Y, got, 1e-9, "point %v", p)
	}
}

func TestHeightfield_OutsideAndHoles(t *testing.T) {
	t.Parallel()
	values := []float64{
		0, 1, 2,
		3, 4, 5,
		6, 7, math.NaN(),
	}
	h, err := NewHeightfield(r2.Vec{}, 1, 1, 3, 3, values)
	require.NoError(t, err)

	_, ok := h.HeightAt(-0.1, 1)
	assert.False(t, ok, "outside west")
	_, ok = h.HeightAt(1, 2.1)
	assert.False(t, ok, "outside north")
	_, ok = h.HeightAt(1.5, 1.5)
	assert.False(t, ok, "cell touching the hole")

	got, ok := h.HeightAt(0, 0)
	require.True(t, ok)
	assert.Equal(t, 0.0, got)

	lo, hi := h.Range()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 7.0, hi)
}

func TestNewHeightfield_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		dx     float64
		nx, ny int
		values []float64
	}{
		{"single column", 1, 1, 2, []float64{0, 0}},
		{"zero spacing", 0, 2, 2, []float64{0, 0, 0, 0}},
		{"value count", 1, 2, 2, []float64{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHeightfield(r2.Vec{}, tt.dx, 1, tt.nx, tt.ny, tt.values)
			assert.ErrorIs(t, err, ErrInvalidHeightfield)
		})
	}
}

func TestFromGrid(t *testing.T) {
	t.Parallel()
	g := &formats.Grid{
		Width: 2, Height: 2,
		OriginX: 5, OriginY: 6,
		DX: 1, DY: 2,
		Values: []float32{1, 2, 3, 4},
	}
	h, err := FromGrid(g)
	require.NoError(t, err)

	assert.Equal(t, geom.Box2{Min: r2.Vec{X: 5, Y: 6}, Max: r2.Vec{X: 6, Y: 8}}, h.Bounds())
	got, ok := h.HeightAt(5.5, 7)
	require.True(t, ok)
	assert.InDelta(t, 2.5, got, 1e-12)
}

func TestSurface_Project(t *testing.T) {
	t.Parallel()
	s := &Surface{
		Grid:           planeField(t, r2.Vec{}, 1, 11, 105, 0, 0),
		ZeroLevel:      100,
		SearchDistance: 10,
	}

	got, err := s.Project(5, 5, 0)
	require.NoError(t, err)
	assert.InDelta(t, 5, got, 1e-12)

	_, err = s.Project(20, 5, 0)
	var pe *ProjectionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 20.0, pe.X)
	assert.ErrorIs(t, err, ErrNoIntersection)

	_, err = s.Project(5, 5, 50)
	assert.ErrorIs(t, err, ErrNoIntersection, "beyond search distance")

	s.SearchDistance = 0
	_, err = s.Project(5, 5, 50)
	assert.NoError(t, err, "unlimited search")
}

// newTestBlender places a constant surface of height 5 over [0,100]^2.
func newTestBlender(t *testing.T, domain, sample geom.Box2) *Blender {
	t.Helper()
	surf := &Surface{Grid: planeField(t, r2.Vec{X: 0, Y: 0}, 5, 21, 5, 0, 0)}
	b, err := NewBlender(domain, sample, surf, nil, 0)
	require.NoError(t, err)
	return b
}

func square(lo, hi float64) geom.Box2 {
	return geom.Box2{Min: r2.Vec{X: lo, Y: lo}, Max: r2.Vec{X: hi, Y: hi}}
}

func TestBlender_Classify(t *testing.T) {
	t.Parallel()
	b := newTestBlender(t, square(0, 100), square(40, 60))

	tests := []struct {
		q    r2.Vec
		want Case
	}{
		{r2.Vec{X: 50, Y: 50}, Inside},
		{r2.Vec{X: 40, Y: 60}, Inside},
		{r2.Vec{X: 10, Y: 50}, West},
		{r2.Vec{X: 90, Y: 50}, East},
		{r2.Vec{X: 50, Y: 10}, South},
		{r2.Vec{X: 50, Y: 90}, North},
		{r2.Vec{X: 10, Y: 10}, SouthWest},
		{r2.Vec{X: 90, Y: 10}, SouthEast},
		{r2.Vec{X: 10, Y: 90}, NorthWest},
		{r2.Vec{X: 90, Y: 90}, NorthEast},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.Classify(tt.q), "q=%v", tt.q)
	}
	assert.True(t, NorthEast.IsCorner())
	assert.False(t, West.IsCorner())
	assert.Equal(t, "southwest", SouthWest.String())
}

func TestBlender_EdgeCase(t *testing.T) {
	t.Parallel()
	b := newTestBlender(t, square(0, 100), square(40, 60))

	a := b.Attach(r2.Vec{X: 20, Y: 50})
	assert.Equal(t, West, a.Case)
	assert.Equal(t, r2.Vec{X: 40, Y: 50}, a.Attach)
	assert.Equal(t, r2.Vec{X: 0, Y: 50}, a.Boundary)
	assert.InDelta(t, 0.5, a.S, 1e-12)

	got, err := b.Elevation(r2.Vec{X: 20, Y: 50})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, got, 1e-12)
}

func TestBlender_EndpointsExact(t *testing.T) {
	t.Parallel()
	b := newTestBlender(t, square(0, 100), square(40, 60))

	// s = 0 reproduces the surface, s = 1 the flat level.
	for _, q := range []r2.Vec{{X: 40, Y: 45}, {X: 60, Y: 60}, {X: 55, Y: 40}} {
		got, err := b.Elevation(q)
		require.NoError(t, err)
		assert.Equal(t, 5.0, got, "attach %v", q)
	}
	for _, q := range []r2.Vec{{X: 0, Y: 50}, {X: 100, Y: 45}, {X: 50, Y: 0}} {
		got, err := b.Elevation(q)
		require.NoError(t, err)
		assert.Equal(t, 0.0, got, "boundary %v", q)
	}
	for _, q := range []r2.Vec{{X: 0, Y: 0}, {X: 100, Y: 100}} {
		got, err := b.Elevation(q)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, got, 1e-9, "corner %v", q)
	}
}

func TestBlender_CornerSquare(t *testing.T) {
	t.Parallel()
	b := newTestBlender(t, square(0, 100), square(40, 60))

	a := b.Attach(r2.Vec{X: 20, Y: 20})
	assert.Equal(t, SouthWest, a.Case)
	assert.Equal(t, r2.Vec{X: 40, Y: 40}, a.Attach)
	assert.InDelta(t, 0, a.Boundary.X, 1e-9)
	assert.InDelta(t, 0, a.Boundary.Y, 1e-9)
	assert.InDelta(t, 0.5, a.S, 1e-9)
}

func TestBlender_CornerRectangular(t *testing.T) {
	t.Parallel()
	sample := geom.Box2{Min: r2.Vec{X: 40, Y: 20}, Max: r2.Vec{X: 60, Y: 80}}
	b := newTestBlender(t, square(0, 100), sample)

	// The diagonal ray leaves through the nearer south edge.
	a := b.Attach(r2.Vec{X: 30, Y: 10})
	assert.Equal(t, SouthWest, a.Case)
	assert.InDelta(t, 20, a.Boundary.X, 1e-9)
	assert.InDelta(t, 0, a.Boundary.Y, 1e-9)
	assert.InDelta(t, 0.5, a.S, 1e-9)

	// A shallow ray leaves through the west edge.
	a = b.Attach(r2.Vec{X: 20, Y: 15})
	assert.InDelta(t, 0, a.Boundary.X, 1e-9)
	assert.InDelta(t, 10, a.Boundary.Y, 1e-9)
}

func TestBlender_SInUnitInterval(t *testing.T) {
	t.Parallel()
	sample := geom.Box2{Min: r2.Vec{X: 35, Y: 45}, Max: r2.Vec{X: 70, Y: 65}}
	b := newTestBlender(t, square(0, 100), sample)

	for x := 0.0; x <= 100; x += 2.5 {
		for y := 0.0; y <= 100; y += 2.5 {
			q := r2.Vec{X: x, Y: y}
			s := b.S(q)
			assert.True(t, s >= 0 && s <= 1, "s=%v at %v", s, q)

			got, err := b.Elevation(q)
			require.NoError(t, err)
			assert.True(t, got >= -1e-12 && got <= 5+1e-12, "elevation %v at %v", got, q)
		}
	}
}

func TestBlender_Strategy(t *testing.T) {
	t.Parallel()
	st, err := blend.NewStrategy(blend.StrategySpec{
		Kind:       blend.StrategyLinear,
		Transition: blend.TransitionSpec{Kind: blend.TransitionArctan, Steepness: 4, Window: 1},
	})
	require.NoError(t, err)

	surf := &Surface{Grid: planeField(t, r2.Vec{}, 5, 21, 5, 0, 0)}
	b, err := NewBlender(square(0, 100), square(40, 60), surf, st, 0)
	require.NoError(t, err)

	// The arctan core is symmetric about the midpoint.
	got, err := b.Elevation(r2.Vec{X: 20, Y: 50})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, got, 1e-9)

	got, err = b.Elevation(r2.Vec{X: 30, Y: 50})
	require.NoError(t, err)
	assert.Greater(t, got, 2.5)
	assert.Less(t, got, 5.0)
}

func TestNewBlender_Invalid(t *testing.T) {
	t.Parallel()
	surf := &Surface{Grid: planeField(t, r2.Vec{X: 30, Y: 30}, 5, 9, 0, 0, 0)}

	_, err := NewBlender(square(0, 100), square(40, 120), surf, nil, 0)
	assert.ErrorIs(t, err, ErrInvalidBlender, "sample outside domain")

	_, err = NewBlender(square(0, 100), square(20, 60), surf, nil, 0)
	assert.ErrorIs(t, err, ErrInvalidBlender, "sample not covered")

	_, err = NewBlender(square(0, 100), square(40, 40), surf, nil, 0)
	assert.ErrorIs(t, err, ErrInvalidBlender, "empty sample")
}

func TestBlender_ProjectionFailure(t *testing.T) {
	t.Parallel()
	surf := &Surface{Grid: planeField(t, r2.Vec{}, 5, 21, 50, 0, 0), SearchDistance: 10}
	b, err := NewBlender(square(0, 100), square(40, 60), surf, nil, 0)
	require.NoError(t, err)

	_, err = b.Elevation(r2.Vec{X: 10, Y: 50})
	assert.ErrorIs(t, err, ErrNoIntersection)
}
