package geom

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func near(a, b r3.Vec) bool {
	return r3.Norm(r3.Sub(a, b)) < 1e-9
}

func TestIdentityFrame(t *testing.T) {
	f := Identity()
	p := r3.Vec{X: 1, Y: 2, Z: 3}
	if got := f.ToGlobal(p); got != p {
		t.Errorf("ToGlobal() = %v, want %v", got, p)
	}
}

func TestNewFrameRoundTrip(t *testing.T) {
	f, err := NewFrame(r3.Vec{X: 10, Y: -5, Z: 2}, r3.Vec{X: 1, Y: 1}, r3.Vec{X: 0.2, Z: 1})
	if err != nil {
		t.Fatalf("NewFrame failed: %v", err)
	}

	if math.Abs(r3.Dot(f.X, f.Z)) > 1e-12 {
		t.Errorf("x and z axes are not orthogonal: %v", r3.Dot(f.X, f.Z))
	}
	if !near(r3.Cross(f.X, f.Y), f.Z) {
		t.Errorf("frame is not right-handed: x cross y = %v, z = %v", r3.Cross(f.X, f.Y), f.Z)
	}

	local := r3.Vec{X: 3, Y: 4, Z: 5}
	back := f.ToLocal(f.ToGlobal(local))
	if !near(back, local) {
		t.Errorf("ToLocal(ToGlobal(p)) = %v, want %v", back, local)
	}
}

func TestNewFrameDegenerate(t *testing.T) {
	if _, err := NewFrame(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 2}); err == nil {
		t.Error("expected error for parallel axes")
	}
	if _, err := NewFrame(r3.Vec{}, r3.Vec{}, r3.Vec{Z: 1}); err == nil {
		t.Error("expected error for zero x axis")
	}
}

func TestBox2(t *testing.T) {
	b := NewBox2(r2.Vec{X: 4, Y: 3}, r2.Vec{X: 0, Y: 1})
	if b.Min != (r2.Vec{X: 0, Y: 1}) || b.Max != (r2.Vec{X: 4, Y: 3}) {
		t.Fatalf("NewBox2 did not canonicalise corners: %+v", b)
	}

	tests := []struct {
		p    r2.Vec
		want bool
	}{
		{r2.Vec{X: 2, Y: 2}, true},
		{r2.Vec{X: 0, Y: 1}, true},
		{r2.Vec{X: 4, Y: 3}, true},
		{r2.Vec{X: -0.1, Y: 2}, false},
		{r2.Vec{X: 2, Y: 3.1}, false},
	}
	for _, tc := range tests {
		if got := b.Contains(tc.p); got != tc.want {
			t.Errorf("Contains(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}

	if c := b.Center(); c != (r2.Vec{X: 2, Y: 2}) {
		t.Errorf("Center() = %v", c)
	}
	if !b.ContainsBox(NewBox2(r2.Vec{X: 1, Y: 1.5}, r2.Vec{X: 3, Y: 2.5})) {
		t.Error("expected inner box to be contained")
	}
	if b.Empty() {
		t.Error("box should not be empty")
	}
}
