package grading

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-12)

func TestSolve_TwoUniformRegions(t *testing.T) {
	res, err := Solve(Axis{Length: 100, Blocks: 10}, []Region{
		{Width: 40, Blocks: 4, Mode: Uniform},
		{Remainder: true, Mode: Uniform},
	})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	want := []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	if diff := cmp.Diff(want, res.Boundaries, approx); diff != "" {
		t.Errorf("boundaries mismatch (-want +got):\n%s", diff)
	}

	wantRegions := []ResolvedRegion{
		{Start: 0, End: 40, FirstBlock: 0, LastBlock: 3, Mode: Uniform},
		{Start: 40, End: 100, FirstBlock: 4, LastBlock: 9, Mode: Uniform},
	}
	if diff := cmp.Diff(wantRegions, res.Regions, approx); diff != "" {
		t.Errorf("regions mismatch (-want +got):\n%s", diff)
	}

	for i, r := range res.Ratios {
		if r != 1 {
			t.Errorf("ratio %d = %v, want 1", i, r)
		}
	}
}

func TestSolve_SingleSmoothingRegionIsUniform(t *testing.T) {
	res, err := Solve(Axis{Length: 30, Blocks: 3}, []Region{
		{Remainder: true, Mode: Smoothing},
	})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	want := []float64{0, 10, 20, 30}
	if diff := cmp.Diff(want, res.Boundaries, approx); diff != "" {
		t.Errorf("boundaries mismatch (-want +got):\n%s", diff)
	}
}

func TestSolve_OneBlockSmoothingMatchesUniform(t *testing.T) {
	regions := []Region{
		{Width: 10, Blocks: 5},
		{Width: 20, Blocks: 1, Mode: Smoothing},
		{Remainder: true},
	}
	smoothed, err := Solve(Axis{Length: 100, Blocks: 10}, regions)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	regions[1].Mode = Uniform
	uniform, err := Solve(Axis{Length: 100, Blocks: 10}, regions)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	if diff := cmp.Diff(uniform.Boundaries, smoothed.Boundaries); diff != "" {
		t.Errorf("one-block smoothing differs from uniform (-uniform +smoothed):\n%s", diff)
	}
}

func TestSolve_UniformRegionsHaveConstantWidth(t *testing.T) {
	res, err := Solve(Axis{Length: 7.3, Blocks: 11}, []Region{
		{Width: 1.1, Blocks: 3},
		{Width: 2.2, Blocks: 5, Mode: Smoothing},
		{Remainder: true},
	})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	widths := res.Widths()
	for _, r := range res.Regions {
		if r.Mode != Uniform {
			continue
		}
		want := r.Spacing()
		for i := r.FirstBlock; i <= r.LastBlock; i++ {
			if math.Abs(widths[i]-want) > 1e-12 {
				t.Errorf("block %d width = %v, want %v", i, widths[i], want)
			}
		}
	}
}

func TestSolve_SmoothingRampsFromFineNeighbour(t *testing.T) {
	res, err := Solve(Axis{Length: 100, Blocks: 19, Cells: 4}, []Region{
		{Width: 10, Blocks: 10},
		{Remainder: true, Mode: Smoothing},
	})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	assertMonotone(t, res, 100)

	widths := res.Widths()
	smooth := res.Regions[1]
	for i := smooth.FirstBlock + 1; i <= smooth.LastBlock; i++ {
		if widths[i] < widths[i-1]-1e-12 {
			t.Errorf("width %d (%v) shrinks after width %d (%v)", i, widths[i], i-1, widths[i-1])
		}
	}
	if widths[smooth.FirstBlock] >= widths[smooth.LastBlock] {
		t.Errorf("expected first smoothed block (%v) narrower than last (%v)",
			widths[smooth.FirstBlock], widths[smooth.LastBlock])
	}

	total := 0.0
	for i := smooth.FirstBlock; i <= smooth.LastBlock; i++ {
		total += widths[i]
	}
	if math.Abs(total-90) > 1e-9 {
		t.Errorf("smoothed region width = %v, want 90", total)
	}

	if res.Ratios[smooth.FirstBlock] <= 1 {
		t.Errorf("expected expanding ratio at region start, got %v", res.Ratios[smooth.FirstBlock])
	}
	if res.Ratios[0] != 1 {
		t.Errorf("uniform block ratio = %v, want 1", res.Ratios[0])
	}
}

func TestSolve_BoundariesStrictlyIncreasing(t *testing.T) {
	tests := []struct {
		name    string
		axis    Axis
		regions []Region
	}{
		{"empty list", Axis{Length: 12, Blocks: 5}, nil},
		{"coarse fine coarse", Axis{Length: 50, Blocks: 14}, []Region{
			{Width: 20, Blocks: 2, Mode: Smoothing},
			{Width: 10, Blocks: 10},
			{Remainder: true, Mode: Smoothing},
		}},
		{"all smoothing", Axis{Length: 3, Blocks: 9}, []Region{
			{Width: 0.5, Blocks: 4, Mode: Smoothing},
			{Width: 1.5, Blocks: 2, Mode: Smoothing},
			{Width: 1, Blocks: 3, Mode: Smoothing},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Solve(tt.axis, tt.regions)
			if err != nil {
				t.Fatalf("Solve failed: %v", err)
			}
			if len(res.Boundaries) != tt.axis.Blocks+1 {
				t.Fatalf("got %d boundaries, want %d", len(res.Boundaries), tt.axis.Blocks+1)
			}
			if len(res.Ratios) != tt.axis.Blocks {
				t.Fatalf("got %d ratios, want %d", len(res.Ratios), tt.axis.Blocks)
			}
			assertMonotone(t, res, tt.axis.Length)
		})
	}
}

func TestSolve_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		axis    Axis
		regions []Region
		want    error
	}{
		{"zero length", Axis{Length: 0, Blocks: 2}, nil, ErrInvalidAxis},
		{"no blocks", Axis{Length: 1, Blocks: 0}, nil, ErrInvalidAxis},
		{"remainder not last", Axis{Length: 10, Blocks: 2}, []Region{{Remainder: true}, {Width: 5, Blocks: 1}}, ErrInvalidRegions},
		{"too many blocks", Axis{Length: 10, Blocks: 2}, []Region{{Width: 5, Blocks: 2}, {Remainder: true}}, ErrInvalidRegions},
		{"short widths", Axis{Length: 10, Blocks: 2}, []Region{{Width: 5, Blocks: 1}, {Width: 4, Blocks: 1}}, ErrInvalidRegions},
		{"block mismatch", Axis{Length: 10, Blocks: 3}, []Region{{Width: 5, Blocks: 1}, {Width: 5, Blocks: 1}}, ErrInvalidRegions},
		{"negative width", Axis{Length: 10, Blocks: 2}, []Region{{Width: -1, Blocks: 1}, {Remainder: true}}, ErrInvalidRegions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Solve(tt.axis, tt.regions)
			if !errors.Is(err, tt.want) {
				t.Errorf("Solve() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUniformBoundaries(t *testing.T) {
	got := UniformBoundaries(4, 4)
	want := []float64{0, 1, 2, 3, 4}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("Uniform mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRegions(t *testing.T) {
	got, err := ParseRegions("40:4, 10:2:smoothing ,rest:uniform")
	if err != nil {
		t.Fatalf("ParseRegions failed: %v", err)
	}
	want := []Region{
		{Width: 40, Blocks: 4, Mode: Uniform},
		{Width: 10, Blocks: 2, Mode: Smoothing},
		{Remainder: true, Mode: Uniform},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseRegions mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"abc:1", "1:x", "1:2:wavy", "rest:uniform:3", "7"} {
		if _, err := ParseRegions(bad); err == nil {
			t.Errorf("ParseRegions(%q) expected error", bad)
		}
	}
}

func assertMonotone(t *testing.T, res *Result, length float64) {
	t.Helper()
	b := res.Boundaries
	if b[0] != 0 {
		t.Errorf("first boundary = %v, want 0", b[0])
	}
	if math.Abs(b[len(b)-1]-length) > 1e-9*length {
		t.Errorf("last boundary = %v, want %v", b[len(b)-1], length)
	}
	for i := 1; i < len(b); i++ {
		if !(b[i] > b[i-1]) {
			t.Errorf("boundary %d (%v) <= boundary %d (%v)", i, b[i], i-1, b[i-1])
		}
	}
}
