// Package grading places block boundaries along one mesh axis.
//
// An axis of length L split into N blocks is described by an ordered list of
// regions. Each region owns a contiguous run of blocks and either spaces them
// uniformly or smooths the spacing towards its neighbours. Solve is a pure
// function, so the three axes of a domain can be solved independently.
package grading

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Grading errors.
var (
	ErrInvalidAxis    = errors.New("invalid grading axis")
	ErrInvalidRegions = errors.New("invalid grading regions")
)

// lengthTolerance is the relative tolerance for region widths summing to the axis length.
const lengthTolerance = 1e-9

// Mode selects how a region places its interior boundaries.
type Mode int

// Region modes.
const (
	Uniform Mode = iota
	Smoothing
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case Uniform:
		return "uniform"
	case Smoothing:
		return "smoothing"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a configuration name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "uniform":
		return Uniform, nil
	case "smoothing", "smooth":
		return Smoothing, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidRegions, s)
	}
}

// Axis describes one axis of the domain.
type Axis struct {
	Length float64 // Total axis length
	Blocks int     // Number of blocks along the axis
	Cells  int     // Cells per block along the axis (0 means 1)
}

// Region is one entry of an axis region list.
// A Remainder region takes whatever width and blocks the prior regions left
// and must be the last entry.
type Region struct {
	Width     float64
	Blocks    int
	Remainder bool
	Mode      Mode
}

// ResolvedRegion is a region with absolute bounds and block range.
type ResolvedRegion struct {
	Start      float64
	End        float64
	FirstBlock int
	LastBlock  int
	Mode       Mode
}

// Blocks returns the number of blocks in the region.
func (r ResolvedRegion) Blocks() int {
	return r.LastBlock - r.FirstBlock + 1
}

// Spacing returns the uniform block width of the region.
func (r ResolvedRegion) Spacing() float64 {
	return (r.End - r.Start) / float64(r.Blocks())
}

// Result holds the solved boundaries of one axis.
type Result struct {
	Boundaries []float64        // Blocks+1 positions from 0 to Length
	Ratios     []float64        // Per-block expansion ratio
	Regions    []ResolvedRegion // Regions with absolute bounds
}

// Widths returns the width of every block.
func (r *Result) Widths() []float64 {
	w := make([]float64, len(r.Boundaries)-1)
	for i := range w {
		w[i] = r.Boundaries[i+1] - r.Boundaries[i]
	}
	return w
}

// Blocks returns the number of blocks along the axis.
func (r *Result) Blocks() int {
	return len(r.Boundaries) - 1
}

// Solve resolves regions for the axis and places every block boundary.
// An empty region list is treated as a single uniform remainder region.
func Solve(axis Axis, regions []Region) (*Result, error) {
	if !(axis.Length > 0) || math.IsInf(axis.Length, 0) {
		return nil, fmt.Errorf("%w: length %v", ErrInvalidAxis, axis.Length)
	}
	if axis.Blocks < 1 {
		return nil, fmt.Errorf("%w: block count %d", ErrInvalidAxis, axis.Blocks)
	}
	if axis.Cells < 0 {
		return nil, fmt.Errorf("%w: cell count %d", ErrInvalidAxis, axis.Cells)
	}

	resolved, err := resolve(axis, regions)
	if err != nil {
		return nil, err
	}

	bounds := make([]float64, axis.Blocks+1)
	for _, r := range resolved {
		floats.Span(bounds[r.FirstBlock:r.LastBlock+2], r.Start, r.End)
	}

	for k, r := range resolved {
		if r.Mode != Smoothing || r.Blocks() <= 1 {
			continue
		}
		own := r.Spacing()
		left, right := own, own
		if k > 0 {
			left = resolved[k-1].Spacing()
		}
		if k < len(resolved)-1 {
			right = resolved[k+1].Spacing()
		}
		smooth(bounds[r.FirstBlock:r.LastBlock+2], left, own, right)
	}
	bounds[0] = 0
	bounds[axis.Blocks] = axis.Length

	for i := 1; i < len(bounds); i++ {
		if !(bounds[i] > bounds[i-1]) {
			return nil, fmt.Errorf("%w: boundary %d (%v) does not exceed boundary %d (%v)",
				ErrInvalidRegions, i, bounds[i], i-1, bounds[i-1])
		}
	}

	return &Result{
		Boundaries: bounds,
		Ratios:     ratios(bounds, resolved, axis.Cells),
		Regions:    resolved,
	}, nil
}

// UniformBoundaries returns n+1 evenly spaced boundaries on [0, length].
func UniformBoundaries(length float64, n int) []float64 {
	return floats.Span(make([]float64, n+1), 0, length)
}

// resolve turns relative region specs into absolute ranges.
func resolve(axis Axis, regions []Region) ([]ResolvedRegion, error) {
	if len(regions) == 0 {
		regions = []Region{{Remainder: true}}
	}

	out := make([]ResolvedRegion, 0, len(regions))
	var pos float64
	var block int
	for i, r := range regions {
		width, blocks := r.Width, r.Blocks
		if r.Remainder {
			if i != len(regions)-1 {
				return nil, fmt.Errorf("%w: remainder region %d is not last", ErrInvalidRegions, i)
			}
			width = axis.Length - pos
			blocks = axis.Blocks - block
		}
		if blocks < 1 {
			return nil, fmt.Errorf("%w: region %d has %d blocks", ErrInvalidRegions, i, blocks)
		}
		if !(width > lengthTolerance*axis.Length) {
			return nil, fmt.Errorf("%w: region %d has width %v", ErrInvalidRegions, i, width)
		}
		out = append(out, ResolvedRegion{
			Start:      pos,
			End:        pos + width,
			FirstBlock: block,
			LastBlock:  block + blocks - 1,
			Mode:       r.Mode,
		})
		pos += width
		block += blocks
	}

	if block != axis.Blocks {
		return nil, fmt.Errorf("%w: regions hold %d blocks, axis has %d", ErrInvalidRegions, block, axis.Blocks)
	}
	if math.Abs(pos-axis.Length) > lengthTolerance*axis.Length {
		return nil, fmt.Errorf("%w: regions span %v, axis length is %v", ErrInvalidRegions, pos, axis.Length)
	}
	out[len(out)-1].End = axis.Length
	return out, nil
}

// smooth replaces the interior of dst with the average of a left-anchored and
// a right-anchored boundary sequence. dst[0] and dst[len-1] stay fixed.
func smooth(dst []float64, left, own, right float64) {
	n := len(dst) - 1
	start, end := dst[0], dst[n]

	fromLeft := make([]float64, n+1)
	fromRight := make([]float64, n+1)
	fromLeft[0] = start
	fromRight[n] = end
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		fromLeft[i+1] = fromLeft[i] + left + (own-left)*t
	}
	for i := n - 1; i >= 0; i-- {
		t := float64(n-1-i) / float64(n-1)
		fromRight[i] = fromRight[i+1] - (right + (own-right)*t)
	}

	widths := make([]float64, n)
	for i := range widths {
		hi := 0.5 * (fromLeft[i+1] + fromRight[i+1])
		lo := 0.5 * (fromLeft[i] + fromRight[i])
		widths[i] = hi - lo
	}
	floats.Scale((end-start)/floats.Sum(widths), widths)

	cum := make([]float64, n)
	floats.CumSum(cum, widths)
	for i := 1; i < n; i++ {
		dst[i] = start + cum[i-1]
	}
	dst[n] = end
}

// ratios derives per-block expansion ratios from the realised cell widths.
// Only blocks in smoothing regions with more than one block are graded.
func ratios(bounds []float64, regions []ResolvedRegion, cells int) []float64 {
	if cells < 1 {
		cells = 1
	}
	n := len(bounds) - 1
	delta := make([]float64, n)
	for i := range delta {
		delta[i] = (bounds[i+1] - bounds[i]) / float64(cells)
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	for _, r := range regions {
		if r.Mode != Smoothing || r.Blocks() <= 1 {
			continue
		}
		for i := r.FirstBlock; i <= r.LastBlock; i++ {
			fromLeft, fromRight := 1.0, 1.0
			if i > 0 {
				fromLeft = delta[i] / delta[i-1]
			}
			if i < n-1 {
				fromRight = delta[i+1] / delta[i]
			}
			out[i] = 0.5 * (fromLeft + fromRight)
		}
	}
	return out
}

// ParseRegions parses a compact region list such as
// "40:4:uniform,rest:smoothing". Each entry is width:blocks[:mode] or
// rest[:mode].
func ParseRegions(s string) ([]Region, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []Region
	for i, part := range strings.Split(s, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		var r Region
		var modeField string
		switch {
		case fields[0] == "rest" || fields[0] == "remainder":
			r.Remainder = true
			if len(fields) > 2 {
				return nil, fmt.Errorf("%w: entry %d: %q", ErrInvalidRegions, i, part)
			}
			if len(fields) == 2 {
				modeField = fields[1]
			}
		case len(fields) == 2 || len(fields) == 3:
			w, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: entry %d width: %v", ErrInvalidRegions, i, err)
			}
			b, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("%w: entry %d blocks: %v", ErrInvalidRegions, i, err)
			}
			r.Width, r.Blocks = w, b
			if len(fields) == 3 {
				modeField = fields[2]
			}
		default:
			return nil, fmt.Errorf("%w: entry %d: %q", ErrInvalidRegions, i, part)
		}
		mode, err := ParseMode(modeField)
		if err != nil {
			return nil, err
		}
		r.Mode = mode
		out = append(out, r)
	}
	return out, nil
}
