package formats

import "math"

// Grid is a regular elevation raster. Values are row-major with row 0 at
// OriginY and column 0 at OriginX; missing samples are NaN.
type Grid struct {
	Width   int
	Height  int
	OriginX float64
	OriginY float64
	DX      float64
	DY      float64
	Values  []float32
}

// At returns the sample at column x, row y.
// Returns NaN if coordinates are out of bounds.
func (g *Grid) At(x, y int) float32 {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return float32(math.NaN())
	}
	return g.Values[y*g.Width+x]
}

// GetAltitudeRange returns the minimum and maximum defined sample.
func (g *Grid) GetAltitudeRange() (min, max float32) {
	first := true
	for _, v := range g.Values {
		if v != v {
			continue
		}
		if first {
			min, max = v, v
			first = false
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// CountMissing returns the number of NaN samples.
func (g *Grid) CountMissing() int {
	n := 0
	for _, v := range g.Values {
		if v != v {
			n++
		}
	}
	return n
}
