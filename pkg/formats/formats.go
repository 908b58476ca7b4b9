// Package formats provides readers for sampled elevation grids.
package formats

// Note: ELEV (binary elevation grid) is implemented in elev.go
// Note: ESRI ASCII rasters are implemented in ascii.go
