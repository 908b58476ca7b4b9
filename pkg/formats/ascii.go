package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrInvalidASCIIGrid is returned for malformed ESRI ASCII grids.
var ErrInvalidASCIIGrid = errors.New("invalid ASCII grid")

// ParseASCIIGrid parses an ESRI ASCII raster. Rows in the file run north to
// south; the returned grid stores row 0 at the southern edge. NODATA samples
// become NaN. Corner registration is converted to cell centres.
func ParseASCIIGrid(r io.Reader) (*Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	header := map[string]float64{}
	var first string
	for sc.Scan() {
		tok := sc.Text()
		key := strings.ToLower(tok)
		switch key {
		case "ncols", "nrows", "xllcorner", "yllcorner", "xllcenter", "yllcenter", "cellsize", "dx", "dy", "nodata_value":
			if !sc.Scan() {
				return nil, fmt.Errorf("%w: missing value for %s", ErrInvalidASCIIGrid, tok)
			}
			v, err := strconv.ParseFloat(sc.Text(), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidASCIIGrid, tok, err)
			}
			header[key] = v
			continue
		}
		first = tok
		break
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	ncols, okC := header["ncols"]
	nrows, okR := header["nrows"]
	if !okC || !okR || ncols < 2 || nrows < 2 {
		return nil, fmt.Errorf("%w: ncols/nrows missing or below 2", ErrInvalidASCIIGrid)
	}
	dx, dy := header["cellsize"], header["cellsize"]
	if v, ok := header["dx"]; ok {
		dx = v
	}
	if v, ok := header["dy"]; ok {
		dy = v
	}
	if !(dx > 0) || !(dy > 0) {
		return nil, fmt.Errorf("%w: cell size %v x %v", ErrInvalidASCIIGrid, dx, dy)
	}

	var ox, oy float64
	switch {
	case hasKey(header, "xllcenter") && hasKey(header, "yllcenter"):
		ox, oy = header["xllcenter"], header["yllcenter"]
	case hasKey(header, "xllcorner") && hasKey(header, "yllcorner"):
		ox, oy = header["xllcorner"]+dx/2, header["yllcorner"]+dy/2
	default:
		return nil, fmt.Errorf("%w: missing lower-left origin", ErrInvalidASCIIGrid)
	}
	nodata, hasNodata := header["nodata_value"]

	w, h := int(ncols), int(nrows)
	g := &Grid{
		Width:   w,
		Height:  h,
		OriginX: ox,
		OriginY: oy,
		DX:      dx,
		DY:      dy,
		Values:  make([]float32, w*h),
	}

	n := 0
	next := func() (string, bool) {
		if first != "" {
			tok := first
			first = ""
			return tok, true
		}
		if !sc.Scan() {
			return "", false
		}
		return sc.Text(), true
	}
	for n < w*h {
		tok, ok := next()
		if !ok {
			if err := sc.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: expected %d samples, got %d", ErrInvalidASCIIGrid, w*h, n)
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: sample %d: %v", ErrInvalidASCIIGrid, n, err)
		}
		row := h - 1 - n/w
		col := n % w
		if hasNodata && v == nodata {
			g.Values[row*w+col] = nan32
		} else {
			g.Values[row*w+col] = float32(v)
		}
		n++
	}
	return g, nil
}

// ParseASCIIGridFile parses an ESRI ASCII raster from disk.
func ParseASCIIGridFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading ASCII grid: %w", err)
	}
	defer f.Close()
	return ParseASCIIGrid(f)
}

// ParseGridFile picks a parser by file extension: .asc for ESRI ASCII,
// anything else for ELEV.
func ParseGridFile(path string) (*Grid, error) {
	if strings.HasSuffix(strings.ToLower(path), ".asc") {
		return ParseASCIIGridFile(path)
	}
	e, err := ParseELEVFile(path)
	if err != nil {
		return nil, err
	}
	return &e.Grid, nil
}

func hasKey(m map[string]float64, k string) bool {
	_, ok := m[k]
	return ok
}
