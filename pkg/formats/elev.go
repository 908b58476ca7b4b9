package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
)

// ELEV format errors.
var (
	ErrInvalidELEVMagic       = errors.New("invalid ELEV magic: expected 'ELEV'")
	ErrUnsupportedELEVVersion = errors.New("unsupported ELEV version")
	ErrTruncatedELEVData      = errors.New("truncated ELEV data")
)

// elevHeaderSize is magic(4) + version(2) + dims(8) + origin/spacing(32).
const elevHeaderSize = 46

// maxELEVDimension bounds each grid dimension.
const maxELEVDimension = 1 << 15

// ELEVVersion represents the ELEV file version.
type ELEVVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v ELEVVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// ELEV represents a parsed binary elevation grid file.
type ELEV struct {
	Version ELEVVersion
	Grid
}

// ParseELEV parses an ELEV file from raw bytes.
//
// Layout (little endian): "ELEV", minor, major, uint32 width, uint32 height,
// float64 originX, originY, dx, dy, then width*height float32 samples.
func ParseELEV(data []byte) (*ELEV, error) {
	if len(data) < elevHeaderSize {
		return nil, ErrTruncatedELEVData
	}

	if string(data[0:4]) != "ELEV" {
		return nil, ErrInvalidELEVMagic
	}

	// Version is stored as [minor, major]
	version := ELEVVersion{
		Major: data[5],
		Minor: data[4],
	}
	if version.Major != 1 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedELEVVersion, version)
	}

	r := bytes.NewReader(data[6:])

	var dims [2]uint32
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return nil, fmt.Errorf("%w: reading dimensions", ErrTruncatedELEVData)
	}
	width, height := dims[0], dims[1]
	if width < 2 || height < 2 || width > maxELEVDimension || height > maxELEVDimension {
		return nil, fmt.Errorf("invalid ELEV dimensions: %dx%d", width, height)
	}

	var geo [4]float64
	if err := binary.Read(r, binary.LittleEndian, &geo); err != nil {
		return nil, fmt.Errorf("%w: reading origin and spacing", ErrTruncatedELEVData)
	}
	if !(geo[2] > 0) || !(geo[3] > 0) {
		return nil, fmt.Errorf("invalid ELEV spacing: %v x %v", geo[2], geo[3])
	}

	count := int(width) * int(height)
	values := make([]float32, count)
	if err := binary.Read(r, binary.LittleEndian, values); err != nil {
		return nil, fmt.Errorf("%w: reading %d samples", ErrTruncatedELEVData, count)
	}

	return &ELEV{
		Version: version,
		Grid: Grid{
			Width:   int(width),
			Height:  int(height),
			OriginX: geo[0],
			OriginY: geo[1],
			DX:      geo[2],
			DY:      geo[3],
			Values:  values,
		},
	}, nil
}

// ParseELEVFile parses an ELEV file from disk.
func ParseELEVFile(path string) (*ELEV, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ELEV file: %w", err)
	}
	return ParseELEV(data)
}

// EncodeELEV serialises a grid as ELEV version 1.0.
func EncodeELEV(g *Grid) ([]byte, error) {
	if g.Width*g.Height != len(g.Values) {
		return nil, fmt.Errorf("grid has %d values for %dx%d", len(g.Values), g.Width, g.Height)
	}
	buf := new(bytes.Buffer)
	buf.WriteString("ELEV")
	buf.WriteByte(0) // minor
	buf.WriteByte(1) // major
	dims := [2]uint32{uint32(g.Width), uint32(g.Height)}
	if err := binary.Write(buf, binary.LittleEndian, dims); err != nil {
		return nil, err
	}
	geo := [4]float64{g.OriginX, g.OriginY, g.DX, g.DY}
	if err := binary.Write(buf, binary.LittleEndian, geo); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, g.Values); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// nan32 is the float32 missing-sample marker.
var nan32 = float32(math.NaN())
