package topology

import "fmt"

// Local corner coordinates of the unit hexahedron.
var corners = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// Face corner loops, ordered so the right-hand normal points outward.
var faceCorners = [6][4]int{
	{0, 4, 7, 3}, // x-min
	{1, 2, 6, 5}, // x-max
	{0, 1, 5, 4}, // y-min
	{3, 7, 6, 2}, // y-max
	{0, 3, 2, 1}, // z-min
	{4, 5, 6, 7}, // z-max
}

// Local edges, four per axis, each directed along +axis.
var edgeCorners = [12][2]int{
	{0, 1}, {3, 2}, {7, 6}, {4, 5},
	{0, 3}, {1, 2}, {5, 6}, {4, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Face identifiers.
const (
	XMin = iota
	XMax
	YMin
	YMax
	ZMin
	ZMax
)

var faceNames = [6]string{"x-min", "x-max", "y-min", "y-max", "z-min", "z-max"}

// FaceName returns a readable name for a local face.
func FaceName(f int) string {
	if f < 0 || f >= 6 {
		return fmt.Sprintf("face(%d)", f)
	}
	return faceNames[f]
}

// FaceAxis returns the axis normal to face f.
func FaceAxis(f int) int { return f / 2 }

// OppositeFace returns the face across the block from f.
func OppositeFace(f int) int { return f ^ 1 }

// EdgeAxis returns the axis a local edge runs along.
func EdgeAxis(e int) int { return e / 4 }

// EdgeCorners returns the local corners of edge e, directed along +axis.
func EdgeCorners(e int) (int, int) {
	return edgeCorners[e][0], edgeCorners[e][1]
}

// FaceCorners returns the local corner loop of face f.
func FaceCorners(f int) [4]int {
	return faceCorners[f]
}

// oppositeCorner mirrors corner c across the mid-plane normal to axis.
func oppositeCorner(c, axis int) int {
	want := corners[c]
	want[axis] = 1 - want[axis]
	for i, p := range corners {
		if p == want {
			return i
		}
	}
	panic("unreachable")
}

// faceEdge returns the local edge along axis lying on face f, or -1.
func faceEdge(f, axis int) int {
	on := map[int]bool{}
	for _, c := range faceCorners[f] {
		on[c] = true
	}
	for e := axis * 4; e < axis*4+4; e++ {
		if on[edgeCorners[e][0]] && on[edgeCorners[e][1]] {
			return e
		}
	}
	return -1
}

// Block is a hexahedron given by eight arena indices in local corner order,
// with a cell count and grading ratio per axis.
type Block struct {
	Vertices [8]int
	Cells    [3]int
	Grading  [3]float64
}

// Face returns the global vertex loop of face f.
func (b Block) Face(f int) [4]int {
	var out [4]int
	for i, c := range faceCorners[f] {
		out[i] = b.Vertices[c]
	}
	return out
}

// EdgeEnds returns the global endpoints of local edge e.
func (b Block) EdgeEnds(e int) (int, int) {
	return b.Vertices[edgeCorners[e][0]], b.Vertices[edgeCorners[e][1]]
}

// LocalEdge finds the local edge joining global points u and v.
// forward is true when u -> v runs along +axis.
func (b Block) LocalEdge(u, v int) (e int, forward bool, ok bool) {
	for i := range edgeCorners {
		s, t := b.EdgeEnds(i)
		switch {
		case s == u && t == v:
			return i, true, true
		case s == v && t == u:
			return i, false, true
		}
	}
	return -1, false, false
}

// Has reports whether point p is a corner of b.
func (b Block) Has(p int) bool {
	for _, v := range b.Vertices {
		if v == p {
			return true
		}
	}
	return false
}
