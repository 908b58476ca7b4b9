// Package topology assembles hexahedral blocks into a connected block mesh.
//
// Blocks, edges and patches refer to points by Arena index. Blocks are
// registered one at a time; each registration discovers face neighbours,
// checks that shared faces agree on their in-plane cell counts and updates
// edge ownership. A failed registration leaves the builder unchanged.
package topology

import (
	"fmt"
	"math"
	"slices"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/terramesh/internal/logger"
)

// Link points at one face of a block.
type Link struct {
	Block int
	Face  int
}

var noLink = Link{Block: -1, Face: -1}

// Builder maintains blocks, face adjacency, curved edges and patches.
// It is not safe for concurrent use.
type Builder struct {
	Arena *Arena

	blocks    []Block
	adjacency [][6]Link

	// members maps a point to the blocks using it, in ascending order.
	members map[int][]int

	edges []Edge
	keys  map[edgeKey]int
	open  map[int]struct{}

	patches    []Patch
	patchIndex map[string]int
	patched    map[Link]int
}

// NewBuilder returns an empty builder over arena. A nil arena starts empty.
func NewBuilder(arena *Arena) *Builder {
	if arena == nil {
		arena = NewArena(0)
	}
	return &Builder{
		Arena:      arena,
		members:    make(map[int][]int),
		keys:       make(map[edgeKey]int),
		open:       make(map[int]struct{}),
		patchIndex: make(map[string]int),
		patched:    make(map[Link]int),
	}
}

type ownerUpdate struct {
	edge  int
	steps int
}

// AddBlock registers a block and returns its index.
func (b *Builder) AddBlock(verts [8]int, cells [3]int, grading [3]float64) (int, error) {
	id := len(b.blocks)
	blk := Block{Vertices: verts, Cells: cells, Grading: grading}

	if err := b.validateBlock(id, blk); err != nil {
		return -1, err
	}
	links, err := b.findNeighbours(id, blk)
	if err != nil {
		return -1, err
	}
	updates, err := b.edgeUpdates(id, blk)
	if err != nil {
		return -1, err
	}

	// Commit.
	b.blocks = append(b.blocks, blk)
	adj := [6]Link{noLink, noLink, noLink, noLink, noLink, noLink}
	for f, l := range links {
		if l.Block < 0 {
			continue
		}
		adj[f] = l
		b.adjacency[l.Block][l.Face] = Link{Block: id, Face: f}
	}
	b.adjacency = append(b.adjacency, adj)
	for _, v := range verts {
		b.members[v] = append(b.members[v], id)
	}
	for _, u := range updates {
		b.own(u.edge, id, u.steps)
	}

	logger.Debug("block added",
		zap.Int("block", id),
		zap.Ints("cells", cells[:]),
		zap.Int("neighbours", countLinks(adj)))
	return id, nil
}

// AddBlockFromFace extrudes a new block from face of block from. newFace
// lists the far-side points in the order of that face's local corner loop;
// the new block shares the source face and inherits its in-plane cell counts.
func (b *Builder) AddBlockFromFace(from, face int, newFace [4]int, cells int, grading [3]float64) (int, error) {
	if from < 0 || from >= len(b.blocks) {
		return -1, fmt.Errorf("%w: %d", ErrUnknownBlock, from)
	}
	if face < 0 || face >= 6 {
		return -1, fmt.Errorf("%w: face %d", ErrInvalidBlock, face)
	}
	src := b.blocks[from]
	axis := FaceAxis(face)

	var verts [8]int
	for k, c := range faceCorners[face] {
		verts[oppositeCorner(c, axis)] = src.Vertices[c]
		verts[c] = newFace[k]
	}
	cellv := src.Cells
	cellv[axis] = cells
	return b.AddBlock(verts, cellv, grading)
}

func (b *Builder) validateBlock(id int, blk Block) error {
	seen := make(map[int]bool, 8)
	for _, v := range blk.Vertices {
		if v < 0 || v >= b.Arena.Len() {
			return fmt.Errorf("%w: point %d outside arena of %d points", ErrInvalidBlock, v, b.Arena.Len())
		}
		if seen[v] {
			return newConsistencyError(id, fmt.Sprintf("degenerate block: point %d repeated", v))
		}
		seen[v] = true
	}
	for axis, n := range blk.Cells {
		if n < 1 {
			return fmt.Errorf("%w: %d cells along axis %d", ErrInvalidBlock, n, axis)
		}
	}
	for axis, g := range blk.Grading {
		if !(g > 0) || math.IsInf(g, 0) {
			return fmt.Errorf("%w: grading %v along axis %d", ErrInvalidBlock, g, axis)
		}
	}
	return nil
}

// findNeighbours matches each face of blk against faces of blocks that
// share at least one of its points.
func (b *Builder) findNeighbours(id int, blk Block) ([6]Link, error) {
	var links [6]Link
	for f := range 6 {
		links[f] = noLink
		face := blk.Face(f)
		want := sortedFace(face)

		for _, c := range b.candidates(face) {
			other := b.blocks[c]
			for g := range 6 {
				if sortedFace(other.Face(g)) != want {
					continue
				}
				if b.adjacency[c][g].Block >= 0 {
					e := newConsistencyError(id, "face already shared by two blocks")
					e.Neighbour, e.Face = c, f
					return links, e
				}
				if links[f].Block >= 0 {
					e := newConsistencyError(id, "face matches more than one block")
					e.Neighbour, e.Face = c, f
					return links, e
				}
				links[f] = Link{Block: c, Face: g}
			}
		}
		if links[f].Block >= 0 {
			if err := b.checkInPlane(id, blk, f, links[f]); err != nil {
				return links, err
			}
		}
	}
	return links, nil
}

// checkInPlane compares the cell counts of both in-plane axes of a shared
// face, mapping each axis into the neighbour through a shared edge.
func (b *Builder) checkInPlane(id int, blk Block, f int, l Link) error {
	other := b.blocks[l.Block]
	for axis := range 3 {
		if axis == FaceAxis(f) {
			continue
		}
		u, v := blk.EdgeEnds(faceEdge(f, axis))
		oe, _, ok := other.LocalEdge(u, v)
		if !ok {
			e := newConsistencyError(id, "faces share points but not edges")
			e.Neighbour, e.Face, e.Axis = l.Block, f, axis
			return e
		}
		if got, want := blk.Cells[axis], other.Cells[EdgeAxis(oe)]; got != want {
			e := newConsistencyError(id, "in-plane cell counts differ across shared face")
			e.Neighbour, e.Face, e.Axis = l.Block, f, axis
			e.Got, e.Want = got, want
			return e
		}
	}
	return nil
}

// candidates returns the blocks using any point of face, ascending.
func (b *Builder) candidates(face [4]int) []int {
	var out []int
	for _, p := range face {
		out = append(out, b.members[p]...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// edgeUpdates collects the open edges blk would own.
func (b *Builder) edgeUpdates(id int, blk Block) ([]ownerUpdate, error) {
	var updates []ownerUpdate
	for e := range edgeCorners {
		u, v := blk.EdgeEnds(e)
		idx, ok := b.lookup(u, v)
		if !ok {
			continue
		}
		if _, isOpen := b.open[idx]; !isOpen {
			continue
		}
		axis := EdgeAxis(e)
		steps := blk.Cells[axis]
		edge := b.edges[idx]
		if len(edge.Owners) == 0 {
			if err := checkSteps(edge.Curve, edge.Segments(), steps); err != nil {
				ce := newConsistencyError(id, err.Error())
				ce.Edge, ce.Axis = idx, axis
				return nil, ce
			}
		} else if steps != edge.Steps {
			ce := newConsistencyError(id, "cell count along edge differs from its owners")
			ce.Edge, ce.Axis = idx, axis
			ce.Got, ce.Want = steps, edge.Steps
			return nil, ce
		}
		updates = append(updates, ownerUpdate{edge: idx, steps: steps})
	}
	return updates, nil
}

// own records block as an owner of edge idx. The first owner fixes the step
// count; the edge leaves the open set at MaxOwners.
func (b *Builder) own(idx, block, steps int) {
	e := &b.edges[idx]
	if len(e.Owners) == 0 {
		e.Steps = steps
	}
	e.Owners = append(e.Owners, block)
	if len(e.Owners) >= MaxOwners {
		delete(b.open, idx)
		logger.Debug("edge closed", zap.Int("edge", idx), zap.Ints("owners", e.Owners))
	}
}

// SetEdge attaches a curve to local edge localEdge of block.
func (b *Builder) SetEdge(block, localEdge int, interior []r3.Vec, curve CurveType) (int, error) {
	if block < 0 || block >= len(b.blocks) {
		return -1, fmt.Errorf("%w: %d", ErrUnknownBlock, block)
	}
	if localEdge < 0 || localEdge >= len(edgeCorners) {
		return -1, fmt.Errorf("%w: local edge %d", ErrInvalidEdge, localEdge)
	}
	u, v := b.blocks[block].EdgeEnds(localEdge)
	return b.AddEdge(u, v, interior, curve)
}

// AddEdge registers or overwrites the curve between two points. If the
// reverse edge exists, interior is reversed and stored under it.
func (b *Builder) AddEdge(start, end int, interior []r3.Vec, curve CurveType) (int, error) {
	if start < 0 || start >= b.Arena.Len() || end < 0 || end >= b.Arena.Len() {
		return -1, fmt.Errorf("%w: points %d-%d outside arena of %d points", ErrInvalidEdge, start, end, b.Arena.Len())
	}
	if start == end {
		return -1, newConsistencyError(-1, fmt.Sprintf("degenerate edge: start and end are point %d", start))
	}
	if curve != Line && curve != PolyLine {
		return -1, fmt.Errorf("%w: curve %v", ErrInvalidEdge, curve)
	}
	if curve == Line && len(interior) > 0 {
		return -1, fmt.Errorf("%w: straight edge with %d interior points", ErrInvalidEdge, len(interior))
	}

	pts := slices.Clone(interior)
	idx, forward, exists := b.find(start, end)
	if exists {
		if !forward {
			slices.Reverse(pts)
		}
		edge := &b.edges[idx]
		if err := checkSteps(curve, len(pts)+1, edge.Steps); err != nil {
			ce := newConsistencyError(-1, err.Error())
			ce.Edge = idx
			if len(edge.Owners) > 0 {
				ce.Block = edge.Owners[0]
			}
			return -1, ce
		}
		edge.Curve = curve
		edge.Points = pts
		logger.Debug("edge replaced", zap.Int("edge", idx), zap.Int("points", len(pts)))
		return idx, nil
	}

	edge := Edge{Start: start, End: end, Curve: curve, Points: pts}
	for _, blk := range b.sharedBlocks(start, end) {
		e, _, ok := b.blocks[blk].LocalEdge(start, end)
		if !ok {
			continue
		}
		steps := b.blocks[blk].Cells[EdgeAxis(e)]
		if len(edge.Owners) == 0 {
			if err := checkSteps(curve, edge.Segments(), steps); err != nil {
				ce := newConsistencyError(blk, err.Error())
				ce.Axis = EdgeAxis(e)
				return -1, ce
			}
			edge.Steps = steps
		} else if steps != edge.Steps {
			ce := newConsistencyError(blk, "cell count along edge differs from its owners")
			ce.Axis = EdgeAxis(e)
			ce.Got, ce.Want = steps, edge.Steps
			return -1, ce
		}
		edge.Owners = append(edge.Owners, blk)
	}

	idx = len(b.edges)
	b.edges = append(b.edges, edge)
	b.keys[edgeKey{start, end}] = idx
	if len(edge.Owners) < MaxOwners {
		b.open[idx] = struct{}{}
	}
	logger.Debug("edge added",
		zap.Int("edge", idx),
		zap.Int("start", start),
		zap.Int("end", end),
		zap.Stringer("curve", curve),
		zap.Int("owners", len(edge.Owners)))
	return idx, nil
}

// find locates the stored edge joining u and v. forward is true when it is
// stored as u -> v.
func (b *Builder) find(u, v int) (idx int, forward, ok bool) {
	if idx, ok := b.keys[edgeKey{u, v}]; ok {
		return idx, true, true
	}
	if idx, ok := b.keys[edgeKey{v, u}]; ok {
		return idx, false, true
	}
	return -1, false, false
}

func (b *Builder) lookup(u, v int) (int, bool) {
	idx, _, ok := b.find(u, v)
	return idx, ok
}

// sharedBlocks returns the blocks using both u and v, ascending.
func (b *Builder) sharedBlocks(u, v int) []int {
	var out []int
	for _, blk := range b.members[u] {
		if _, found := slices.BinarySearch(b.members[v], blk); found {
			out = append(out, blk)
		}
	}
	return out
}

// Neighbour returns the block and face across face of block.
func (b *Builder) Neighbour(block, face int) (Link, bool) {
	if block < 0 || block >= len(b.blocks) || face < 0 || face >= 6 {
		return noLink, false
	}
	l := b.adjacency[block][face]
	return l, l.Block >= 0
}

// NumBlocks returns the number of registered blocks.
func (b *Builder) NumBlocks() int {
	return len(b.blocks)
}

// Block returns block i.
func (b *Builder) Block(i int) (Block, bool) {
	if i < 0 || i >= len(b.blocks) {
		return Block{}, false
	}
	return b.blocks[i], true
}

// Blocks returns a copy of all blocks in registration order.
func (b *Builder) Blocks() []Block {
	return slices.Clone(b.blocks)
}

// Edge returns edge i.
func (b *Builder) Edge(i int) (Edge, bool) {
	if i < 0 || i >= len(b.edges) {
		return Edge{}, false
	}
	return b.edges[i].clone(), true
}

// EdgeBetween returns the index of the edge joining u and v in either
// direction.
func (b *Builder) EdgeBetween(u, v int) (int, bool) {
	return b.lookup(u, v)
}

// Edges returns a copy of all edges in registration order.
func (b *Builder) Edges() []Edge {
	out := make([]Edge, len(b.edges))
	for i, e := range b.edges {
		out[i] = e.clone()
	}
	return out
}

// OpenEdges returns the indices of edges owned by fewer than MaxOwners
// blocks, ascending.
func (b *Builder) OpenEdges() []int {
	out := make([]int, 0, len(b.open))
	for idx := range b.open {
		out = append(out, idx)
	}
	slices.Sort(out)
	return out
}

// BoundaryFaces returns every face without a neighbour, by block then face.
func (b *Builder) BoundaryFaces() []Link {
	var out []Link
	for blk, adj := range b.adjacency {
		for f, l := range adj {
			if l.Block < 0 {
				out = append(out, Link{Block: blk, Face: f})
			}
		}
	}
	return out
}

func sortedFace(face [4]int) [4]int {
	s := face
	slices.Sort(s[:])
	return s
}

func countLinks(adj [6]Link) int {
	n := 0
	for _, l := range adj {
		if l.Block >= 0 {
			n++
		}
	}
	return n
}
