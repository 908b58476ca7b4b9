package topology

import "iter"

// NeighbourChain yields start and then the blocks reached by repeatedly
// crossing face, continuing through the face opposite to the one entered.
// It stops after maxLength blocks or when no neighbour exists. A
// non-positive maxLength means at most one pass over all blocks.
//
// The sequence reads the builder lazily and can be ranged over repeatedly.
func (b *Builder) NeighbourChain(start, face, maxLength int) iter.Seq[int] {
	return func(yield func(int) bool) {
		if start < 0 || start >= len(b.blocks) || face < 0 || face >= 6 {
			return
		}
		limit := maxLength
		if limit <= 0 {
			limit = len(b.blocks)
		}
		blk, f := start, face
		for range limit {
			if !yield(blk) {
				return
			}
			next := b.adjacency[blk][f]
			if next.Block < 0 {
				return
			}
			blk, f = next.Block, OppositeFace(next.Face)
		}
	}
}
