package topology

import (
	"fmt"
	"slices"
	"strings"
)

// PatchType is the boundary condition class of a patch.
type PatchType int

const (
	PatchGeneric PatchType = iota
	PatchWall
	PatchCyclic
	PatchSymmetry
	PatchEmpty
)

// String returns the patch type keyword used in mesh output.
func (t PatchType) String() string {
	switch t {
	case PatchGeneric:
		return "patch"
	case PatchWall:
		return "wall"
	case PatchCyclic:
		return "cyclic"
	case PatchSymmetry:
		return "symmetryPlane"
	case PatchEmpty:
		return "empty"
	default:
		return fmt.Sprintf("PatchType(%d)", int(t))
	}
}

// ParsePatchType converts a keyword to a PatchType.
func ParsePatchType(s string) (PatchType, error) {
	switch strings.ToLower(s) {
	case "patch", "":
		return PatchGeneric, nil
	case "wall":
		return PatchWall, nil
	case "cyclic":
		return PatchCyclic, nil
	case "symmetryplane", "symmetry":
		return PatchSymmetry, nil
	case "empty":
		return PatchEmpty, nil
	default:
		return 0, fmt.Errorf("%w: unknown type %q", ErrInvalidPatch, s)
	}
}

// Patch is a named group of boundary faces.
type Patch struct {
	Name  string
	Type  PatchType
	Faces []Link

	// Neighbour names the cyclic partner patch.
	Neighbour string
}

// AddPatch creates an empty patch and returns its index.
func (b *Builder) AddPatch(name string, typ PatchType) (int, error) {
	if name == "" {
		return -1, fmt.Errorf("%w: empty name", ErrInvalidPatch)
	}
	if _, ok := b.patchIndex[name]; ok {
		return -1, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	b.patches = append(b.patches, Patch{Name: name, Type: typ})
	idx := len(b.patches) - 1
	b.patchIndex[name] = idx
	return idx, nil
}

// AddPatchFace appends a boundary face to patch. Interior faces and faces
// already in a patch are rejected.
func (b *Builder) AddPatchFace(patch, block, face int) error {
	if patch < 0 || patch >= len(b.patches) {
		return fmt.Errorf("%w: no patch %d", ErrInvalidPatch, patch)
	}
	if block < 0 || block >= len(b.blocks) {
		return fmt.Errorf("%w: %d", ErrUnknownBlock, block)
	}
	if face < 0 || face >= 6 {
		return fmt.Errorf("%w: face %d", ErrInvalidPatch, face)
	}
	if nb := b.adjacency[block][face]; nb.Block >= 0 {
		return fmt.Errorf("%w: face %s of block %d is shared with block %d",
			ErrInvalidPatch, FaceName(face), block, nb.Block)
	}
	l := Link{Block: block, Face: face}
	if owner, ok := b.patched[l]; ok {
		return fmt.Errorf("%w: face %s of block %d already in patch %q",
			ErrInvalidPatch, FaceName(face), block, b.patches[owner].Name)
	}
	b.patches[patch].Faces = append(b.patches[patch].Faces, l)
	b.patched[l] = patch
	return nil
}

// SetCyclic pairs two patches as cyclic partners.
func (b *Builder) SetCyclic(a, c string) error {
	ia, ok := b.patchIndex[a]
	if !ok {
		return fmt.Errorf("%w: unknown patch %q", ErrInvalidPatch, a)
	}
	ic, ok := b.patchIndex[c]
	if !ok {
		return fmt.Errorf("%w: unknown patch %q", ErrInvalidPatch, c)
	}
	if ia == ic {
		return fmt.Errorf("%w: patch %q cannot be its own cyclic partner", ErrInvalidPatch, a)
	}
	b.patches[ia].Type, b.patches[ia].Neighbour = PatchCyclic, c
	b.patches[ic].Type, b.patches[ic].Neighbour = PatchCyclic, a
	return nil
}

// Patch returns the patch with the given name.
func (b *Builder) Patch(name string) (Patch, bool) {
	idx, ok := b.patchIndex[name]
	if !ok {
		return Patch{}, false
	}
	p := b.patches[idx]
	p.Faces = slices.Clone(p.Faces)
	return p, true
}

// Patches returns a copy of all patches in creation order.
func (b *Builder) Patches() []Patch {
	out := make([]Patch, len(b.patches))
	for i, p := range b.patches {
		p.Faces = slices.Clone(p.Faces)
		out[i] = p
	}
	return out
}

// UnpatchedFaces returns boundary faces not assigned to any patch.
func (b *Builder) UnpatchedFaces() []Link {
	var out []Link
	for _, l := range b.BoundaryFaces() {
		if _, ok := b.patched[l]; !ok {
			out = append(out, l)
		}
	}
	return out
}
