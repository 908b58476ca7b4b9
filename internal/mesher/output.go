package mesher

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/terramesh/internal/topology"
)

// Document is the serialised form of a Mesh.
type Document struct {
	Build    string          `yaml:"build"`
	Shape    flow[int]       `yaml:"shape"`
	Vertices []flow[float64] `yaml:"vertices"`
	Blocks   []BlockDoc      `yaml:"blocks"`
	Edges    []EdgeDoc       `yaml:"edges,omitempty"`
	Boundary []PatchDoc      `yaml:"boundary"`
}

// BlockDoc is one hexahedral block.
type BlockDoc struct {
	Vertices flow[int]     `yaml:"vertices"`
	Cells    flow[int]     `yaml:"cells"`
	Grading  flow[float64] `yaml:"grading"`
}

// EdgeDoc is one curved edge.
type EdgeDoc struct {
	Type   string          `yaml:"type"`
	Start  int             `yaml:"start"`
	End    int             `yaml:"end"`
	Points []flow[float64] `yaml:"points"`
}

// PatchDoc is one boundary patch. Faces list vertex indices.
type PatchDoc struct {
	Name      string      `yaml:"name"`
	Type      string      `yaml:"type"`
	Neighbour string      `yaml:"neighbour,omitempty"`
	Faces     []flow[int] `yaml:"faces"`
}

// flow is a sequence written on a single line.
type flow[T any] []T

// MarshalYAML implements yaml.Marshaler.
func (f flow[T]) MarshalYAML() (any, error) {
	var n yaml.Node
	if err := n.Encode([]T(f)); err != nil {
		return nil, err
	}
	n.Style = yaml.FlowStyle
	return &n, nil
}

func vec(v r3.Vec) flow[float64] {
	return flow[float64]{v.X, v.Y, v.Z}
}

// Document converts the mesh into its serialised form.
func (m *Mesh) Document() Document {
	doc := Document{
		Build:    m.BuildID,
		Shape:    flow[int](m.Shape[:]),
		Vertices: make([]flow[float64], len(m.Points)),
		Blocks:   make([]BlockDoc, len(m.Blocks)),
		Edges:    make([]EdgeDoc, len(m.Edges)),
		Boundary: make([]PatchDoc, 0, len(m.Patches)),
	}
	for i, p := range m.Points {
		doc.Vertices[i] = vec(p)
	}
	for i, b := range m.Blocks {
		doc.Blocks[i] = BlockDoc{
			Vertices: flow[int](b.Vertices[:]),
			Cells:    flow[int](b.Cells[:]),
			Grading:  flow[float64](b.Grading[:]),
		}
	}
	for i, e := range m.Edges {
		pts := make([]flow[float64], len(e.Points))
		for j, p := range e.Points {
			pts[j] = vec(p)
		}
		doc.Edges[i] = EdgeDoc{Type: e.Curve.String(), Start: e.Start, End: e.End, Points: pts}
	}
	for _, p := range m.Patches {
		if len(p.Faces) == 0 {
			continue
		}
		pd := PatchDoc{Name: p.Name, Type: p.Type.String(), Neighbour: p.Neighbour}
		for _, l := range p.Faces {
			face := m.Face(l)
			pd.Faces = append(pd.Faces, flow[int](face[:]))
		}
		doc.Boundary = append(doc.Boundary, pd)
	}
	return doc
}

// WriteYAML writes the mesh as a YAML document.
func (m *Mesh) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m.Document()); err != nil {
		return fmt.Errorf("encoding mesh: %w", err)
	}
	return enc.Close()
}

// Save writes the mesh to path, creating parent directories.
func (m *Mesh) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := m.WriteYAML(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Face returns the vertex indices of a boundary face.
func (m *Mesh) Face(l topology.Link) [4]int {
	return m.Blocks[l.Block].Face(l.Face)
}
