// Package cadmesh is the built-in solid kernel: it realizes each shape class
// as a triangle mesh and writes assembled documents as Wavefront OBJ. It
// satisfies the assembler's kernel interface so the pipeline runs without an
// external CAD installation.
package cadmesh

import (
	"textcad/internal/shape"
)

// Mesh is an indexed triangle mesh in the solid's local frame. Faces wind
// counter-clockwise seen from outside.
type Mesh struct {
	Vertices [][3]float32
	Normals  [][3]float32 // per vertex, unit length
	Faces    [][3]uint32
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Vertices: make([][3]float32, len(m.Vertices)),
		Normals:  make([][3]float32, len(m.Normals)),
		Faces:    make([][3]uint32, len(m.Faces)),
	}
	copy(out.Vertices, m.Vertices)
	copy(out.Normals, m.Normals)
	copy(out.Faces, m.Faces)
	return out
}

// Transform bakes a placement into the mesh: vertices get the full
// scale/rotate/translate, normals rotate only.
func (m *Mesh) Transform(p shape.Placement) {
	for i, v := range m.Vertices {
		m.Vertices[i] = p.Apply(v)
	}
	for i, n := range m.Normals {
		m.Normals[i] = p.ApplyDirection(n)
	}
}

// Bounds returns the axis-aligned bounding box (min, max corners).
// A mesh with no vertices returns zero boxes.
func (m *Mesh) Bounds() (min, max [3]float32) {
	if len(m.Vertices) == 0 {
		return min, max
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for k := 0; k < 3; k++ {
			if v[k] < min[k] {
				min[k] = v[k]
			}
			if v[k] > max[k] {
				max[k] = v[k]
			}
		}
	}
	return min, max
}
