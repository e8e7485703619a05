package cadmesh

import (
	"github.com/chewxy/math32"
)

// Local frames follow the usual CAD conventions: box and plane grow from the
// origin corner along +X/+Y/+Z, cylinder and cone stand on z=0 rising +Z,
// sphere and torus are centered on the origin with the torus ring in XY.

// PlaneMesh builds a length×width rectangle in the XY plane, normal +Z.
func PlaneMesh(length, width float32) *Mesh {
	up := [3]float32{0, 0, 1}
	return &Mesh{
		Vertices: [][3]float32{{0, 0, 0}, {length, 0, 0}, {length, width, 0}, {0, width, 0}},
		Normals:  [][3]float32{up, up, up, up},
		Faces:    [][3]uint32{{0, 1, 2}, {0, 2, 3}},
	}
}

// BoxMesh builds a length×width×height box with one corner at the origin.
// Vertices are duplicated per face so each face keeps its flat normal.
func BoxMesh(length, width, height float32) *Mesh {
	l, w, h := length, width, height
	type face struct {
		quad   [4][3]float32
		normal [3]float32
	}
	faces := []face{
		{[4][3]float32{{0, 0, 0}, {0, w, 0}, {l, w, 0}, {l, 0, 0}}, [3]float32{0, 0, -1}},
		{[4][3]float32{{0, 0, h}, {l, 0, h}, {l, w, h}, {0, w, h}}, [3]float32{0, 0, 1}},
		{[4][3]float32{{0, 0, 0}, {l, 0, 0}, {l, 0, h}, {0, 0, h}}, [3]float32{0, -1, 0}},
		{[4][3]float32{{0, w, 0}, {0, w, h}, {l, w, h}, {l, w, 0}}, [3]float32{0, 1, 0}},
		{[4][3]float32{{0, 0, 0}, {0, 0, h}, {0, w, h}, {0, w, 0}}, [3]float32{-1, 0, 0}},
		{[4][3]float32{{l, 0, 0}, {l, w, 0}, {l, w, h}, {l, 0, h}}, [3]float32{1, 0, 0}},
	}
	m := &Mesh{}
	for _, f := range faces {
		base := uint32(len(m.Vertices))
		for _, v := range f.quad {
			m.Vertices = append(m.Vertices, v)
			m.Normals = append(m.Normals, f.normal)
		}
		m.Faces = append(m.Faces, [3]uint32{base, base + 1, base + 2}, [3]uint32{base, base + 2, base + 3})
	}
	return m
}

// SphereMesh builds a UV sphere of the given radius centered on the origin.
func SphereMesh(radius float32, rings, slices int) *Mesh {
	m := &Mesh{}
	for i := 0; i <= rings; i++ {
		phi := math32.Pi * float32(i) / float32(rings)
		sp, cp := math32.Sincos(phi)
		for j := 0; j <= slices; j++ {
			theta := 2 * math32.Pi * float32(j) / float32(slices)
			st, ct := math32.Sincos(theta)
			n := [3]float32{sp * ct, sp * st, cp}
			m.Normals = append(m.Normals, n)
			m.Vertices = append(m.Vertices, [3]float32{n[0] * radius, n[1] * radius, n[2] * radius})
		}
	}
	stride := uint32(slices + 1)
	for i := 0; i < rings; i++ {
		for j := 0; j < slices; j++ {
			a := uint32(i)*stride + uint32(j)
			b := a + stride
			m.Faces = append(m.Faces, [3]uint32{a, b, a + 1}, [3]uint32{a + 1, b, b + 1})
		}
	}
	return m
}

// frustumMesh is the shared body of cylinder (r1 == r2) and cone meshes:
// base radius r1 at z=0, top radius r2 at z=h, plus caps. A zero top radius
// degenerates the top ring into the apex, which keeps the topology uniform.
func frustumMesh(r1, r2, h float32, slices int) *Mesh {
	m := &Mesh{}
	// Side: two rings with slope-corrected normals.
	for j := 0; j <= slices; j++ {
		theta := 2 * math32.Pi * float32(j) / float32(slices)
		st, ct := math32.Sincos(theta)
		n := [3]float32{ct * h, st * h, r1 - r2}
		inv := 1 / math32.Hypot(h, r1-r2)
		n = [3]float32{n[0] * inv, n[1] * inv, n[2] * inv}
		m.Vertices = append(m.Vertices, [3]float32{r1 * ct, r1 * st, 0})
		m.Normals = append(m.Normals, n)
		m.Vertices = append(m.Vertices, [3]float32{r2 * ct, r2 * st, h})
		m.Normals = append(m.Normals, n)
	}
	for j := 0; j < slices; j++ {
		b := uint32(2 * j)
		m.Faces = append(m.Faces, [3]uint32{b, b + 2, b + 3}, [3]uint32{b, b + 3, b + 1})
	}
	// Caps: fan around a center vertex, flat normals. Top cap skipped for an apex.
	addCap := func(r, z, nz float32) {
		center := uint32(len(m.Vertices))
		m.Vertices = append(m.Vertices, [3]float32{0, 0, z})
		m.Normals = append(m.Normals, [3]float32{0, 0, nz})
		for j := 0; j <= slices; j++ {
			theta := 2 * math32.Pi * float32(j) / float32(slices)
			st, ct := math32.Sincos(theta)
			m.Vertices = append(m.Vertices, [3]float32{r * ct, r * st, z})
			m.Normals = append(m.Normals, [3]float32{0, 0, nz})
		}
		for j := 0; j < slices; j++ {
			a := center + 1 + uint32(j)
			if nz < 0 {
				m.Faces = append(m.Faces, [3]uint32{center, a + 1, a})
			} else {
				m.Faces = append(m.Faces, [3]uint32{center, a, a + 1})
			}
		}
	}
	addCap(r1, 0, -1)
	if r2 > 0 {
		addCap(r2, h, 1)
	}
	return m
}

// CylinderMesh builds a cylinder of the given radius and height.
func CylinderMesh(radius, height float32, slices int) *Mesh {
	return frustumMesh(radius, radius, height, slices)
}

// ConeMesh builds a cone or frustum: base radius radius1, top radius radius2
// (zero for a full cone), height h.
func ConeMesh(radius1, radius2, height float32, slices int) *Mesh {
	return frustumMesh(radius1, radius2, height, slices)
}

// TorusMesh builds a torus with ring (major) radius radius1 and tube (minor)
// radius radius2, ring in the XY plane.
func TorusMesh(radius1, radius2 float32, ringSegs, tubeSegs int) *Mesh {
	m := &Mesh{}
	for i := 0; i <= ringSegs; i++ {
		u := 2 * math32.Pi * float32(i) / float32(ringSegs)
		su, cu := math32.Sincos(u)
		for j := 0; j <= tubeSegs; j++ {
			v := 2 * math32.Pi * float32(j) / float32(tubeSegs)
			sv, cv := math32.Sincos(v)
			m.Vertices = append(m.Vertices, [3]float32{
				(radius1 + radius2*cv) * cu,
				(radius1 + radius2*cv) * su,
				radius2 * sv,
			})
			m.Normals = append(m.Normals, [3]float32{cv * cu, cv * su, sv})
		}
	}
	stride := uint32(tubeSegs + 1)
	for i := 0; i < ringSegs; i++ {
		for j := 0; j < tubeSegs; j++ {
			a := uint32(i)*stride + uint32(j)
			b := a + stride
			m.Faces = append(m.Faces, [3]uint32{a, b, a + 1}, [3]uint32{a + 1, b, b + 1})
		}
	}
	return m
}
