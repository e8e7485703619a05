package shape

import (
	"github.com/chewxy/math32"
)

// Rotation is an XYZ Euler rotation in radians, applied as Rz·Ry·Rx
// (rotate about X first, then Y, then Z).
type Rotation struct {
	X, Y, Z float32
}

// Placement positions one shape independently of all others:
// uniform scale first, then rotation, then translation.
type Placement struct {
	Position [3]float32
	Rotation Rotation
	Scale    float32 // uniform; 0 is treated as 1
}

// DefaultPlacement is origin, identity rotation, unit scale.
func DefaultPlacement() Placement {
	return Placement{Scale: 1}
}

// scaleOrOne normalizes the optional scale factor.
func (p Placement) scaleOrOne() float32 {
	if p.Scale == 0 {
		return 1
	}
	return p.Scale
}

// Matrix returns the placement's 3×3 rotation matrix (row-major).
func (r Rotation) Matrix() [3][3]float32 {
	sx, cx := math32.Sincos(r.X)
	sy, cy := math32.Sincos(r.Y)
	sz, cz := math32.Sincos(r.Z)
	// Rz·Ry·Rx expanded.
	return [3][3]float32{
		{cz * cy, cz*sy*sx - sz*cx, cz*sy*cx + sz*sx},
		{sz * cy, sz*sy*sx + cz*cx, sz*sy*cx - cz*sx},
		{-sy, cy * sx, cy * cx},
	}
}

// Apply transforms a point from the shape's local frame to the document frame:
// scale, then rotate, then translate.
func (p Placement) Apply(v [3]float32) [3]float32 {
	s := p.scaleOrOne()
	x, y, z := v[0]*s, v[1]*s, v[2]*s
	m := p.Rotation.Matrix()
	return [3]float32{
		m[0][0]*x + m[0][1]*y + m[0][2]*z + p.Position[0],
		m[1][0]*x + m[1][1]*y + m[1][2]*z + p.Position[1],
		m[2][0]*x + m[2][1]*y + m[2][2]*z + p.Position[2],
	}
}

// ApplyDirection rotates a direction vector (no scale, no translation).
// Used for normals; uniform scale keeps normals valid under rotation alone.
func (p Placement) ApplyDirection(v [3]float32) [3]float32 {
	m := p.Rotation.Matrix()
	return [3]float32{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}
