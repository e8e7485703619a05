package shape

import "fmt"

// Params is the tagged-variant form of a parameter vector: one concrete struct
// per class, holding only the fields that class defines. The fixed-length
// Vector exists only at the learned-representation boundary (decoder and
// training); everything downstream works with these.
type Params interface {
	Class() Class
	// Vector writes the typed fields back into their canonical slots.
	Vector() Vector
}

// PlaneParams defines a rectangular plane (length × width).
type PlaneParams struct {
	Length, Width float32
}

// BoxParams defines an axis-aligned box before placement.
type BoxParams struct {
	Length, Width, Height float32
}

// CylinderParams defines a cylinder by base radius and height.
type CylinderParams struct {
	Radius, Height float32
}

// ConeParams defines a (truncated) cone: base radius, top radius, height.
// Radius2 of zero is a full cone apex; negative is invalid.
type ConeParams struct {
	Radius1, Radius2, Height float32
}

// SphereParams defines a sphere by radius.
type SphereParams struct {
	Radius float32
}

// TorusParams defines a torus by major (ring) and minor (tube) radius.
type TorusParams struct {
	Radius1, Radius2 float32
}

func (p PlaneParams) Class() Class    { return Plane }
func (p BoxParams) Class() Class      { return Box }
func (p CylinderParams) Class() Class { return Cylinder }
func (p ConeParams) Class() Class     { return Cone }
func (p SphereParams) Class() Class   { return Sphere }
func (p TorusParams) Class() Class    { return Torus }

func (p PlaneParams) Vector() Vector {
	var v Vector
	v[SlotLength] = float64(p.Length)
	v[SlotWidth] = float64(p.Width)
	return v
}

func (p BoxParams) Vector() Vector {
	var v Vector
	v[SlotLength] = float64(p.Length)
	v[SlotWidth] = float64(p.Width)
	v[SlotHeight] = float64(p.Height)
	return v
}

func (p CylinderParams) Vector() Vector {
	var v Vector
	v[SlotRadius] = float64(p.Radius)
	v[SlotHeight] = float64(p.Height)
	return v
}

func (p ConeParams) Vector() Vector {
	var v Vector
	v[SlotRadius1] = float64(p.Radius1)
	v[SlotRadius2] = float64(p.Radius2)
	v[SlotHeight] = float64(p.Height)
	return v
}

func (p SphereParams) Vector() Vector {
	var v Vector
	v[SlotRadius] = float64(p.Radius)
	return v
}

func (p TorusParams) Vector() Vector {
	var v Vector
	v[SlotRadius1] = float64(p.Radius1)
	v[SlotRadius2] = float64(p.Radius2)
	return v
}

// ParamsFromVector picks the class's relevant slots out of a full vector and
// returns the typed variant. Values are copied as-is; validation is the
// assembler's job.
func ParamsFromVector(c Class, v Vector) (Params, error) {
	switch c {
	case Plane:
		return PlaneParams{Length: float32(v[SlotLength]), Width: float32(v[SlotWidth])}, nil
	case Box:
		return BoxParams{Length: float32(v[SlotLength]), Width: float32(v[SlotWidth]), Height: float32(v[SlotHeight])}, nil
	case Cylinder:
		return CylinderParams{Radius: float32(v[SlotRadius]), Height: float32(v[SlotHeight])}, nil
	case Cone:
		return ConeParams{Radius1: float32(v[SlotRadius1]), Radius2: float32(v[SlotRadius2]), Height: float32(v[SlotHeight])}, nil
	case Sphere:
		return SphereParams{Radius: float32(v[SlotRadius])}, nil
	case Torus:
		return TorusParams{Radius1: float32(v[SlotRadius1]), Radius2: float32(v[SlotRadius2])}, nil
	default:
		return nil, fmt.Errorf("shape: unknown class %d", int(c))
	}
}
