// Package assembler turns shape descriptors into a solid-model document. It
// validates each descriptor, builds one solid per shape through a narrow
// kernel interface, and places every solid in its own local transform.
// Shapes are independent: overlap is allowed and never resolved.
package assembler

import (
	"fmt"
	"math"

	"textcad/internal/shape"
)

// Solid is a kernel-built primitive. The assembler treats it as opaque; the
// kernel that made it knows how to write it out.
type Solid interface{}

// Kernel is the capability surface the assembler needs from a CAD kernel:
// one constructor per shape class and a document writer. Implementations can
// be a real modeling kernel or an in-memory fake for tests.
type Kernel interface {
	MakePlane(length, width float32) (Solid, error)
	MakeBox(length, width, height float32) (Solid, error)
	MakeCylinder(radius, height float32) (Solid, error)
	MakeCone(radius1, radius2, height float32) (Solid, error)
	MakeSphere(radius float32) (Solid, error)
	MakeTorus(radius1, radius2 float32) (Solid, error)
	// WriteDocument persists an assembled document to path.
	WriteDocument(doc *Document, path string) error
}

// PlacedShape is one assembly request: a descriptor plus where to put it.
type PlacedShape struct {
	Descriptor shape.Descriptor
	Placement  shape.Placement
}

// Entry is one placed solid inside a document.
type Entry struct {
	Name      string
	Params    shape.Params
	Placement shape.Placement
	Solid     Solid
}

// Document is an ordered collection of placed solids. Order matches the
// assembly input so shapes stay addressable by index.
type Document struct {
	entries []Entry
}

// Len returns the number of solids.
func (d *Document) Len() int {
	return len(d.entries)
}

// Entry returns the i-th solid in input order.
func (d *Document) Entry(i int) Entry {
	return d.entries[i]
}

// Entries returns all solids in input order.
func (d *Document) Entries() []Entry {
	return d.entries
}

// validate checks one descriptor: known class, and every relevant slot a
// strictly positive finite number. Cone top radius is the one exception:
// a zero top radius is a legal full cone, so it only has to be non-negative
// and finite.
func validate(index int, d shape.Descriptor) error {
	if !d.Class.Valid() {
		return fmt.Errorf("%w: shape %d has class %d", ErrUnknownClass, index, int(d.Class))
	}
	for _, slot := range shape.RelevantSlots(d.Class) {
		v := d.Params[slot]
		ok := v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
		if d.Class == shape.Cone && slot == shape.SlotRadius2 {
			ok = v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
		}
		if !ok {
			return &ValidationError{Index: index, Class: d.Class, Slot: slot, Value: v}
		}
	}
	return nil
}

// build constructs the solid for one validated descriptor.
func build(k Kernel, p shape.Params) (Solid, error) {
	switch t := p.(type) {
	case shape.PlaneParams:
		return k.MakePlane(t.Length, t.Width)
	case shape.BoxParams:
		return k.MakeBox(t.Length, t.Width, t.Height)
	case shape.CylinderParams:
		return k.MakeCylinder(t.Radius, t.Height)
	case shape.ConeParams:
		return k.MakeCone(t.Radius1, t.Radius2, t.Height)
	case shape.SphereParams:
		return k.MakeSphere(t.Radius)
	case shape.TorusParams:
		return k.MakeTorus(t.Radius1, t.Radius2)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownClass, p)
	}
}

// Assemble validates every shape, then builds and places one solid per shape
// in input order. Validation runs first over the whole batch so a failure
// never leaves a partial document behind. Zero shapes produce an empty but
// valid document.
func Assemble(k Kernel, shapes []PlacedShape) (*Document, error) {
	for i, s := range shapes {
		if err := validate(i, s.Descriptor); err != nil {
			return nil, err
		}
	}
	doc := &Document{entries: make([]Entry, 0, len(shapes))}
	for i, s := range shapes {
		params, err := s.Descriptor.TypedParams()
		if err != nil {
			return nil, err
		}
		solid, err := build(k, params)
		if err != nil {
			return nil, fmt.Errorf("assembler: shape %d (%s): %w", i, s.Descriptor.Class, err)
		}
		doc.entries = append(doc.entries, Entry{
			Name:      fmt.Sprintf("%s_%d", s.Descriptor.Class, i+1),
			Params:    params,
			Placement: s.Placement,
			Solid:     solid,
		})
	}
	return doc, nil
}
