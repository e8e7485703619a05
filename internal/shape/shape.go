package shape

import (
	"fmt"
	"strings"
)

// Class is a primitive solid category. The set is closed: a trained decoder
// predicts exactly one of these, and the assembler knows one constructor per class.
type Class int

const (
	Plane Class = iota
	Box
	Cylinder
	Cone
	Sphere
	Torus
)

// classNames is indexed by Class. Order is the canonical class order used for
// classification head logits and for the persisted class list.
var classNames = []string{"plane", "box", "cylinder", "cone", "sphere", "torus"}

// Classes returns all supported classes in canonical order.
func Classes() []Class {
	out := make([]Class, len(classNames))
	for i := range classNames {
		out[i] = Class(i)
	}
	return out
}

// NumClasses is the size of the closed class set.
func NumClasses() int {
	return len(classNames)
}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return fmt.Sprintf("class(%d)", int(c))
	}
	return classNames[c]
}

// Valid reports whether c is in the known class set.
func (c Class) Valid() bool {
	return c >= 0 && int(c) < len(classNames)
}

// ClassFromString maps a class name (e.g. "sphere", case-insensitive) to its Class.
// "cube" is accepted as an alias for box, matching the dataset generators.
func ClassFromString(s string) (Class, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "cube" {
		return Box, nil
	}
	for i, n := range classNames {
		if n == name {
			return Class(i), nil
		}
	}
	return 0, fmt.Errorf("shape: unknown class %q", s)
}

// Slot identifies one position in the fixed-length parameter vector.
// Every class reads a fixed subset of slots; the rest stay zero.
type Slot int

const (
	SlotLength Slot = iota
	SlotWidth
	SlotHeight
	SlotRadius
	SlotRadius1
	SlotRadius2
	SlotPitch
	SlotAngle

	// VectorLen is the fixed parameter vector length shared by all classes.
	VectorLen = 8
)

var slotNames = []string{"length", "width", "height", "radius", "radius1", "radius2", "pitch", "angle"}

func (s Slot) String() string {
	if s < 0 || int(s) >= len(slotNames) {
		return fmt.Sprintf("slot(%d)", int(s))
	}
	return slotNames[s]
}

// SlotFromString maps a slot name (e.g. "radius") to its Slot.
func SlotFromString(s string) (Slot, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range slotNames {
		if n == name {
			return Slot(i), nil
		}
	}
	return 0, fmt.Errorf("shape: unknown parameter %q", s)
}

// Vector is the fixed-length parameter vector the decoder regresses.
// Only the slots in RelevantSlots of the paired class are meaningful;
// the rest carry zero and must be ignored downstream.
type Vector [VectorLen]float64

// relevantSlots maps each class to the slots it reads. Pitch and angle are
// reserved by the layout and currently relevant to no class.
var relevantSlots = map[Class][]Slot{
	Plane:    {SlotLength, SlotWidth},
	Box:      {SlotLength, SlotWidth, SlotHeight},
	Cylinder: {SlotRadius, SlotHeight},
	Cone:     {SlotRadius1, SlotRadius2, SlotHeight},
	Sphere:   {SlotRadius},
	Torus:    {SlotRadius1, SlotRadius2},
}

// RelevantSlots returns the parameter slots the given class reads, in a fixed order.
// Unknown classes return nil.
func RelevantSlots(c Class) []Slot {
	return relevantSlots[c]
}

// Descriptor pairs a predicted class with the full regressed parameter vector.
// This is the decoder's raw output; values are not validated here (the
// assembler rejects non-positive or non-finite relevant slots).
type Descriptor struct {
	Class  Class
	Params Vector
}

// TypedParams converts the descriptor's relevant slots into the class's typed
// parameter struct, the form the assembler hands to the kernel.
func (d Descriptor) TypedParams() (Params, error) {
	return ParamsFromVector(d.Class, d.Params)
}
