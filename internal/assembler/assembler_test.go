package assembler

import (
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textcad/internal/shape"
)

// fakeKernel records constructor calls and returns string solids. makeCalls
// lets failure tests verify nothing was built before a rejection.
type fakeKernel struct {
	makeCalls int
	written   []string
}

func (k *fakeKernel) make(c shape.Class, args ...float32) (Solid, error) {
	k.makeCalls++
	return fmt.Sprintf("%s%v", c, args), nil
}

func (k *fakeKernel) MakePlane(l, w float32) (Solid, error)       { return k.make(shape.Plane, l, w) }
func (k *fakeKernel) MakeBox(l, w, h float32) (Solid, error)      { return k.make(shape.Box, l, w, h) }
func (k *fakeKernel) MakeCylinder(r, h float32) (Solid, error)    { return k.make(shape.Cylinder, r, h) }
func (k *fakeKernel) MakeCone(r1, r2, h float32) (Solid, error)   { return k.make(shape.Cone, r1, r2, h) }
func (k *fakeKernel) MakeSphere(r float32) (Solid, error)         { return k.make(shape.Sphere, r) }
func (k *fakeKernel) MakeTorus(r1, r2 float32) (Solid, error)     { return k.make(shape.Torus, r1, r2) }
func (k *fakeKernel) WriteDocument(d *Document, path string) error {
	k.written = append(k.written, path)
	return nil
}

func placed(c shape.Class, params shape.Params) PlacedShape {
	return PlacedShape{
		Descriptor: shape.Descriptor{Class: c, Params: params.Vector()},
		Placement:  shape.DefaultPlacement(),
	}
}

func TestAssembleEmpty(t *testing.T) {
	doc, err := Assemble(&fakeKernel{}, nil)
	require.NoError(t, err)
	assert.Zero(t, doc.Len())
}

func TestAssembleSingleSolid(t *testing.T) {
	k := &fakeKernel{}
	doc, err := Assemble(k, []PlacedShape{placed(shape.Sphere, shape.SphereParams{Radius: 2.5})})
	require.NoError(t, err)
	require.Equal(t, 1, doc.Len())
	assert.Equal(t, "sphere_1", doc.Entry(0).Name)
	assert.Equal(t, shape.SphereParams{Radius: 2.5}, doc.Entry(0).Params)
}

// Two independent shapes at independent transforms, order preserved.
func TestAssembleTwoShapes(t *testing.T) {
	k := &fakeKernel{}
	box := placed(shape.Box, shape.BoxParams{Length: 1, Width: 2, Height: 3})
	sphere := PlacedShape{
		Descriptor: shape.Descriptor{Class: shape.Sphere, Params: shape.SphereParams{Radius: 5}.Vector()},
		Placement:  shape.Placement{Position: [3]float32{10, 0, 0}, Scale: 1},
	}
	doc, err := Assemble(k, []PlacedShape{box, sphere})
	require.NoError(t, err)
	require.Equal(t, 2, doc.Len())
	assert.Equal(t, shape.BoxParams{Length: 1, Width: 2, Height: 3}, doc.Entry(0).Params)
	assert.Equal(t, [3]float32{10, 0, 0}, doc.Entry(1).Placement.Position)
	assert.Equal(t, shape.DefaultPlacement(), doc.Entry(0).Placement)
}

// Assembly preserves input order for large batches.
func TestAssembleOrderPreserved(t *testing.T) {
	var shapes []PlacedShape
	for i := 0; i < 100; i++ {
		shapes = append(shapes, PlacedShape{
			Descriptor: shape.Descriptor{Class: shape.Sphere, Params: shape.SphereParams{Radius: float32(i + 1)}.Vector()},
			Placement:  shape.Placement{Position: [3]float32{float32(i), 0, 0}, Scale: 1},
		})
	}
	doc, err := Assemble(&fakeKernel{}, shapes)
	require.NoError(t, err)
	require.Equal(t, 100, doc.Len())
	for i := 0; i < 100; i++ {
		e := doc.Entry(i)
		assert.Equal(t, shape.SphereParams{Radius: float32(i + 1)}, e.Params, i)
		assert.Equal(t, fmt.Sprintf("sphere_%d", i+1), e.Name)
	}
}

func TestAssembleRejectsNonPositiveSlot(t *testing.T) {
	cases := []struct {
		name  string
		shape PlacedShape
		slot  shape.Slot
	}{
		{"zero radius", placed(shape.Sphere, shape.SphereParams{Radius: 0}), shape.SlotRadius},
		{"negative height", placed(shape.Cylinder, shape.CylinderParams{Radius: 1, Height: -2}), shape.SlotHeight},
		{"zero width", placed(shape.Box, shape.BoxParams{Length: 1, Width: 0, Height: 1}), shape.SlotWidth},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			k := &fakeKernel{}
			_, err := Assemble(k, []PlacedShape{placed(shape.Sphere, shape.SphereParams{Radius: 1}), tc.shape})
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, 1, verr.Index)
			assert.Equal(t, tc.slot, verr.Slot)
			// Atomic: the valid first shape must not have been built either.
			assert.Zero(t, k.makeCalls)
		})
	}
}

// NaN and Inf from a corrupted decode surface as validation errors here.
func TestAssembleRejectsNonFinite(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		var v shape.Vector
		v[shape.SlotRadius] = bad
		_, err := Assemble(&fakeKernel{}, []PlacedShape{{
			Descriptor: shape.Descriptor{Class: shape.Sphere, Params: v},
			Placement:  shape.DefaultPlacement(),
		}})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, shape.SlotRadius, verr.Slot)
	}
}

func TestAssembleRejectsUnknownClass(t *testing.T) {
	_, err := Assemble(&fakeKernel{}, []PlacedShape{{
		Descriptor: shape.Descriptor{Class: shape.Class(42)},
		Placement:  shape.DefaultPlacement(),
	}})
	assert.ErrorIs(t, err, ErrUnknownClass)
}

// A cone with zero top radius is a legal full cone.
func TestAssembleConeApex(t *testing.T) {
	doc, err := Assemble(&fakeKernel{}, []PlacedShape{placed(shape.Cone, shape.ConeParams{Radius1: 2, Radius2: 0, Height: 4})})
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Len())
}

func TestSceneRoundTrip(t *testing.T) {
	shapes := []PlacedShape{
		placed(shape.Box, shape.BoxParams{Length: 1, Width: 2, Height: 3}),
		{
			Descriptor: shape.Descriptor{Class: shape.Torus, Params: shape.TorusParams{Radius1: 10, Radius2: 0.5}.Vector()},
			Placement: shape.Placement{
				Position: [3]float32{-1, 0, 1},
				Rotation: shape.Rotation{X: 1.57},
				Scale:    2,
			},
		},
	}
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, SaveScene(path, shapes))

	loaded, err := LoadScene(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, shapes[0].Descriptor, loaded[0].Descriptor)
	assert.Equal(t, shapes[1].Descriptor, loaded[1].Descriptor)
	assert.Equal(t, shapes[1].Placement, loaded[1].Placement)
}

func TestSaveSceneRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	err := SaveScene(path, []PlacedShape{placed(shape.Sphere, shape.SphereParams{Radius: -1})})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
