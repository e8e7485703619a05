package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"textcad/internal/assembler"
	"textcad/internal/cadmesh"
	"textcad/internal/decoder"
	"textcad/internal/shape"
	"textcad/internal/training"
	"textcad/internal/vectorizer"
)

// trainedArtifacts fits a small sphere/box model once per test binary. The
// corpus and hyperparameters match the training package's convergence tests.
var trainedArtifacts *decoder.ArtifactSet

func artifacts(t *testing.T) *decoder.ArtifactSet {
	t.Helper()
	if trainedArtifacts != nil {
		return trainedArtifacts
	}
	var texts []string
	var params []shape.Params
	for _, r := range []float32{1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5} {
		texts = append(texts, fmt.Sprintf("A sphere with a radius of %g units.", r))
		params = append(params, shape.SphereParams{Radius: r})
	}
	boxDims := [][3]float32{
		{10, 12, 14}, {12, 14, 16}, {14, 16, 20}, {10, 16, 12},
		{20, 10, 14}, {16, 20, 10}, {12, 10, 20}, {14, 20, 16},
	}
	for _, d := range boxDims {
		texts = append(texts, fmt.Sprintf("A box with length %g width %g and height %g units.", d[0], d[1], d[2]))
		params = append(params, shape.BoxParams{Length: d[0], Width: d[1], Height: d[2]})
	}

	vec := vectorizer.New()
	vec.Fit(texts)
	examples, err := training.Prepare(texts, params, vec)
	require.NoError(t, err)
	set, err := training.Train(vec, examples, training.Hyperparameters{
		Epochs: 500, BatchSize: 8, HiddenDim: 32, LearningRate: 0.01, Seed: 42,
	}, zap.NewNop())
	require.NoError(t, err)
	trainedArtifacts = set
	return set
}

func TestDescribe(t *testing.T) {
	g := New(artifacts(t), cadmesh.NewKernel(), nil)
	d, err := g.Describe("A sphere with a radius of 4 units.")
	require.NoError(t, err)
	assert.Equal(t, shape.Sphere, d.Class)
	assert.InDelta(t, 4, d.Params[shape.SlotRadius], 0.4)
}

func TestGenerateSingleShape(t *testing.T) {
	g := New(artifacts(t), cadmesh.NewKernel(), nil)
	doc, err := g.Generate("A sphere with a radius of 3 units.", shape.DefaultPlacement())
	require.NoError(t, err)
	require.Equal(t, 1, doc.Len())

	e := doc.Entry(0)
	assert.Equal(t, "sphere_1", e.Name)
	sp, ok := e.Params.(shape.SphereParams)
	require.True(t, ok)
	assert.InDelta(t, 3, sp.Radius, 0.3)
}

// Two requests become two independently placed solids in request order.
func TestGenerateManyPlacements(t *testing.T) {
	g := New(artifacts(t), cadmesh.NewKernel(), nil)
	doc, err := g.GenerateMany([]Request{
		{
			Text:      "A box with length 10 width 12 and height 14 units.",
			Placement: shape.DefaultPlacement(),
		},
		{
			Text:      "A sphere with a radius of 5 units.",
			Placement: shape.Placement{Position: [3]float32{10, 0, 0}, Scale: 1},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 2, doc.Len())

	box := doc.Entry(0)
	assert.Equal(t, shape.Box, box.Params.Class())
	assert.Equal(t, shape.DefaultPlacement(), box.Placement)

	sphere := doc.Entry(1)
	assert.Equal(t, shape.Sphere, sphere.Params.Class())
	assert.Equal(t, [3]float32{10, 0, 0}, sphere.Placement.Position)

	// The baked sphere mesh must sit around its translated center.
	mesh := sphere.Solid.(*cadmesh.Mesh).Clone()
	mesh.Transform(sphere.Placement)
	min, max := mesh.Bounds()
	assert.InDelta(t, 10, (min[0]+max[0])/2, 1e-3)
	assert.InDelta(t, 0, (min[1]+max[1])/2, 1e-3)
}

// The descriptor path skips the model entirely: a box at the origin and a
// sphere at (10,0,0) become two independent solids at their own transforms.
func TestAssembleBypassesText(t *testing.T) {
	g := New(artifacts(t), cadmesh.NewKernel(), nil)
	doc, err := g.Assemble([]assembler.PlacedShape{
		{
			Descriptor: shape.Descriptor{Class: shape.Box, Params: shape.BoxParams{Length: 1, Width: 2, Height: 3}.Vector()},
			Placement:  shape.DefaultPlacement(),
		},
		{
			Descriptor: shape.Descriptor{Class: shape.Sphere, Params: shape.SphereParams{Radius: 5}.Vector()},
			Placement:  shape.Placement{Position: [3]float32{10, 0, 0}, Scale: 1},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 2, doc.Len())
	assert.Equal(t, shape.BoxParams{Length: 1, Width: 2, Height: 3}, doc.Entry(0).Params)
	assert.Equal(t, shape.DefaultPlacement(), doc.Entry(0).Placement)
	assert.Equal(t, shape.SphereParams{Radius: 5}, doc.Entry(1).Params)
	assert.Equal(t, [3]float32{10, 0, 0}, doc.Entry(1).Placement.Position)
}

func TestGenerateRejectsDegenerateDecode(t *testing.T) {
	set := artifacts(t)
	g := New(set, cadmesh.NewKernel(), nil)
	// A vocabulary-only sentence with no numbers decodes near the corpus mean,
	// but an out-of-vocabulary sentence gives the zero feature vector, whose
	// parameters come from the model's biases. Whatever it decodes to, the
	// result is either a valid document or a validation error; never a panic
	// or a partial document.
	doc, err := g.Generate("completely unrelated text", shape.DefaultPlacement())
	if err != nil {
		var verr *assembler.ValidationError
		assert.ErrorAs(t, err, &verr)
	} else {
		assert.Equal(t, 1, doc.Len())
	}
}

func TestExportOBJ(t *testing.T) {
	g := New(artifacts(t), cadmesh.NewKernel(), zap.NewNop())
	doc, err := g.Generate("A sphere with a radius of 2 units.", shape.DefaultPlacement())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sphere.obj")
	require.NoError(t, g.Export(doc, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "o sphere_1\n"))
}
