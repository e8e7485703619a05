package decoder

import (
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textcad/internal/vectorizer"
)

func testConfig(inputDim int) Config {
	return NewConfig(inputDim, 16, TrainingInfo{Epochs: 1, BatchSize: 4, LearningRate: 0.001})
}

func testModel(t *testing.T, inputDim int) *Model {
	t.Helper()
	m, err := NewModel(testConfig(inputDim), rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	return m
}

func TestConfigValidate(t *testing.T) {
	good := testConfig(10)
	require.NoError(t, good.Validate())

	bad := good
	bad.InputDim = 0
	assert.ErrorIs(t, bad.Validate(), ErrConfig)

	bad = good
	bad.ParamDim = 3
	assert.ErrorIs(t, bad.Validate(), ErrConfig)

	bad = good
	bad.Classes = append([]string{}, good.Classes...)
	bad.Classes[0], bad.Classes[1] = bad.Classes[1], bad.Classes[0]
	assert.ErrorIs(t, bad.Validate(), ErrConfig)

	bad = good
	bad.ClassSlots = map[string]int{"sphere": 4}
	assert.ErrorIs(t, bad.Validate(), ErrConfig)
}

func TestPredictDimensionMismatch(t *testing.T) {
	m := testModel(t, 10)
	_, err := m.Predict(make([]float64, 3))
	assert.ErrorIs(t, err, ErrDimension)
}

// Predict is a pure function of the weights: same input, same descriptor.
func TestPredictDeterministic(t *testing.T) {
	m := testModel(t, 10)
	in := make([]float64, 10)
	in[2] = 1
	in[7] = 2

	a, err := m.Predict(in)
	require.NoError(t, err)
	b, err := m.Predict(in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, a.Class.Valid())
}

// NaN in the input must reach the output instead of being clamped away.
func TestPredictNaNPropagates(t *testing.T) {
	m := testModel(t, 10)
	in := make([]float64, 10)
	in[0] = math.NaN()

	d, err := m.Predict(in)
	require.NoError(t, err)
	var sawNaN bool
	for _, v := range d.Params {
		if math.IsNaN(v) {
			sawNaN = true
		}
	}
	assert.True(t, sawNaN, "NaN input should surface in the parameter vector")
}

// A saved and reloaded artifact set reproduces identical predictions.
func TestArtifactRoundTrip(t *testing.T) {
	vec := vectorizer.New()
	vec.Fit([]string{
		"a sphere with radius 2",
		"a box of length 1 width 2 height 3",
		"a tall cylinder with radius 1 and height 9",
	})

	cfg := NewConfig(vec.Dim(), 16, TrainingInfo{Epochs: 2, BatchSize: 8, LearningRate: 0.01})
	m, err := NewModel(cfg, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	set := &ArtifactSet{Config: cfg, Vectorizer: vec, Model: m}

	dir := t.TempDir()
	paths := Paths{
		Model:      filepath.Join(dir, "model.json"),
		Vectorizer: filepath.Join(dir, "vectorizer.json"),
		Config:     filepath.Join(dir, "config.yaml"),
	}
	require.NoError(t, set.Save(paths))

	loaded, err := Load(paths)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded.Config)

	held := []string{
		"a sphere with radius 2",
		"a tall cylinder with radius 1 and height 9",
		"a box of length 1",
	}
	for _, text := range held {
		in, err := vec.Transform(text)
		require.NoError(t, err)
		want, err := set.Model.Predict(in)
		require.NoError(t, err)
		got, err := loaded.Model.Predict(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, text)
	}
}

func TestLoadRejectsMismatchedVectorizer(t *testing.T) {
	vec := vectorizer.New()
	vec.Fit([]string{"a sphere with radius 2"})

	cfg := NewConfig(vec.Dim(), 8, TrainingInfo{})
	m, err := NewModel(cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	set := &ArtifactSet{Config: cfg, Vectorizer: vec, Model: m}

	dir := t.TempDir()
	paths := Paths{
		Model:      filepath.Join(dir, "model.json"),
		Vectorizer: filepath.Join(dir, "vectorizer.json"),
		Config:     filepath.Join(dir, "config.yaml"),
	}
	require.NoError(t, set.Save(paths))

	// Overwrite the vectorizer with one of a different dimension.
	other := vectorizer.New()
	other.Fit([]string{"a torus with radius1 10 radius2 1 and a cone of height 4"})
	require.NoError(t, other.Save(paths.Vectorizer))

	_, err = Load(paths)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(Paths{
		Model:      filepath.Join(dir, "model.json"),
		Vectorizer: filepath.Join(dir, "vectorizer.json"),
		Config:     filepath.Join(dir, "config.yaml"),
	})
	assert.ErrorIs(t, err, ErrConfig)
}
