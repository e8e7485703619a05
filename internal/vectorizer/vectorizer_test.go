package vectorizer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocess(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"A sphere with a radius of 2.50 units.", "sphere radius units 2.5"},
		{"A large BOX", "box"},
		// Keywords come back in occurrence order, not vocabulary order.
		{"a thin tall cylinder", "tall cylinder"},
		{"nothing relevant here", ""},
		{"torus radius 10 and 0.5", "torus radius 10 0.5"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Preprocess(tc.in), tc.in)
	}
}

func TestTransformUnfitted(t *testing.T) {
	_, err := New().Transform("a sphere")
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestFitTransform(t *testing.T) {
	v := New()
	v.Fit([]string{
		"A sphere with a radius of 3 units.",
		"A large box with length 2 and width 4.",
	})
	require.True(t, v.Fitted())
	require.Greater(t, v.Dim(), 0)

	vec, err := v.Transform("A sphere with a radius of 3 units.")
	require.NoError(t, err)
	assert.Len(t, vec, v.Dim())

	var total float64
	for _, x := range vec {
		total += x
	}
	assert.Equal(t, 4.0, total) // sphere, radius, units, 3
}

// Transform is deterministic: identical input, identical vector, every time.
func TestTransformDeterministic(t *testing.T) {
	v := New()
	v.Fit([]string{"a sphere with radius 2", "a tall cylinder of height 9"})
	a, err := v.Transform("a sphere with radius 2")
	require.NoError(t, err)
	b, err := v.Transform("a sphere with radius 2")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// Vocabulary unseen at fit time contributes zero, never an error.
func TestTransformUnknownTokens(t *testing.T) {
	v := New()
	v.Fit([]string{"a sphere with radius 2"})
	vec, err := v.Transform("a gigantic torus of diameter 99")
	require.NoError(t, err)
	for i, x := range vec {
		assert.Zero(t, x, v.terms[i])
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	v := New()
	v.Fit([]string{"a sphere with radius 2", "a cone of height 5"})
	path := filepath.Join(t.TempDir(), "vectorizer.json")
	require.NoError(t, v.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, v.Dim(), loaded.Dim())

	want, err := v.Transform("a sphere with radius 2")
	require.NoError(t, err)
	got, err := loaded.Transform("a sphere with radius 2")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestSaveUnfitted(t *testing.T) {
	assert.ErrorIs(t, New().Save(filepath.Join(t.TempDir(), "v.json")), ErrNotFitted)
}
