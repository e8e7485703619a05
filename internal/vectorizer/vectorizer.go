// Package vectorizer turns a free-text shape description into the fixed-length
// numeric feature vector the decoder consumes. A Vectorizer is fitted once on a
// training corpus and frozen; transform is deterministic after that.
package vectorizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrNotFitted is returned by Transform on a vectorizer that was neither
// fitted nor loaded from a fitted state.
var ErrNotFitted = errors.New("vectorizer: not fitted")

var (
	numberPattern = regexp.MustCompile(`\d+\.?\d*`)
	// keywordPattern matches the geometry vocabulary the decoder was designed
	// around. Anything else in the sentence carries no signal and is dropped.
	keywordPattern = regexp.MustCompile(`\b(plane|box|cube|cylinder|cone|sphere|ellipsoid|torus|prism|` +
		`wedge|helix|spiral|circle|ellipse|point|line|polygon|radius|` +
		`height|tall|diameter|width|length|units|angle|degrees|radians|` +
		`pitch)\b`)
)

// Preprocess reduces a raw description to its geometry keywords followed by its
// numeric literals, space-separated. E.g. "A sphere with a radius of 2.50 units."
// becomes "sphere radius units 2.5".
func Preprocess(description string) string {
	lower := strings.ToLower(description)
	keywords := keywordPattern.FindAllString(lower, -1)

	var numbers []string
	for _, raw := range numberPattern.FindAllString(description, -1) {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		numbers = append(numbers, strconv.FormatFloat(f, 'g', -1, 64))
	}
	return strings.TrimSpace(strings.Join(keywords, " ") + " " + strings.Join(numbers, " "))
}

// Vectorizer is a bag-of-words counter over preprocessed descriptions.
// The zero value is unfitted; call Fit or Load before Transform.
type Vectorizer struct {
	vocab map[string]int // token -> vector index
	terms []string       // index -> token, sorted
}

// New returns an unfitted vectorizer.
func New() *Vectorizer {
	return &Vectorizer{}
}

// Fit builds the vocabulary from the corpus. Tokens are sorted so the feature
// layout is independent of corpus order. Fitting again replaces the vocabulary.
func (v *Vectorizer) Fit(corpus []string) {
	seen := make(map[string]bool)
	for _, text := range corpus {
		for _, tok := range strings.Fields(Preprocess(text)) {
			seen[tok] = true
		}
	}
	terms := make([]string, 0, len(seen))
	for tok := range seen {
		terms = append(terms, tok)
	}
	sort.Strings(terms)

	v.terms = terms
	v.vocab = make(map[string]int, len(terms))
	for i, tok := range terms {
		v.vocab[tok] = i
	}
}

// Fitted reports whether the vectorizer has a vocabulary.
func (v *Vectorizer) Fitted() bool {
	return v.vocab != nil
}

// Dim is the length of vectors produced by Transform. Zero when unfitted.
func (v *Vectorizer) Dim() int {
	return len(v.terms)
}

// Transform maps text to its token-count vector. Tokens outside the fitted
// vocabulary contribute nothing; they are never an error.
func (v *Vectorizer) Transform(text string) ([]float64, error) {
	if !v.Fitted() {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(v.terms))
	for _, tok := range strings.Fields(Preprocess(text)) {
		if i, ok := v.vocab[tok]; ok {
			out[i]++
		}
	}
	return out, nil
}

// state is the persisted form: just the ordered term list.
type state struct {
	Terms []string `json:"terms"`
}

// Save writes the fitted vocabulary to path as JSON.
func (v *Vectorizer) Save(path string) error {
	if !v.Fitted() {
		return ErrNotFitted
	}
	data, err := json.MarshalIndent(state{Terms: v.terms}, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a fitted vocabulary previously written by Save. A missing or
// unparseable file is a configuration error; the returned vectorizer is
// immediately usable.
func Load(path string) (*Vectorizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vectorizer: reading %s: %w", path, err)
	}
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("vectorizer: corrupt state in %s: %w", path, err)
	}
	v := New()
	v.terms = s.Terms
	v.vocab = make(map[string]int, len(s.Terms))
	for i, tok := range s.Terms {
		v.vocab[tok] = i
	}
	return v, nil
}
