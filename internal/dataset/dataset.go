// Package dataset loads the JSON training data emitted by the external
// generators. Each dataset file is an array of entries; a dataset directory
// is the concatenation of every .json file in it.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"textcad/internal/shape"
)

// ErrEmpty is returned when a dataset directory yields no entries.
var ErrEmpty = errors.New("dataset: no entries found")

// Entry is one labeled example as the generators emit it: a free-text
// description, the shape class name, and named parameter values.
type Entry struct {
	Shape       string             `json:"shape"`
	Description string             `json:"description"`
	Parameters  map[string]float64 `json:"parameters"`
}

// Params resolves the entry into the typed parameter variant for its class.
// Unknown class or parameter names are errors; parameters the class does not
// read are rejected rather than silently dropped.
func (e Entry) Params() (shape.Params, error) {
	class, err := shape.ClassFromString(e.Shape)
	if err != nil {
		return nil, err
	}
	relevant := map[shape.Slot]bool{}
	for _, s := range shape.RelevantSlots(class) {
		relevant[s] = true
	}
	var v shape.Vector
	for name, value := range e.Parameters {
		slot, err := shape.SlotFromString(name)
		if err != nil {
			return nil, err
		}
		if !relevant[slot] {
			return nil, fmt.Errorf("dataset: parameter %q does not apply to class %q", name, e.Shape)
		}
		v[slot] = value
	}
	return shape.ParamsFromVector(class, v)
}

// LoadDir reads every .json file in dir (sorted by name for reproducibility)
// and returns the combined entries. An unreadable or unparseable file fails
// the whole load; an empty result is ErrEmpty.
func LoadDir(dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("dataset: reading %s: %w", dir, err)
	}
	var names []string
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".json") {
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)

	var entries []Entry
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("dataset: reading %s: %w", path, err)
		}
		var part []Entry
		if err := json.Unmarshal(data, &part); err != nil {
			return nil, fmt.Errorf("dataset: parsing %s: %w", path, err)
		}
		entries = append(entries, part...)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrEmpty, dir)
	}
	return entries, nil
}

// Split resolves entries into parallel description/params slices, ready for
// vectorizer fitting and training.Prepare. Zero-valued relevant parameters
// are accepted (the model may train on them) but counted so callers can flag
// data quality.
func Split(entries []Entry) (descriptions []string, params []shape.Params, degenerate int, err error) {
	for i, e := range entries {
		p, err := e.Params()
		if err != nil {
			return nil, nil, 0, fmt.Errorf("dataset: entry %d: %w", i, err)
		}
		v := p.Vector()
		for _, s := range shape.RelevantSlots(p.Class()) {
			if v[s] <= 0 {
				degenerate++
				break
			}
		}
		descriptions = append(descriptions, e.Description)
		params = append(params, p)
	}
	return descriptions, params, degenerate, nil
}
