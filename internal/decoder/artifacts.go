package decoder

import (
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"

	"textcad/internal/vectorizer"
)

// ArtifactSet is one trained run's output: fitted vectorizer, model weights,
// and the configuration binding them. Read-only after load; safe to share
// across concurrent inference callers.
type ArtifactSet struct {
	Config     Config
	Vectorizer *vectorizer.Vectorizer
	Model      *Model
}

// Paths names the three files an artifact set persists to. They are written
// and loaded together; mixing files from different runs is rejected at load.
type Paths struct {
	Model      string
	Vectorizer string
	Config     string
}

// weightsFile is the JSON layout of the persisted model weights.
type weightsFile struct {
	W1 [][]float64 `json:"w1"`
	B1 []float64   `json:"b1"`
	Wc [][]float64 `json:"wc"`
	Bc []float64   `json:"bc"`
	Wp [][]float64 `json:"wp"`
	Bp []float64   `json:"bp"`
}

func denseToRows(m *mat.Dense) [][]float64 {
	rows, cols := m.Dims()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			row[j] = m.At(i, j)
		}
		out[i] = row
	}
	return out
}

func rowsToDense(rows [][]float64, wantRows, wantCols int, name string) (*mat.Dense, error) {
	if len(rows) != wantRows {
		return nil, fmt.Errorf("%w: weight %s has %d rows, config expects %d", ErrConfig, name, len(rows), wantRows)
	}
	data := make([]float64, 0, wantRows*wantCols)
	for _, row := range rows {
		if len(row) != wantCols {
			return nil, fmt.Errorf("%w: weight %s has a row of %d columns, config expects %d", ErrConfig, name, len(row), wantCols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(wantRows, wantCols, data), nil
}

// Save writes the artifact set to its three files.
func (a *ArtifactSet) Save(p Paths) error {
	if err := SaveConfig(a.Config, p.Config); err != nil {
		return err
	}
	if err := a.Vectorizer.Save(p.Vectorizer); err != nil {
		return err
	}
	w := weightsFile{
		W1: denseToRows(a.Model.w1),
		B1: denseToRows(a.Model.b1)[0],
		Wc: denseToRows(a.Model.wc),
		Bc: denseToRows(a.Model.bc)[0],
		Wp: denseToRows(a.Model.wp),
		Bp: denseToRows(a.Model.bp)[0],
	}
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}
	return os.WriteFile(p.Model, data, 0644)
}

// Load reads an artifact set and verifies the three parts belong together:
// the vectorizer's dimension and every weight matrix must match the config.
// A missing, partial, or corrupt file fails the whole load.
func Load(p Paths) (*ArtifactSet, error) {
	cfg, err := LoadConfig(p.Config)
	if err != nil {
		return nil, err
	}
	vec, err := vectorizer.Load(p.Vectorizer)
	if err != nil {
		return nil, err
	}
	if vec.Dim() != cfg.InputDim {
		return nil, fmt.Errorf("%w: vectorizer dimension %d, config expects %d",
			ErrConfig, vec.Dim(), cfg.InputDim)
	}

	data, err := os.ReadFile(p.Model)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrConfig, p.Model, err)
	}
	var w weightsFile
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: corrupt weights in %s: %v", ErrConfig, p.Model, err)
	}

	m := &Model{cfg: cfg}
	if m.w1, err = rowsToDense(w.W1, cfg.InputDim, cfg.HiddenDim, "w1"); err != nil {
		return nil, err
	}
	if m.b1, err = rowsToDense([][]float64{w.B1}, 1, cfg.HiddenDim, "b1"); err != nil {
		return nil, err
	}
	if m.wc, err = rowsToDense(w.Wc, cfg.HiddenDim, len(cfg.Classes), "wc"); err != nil {
		return nil, err
	}
	if m.bc, err = rowsToDense([][]float64{w.Bc}, 1, len(cfg.Classes), "bc"); err != nil {
		return nil, err
	}
	if m.wp, err = rowsToDense(w.Wp, cfg.HiddenDim, cfg.ParamDim, "wp"); err != nil {
		return nil, err
	}
	if m.bp, err = rowsToDense([][]float64{w.Bp}, 1, cfg.ParamDim, "bp"); err != nil {
		return nil, err
	}
	return &ArtifactSet{Config: cfg, Vectorizer: vec, Model: m}, nil
}
