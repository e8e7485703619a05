// Package decoder implements the text-to-shape model: a feed-forward network
// with a shared trunk and two heads, one classifying the shape and one
// regressing the full parameter vector. Inference is a single stateless
// forward pass over fixed weights.
package decoder

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"textcad/internal/shape"
)

// ErrDimension is returned when an input vector does not match the model's
// configured feature dimension.
var ErrDimension = errors.New("decoder: feature vector dimension mismatch")

// Model holds the network weights. Layout:
//
//	hidden = relu(x·W1 + b1)        shared trunk
//	logits = hidden·Wc + bc         one logit per class
//	params = hidden·Wp + bp         full-length parameter vector
//
// Both heads are evaluated on every input; only the slots relevant to the
// winning class are meaningful downstream.
type Model struct {
	cfg Config

	w1, b1 *mat.Dense // in×hidden, 1×hidden
	wc, bc *mat.Dense // hidden×C, 1×C
	wp, bp *mat.Dense // hidden×P, 1×P
}

// NewModel creates a model with randomly initialized weights drawn from rng.
// Weight scale is 1/sqrt(fan-in); biases start at zero.
func NewModel(cfg Config, rng *rand.Rand) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Model{cfg: cfg}
	m.w1 = randomDense(cfg.InputDim, cfg.HiddenDim, rng)
	m.b1 = mat.NewDense(1, cfg.HiddenDim, nil)
	m.wc = randomDense(cfg.HiddenDim, len(cfg.Classes), rng)
	m.bc = mat.NewDense(1, len(cfg.Classes), nil)
	m.wp = randomDense(cfg.HiddenDim, cfg.ParamDim, rng)
	m.bp = mat.NewDense(1, cfg.ParamDim, nil)
	return m, nil
}

func randomDense(rows, cols int, rng *rand.Rand) *mat.Dense {
	data := make([]float64, rows*cols)
	scale := 1.0 / float64(rows)
	for i := range data {
		data[i] = rng.NormFloat64() * scale
	}
	return mat.NewDense(rows, cols, data)
}

// Config returns the model's configuration.
func (m *Model) Config() Config {
	return m.cfg
}

// Weights returns the parameter matrices in a fixed order
// (w1, b1, wc, bc, wp, bp). The training loop updates them in place;
// after training they must be treated as read-only.
func (m *Model) Weights() []*mat.Dense {
	return []*mat.Dense{m.w1, m.b1, m.wc, m.bc, m.wp, m.bp}
}

// Forward runs the trunk and both heads on a batch (one row per example).
// Returned matrices are hidden activations (post-ReLU), class logits, and
// parameter predictions. Used by the training loop; Predict wraps it for
// single inputs.
func (m *Model) Forward(x *mat.Dense) (hidden, logits, params *mat.Dense) {
	hidden = &mat.Dense{}
	hidden.Mul(x, m.w1)
	addRowBias(hidden, m.b1)
	hidden.Apply(func(_, _ int, v float64) float64 {
		if v < 0 {
			return 0
		}
		return v
	}, hidden)

	logits = &mat.Dense{}
	logits.Mul(hidden, m.wc)
	addRowBias(logits, m.bc)

	params = &mat.Dense{}
	params.Mul(hidden, m.wp)
	addRowBias(params, m.bp)
	return hidden, logits, params
}

// addRowBias adds the 1×n bias row to every row of dst.
func addRowBias(dst, bias *mat.Dense) {
	rows, cols := dst.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			dst.Set(i, j, dst.At(i, j)+bias.At(0, j))
		}
	}
}

// Predict maps one feature vector to a shape descriptor: arg-max of the
// classification head plus the regression head's full parameter vector.
// A wrong-length input is a configuration error; NaN or Inf inputs propagate
// into the output so callers can detect corruption downstream.
func (m *Model) Predict(features []float64) (shape.Descriptor, error) {
	if len(features) != m.cfg.InputDim {
		return shape.Descriptor{}, fmt.Errorf("%w: got %d features, model expects %d",
			ErrDimension, len(features), m.cfg.InputDim)
	}
	x := mat.NewDense(1, m.cfg.InputDim, features)
	_, logits, params := m.Forward(x)

	best := 0
	for j := 1; j < len(m.cfg.Classes); j++ {
		if logits.At(0, j) > logits.At(0, best) {
			best = j
		}
	}

	var out shape.Vector
	for j := 0; j < m.cfg.ParamDim; j++ {
		out[j] = params.At(0, j)
	}
	return shape.Descriptor{Class: shape.Class(best), Params: out}, nil
}
