// Package training fits the shape decoder: minibatch Adam over a composite
// loss, cross-entropy on the classification head plus mean-squared error on
// the regression head restricted to the true class's parameter slots.
package training

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"textcad/internal/decoder"
	"textcad/internal/shape"
	"textcad/internal/vectorizer"
)

var (
	// ErrNoExamples is returned when Train or Retrain is given an empty set.
	ErrNoExamples = errors.New("training: empty example set")
	// ErrExampleDim is returned when an example's feature vector does not
	// match the vectorizer/model dimension.
	ErrExampleDim = errors.New("training: example feature dimension mismatch")
)

// Example is one unit of supervision: a feature vector, the true class, and
// the target parameter vector (irrelevant slots zero).
type Example struct {
	Features []float64
	Class    shape.Class
	Target   shape.Vector
}

// Hyperparameters configures one training run. Zero values fall back to the
// defaults in withDefaults.
type Hyperparameters struct {
	Epochs       int
	BatchSize    int
	HiddenDim    int
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64
	Seed         int64
	HistoryFile  string
}

func (h Hyperparameters) withDefaults() Hyperparameters {
	if h.Epochs <= 0 {
		h.Epochs = 5
	}
	if h.BatchSize <= 0 {
		h.BatchSize = 32
	}
	if h.HiddenDim <= 0 {
		h.HiddenDim = 128
	}
	if h.LearningRate <= 0 {
		h.LearningRate = 0.001
	}
	if h.Beta1 <= 0 {
		h.Beta1 = 0.9
	}
	if h.Beta2 <= 0 {
		h.Beta2 = 0.999
	}
	if h.Epsilon <= 0 {
		h.Epsilon = 1e-8
	}
	if h.Seed == 0 {
		h.Seed = 1
	}
	return h
}

func (h Hyperparameters) info(epochsSoFar int) decoder.TrainingInfo {
	return decoder.TrainingInfo{
		Epochs:       epochsSoFar,
		BatchSize:    h.BatchSize,
		LearningRate: h.LearningRate,
	}
}

func validateExamples(examples []Example, dim int) error {
	if len(examples) == 0 {
		return ErrNoExamples
	}
	for i, ex := range examples {
		if len(ex.Features) != dim {
			return fmt.Errorf("%w: example %d has %d features, expected %d",
				ErrExampleDim, i, len(ex.Features), dim)
		}
		if !ex.Class.Valid() {
			return fmt.Errorf("training: example %d has unknown class %d", i, int(ex.Class))
		}
	}
	return nil
}

// Prepare vectorizes raw (description, class, params) supervision into
// training examples using an already-fitted vectorizer.
func Prepare(descriptions []string, params []shape.Params, vec *vectorizer.Vectorizer) ([]Example, error) {
	if len(descriptions) != len(params) {
		return nil, fmt.Errorf("training: %d descriptions but %d parameter sets", len(descriptions), len(params))
	}
	out := make([]Example, 0, len(descriptions))
	for i, text := range descriptions {
		features, err := vec.Transform(text)
		if err != nil {
			return nil, err
		}
		out = append(out, Example{
			Features: features,
			Class:    params[i].Class(),
			Target:   params[i].Vector(),
		})
	}
	return out, nil
}

// Train fits a fresh model on the examples and returns the bound artifact
// set. The vectorizer must already be fitted and must have produced the
// example features; its dimension becomes the model's input dimension.
func Train(vec *vectorizer.Vectorizer, examples []Example, hp Hyperparameters, logger *zap.Logger) (*decoder.ArtifactSet, error) {
	hp = hp.withDefaults()
	if !vec.Fitted() {
		return nil, vectorizer.ErrNotFitted
	}
	if err := validateExamples(examples, vec.Dim()); err != nil {
		return nil, err
	}
	cfg := decoder.NewConfig(vec.Dim(), hp.HiddenDim, hp.info(hp.Epochs))
	rng := rand.New(rand.NewSource(hp.Seed))
	model, err := decoder.NewModel(cfg, rng)
	if err != nil {
		return nil, err
	}
	if err := fit(model, examples, hp, rng, logger); err != nil {
		return nil, err
	}
	return &decoder.ArtifactSet{Config: cfg, Vectorizer: vec, Model: model}, nil
}

// Retrain continues from an existing artifact set's weights instead of a
// random start. The existing vectorizer and configuration are reused; a
// hidden-dimension override that disagrees with the config is a
// configuration error.
func Retrain(existing *decoder.ArtifactSet, examples []Example, hp Hyperparameters, logger *zap.Logger) (*decoder.ArtifactSet, error) {
	cfg := existing.Config
	if hp.HiddenDim == 0 {
		hp.HiddenDim = cfg.HiddenDim
	}
	hp = hp.withDefaults()
	if hp.HiddenDim != cfg.HiddenDim {
		return nil, fmt.Errorf("%w: hidden dimension %d, existing model uses %d",
			decoder.ErrConfig, hp.HiddenDim, cfg.HiddenDim)
	}
	if existing.Vectorizer.Dim() != cfg.InputDim {
		return nil, fmt.Errorf("%w: vectorizer dimension %d, config expects %d",
			decoder.ErrConfig, existing.Vectorizer.Dim(), cfg.InputDim)
	}
	if err := validateExamples(examples, cfg.InputDim); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(hp.Seed))
	if err := fit(existing.Model, examples, hp, rng, logger); err != nil {
		return nil, err
	}
	cfg.Training = hp.info(cfg.Training.Epochs + hp.Epochs)
	existing.Config = cfg
	return existing, nil
}

// fit runs the epoch loop. It owns the model weights exclusively for the
// duration: no concurrent readers are permitted mid-epoch.
func fit(model *decoder.Model, examples []Example, hp Hyperparameters, rng *rand.Rand, logger *zap.Logger) error {
	weights := model.Weights()
	opt := newAdam(hp.LearningRate, hp.Beta1, hp.Beta2, hp.Epsilon, weights)
	hist := NewHistory(hp.HistoryFile)

	n := len(examples)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	for epoch := 1; epoch <= hp.Epochs; epoch++ {
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

		var epochClass, epochParam float64
		var batches int
		for start := 0; start < n; start += hp.BatchSize {
			end := start + hp.BatchSize
			if end > n {
				end = n
			}
			classLoss, paramLoss := trainStep(model, weights, opt, examples, order[start:end])
			epochClass += classLoss
			epochParam += paramLoss
			batches++
		}
		epochClass /= float64(batches)
		epochParam /= float64(batches)
		loss := epochClass + epochParam

		if math.IsNaN(loss) || math.IsInf(loss, 0) {
			// Divergence is reported, not auto-corrected.
			logger.Warn("loss is not finite",
				zap.Int("epoch", epoch),
				zap.Float64("loss", loss))
		} else {
			logger.Info("epoch complete",
				zap.Int("epoch", epoch),
				zap.Float64("loss", loss),
				zap.Float64("class_loss", epochClass),
				zap.Float64("param_loss", epochParam))
		}
		if err := hist.Append(EpochRecord{Epoch: epoch, Loss: loss, ClassLoss: epochClass, ParamLoss: epochParam}); err != nil {
			logger.Warn("writing training history failed", zap.Error(err))
		}
	}
	return nil
}

// trainStep runs forward/backward on one minibatch and applies the optimizer.
// Returns the batch's classification and (masked) parameter losses.
func trainStep(model *decoder.Model, weights []*mat.Dense, opt *adam, examples []Example, idx []int) (classLoss, paramLoss float64) {
	cfg := model.Config()
	b := len(idx)
	numClasses := len(cfg.Classes)

	x := mat.NewDense(b, cfg.InputDim, nil)
	for row, i := range idx {
		x.SetRow(row, examples[i].Features)
	}
	hidden, logits, params := model.Forward(x)

	// Classification: softmax cross-entropy, mean over the batch.
	dLogits := mat.NewDense(b, numClasses, nil)
	for row, i := range idx {
		probs := softmaxRow(logits, row, numClasses)
		y := int(examples[i].Class)
		classLoss += -math.Log(probs[y] + 1e-12)
		for j := 0; j < numClasses; j++ {
			grad := probs[j]
			if j == y {
				grad -= 1
			}
			dLogits.Set(row, j, grad/float64(b))
		}
	}
	classLoss /= float64(b)

	// Regression: MSE over the true class's relevant slots only. Slots that
	// do not apply to the label's class contribute neither loss nor gradient,
	// so a sphere example can never corrupt the box slots.
	dParams := mat.NewDense(b, cfg.ParamDim, nil)
	var masked int
	for _, i := range idx {
		masked += len(shape.RelevantSlots(examples[i].Class))
	}
	for row, i := range idx {
		for _, slot := range shape.RelevantSlots(examples[i].Class) {
			j := int(slot)
			diff := params.At(row, j) - examples[i].Target[j]
			paramLoss += diff * diff
			dParams.Set(row, j, 2*diff/float64(masked))
		}
	}
	paramLoss /= float64(masked)

	grads := backward(weights, x, hidden, dLogits, dParams)
	opt.step(weights, grads)
	return classLoss, paramLoss
}

// softmaxRow computes softmax of one logits row with max subtraction.
func softmaxRow(logits *mat.Dense, row, n int) []float64 {
	maxVal := logits.At(row, 0)
	for j := 1; j < n; j++ {
		if logits.At(row, j) > maxVal {
			maxVal = logits.At(row, j)
		}
	}
	probs := make([]float64, n)
	var total float64
	for j := 0; j < n; j++ {
		probs[j] = math.Exp(logits.At(row, j) - maxVal)
		total += probs[j]
	}
	for j := 0; j < n; j++ {
		probs[j] /= total
	}
	return probs
}

// backward computes gradients for all weights given the head output
// gradients. Weight order matches Model.Weights: w1, b1, wc, bc, wp, bp.
func backward(weights []*mat.Dense, x, hidden, dLogits, dParams *mat.Dense) []*mat.Dense {
	wc, wp := weights[2], weights[4]

	dWc := &mat.Dense{}
	dWc.Mul(hidden.T(), dLogits)
	dBc := columnSums(dLogits)

	dWp := &mat.Dense{}
	dWp.Mul(hidden.T(), dParams)
	dBp := columnSums(dParams)

	// Back through the trunk: both heads feed the hidden gradient.
	dHidden := &mat.Dense{}
	dHidden.Mul(dLogits, wc.T())
	tmp := &mat.Dense{}
	tmp.Mul(dParams, wp.T())
	dHidden.Add(dHidden, tmp)
	rows, cols := dHidden.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if hidden.At(i, j) == 0 {
				dHidden.Set(i, j, 0)
			}
		}
	}

	dW1 := &mat.Dense{}
	dW1.Mul(x.T(), dHidden)
	dB1 := columnSums(dHidden)
	return []*mat.Dense{dW1, dB1, dWc, dBc, dWp, dBp}
}

// columnSums returns a 1×cols matrix of column sums.
func columnSums(m *mat.Dense) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.NewDense(1, cols, nil)
	for j := 0; j < cols; j++ {
		var s float64
		for i := 0; i < rows; i++ {
			s += m.At(i, j)
		}
		out.Set(0, j, s)
	}
	return out
}
