package decoder

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"textcad/internal/shape"
)

// ErrConfig marks invalid or mismatched artifact configuration: bad
// dimensions, an unknown class list, or slot counts that disagree with the
// shape definitions. Always fatal to the operation that hit it.
var ErrConfig = errors.New("decoder: invalid configuration")

// TrainingInfo records the hyperparameters a model was trained with. Purely
// informational at inference time, but persisted so a retrain can report what
// it started from.
type TrainingInfo struct {
	Epochs       int     `yaml:"epochs"`
	BatchSize    int     `yaml:"batch_size"`
	LearningRate float64 `yaml:"learning_rate"`
}

// Config is the authority binding a vectorizer, model weights, and the shape
// vocabulary together. A persisted artifact set is only usable if every part
// agrees with this.
type Config struct {
	InputDim   int            `yaml:"input_dim"`
	HiddenDim  int            `yaml:"hidden_dim"`
	ParamDim   int            `yaml:"param_dim"`
	Classes    []string       `yaml:"classes"`
	ClassSlots map[string]int `yaml:"class_slots"`
	Training   TrainingInfo   `yaml:"training"`
}

// NewConfig builds a config for the current shape vocabulary and the given
// feature/hidden dimensions.
func NewConfig(inputDim, hiddenDim int, info TrainingInfo) Config {
	classes := make([]string, 0, shape.NumClasses())
	slots := make(map[string]int, shape.NumClasses())
	for _, c := range shape.Classes() {
		classes = append(classes, c.String())
		slots[c.String()] = len(shape.RelevantSlots(c))
	}
	return Config{
		InputDim:   inputDim,
		HiddenDim:  hiddenDim,
		ParamDim:   shape.VectorLen,
		Classes:    classes,
		ClassSlots: slots,
		Training:   info,
	}
}

// Validate checks the config against the compiled-in shape vocabulary.
// The class list is ordered; a reordering would silently remap logits, so it
// is rejected outright.
func (c Config) Validate() error {
	if c.InputDim <= 0 || c.HiddenDim <= 0 {
		return fmt.Errorf("%w: dimensions must be positive (input %d, hidden %d)",
			ErrConfig, c.InputDim, c.HiddenDim)
	}
	if c.ParamDim != shape.VectorLen {
		return fmt.Errorf("%w: param_dim %d, this build uses %d", ErrConfig, c.ParamDim, shape.VectorLen)
	}
	if len(c.Classes) != shape.NumClasses() {
		return fmt.Errorf("%w: %d classes, this build supports %d", ErrConfig, len(c.Classes), shape.NumClasses())
	}
	for i, name := range c.Classes {
		if name != shape.Class(i).String() {
			return fmt.Errorf("%w: class %d is %q, expected %q", ErrConfig, i, name, shape.Class(i))
		}
		if n, ok := c.ClassSlots[name]; !ok || n != len(shape.RelevantSlots(shape.Class(i))) {
			return fmt.Errorf("%w: class %q declares %d parameter slots, expected %d",
				ErrConfig, name, n, len(shape.RelevantSlots(shape.Class(i))))
		}
	}
	return nil
}

// SaveConfig writes the config as YAML.
func SaveConfig(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadConfig reads and validates a config written by SaveConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: reading %s: %v", ErrConfig, path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parsing %s: %v", ErrConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
