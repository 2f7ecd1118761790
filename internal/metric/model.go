package metric

import (
	"context"
	"fmt"

	"github.com/vk/metrictraingo/internal/config"
	"github.com/vk/metrictraingo/internal/rng"
)

// Model is implemented by every trainable metric variant. Construction is
// the heavyweight part this launcher wires; the training loop only needs the
// small surface below.
type Model interface {
	// Name returns the variant's class name for audit output.
	Name() string
	// Config returns the fully resolved constructor arguments.
	Config() any
	// LearningRate reports the current optimizer learning rate.
	LearningRate() float64
	// TrainingEpoch runs one epoch and returns its metrics.
	TrainingEpoch(ctx context.Context, epoch int) (map[string]float64, error)
	// Snapshot returns the state persisted by checkpoint callbacks.
	Snapshot() map[string]any
}

// BaseConfig holds the arguments shared by every variant, configured under
// the --model.* namespace and overridable per variant.
type BaseConfig struct {
	EncoderModel    string  `koanf:"encoder_model" json:"encoder_model"`
	PretrainedModel string  `koanf:"pretrained_model" json:"pretrained_model"`
	LearningRate    float64 `koanf:"learning_rate" json:"learning_rate"`
	BatchSize       int     `koanf:"batch_size" json:"batch_size"`
	NrFrozenEpochs  int     `koanf:"nr_frozen_epochs" json:"nr_frozen_epochs"`
	Dropout         float64 `koanf:"dropout" json:"dropout"`
	TrainData       string  `koanf:"train_data" json:"train_data"`
	ValidationData  string  `koanf:"validation_data" json:"validation_data"`
}

func defaultBase() BaseConfig {
	return BaseConfig{
		EncoderModel:    "XLM-RoBERTa",
		PretrainedModel: "xlm-roberta-base",
		LearningRate:    3e-05,
		BatchSize:       16,
		NrFrozenEpochs:  1,
		Dropout:         0.1,
	}
}

func (c *BaseConfig) validate() error {
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be positive, got %g", c.LearningRate)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return fmt.Errorf("dropout must be in [0, 1), got %g", c.Dropout)
	}
	if c.NrFrozenEpochs < 0 {
		return fmt.Errorf("nr_frozen_epochs must not be negative, got %d", c.NrFrozenEpochs)
	}
	return nil
}

// decodeArgs strictly decodes init_args into a variant's config struct,
// wrapping any rejection as a ConstructorArgumentError for that component.
func decodeArgs(component string, args map[string]any, target any) error {
	if err := config.DecodeStrict(args, target); err != nil {
		return &config.ConstructorArgumentError{Component: component, Err: err}
	}
	return nil
}

// syntheticEpoch is the placeholder objective used for in-process runs: a
// smooth descent perturbed by the model's own random stream.
func syntheticEpoch(src *rng.Source, epoch int) map[string]float64 {
	train := 1.0/float64(epoch+2) + 0.01*src.Float64()
	val := train + 0.005*src.Float64()
	return map[string]float64{
		"train_loss": train,
		"val_loss":   val,
	}
}

// snapshot is the common checkpoint payload shape.
func snapshot(name string, cfg any) map[string]any {
	return map[string]any{
		"class":     name,
		"init_args": cfg,
	}
}
