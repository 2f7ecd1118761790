package metric

import (
	"context"
	"fmt"

	"github.com/vk/metrictraingo/internal/config"
	"github.com/vk/metrictraingo/internal/rng"
)

// RegressionConfig is the schema for the regression_metric namespace. The
// same schema backs ReferencelessRegression, which differs only in what the
// encoder consumes.
type RegressionConfig struct {
	BaseConfig  `koanf:",squash"`
	HiddenSizes []int  `koanf:"hidden_sizes" json:"hidden_sizes"`
	Activations string `koanf:"activations" json:"activations"`
}

func defaultRegressionConfig() RegressionConfig {
	return RegressionConfig{
		BaseConfig:  defaultBase(),
		HiddenSizes: []int{2304, 768},
		Activations: "Tanh",
	}
}

func (c *RegressionConfig) validate() error {
	if err := c.BaseConfig.validate(); err != nil {
		return err
	}
	for _, size := range c.HiddenSizes {
		if size <= 0 {
			return fmt.Errorf("hidden_sizes entries must be positive, got %d", size)
		}
	}
	return nil
}

// RegressionMetric scores translations against a reference using a
// regression head over pooled encoder embeddings.
type RegressionMetric struct {
	cfg RegressionConfig
	src *rng.Source
}

// NewRegression constructs a RegressionMetric from its init_args, merged
// over defaults.
func NewRegression(args map[string]any, src *rng.Source) (Model, error) {
	cfg := defaultRegressionConfig()
	if err := decodeArgs(config.NamespaceRegression, args, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, &config.ConstructorArgumentError{Component: config.NamespaceRegression, Err: err}
	}
	return &RegressionMetric{cfg: cfg, src: src.Fork(config.NamespaceRegression)}, nil
}

func (m *RegressionMetric) Name() string          { return "RegressionMetric" }
func (m *RegressionMetric) Config() any           { return m.cfg }
func (m *RegressionMetric) LearningRate() float64 { return m.cfg.LearningRate }

func (m *RegressionMetric) TrainingEpoch(ctx context.Context, epoch int) (map[string]float64, error) {
	metrics := syntheticEpoch(m.src, epoch)
	metrics["val_pearson"] = 1 - metrics["val_loss"]
	return metrics, nil
}

func (m *RegressionMetric) Snapshot() map[string]any {
	return snapshot(m.Name(), m.cfg)
}
