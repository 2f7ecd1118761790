package metric

import (
	"context"
	"fmt"

	"github.com/vk/metrictraingo/internal/config"
	"github.com/vk/metrictraingo/internal/rng"
)

// UniTEConfig is the schema for the unite_metric namespace.
type UniTEConfig struct {
	BaseConfig `koanf:",squash"`
	// InputSegments selects which segment combinations feed the unified
	// encoder. Valid entries: "hyp", "src", "ref".
	InputSegments []string `koanf:"input_segments" json:"input_segments"`
}

func defaultUniTEConfig() UniTEConfig {
	return UniTEConfig{
		BaseConfig:    defaultBase(),
		InputSegments: []string{"hyp", "src", "ref"},
	}
}

func (c *UniTEConfig) validate() error {
	if err := c.BaseConfig.validate(); err != nil {
		return err
	}
	if len(c.InputSegments) == 0 {
		return fmt.Errorf("input_segments must not be empty")
	}
	for _, seg := range c.InputSegments {
		switch seg {
		case "hyp", "src", "ref":
		default:
			return fmt.Errorf("input_segments entry %q is not one of hyp, src, ref", seg)
		}
	}
	return nil
}

// UniTEMetric trains a unified encoder over configurable segment
// combinations.
type UniTEMetric struct {
	cfg UniTEConfig
	src *rng.Source
}

// NewUniTE constructs a UniTEMetric from its init_args, merged over defaults.
func NewUniTE(args map[string]any, src *rng.Source) (Model, error) {
	cfg := defaultUniTEConfig()
	if err := decodeArgs(config.NamespaceUniTE, args, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, &config.ConstructorArgumentError{Component: config.NamespaceUniTE, Err: err}
	}
	return &UniTEMetric{cfg: cfg, src: src.Fork(config.NamespaceUniTE)}, nil
}

func (m *UniTEMetric) Name() string          { return "UniTEMetric" }
func (m *UniTEMetric) Config() any           { return m.cfg }
func (m *UniTEMetric) LearningRate() float64 { return m.cfg.LearningRate }

func (m *UniTEMetric) TrainingEpoch(ctx context.Context, epoch int) (map[string]float64, error) {
	metrics := syntheticEpoch(m.src, epoch)
	metrics["val_spearman"] = 1 - metrics["val_loss"]
	return metrics, nil
}

func (m *UniTEMetric) Snapshot() map[string]any {
	return snapshot(m.Name(), m.cfg)
}
