package metric

import (
	"context"
	"fmt"

	"github.com/vk/metrictraingo/internal/config"
	"github.com/vk/metrictraingo/internal/rng"
)

// CSPECConfig is the schema for the cspec_metric namespace.
type CSPECConfig struct {
	BaseConfig `koanf:",squash"`
	// ContextWindow is the number of preceding source sentences folded into
	// each scoring example.
	ContextWindow int `koanf:"context_window" json:"context_window"`
	// UseContext disables the context fold entirely when false, leaving a
	// plain regression objective.
	UseContext bool `koanf:"use_context" json:"use_context"`
}

func defaultCSPECConfig() CSPECConfig {
	return CSPECConfig{
		BaseConfig:    defaultBase(),
		ContextWindow: 2,
		UseContext:    true,
	}
}

func (c *CSPECConfig) validate() error {
	if err := c.BaseConfig.validate(); err != nil {
		return err
	}
	if c.ContextWindow <= 0 {
		return fmt.Errorf("context_window must be positive, got %d", c.ContextWindow)
	}
	return nil
}

// CSPECMetric scores translations with document context folded into the
// source side.
type CSPECMetric struct {
	cfg CSPECConfig
	src *rng.Source
}

// NewCSPEC constructs a CSPECMetric from its init_args, merged over defaults.
func NewCSPEC(args map[string]any, src *rng.Source) (Model, error) {
	cfg := defaultCSPECConfig()
	if err := decodeArgs(config.NamespaceCSPEC, args, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, &config.ConstructorArgumentError{Component: config.NamespaceCSPEC, Err: err}
	}
	return &CSPECMetric{cfg: cfg, src: src.Fork(config.NamespaceCSPEC)}, nil
}

func (m *CSPECMetric) Name() string          { return "CSPECMetric" }
func (m *CSPECMetric) Config() any           { return m.cfg }
func (m *CSPECMetric) LearningRate() float64 { return m.cfg.LearningRate }

func (m *CSPECMetric) TrainingEpoch(ctx context.Context, epoch int) (map[string]float64, error) {
	metrics := syntheticEpoch(m.src, epoch)
	metrics["val_pearson"] = 1 - metrics["val_loss"]
	return metrics, nil
}

func (m *CSPECMetric) Snapshot() map[string]any {
	return snapshot(m.Name(), m.cfg)
}
