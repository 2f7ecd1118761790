package metric

import (
	"context"

	"github.com/vk/metrictraingo/internal/config"
	"github.com/vk/metrictraingo/internal/rng"
)

// ReferencelessRegression is a quality-estimation variant: the same
// regression head as RegressionMetric, trained on source and hypothesis
// alone.
type ReferencelessRegression struct {
	cfg RegressionConfig
	src *rng.Source
}

// NewReferencelessRegression constructs a ReferencelessRegression from its
// init_args, merged over defaults.
func NewReferencelessRegression(args map[string]any, src *rng.Source) (Model, error) {
	cfg := defaultRegressionConfig()
	if err := decodeArgs(config.NamespaceReferenceless, args, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, &config.ConstructorArgumentError{Component: config.NamespaceReferenceless, Err: err}
	}
	return &ReferencelessRegression{cfg: cfg, src: src.Fork(config.NamespaceReferenceless)}, nil
}

func (m *ReferencelessRegression) Name() string          { return "ReferencelessRegression" }
func (m *ReferencelessRegression) Config() any           { return m.cfg }
func (m *ReferencelessRegression) LearningRate() float64 { return m.cfg.LearningRate }

func (m *ReferencelessRegression) TrainingEpoch(ctx context.Context, epoch int) (map[string]float64, error) {
	metrics := syntheticEpoch(m.src, epoch)
	metrics["val_pearson"] = 1 - metrics["val_loss"]
	return metrics, nil
}

func (m *ReferencelessRegression) Snapshot() map[string]any {
	return snapshot(m.Name(), m.cfg)
}
