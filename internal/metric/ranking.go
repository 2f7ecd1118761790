package metric

import (
	"context"
	"fmt"

	"github.com/vk/metrictraingo/internal/config"
	"github.com/vk/metrictraingo/internal/rng"
)

// RankingConfig is the schema for the ranking_metric namespace.
type RankingConfig struct {
	BaseConfig `koanf:",squash"`
	// Margin is the triplet-loss margin separating better from worse
	// hypotheses in embedding space.
	Margin float64 `koanf:"margin" json:"margin"`
}

func defaultRankingConfig() RankingConfig {
	return RankingConfig{
		BaseConfig: defaultBase(),
		Margin:     1.0,
	}
}

func (c *RankingConfig) validate() error {
	if err := c.BaseConfig.validate(); err != nil {
		return err
	}
	if c.Margin <= 0 {
		return fmt.Errorf("margin must be positive, got %g", c.Margin)
	}
	return nil
}

// RankingMetric learns to rank hypothesis pairs against source and reference
// with a triplet margin objective.
type RankingMetric struct {
	cfg RankingConfig
	src *rng.Source
}

// NewRanking constructs a RankingMetric from its init_args, merged over
// defaults.
func NewRanking(args map[string]any, src *rng.Source) (Model, error) {
	cfg := defaultRankingConfig()
	if err := decodeArgs(config.NamespaceRanking, args, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, &config.ConstructorArgumentError{Component: config.NamespaceRanking, Err: err}
	}
	return &RankingMetric{cfg: cfg, src: src.Fork(config.NamespaceRanking)}, nil
}

func (m *RankingMetric) Name() string          { return "RankingMetric" }
func (m *RankingMetric) Config() any           { return m.cfg }
func (m *RankingMetric) LearningRate() float64 { return m.cfg.LearningRate }

// Margin exposes the resolved margin for tests and audit tooling.
func (m *RankingMetric) Margin() float64 { return m.cfg.Margin }

func (m *RankingMetric) TrainingEpoch(ctx context.Context, epoch int) (map[string]float64, error) {
	metrics := syntheticEpoch(m.src, epoch)
	metrics["val_kendall"] = 1 - metrics["val_loss"]
	return metrics, nil
}

func (m *RankingMetric) Snapshot() map[string]any {
	return snapshot(m.Name(), m.cfg)
}
