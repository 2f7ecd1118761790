package metric_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/metrictraingo/internal/config"
	"github.com/vk/metrictraingo/internal/metric"
	"github.com/vk/metrictraingo/internal/rng"
)

func src(t *testing.T) *rng.Source {
	t.Helper()
	return rng.New(12)
}

func TestNewRanking_AppliesArgsOverDefaults(t *testing.T) {
	t.Parallel()

	// --- Act ---
	model, err := metric.NewRanking(map[string]any{"margin": 0.5}, src(t))

	// --- Assert ---
	require.NoError(t, err)
	ranking, ok := model.(*metric.RankingMetric)
	require.True(t, ok, "expected a *RankingMetric, got %T", model)
	require.Equal(t, 0.5, ranking.Margin())

	cfg, ok := ranking.Config().(metric.RankingConfig)
	require.True(t, ok)
	require.Equal(t, 16, cfg.BatchSize, "unset base fields should keep defaults")
	require.Equal(t, "xlm-roberta-base", cfg.PretrainedModel)
}

func TestNewRanking_RejectsUnknownField(t *testing.T) {
	t.Parallel()

	// --- Act ---
	_, err := metric.NewRanking(map[string]any{"margn": 0.5}, src(t))

	// --- Assert ---
	var argErr *config.ConstructorArgumentError
	require.ErrorAs(t, err, &argErr, "a misspelled init_arg should be rejected")
	require.Equal(t, config.NamespaceRanking, argErr.Component)
}

func TestNewRanking_RejectsNonPositiveMargin(t *testing.T) {
	t.Parallel()

	// --- Act ---
	_, err := metric.NewRanking(map[string]any{"margin": -1.0}, src(t))

	// --- Assert ---
	var argErr *config.ConstructorArgumentError
	require.ErrorAs(t, err, &argErr)
	require.Contains(t, err.Error(), "margin must be positive")
}

func TestNewRegression_RejectsBadBaseArgs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args map[string]any
	}{
		{name: "zero learning rate", args: map[string]any{"learning_rate": 0.0}},
		{name: "negative batch size", args: map[string]any{"batch_size": -1}},
		{name: "dropout of one", args: map[string]any{"dropout": 1.0}},
		{name: "non-positive hidden size", args: map[string]any{"hidden_sizes": []any{0}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := metric.NewRegression(tc.args, src(t))

			var argErr *config.ConstructorArgumentError
			require.ErrorAs(t, err, &argErr, "bad base args should be ConstructorArgumentErrors")
		})
	}
}

func TestNewUniTE_ValidatesSegments(t *testing.T) {
	t.Parallel()

	// --- Act ---
	_, err := metric.NewUniTE(map[string]any{"input_segments": []any{"hyp", "tgt"}}, src(t))

	// --- Assert ---
	var argErr *config.ConstructorArgumentError
	require.ErrorAs(t, err, &argErr)
	require.Contains(t, err.Error(), `"tgt"`)
}

func TestNewCSPEC_ValidatesContextWindow(t *testing.T) {
	t.Parallel()

	// --- Act ---
	_, err := metric.NewCSPEC(map[string]any{"context_window": 0}, src(t))

	// --- Assert ---
	var argErr *config.ConstructorArgumentError
	require.ErrorAs(t, err, &argErr)
	require.Contains(t, err.Error(), "context_window must be positive")
}

func TestVariantNamesAndSnapshots(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		build func() (metric.Model, error)
		class string
	}{
		{"regression", func() (metric.Model, error) { return metric.NewRegression(nil, src(t)) }, "RegressionMetric"},
		{"referenceless", func() (metric.Model, error) { return metric.NewReferencelessRegression(nil, src(t)) }, "ReferencelessRegression"},
		{"ranking", func() (metric.Model, error) { return metric.NewRanking(nil, src(t)) }, "RankingMetric"},
		{"unite", func() (metric.Model, error) { return metric.NewUniTE(nil, src(t)) }, "UniTEMetric"},
		{"cspec", func() (metric.Model, error) { return metric.NewCSPEC(nil, src(t)) }, "CSPECMetric"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			model, err := tc.build()
			require.NoError(t, err, "defaults alone should construct")
			require.Equal(t, tc.class, model.Name())

			snap := model.Snapshot()
			require.Equal(t, tc.class, snap["class"])
			require.Contains(t, snap, "init_args")
		})
	}
}

func TestTrainingEpoch_IsDeterministicForASeed(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	first, err := metric.NewRanking(nil, rng.New(12))
	require.NoError(t, err)
	second, err := metric.NewRanking(nil, rng.New(12))
	require.NoError(t, err)

	// --- Act ---
	m1, err := first.TrainingEpoch(context.Background(), 0)
	require.NoError(t, err)
	m2, err := second.TrainingEpoch(context.Background(), 0)
	require.NoError(t, err)

	// --- Assert ---
	require.Equal(t, m1, m2, "same seed must yield identical epoch metrics")
	require.Contains(t, m1, "val_loss")
	require.Contains(t, m1, "val_kendall")
}
