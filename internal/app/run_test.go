package app_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/metrictraingo/internal/callbacks"
	"github.com/vk/metrictraingo/internal/config"
	"github.com/vk/metrictraingo/internal/metric"
	"github.com/vk/metrictraingo/internal/testutil"
	"github.com/vk/metrictraingo/internal/trainer"
)

func TestRun_RankingScenario(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"ranking.yaml": `
ranking_metric:
  init_args:
    margin: 0.5
trainer:
  init_args:
    max_epochs: 10
model_checkpoint:
  init_args:
    save_top_k: 0
`,
	}

	// --- Act ---
	result := testutil.RunLauncherTest(t, files, nil)

	// --- Assert ---
	require.NoError(t, result.Err, "launch should succeed")

	require.Equal(t, 1, result.Recorder.Constructed, "exactly one driver must be constructed")
	driver := result.Recorder.Driver
	require.Equal(t, 10, driver.Options["max_epochs"], "trainer init_args must reach the driver")

	cbs, ok := driver.Options[trainer.CallbacksKey].([]callbacks.Callback)
	require.True(t, ok, "driver options must carry the assembled callback list")
	require.Len(t, cbs, 3)
	require.Equal(t, "EarlyStopping", cbs[0].Name())
	require.Equal(t, "ModelCheckpoint", cbs[1].Name())
	require.Equal(t, "LearningRateMonitor", cbs[2].Name())

	require.Equal(t, 1, driver.FitCalls, "fit must be invoked exactly once")
	ranking, ok := driver.FitModel.(*metric.RankingMetric)
	require.True(t, ok, "expected a *RankingMetric, got %T", driver.FitModel)
	require.Equal(t, 0.5, ranking.Margin())

	require.Contains(t, result.Output, "TRAINER ARGUMENTS:")
	require.Contains(t, result.Output, "MODEL ARGUMENTS:")
	require.Contains(t, result.Output, `"seed":12`, "seed should default to 12")
}

func TestRun_NoVariantAbortsBeforeAnyConstruction(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"empty.yaml": `
trainer:
  init_args:
    max_epochs: 10
`,
	}

	// --- Act ---
	result := testutil.RunLauncherTest(t, files, nil)

	// --- Assert ---
	var noModel *config.NoModelConfiguredError
	require.ErrorAs(t, result.Err, &noModel)
	require.Equal(t, 0, result.Recorder.Constructed, "no driver may be constructed without a model variant")
	require.NotContains(t, result.Output, "TRAINER ARGUMENTS:", "no audit output may precede the failure")
}

func TestRun_FirstMatchPolicyAcrossVariants(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"multi.yaml": `
cspec_metric:
  init_args:
    context_window: 3
regression_metric:
  init_args:
    dropout: 0.2
model_checkpoint:
  init_args:
    save_top_k: 0
`,
	}

	// --- Act ---
	result := testutil.RunLauncherTest(t, files, nil)

	// --- Assert ---
	require.NoError(t, result.Err)
	_, ok := result.Recorder.Driver.FitModel.(*metric.RegressionMetric)
	require.True(t, ok, "regression outranks cspec in priority order, got %T", result.Recorder.Driver.FitModel)
	require.Contains(t, result.Output, "Multiple model variants configured", "ignored variants must be logged")
}

func TestRun_UserCallbacksKeyIsOverwritten(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"cb.yaml": `
unite_metric:
  init_args: {}
trainer:
  init_args:
    callbacks: ["RichProgressBar"]
model_checkpoint:
  init_args:
    save_top_k: 0
`,
	}

	// --- Act ---
	result := testutil.RunLauncherTest(t, files, nil)

	// --- Assert ---
	require.NoError(t, result.Err)
	cbs, ok := result.Recorder.Driver.Options[trainer.CallbacksKey].([]callbacks.Callback)
	require.True(t, ok, "user callbacks must be replaced by the assembled list")
	require.Len(t, cbs, 3, "the final list contains exactly the three assembled callbacks")
	require.Contains(t, result.Output, "overwritten by the assembled list")
}

func TestRun_SeedOverrideFlowsThrough(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"m.yaml": `
referenceless_regression_metric:
  init_args: {}
model_checkpoint:
  init_args:
    save_top_k: 0
`,
	}

	// --- Act ---
	result := testutil.RunLauncherTest(t, files, []string{"--seed_everything", "42"})

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Contains(t, result.Output, `"seed":42`)
	_, ok := result.Recorder.Driver.FitModel.(*metric.ReferencelessRegression)
	require.True(t, ok, "expected a *ReferencelessRegression, got %T", result.Recorder.Driver.FitModel)
}

func TestRun_ConstructorRejectionAborts(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"bad.yaml": `
ranking_metric:
  init_args:
    margin: -1.0
model_checkpoint:
  init_args:
    save_top_k: 0
`,
	}

	// --- Act ---
	result := testutil.RunLauncherTest(t, files, nil)

	// --- Assert ---
	var argErr *config.ConstructorArgumentError
	require.ErrorAs(t, result.Err, &argErr)
	require.Equal(t, config.NamespaceRanking, argErr.Component)
	require.Equal(t, 0, result.Recorder.Driver.FitCalls, "fit must not run after a rejected model")
}
