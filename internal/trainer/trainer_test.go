package trainer_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/metrictraingo/internal/callbacks"
	"github.com/vk/metrictraingo/internal/config"
	"github.com/vk/metrictraingo/internal/ctxlog"
	"github.com/vk/metrictraingo/internal/metric"
	"github.com/vk/metrictraingo/internal/rng"
	"github.com/vk/metrictraingo/internal/testutil"
	"github.com/vk/metrictraingo/internal/trainer"
	"github.com/vk/metrictraingo/internal/warnfilter"
)

func assembled(t *testing.T, overrides map[string]any) []callbacks.Callback {
	t.Helper()

	cfg := &config.TrainingConfig{
		EarlyStopping:   map[string]any{},
		ModelCheckpoint: map[string]any{"dirpath": t.TempDir()},
	}
	for k, v := range overrides {
		cfg.EarlyStopping[k] = v
	}
	list, err := callbacks.Assemble(context.Background(), cfg, "run-1")
	require.NoError(t, err)
	return list
}

func TestBuild_CallbacksKeyAlwaysOverwritten(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	cbs := assembled(t, nil)
	options := map[string]any{
		"max_epochs": 10,
		"callbacks":  []string{"user-supplied-junk"},
	}
	recorder := &testutil.Recorder{}

	// --- Act ---
	_, merged, err := trainer.Build(context.Background(), options, cbs, recorder.Constructor, rng.New(12))

	// --- Assert ---
	require.NoError(t, err)
	got, ok := merged[trainer.CallbacksKey].([]callbacks.Callback)
	require.True(t, ok, "the merged callbacks key must hold the assembled list")
	require.Len(t, got, 3, "the assembled list must replace, not append to, user callbacks")
	require.Equal(t, 10, merged["max_epochs"], "other driver options must pass through")

	// The caller's mapping must stay untouched.
	_, stillJunk := options["callbacks"].([]string)
	require.True(t, stillJunk, "Build must not mutate its input options")
}

func TestNewLocal_StrictDecode(t *testing.T) {
	t.Parallel()

	// --- Act ---
	_, err := trainer.NewLocal(context.Background(), map[string]any{"max_epoch": 10}, rng.New(12))

	// --- Assert ---
	var argErr *config.ConstructorArgumentError
	require.ErrorAs(t, err, &argErr, "a misspelled trainer option must be rejected")
	require.Equal(t, config.NamespaceTrainer, argErr.Component)
}

func TestNewLocal_RejectsBadOptionValues(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		options map[string]any
	}{
		{name: "non-positive max_epochs", options: map[string]any{"max_epochs": 0}},
		{name: "negative num_workers", options: map[string]any{"num_workers": -1}},
		{name: "unknown accelerator", options: map[string]any{"accelerator": "tpu"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := trainer.NewLocal(context.Background(), tc.options, rng.New(12))

			var argErr *config.ConstructorArgumentError
			require.ErrorAs(t, err, &argErr)
		})
	}
}

func TestLocalFit_EarlyStoppingHaltsBeforeMaxEpochs(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The synthetic objective plateaus quickly, so a small patience stops
	// the loop well before 1000 epochs.
	cbs := assembled(t, map[string]any{"patience": 2, "min_delta": 0.01})
	driver, err := trainer.NewLocal(context.Background(), map[string]any{
		"max_epochs":          1000,
		"limit_train_batches": 2,
		"callbacks":           cbs,
	}, rng.New(12))
	require.NoError(t, err)

	model, err := metric.NewRanking(nil, rng.New(12))
	require.NoError(t, err)

	buf := &testutil.SafeBuffer{}
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(buf, nil)))

	// --- Act ---
	err = driver.(*trainer.Local).Fit(ctx, model)

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, buf.String(), "Run stopped by callback", "early stopping should halt the loop")
}

func TestLocalFit_WorkerHeuristicsWarningRespectsFilter(t *testing.T) {
	t.Parallel()

	runFit := func(suppress bool) string {
		cbs := assembled(t, map[string]any{"patience": 0})
		driver, err := trainer.NewLocal(context.Background(), map[string]any{
			"max_epochs":  1,
			"num_workers": 0,
			"callbacks":   cbs,
		}, rng.New(12))
		require.NoError(t, err)

		model, err := metric.NewRanking(nil, rng.New(12))
		require.NoError(t, err)

		buf := &testutil.SafeBuffer{}
		ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(buf, nil)))
		filter := warnfilter.New()
		if suppress {
			filter.Suppress(warnfilter.WorkerHeuristics)
		}
		ctx = warnfilter.WithFilter(ctx, filter)

		require.NoError(t, driver.(*trainer.Local).Fit(ctx, model))
		return buf.String()
	}

	// --- Act / Assert ---
	require.Contains(t, runFit(false), "num_workers is below", "unsuppressed warning must be logged")
	require.NotContains(t, runFit(true), "num_workers is below", "suppressed warning must not be logged")
}
