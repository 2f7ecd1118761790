package callbacks

import (
	"context"

	"github.com/vk/metrictraingo/internal/config"
	"github.com/vk/metrictraingo/internal/ctxlog"
)

// Assemble builds the callback list in its fixed order: early stopping,
// checkpointing, learning-rate monitoring. The order is load-bearing: the
// driver invokes callbacks in list order at each hook, and the early-stopping
// decision must precede the checkpoint decision for the same validation.
func Assemble(ctx context.Context, cfg *config.TrainingConfig, runID string) ([]Callback, error) {
	earlyStopping, err := NewEarlyStopping(cfg.EarlyStopping)
	if err != nil {
		return nil, err
	}
	checkpoint, err := NewModelCheckpoint(cfg.ModelCheckpoint, runID)
	if err != nil {
		return nil, err
	}

	list := []Callback{earlyStopping, checkpoint, NewLearningRateMonitor()}
	ctxlog.FromContext(ctx).Debug("Callbacks assembled.", "count", len(list))
	return list, nil
}
