package callbacks

import (
	"context"
	"encoding/json"

	"github.com/vk/metrictraingo/internal/ctxlog"
)

// lrLoggingInterval is fixed: the monitor reports at per-step granularity and
// takes no user configuration.
const lrLoggingInterval = "step"

// LearningRateMonitor logs the optimizer learning rate at every training
// step.
type LearningRateMonitor struct{}

// NewLearningRateMonitor constructs the monitor.
func NewLearningRateMonitor() *LearningRateMonitor {
	return &LearningRateMonitor{}
}

// Name implements Callback.
func (c *LearningRateMonitor) Name() string { return "LearningRateMonitor" }

// Interval returns the fixed logging interval.
func (c *LearningRateMonitor) Interval() string { return lrLoggingInterval }

// OnTrainStart implements Callback.
func (c *LearningRateMonitor) OnTrainStart(ctx context.Context, st *RunState) error {
	return nil
}

// OnTrainStepEnd logs the current learning rate.
func (c *LearningRateMonitor) OnTrainStepEnd(ctx context.Context, st *RunState) error {
	ctxlog.FromContext(ctx).Debug("Learning rate.", "step", st.Step, "lr", st.LearningRate)
	return nil
}

// OnValidationEnd implements Callback.
func (c *LearningRateMonitor) OnValidationEnd(ctx context.Context, st *RunState) error {
	return nil
}

// OnTrainEnd implements Callback.
func (c *LearningRateMonitor) OnTrainEnd(ctx context.Context, st *RunState) error {
	return nil
}

// MarshalJSON renders the callback for the driver-configuration audit block.
func (c *LearningRateMonitor) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"class":     c.Name(),
		"init_args": map[string]any{"logging_interval": lrLoggingInterval},
	})
}
