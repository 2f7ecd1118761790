// Package callbacks implements the training-lifecycle callbacks the driver
// invokes in list order at each hook: early stopping, checkpointing, and
// learning-rate monitoring.
package callbacks

import (
	"context"

	"github.com/vk/metrictraingo/internal/metric"
)

// RunState is the mutable per-run state shared between the driver and its
// callbacks. Callbacks communicate back through it (ShouldStop).
type RunState struct {
	Model metric.Model

	Epoch        int
	Step         int
	LearningRate float64
	// Metrics holds the most recent validation metrics.
	Metrics map[string]float64

	ShouldStop bool
	StopReason string
}

// Callback is a lifecycle hook invoked by the driver. Hooks run in the
// assembled list order at every lifecycle point.
type Callback interface {
	Name() string
	OnTrainStart(ctx context.Context, st *RunState) error
	OnTrainStepEnd(ctx context.Context, st *RunState) error
	OnValidationEnd(ctx context.Context, st *RunState) error
	OnTrainEnd(ctx context.Context, st *RunState) error
}
