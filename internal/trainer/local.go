package trainer

import (
	"context"
	"fmt"
	"runtime"

	"github.com/vk/metrictraingo/internal/callbacks"
	"github.com/vk/metrictraingo/internal/config"
	"github.com/vk/metrictraingo/internal/ctxlog"
	"github.com/vk/metrictraingo/internal/metric"
	"github.com/vk/metrictraingo/internal/rng"
	"github.com/vk/metrictraingo/internal/warnfilter"
)

// Options is the schema for the trainer namespace consumed by the local
// driver.
type Options struct {
	MaxEpochs         int    `koanf:"max_epochs" json:"max_epochs"`
	LimitTrainBatches int    `koanf:"limit_train_batches" json:"limit_train_batches"`
	NumWorkers        int    `koanf:"num_workers" json:"num_workers"`
	Accelerator       string `koanf:"accelerator" json:"accelerator"`
	LogEveryNSteps    int    `koanf:"log_every_n_steps" json:"log_every_n_steps"`
}

func defaultOptions() Options {
	return Options{
		MaxEpochs:         100,
		LimitTrainBatches: 10,
		NumWorkers:        2,
		Accelerator:       "cpu",
		LogEveryNSteps:    50,
	}
}

func (o *Options) validate() error {
	if o.MaxEpochs <= 0 {
		return fmt.Errorf("max_epochs must be positive, got %d", o.MaxEpochs)
	}
	if o.LimitTrainBatches <= 0 {
		return fmt.Errorf("limit_train_batches must be positive, got %d", o.LimitTrainBatches)
	}
	if o.NumWorkers < 0 {
		return fmt.Errorf("num_workers must not be negative, got %d", o.NumWorkers)
	}
	switch o.Accelerator {
	case "cpu", "gpu", "auto":
	default:
		return fmt.Errorf("accelerator must be one of cpu, gpu, auto, got %q", o.Accelerator)
	}
	return nil
}

// Local is the in-process driver: a synchronous epoch loop that delegates
// the numeric step to the model and invokes callbacks in list order at each
// lifecycle hook.
type Local struct {
	opts      Options
	callbacks []callbacks.Callback
	src       *rng.Source
}

// NewLocal is the Constructor for the local driver. It strictly decodes the
// option mapping, extracts the assembled callback list, and validates the
// result.
func NewLocal(ctx context.Context, options map[string]any, src *rng.Source) (Driver, error) {
	// Shallow copy: the callback list must keep its identity, so a deep
	// copy of the mapping is off the table.
	opts := make(map[string]any, len(options))
	for k, v := range options {
		opts[k] = v
	}

	var cbs []callbacks.Callback
	if raw, ok := opts[CallbacksKey]; ok {
		list, isList := raw.([]callbacks.Callback)
		if !isList {
			return nil, &config.ConstructorArgumentError{
				Component: config.NamespaceTrainer,
				Err:       fmt.Errorf("%s must be an assembled callback list, got %T", CallbacksKey, raw),
			}
		}
		cbs = list
		delete(opts, CallbacksKey)
	}

	decoded := defaultOptions()
	if err := config.DecodeStrict(opts, &decoded); err != nil {
		return nil, &config.ConstructorArgumentError{Component: config.NamespaceTrainer, Err: err}
	}
	if err := decoded.validate(); err != nil {
		return nil, &config.ConstructorArgumentError{Component: config.NamespaceTrainer, Err: err}
	}

	return &Local{opts: decoded, callbacks: cbs, src: src.Fork(config.NamespaceTrainer)}, nil
}

// Options exposes the decoded options for tests and audit tooling.
func (d *Local) Options() Options { return d.opts }

// Callbacks exposes the callback list in invocation order.
func (d *Local) Callbacks() []callbacks.Callback { return d.callbacks }

// Fit runs the training loop to completion or until a callback requests a
// stop. It blocks the calling goroutine.
func (d *Local) Fit(ctx context.Context, model metric.Model) error {
	logger := ctxlog.FromContext(ctx)
	st := &callbacks.RunState{Model: model}

	// Data-loader setup heuristic, surfaced through the category filter so
	// the orchestrator can silence it.
	if d.opts.NumWorkers < runtime.NumCPU() {
		warnfilter.Warn(ctx, warnfilter.WorkerHeuristics,
			"num_workers is below the available CPU count; data loading may bottleneck training.",
			"num_workers", d.opts.NumWorkers, "cpus", runtime.NumCPU())
	}

	if err := d.each(ctx, st, callbacks.Callback.OnTrainStart); err != nil {
		return err
	}

	for epoch := 0; epoch < d.opts.MaxEpochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		st.Epoch = epoch
		st.LearningRate = model.LearningRate()

		for batch := 0; batch < d.opts.LimitTrainBatches; batch++ {
			st.Step++
			if err := d.each(ctx, st, callbacks.Callback.OnTrainStepEnd); err != nil {
				return err
			}
		}

		metrics, err := model.TrainingEpoch(ctx, epoch)
		if err != nil {
			return fmt.Errorf("epoch %d: %w", epoch, err)
		}
		st.Metrics = metrics
		if epoch%logEvery(d.opts.LogEveryNSteps, d.opts.LimitTrainBatches) == 0 {
			logger.Info("Validation finished.", "epoch", epoch, "metrics", metrics)
		}

		if err := d.each(ctx, st, callbacks.Callback.OnValidationEnd); err != nil {
			return err
		}
		if st.ShouldStop {
			logger.Info("Run stopped by callback.", "epoch", epoch, "reason", st.StopReason)
			break
		}
	}

	return d.each(ctx, st, callbacks.Callback.OnTrainEnd)
}

// each invokes one lifecycle hook on every callback in list order.
func (d *Local) each(ctx context.Context, st *callbacks.RunState, hook func(callbacks.Callback, context.Context, *callbacks.RunState) error) error {
	for _, cb := range d.callbacks {
		if err := hook(cb, ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// logEvery converts the per-step logging cadence into whole epochs, never
// returning zero.
func logEvery(steps, batchesPerEpoch int) int {
	epochs := steps / batchesPerEpoch
	if epochs < 1 {
		return 1
	}
	return epochs
}
