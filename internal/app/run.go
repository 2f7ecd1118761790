package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vk/metrictraingo/internal/callbacks"
	"github.com/vk/metrictraingo/internal/config"
	"github.com/vk/metrictraingo/internal/ctxlog"
	"github.com/vk/metrictraingo/internal/rng"
	"github.com/vk/metrictraingo/internal/trainer"
	"github.com/vk/metrictraingo/internal/warnfilter"
)

// Run executes the launch sequence: resolve configuration, seed, assemble
// callbacks, build the driver, select and construct the model, emit the
// audit blocks, and hand control to the driver's blocking fit. Any failure
// aborts; there is no retry anywhere in this sequence.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	ctx = warnfilter.WithFilter(ctx, a.filter)
	a.logger.Debug("App.Run method started.")

	cfg, err := config.Resolve(ctx, a.config.ConfigPaths, a.config.Overrides)
	if err != nil {
		return err
	}

	// Seeding precedes every construction step so weight initialization and
	// shuffling are deterministic for a fixed seed.
	src := rng.New(cfg.Seed)
	a.logger.Info("Run seeded.", "seed", cfg.Seed)

	cbs, err := callbacks.Assemble(ctx, cfg, a.runID)
	if err != nil {
		return err
	}

	driver, trainerArgs, err := trainer.Build(ctx, cfg.Trainer, cbs, a.construct, src)
	if err != nil {
		return err
	}

	if err := a.printAudit("TRAINER ARGUMENTS:", trainerArgs); err != nil {
		return err
	}

	model, err := a.registry.BuildSelected(ctx, a.outW, cfg, src)
	if err != nil {
		return err
	}

	a.filter.Suppress(warnfilter.WorkerHeuristics)

	a.logger.Info("Starting training run.", "model", model.Name())
	if err := driver.Fit(ctx, model); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	a.logger.Info("Training finished.")
	return nil
}

// printAudit writes one JSON audit block to standard output.
func (a *App) printAudit(header string, payload any) error {
	fmt.Fprintln(a.outW, header)
	encoded, err := json.MarshalIndent(payload, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding audit block: %w", err)
	}
	fmt.Fprintln(a.outW, string(encoded))
	return nil
}
