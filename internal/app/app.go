package app

import (
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vk/metrictraingo/internal/registry"
	"github.com/vk/metrictraingo/internal/trainer"
	"github.com/vk/metrictraingo/internal/warnfilter"
)

// App encapsulates the launcher's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	registry  *registry.Registry
	construct trainer.Constructor
	filter    *warnfilter.Filter
	runID     string
}

// NewApp is the constructor for the launcher. The driver constructor may be
// nil, in which case the in-process local driver is used.
func NewApp(outW io.Writer, appConfig *Config, construct trainer.Constructor) *App {
	runID := uuid.NewString()
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW).With("run_id", runID)
	logger.Debug("Logger configured successfully.")

	if construct == nil {
		construct = trainer.NewLocal
	}

	return &App{
		outW:      outW,
		logger:    logger,
		config:    appConfig,
		registry:  registry.New(),
		construct: construct,
		filter:    warnfilter.New(),
		runID:     runID,
	}
}

// Registry returns the variant registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// RunID returns the identifier minted for this invocation.
func (a *App) RunID() string {
	return a.runID
}
