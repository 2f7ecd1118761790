package callbacks

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/vk/metrictraingo/internal/config"
	"github.com/vk/metrictraingo/internal/ctxlog"
)

// EarlyStoppingConfig is the schema for the early_stopping namespace.
type EarlyStoppingConfig struct {
	// Monitor names the validation metric watched for improvement.
	Monitor  string  `koanf:"monitor" json:"monitor"`
	MinDelta float64 `koanf:"min_delta" json:"min_delta"`
	// Patience is the number of validations without improvement tolerated
	// before the run is stopped.
	Patience int `koanf:"patience" json:"patience"`
	// Mode is "min" or "max" depending on whether the monitored metric
	// improves downwards or upwards.
	Mode string `koanf:"mode" json:"mode"`
}

// EarlyStopping stops the run once the monitored metric stops improving.
type EarlyStopping struct {
	cfg  EarlyStoppingConfig
	best float64
	wait int
}

// NewEarlyStopping constructs the callback from its init_args, merged over
// defaults.
func NewEarlyStopping(args map[string]any) (*EarlyStopping, error) {
	cfg := EarlyStoppingConfig{
		Monitor:  "val_loss",
		MinDelta: 0.0,
		Patience: 3,
		Mode:     "min",
	}
	if err := config.DecodeStrict(args, &cfg); err != nil {
		return nil, &config.ConstructorArgumentError{Component: config.NamespaceEarlyStopping, Err: err}
	}
	if cfg.Mode != "min" && cfg.Mode != "max" {
		return nil, &config.ConstructorArgumentError{
			Component: config.NamespaceEarlyStopping,
			Err:       fmt.Errorf("mode must be \"min\" or \"max\", got %q", cfg.Mode),
		}
	}
	if cfg.Patience < 0 {
		return nil, &config.ConstructorArgumentError{
			Component: config.NamespaceEarlyStopping,
			Err:       fmt.Errorf("patience must not be negative, got %d", cfg.Patience),
		}
	}
	es := &EarlyStopping{cfg: cfg}
	es.resetBest()
	return es, nil
}

func (c *EarlyStopping) resetBest() {
	if c.cfg.Mode == "min" {
		c.best = math.Inf(1)
	} else {
		c.best = math.Inf(-1)
	}
}

// Name implements Callback.
func (c *EarlyStopping) Name() string { return "EarlyStopping" }

// Config exposes the resolved configuration.
func (c *EarlyStopping) Config() EarlyStoppingConfig { return c.cfg }

// OnTrainStart resets the improvement tracker for a fresh run.
func (c *EarlyStopping) OnTrainStart(ctx context.Context, st *RunState) error {
	c.resetBest()
	c.wait = 0
	return nil
}

// OnTrainStepEnd implements Callback; early stopping only reacts to
// validation results.
func (c *EarlyStopping) OnTrainStepEnd(ctx context.Context, st *RunState) error {
	return nil
}

// OnValidationEnd compares the monitored metric against the best seen and
// flags the run to stop after patience is exhausted.
func (c *EarlyStopping) OnValidationEnd(ctx context.Context, st *RunState) error {
	value, ok := st.Metrics[c.cfg.Monitor]
	if !ok {
		return fmt.Errorf("early_stopping: monitored metric %q not reported", c.cfg.Monitor)
	}

	improved := false
	if c.cfg.Mode == "min" {
		improved = value < c.best-c.cfg.MinDelta
	} else {
		improved = value > c.best+c.cfg.MinDelta
	}

	if improved {
		c.best = value
		c.wait = 0
		return nil
	}

	c.wait++
	if c.wait > c.cfg.Patience {
		st.ShouldStop = true
		st.StopReason = fmt.Sprintf("early stopping: %s did not improve for %d validations", c.cfg.Monitor, c.wait)
		ctxlog.FromContext(ctx).Info("Early stopping triggered.",
			"monitor", c.cfg.Monitor, "best", c.best, "epoch", st.Epoch)
	}
	return nil
}

// OnTrainEnd implements Callback.
func (c *EarlyStopping) OnTrainEnd(ctx context.Context, st *RunState) error {
	return nil
}

// MarshalJSON renders the callback for the driver-configuration audit block.
func (c *EarlyStopping) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"class":     c.Name(),
		"init_args": c.cfg,
	})
}
