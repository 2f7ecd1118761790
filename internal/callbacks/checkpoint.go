package callbacks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/metrictraingo/internal/config"
	"github.com/vk/metrictraingo/internal/ctxlog"
)

// ModelCheckpointConfig is the schema for the model_checkpoint namespace.
type ModelCheckpointConfig struct {
	// Dirpath is the directory checkpoints are written to. Defaults to a
	// per-run directory under "checkpoints".
	Dirpath  string `koanf:"dirpath" json:"dirpath"`
	Filename string `koanf:"filename" json:"filename"`
	Monitor  string `koanf:"monitor" json:"monitor"`
	Mode     string `koanf:"mode" json:"mode"`
	// SaveTopK bounds how many checkpoints are retained: -1 keeps all,
	// 0 disables saving.
	SaveTopK int `koanf:"save_top_k" json:"save_top_k"`
}

type savedCheckpoint struct {
	path  string
	score float64
}

// ModelCheckpoint persists a model snapshot after each validation and prunes
// old checkpoints down to the configured top K by monitored score.
type ModelCheckpoint struct {
	cfg   ModelCheckpointConfig
	saved []savedCheckpoint
}

// NewModelCheckpoint constructs the callback from its init_args, merged over
// defaults. The run ID keys the default checkpoint directory.
func NewModelCheckpoint(args map[string]any, runID string) (*ModelCheckpoint, error) {
	cfg := ModelCheckpointConfig{
		Dirpath:  filepath.Join("checkpoints", runID),
		Filename: "epoch",
		Monitor:  "val_loss",
		Mode:     "min",
		SaveTopK: 1,
	}
	if err := config.DecodeStrict(args, &cfg); err != nil {
		return nil, &config.ConstructorArgumentError{Component: config.NamespaceModelCheckpoint, Err: err}
	}
	if cfg.Mode != "min" && cfg.Mode != "max" {
		return nil, &config.ConstructorArgumentError{
			Component: config.NamespaceModelCheckpoint,
			Err:       fmt.Errorf("mode must be \"min\" or \"max\", got %q", cfg.Mode),
		}
	}
	if cfg.SaveTopK < -1 {
		return nil, &config.ConstructorArgumentError{
			Component: config.NamespaceModelCheckpoint,
			Err:       fmt.Errorf("save_top_k must be -1, 0, or positive, got %d", cfg.SaveTopK),
		}
	}
	return &ModelCheckpoint{cfg: cfg}, nil
}

// Name implements Callback.
func (c *ModelCheckpoint) Name() string { return "ModelCheckpoint" }

// Config exposes the resolved configuration.
func (c *ModelCheckpoint) Config() ModelCheckpointConfig { return c.cfg }

// OnTrainStart creates the checkpoint directory.
func (c *ModelCheckpoint) OnTrainStart(ctx context.Context, st *RunState) error {
	if c.cfg.SaveTopK == 0 {
		return nil
	}
	if err := os.MkdirAll(c.cfg.Dirpath, 0o755); err != nil {
		return fmt.Errorf("model_checkpoint: creating %s: %w", c.cfg.Dirpath, err)
	}
	return nil
}

// OnTrainStepEnd implements Callback; checkpoints are written per
// validation, not per step.
func (c *ModelCheckpoint) OnTrainStepEnd(ctx context.Context, st *RunState) error {
	return nil
}

// OnValidationEnd writes a checkpoint for the finished epoch and prunes the
// retained set to save_top_k by monitored score.
func (c *ModelCheckpoint) OnValidationEnd(ctx context.Context, st *RunState) error {
	if c.cfg.SaveTopK == 0 {
		return nil
	}

	score, ok := st.Metrics[c.cfg.Monitor]
	if !ok {
		return fmt.Errorf("model_checkpoint: monitored metric %q not reported", c.cfg.Monitor)
	}

	payload := map[string]any{
		"epoch":   st.Epoch,
		"metrics": st.Metrics,
		"model":   st.Model.Snapshot(),
	}
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("model_checkpoint: encoding checkpoint: %w", err)
	}

	path := filepath.Join(c.cfg.Dirpath, fmt.Sprintf("%s-epoch%d.ckpt.json", c.cfg.Filename, st.Epoch))
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("model_checkpoint: writing %s: %w", path, err)
	}
	c.saved = append(c.saved, savedCheckpoint{path: path, score: score})
	ctxlog.FromContext(ctx).Debug("Checkpoint written.", "path", path, "score", score)

	return c.prune(ctx)
}

// prune removes the worst-scoring checkpoints beyond save_top_k.
func (c *ModelCheckpoint) prune(ctx context.Context) error {
	if c.cfg.SaveTopK < 0 {
		return nil
	}
	for len(c.saved) > c.cfg.SaveTopK {
		worst := 0
		for i, s := range c.saved {
			if c.cfg.Mode == "min" && s.score > c.saved[worst].score {
				worst = i
			}
			if c.cfg.Mode == "max" && s.score < c.saved[worst].score {
				worst = i
			}
		}
		victim := c.saved[worst]
		if err := os.Remove(victim.path); err != nil {
			return fmt.Errorf("model_checkpoint: pruning %s: %w", victim.path, err)
		}
		c.saved = append(c.saved[:worst], c.saved[worst+1:]...)
		ctxlog.FromContext(ctx).Debug("Checkpoint pruned.", "path", victim.path)
	}
	return nil
}

// OnTrainEnd implements Callback.
func (c *ModelCheckpoint) OnTrainEnd(ctx context.Context, st *RunState) error {
	return nil
}

// Saved returns the retained checkpoint paths in write order.
func (c *ModelCheckpoint) Saved() []string {
	paths := make([]string, len(c.saved))
	for i, s := range c.saved {
		paths[i] = s.path
	}
	return paths
}

// MarshalJSON renders the callback for the driver-configuration audit block.
func (c *ModelCheckpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"class":     c.Name(),
		"init_args": c.cfg,
	})
}
