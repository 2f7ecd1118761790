package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	goyaml "gopkg.in/yaml.v3"

	"github.com/vk/metrictraingo/internal/ctxlog"
	"github.com/vk/metrictraingo/internal/fsutil"
	"github.com/vk/metrictraingo/internal/hclcfg"
)

// DefaultSeed is applied when no seed_everything value is configured.
const DefaultSeed = 12

// initArgsKey nests constructor arguments inside a subclass namespace.
const initArgsKey = "init_args"

// classPathKey is accepted inside subclass namespaces for compatibility with
// configuration files written for class-path-style parsers. Its value is not
// consumed; variant identity comes from the namespace itself.
const classPathKey = "class_path"

// callbackNamespaces are the non-variant subclass namespaces.
var callbackNamespaces = []string{
	NamespaceEarlyStopping,
	NamespaceModelCheckpoint,
	NamespaceTrainer,
}

// Resolve merges built-in defaults, the given configuration files, and CLI
// overrides (in that order, later sources winning) into a TrainingConfig.
// A path may name a YAML file, an HCL file, or a directory of either; a path
// that does not exist is skipped and defaults apply. Unknown keys fail with
// ConfigurationError; a tree with no variant namespace fails with
// NoModelConfiguredError.
func Resolve(ctx context.Context, paths []string, overrides map[string]string) (*TrainingConfig, error) {
	logger := ctxlog.FromContext(ctx)
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{KeySeed: DefaultSeed}, "."), nil); err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}

	files, err := expandPaths(ctx, paths)
	if err != nil {
		return nil, err
	}
	for _, p := range files {
		if err := loadFile(k, p); err != nil {
			return nil, err
		}
		logger.Debug("Configuration file merged.", "path", p)
	}

	if len(overrides) > 0 {
		flat := make(map[string]any, len(overrides))
		for key, raw := range overrides {
			val, err := parseScalar(raw)
			if err != nil {
				return nil, &ConfigurationError{Key: key, Reason: fmt.Sprintf("unparseable value %q", raw)}
			}
			flat[key] = val
		}
		if err := k.Load(confmap.Provider(flat, "."), nil); err != nil {
			return nil, &ConfigurationError{Reason: err.Error()}
		}
		logger.Debug("CLI overrides merged.", "count", len(overrides))
	}

	if err := validateTree(k); err != nil {
		return nil, err
	}

	cfg := buildConfig(k)
	if len(cfg.Variants) == 0 {
		return nil, &NoModelConfiguredError{}
	}

	logger.Debug("Configuration resolved.", "seed", cfg.Seed, "variants", len(cfg.Variants))
	return cfg, nil
}

// expandPaths turns the user-supplied --cfg paths into a flat file list.
// Directories are searched recursively; merge order within a directory is
// lexical.
func expandPaths(ctx context.Context, paths []string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			logger.Debug("Configuration path missing, defaults apply.", "path", p)
			continue
		}
		if err != nil {
			return nil, &ConfigurationError{Key: p, Reason: err.Error()}
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := fsutil.FindFilesByExtension(p, ".yaml", ".yml", ".hcl")
		if err != nil {
			return nil, &ConfigurationError{Key: p, Reason: err.Error()}
		}
		files = append(files, found...)
	}
	return files, nil
}

// loadFile merges a single configuration file into the koanf tree, choosing
// the parser by extension.
func loadFile(k *koanf.Koanf, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		tree, err := hclcfg.LoadFile(path)
		if err != nil {
			return &ConfigurationError{Key: path, Reason: err.Error()}
		}
		if err := k.Load(confmap.Provider(tree, ""), nil); err != nil {
			return &ConfigurationError{Key: path, Reason: err.Error()}
		}
		return nil
	}
	if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
		return &ConfigurationError{Key: path, Reason: err.Error()}
	}
	return nil
}

// parseScalar interprets an override value string as a YAML scalar so that
// "0.5", "10", "true" and "text" arrive with their natural types.
func parseScalar(raw string) (any, error) {
	var val any
	if err := goyaml.Unmarshal([]byte(raw), &val); err != nil {
		return nil, err
	}
	return val, nil
}

// validateTree rejects unknown top-level namespaces and malformed subclass
// namespaces before anything is constructed from the tree.
func validateTree(k *koanf.Koanf) error {
	known := map[string]bool{KeySeed: true, NamespaceModel: true}
	for _, ns := range VariantNamespaces {
		known[ns] = true
	}
	for _, ns := range callbackNamespaces {
		known[ns] = true
	}

	raw := k.Raw()
	for key := range raw {
		if !known[key] {
			return &ConfigurationError{Key: key, Reason: "unrecognized configuration namespace"}
		}
	}

	switch raw[KeySeed].(type) {
	case int, int64, uint64:
	default:
		return &ConfigurationError{Key: KeySeed, Reason: "must be an integer"}
	}

	if v, ok := raw[NamespaceModel]; ok && v != nil {
		if _, isMap := v.(map[string]any); !isMap {
			return &ConfigurationError{Key: NamespaceModel, Reason: "must be a mapping"}
		}
	}

	subclass := append(append([]string{}, VariantNamespaces...), callbackNamespaces...)
	for _, ns := range subclass {
		v, ok := raw[ns]
		if !ok || v == nil {
			continue
		}
		m, isMap := v.(map[string]any)
		if !isMap {
			return &ConfigurationError{Key: ns, Reason: "must be a mapping"}
		}
		for key := range m {
			if key != initArgsKey && key != classPathKey {
				return &ConfigurationError{Key: ns + "." + key, Reason: "unrecognized configuration key"}
			}
		}
	}
	return nil
}

// buildConfig extracts the validated tree into the immutable TrainingConfig.
// A namespace whose value is explicit null counts as absent, matching the
// behavior of configuration files that list every namespace and null out the
// unused ones.
func buildConfig(k *koanf.Koanf) *TrainingConfig {
	cfg := &TrainingConfig{
		Seed:            k.Int64(KeySeed),
		ModelBase:       k.Cut(NamespaceModel).Raw(),
		Variants:        make(map[string]map[string]any),
		EarlyStopping:   k.Cut(NamespaceEarlyStopping + "." + initArgsKey).Raw(),
		ModelCheckpoint: k.Cut(NamespaceModelCheckpoint + "." + initArgsKey).Raw(),
		Trainer:         k.Cut(NamespaceTrainer + "." + initArgsKey).Raw(),
	}
	for _, ns := range VariantNamespaces {
		if k.Get(ns) == nil {
			continue
		}
		cfg.Variants[ns] = k.Cut(ns + "." + initArgsKey).Raw()
	}
	return cfg
}
