// Package registry holds the closed set of metric model variants and selects
// exactly one of them from a resolved configuration. Variants live in a fixed
// priority order; selection is a single scan, not a chain of null checks.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/knadh/koanf/maps"

	"github.com/vk/metrictraingo/internal/config"
	"github.com/vk/metrictraingo/internal/ctxlog"
	"github.com/vk/metrictraingo/internal/metric"
	"github.com/vk/metrictraingo/internal/rng"
)

// Constructor builds a metric model from its merged init_args.
type Constructor func(args map[string]any, src *rng.Source) (metric.Model, error)

// Variant is a static registry entry for one selectable model variant.
type Variant struct {
	Namespace string
	Build     Constructor
}

// Registry holds the variant descriptors. Defined once at startup, never
// mutated.
type Registry struct {
	variants []Variant
}

// New returns a Registry with all five variants in selection priority order.
func New() *Registry {
	return &Registry{variants: []Variant{
		{Namespace: config.NamespaceRegression, Build: metric.NewRegression},
		{Namespace: config.NamespaceReferenceless, Build: metric.NewReferencelessRegression},
		{Namespace: config.NamespaceRanking, Build: metric.NewRanking},
		{Namespace: config.NamespaceUniTE, Build: metric.NewUniTE},
		{Namespace: config.NamespaceCSPEC, Build: metric.NewCSPEC},
	}}
}

// Variants returns the descriptors in priority order.
func (r *Registry) Variants() []Variant {
	return r.variants
}

// Select scans the variants in priority order and returns the first whose
// namespace is present in the configuration, along with its init_args merged
// over the shared model base. Additional configured variants are ignored by
// first-match policy; the skipped namespaces are logged. If no variant is
// present, Select fails with NoModelConfiguredError.
func (r *Registry) Select(ctx context.Context, cfg *config.TrainingConfig) (*Variant, map[string]any, error) {
	logger := ctxlog.FromContext(ctx)

	var selected *Variant
	var ignored []string
	for i := range r.variants {
		v := &r.variants[i]
		if _, present := cfg.VariantArgs(v.Namespace); !present {
			continue
		}
		if selected == nil {
			selected = v
			continue
		}
		ignored = append(ignored, v.Namespace)
	}
	if selected == nil {
		return nil, nil, &config.NoModelConfiguredError{}
	}
	if len(ignored) > 0 {
		logger.Warn("Multiple model variants configured; using the highest-priority one.",
			"selected", selected.Namespace, "ignored", ignored)
	}

	args, _ := cfg.VariantArgs(selected.Namespace)
	merged := map[string]any{}
	maps.Merge(cfg.ModelBase, merged)
	maps.Merge(args, merged)
	return selected, merged, nil
}

// BuildSelected selects a variant, prints its resolved sub-configuration to
// w for audit, and constructs the model. The audit print deliberately
// precedes construction so a rejected configuration is still visible.
func (r *Registry) BuildSelected(ctx context.Context, w io.Writer, cfg *config.TrainingConfig, src *rng.Source) (metric.Model, error) {
	variant, args, err := r.Select(ctx, cfg)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(w, "MODEL ARGUMENTS:")
	encoded, err := json.MarshalIndent(args, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encoding model arguments: %w", err)
	}
	fmt.Fprintln(w, string(encoded))

	model, err := variant.Build(args, src)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Info("Model constructed.", "variant", variant.Namespace, "class", model.Name())
	return model, nil
}
