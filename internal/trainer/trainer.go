// Package trainer builds the training-loop driver from the resolved driver
// options and the assembled callback list. The driver itself is an external
// collaborator behind the Driver interface; this package guarantees only the
// merge semantics of its option mapping.
package trainer

import (
	"context"

	"github.com/knadh/koanf/maps"

	"github.com/vk/metrictraingo/internal/callbacks"
	"github.com/vk/metrictraingo/internal/ctxlog"
	"github.com/vk/metrictraingo/internal/metric"
	"github.com/vk/metrictraingo/internal/rng"
)

// CallbacksKey is the reserved driver-option key the assembled callback list
// is merged under. A user-supplied value under this key is always
// overwritten, so callbacks are never double-registered.
const CallbacksKey = "callbacks"

// Driver is the external training-loop execution engine. Fit blocks until
// training finishes.
type Driver interface {
	Fit(ctx context.Context, model metric.Model) error
}

// Constructor builds a Driver from its merged option mapping.
type Constructor func(ctx context.Context, options map[string]any, src *rng.Source) (Driver, error)

// Build merges the assembled callbacks into the driver options under
// CallbacksKey and delegates construction. It returns the driver and the
// merged option mapping used to construct it, for audit output. Constructor
// failures propagate unmodified.
func Build(ctx context.Context, options map[string]any, cbs []callbacks.Callback, construct Constructor, src *rng.Source) (Driver, map[string]any, error) {
	merged := maps.Copy(options)
	if _, clash := merged[CallbacksKey]; clash {
		ctxlog.FromContext(ctx).Warn("User-configured trainer callbacks overwritten by the assembled list.",
			"key", CallbacksKey)
	}
	merged[CallbacksKey] = cbs

	driver, err := construct(ctx, merged, src)
	if err != nil {
		return nil, nil, err
	}
	return driver, merged, nil
}
