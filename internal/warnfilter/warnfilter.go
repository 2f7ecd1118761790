// Package warnfilter suppresses known-benign warning categories. Filters are
// keyed by a stable category constant rather than the warning's message text,
// so suppression survives wording changes in the emitting component.
package warnfilter

import (
	"context"
	"sync"

	"github.com/vk/metrictraingo/internal/ctxlog"
)

// Category identifies a class of warnings that can be filtered as a unit.
type Category string

// WorkerHeuristics covers advisory warnings about data-loading worker counts
// relative to available CPUs.
const WorkerHeuristics Category = "worker_heuristics"

// Filter holds the set of suppressed categories for one run.
type Filter struct {
	mu         sync.Mutex
	suppressed map[Category]struct{}
}

// New returns a Filter with nothing suppressed.
func New() *Filter {
	return &Filter{suppressed: make(map[Category]struct{})}
}

// Suppress marks a category as filtered. Suppression is never reset within a run.
func (f *Filter) Suppress(c Category) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suppressed[c] = struct{}{}
}

// Suppressed reports whether a category is filtered.
func (f *Filter) Suppressed(c Category) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.suppressed[c]
	return ok
}

type key struct{}

var filterKey = key{}

// WithFilter returns a new context carrying the filter.
func WithFilter(ctx context.Context, f *Filter) context.Context {
	return context.WithValue(ctx, filterKey, f)
}

// FromContext extracts the filter from a context. If none is present, a
// permissive filter is returned so that warnings are emitted by default.
func FromContext(ctx context.Context) *Filter {
	if f, ok := ctx.Value(filterKey).(*Filter); ok {
		return f
	}
	return New()
}

// Warn logs a warning through the context logger unless its category is
// suppressed by the context's filter.
func Warn(ctx context.Context, c Category, msg string, args ...any) {
	if FromContext(ctx).Suppressed(c) {
		return
	}
	args = append(args, "category", string(c))
	ctxlog.FromContext(ctx).Warn(msg, args...)
}
