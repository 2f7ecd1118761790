// Package metric defines the closed set of trainable metric model variants.
// Each variant owns a typed configuration schema; constructors decode their
// init_args strictly, so unknown or mistyped fields are rejected before a
// model exists.
package metric
