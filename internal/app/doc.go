// Package app wires the launcher together: it owns the logger, the variant
// registry, and the run lifecycle from configuration resolution through the
// blocking fit call.
package app
