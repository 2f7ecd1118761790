// Package config resolves the launcher's hierarchical configuration. It
// merges built-in defaults, optional YAML or HCL configuration files, and
// dotted CLI overrides into a single immutable TrainingConfig, rejecting
// unknown namespaces before any construction work begins.
package config
