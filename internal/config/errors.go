package config

import "fmt"

// ConfigurationError reports a malformed or unrecognized configuration key.
// It is not recoverable; resolution aborts on the first one found.
type ConfigurationError struct {
	Key    string
	Reason string
}

// Error implements the error interface for ConfigurationError.
func (e *ConfigurationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error: key %q: %s", e.Key, e.Reason)
}

// NoModelConfiguredError reports that none of the model variant namespaces
// was present in the resolved configuration.
type NoModelConfiguredError struct{}

// Error implements the error interface for NoModelConfiguredError.
func (e *NoModelConfiguredError) Error() string {
	return "Model configurations missing"
}

// ConstructorArgumentError reports that a model, callback, or driver
// constructor rejected its merged arguments. The underlying constructor
// error is preserved unmodified.
type ConstructorArgumentError struct {
	Component string
	Err       error
}

// Error implements the error interface for ConstructorArgumentError.
func (e *ConstructorArgumentError) Error() string {
	return fmt.Sprintf("%s: invalid constructor arguments: %v", e.Component, e.Err)
}

// Unwrap exposes the constructor's own error for errors.Is/As.
func (e *ConstructorArgumentError) Unwrap() error {
	return e.Err
}
