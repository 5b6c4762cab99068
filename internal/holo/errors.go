package holo

import (
	"errors"
	"fmt"
)

// Sentinel errors used by the result-returning internals. They never cross a
// public API boundary except ConfigurationError: every other failure is
// converted to a logged no-op (or nil return) by the public methods.
var (
	// ErrLayerNotFound reports an unknown layer name.
	ErrLayerNotFound = errors.New("layer not found")
	// ErrUnregistered reports an element with no current layer registration.
	ErrUnregistered = errors.New("element not registered")
	// ErrEffectNotFound reports an effect name that resolved nowhere.
	ErrEffectNotFound = errors.New("effect not found")
	// ErrDisposed reports an operation on a disposed component.
	ErrDisposed = errors.New("component disposed")
	// ErrNoParent reports an element without a container parent where one is
	// required (scanlines overlay insertion).
	ErrNoParent = errors.New("element has no parent container")
)

// ConfigurationError reports a setup-time programmer error: an empty layer
// name or nil layer options passed to RegisterLayer. It is the only error
// the engine raises past a public boundary.
type ConfigurationError struct {
	Op     string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("holo: %s: %s", e.Op, e.Reason)
}

func newConfigurationError(op, reason string) *ConfigurationError {
	return &ConfigurationError{Op: op, Reason: reason}
}
