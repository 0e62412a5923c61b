package container

import (
	"errors"
	"fmt"
)

// ErrNotRegistered is the sentinel wrapped by NotRegisteredError.
// Match with errors.Is when the capability identifier is not needed.
var ErrNotRegistered = errors.New("capability not registered")

// NotRegisteredError reports a Resolve call for a capability that has no
// factory. It carries the requested identifier so a missing registration
// can be traced back to the composition root.
type NotRegisteredError struct {
	Capability Capability
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("capability %q not registered", e.Capability)
}

func (e *NotRegisteredError) Unwrap() error {
	return ErrNotRegistered
}

// FactoryError reports a factory that failed during construction.
// The underlying error is propagated unchanged; the container never
// retries a failed factory.
type FactoryError struct {
	Capability Capability
	Err        error
}

func (e *FactoryError) Error() string {
	return fmt.Sprintf("capability %q: factory failed: %v", e.Capability, e.Err)
}

func (e *FactoryError) Unwrap() error {
	return e.Err
}

// TypeError reports a typed Resolve whose cached instance does not satisfy
// the requested type.
type TypeError struct {
	Capability Capability
	Got        any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("capability %q: resolved instance has unexpected type %T", e.Capability, e.Got)
}
