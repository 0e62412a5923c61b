// Package container provides the service container at the heart of
// cuebird's wiring: a capability-keyed registry that resolves abstract
// service contracts to lazily constructed singleton instances.
//
// A composition root registers one factory per capability and hands the
// container to consumers; consumers resolve through capability
// identifiers only, never by constructing concrete services themselves.
// Containers are fully isolated from one another, which is what makes a
// per-test container with substitute factories safe.
package container

import (
	"sort"
	"sync"
)

// Capability identifies one abstract service contract.
// At most one active registration exists per capability per container.
type Capability string

// Factory produces one service instance for a capability.
// Factories are invoked at most once per registration (lazy singleton);
// they are expected to be cheap, non-blocking constructors.
type Factory func() (any, error)

// entry is one (capability -> factory) registration plus its resolution
// state. Re-registering a capability replaces the whole entry, so a stale
// cached instance can never leak across registrations.
type entry struct {
	factory  Factory
	once     sync.Once
	instance any
	err      error
}

// resolve runs the factory at most once and caches the outcome.
// A factory failure is cached too: the container does not retry, that is
// the factory's own responsibility.
func (e *entry) resolve(c Capability) (any, error) {
	e.once.Do(func() {
		instance, err := e.factory()
		if err != nil {
			e.err = &FactoryError{Capability: c, Err: err}
			return
		}
		e.instance = instance
	})
	return e.instance, e.err
}

// Container is an isolated registry of capability-to-factory bindings
// plus a cache of resolved instances.
type Container struct {
	mu      sync.Mutex
	entries map[Capability]*entry
}

// New creates an empty container.
func New() *Container {
	return &Container{entries: make(map[Capability]*entry)}
}

// Register stores factory under id, overwriting any previous
// registration and discarding any previously cached instance.
// The factory is not invoked here.
func (c *Container) Register(id Capability, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = &entry{factory: factory}
}

// Resolve returns the instance for id, invoking the registered factory
// on first resolution and returning the cached instance thereafter.
// Fails with NotRegisteredError when no factory is registered, and with
// FactoryError when the factory itself fails.
//
// Concurrent first resolutions of the same capability invoke the factory
// exactly once. The factory runs outside the container lock, so a factory
// may resolve other capabilities from the same container; a resolution
// cycle between factories is a composition-root bug and will deadlock.
func (c *Container) Resolve(id Capability) (any, error) {
	c.mu.Lock()
	e, ok := c.entries[id]
	c.mu.Unlock()

	if !ok {
		return nil, &NotRegisteredError{Capability: id}
	}
	return e.resolve(id)
}

// Has reports whether id has an active registration.
func (c *Container) Has(id Capability) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}

// Capabilities returns the registered capability identifiers, sorted.
func (c *Container) Capabilities() []Capability {
	c.mu.Lock()
	defer c.mu.Unlock()

	caps := make([]Capability, 0, len(c.entries))
	for id := range c.entries {
		caps = append(caps, id)
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}

// Clear removes every registration and cached instance.
func (c *Container) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Capability]*entry)
}

// Resolve resolves id from c and asserts the instance to T.
// A registered instance of the wrong type fails with TypeError.
func Resolve[T any](c *Container, id Capability) (T, error) {
	var zero T
	instance, err := c.Resolve(id)
	if err != nil {
		return zero, err
	}
	v, ok := instance.(T)
	if !ok {
		return zero, &TypeError{Capability: id, Got: instance}
	}
	return v, nil
}

// MustResolve is Resolve[T] for wiring paths where a missing registration
// is unrecoverable. It panics on any resolution failure.
func MustResolve[T any](c *Container, id Capability) T {
	v, err := Resolve[T](c, id)
	if err != nil {
		panic(err)
	}
	return v
}
