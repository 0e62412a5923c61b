package container

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const capParser Capability = "content.parser"

type fakeService struct{ name string }

func TestResolve_ReturnsSameInstance(t *testing.T) {
	c := New()
	c.Register(capParser, func() (any, error) {
		return &fakeService{name: "parser"}, nil
	})

	first, err := c.Resolve(capParser)
	require.NoError(t, err)
	second, err := c.Resolve(capParser)
	require.NoError(t, err)

	assert.Same(t, first, second, "repeated resolution must be identity-stable")
}

func TestResolve_InvokesFactoryExactlyOnce(t *testing.T) {
	c := New()
	var calls atomic.Int32
	c.Register(capParser, func() (any, error) {
		calls.Add(1)
		return &fakeService{}, nil
	})

	for range 5 {
		_, err := c.Resolve(capParser)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestResolve_NotRegistered(t *testing.T) {
	c := New()

	instance, err := c.Resolve("settings.store")
	assert.Nil(t, instance, "an unregistered capability must never yield a usable default")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotRegistered)

	var nre *NotRegisteredError
	require.ErrorAs(t, err, &nre)
	assert.Equal(t, Capability("settings.store"), nre.Capability,
		"error must carry the requested identifier")
	assert.Contains(t, err.Error(), "settings.store")
}

func TestRegister_OverwriteInvalidatesCache(t *testing.T) {
	c := New()
	c.Register(capParser, func() (any, error) { return &fakeService{name: "first"}, nil })

	stale, err := c.Resolve(capParser)
	require.NoError(t, err)
	require.Equal(t, "first", stale.(*fakeService).name)

	c.Register(capParser, func() (any, error) { return &fakeService{name: "second"}, nil })

	fresh, err := c.Resolve(capParser)
	require.NoError(t, err)
	assert.Equal(t, "second", fresh.(*fakeService).name)
	assert.NotSame(t, stale, fresh, "re-registration must not return the stale cached instance")
}

func TestRegister_DoesNotInvokeFactory(t *testing.T) {
	c := New()
	called := false
	c.Register(capParser, func() (any, error) {
		called = true
		return nil, nil
	})
	assert.False(t, called, "registration must have no side effect beyond storage")
	assert.True(t, c.Has(capParser))
}

func TestResolve_FactoryErrorPropagated(t *testing.T) {
	boom := errors.New("boom")
	c := New()
	c.Register(capParser, func() (any, error) { return nil, boom })

	_, err := c.Resolve(capParser)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom, "underlying factory error must be preserved")

	var fe *FactoryError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, capParser, fe.Capability)

	// The failure is cached with the entry: no retry until re-registration.
	_, again := c.Resolve(capParser)
	assert.ErrorIs(t, again, boom)

	c.Register(capParser, func() (any, error) { return &fakeService{}, nil })
	_, err = c.Resolve(capParser)
	assert.NoError(t, err)
}

func TestContainers_AreIndependent(t *testing.T) {
	factory := func() (any, error) { return &fakeService{name: "shared-factory"}, nil }

	a := New()
	b := New()
	a.Register(capParser, factory)
	b.Register(capParser, factory)

	fromA, err := a.Resolve(capParser)
	require.NoError(t, err)
	fromB, err := b.Resolve(capParser)
	require.NoError(t, err)

	assert.NotSame(t, fromA, fromB,
		"identical registrations in distinct containers must produce independent instances")

	third := New()
	_, err = third.Resolve(capParser)
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestTypedResolve(t *testing.T) {
	c := New()
	c.Register(capParser, func() (any, error) { return &fakeService{name: "typed"}, nil })

	svc, err := Resolve[*fakeService](c, capParser)
	require.NoError(t, err)
	assert.Equal(t, "typed", svc.name)

	_, err = Resolve[string](c, capParser)
	var te *TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, capParser, te.Capability)

	assert.Equal(t, svc, MustResolve[*fakeService](c, capParser))
	assert.Panics(t, func() { MustResolve[*fakeService](c, "missing") })
}

func TestConcurrentFirstResolve_AtMostOneInvocation(t *testing.T) {
	c := New()
	var calls atomic.Int32
	c.Register(capParser, func() (any, error) {
		calls.Add(1)
		return &fakeService{}, nil
	})

	const goroutines = 32
	results := make([]any, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := range goroutines {
		go func() {
			defer wg.Done()
			instance, err := c.Resolve(capParser)
			assert.NoError(t, err)
			results[i] = instance
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "factory must run at most once under concurrent first resolution")
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestResolve_NestedFactoryResolution(t *testing.T) {
	const capLoader Capability = "content.loader"

	c := New()
	c.Register(capParser, func() (any, error) { return &fakeService{name: "parser"}, nil })
	c.Register(capLoader, func() (any, error) {
		// A loader that depends on the parser resolves it from the same container.
		parser, err := Resolve[*fakeService](c, capParser)
		if err != nil {
			return nil, err
		}
		return &fakeService{name: "loader->" + parser.name}, nil
	})

	loader, err := Resolve[*fakeService](c, capLoader)
	require.NoError(t, err)
	assert.Equal(t, "loader->parser", loader.name)
}

func TestCapabilitiesAndClear(t *testing.T) {
	c := New()
	c.Register("b", func() (any, error) { return 2, nil })
	c.Register("a", func() (any, error) { return 1, nil })

	assert.Equal(t, []Capability{"a", "b"}, c.Capabilities())

	c.Clear()
	assert.Empty(t, c.Capabilities())
	_, err := c.Resolve("a")
	assert.ErrorIs(t, err, ErrNotRegistered)
}

// TestContainerModel drives random register/resolve sequences against a
// naive model and checks the lazy-singleton invariants hold throughout.
func TestContainerModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := New()
		// generation[id] tracks which registration each id is on; seen[id]
		// remembers the instance returned after the current registration.
		generation := map[Capability]int{}
		seen := map[Capability]string{}

		ids := rapid.SampledFrom([]Capability{"loader", "parser", "settings", "style"})

		t.Repeat(map[string]func(*rapid.T){
			"register": func(t *rapid.T) {
				id := ids.Draw(t, "id")
				generation[id]++
				gen := generation[id]
				c.Register(id, func() (any, error) {
					return fmt.Sprintf("%s#%d", id, gen), nil
				})
				delete(seen, id)
			},
			"resolve": func(t *rapid.T) {
				id := ids.Draw(t, "id")
				instance, err := c.Resolve(id)
				if generation[id] == 0 {
					if !errors.Is(err, ErrNotRegistered) {
						t.Fatalf("resolve of unregistered %q: got %v, want ErrNotRegistered", id, err)
					}
					return
				}
				if err != nil {
					t.Fatalf("resolve %q: %v", id, err)
				}
				want := fmt.Sprintf("%s#%d", id, generation[id])
				if instance.(string) != want {
					t.Fatalf("resolve %q: got %v, want %v", id, instance, want)
				}
				if prev, ok := seen[id]; ok && prev != instance.(string) {
					t.Fatalf("resolve %q: instance changed within one registration", id)
				}
				seen[id] = instance.(string)
			},
		})
	})
}
