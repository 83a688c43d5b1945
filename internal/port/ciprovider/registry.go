package ciprovider

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// ErrUnknown is returned by New for a provider name no adapter registered.
var ErrUnknown = errors.New("unknown ci provider")

// Constructor builds a provider from its flat key/value settings.
type Constructor func(settings map[string]string) (Provider, error)

var (
	mu        sync.RWMutex
	providers = make(map[string]Constructor)
)

// Register adds a CI provider under name. Adapters call it from init;
// registering the same name twice panics.
func Register(name string, build Constructor) {
	mu.Lock()
	defer mu.Unlock()

	if _, taken := providers[name]; taken {
		panic("ciprovider: " + name + " registered twice")
	}
	providers[name] = build
}

// New builds the provider registered under name.
func New(name string, settings map[string]string) (Provider, error) {
	mu.RLock()
	build, ok := providers[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknown, name)
	}
	return build(settings)
}

// Available lists registered provider names in lexical order.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()
	return slices.Sorted(maps.Keys(providers))
}
