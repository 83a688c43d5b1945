package notifier

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// ErrUnknown is returned by New for a sink name no adapter registered.
var ErrUnknown = errors.New("unknown notifier")

// Constructor builds a sink from its flat key/value settings. It returns
// ErrNotConfigured when the sink's credential is missing.
type Constructor func(settings map[string]string) (Notifier, error)

var (
	mu    sync.RWMutex
	sinks = make(map[string]Constructor)
)

// Register adds a sink under name. Adapters call it from init; registering
// the same name twice is a programming error and panics.
func Register(name string, build Constructor) {
	mu.Lock()
	defer mu.Unlock()

	if _, taken := sinks[name]; taken {
		panic("notifier: sink " + name + " registered twice")
	}
	sinks[name] = build
}

// New builds the sink registered under name.
func New(name string, settings map[string]string) (Notifier, error) {
	mu.RLock()
	build, ok := sinks[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %s)", ErrUnknown, name, strings.Join(Available(), ", "))
	}
	return build(settings)
}

// Available lists registered sink names in lexical order, which is also the
// order sinks are built and reported in.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()
	return slices.Sorted(maps.Keys(sinks))
}
