package metricsadapter

import (
	"fmt"
	"sync"
)

var (
	mu       sync.RWMutex
	adapters = make(map[string]Adapter)
)

// Register makes an Adapter available by name. Typically called from
// an init() function in the adapter's own package.
func Register(a Adapter) {
	mu.Lock()
	defer mu.Unlock()

	name := a.Name()
	if _, exists := adapters[name]; exists {
		panic(fmt.Sprintf("metricsadapter: duplicate registration for %q", name))
	}
	adapters[name] = a
}

// Get resolves a registered Adapter by name.
func Get(name string) (Adapter, error) {
	mu.RLock()
	defer mu.RUnlock()

	a, ok := adapters[name]
	if !ok {
		return nil, fmt.Errorf("metricsadapter: unknown adapter %q", name)
	}
	return a, nil
}

// Available returns the names of all registered adapters.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	return names
}
