package indexer

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/onticket/chainindexer/internal/logger"
)

// Factory is a function that creates a new projector instance.
type Factory func(log *logger.Logger) (Projector, error)

var (
	registry = make(map[string]Factory)
	mu       sync.RWMutex
)

// Register registers a projector factory with the given name.
// This is typically called in init() functions of projector packages.
// The name is case-insensitive and will be stored in lowercase.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()

	name = strings.ToLower(name)
	if _, exists := registry[name]; exists {
		logger.GetDefaultLogger().Infof("projector with name %s already in projector registry. "+
			"It will be overwritten.", name)
	}

	registry[name] = factory
}

// GetFactory returns the factory for the given projector name, or nil.
func GetFactory(name string) Factory {
	mu.RLock()
	defer mu.RUnlock()
	return registry[strings.ToLower(name)]
}

// ListRegistered returns the sorted names of all registered projectors.
func ListRegistered() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Create creates a new projector instance using the registered factory.
func Create(name string, log *logger.Logger) (Projector, error) {
	factory := GetFactory(name)
	if factory == nil {
		return nil, fmt.Errorf("unknown projector %q (registered: %s)", name, strings.Join(ListRegistered(), ", "))
	}

	p, err := factory(log)
	if err != nil {
		return nil, fmt.Errorf("failed to create projector %q: %w", name, err)
	}

	return p, nil
}
