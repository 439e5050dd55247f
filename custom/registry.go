package custom

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownClass is returned by Resolve for a class that was never registered
var ErrUnknownClass = errors.New("unknown custom change class")

// Factory builds a Task from the params of a customChange
type Factory func(params map[string]string) (Task, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes a custom change class available by name.
// It panics if the factory is nil or the class is registered twice.
func Register(class string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if factory == nil {
		panic("custom: Register factory is nil")
	}
	if _, dup := factories[class]; dup {
		panic("custom: Register called twice for class " + class)
	}
	factories[class] = factory
}

// Resolve builds the task of a registered class
func Resolve(class string, params map[string]string) (Task, error) {
	factoriesMu.RLock()
	factory, ok := factories[class]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}
	task, err := factory(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create custom change %s: %w", class, err)
	}
	return task, nil
}

// Classes returns the registered class names, sorted
func Classes() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
