package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]SourceDefinition)
	registryMu sync.RWMutex
)

// Register adds a source definition to the registry.
// Panics if a source with the same key is already registered.
func Register(def SourceDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Key]; exists {
		panic(fmt.Sprintf("source already registered: %s", def.Info.Key))
	}

	// The key column is always part of an explicit selection.
	if len(def.Info.Columns) > 0 && !contains(def.Info.Columns, def.Info.KeyColumn) {
		def.Info.Columns = append([]string{def.Info.KeyColumn}, def.Info.Columns...)
	}

	registry[def.Info.Key] = def
}

// Get returns a source definition by key.
// Returns false if not found.
func Get(key string) (SourceDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// All returns all registered source definitions in join order.
func All() []SourceDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]SourceDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}
	SortSources(result)
	return result
}

// SortSources orders defs by Order, then by key for consistent ordering.
func SortSources(defs []SourceDefinition) {
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].Info.Order != defs[j].Info.Order {
			return defs[i].Info.Order < defs[j].Info.Order
		}
		return defs[i].Info.Key < defs[j].Info.Key
	})
}

// SourceCount returns the number of registered sources.
func SourceCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered sources.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]SourceDefinition)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
