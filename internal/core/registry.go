package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[Collection]CollectionDefinition)
	registryMu sync.RWMutex
)

// Register adds a collection definition to the registry.
// Panics if the name is taken, if the definition has no user_id uuid
// column, or if a list column is not one of its fields.
func Register(def CollectionDefinition) {
	if err := checkDefinition(def); err != nil {
		panic(err)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Name]; exists {
		panic(fmt.Sprintf("collection already registered: %s", def.Info.Name))
	}

	// Populate Columns from FieldSpecs if not set
	if len(def.Info.Columns) == 0 && len(def.FieldSpecs) > 0 {
		def.Info.Columns = make([]string, len(def.FieldSpecs))
		for i, spec := range def.FieldSpecs {
			def.Info.Columns[i] = spec.Name
		}
	}

	registry[def.Info.Name] = def
}

func checkDefinition(def CollectionDefinition) error {
	if def.Info.Name == "" {
		return fmt.Errorf("collection definition without a name")
	}
	if owner, ok := def.Spec(ColumnOwner); !ok || owner.Type != FieldUUID {
		return fmt.Errorf("collection %s: %s must be a uuid field", def.Info.Name, ColumnOwner)
	}
	for _, col := range def.ListColumns {
		if _, ok := def.Spec(col); !ok {
			return fmt.Errorf("collection %s: list column %s is not a field", def.Info.Name, col)
		}
	}
	return nil
}

// Get returns a collection definition by name.
func Get(name Collection) (CollectionDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[name]
	return def, ok
}

// Lookup is Get for user input, returning ErrUnknownCollection on a miss.
func Lookup(name string) (CollectionDefinition, error) {
	def, ok := Get(Collection(name))
	if !ok {
		return CollectionDefinition{}, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return def, nil
}

// All returns all registered collection definitions sorted by name.
func All() []CollectionDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]CollectionDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Info.Name < result[j].Info.Name
	})
	return result
}

// Count returns the number of registered collections.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}
