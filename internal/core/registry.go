package core

import (
	"fmt"
	"sort"
	"sync"
)

// TableDefinition describes one mounted table.
type TableDefinition struct {
	Key           string            `yaml:"key"`
	Label         string            `yaml:"label"`
	DataPath      string            `yaml:"data_path"`
	IncludeExport bool              `yaml:"include_export"`
	PageSize      int               `yaml:"page_size"`
	HiddenColumns []string          `yaml:"hidden_columns"`
	ColumnLabels  map[string]string `yaml:"column_labels"`
}

// Hooks returns render hooks that hide and relabel columns per the
// definition. Cells use the default rendering.
func (d TableDefinition) Hooks() RenderHooks {
	if len(d.HiddenColumns) == 0 && len(d.ColumnLabels) == 0 {
		return RenderHooks{}
	}

	hidden := make(map[string]bool, len(d.HiddenColumns))
	for _, c := range d.HiddenColumns {
		hidden[c] = true
	}
	labels := d.ColumnLabels

	return RenderHooks{
		Column: func(column string) (string, bool) {
			if hidden[column] {
				return "", false
			}
			if l, ok := labels[column]; ok {
				return l, true
			}
			return column, true
		},
	}
}

var (
	registry   = make(map[string]TableDefinition)
	registryMu sync.RWMutex
)

// Register adds a table definition to the registry.
// Panics if a table with the same key is already registered.
func Register(def TableDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Key]; exists {
		panic(fmt.Sprintf("table already registered: %s", def.Key))
	}

	if def.Label == "" {
		def.Label = def.Key
	}
	if def.DataPath == "" {
		def.DataPath = "/" + def.Key
	}

	registry[def.Key] = def
}

// Get returns a table definition by key.
// Returns false if not found.
func Get(key string) (TableDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// All returns all registered table definitions sorted by key.
func All() []TableDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]TableDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})

	return result
}

// TableCount returns the number of registered tables.
func TableCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered tables.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]TableDefinition)
}

// DefaultTables are mounted when no table definitions file is configured.
func DefaultTables() []TableDefinition {
	return []TableDefinition{
		{
			Key:           "services",
			Label:         "Services",
			DataPath:      "/services",
			IncludeExport: true,
			ColumnLabels: map[string]string{
				ColumnLatestCommit: "Latest Commit",
				ColumnLatestDeploy: "Latest Deploy",
			},
		},
		{
			Key:           "commits",
			Label:         "Commits",
			DataPath:      "/commits",
			IncludeExport: true,
		},
		{
			Key:           "deploys",
			Label:         "Deploys",
			DataPath:      "/deploys",
			IncludeExport: true,
		},
	}
}
