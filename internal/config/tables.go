package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/changelog/internal/core"
)

// tablesFile is the layout of a TABLES_FILE document:
//
//	tables:
//	  - key: services
//	    label: Services
//	    data_path: /services
//	    include_export: true
//	    hidden_columns: [id]
//	    column_labels:
//	      latest_deploy: Latest Deploy
type tablesFile struct {
	Tables []core.TableDefinition `yaml:"tables"`
}

// LoadTables returns the table definitions to mount. An empty path returns
// core.DefaultTables.
func LoadTables(path string) ([]core.TableDefinition, error) {
	if path == "" {
		return core.DefaultTables(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tables file: %w", err)
	}
	return ParseTables(data)
}

// ParseTables decodes and validates a tables document.
func ParseTables(data []byte) ([]core.TableDefinition, error) {
	var doc tablesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse tables file: %w", err)
	}
	if len(doc.Tables) == 0 {
		return nil, errors.New("tables file defines no tables")
	}

	seen := make(map[string]bool, len(doc.Tables))
	for i, def := range doc.Tables {
		key := strings.TrimSpace(def.Key)
		if key == "" {
			return nil, fmt.Errorf("table %d: key is required", i)
		}
		if seen[key] {
			return nil, fmt.Errorf("table %q: duplicate key", key)
		}
		seen[key] = true
		if def.DataPath != "" && !strings.HasPrefix(def.DataPath, "/") {
			return nil, fmt.Errorf("table %q: data_path must start with /", key)
		}
		if def.PageSize < 0 {
			return nil, fmt.Errorf("table %q: page_size must be positive", key)
		}
		doc.Tables[i].Key = key
	}
	return doc.Tables, nil
}
