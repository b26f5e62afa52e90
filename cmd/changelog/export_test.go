package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/changelog/internal/core"
	"github.com/JonMunkholm/changelog/internal/export"
	"github.com/JonMunkholm/changelog/internal/filters"
)

func TestExportOptions_FilterState(t *testing.T) {
	o := exportOptions{
		filters: []string{"cluster=prod", "service=api"},
		start:   "2024-01-01",
		end:     "2024-02-01",
	}

	fs, err := o.filterState()

	require.NoError(t, err)
	assert.Equal(t, []core.Filter{{Field: "cluster", Value: "prod"}, {Field: "service", Value: "api"}}, fs.Filters)
	require.NotNil(t, fs.StartDate)
	require.NotNil(t, fs.EndDate)
}

func TestExportOptions_FilterStateErrors(t *testing.T) {
	tests := []struct {
		name string
		opts exportOptions
		want error
	}{
		{"bad filter", exportOptions{filters: []string{"cluster"}}, filters.ErrInvalidFilter},
		{"bad date", exportOptions{start: "soon"}, filters.ErrInvalidDate},
		{"reversed", exportOptions{start: "2024-03-01", end: "2024-01-01"}, filters.ErrDateRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.opts.filterState()
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestWriteExport(t *testing.T) {
	matrix := [][]any{{"name", "owner"}, {"api", "core"}}

	t.Run("stdout", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeExport("-", &buf, export.FormatCSV, matrix))
		assert.Equal(t, "name,owner\napi,core\n", buf.String())
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")
		require.NoError(t, writeExport(path, nil, export.FormatCSV, matrix))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "name,owner\napi,core\n", string(data))
	})

	t.Run("bad directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "out.csv")
		err := writeExport(path, nil, export.FormatCSV, matrix)
		assert.ErrorContains(t, err, "export failed")
	})
}

func TestRootCommandWiring(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "browse", "export"} {
		assert.True(t, names[want], "missing %s command", want)
	}
	assert.NotNil(t, exportCmd.Flags().Lookup("all"))
}
