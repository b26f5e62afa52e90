package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/changelog/internal/core"
	"github.com/JonMunkholm/changelog/internal/export"
	"github.com/JonMunkholm/changelog/internal/filters"
)

type exportOptions struct {
	table   string
	all     bool
	format  string
	filters []string
	start   string
	end     string
	out     string
}

var exportOpts exportOptions

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a table to CSV or XLSX",
	Long: `Fetch a table and write it in export form: latest_commit and
latest_deploy become their timestamps, everything else is kept as is.

By default only the first page is written, matching the export link in the
UI. --all fetches every page.`,
	Example: `  changelog export --table deploys --filter cluster=prod --start 2024-01-01
  changelog export --table services --all --format xlsx --out services.xlsx`,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVarP(&exportOpts.table, "table", "t", "", "Table key (required)")
	f.BoolVar(&exportOpts.all, "all", false, "Export every page instead of the first")
	f.StringVar(&exportOpts.format, "format", "csv", "Output format: csv or xlsx")
	f.StringArrayVar(&exportOpts.filters, "filter", nil, "Filter as field=value (repeatable)")
	f.StringVar(&exportOpts.start, "start", "", "Start date (YYYY-MM-DD or RFC 3339)")
	f.StringVar(&exportOpts.end, "end", "", "End date (YYYY-MM-DD or RFC 3339)")
	f.StringVarP(&exportOpts.out, "out", "o", "", `Output file, "-" for stdout (default changelog-M-D-YYYY.<ext>)`)
	_ = exportCmd.MarkFlagRequired("table")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportOpts.format)
	if err != nil {
		return err
	}
	fs, err := exportOpts.filterState()
	if err != nil {
		return err
	}

	a, err := newApp(logStderr)
	if err != nil {
		return err
	}
	defer a.Close()

	t, def, ok := a.tables.Table(exportOpts.table)
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrTableNotFound, exportOpts.table)
	}
	if err := a.filters.Replace(fs); err != nil {
		return err
	}

	ctx := cmd.Context()
	var matrix [][]any
	if exportOpts.all {
		columns, rows, err := core.FetchAll(ctx, a.client, def.DataPath, fs, t.PageSize(), a.cfg.Fetch.MaxConcurrent)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", def.Key, err)
		}
		matrix = core.ConvertToCSV(rows, columns, core.DefaultFormatters())
	} else {
		if err := t.Load(ctx); err != nil {
			return fmt.Errorf("fetch %s: %w", def.Key, err)
		}
		matrix = t.CSV()
	}

	path := exportOpts.out
	if path == "" {
		path = core.ExportFilename(time.Now(), format.Extension())
	}
	if err := writeExport(path, cmd.OutOrStdout(), format, matrix); err != nil {
		return err
	}

	slog.Info("table exported",
		"table", def.Key,
		"format", string(format),
		"rows", len(matrix)-1,
		"out", path,
	)
	return nil
}

// filterState builds the selection from the filter and date flags.
func (o exportOptions) filterState() (core.FilterState, error) {
	var fs core.FilterState
	for _, raw := range o.filters {
		f, err := filters.ParseFilter(raw)
		if err != nil {
			return core.FilterState{}, err
		}
		fs.Filters = append(fs.Filters, f)
	}

	var err error
	if fs.StartDate, err = filters.ParseDate(o.start, time.Local); err != nil {
		return core.FilterState{}, err
	}
	if fs.EndDate, err = filters.ParseDate(o.end, time.Local); err != nil {
		return core.FilterState{}, err
	}
	if fs.StartDate != nil && fs.EndDate != nil && fs.StartDate.After(*fs.EndDate) {
		return core.FilterState{}, filters.ErrDateRange
	}
	return fs, nil
}

func writeExport(path string, stdout io.Writer, format export.Format, matrix [][]any) error {
	if path == "-" {
		w := bufio.NewWriter(stdout)
		if err := export.Write(w, format, matrix); err != nil {
			return err
		}
		return w.Flush()
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if err := export.Write(f, format, matrix); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
