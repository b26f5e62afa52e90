package main

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/changelog/internal/tui"
)

var browseTable string

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse tables in the terminal",
	Long: `Open the terminal browser. Logs go to LOG_FILE (discarded when unset)
because the browser owns the terminal.`,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVarP(&browseTable, "table", "t", "", "Open this table directly instead of the menu")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	a, err := newApp(logFile)
	if err != nil {
		return err
	}
	defer a.Close()

	return tui.Run(cmd.Context(), tui.Options{
		Tables:   a.tables,
		Filters:  a.filters,
		Notifier: a.notifier,
		Table:    browseTable,
	})
}
