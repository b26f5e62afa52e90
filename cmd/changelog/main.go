// Command changelog browses service changelog tables in a browser or a
// terminal and exports them as CSV or XLSX.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Browse and export service changelog tables",
	Long: `changelog renders paginated, sortable tables of services, commits and
deploys fetched from a JSON data service.

Commands:
  serve   - Run the web UI (and the /api/v1 data endpoints when DATABASE_URL is set)
  browse  - Browse tables in the terminal
  export  - Write a table to CSV or XLSX`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadEnv()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load (missing file is ignored)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(exportCmd)
}

// loadEnv loads the env file; Overload lets it win over inherited variables.
func loadEnv() {
	if err := godotenv.Overload(envFile); err != nil {
		slog.Debug("no env file loaded, using environment variables", "file", envFile)
		return
	}
	slog.Debug("loaded env file", "file", envFile)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
