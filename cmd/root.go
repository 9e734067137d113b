package cmd

import (
	"github.com/spf13/cobra"

	"github.com/prepdesk/prepdesk/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "prepdesk",
	Short: "AI interview practice server",
	Long:  "Prepdesk runs mock interview sessions: AI-generated questions, per-question timing, and graded answers with focus-area recommendations.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database DSN: a postgres:// URL or a SQLite file path (overrides PREPDESK_DB)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDSN returns the database DSN using --db flag (highest
// priority), then PREPDESK_DB, then the default SQLite path.
func resolveDSN(cmd *cobra.Command) (string, error) {
	if dsn, _ := cmd.Flags().GetString("db"); dsn != "" {
		return dsn, nil
	}
	return store.DefaultDBPath()
}
