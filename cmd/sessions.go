package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prepdesk/prepdesk/internal/store"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List practice sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		dsn, err := resolveDSN(cmd)
		if err != nil {
			return fmt.Errorf("resolve database: %w", err)
		}

		ctx := context.Background()
		s, err := store.Open(ctx, dsn)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		recs, err := s.ListSessions(ctx, user)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if len(recs) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		fmt.Printf("%-36s  %-19s  %-13s  %-9s  %-22s  %-6s  %s\n",
			"ID", "Created", "Type", "Status", "Title", "Score", "Questions")
		fmt.Println(strings.Repeat("─", 120))

		for _, rec := range recs {
			score := "-"
			if rec.Score != nil {
				score = fmt.Sprintf("%.0f", *rec.Score)
			}
			title := rec.Title
			if len(title) > 22 {
				title = title[:22]
			}
			fmt.Printf("%-36s  %-19s  %-13s  %-9s  %-22s  %-6s  %d\n",
				rec.ID,
				rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				rec.Type,
				rec.Status,
				title,
				score,
				rec.QuestionCount,
			)
		}
		return nil
	},
}

func init() {
	sessionsCmd.Flags().StringP("user", "u", "local", "User whose sessions to list")
}
