package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/54b3r/docsbot-go/internal/history"
)

// NewHistoryCmd constructs the `docsbot history` subcommand, which prints
// the most recently asked questions from the history store.
func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recently asked questions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := loadedConfig.History.DBPath
			if path == "disabled" {
				return fmt.Errorf("history: disabled by configuration")
			}
			if path == "" {
				var err error
				path, err = history.DefaultDBPath()
				if err != nil {
					return err
				}
			}

			store, err := history.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()

			questions, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if len(questions) == 0 {
				fmt.Println("No questions recorded yet.")
				return nil
			}

			for _, q := range questions {
				fmt.Printf("%s  [%s] %s (%d snippet(s), %s): %s\n",
					q.AskedAt.Format("2006-01-02 15:04:05"),
					q.Source, q.User, q.Snippets, q.Elapsed.Round(time.Millisecond), q.Text)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of questions to print")

	return cmd
}
