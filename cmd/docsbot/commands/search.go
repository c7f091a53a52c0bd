package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/54b3r/docsbot-go/internal/context7"
)

// NewSearchCmd constructs the `docsbot search` subcommand, which queries the
// Context7 library search endpoint directly. Useful when picking library IDs
// for the sources section of the config file.
func NewSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <library-name> [query]",
		Short: "Search Context7 for documentation libraries",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) > 1 {
				query = args[1]
			}

			client := context7.New(context7.Config{
				BaseURL:   loadedConfig.Context7.BaseURL,
				APIKey:    loadedConfig.Context7.APIKey,
				RateLimit: loadedConfig.Context7.RateLimit,
				RateBurst: loadedConfig.Context7.RateBurst,
			}, rootLogger, nil)
			defer client.Close()

			libs, err := client.SearchLibrary(cmd.Context(), args[0], query)
			if err != nil {
				return err
			}

			if len(libs) == 0 {
				fmt.Println("No libraries found.")
				return nil
			}

			for _, lib := range libs {
				if lib.Description != "" {
					fmt.Printf("%s — %s (%s)\n", lib.ID, lib.Title, lib.Description)
					continue
				}
				fmt.Printf("%s — %s\n", lib.ID, lib.Title)
			}
			return nil
		},
	}
}
