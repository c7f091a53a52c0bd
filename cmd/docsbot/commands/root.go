// Package commands defines all Cobra CLI commands for the docsbot binary.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/54b3r/docsbot-go/internal/audit"
	"github.com/54b3r/docsbot-go/internal/config"
	"github.com/54b3r/docsbot-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfig is the resolved configuration, populated by the persistent
// pre-run for all subcommands.
var loadedConfig config.Config

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// rootLogger is the logger constructed at startup, shared by subcommands.
var rootLogger *slog.Logger

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docsbot",
		Short: "docsbot — a Discord bot that answers questions from documentation",
		Long: `docsbot answers questions in Discord using up-to-date documentation
fetched from the Context7 API.

Users ask with the /ask slash command and pick a documentation source from a
dropdown; the bot fetches matching snippets, deduplicates and truncates them,
and replies with a size-bounded embed.

Configuration is loaded from a YAML file (~/.docsbot/config.yaml) with
environment variable overrides (DISCORD_TOKEN, CONTEXT7_API_KEY, ...).
See 'docsbot --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load layered config (env vars always override YAML values).
			cfg, path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfig = cfg
			loadedConfigPath = path

			// The logging bridge may have set LOG_* env vars from YAML;
			// rebuild so file/level settings take effect.
			rootLogger = logging.New()

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(rootLogger, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.docsbot/config.yaml)")

	root.AddCommand(
		NewRunCmd(),
		NewSearchCmd(),
		NewHistoryCmd(),
		NewVersionCmd(),
	)

	return root
}
