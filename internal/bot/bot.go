// Package bot is the Discord-facing surface: it registers the slash
// commands, dispatches interactions, and maps rendered embeds onto Discord
// messages. All retrieval and rendering logic lives in the answer, context7,
// and render packages — this package only speaks Discord.
package bot

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/54b3r/docsbot-go/internal/answer"
	"github.com/54b3r/docsbot-go/internal/config"
	"github.com/54b3r/docsbot-go/internal/history"
	"github.com/54b3r/docsbot-go/internal/metrics"
	"github.com/54b3r/docsbot-go/internal/render"
)

// allSourcesValue is the sentinel source choice meaning "search every
// configured library".
const allSourcesValue = "__all__"

// Embed accent colors (Discord blurple / green).
const (
	colorHelp   = 0x5865F2
	colorAnswer = 0x57F287
)

// Bot owns the Discord session and wires interactions to the answer service.
type Bot struct {
	// cfg is the resolved bot configuration.
	cfg config.Config

	// session is the Discord gateway connection.
	session *discordgo.Session

	// answers fans questions out across documentation libraries.
	answers *answer.Service

	// limits bounds the rendered embeds.
	limits render.Limits

	// hist records asked questions. Nil disables recording.
	hist history.Store

	// metrics records question counters and render sizes. Nil-safe.
	metrics *metrics.Metrics

	// log is the structured logger for bot events.
	log *slog.Logger
}

// New constructs a Bot and its Discord session. The session is not opened
// until Start is called.
func New(cfg config.Config, answers *answer.Service, limits render.Limits, hist history.Store, m *metrics.Metrics, log *slog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("bot: create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	b := &Bot{
		cfg:     cfg,
		session: session,
		answers: answers,
		limits:  limits,
		hist:    hist,
		metrics: m,
		log:     log,
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)

	return b, nil
}

// Start opens the gateway connection. Slash commands are synced from the
// ready handler once the session identifies itself.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("bot: open session: %w", err)
	}
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() error {
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("bot: close session: %w", err)
	}
	return nil
}

// onReady logs the identity and syncs the slash command set.
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("bot: logged in",
		slog.String("user", r.User.String()),
		slog.String("user_id", r.User.ID),
	)

	cmds := commandDefinitions(b.cfg.Sources, b.cfg.DefaultSource)
	if _, err := s.ApplicationCommandBulkOverwrite(r.User.ID, "", cmds); err != nil {
		b.log.Error("bot: failed to sync slash commands", slog.String("error", err.Error()))
		return
	}
	b.log.Info("bot: synced slash commands", slog.Int("count", len(cmds)))
}

// onInteraction dispatches slash commands to their handlers.
func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "ask":
		b.handleAsk(s, i)
	case "help":
		b.handleHelp(s, i)
	}
}

// commandDefinitions builds the slash command set from the configured
// documentation sources. The source dropdown offers each source by name plus
// an "All sources" entry.
func commandDefinitions(sources []config.Source, defaultSource string) []*discordgo.ApplicationCommand {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(sources)+1)
	for _, src := range sources {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  src.Name,
			Value: src.Name,
		})
	}
	choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
		Name:  "All sources",
		Value: allSourcesValue,
	})

	return []*discordgo.ApplicationCommand{
		{
			Name:        "ask",
			Description: "Ask a question about the documentation",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "question",
					Description: "Your question",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "source",
					Description: "Which doc source to search (default: " + defaultSource + ")",
					Required:    false,
					Choices:     choices,
				},
			},
		},
		{
			Name:        "help",
			Description: "Show what this bot can do",
		},
	}
}
