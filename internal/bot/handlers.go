package bot

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/54b3r/docsbot-go/internal/history"
	"github.com/54b3r/docsbot-go/internal/logging"
	"github.com/54b3r/docsbot-go/internal/render"
)

// askTimeout bounds one full /ask round trip: fan-out fetch plus rendering.
// Discord allows 15 minutes after a deferred response; two minutes is far
// more than the upstream needs even through a full retry schedule.
const askTimeout = 2 * time.Minute

// User-facing messages for the two failure shapes the pipeline
// distinguishes: empty results are a normal outcome, errors get an apology.
const (
	msgNoResults = "No documentation found for that question. Try rephrasing it."
	msgError     = "Something went wrong fetching the documentation. Please try again later."
)

// handleAsk services the /ask command: resolve the selected source to one or
// more library IDs, defer the response, fan the question out, and send the
// rendered embed (or the no-results message) as a followup.
func (b *Bot) handleAsk(s *discordgo.Session, i *discordgo.InteractionCreate) {
	question, chosen := askOptions(i)

	libraryIDs, sourceLabel := b.resolveSource(chosen)

	b.log.Info("bot: /ask invoked",
		slog.String("user", interactionUser(i)),
		slog.String("guild", interactionGuild(i)),
		slog.String("question", question),
		slog.String("source", sourceLabel),
	)

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		b.log.Error("bot: failed to defer /ask response", slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	// Downstream components log through the interaction-scoped logger so
	// every line carries the invoking user and guild.
	ctx = logging.WithLogger(ctx, b.log.With(
		slog.String("user", interactionUser(i)),
		slog.String("guild", interactionGuild(i)),
	))

	t0 := time.Now()
	snippets := b.answers.Ask(ctx, libraryIDs, question)
	elapsed := time.Since(t0)

	b.metrics.CountQuestion(sourceLabel)
	b.recordQuestion(ctx, i, question, sourceLabel, len(snippets), elapsed)

	if len(snippets) == 0 {
		b.log.Info("bot: no snippets found",
			slog.String("question", question),
			slog.Duration("elapsed", elapsed),
		)
		b.followup(s, i, &discordgo.WebhookParams{Content: msgNoResults})
		return
	}

	b.log.Info("bot: fetched snippets",
		slog.Int("count", len(snippets)),
		slog.String("question", question),
		slog.Duration("elapsed", elapsed),
	)

	embed := render.Render(b.cfg.Render.Title, question, sourceLabel, snippets, b.limits)
	b.metrics.ObserveRender(len(embed.Fields))

	if len(embed.Fields) == 0 {
		b.followup(s, i, &discordgo.WebhookParams{Content: msgNoResults})
		return
	}

	if err := b.followup(s, i, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{toMessageEmbed(embed)},
	}); err != nil {
		// Embed delivery failed after a successful fetch — apologise rather
		// than leaving the deferred interaction hanging.
		_ = b.followup(s, i, &discordgo.WebhookParams{Content: msgError})
	}
}

// handleHelp services the /help command with a static usage embed.
func (b *Bot) handleHelp(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.log.Info("bot: /help invoked", slog.String("user", interactionUser(i)))

	var sourceLines []string
	for _, src := range b.cfg.Sources {
		sourceLines = append(sourceLines, "• **"+src.Name+"**")
	}
	sourceLines = append(sourceLines, "• **All sources** — search everything")

	embed := &discordgo.MessageEmbed{
		Title: b.cfg.Render.Title,
		Description: "I answer questions using up-to-date documentation.\n\n" +
			"**Commands:**\n" +
			"`/ask <question> [source]` — Ask anything\n" +
			"`/help` — Show this message\n\n" +
			"**Sources (optional dropdown):**\n" +
			strings.Join(sourceLines, "\n"),
		Color:  colorHelp,
		Footer: &discordgo.MessageEmbedFooter{Text: "Powered by Context7"},
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	}); err != nil {
		b.log.Error("bot: failed to respond to /help", slog.String("error", err.Error()))
	}
}

// askOptions extracts the question and the optional source choice from the
// interaction payload.
func askOptions(i *discordgo.InteractionCreate) (question, source string) {
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "question":
			question = opt.StringValue()
		case "source":
			source = opt.StringValue()
		}
	}
	return question, source
}

// resolveSource maps a source choice to the library IDs to query and the
// label shown in the embed footer. An empty choice selects the configured
// default; the all-sources sentinel selects every library.
func (b *Bot) resolveSource(chosen string) (libraryIDs []string, label string) {
	if chosen == allSourcesValue {
		return b.cfg.LibraryIDs(), "All sources"
	}

	name := chosen
	if name == "" {
		name = b.cfg.DefaultSource
	}
	if src, ok := b.cfg.SourceByName(name); ok {
		return []string{src.ID}, src.Name
	}

	// Unknown choice (stale command cache) — behave like the default.
	if src, ok := b.cfg.SourceByName(b.cfg.DefaultSource); ok {
		return []string{src.ID}, src.Name
	}
	return b.cfg.LibraryIDs(), "All sources"
}

// recordQuestion persists the invocation to the history store, logging and
// swallowing failures — recording must never affect the user path.
func (b *Bot) recordQuestion(ctx context.Context, i *discordgo.InteractionCreate, question, source string, snippets int, elapsed time.Duration) {
	if b.hist == nil {
		return
	}
	err := b.hist.Record(ctx, history.Question{
		User:     interactionUser(i),
		Guild:    interactionGuild(i),
		Source:   source,
		Text:     question,
		Snippets: snippets,
		Elapsed:  elapsed,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("bot: failed to record question", slog.String("error", err.Error()))
	}
}

// followup sends a followup message for a deferred interaction. Failures
// are logged and returned so callers can fall back to a plain message.
func (b *Bot) followup(s *discordgo.Session, i *discordgo.InteractionCreate, params *discordgo.WebhookParams) error {
	if _, err := s.FollowupMessageCreate(i.Interaction, true, params); err != nil {
		b.log.Error("bot: failed to send followup", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// toMessageEmbed maps the render package's bounded container onto a Discord
// embed.
func toMessageEmbed(e render.Embed) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(e.Fields))
	for _, f := range e.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: false,
		})
	}

	return &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       colorAnswer,
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: e.Footer},
	}
}

// interactionUser returns the invoking user's ID, whether the interaction
// came from a guild or a DM.
func interactionUser(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return "unknown"
}

// interactionGuild returns the guild ID, or "DM" outside a guild.
func interactionGuild(i *discordgo.InteractionCreate) string {
	if i.GuildID != "" {
		return i.GuildID
	}
	return "DM"
}
