package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/54b3r/docsbot-go/internal/config"
	"github.com/54b3r/docsbot-go/internal/render"
)

// testConfig returns a config with two sources, mirroring the default set.
func testConfig() config.Config {
	return config.Config{
		Sources: []config.Source{
			{Name: "Official Docs", ID: "/websites/all-hands_dev"},
			{Name: "GitHub Repo", ID: "/openhands/openhands"},
		},
		DefaultSource: "Official Docs",
	}
}

// askInteraction builds a minimal /ask interaction payload.
func askInteraction(question, source string) *discordgo.InteractionCreate {
	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "question", Type: discordgo.ApplicationCommandOptionString, Value: question},
	}
	if source != "" {
		opts = append(opts, &discordgo.ApplicationCommandInteractionDataOption{
			Name: "source", Type: discordgo.ApplicationCommandOptionString, Value: source,
		})
	}
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{Name: "ask", Options: opts},
	}}
}

// TestCommandDefinitions verifies the slash command set: both commands, the
// per-source choices plus the all-sources entry.
func TestCommandDefinitions(t *testing.T) {
	t.Parallel()

	cmds := commandDefinitions(testConfig().Sources, "Official Docs")

	if len(cmds) != 2 {
		t.Fatalf("commands = %d, want 2", len(cmds))
	}
	if cmds[0].Name != "ask" || cmds[1].Name != "help" {
		t.Errorf("command names = [%s, %s]", cmds[0].Name, cmds[1].Name)
	}

	ask := cmds[0]
	if len(ask.Options) != 2 {
		t.Fatalf("ask options = %d, want 2", len(ask.Options))
	}
	if !ask.Options[0].Required {
		t.Errorf("question option should be required")
	}

	choices := ask.Options[1].Choices
	if len(choices) != 3 {
		t.Fatalf("source choices = %d, want 3", len(choices))
	}
	last := choices[len(choices)-1]
	if last.Name != "All sources" || last.Value != allSourcesValue {
		t.Errorf("last choice = %+v, want the all-sources sentinel", last)
	}
}

// TestResolveSource covers default, explicit, all-sources, and stale choices.
func TestResolveSource(t *testing.T) {
	t.Parallel()

	b := &Bot{cfg: testConfig()}

	cases := []struct {
		name      string
		chosen    string
		wantIDs   []string
		wantLabel string
	}{
		{"default", "", []string{"/websites/all-hands_dev"}, "Official Docs"},
		{"explicit", "GitHub Repo", []string{"/openhands/openhands"}, "GitHub Repo"},
		{"all sources", allSourcesValue, []string{"/websites/all-hands_dev", "/openhands/openhands"}, "All sources"},
		{"stale choice falls back", "Removed Source", []string{"/websites/all-hands_dev"}, "Official Docs"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ids, label := b.resolveSource(tc.chosen)
			if label != tc.wantLabel {
				t.Errorf("label = %q, want %q", label, tc.wantLabel)
			}
			if len(ids) != len(tc.wantIDs) {
				t.Fatalf("ids = %v, want %v", ids, tc.wantIDs)
			}
			for i := range ids {
				if ids[i] != tc.wantIDs[i] {
					t.Errorf("ids[%d] = %q, want %q", i, ids[i], tc.wantIDs[i])
				}
			}
		})
	}
}

// TestAskOptions verifies option extraction from the interaction payload.
func TestAskOptions(t *testing.T) {
	t.Parallel()

	q, src := askOptions(askInteraction("how do I install?", "GitHub Repo"))
	if q != "how do I install?" || src != "GitHub Repo" {
		t.Errorf("askOptions = (%q, %q)", q, src)
	}

	q, src = askOptions(askInteraction("just a question", ""))
	if q != "just a question" || src != "" {
		t.Errorf("askOptions = (%q, %q), want empty source", q, src)
	}
}

// TestToMessageEmbed verifies the container-to-Discord mapping.
func TestToMessageEmbed(t *testing.T) {
	t.Parallel()

	in := render.Embed{
		Title:       "Docs Bot",
		Description: "**Q:** how?",
		Fields: []render.Field{
			{Name: "Install", Value: "run the installer"},
			{Name: "Configure", Value: "edit the file"},
		},
		Footer: "Source: Official Docs · Powered by Context7",
	}

	got := toMessageEmbed(in)

	if got.Title != in.Title {
		t.Errorf("Title = %q, want %q", got.Title, in.Title)
	}
	if got.Description != in.Description {
		t.Errorf("Description = %q", got.Description)
	}
	if got.Footer == nil || got.Footer.Text != in.Footer {
		t.Errorf("Footer = %+v", got.Footer)
	}
	if len(got.Fields) != 2 {
		t.Fatalf("fields = %d, want 2", len(got.Fields))
	}
	for i, f := range got.Fields {
		if f.Inline {
			t.Errorf("field %d should not be inline", i)
		}
		if f.Name != in.Fields[i].Name || f.Value != in.Fields[i].Value {
			t.Errorf("field %d = %+v", i, f)
		}
	}
	if got.Color != colorAnswer {
		t.Errorf("Color = %#x, want %#x", got.Color, colorAnswer)
	}
}

// TestInteractionIdentity covers the guild/DM user extraction helpers.
func TestInteractionIdentity(t *testing.T) {
	t.Parallel()

	guild := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		GuildID: "guild-1",
		Member:  &discordgo.Member{User: &discordgo.User{ID: "user-1"}},
	}}
	if got := interactionUser(guild); got != "user-1" {
		t.Errorf("interactionUser = %q", got)
	}
	if got := interactionGuild(guild); got != "guild-1" {
		t.Errorf("interactionGuild = %q", got)
	}

	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "user-2"},
	}}
	if got := interactionUser(dm); got != "user-2" {
		t.Errorf("interactionUser = %q", got)
	}
	if got := interactionGuild(dm); got != "DM" {
		t.Errorf("interactionGuild = %q", got)
	}

	if got := interactionUser(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}); got != "unknown" {
		t.Errorf("interactionUser = %q, want unknown", got)
	}
}
