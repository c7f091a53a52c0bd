// Package render turns raw documentation snippets into a size-bounded embed.
// The pipeline is stateless and deterministic: drop empty snippets, dedupe
// near-identical ones by content fingerprint, truncate each body without
// breaking markdown code fences, and pack fields until either the per-embed
// field count or the aggregate character budget is reached.
package render

import (
	"strings"
	"unicode/utf8"

	"github.com/54b3r/docsbot-go/internal/context7"
)

const (
	// Ellipsis is appended to every truncated body.
	Ellipsis = "…"

	// fence is the markdown code fence marker.
	fence = "```"

	// fingerprintLen is how many characters of content feed the dedupe
	// fingerprint. Overlapping excerpts from different documents share a
	// prefix far more often than a full text, so a prefix is enough.
	fingerprintLen = 200

	// placeholderTitle is used for snippets without a title.
	placeholderTitle = "Untitled"

	// maxHeadingLen is the hard per-field heading limit.
	maxHeadingLen = 256
)

// Limits bounds the rendered embed. Zero values fall back to the defaults.
type Limits struct {
	// MaxFields is the maximum number of snippet fields per embed.
	MaxFields int

	// MaxFieldLen is the per-field body character limit.
	MaxFieldLen int

	// MaxTotalLen is the aggregate character budget across field bodies.
	MaxTotalLen int
}

// DefaultLimits returns the stock Discord-shaped limits: 6 fields of at most
// 1024 characters each, 5500 characters across all field bodies.
func DefaultLimits() Limits {
	return Limits{MaxFields: 6, MaxFieldLen: 1024, MaxTotalLen: 5500}
}

// withDefaults fills zero fields from DefaultLimits.
func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxFields <= 0 {
		l.MaxFields = d.MaxFields
	}
	if l.MaxFieldLen <= 0 {
		l.MaxFieldLen = d.MaxFieldLen
	}
	if l.MaxTotalLen <= 0 {
		l.MaxTotalLen = d.MaxTotalLen
	}
	return l
}

// Field is one accepted, post-processed embed field.
type Field struct {
	// Name is the field heading, at most 256 characters.
	Name string

	// Value is the field body: truncated content plus an optional
	// trailing source link.
	Value string
}

// Embed is the bounded display container handed to the chat layer. It is
// fully assembled by Render and never mutated afterwards.
type Embed struct {
	// Title is the embed heading, usually the bot's display name.
	Title string

	// Description echoes the user's question.
	Description string

	// Fields are the accepted snippet fields, in post-dedupe input order.
	Fields []Field

	// Footer names the documentation source the user selected.
	Footer string
}

// Dedupe removes near-duplicate snippets. The fingerprint is the lowercased,
// whitespace-trimmed first 200 characters of content; the first occurrence
// of each fingerprint wins and input order is preserved.
func Dedupe(snips []context7.Snippet) []context7.Snippet {
	seen := make(map[string]bool, len(snips))
	unique := make([]context7.Snippet, 0, len(snips))

	for _, s := range snips {
		fp := fingerprint(s.Content)
		if seen[fp] {
			continue
		}
		seen[fp] = true
		unique = append(unique, s)
	}
	return unique
}

// fingerprint normalizes a content prefix for duplicate detection.
func fingerprint(content string) string {
	return strings.ToLower(strings.TrimSpace(firstN(content, fingerprintLen)))
}

// Truncate cuts text to fit limit without leaving a code fence visibly
// unclosed. Text that already fits is returned unchanged. Otherwise the text
// is cut to limit-1 characters; if that leaves an odd number of fence
// markers, everything from the last fence onward is dropped. An ellipsis is
// appended in every truncation case.
func Truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	if limit <= 0 {
		return Ellipsis
	}

	cut := firstN(text, limit-1)

	if strings.Count(cut, fence)%2 != 0 {
		// Inside an unclosed code block — cut before it opened.
		if i := strings.LastIndex(cut, fence); i >= 0 {
			cut = strings.TrimRight(cut[:i], " \t\r\n")
		}
	}

	return cut + Ellipsis
}

// Render assembles the bounded embed for a query. title is the embed
// heading shown above the question echo. Render never fails: empty or
// all-empty input yields an embed with zero fields.
func Render(title, query, sourceLabel string, snips []context7.Snippet, limits Limits) Embed {
	limits = limits.withDefaults()

	embed := Embed{
		Title:       firstN(title, maxHeadingLen),
		Description: "**Q:** " + query,
		Footer:      "Source: " + sourceLabel + " · Powered by Context7",
	}

	kept := make([]context7.Snippet, 0, len(snips))
	for _, s := range snips {
		if s.Content == "" {
			continue
		}
		kept = append(kept, s)
	}
	kept = Dedupe(kept)

	total := 0
	for _, s := range kept {
		if len(embed.Fields) >= limits.MaxFields {
			break
		}

		sourceLink := ""
		if s.Source != "" {
			sourceLink = "\n[Source](" + s.Source + ")"
		}

		available := limits.MaxFieldLen - utf8.RuneCountInString(sourceLink) - 1
		body := Truncate(s.Content, available) + sourceLink

		if strings.TrimSpace(body) == "" {
			continue
		}

		size := utf8.RuneCountInString(body)
		if total+size > limits.MaxTotalLen {
			break
		}
		total += size

		title := s.Title
		if title == "" {
			title = placeholderTitle
		}

		embed.Fields = append(embed.Fields, Field{
			Name:  firstN(title, maxHeadingLen),
			Value: body,
		})
	}

	return embed
}

// firstN returns the first n runes of s.
func firstN(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
