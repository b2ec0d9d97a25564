// Package chat implements the team chat module: channels, threads, reactions,
// mention parsing, a websocket session hub, and the assistant panel adapter.
package chat

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// MentionSpan marks a mention inside a message's plain text: a byte-offset
// window over the text plus the mentioned user. The text itself is immutable;
// spans are an overlay, never markup embedded in the string.
type MentionSpan struct {
	Start  int    `json:"start"`
	Length int    `json:"length"`
	UserID string `json:"user_id"`
}

// Content is a message body: display text plus mention spans. Each span
// covers the visible "@Name" run inside Text.
type Content struct {
	Text     string        `json:"text"`
	Mentions []MentionSpan `json:"mentions,omitempty"`
}

// wireMention matches the storage format for one mention: @[name](id).
var wireMention = regexp.MustCompile(`@\[([^\]]+)\]\(([^)]+)\)`)

// Wire serializes the content to the storage format, replacing each mention
// span with @[name](id). Spans are applied right-to-left so earlier offsets
// stay valid while the string grows.
func (c Content) Wire() string {
	if len(c.Mentions) == 0 {
		return c.Text
	}

	spans := make([]MentionSpan, len(c.Mentions))
	copy(spans, c.Mentions)
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start > spans[j].Start })

	text := c.Text
	for _, span := range spans {
		end := span.Start + span.Length
		if span.Start < 0 || end > len(text) || span.Length <= 0 {
			continue
		}
		name := strings.TrimPrefix(text[span.Start:end], "@")
		token := fmt.Sprintf("@[%s](%s)", name, span.UserID)
		text = text[:span.Start] + token + text[end:]
	}
	return text
}

// ParseWire decodes a stored message body back into display text plus spans.
// Unmatched text passes through untouched, so Parse(Wire(c)) round-trips.
func ParseWire(wire string) Content {
	matches := wireMention.FindAllStringSubmatchIndex(wire, -1)
	if len(matches) == 0 {
		return Content{Text: wire}
	}

	var b strings.Builder
	var spans []MentionSpan
	last := 0
	for _, m := range matches {
		b.WriteString(wire[last:m[0]])
		name := wire[m[2]:m[3]]
		userID := wire[m[4]:m[5]]

		start := b.Len()
		display := "@" + name
		b.WriteString(display)
		spans = append(spans, MentionSpan{Start: start, Length: len(display), UserID: userID})
		last = m[1]
	}
	b.WriteString(wire[last:])

	return Content{Text: b.String(), Mentions: spans}
}

// MentionedUserIDs returns the distinct mentioned users in span order.
func (c Content) MentionedUserIDs() []string {
	seen := make(map[string]struct{}, len(c.Mentions))
	var out []string
	for _, span := range c.Mentions {
		if _, ok := seen[span.UserID]; ok {
			continue
		}
		seen[span.UserID] = struct{}{}
		out = append(out, span.UserID)
	}
	return out
}
