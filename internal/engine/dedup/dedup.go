package dedup

import (
	"fmt"
	"regexp"
	"strings"
)

// Config controls deduplication behavior.
type Config struct {
	Window int // max line distance from a group's first occurrence; 0 means unlimited
}

// Message is one occurrence of a text at a source line.
type Message struct {
	Text string
	Line int
}

// Group is a run of messages sharing the same normalized key.
type Group struct {
	Text      string // first occurrence, verbatim
	Count     int
	FirstLine int
	LastLine  int
}

// Deduplicator collapses repeated messages.
type Deduplicator struct {
	cfg Config
}

// New creates a Deduplicator with the given config.
func New(cfg Config) *Deduplicator {
	return &Deduplicator{cfg: cfg}
}

var (
	hexID  = regexp.MustCompile(`\b0x[0-9a-fA-F]+\b|\b[0-9a-fA-F]{8,}\b`)
	number = regexp.MustCompile(`\d+`)
)

// Key normalizes text so that messages differing only in numbers, ids or
// whitespace collapse together.
func Key(text string) string {
	k := hexID.ReplaceAllString(strings.TrimSpace(text), "<id>")
	k = number.ReplaceAllString(k, "<n>")
	return strings.Join(strings.Fields(k), " ")
}

// Collapse groups messages with identical keys whose lines fall within
// Window of the group's first line. Groups are returned in first-occurrence
// order.
func (d *Deduplicator) Collapse(msgs []Message) []Group {
	if len(msgs) == 0 {
		return nil
	}

	var order []*Group
	groups := make(map[string]*Group)

	for _, m := range msgs {
		key := Key(m.Text)

		g, exists := groups[key]
		if exists && (d.cfg.Window <= 0 || m.Line-g.FirstLine <= d.cfg.Window) {
			g.Count++
			if m.Line > g.LastLine {
				g.LastLine = m.Line
			}
			continue
		}

		g = &Group{Text: m.Text, Count: 1, FirstLine: m.Line, LastLine: m.Line}
		groups[key] = g
		order = append(order, g)
	}

	result := make([]Group, 0, len(order))
	for _, g := range order {
		result = append(result, *g)
	}
	return result
}

// String renders the group text with its repeat count and line span.
func (g Group) String() string {
	if g.Count <= 1 {
		return g.Text
	}
	return fmt.Sprintf("%s (x%d, %s)", g.Text, g.Count, formatSpan(g.FirstLine, g.LastLine))
}

// formatSpan produces a short line-range string.
func formatSpan(first, last int) string {
	if first == last {
		return fmt.Sprintf("line %d", first)
	}
	return fmt.Sprintf("lines %d-%d", first, last)
}
