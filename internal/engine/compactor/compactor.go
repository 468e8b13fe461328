// Package compactor holds the size-bounding policies shared by every
// extractor: rune-safe character caps, line splitting and the head/tail
// collapsing used when an extraction would exceed its budget.
package compactor

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Lines splits content into lines. A trailing newline does not produce an
// empty final line and carriage returns are stripped.
func Lines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Truncate cuts s to at most maxRunes runes and appends "..." when it cut.
func Truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	return string([]rune(s)[:maxRunes]) + "..."
}

// TruncateChars bounds s to maxRunes runes including a trailing marker
// that reports how many runes were dropped. The marker is produced by
// applying format to the omitted count, e.g. "\n... [truncated: %d characters omitted]".
func TruncateChars(s string, maxRunes int, format string) string {
	total := utf8.RuneCountInString(s)
	if total <= maxRunes {
		return s
	}
	keep := maxRunes - utf8.RuneCountInString(fmt.Sprintf(format, total))
	if keep < 0 {
		keep = 0
	}
	return string([]rune(s)[:keep]) + fmt.Sprintf(format, total-keep)
}

// Tail returns the last n lines (all of them when there are fewer).
func Tail(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}

// CollapseMiddle keeps at most max lines by dropping the middle and putting
// a single marker line in its place. The result has exactly max lines when
// collapsing happens.
func CollapseMiddle(lines []string, max int) []string {
	if len(lines) <= max || max < 3 {
		return lines
	}
	head := max / 2
	tail := max - head - 1
	omitted := len(lines) - head - tail
	out := make([]string, 0, max)
	out = append(out, lines[:head]...)
	out = append(out, fmt.Sprintf("... [%d lines omitted] ...", omitted))
	out = append(out, lines[len(lines)-tail:]...)
	return out
}

// CollapseAround keeps a head block and a tail block of the given sizes.
// When anchor (an index into lines) would fall into the dropped middle the
// head block becomes the head lines ending at the anchor, so the anchor line
// always survives. Markers note every omitted run.
func CollapseAround(lines []string, head, tail, anchor int) []string {
	n := len(lines)
	if n <= head+tail {
		return lines
	}
	start, end := 0, head
	if anchor >= head && anchor < n-tail {
		start, end = anchor-head+1, anchor+1
	}
	out := make([]string, 0, head+tail+2)
	if start > 0 {
		out = append(out, fmt.Sprintf("... [truncated: %d lines omitted] ...", start))
	}
	out = append(out, lines[start:end]...)
	if mid := n - tail - end; mid > 0 {
		out = append(out, fmt.Sprintf("... [truncated: %d lines omitted] ...", mid))
	}
	out = append(out, lines[n-tail:]...)
	return out
}
