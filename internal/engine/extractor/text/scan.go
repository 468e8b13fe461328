package text

import (
	"regexp"
	"strings"
)

var (
	headingLine = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*\s*$`)
	fenceLine   = regexp.MustCompile("^\\s{0,3}(```+|~~~+)\\s*([\\w+#.-]*)")
	listLine    = regexp.MustCompile(`^\s*([-*+]|\d+[.)])\s+\S`)
	linkSyntax  = regexp.MustCompile(`\[[^\]\n]+\]\([^)\s]+\)`)
)

// markdownIndicators is how many distinct markdown features a document
// needs before it is sectioned by heading.
const markdownIndicators = 2

type fence struct {
	open, close int // marker line indexes; close == len(lines) when unterminated
	lang        string
}

type document struct {
	markdown bool
	inFence  []bool // line is a fence marker or inside a fence
	fences   []fence
}

func (d document) kind() string {
	if d.markdown {
		return "markdown"
	}
	return "plain"
}

func scan(lines []string) document {
	doc := document{inFence: make([]bool, len(lines))}

	for i := 0; i < len(lines); i++ {
		m := fenceLine.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		marker := m[1]
		f := fence{open: i, close: len(lines), lang: m[2]}
		for j := i + 1; j < len(lines); j++ {
			if closesFence(lines[j], marker) {
				f.close = j
				break
			}
		}
		end := f.close
		if end == len(lines) {
			end--
		}
		for k := f.open; k <= end; k++ {
			doc.inFence[k] = true
		}
		doc.fences = append(doc.fences, f)
		i = end
	}

	var headings, lists, links bool
	for i, l := range lines {
		if doc.inFence[i] {
			continue
		}
		headings = headings || headingLine.MatchString(l)
		lists = lists || listLine.MatchString(l)
		links = links || linkSyntax.MatchString(l)
	}
	n := 0
	for _, present := range []bool{headings, len(doc.fences) > 0, lists, links} {
		if present {
			n++
		}
	}
	doc.markdown = n >= markdownIndicators
	return doc
}

// closesFence reports whether line closes a fence opened with marker: up to
// three spaces of indent, the same fence character repeated at least as many
// times, and nothing but whitespace after it.
func closesFence(line, marker string) bool {
	rest := strings.TrimLeft(line, " ")
	if len(line)-len(rest) > 3 {
		return false
	}
	n := 0
	for n < len(rest) && rest[n] == marker[0] {
		n++
	}
	return n >= len(marker) && strings.TrimSpace(rest[n:]) == ""
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func indented(s string) bool {
	return strings.HasPrefix(s, "    ") || strings.HasPrefix(s, "\t")
}
