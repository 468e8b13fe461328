package text

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/crimson-sun/sift/internal/engine/compactor"
)

// pseudoHeadingRunes is the longest first line of a paragraph that is
// still treated as its heading.
const pseudoHeadingRunes = 60

type section struct {
	title string
	body  string
}

func headingSections(lines []string, doc document, used []bool) []section {
	var out []section
	cur := section{}
	var body []string
	titled := false

	flush := func() {
		text := joinBody(body)
		if titled || text != "" {
			if !titled {
				cur.title = "(untitled)"
			}
			cur.body = text
			out = append(out, cur)
		}
		body = body[:0]
	}

	for i, l := range lines {
		if used[i] || doc.inFence[i] {
			continue
		}
		if m := headingLine.FindStringSubmatch(l); m != nil {
			flush()
			cur = section{title: m[2]}
			titled = true
			continue
		}
		body = append(body, l)
	}
	flush()
	return out
}

func paragraphSections(lines []string, doc document, used []bool) []section {
	var out []section
	var para []string

	flush := func() {
		if len(para) == 0 {
			return
		}
		first := strings.TrimSpace(para[0])
		s := section{}
		if utf8.RuneCountInString(first) <= pseudoHeadingRunes {
			s.title = first
			s.body = joinBody(para[1:])
		} else {
			s.title = fmt.Sprintf("Paragraph %d", len(out)+1)
			s.body = joinBody(para)
		}
		out = append(out, s)
		para = para[:0]
	}

	for i, l := range lines {
		if used[i] || doc.inFence[i] || blank(l) {
			flush()
			continue
		}
		para = append(para, l)
	}
	flush()
	return out
}

// joinBody trims each line, drops blank runs and caps the result.
func joinBody(lines []string) string {
	var kept []string
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			kept = append(kept, t)
		}
	}
	return compactor.Truncate(strings.Join(kept, "\n"), MaxSectionBody)
}
