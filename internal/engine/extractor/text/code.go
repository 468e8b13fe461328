package text

import (
	"sort"
	"strings"

	"github.com/crimson-sun/sift/internal/engine/compactor"
)

type codeBlock struct {
	lang string
	line int // 1-based line of the first code line
	body string
}

// findCode returns fenced and indented code blocks in document order.
// Blocks whose lines were all claimed as errors are dropped; every line of
// a fence is marked used either way.
func findCode(lines []string, doc document, used []bool) []codeBlock {
	var blocks []codeBlock

	for _, f := range doc.fences {
		end := f.close
		if end > len(lines) {
			end = len(lines)
		}
		var body []string
		for k := f.open + 1; k < end; k++ {
			if !used[k] {
				body = append(body, lines[k])
			}
		}
		for k := f.open; k < len(lines) && k <= f.close; k++ {
			used[k] = true
		}
		if strings.TrimSpace(strings.Join(body, "")) == "" {
			continue
		}
		blocks = append(blocks, codeBlock{lang: f.lang, line: f.open + 2, body: capCode(body)})
	}

	for i := 0; i < len(lines); i++ {
		if used[i] || !indented(lines[i]) || blank(lines[i]) || !startsBlock(lines, i) {
			continue
		}
		j, nonBlank := i, 0
		for j < len(lines) && !used[j] && (indented(lines[j]) || blank(lines[j])) {
			if !blank(lines[j]) {
				nonBlank++
			}
			j++
		}
		for j > i && blank(lines[j-1]) {
			j--
		}
		if nonBlank < 2 {
			i = j
			continue
		}
		body := make([]string, 0, j-i)
		for k := i; k < j; k++ {
			body = append(body, strings.TrimPrefix(strings.TrimPrefix(lines[k], "\t"), "    "))
			used[k] = true
		}
		blocks = append(blocks, codeBlock{line: i + 1, body: capCode(body)})
		i = j
	}

	sort.SliceStable(blocks, func(a, b int) bool { return blocks[a].line < blocks[b].line })
	return blocks
}

// startsBlock reports whether an indented line at i opens a code block: it
// follows a blank line (or starts the document) and is not the
// continuation of a list item.
func startsBlock(lines []string, i int) bool {
	if i == 0 {
		return true
	}
	if !blank(lines[i-1]) {
		return false
	}
	for k := i - 1; k >= 0; k-- {
		if !blank(lines[k]) {
			return !listLine.MatchString(lines[k])
		}
	}
	return true
}

func capCode(body []string) string {
	return compactor.TruncateChars(strings.Join(body, "\n"), MaxCodeChars, "\n... [code truncated: %d characters omitted]")
}
