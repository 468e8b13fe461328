package text

import (
	"regexp"
	"strings"

	"github.com/crimson-sun/sift/internal/engine/compactor"
	"github.com/crimson-sun/sift/internal/engine/dedup"
)

var errorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[A-Z][A-Za-z0-9_.]*(Error|Exception)\b`),
	regexp.MustCompile(`(?i)\b(error|fatal|panic|critical)\b\s*[:\]!]`),
	regexp.MustCompile(`(?i)^\s*\[?(error|fatal|panic)\b`),
	regexp.MustCompile(`(?i)\b(unhandled|uncaught)\b|segmentation fault|core dumped`),
	regexp.MustCompile(`(?i)\bexit (code|status) [1-9]\d*`),
}

var (
	pyTrace    = regexp.MustCompile(`^Traceback \(most recent call last\):`)
	goRoutine  = regexp.MustCompile(`^goroutine \d+ \[`)
	frameLines = []*regexp.Regexp{
		regexp.MustCompile(`^\s+at\s`),
		regexp.MustCompile(`^\s+File "`),
		regexp.MustCompile(`^\s*Caused by:`),
		regexp.MustCompile(`^\s+\.\.\. \d+ (more|common frames omitted)`),
		regexp.MustCompile(`^\s+\S+\.go:\d+`),
	}
)

func errorLine(s string) bool {
	for _, re := range errorPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func frameLine(s string) bool {
	for _, re := range frameLines {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// outputLangs are fence languages whose content is program output rather
// than source, so single error lines inside them count.
var outputLangs = map[string]bool{
	"": true, "text": true, "txt": true, "log": true, "console": true,
	"shell": true, "sh": true, "bash": true, "output": true,
}

// findErrors collects error lines and stack traces as messages and marks
// the lines they cover in used. Fence markers are never part of a message;
// inside source-code fences only full traces are taken.
func findErrors(lines []string, doc document, used []bool) []dedup.Message {
	var msgs []dedup.Message
	marker := make(map[int]bool, 2*len(doc.fences))
	source := make(map[int]bool)
	for _, f := range doc.fences {
		marker[f.open] = true
		marker[f.close] = true
		if !outputLangs[strings.ToLower(f.lang)] {
			for k := f.open + 1; k < f.close && k < len(lines); k++ {
				source[k] = true
			}
		}
	}

	for i := 0; i < len(lines); i++ {
		if used[i] || marker[i] {
			continue
		}
		line := lines[i]
		end := traceEnd(lines, i, marker)
		switch {
		case end > i+1:
			msgs = append(msgs, dedup.Message{
				Text: capError(strings.Join(lines[i:end], "\n")),
				Line: i + 1,
			})
			for k := i; k < end; k++ {
				used[k] = true
			}
			i = end - 1
		case !source[i] && errorLine(line):
			msgs = append(msgs, dedup.Message{Text: capError(strings.TrimSpace(line)), Line: i + 1})
			used[i] = true
		}
	}
	return msgs
}

// traceEnd returns the exclusive end of a stack trace starting at i, or i
// when no trace starts there.
func traceEnd(lines []string, i int, marker map[int]bool) int {
	j := i + 1
	more := func() bool { return j < len(lines) && !marker[j] }

	switch {
	case pyTrace.MatchString(lines[i]):
		for more() && (indented(lines[j]) || strings.HasPrefix(lines[j], "  ")) {
			j++
		}
		if more() && !blank(lines[j]) {
			j++ // the exception line
		}
	case goRoutine.MatchString(lines[i]):
		for more() && !blank(lines[j]) {
			j++
		}
	case errorLine(lines[i]) || strings.HasPrefix(lines[i], "Exception in thread "):
		for more() && frameLine(lines[j]) {
			j++
		}
	default:
		return i
	}
	if j == i+1 {
		return i
	}
	return j
}

func capError(s string) string {
	return compactor.TruncateChars(s, MaxErrorChars, "\n... [truncated: %d characters omitted]")
}
