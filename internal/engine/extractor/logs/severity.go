package logs

import (
	"regexp"
	"strconv"
	"strings"
)

// Severity weights. A line is tagged with the first keyword in table order
// that it contains.
const (
	WeightFatal    = 100
	WeightCritical = 90
	WeightPanic    = 90
	WeightError    = 50
	WeightWarn     = 10
)

type severity struct {
	keyword string
	weight  int
	re      *regexp.Regexp
}

var severities = []severity{
	{"FATAL", WeightFatal, regexp.MustCompile(`(?i)\bfatal\b`)},
	{"CRITICAL", WeightCritical, regexp.MustCompile(`(?i)\bcritical\b`)},
	{"PANIC", WeightPanic, regexp.MustCompile(`(?i)\bpanic\b`)},
	{"ERROR", WeightError, regexp.MustCompile(`(?i)\berror\b`)},
	{"WARN", WeightWarn, regexp.MustCompile(`(?i)\bwarn\b`)},
	{"WARNING", WeightWarn, regexp.MustCompile(`(?i)\bwarning\b`)},
}

// tag is a severity-matched line.
type tag struct {
	line    int
	keyword string
	weight  int
}

// scan tags every line carrying a severity keyword, in line order.
func scan(lines []string) []tag {
	var tags []tag
	for i, l := range lines {
		if t, ok := classify(l); ok {
			t.line = i
			tags = append(tags, t)
		}
	}
	return tags
}

func classify(line string) (tag, bool) {
	// Substring pre-filter before running the regex table.
	lower := strings.ToLower(line)
	if !strings.Contains(lower, "fatal") && !strings.Contains(lower, "critical") &&
		!strings.Contains(lower, "panic") && !strings.Contains(lower, "error") &&
		!strings.Contains(lower, "warn") {
		return tag{}, false
	}
	for _, s := range severities {
		if s.re.MatchString(line) {
			return tag{keyword: s.keyword, weight: s.weight}, true
		}
	}
	return tag{}, false
}

// primary returns the highest-weight tag; ties go to the earliest line.
func primary(tags []tag) tag {
	best := tags[0]
	for _, t := range tags[1:] {
		if t.weight > best.weight {
			best = t
		}
	}
	return best
}

// histogram renders tag counts in table order, e.g. "FATAL=1, ERROR=3".
func histogram(tags []tag) string {
	counts := make(map[string]int, len(severities))
	for _, t := range tags {
		counts[t.keyword]++
	}
	var parts []string
	for _, s := range severities {
		if n := counts[s.keyword]; n > 0 {
			parts = append(parts, s.keyword+"="+strconv.Itoa(n))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}
