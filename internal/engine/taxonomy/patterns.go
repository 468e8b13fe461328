package taxonomy

import "regexp"

const logLevels = `TRACE|DEBUG|INFO|NOTICE|WARN|WARNING|ERROR|FATAL|CRITICAL`

// StructuredLogFields are JSON log field names. The rule tier counts how
// many distinct fields occur, not how often.
var StructuredLogFields = []*regexp.Regexp{
	regexp.MustCompile(`"(?:timestamp|@timestamp)"\s*:`),
	regexp.MustCompile(`"(?:level|severity)"\s*:`),
	regexp.MustCompile(`"event"\s*:`),
	regexp.MustCompile(`"logger"\s*:`),
	regexp.MustCompile(`"(?:message|msg)"\s*:`),
}

// PlainLogPatterns match plain-text log lines and failure markers. Every
// occurrence counts.
var PlainLogPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^\[?\d{4}-\d{2}-\d{2}(?:[T ][\d:.,]+)?(?:Z|[+-]\d{2}:?\d{2})?\]?\s+\[?(?:` + logLevels + `)\b`),
	regexp.MustCompile(`(?m)^\s*\[?(?:` + logLevels + `)\]?[\s:]`),
	regexp.MustCompile(`\b(?:ERROR|FATAL|CRITICAL)\b`),
	regexp.MustCompile(`Traceback \(most recent call last\)`),
	regexp.MustCompile(`(?m)^\s+at\s+[\w.$<>]+\(`),
	regexp.MustCompile(`(?m)^goroutine \d+ \[`),
	regexp.MustCompile(`\bpanic:`),
	regexp.MustCompile(`(?m)^\s*(?:[\w$]+\.)*\w*(?:Exception|Error):[ \t]+\S`),
}

// MetricPatterns detect metric data: timestamp columns, well known metric
// names and Prometheus label syntax.
var MetricPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)"?\b(?:timestamp|time|ts|datetime)\b"?\s*[:,]`),
	regexp.MustCompile(`(?i)\b(?:cpu|memory|mem|latency|throughput|rps|qps|error_rate|p50|p95|p99|duration_ms|response_time|disk_io|load_avg|utilization)\b`),
	regexp.MustCompile(`"value"\s*:`),
	regexp.MustCompile(`\b[a-zA-Z_:][\w:]*\{[a-zA-Z_]\w*="[^"]*"(?:,\s*[a-zA-Z_]\w*="[^"]*")*\}\s+[-+\d.eE]+`),
}

// PrometheusSample matches one exposition-format sample or TYPE line.
var PrometheusSample = regexp.MustCompile(`(?m)^(?:# TYPE \w+ (?:counter|gauge|histogram|summary|untyped)|[a-zA-Z_:][\w:]*(?:\{[^}]*\})?\s+[-+]?(?:\d+\.?\d*(?:[eE][-+]?\d+)?|NaN|[-+]?Inf))\s*(?:\d+)?$`)

// JSONArrayOfObjects matches the opening of an array of objects anywhere
// in the sample, including nested series such as {"cpu": [{...}]}.
var JSONArrayOfObjects = regexp.MustCompile(`\[\s*\{`)

// Config content indicators. The rule tier needs at least two distinct kinds.
var (
	ConfigKeyValue   = regexp.MustCompile(`(?m)^\s*[{,]?\s*"?[A-Za-z_][\w.-]*"?\s*[:=]\s*\S`)
	ConfigSection    = regexp.MustCompile(`(?m)^\s*\[[\w.\- "]+\]\s*$`)
	ConfigJSONObject = regexp.MustCompile(`^\s*\{`)
)

// CodePatterns are declaration, import and visibility keywords.
var CodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^\s*(?:async\s+)?(?:def|function|func|fn)\s+[\w.]+\s*\(`),
	regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:abstract\s+)?(?:class|struct|interface|trait|enum)\s+\w+`),
	regexp.MustCompile(`(?m)^\s*(?:import\s+[\w.{"'*]|from\s+[\w.]+\s+import\b|#include\s*[<"]|using\s+[\w.]+;|package\s+[\w.]+;?\s*$|use\s+\w+::)`),
	regexp.MustCompile(`\b(?:public|private|protected)\s+(?:static\s+)?[\w<>\[\]]+\s+\w+`),
	regexp.MustCompile(`\brequire\(\s*['"]`),
}

// ProsePatterns are markdown-ish prose markers: headings, lists and bold.
var ProsePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^#{1,6}\s+\S`),
	regexp.MustCompile(`(?m)^\s*[-*+]\s+\S`),
	regexp.MustCompile(`(?m)^\s*\d+\.\s+\S`),
	regexp.MustCompile(`\*\*[^*\n]+\*\*`),
}

// HintCodeKeyword is the sanity check applied to a source-code agent hint.
var HintCodeKeyword = regexp.MustCompile(`\b(?:def|class|function|func|fn|import|package|public|private)\b|#include\b`)

// CountAll sums the occurrences of every pattern in s.
func CountAll(patterns []*regexp.Regexp, s string) int {
	n := 0
	for _, p := range patterns {
		n += len(p.FindAllStringIndex(s, -1))
	}
	return n
}

// CountDistinct returns how many patterns occur at least once in s.
func CountDistinct(patterns []*regexp.Regexp, s string) int {
	n := 0
	for _, p := range patterns {
		if p.MatchString(s) {
			n++
		}
	}
	return n
}
