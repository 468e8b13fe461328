package text

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const issueReport = "# Upload fails on large files\n" +
	"\n" +
	"Steps to reproduce:\n" +
	"- upload a 2GB file\n" +
	"- wait\n" +
	"\n" +
	"```\n" +
	"Traceback (most recent call last):\n" +
	"  File \"app.py\", line 10, in <module>\n" +
	"    main()\n" +
	"ValueError: file too large\n" +
	"```\n" +
	"\n" +
	"```python\n" +
	"def upload(f):\n" +
	"    return client.put(f)\n" +
	"```\n" +
	"\n" +
	"## Environment\n" +
	"See [docs](https://example.com).\n"

func TestExtractMarkdownPriorityOrder(t *testing.T) {
	out := New().Extract(issueReport)

	assert.True(t, strings.HasPrefix(out, "=== TEXT TRIAGE (markdown) ==="))
	errIdx := strings.Index(out, "## Errors (1 unique, 1 total)")
	codeIdx := strings.Index(out, "## Code blocks (1)")
	secIdx := strings.Index(out, "## Sections (2)")
	require.True(t, errIdx > 0 && codeIdx > errIdx && secIdx > codeIdx, out)

	assert.Contains(t, out, "[1] Traceback (most recent call last):\n  File \"app.py\", line 10, in <module>\n    main()\nValueError: file too large")
	assert.Contains(t, out, "[1] python, line 15\ndef upload(f):\n    return client.put(f)")
	assert.Contains(t, out, "### Upload fails on large files\nSteps to reproduce:\n- upload a 2GB file\n- wait")
	assert.Contains(t, out, "### Environment\nSee [docs](https://example.com).")
}

func TestExtractCollapsesRepeatedErrors(t *testing.T) {
	in := "Deploy notes\nWe rolled out v2 today.\n\nERROR: connection refused to db-1\nsome text\nERROR: connection refused to db-2\n"
	out := New().Extract(in)

	assert.True(t, strings.HasPrefix(out, "=== TEXT TRIAGE (plain) ==="))
	assert.Contains(t, out, "## Errors (1 unique, 2 total)")
	assert.Contains(t, out, "[1] ERROR: connection refused to db-1 (x2, lines 4-6)")
	assert.Contains(t, out, "### Deploy notes\nWe rolled out v2 today.")
	assert.NotContains(t, out, "db-2")
}

func TestExtractStackTraces(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		entries int
	}{
		{
			name:    "go",
			input:   "panic: runtime error: index out of range\n\ngoroutine 1 [running]:\nmain.main()\n\t/app/main.go:12 +0x1d\n",
			want:    "goroutine 1 [running]:\nmain.main()\n\t/app/main.go:12 +0x1d",
			entries: 2,
		},
		{
			name:    "java",
			input:   "Exception in thread \"main\" java.lang.IllegalStateException: bad\n\tat com.x.Foo.run(Foo.java:10)\n\tat com.x.Main.main(Main.java:5)\nCaused by: java.io.IOException: disk\n\t... 2 more\nDone.\n",
			want:    "\tat com.x.Main.main(Main.java:5)\nCaused by: java.io.IOException: disk\n\t... 2 more",
			entries: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := New().Extract(tt.input)
			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, fmt.Sprintf("## Errors (%d unique, %d total)", tt.entries, tt.entries))
		})
	}
}

func TestExtractErrorsAreCapped(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "Err%cError: something broke\n", 'A'+i)
	}
	out := New().Extract(b.String())

	assert.Contains(t, out, "## Errors (20 unique, 20 total)")
	assert.Contains(t, out, "[15] ErrOError: something broke")
	assert.NotContains(t, out, "[16]")
	assert.Contains(t, out, "... and 5 more")
}

func TestExtractLongErrorIsTruncated(t *testing.T) {
	out := New().Extract("ERROR: " + strings.Repeat("x", 2000) + "\n")

	assert.Contains(t, out, "characters omitted]")
	assert.Less(t, utf8.RuneCountInString(out), 700)
}

func TestExtractIndentedCodeBlock(t *testing.T) {
	in := "Run this:\n\n    go build ./...\n    go test ./...\n\nThen check.\n"
	out := New().Extract(in)

	assert.Contains(t, out, "[1] text, line 3\ngo build ./...\ngo test ./...")
	assert.Contains(t, out, "### Run this:")
	assert.Contains(t, out, "### Then check.")
}

func TestExtractIndentedListContinuationIsNotCode(t *testing.T) {
	in := "- first item\n\n    continued text\n    more text\n"
	out := New().Extract(in)

	assert.NotContains(t, out, "## Code blocks")
}

func TestExtractCodeBlocksAreCapped(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&b, "```sh\necho %d\n```\n\n", i)
	}
	b.WriteString("```sh\n" + strings.Repeat("y", 2000) + "\n```\n")
	out := New().Extract(b.String())

	assert.Contains(t, out, "## Code blocks (13)")
	assert.Contains(t, out, "... and 3 more")
	assert.NotContains(t, out, "echo 11")
}

func TestExtractLongCodeBlockIsTruncated(t *testing.T) {
	out := New().Extract("```\n" + strings.Repeat("z", 2000) + "\n```\n")

	assert.Contains(t, out, "[code truncated:")
}

func TestExtractSourceFenceErrorsAreCode(t *testing.T) {
	in := "```go\nif err != nil { return fmt.Errorf(\"error: %w\", err) }\n```\n"
	out := New().Extract(in)

	assert.NotContains(t, out, "## Errors")
	assert.Contains(t, out, "[1] go, line 2")
}

func TestExtractSectionsAreCapped(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, "Topic %d\nbody %d\n\n", i, i)
	}
	out := New().Extract(b.String())

	assert.Contains(t, out, "## Sections (25)")
	assert.Contains(t, out, "### Topic 19\nbody 19")
	assert.NotContains(t, out, "### Topic 20")
	assert.Contains(t, out, "... and 5 more sections")
}

func TestExtractLongParagraphGetsNumberedTitle(t *testing.T) {
	long := strings.Repeat("word ", 30)
	out := New().Extract(long + "\nsecond line\n")

	assert.Contains(t, out, "### Paragraph 1\n")
}

func TestExtractOutputIsBounded(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&b, "Err%cError: %s\n\n", 'A'+i, strings.Repeat("e", 600))
	}
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "Topic %d\n%s\n\n", i, strings.Repeat("p", 600))
	}
	out := New().Extract(b.String())

	assert.LessOrEqual(t, utf8.RuneCountInString(out), MaxOutputChars)
	assert.Contains(t, out, "[output truncated:")
}

func TestExtractFallback(t *testing.T) {
	out := New().Extract("  \n\n")

	assert.Equal(t, "=== UNSTRUCTURED TEXT (no structure detected) ===\n(empty document)", out)
}

func TestExtractNormalizesUnicode(t *testing.T) {
	out := New().Extract("Cafe\u0301 notes\nbody\n")

	assert.Contains(t, out, "### Caf\u00e9 notes")
}

func TestExtractIsDeterministic(t *testing.T) {
	e := New()
	assert.Equal(t, e.Extract(issueReport), e.Extract(issueReport))
	assert.Equal(t, "text_triage", e.StrategyName())
	assert.Zero(t, e.LLMCallsUsed())
}

func TestScanMarkdownDetection(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"# Title\n- item\n", true},
		{"just text\n- one item\n", false},
		{"see [x](http://y) and\n```\ncode\n```\n", true},
		{"plain prose only.\n", false},
		{"```\n# not a heading\n```\n", false},
	}
	for _, tt := range tests {
		doc := scan(strings.Split(strings.TrimSuffix(tt.input, "\n"), "\n"))
		assert.Equal(t, tt.want, doc.markdown, tt.input)
	}
}

func TestExtractFenceClosingRule(t *testing.T) {
	in := "```\ncode line one\n```python\nstill code\n```\n\n## After\nbody"
	out := New().Extract(in)

	assert.Contains(t, out, "## Code blocks (1)")
	assert.Contains(t, out, "[1] text, line 2\ncode line one\n```python\nstill code")
	assert.Contains(t, out, "### After\nbody")
	assert.NotContains(t, out, "[2]")
}

func TestScanFenceClosers(t *testing.T) {
	tests := []struct {
		line, marker string
		want         bool
	}{
		{"```", "```", true},
		{"   ````  ", "```", true},
		{"```python", "```", false},
		{"```", "````", false},
		{"~~~", "```", false},
		{"    ```", "```", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, closesFence(tt.line, tt.marker), "%q closing %q", tt.line, tt.marker)
	}
}
