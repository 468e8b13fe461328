package compactor

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("line %d", i)
	}
	return out
}

func TestLines(t *testing.T) {
	assert.Nil(t, Lines(""))
	assert.Equal(t, []string{"a", "b"}, Lines("a\nb\n"))
	assert.Equal(t, []string{"a", "", "b"}, Lines("a\r\n\r\nb"))
	assert.Equal(t, []string{""}, Lines("\n"))
}

func TestTruncateRuneSafety(t *testing.T) {
	input := strings.Repeat("日本語", 100)
	result := Truncate(input, 10)
	require.True(t, utf8.ValidString(result))
	assert.Equal(t, 13, utf8.RuneCountInString(result))
	assert.True(t, strings.HasSuffix(result, "..."))
	assert.Equal(t, "short", Truncate("short", 100))
}

func TestTruncateCharsBoundsTotal(t *testing.T) {
	const format = "\n... [truncated: %d characters omitted]"
	input := strings.Repeat("x", 12000)
	out := TruncateChars(input, 5000, format)
	assert.LessOrEqual(t, utf8.RuneCountInString(out), 5000)
	assert.Contains(t, out, "characters omitted]")

	kept := strings.Count(out, "x")
	assert.Contains(t, out, fmt.Sprintf("[truncated: %d characters omitted]", 12000-kept))

	assert.Equal(t, "abc", TruncateChars("abc", 5000, format))
}

func TestTail(t *testing.T) {
	lines := numbered(10)
	assert.Equal(t, lines[7:], Tail(lines, 3))
	assert.Equal(t, lines, Tail(lines, 50))
}

func TestCollapseMiddle(t *testing.T) {
	lines := numbered(1000)
	out := CollapseMiddle(lines, 500)
	require.Len(t, out, 500)
	assert.Equal(t, "line 0", out[0])
	assert.Equal(t, "line 249", out[249])
	assert.Equal(t, "... [501 lines omitted] ...", out[250])
	assert.Equal(t, "line 999", out[499])

	short := numbered(20)
	assert.Equal(t, short, CollapseMiddle(short, 500))
}

func TestCollapseAroundAnchorInHead(t *testing.T) {
	lines := numbered(1000)
	out := CollapseAround(lines, 200, 200, 10)
	require.Len(t, out, 401)
	assert.Equal(t, "line 0", out[0])
	assert.Equal(t, "... [truncated: 600 lines omitted] ...", out[200])
	assert.Equal(t, "line 999", out[400])
}

func TestCollapseAroundAnchorInMiddle(t *testing.T) {
	lines := numbered(1000)
	out := CollapseAround(lines, 200, 200, 500)
	require.Len(t, out, 402)
	assert.Equal(t, "... [truncated: 301 lines omitted] ...", out[0])
	assert.Equal(t, "line 301", out[1])
	assert.Equal(t, "line 500", out[200])
	assert.Equal(t, "... [truncated: 299 lines omitted] ...", out[201])
	assert.Equal(t, "line 800", out[202])
}

func TestCollapseAroundSmallInput(t *testing.T) {
	lines := numbered(300)
	assert.Equal(t, lines, CollapseAround(lines, 200, 200, 150))
}
