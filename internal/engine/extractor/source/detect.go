package source

import (
	"regexp"

	"github.com/crimson-sun/sift/internal/engine/taxonomy"
)

// Language names.
const (
	LangGo         = "go"
	LangPython     = "python"
	LangJavaScript = "javascript"
	LangTypeScript = "typescript"
	LangTSX        = "tsx"
	LangJava       = "java"
	LangC          = "c"
	LangCPP        = "cpp"
	LangCSharp     = "csharp"
	LangRust       = "rust"
	LangUnknown    = "unknown"
)

var byExtension = map[string]string{
	".go":   LangGo,
	".py":   LangPython,
	".js":   LangJavaScript,
	".mjs":  LangJavaScript,
	".cjs":  LangJavaScript,
	".jsx":  LangJavaScript,
	".ts":   LangTypeScript,
	".tsx":  LangTSX,
	".java": LangJava,
	".kt":   LangJava,
	".c":    LangC,
	".h":    LangC,
	".cc":   LangCPP,
	".cpp":  LangCPP,
	".cxx":  LangCPP,
	".hpp":  LangCPP,
	".cs":   LangCSharp,
	".rs":   LangRust,
}

// languageFromFilename maps a known source extension to its language.
func languageFromFilename(filename string) (string, bool) {
	lang, ok := byExtension[taxonomy.Ext(filename)]
	return lang, ok
}

// keywordSets score how strongly content looks like each language.
// Order breaks ties.
var keywordSets = []struct {
	lang     string
	patterns []*regexp.Regexp
}{
	{LangGo, compile(
		`(?m)^package \w+\s*$`,
		`(?m)^func `,
		`\w+ := `,
		`(?m)^import \($`,
		`\bfmt\.\w+\(`,
		`\berr != nil\b`,
	)},
	{LangPython, compile(
		`(?m)^\s*(?:async\s+)?def \w+\(.*\)\s*(?:->.*)?:\s*$`,
		`(?m)^(?:from [\w.]+ )?import \w+`,
		`\bself\.\w+`,
		`(?m)^\s*elif\b`,
		`__name__|__init__`,
		`(?m)^\s*except\b.*:\s*$`,
	)},
	{LangJavaScript, compile(
		`\bfunction\b`,
		`\b(?:const|let) \w+ = `,
		`=>`,
		`\brequire\(['"]`,
		`\bconsole\.\w+\(`,
		`module\.exports|export default`,
	)},
	{LangTypeScript, compile(
		`(?m)^\s*(?:export )?interface \w+`,
		`\w\??:\s*(?:string|number|boolean|void|any|unknown)\b`,
		`(?m)^\s*(?:export )?type \w+(?:<[^>]*>)? =`,
		`\bimport .* from ['"]`,
		`=>`,
		`\b(?:const|let) \w+ = `,
	)},
	{LangJava, compile(
		`(?m)^\s*import java\.`,
		`\bpublic (?:static )?(?:final )?(?:class|void|interface)\b`,
		`\bSystem\.out\.`,
		`@Override`,
		`(?m)^package [\w.]+;`,
	)},
	{LangC, compile(
		`(?m)^#include\s*<\w+\.h>`,
		`\bprintf\(`,
		`\bmalloc\(|\bfree\(`,
		`(?m)^int main\(`,
		`(?m)^(?:typedef )?struct \w+`,
	)},
	{LangCPP, compile(
		`(?m)^#include\s*<\w+>`,
		`\bstd::`,
		`\bcout\b|\bcerr\b`,
		`\bnamespace \w+`,
		`\btemplate\s*<`,
		`(?m)^class \w+`,
	)},
	{LangCSharp, compile(
		`(?m)^using System`,
		`\bnamespace [\w.]+`,
		`\bpublic (?:class|void|async|static)\b`,
		`\bConsole\.Write`,
		`\bvar \w+ = new\b`,
	)},
	{LangRust, compile(
		`\bfn \w+`,
		`\blet mut\b`,
		`(?m)^use \w+(?:::\w+)+`,
		`(?m)^impl\b`,
		`\bpub (?:fn|struct|enum)\b`,
		`println!`,
	)},
}

// minDetectScore is the keyword score below which the language is unknown.
const minDetectScore = 2

// detectLanguage picks the language with the highest keyword score.
func detectLanguage(content string) string {
	best, bestScore := LangUnknown, 0
	for _, ks := range keywordSets {
		score := 0
		for _, p := range ks.patterns {
			if p.MatchString(content) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = ks.lang, score
		}
	}
	if bestScore < minDetectScore {
		return LangUnknown
	}
	return best
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}
