package source

import (
	"regexp"
	"strings"
)

// langRules are the regular expressions used when no syntax tree is
// available. Type rules capture the name in group 1 and, optionally, the
// base types in group 2. Handler rules capture the caught type in group 1
// when they can.
type langRules struct {
	imports  *regexp.Regexp
	types    *regexp.Regexp
	typeKind string
	funcs    *regexp.Regexp
	handlers *regexp.Regexp
}

var todoText = regexp.MustCompile(`\b(?:TODO|FIXME)\b.*`)

var todoComment = regexp.MustCompile(`(?m)(?://|#|/\*|--|;|\*)\s*((?:TODO|FIXME)\b.*)$`)

var jsFuncs = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*\w+\s*(?:<[^>]*>)?\([^)]*\)(?:\s*:\s*[^{\n]+)?|^\s*(?:export\s+)?(?:const|let|var)\s+\w+\s*(?::\s*[^=\n]+)?=\s*(?:async\s+)?(?:\([^)]*\)|\w+)(?:\s*:\s*[^=\n]+)?\s*=>`)

var rules = map[string]langRules{
	LangGo: {
		imports:  regexp.MustCompile(`(?m)^\s*import\s+(?:[\w.]+\s+)?"[^"]+"|^\s+(?:[\w.]+\s+)?"[\w./-]+"\s*$`),
		types:    regexp.MustCompile(`(?m)^\s*type\s+(\w+)(?:\[[^\]]*\])?\s+(struct|interface|[\w.\[\]*]+)`),
		typeKind: "type",
		funcs:    regexp.MustCompile(`(?m)^func\s+(?:\([^)\n]*\)\s*)?\w+(?:\[[^\]\n]*\])?\s*\([^)\n]*\)[^{\n]*`),
		handlers: regexp.MustCompile(`(?m)^\s*if\s+.*\berr\s*!=\s*nil\b|\brecover\(\)`),
	},
	LangPython: {
		imports:  regexp.MustCompile(`(?m)^\s*(?:from\s+[\w.]+\s+import\s+.+|import\s+[\w., ]+)$`),
		types:    regexp.MustCompile(`(?m)^\s*class\s+(\w+)\s*(?:\(([^)]*)\))?\s*:`),
		typeKind: "class",
		funcs:    regexp.MustCompile(`(?m)^\s*(?:async\s+)?def\s+\w+\s*\([^)]*\)\s*(?:->\s*[^:\n]+)?`),
		handlers: regexp.MustCompile(`(?m)^\s*except\b\s*([^:\n]*):`),
	},
	LangJavaScript: {
		imports:  regexp.MustCompile(`(?m)^\s*(?:import\s.+|(?:const|let|var)\s+.+=\s*require\(.+\).*)$`),
		types:    regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:default\s+)?class\s+(\w+)(?:\s+extends\s+([\w.]+))?`),
		typeKind: "class",
		funcs:    jsFuncs,
		handlers: regexp.MustCompile(`catch\s*\(\s*([^)]*)\)`),
	},
	LangTypeScript: {
		imports:  regexp.MustCompile(`(?m)^\s*import\s.+$`),
		types:    regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?(?:class|interface|type|enum)\s+(\w+)(?:<[^>]*>)?(?:\s+(?:extends|implements)\s+([\w., <>]+?))?\s*[{=]`),
		typeKind: "type",
		funcs:    jsFuncs,
		handlers: regexp.MustCompile(`catch\s*\(\s*([^)]*)\)`),
	},
	LangJava: {
		imports:  regexp.MustCompile(`(?m)^\s*import\s+(?:static\s+)?[\w.*]+;`),
		types:    regexp.MustCompile(`(?m)^\s*(?:(?:public|private|protected|abstract|final|static|sealed)\s+)*(?:class|interface|enum|record)\s+(\w+)(?:<[^>]*>)?(?:\s+(?:extends|implements)\s+([\w., <>]+?))?\s*[{(]`),
		typeKind: "class",
		funcs:    regexp.MustCompile(`(?m)^\s*(?:@\w+\s+)*(?:public|private|protected)\s+(?:(?:static|final|abstract|synchronized)\s+)*[\w<>\[\], ?]+\s+\w+\s*\([^)]*\)`),
		handlers: regexp.MustCompile(`catch\s*\(\s*(?:final\s+)?([\w.| ]+?)\s+\w+\s*\)`),
	},
	LangC: {
		imports:  regexp.MustCompile(`(?m)^\s*#include\s*[<"][^>"]+[>"]`),
		types:    regexp.MustCompile(`(?m)^\s*(?:typedef\s+)?(?:struct|enum|union)\s+(\w+)\s*\{`),
		typeKind: "struct",
		funcs:    regexp.MustCompile(`(?m)^(?:static\s+|inline\s+|extern\s+)*[A-Za-z_][\w\s\*]*?\b\w+\s*\([^;{)]*\)\s*\{`),
	},
	LangCPP: {
		imports:  regexp.MustCompile(`(?m)^\s*(?:#include\s*[<"][^>"]+[>"]|using\s+namespace\s+[\w:]+;)`),
		types:    regexp.MustCompile(`(?m)^\s*(?:template\s*<[^>]*>\s*)?(?:class|struct)\s+(\w+)(?:\s*:\s*(?:public|private|protected)?\s*([\w:<>, ]+?))?\s*\{`),
		typeKind: "class",
		funcs:    regexp.MustCompile(`(?m)^(?:static\s+|inline\s+|virtual\s+)*[A-Za-z_][\w\s\*&:<>]*?\b[\w:~]+\s*\([^;{)]*\)\s*(?:const\s*)?\{`),
		handlers: regexp.MustCompile(`catch\s*\(\s*([^)]*)\)`),
	},
	LangCSharp: {
		imports:  regexp.MustCompile(`(?m)^\s*using\s+[\w.]+;`),
		types:    regexp.MustCompile(`(?m)^\s*(?:(?:public|internal|private|protected|abstract|sealed|static|partial)\s+)*(?:class|interface|struct|enum|record)\s+(\w+)(?:<[^>]*>)?(?:\s*:\s*([\w., <>]+?))?\s*(?:\{|$)`),
		typeKind: "class",
		funcs:    regexp.MustCompile(`(?m)^\s*(?:public|private|protected|internal)\s+(?:(?:static|async|virtual|override|abstract)\s+)*[\w<>\[\], ?]+\s+\w+\s*\([^)]*\)`),
		handlers: regexp.MustCompile(`catch\s*\(\s*([\w.]+)`),
	},
	LangRust: {
		imports:  regexp.MustCompile(`(?m)^\s*use\s+[\w:{}, *]+;`),
		types:    regexp.MustCompile(`(?m)^\s*(?:pub(?:\([^)]*\))?\s+)?(?:struct|enum|trait)\s+(\w+)`),
		typeKind: "type",
		funcs:    regexp.MustCompile(`(?m)^\s*(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?fn\s+\w+(?:<[^>]*>)?\s*\([^)]*\)(?:\s*->\s*[^{\n]+)?`),
		handlers: regexp.MustCompile(`(?m)^\s*(Err\([^)]*\))\s*=>`),
	},
	LangUnknown: {
		imports:  regexp.MustCompile(`(?m)^\s*(?:import|#include|using|require|use|from)\b.*$`),
		types:    regexp.MustCompile(`(?m)^\s*(?:class|struct|interface|trait|enum|module)\s+(\w+)`),
		typeKind: "type",
		funcs:    regexp.MustCompile(`(?m)^\s*(?:def|function|func|fn|sub|proc)\s+\w+.*$`),
		handlers: regexp.MustCompile(`\b(?:catch|except|rescue)\b\s*\(?\s*([\w.]*)`),
	},
}

// declKinds maps declaration keywords to the kind labels the syntax-tree
// walkers use.
var declKinds = map[string]string{
	"class":     "class",
	"record":    "class",
	"interface": "interface",
	"struct":    "struct",
	"union":     "struct",
	"enum":      "enum",
	"trait":     "trait",
	"module":    "module",
	"type":      "type",
}

// declKind returns the kind named by the last declaration keyword before
// name in decl, or fallback when decl has none.
func declKind(decl, name, fallback string) string {
	kind := fallback
	for _, w := range strings.Fields(decl) {
		if k, ok := declKinds[w]; ok {
			kind = k
			continue
		}
		if strings.HasPrefix(w, name) {
			break
		}
	}
	return kind
}

// heuristicExtract fills r using the regular expressions for lang.
func heuristicExtract(lang, content string, r *report) {
	lr, ok := rules[lang]
	if !ok {
		lr = rules[LangUnknown]
	}
	if lr.imports != nil {
		for _, m := range lr.imports.FindAllString(content, -1) {
			r.imports.add(m)
		}
	}
	if lr.types != nil {
		for _, m := range lr.types.FindAllStringSubmatch(content, -1) {
			var bases []string
			if len(m) > 2 && m[2] != "" {
				bases = heritage(m[2])
			}
			kind := declKind(m[0], m[1], lr.typeKind)
			if lang == LangGo && len(bases) == 1 && (bases[0] == "struct" || bases[0] == "interface") {
				kind, bases = bases[0], nil
			}
			r.addType(kind, m[1], bases)
		}
	}
	if lr.funcs != nil {
		for _, m := range lr.funcs.FindAllString(content, -1) {
			r.funcs.add(strings.TrimSuffix(strings.TrimSpace(m), "{"))
		}
	}
	if lr.handlers != nil {
		for _, idx := range lr.handlers.FindAllStringSubmatchIndex(content, -1) {
			what := strings.TrimSpace(content[idx[0]:idx[1]])
			if len(idx) >= 4 && idx[2] >= 0 && idx[3] > idx[2] {
				what = strings.TrimSpace(content[idx[2]:idx[3]])
			}
			r.addHandler(lineAt(content, idx[0]), what)
		}
	}
	for _, idx := range todoComment.FindAllStringSubmatchIndex(content, -1) {
		r.addTodo(lineAt(content, idx[0]), content[idx[2]:idx[3]])
	}
}

func lineAt(content string, offset int) int {
	return strings.Count(content[:offset], "\n") + 1
}
