package source

import (
	"fmt"
	"strings"

	"github.com/crimson-sun/sift/internal/engine/compactor"
)

// Per-category caps.
const (
	MaxImports  = 30
	MaxTypes    = 15
	MaxMembers  = 10
	MaxFuncs    = 20
	MaxHandlers = 10
	MaxTodos    = 10

	maxEntryRunes = 200
	previewLines  = 40
)

// list is a capped, ordered set of report entries.
type list struct {
	limit int
	items []string
	total int
}

func (l *list) add(s string) {
	s = compactor.Truncate(strings.Join(strings.Fields(s), " "), maxEntryRunes)
	if s == "" {
		return
	}
	l.total++
	if len(l.items) < l.limit {
		l.items = append(l.items, s)
	}
}

// typeDef is a class, struct, interface or alias definition.
type typeDef struct {
	kind    string
	name    string
	bases   []string
	members list
}

func (t *typeDef) String() string {
	var b strings.Builder
	b.WriteString(t.kind)
	b.WriteByte(' ')
	b.WriteString(t.name)
	if len(t.bases) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(t.bases, ", "))
	}
	if len(t.members.items) > 0 {
		fmt.Fprintf(&b, " [members: %s", strings.Join(t.members.items, ", "))
		if more := t.members.total - len(t.members.items); more > 0 {
			fmt.Fprintf(&b, ", +%d more", more)
		}
		b.WriteByte(']')
	}
	return b.String()
}

// report is the structure extracted from one source file.
type report struct {
	language string
	parser   string
	lines    int

	imports  list
	types    []*typeDef
	typesN   int
	funcs    list
	handlers list
	todos    list
}

func newReport(language, parser string, lines int) *report {
	return &report{
		language: language,
		parser:   parser,
		lines:    lines,
		imports:  list{limit: MaxImports},
		funcs:    list{limit: MaxFuncs},
		handlers: list{limit: MaxHandlers},
		todos:    list{limit: MaxTodos},
	}
}

// addType records a type definition and returns it so members can be
// added, or nil when the type cap is reached.
func (r *report) addType(kind, name string, bases []string) *typeDef {
	if name == "" {
		return nil
	}
	r.typesN++
	if len(r.types) >= MaxTypes {
		return nil
	}
	t := &typeDef{kind: kind, name: name, members: list{limit: MaxMembers}}
	for _, b := range bases {
		if b = strings.TrimSpace(b); b != "" {
			t.bases = append(t.bases, b)
		}
	}
	r.types = append(r.types, t)
	return t
}

func (r *report) addMember(t *typeDef, name string) {
	if t != nil {
		t.members.add(name)
	}
}

func (r *report) addHandler(line int, what string) {
	r.handlers.add(fmt.Sprintf("line %d: %s", line, what))
}

func (r *report) addTodo(line int, comment string) {
	if m := todoText.FindString(comment); m != "" {
		r.todos.add(fmt.Sprintf("line %d: %s", line, strings.TrimRight(m, " */")))
	}
}

func (r *report) empty() bool {
	return r.imports.total == 0 && r.typesN == 0 && r.funcs.total == 0 &&
		r.handlers.total == 0 && r.todos.total == 0
}

func (r *report) render(content string) string {
	var b strings.Builder
	b.WriteString("=== SOURCE CODE STRUCTURE ===\n")
	fmt.Fprintf(&b, "Language: %s | Parser: %s | Lines: %d\n", r.language, r.parser, r.lines)

	if r.empty() {
		b.WriteString("\nNo structural elements found. First lines:\n")
		lines := compactor.Lines(content)
		if len(lines) > previewLines {
			lines = lines[:previewLines]
		}
		b.WriteString(strings.Join(lines, "\n"))
		return b.String()
	}

	section(&b, "Imports", r.imports)
	if r.typesN > 0 {
		fmt.Fprintf(&b, "\n## Types (%s)\n", counted(len(r.types), r.typesN))
		for _, t := range r.types {
			b.WriteString("- ")
			b.WriteString(t.String())
			b.WriteByte('\n')
		}
	}
	section(&b, "Functions", r.funcs)
	section(&b, "Error handling", r.handlers)
	section(&b, "TODO/FIXME", r.todos)
	return strings.TrimSuffix(b.String(), "\n")
}

func section(b *strings.Builder, title string, l list) {
	if l.total == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s (%s)\n", title, counted(len(l.items), l.total))
	for _, it := range l.items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteByte('\n')
	}
}

func counted(shown, total int) string {
	if shown == total {
		return fmt.Sprint(total)
	}
	return fmt.Sprintf("showing %d of %d", shown, total)
}
