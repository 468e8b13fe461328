package source

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// grammar returns the tree-sitter language for lang, or nil when there is
// no grammar for it.
func grammar(lang string) *sitter.Language {
	switch lang {
	case LangGo:
		return sitter.NewLanguage(golang.Language())
	case LangPython:
		return sitter.NewLanguage(python.Language())
	case LangJavaScript:
		return sitter.NewLanguage(javascript.Language())
	case LangTypeScript:
		return sitter.NewLanguage(typescript.LanguageTypescript())
	case LangTSX:
		return sitter.NewLanguage(typescript.LanguageTSX())
	}
	return nil
}

// parseTree extracts structure from a syntax tree. It returns false when
// no grammar exists for lang or the parse contains errors.
func parseTree(lang string, content []byte, r *report) bool {
	language := grammar(lang)
	if language == nil {
		return false
	}
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(language); err != nil {
		return false
	}
	tree := parser.Parse(content, nil)
	if tree == nil {
		return false
	}
	defer tree.Close()
	root := tree.RootNode()
	if root == nil || root.HasError() {
		return false
	}

	w := &walker{src: content, r: r}
	switch lang {
	case LangGo:
		w.goNode(root)
	case LangPython:
		w.pyNode(root, scopeModule, nil)
	default:
		w.jsNode(root, scopeModule, nil)
	}
	return true
}

type scope int

const (
	scopeModule scope = iota
	scopeClass
	scopeBody
)

type walker struct {
	src []byte
	r   *report
}

func (w *walker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(w.src)
}

func (w *walker) field(n *sitter.Node, name string) string {
	return w.text(n.ChildByFieldName(name))
}

func line(n *sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}

func children(n *sitter.Node) []*sitter.Node {
	count := uint(n.ChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := uint(0); i < count; i++ {
		if c := n.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Go

func (w *walker) goNode(n *sitter.Node) {
	switch n.Kind() {
	case "import_spec":
		spec := w.field(n, "path")
		if name := w.field(n, "name"); name != "" {
			spec = name + " " + spec
		}
		w.r.imports.add(spec)
		return
	case "type_spec":
		w.goType(n)
	case "function_declaration":
		w.r.funcs.add("func " + w.field(n, "name") + w.field(n, "parameters") + " " + w.field(n, "result"))
	case "method_declaration":
		w.r.funcs.add("func " + w.field(n, "receiver") + " " + w.field(n, "name") + w.field(n, "parameters") + " " + w.field(n, "result"))
	case "if_statement":
		if cond := w.field(n, "condition"); strings.Contains(cond, "err") && strings.Contains(cond, "!= nil") {
			w.r.addHandler(line(n), "if "+cond)
		}
	case "call_expression":
		if w.field(n, "function") == "recover" {
			w.r.addHandler(line(n), "recover()")
		}
	case "comment":
		w.r.addTodo(line(n), w.text(n))
		return
	}
	for _, c := range children(n) {
		w.goNode(c)
	}
}

func (w *walker) goType(n *sitter.Node) {
	name := w.field(n, "name")
	typ := n.ChildByFieldName("type")
	if typ == nil {
		return
	}
	switch typ.Kind() {
	case "struct_type":
		var bases []string
		var members []string
		for _, list := range children(typ) {
			if list.Kind() != "field_declaration_list" {
				continue
			}
			for _, f := range children(list) {
				if f.Kind() != "field_declaration" {
					continue
				}
				if fname := w.field(f, "name"); fname != "" {
					members = append(members, fname)
				} else {
					bases = append(bases, strings.TrimPrefix(w.field(f, "type"), "*"))
				}
			}
		}
		t := w.r.addType("struct", name, bases)
		for _, m := range members {
			w.r.addMember(t, m)
		}
	case "interface_type":
		var bases []string
		var members []string
		for _, c := range children(typ) {
			switch c.Kind() {
			case "method_elem", "method_spec":
				members = append(members, w.field(c, "name"))
			case "type_elem", "constraint_elem":
				bases = append(bases, w.text(c))
			}
		}
		t := w.r.addType("interface", name, bases)
		for _, m := range members {
			w.r.addMember(t, m)
		}
	default:
		w.r.addType("type", name, []string{w.text(typ)})
	}
}

// Python

func (w *walker) pyNode(n *sitter.Node, sc scope, class *typeDef) {
	switch n.Kind() {
	case "import_statement", "import_from_statement", "future_import_statement":
		w.r.imports.add(w.text(n))
		return
	case "class_definition":
		w.pyClass(n)
		return
	case "function_definition":
		name := w.field(n, "name")
		sig := "def " + name + w.field(n, "parameters")
		if ret := w.field(n, "return_type"); ret != "" {
			sig += " -> " + ret
		}
		switch sc {
		case scopeModule:
			w.r.funcs.add(sig)
		case scopeClass:
			w.r.addMember(class, name)
			if class != nil {
				w.r.funcs.add("def " + class.name + "." + strings.TrimPrefix(sig, "def "))
			}
		}
		if body := n.ChildByFieldName("body"); body != nil {
			w.pyNode(body, scopeBody, nil)
		}
		return
	case "except_clause", "except_group_clause":
		w.r.addHandler(line(n), "except "+w.pyExceptTypes(n))
	case "comment":
		w.r.addTodo(line(n), w.text(n))
		return
	}
	for _, c := range children(n) {
		w.pyNode(c, sc, class)
	}
}

func (w *walker) pyClass(n *sitter.Node) {
	var bases []string
	if sup := n.ChildByFieldName("superclasses"); sup != nil {
		for _, c := range children(sup) {
			if c.IsNamed() && c.Kind() != "comment" {
				bases = append(bases, w.text(c))
			}
		}
	}
	t := w.r.addType("class", w.field(n, "name"), bases)
	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for _, c := range children(body) {
		switch c.Kind() {
		case "expression_statement":
			for _, a := range children(c) {
				if a.Kind() == "assignment" {
					w.r.addMember(t, w.field(a, "left"))
				}
			}
		default:
			w.pyNode(c, scopeClass, t)
		}
	}
}

func (w *walker) pyExceptTypes(n *sitter.Node) string {
	for _, c := range children(n) {
		if !c.IsNamed() || c.Kind() == "block" || c.Kind() == "comment" {
			continue
		}
		what := w.text(c)
		if i := strings.Index(what, " as "); i >= 0 {
			what = what[:i]
		}
		return strings.TrimSpace(what)
	}
	return "(all)"
}

// JavaScript and TypeScript

func (w *walker) jsNode(n *sitter.Node, sc scope, class *typeDef) {
	switch n.Kind() {
	case "import_statement":
		w.r.imports.add(w.text(n))
		return
	case "class_declaration", "abstract_class_declaration", "class":
		w.jsClass(n)
		return
	case "interface_declaration":
		w.tsInterface(n)
		return
	case "type_alias_declaration":
		w.r.addType("type", w.field(n, "name"), []string{w.field(n, "value")})
		return
	case "enum_declaration":
		w.r.addType("enum", w.field(n, "name"), nil)
		return
	case "function_declaration", "generator_function_declaration":
		if sc == scopeModule {
			w.r.funcs.add("function " + w.field(n, "name") + w.field(n, "parameters") + w.field(n, "return_type"))
		}
		if body := n.ChildByFieldName("body"); body != nil {
			w.jsNode(body, scopeBody, nil)
		}
		return
	case "method_definition":
		name := w.field(n, "name")
		w.r.addMember(class, name)
		if class != nil {
			w.r.funcs.add(class.name + "." + name + w.field(n, "parameters") + w.field(n, "return_type"))
		}
		if body := n.ChildByFieldName("body"); body != nil {
			w.jsNode(body, scopeBody, nil)
		}
		return
	case "field_definition":
		w.r.addMember(class, w.field(n, "property"))
	case "public_field_definition":
		w.r.addMember(class, w.field(n, "name"))
	case "variable_declarator":
		if sc == scopeModule {
			if v := n.ChildByFieldName("value"); v != nil && isFunctionValue(v.Kind()) {
				params := w.field(v, "parameters")
				if params == "" {
					params = w.field(v, "parameter")
				}
				w.r.funcs.add("const " + w.field(n, "name") + " = " + params + w.field(v, "return_type") + " =>")
			}
		}
	case "catch_clause":
		what := "catch"
		if p := w.field(n, "parameter"); p != "" {
			what += " (" + p + w.field(n, "type") + ")"
		}
		w.r.addHandler(line(n), what)
	case "comment":
		w.r.addTodo(line(n), w.text(n))
		return
	}
	for _, c := range children(n) {
		w.jsNode(c, sc, class)
	}
}

func isFunctionValue(kind string) bool {
	switch kind {
	case "arrow_function", "function_expression", "function", "generator_function":
		return true
	}
	return false
}

func (w *walker) jsClass(n *sitter.Node) {
	var bases []string
	for _, c := range children(n) {
		if c.Kind() == "class_heritage" {
			bases = append(bases, heritage(w.text(c))...)
		}
	}
	t := w.r.addType("class", w.field(n, "name"), bases)
	if body := n.ChildByFieldName("body"); body != nil {
		for _, c := range children(body) {
			w.jsNode(c, scopeClass, t)
		}
	}
}

func (w *walker) tsInterface(n *sitter.Node) {
	var bases []string
	for _, c := range children(n) {
		if c.Kind() == "extends_type_clause" {
			bases = append(bases, heritage(w.text(c))...)
		}
	}
	t := w.r.addType("interface", w.field(n, "name"), bases)
	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for _, c := range children(body) {
		switch c.Kind() {
		case "property_signature", "method_signature":
			w.r.addMember(t, w.field(c, "name"))
		}
	}
}

// heritage splits "extends A implements B, C" into type names.
func heritage(s string) []string {
	var out []string
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\n' || r == '\t' }) {
		switch f {
		case "extends", "implements", "":
			continue
		}
		out = append(out, f)
	}
	return out
}
