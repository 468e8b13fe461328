package structured

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Value is a parsed configuration node: *Object, List, Scalar.
type Value any

// Field is one key of an Object.
type Field struct {
	Key   string
	Value Value
}

// Object is a mapping that keeps its keys in source order.
type Object struct {
	Fields []Field
}

// List is a sequence of values.
type List []Value

// Scalar is a leaf. Quoted marks string values, as opposed to numbers,
// booleans and nulls.
type Scalar struct {
	Text   string
	Quoted bool
}

// Format names the parser that produced a tree.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
	FormatLines Format = "key_value"
)

var errNotMapping = errors.New("not a mapping")

// Parse tries JSON, YAML (mappings only) and TOML in turn, then falls back
// to the permissive line parser, which always succeeds.
func Parse(content string) (Format, Value) {
	if v, err := parseJSON(content); err == nil {
		return FormatJSON, v
	}
	if v, err := parseYAML(content); err == nil {
		return FormatYAML, v
	}
	if v, err := parseTOML(content); err == nil {
		return FormatTOML, v
	}
	return FormatLines, parseLines(content)
}

func parseJSON(content string) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	d, ok := tok.(json.Delim)
	if !ok || (d != '{' && d != '[') {
		return nil, fmt.Errorf("json: top level is not an object or array")
	}
	v, err := decodeJSON(dec, tok)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("json: trailing data")
	}
	return v, nil
}

// decodeJSON builds a Value from the token stream, keeping key order.
func decodeJSON(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := &Object{}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("json: object key is %T", kt)
				}
				vt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				v, err := decodeJSON(dec, vt)
				if err != nil {
					return nil, err
				}
				obj.Fields = append(obj.Fields, Field{Key: key, Value: v})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			list := List{}
			for dec.More() {
				vt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				v, err := decodeJSON(dec, vt)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		}
		return nil, fmt.Errorf("json: unexpected delimiter %v", t)
	case string:
		return Scalar{Text: t, Quoted: true}, nil
	case json.Number:
		return Scalar{Text: t.String()}, nil
	case bool:
		return Scalar{Text: fmt.Sprint(t)}, nil
	case nil:
		return Scalar{Text: "null"}, nil
	}
	return nil, fmt.Errorf("json: unexpected token %T", tok)
}

func parseYAML(content string) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errNotMapping
	}
	return fromYAML(doc.Content[0], 0), nil
}

const maxAliasDepth = 32

func fromYAML(n *yaml.Node, depth int) Value {
	switch n.Kind {
	case yaml.MappingNode:
		obj := &Object{}
		for i := 0; i+1 < len(n.Content); i += 2 {
			obj.Fields = append(obj.Fields, Field{
				Key:   n.Content[i].Value,
				Value: fromYAML(n.Content[i+1], depth),
			})
		}
		return obj
	case yaml.SequenceNode:
		list := List{}
		for _, c := range n.Content {
			list = append(list, fromYAML(c, depth))
		}
		return list
	case yaml.AliasNode:
		if n.Alias == nil || depth >= maxAliasDepth {
			return Scalar{Text: "*" + n.Value}
		}
		return fromYAML(n.Alias, depth+1)
	case yaml.DocumentNode:
		if len(n.Content) > 0 {
			return fromYAML(n.Content[0], depth)
		}
		return Scalar{Text: "null"}
	}
	return Scalar{Text: n.Value, Quoted: n.ShortTag() == "!!str"}
}

func parseTOML(content string) (Value, error) {
	var m map[string]any
	if err := toml.Unmarshal([]byte(content), &m); err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, errNotMapping
	}
	return fromGo(m), nil
}

// fromGo converts decoded TOML into a Value. TOML tables are unordered
// once decoded, so keys are sorted.
func fromGo(v any) Value {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := &Object{}
		for _, k := range keys {
			obj.Fields = append(obj.Fields, Field{Key: k, Value: fromGo(t[k])})
		}
		return obj
	case []any:
		list := List{}
		for _, e := range t {
			list = append(list, fromGo(e))
		}
		return list
	case []map[string]any:
		list := List{}
		for _, e := range t {
			list = append(list, fromGo(e))
		}
		return list
	case string:
		return Scalar{Text: t, Quoted: true}
	case nil:
		return Scalar{Text: "null"}
	}
	return Scalar{Text: fmt.Sprint(v)}
}

// parseLines reads key=value / key: value pairs, [section] headers and
// #/; comments. Unrecognized lines are skipped.
func parseLines(content string) Value {
	root := &Object{}
	cur := root
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			name := strings.TrimSpace(line[1 : len(line)-1])
			if name == "" {
				continue
			}
			cur = &Object{}
			root.Fields = append(root.Fields, Field{Key: name, Value: cur})
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, val, ok := splitPair(line)
		if !ok {
			continue
		}
		cur.Fields = append(cur.Fields, Field{Key: key, Value: lineScalar(val)})
	}
	return root
}

func splitPair(line string) (string, string, bool) {
	i := strings.IndexAny(line, "=:")
	if i <= 0 {
		return "", "", false
	}
	key := strings.TrimSpace(line[:i])
	if key == "" || (strings.ContainsAny(key, " \t") && !strings.HasPrefix(key, "\"")) {
		return "", "", false
	}
	return strings.Trim(key, `"'`), strings.TrimSpace(line[i+1:]), true
}

func lineScalar(val string) Scalar {
	if len(val) >= 2 && (val[0] == '"' && val[len(val)-1] == '"' || val[0] == '\'' && val[len(val)-1] == '\'') {
		return Scalar{Text: val[1 : len(val)-1], Quoted: true}
	}
	if i := strings.Index(val, " #"); i >= 0 {
		val = strings.TrimSpace(val[:i])
	}
	switch strings.ToLower(val) {
	case "true", "false", "null", "":
		return Scalar{Text: val}
	}
	for _, r := range val {
		if (r < '0' || r > '9') && r != '.' && r != '-' && r != '+' {
			return Scalar{Text: val, Quoted: true}
		}
	}
	return Scalar{Text: val}
}
