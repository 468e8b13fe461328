package structured

import (
	"strconv"
	"strings"
)

const indentUnit = "  "

// renderer writes a Value as indented key/value lines.
type renderer struct {
	lines []string
}

// Render returns the indented text form of v, one entry per line.
func Render(v Value) []string {
	r := &renderer{}
	switch t := v.(type) {
	case *Object:
		r.object(t, 0)
	case List:
		r.list(t, 0)
	case Scalar:
		r.emit(0, scalarText(t))
	}
	return r.lines
}

func (r *renderer) emit(indent int, s string) {
	r.lines = append(r.lines, strings.Repeat(indentUnit, indent)+s)
}

func (r *renderer) object(obj *Object, indent int) {
	for _, f := range obj.Fields {
		r.field(f.Key, f.Value, indent)
	}
}

func (r *renderer) field(key string, v Value, indent int) {
	switch t := v.(type) {
	case *Object:
		if len(t.Fields) == 0 {
			r.emit(indent, key+": {}")
			return
		}
		r.emit(indent, key+":")
		r.object(t, indent+1)
	case List:
		if len(t) == 0 {
			r.emit(indent, key+": []")
			return
		}
		r.emit(indent, key+":")
		r.list(t, indent+1)
	case Scalar:
		r.emit(indent, key+": "+scalarText(t))
	}
}

func (r *renderer) list(l List, indent int) {
	for _, e := range l {
		switch t := e.(type) {
		case *Object:
			if len(t.Fields) == 0 {
				r.emit(indent, "- {}")
				continue
			}
			start := len(r.lines)
			r.object(t, indent+1)
			inner := strings.Repeat(indentUnit, indent+1)
			r.lines[start] = strings.Repeat(indentUnit, indent) + "- " + strings.TrimPrefix(r.lines[start], inner)
		case List:
			if len(t) == 0 {
				r.emit(indent, "- []")
				continue
			}
			r.emit(indent, "-")
			r.list(t, indent+1)
		case Scalar:
			r.emit(indent, "- "+scalarText(t))
		}
	}
}

func scalarText(s Scalar) string {
	if s.Quoted && (s.Text == "" || strings.ContainsAny(s.Text, "\n\r\t") || strings.TrimSpace(s.Text) != s.Text) {
		return strconv.Quote(s.Text)
	}
	return s.Text
}

// countLeaves returns the number of scalar values in v.
func countLeaves(v Value) int {
	switch t := v.(type) {
	case *Object:
		n := 0
		for _, f := range t.Fields {
			n += countLeaves(f.Value)
		}
		return n
	case List:
		n := 0
		for _, e := range t {
			n += countLeaves(e)
		}
		return n
	case Scalar:
		return 1
	}
	return 0
}
