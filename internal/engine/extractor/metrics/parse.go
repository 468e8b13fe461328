package metrics

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Point is one observation of a series. Label is the point's timestamp when
// the input carries one, otherwise its position.
type Point struct {
	Label string
	Value float64
}

// Series is a named sequence of points in input order.
type Series struct {
	Name   string
	Points []Point
}

// Format names the parser that produced a set of series.
type Format string

const (
	FormatJSON       Format = "json"
	FormatCSV        Format = "csv"
	FormatPrometheus Format = "prometheus"
)

type parser struct {
	format Format
	parse  func(content string) []Series
}

// parsers are tried in order until one yields a non-empty series.
var parsers = []parser{
	{FormatJSON, parseJSON},
	{FormatCSV, parseCSV},
	{FormatPrometheus, parsePrometheus},
}

// Parse runs the parsers in order and returns the first non-empty result.
func Parse(content string) (Format, []Series, bool) {
	for _, p := range parsers {
		if series := nonEmpty(p.parse(content)); len(series) > 0 {
			return p.format, series, true
		}
	}
	return "", nil, false
}

func nonEmpty(series []Series) []Series {
	out := series[:0]
	for _, s := range series {
		if len(s.Points) > 0 {
			out = append(out, s)
		}
	}
	return out
}

var timestampKeys = map[string]bool{
	"timestamp": true, "time": true, "ts": true, "datetime": true, "date": true, "@timestamp": true, "t": true,
}

var nameKeys = []string{"metric", "name", "series", "__name__"}

func parseJSON(content string) []Series {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case []any:
		return seriesFromRows(t)
	case map[string]any:
		if s := seriesFromPromAPI(t); len(s) > 0 {
			return s
		}
		return seriesFromDict(t)
	}
	return nil
}

// seriesFromRows handles an array of objects. Rows carrying a name key and
// a "value" become one series per name; otherwise every numeric field is a
// series of its own.
func seriesFromRows(rows []any) []Series {
	acc := newAccumulator()
	for i, r := range rows {
		obj, ok := r.(map[string]any)
		if !ok {
			if f, ok := number(r); ok {
				acc.add("value", strconv.Itoa(i), f)
			}
			continue
		}
		label := rowLabel(obj, i)
		if name, ok := rowName(obj); ok {
			if f, ok := number(obj["value"]); ok {
				acc.add(name, label, f)
				continue
			}
		}
		for _, k := range sortedKeys(obj) {
			if timestampKeys[strings.ToLower(k)] {
				continue
			}
			if f, ok := number(obj[k]); ok {
				acc.add(k, label, f)
			}
		}
	}
	return acc.series()
}

// seriesFromDict handles {"name": [...], ...} where each value is a list of
// numbers, of {"timestamp", "value"} objects, or of [ts, value] pairs.
func seriesFromDict(obj map[string]any) []Series {
	var out []Series
	for _, name := range sortedKeys(obj) {
		s := Series{Name: name}
		list, ok := obj[name].([]any)
		if !ok {
			if f, ok := number(obj[name]); ok {
				s.Points = []Point{{Label: "0", Value: f}}
				out = append(out, s)
			}
			continue
		}
		for i, item := range list {
			label, f, ok := pointFrom(item, i)
			if ok {
				s.Points = append(s.Points, Point{Label: label, Value: f})
			}
		}
		out = append(out, s)
	}
	return out
}

// seriesFromPromAPI handles a Prometheus HTTP API query response:
// {"data": {"result": [{"metric": {...}, "values": [[ts, "v"], ...]}]}}.
func seriesFromPromAPI(obj map[string]any) []Series {
	data, ok := obj["data"].(map[string]any)
	if !ok {
		return nil
	}
	results, ok := data["result"].([]any)
	if !ok {
		return nil
	}
	var out []Series
	for i, r := range results {
		res, ok := r.(map[string]any)
		if !ok {
			continue
		}
		s := Series{Name: promSeriesName(res["metric"], i)}
		values, _ := res["values"].([]any)
		if v, ok := res["value"].([]any); ok {
			values = []any{v}
		}
		for j, item := range values {
			if label, f, ok := pointFrom(item, j); ok {
				s.Points = append(s.Points, Point{Label: label, Value: f})
			}
		}
		out = append(out, s)
	}
	return out
}

func promSeriesName(m any, i int) string {
	labels, ok := m.(map[string]any)
	if !ok || len(labels) == 0 {
		return "series_" + strconv.Itoa(i)
	}
	name, _ := labels["__name__"].(string)
	var parts []string
	for _, k := range sortedKeys(labels) {
		if k == "__name__" {
			continue
		}
		parts = append(parts, k+"="+strconv.Quote(toString(labels[k])))
	}
	if len(parts) == 0 {
		if name == "" {
			return "series_" + strconv.Itoa(i)
		}
		return name
	}
	return name + "{" + strings.Join(parts, ",") + "}"
}

func pointFrom(item any, i int) (string, float64, bool) {
	switch t := item.(type) {
	case []any:
		if len(t) != 2 {
			return "", 0, false
		}
		f, ok := number(t[1])
		return toString(t[0]), f, ok
	case map[string]any:
		label := rowLabel(t, i)
		if f, ok := number(t["value"]); ok {
			return label, f, true
		}
		for _, k := range sortedKeys(t) {
			if timestampKeys[strings.ToLower(k)] {
				continue
			}
			if f, ok := number(t[k]); ok {
				return label, f, true
			}
		}
		return "", 0, false
	default:
		f, ok := number(item)
		return strconv.Itoa(i), f, ok
	}
}

func rowLabel(obj map[string]any, i int) string {
	for _, k := range sortedKeys(obj) {
		if timestampKeys[strings.ToLower(k)] {
			if s := toString(obj[k]); s != "" {
				return s
			}
		}
	}
	return strconv.Itoa(i)
}

func rowName(obj map[string]any) (string, bool) {
	for _, k := range nameKeys {
		if s, ok := obj[k].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func parseCSV(content string) []Series {
	first, _, _ := strings.Cut(content, "\n")
	r := csv.NewReader(strings.NewReader(content))
	if strings.Contains(first, "\t") && !strings.Contains(first, ",") {
		r.Comma = '\t'
	}
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comment = '#'

	header, err := r.Read()
	if err != nil || len(header) < 2 {
		return nil
	}
	series := make([]Series, len(header)-1)
	for i, h := range header[1:] {
		series[i].Name = strings.TrimSpace(h)
	}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil
		}
		if len(rec) == 0 {
			continue
		}
		label := strings.TrimSpace(rec[0])
		for i := 1; i < len(rec) && i < len(header); i++ {
			if f, ok := parseFloat(rec[i]); ok {
				series[i-1].Points = append(series[i-1].Points, Point{Label: label, Value: f})
			}
		}
	}
	return series
}

var promLine = regexp.MustCompile(`^([a-zA-Z_:][a-zA-Z0-9_:]*)(\{[^}]*\})?\s+(\S+)(?:\s+(-?\d+))?\s*$`)

// parsePrometheus reads the text exposition format. Samples are grouped by
// metric name; each label set or timestamp becomes a point label.
func parsePrometheus(content string) []Series {
	acc := newAccumulator()
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := promLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		f, ok := parseFloat(m[3])
		if !ok {
			continue
		}
		label := m[2]
		if m[4] != "" {
			label = strings.TrimSpace(label + " @" + m[4])
		}
		if label == "" {
			label = strconv.Itoa(acc.count(m[1]))
		}
		acc.add(m[1], label, f)
	}
	return acc.series()
}

// accumulator collects points per series name, remembering first-seen order.
type accumulator struct {
	order []string
	byKey map[string]*Series
}

func newAccumulator() *accumulator {
	return &accumulator{byKey: make(map[string]*Series)}
}

func (a *accumulator) add(name, label string, v float64) {
	s, ok := a.byKey[name]
	if !ok {
		s = &Series{Name: name}
		a.byKey[name] = s
		a.order = append(a.order, name)
	}
	s.Points = append(s.Points, Point{Label: label, Value: v})
}

func (a *accumulator) count(name string) int {
	if s, ok := a.byKey[name]; ok {
		return len(s.Points)
	}
	return 0
}

func (a *accumulator) series() []Series {
	out := make([]Series, 0, len(a.order))
	for _, n := range a.order {
		out = append(out, *a.byKey[n])
	}
	return out
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		return parseFloat(t.String())
	case float64:
		return t, true
	case string:
		return parseFloat(t)
	}
	return 0, false
}

// parseFloat accepts finite numbers only.
func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case nil:
		return ""
	}
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(v)
	return strings.TrimSpace(buf.String())
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
