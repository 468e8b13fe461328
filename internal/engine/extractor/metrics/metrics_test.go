package metrics

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(values ...float64) Series {
	s := Series{Name: "s"}
	for i, v := range values {
		s.Points = append(s.Points, Point{Label: fmt.Sprint(i), Value: v})
	}
	return s
}

func TestSpikeInShortJSONSeries(t *testing.T) {
	in := `{"cpu": [{"timestamp":"t1","value":10},{"timestamp":"t2","value":99},{"timestamp":"t3","value":10},{"timestamp":"t4","value":11}]}`
	out := New().Extract(in)

	assert.Contains(t, out, "Format: json | Series: 1 | Points: 4")
	assert.Contains(t, out, "[cpu] 4 points")
	assert.Contains(t, out, "baseline=10.33")
	assert.Contains(t, out, "spike at t2: 99.00")
	assert.NotContains(t, out, "spike at t1")
	assert.NotContains(t, out, "drop at")
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		format  Format
		names   []string
		nPoints []int
	}{
		{
			name:    "array of rows",
			in:      `[{"timestamp":"a","cpu":1,"mem":5},{"timestamp":"b","cpu":2,"mem":6}]`,
			format:  FormatJSON,
			names:   []string{"cpu", "mem"},
			nPoints: []int{2, 2},
		},
		{
			name:    "named rows",
			in:      `[{"metric":"latency","value":1},{"metric":"latency","value":"2.5"},{"metric":"rps","value":9}]`,
			format:  FormatJSON,
			names:   []string{"latency", "rps"},
			nPoints: []int{2, 1},
		},
		{
			name:    "dict of number lists",
			in:      `{"rps": [1, 2, 3], "p99": [4, 5]}`,
			format:  FormatJSON,
			names:   []string{"p99", "rps"},
			nPoints: []int{2, 3},
		},
		{
			name:    "prometheus api",
			in:      `{"status":"success","data":{"resultType":"matrix","result":[{"metric":{"__name__":"up","job":"api"},"values":[[1700000000,"1"],[1700000015,"0"]]}]}}`,
			format:  FormatJSON,
			names:   []string{`up{job="api"}`},
			nPoints: []int{2},
		},
		{
			name:    "csv",
			in:      "timestamp,cpu,mem\n2024-01-01T00:00:00Z,10,200\n2024-01-01T00:01:00Z,12,n/a\n",
			format:  FormatCSV,
			names:   []string{"cpu", "mem"},
			nPoints: []int{2, 1},
		},
		{
			name:    "tsv",
			in:      "time\tlatency_ms\n1\t5\n2\t7\n",
			format:  FormatCSV,
			names:   []string{"latency_ms"},
			nPoints: []int{2},
		},
		{
			name: "prometheus text",
			in: "# HELP http_requests_total Total requests.\n# TYPE http_requests_total counter\n" +
				"http_requests_total{method=\"get\",code=\"200\"} 1027\n" +
				"http_requests_total{method=\"post\",code=\"200\"} 3\n" +
				"process_cpu_seconds_total 12.5 1700000000000\n",
			format:  FormatPrometheus,
			names:   []string{"http_requests_total", "process_cpu_seconds_total"},
			nPoints: []int{2, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, got, ok := Parse(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.format, format)
			require.Len(t, got, len(tt.names))
			for i := range got {
				assert.Equal(t, tt.names[i], got[i].Name)
				assert.Len(t, got[i].Points, tt.nPoints[i])
			}
		})
	}
}

func TestPrometheusPointLabels(t *testing.T) {
	_, got, ok := Parse("x{a=\"1\"} 5\nx{a=\"2\"} 6\ny 1 1700\n")
	require.True(t, ok)
	assert.Equal(t, `{a="1"}`, got[0].Points[0].Label)
	assert.Equal(t, "@1700", got[1].Points[0].Label)
}

func TestParseRejectsNonNumeric(t *testing.T) {
	_, _, ok := Parse("hello world\nnothing numeric here")
	assert.False(t, ok)

	out := New().Extract("hello world")
	assert.Contains(t, out, "No numeric series could be parsed")
	assert.Contains(t, out, "hello world")
}

func TestDescribe(t *testing.T) {
	st := describe([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 8, st.Count)
	assert.Equal(t, 2.0, st.Min)
	assert.Equal(t, 9.0, st.Max)
	assert.Equal(t, 5.0, st.Mean)
	assert.Equal(t, 2.0, st.Std)
	assert.Equal(t, 4.0, st.P50)
	assert.Equal(t, 9.0, st.P95, "fewer than 20 points reports max")
	assert.Equal(t, 9.0, st.P99, "fewer than 100 points reports max")
}

func TestPercentilesWithEnoughPoints(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i + 1)
	}
	st := describe(values)
	assert.Equal(t, 50.0, st.P50)
	assert.Equal(t, 95.0, st.P95)
	assert.Equal(t, 99.0, st.P99)

	st20 := describe(values[:20])
	assert.Equal(t, 19.0, st20.P95)
	assert.Equal(t, 20.0, st20.P99)
}

func TestFourSigmaPointIsAlwaysSpike(t *testing.T) {
	values := make([]float64, 16)
	for i := range values {
		values[i] = 10
	}
	values = append(values, 27)
	st := describe(values)
	require.InDelta(t, 11.0, st.Mean, 1e-9)
	require.InDelta(t, 4.0, st.Std, 1e-9)
	require.InDelta(t, st.Mean+4*st.Std, 27.0, 1e-9)

	a := Analyze(series(values...))
	require.Equal(t, 1, a.Spikes)
	assert.Equal(t, 16, a.Anomalies[0].Index)
}

func TestPointsWithinOneSigmaNeverFlagged(t *testing.T) {
	inputs := [][]float64{
		{10, 99, 10, 11},
		{1, 100},
		{100, 100, 100, 100, 10},
		{5, 6, 7, 8, 9, 10, 50, 0.1, 7, 6},
		{-5, -4, -6, 30, -5},
		{3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3.5},
	}
	for _, values := range inputs {
		a := Analyze(series(values...))
		for _, an := range a.Anomalies {
			assert.Greater(t, math.Abs(an.Value-a.Stats.Mean), a.Stats.Std, "%v flagged %v", values, an)
		}
	}
}

func TestDropAgainstBaseline(t *testing.T) {
	a := Analyze(series(100, 100, 100, 100, 10))
	require.Equal(t, 1, a.Drops)
	assert.Equal(t, 0, a.Spikes)
	an := a.Anomalies[0]
	assert.Equal(t, Drop, an.Kind)
	assert.Equal(t, 82.0, an.Reference)
	assert.InDelta(t, 87.8, an.Magnitude, 0.05)
}

func TestNoDropsWhenMeanNotPositive(t *testing.T) {
	a := Analyze(series(-10, -10, -10, -100))
	assert.Equal(t, 0, a.Drops)
}

func TestConstantSeriesHasNoAnomalies(t *testing.T) {
	a := Analyze(series(4, 4, 4, 4))
	assert.Equal(t, 0.0, a.Stats.Std)
	assert.Zero(t, a.Total)
}

func TestAnomalyCaps(t *testing.T) {
	values := make([]float64, 0, 100)
	for i := 0; i < 70; i++ {
		values = append(values, 100)
	}
	for i := 0; i < 30; i++ {
		values = append(values, 10)
	}
	a := Analyze(series(values...))
	assert.Equal(t, 30, a.Total)
	assert.Len(t, a.Anomalies, MaxAnomaliesPerSeries)

	out := render(FormatJSON, []Analysis{a})
	assert.Contains(t, out, "anomalies (30):")
	assert.Equal(t, MaxAnomaliesShown, strings.Count(out, "    - drop at"))
	assert.Contains(t, out, "... and 20 more")
}

func TestOutputCapped(t *testing.T) {
	var b strings.Builder
	b.WriteString("{")
	for i := 0; i < 300; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `"series_%03d": [1, 2, 3, 40]`, i)
	}
	b.WriteString("}")

	out := New().Extract(b.String())
	assert.LessOrEqual(t, utf8.RuneCountInString(out), MaxOutputChars)
	assert.Contains(t, out, "characters omitted]")
}

func TestNumFormatting(t *testing.T) {
	assert.Equal(t, "10.00", num(10))
	assert.Equal(t, "0.00", num(0))
	assert.Equal(t, "0.001", num(0.001))
	assert.Equal(t, "1.5e+10", num(1.5e10))
}

func TestJitterIsNotSpike(t *testing.T) {
	inputs := [][]float64{
		{50, 51, 50, 50, 52},
		{10, 12, 11, 10},
		{100, 101, 100, 100, 100, 100, 100, 100, 103},
		{0, 0.01, 0, 0.02, 0},
	}
	for _, values := range inputs {
		a := Analyze(series(values...))
		assert.Equal(t, 0, a.Spikes, "%v", values)
	}
}

func TestOutlierInShortSeriesIsSpike(t *testing.T) {
	tests := []struct {
		values []float64
		index  int
	}{
		{[]float64{10, 99, 10, 11}, 1},
		{[]float64{10, 10, 10, 99}, 3},
		{[]float64{-5, -4, -6, 30, -5}, 3},
	}
	for _, tt := range tests {
		a := Analyze(series(tt.values...))
		require.Equal(t, 1, a.Spikes, "%v", tt.values)
		assert.Equal(t, tt.index, a.Anomalies[0].Index)
		assert.Greater(t, a.Anomalies[0].Magnitude, 0.0)
	}
}
