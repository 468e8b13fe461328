package metrics

import (
	"math"
	"sort"
)

// Thresholds for statistics and anomaly detection.
const (
	SpikeSigma            = 3.0
	SpikeMinRatio         = 2.0
	spikeZFraction        = 0.9
	DropRatio             = 0.5
	P95MinPoints          = 20
	P99MinPoints          = 100
	MaxAnomaliesPerSeries = 20
)

// Stats summarizes one series. Std is the population standard deviation.
type Stats struct {
	Count    int
	Min      float64
	Max      float64
	Mean     float64
	Std      float64
	P50      float64
	P95      float64
	P99      float64
	Baseline float64 // mean of the points not flagged as spikes
}

// AnomalyKind is either a spike or a drop.
type AnomalyKind string

const (
	Spike AnomalyKind = "spike"
	Drop  AnomalyKind = "drop"
)

// Anomaly is a flagged point. Magnitude is in standard deviations above the
// reference mean for spikes and in percent below the baseline for drops.
type Anomaly struct {
	Kind      AnomalyKind
	Index     int
	Label     string
	Value     float64
	Reference float64
	Magnitude float64
}

// Analysis is the statistics and anomalies of one series.
type Analysis struct {
	Series    Series
	Stats     Stats
	Anomalies []Anomaly // capped at MaxAnomaliesPerSeries
	Total     int       // anomalies found before the cap
	Spikes    int
	Drops     int
}

// Analyze computes stats and flags anomalies for s. s must have points.
func Analyze(s Series) Analysis {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	st := describe(values)
	a := Analysis{Series: s, Stats: st}

	spikes := make([]bool, len(values))
	var sum, sumSq float64
	for _, v := range values {
		sum += v
		sumSq += v * v
	}
	for i, v := range values {
		ref, sigma, ok := spikeReference(v, st, sum, sumSq, len(values))
		if !ok {
			continue
		}
		spikes[i] = true
		a.add(Anomaly{
			Kind:      Spike,
			Index:     i,
			Label:     s.Points[i].Label,
			Value:     v,
			Reference: ref,
			Magnitude: (v - ref) / sigma,
		})
		a.Spikes++
	}

	var baseSum float64
	baseN := 0
	for i, v := range values {
		if !spikes[i] {
			baseSum += v
			baseN++
		}
	}
	st.Baseline = st.Mean
	if baseN > 0 {
		st.Baseline = baseSum / float64(baseN)
	}
	a.Stats = st

	if st.Baseline > 0 {
		for i, v := range values {
			// Points within one standard deviation of the mean are never flagged.
			if spikes[i] || v >= st.Baseline*DropRatio || v >= st.Mean-st.Std {
				continue
			}
			a.add(Anomaly{
				Kind:      Drop,
				Index:     i,
				Label:     s.Points[i].Label,
				Value:     v,
				Reference: st.Baseline,
				Magnitude: (st.Baseline - v) / st.Baseline * 100,
			})
			a.Drops++
		}
		sort.SliceStable(a.Anomalies, func(i, j int) bool { return a.Anomalies[i].Index < a.Anomalies[j].Index })
	}
	return a
}

func (a *Analysis) add(an Anomaly) {
	a.Total++
	if len(a.Anomalies) < MaxAnomaliesPerSeries {
		a.Anomalies = append(a.Anomalies, an)
	}
}

// spikeReference decides whether v is a spike: it exceeds mean +
// SpikeSigma*std of the whole series, or it is an outlier against the series
// with v left out. Series with zero deviation have no spikes.
//
// A short series cannot put any point 3σ above its own mean (the bound is
// sqrt(n-1)), so the leave-one-out test stands in for it. It only applies
// when v also sits near that bound in the full series and is at least
// SpikeMinRatio times the leave-one-out mean, so ordinary jitter in a flat
// series is never flagged.
func spikeReference(v float64, st Stats, sum, sumSq float64, n int) (ref, sigma float64, ok bool) {
	if st.Std == 0 {
		return 0, 0, false
	}
	if v > st.Mean+SpikeSigma*st.Std {
		return st.Mean, st.Std, true
	}
	if n <= 2 {
		return 0, 0, false
	}
	z := (v - st.Mean) / st.Std
	if z < math.Min(SpikeSigma, spikeZFraction*math.Sqrt(float64(n-1))) {
		return 0, 0, false
	}
	m := float64(n - 1)
	looMean := (sum - v) / m
	if v-looMean < (SpikeMinRatio-1)*math.Abs(looMean) {
		return 0, 0, false
	}
	looVar := (sumSq-v*v)/m - looMean*looMean
	if looVar <= 0 {
		return looMean, st.Std, true
	}
	looStd := math.Sqrt(looVar)
	if v > looMean+SpikeSigma*looStd {
		return looMean, looStd, true
	}
	return 0, 0, false
}

func describe(values []float64) Stats {
	n := len(values)
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}

	st := Stats{
		Count: n,
		Min:   sorted[0],
		Max:   sorted[n-1],
		Mean:  mean,
		Std:   math.Sqrt(sq / float64(n)),
		P50:   percentile(sorted, 50),
		P95:   sorted[n-1],
		P99:   sorted[n-1],
	}
	if n >= P95MinPoints {
		st.P95 = percentile(sorted, 95)
	}
	if n >= P99MinPoints {
		st.P99 = percentile(sorted, 99)
	}
	return st
}

// percentile uses the nearest-rank method on sorted values.
func percentile(sorted []float64, p float64) float64 {
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}
