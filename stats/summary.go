package stats

import (
	"math"
	"sort"
)

const p95Percent = 95

// Summary is the aggregate view of a sequence of outcomes.
//
// For an empty sequence only Total is set; Aggregates is nil and is left out of the JSON form, so
// the summary encodes as {"total":0}.
type Summary struct {
	Total int `json:"total"`
	*Aggregates
}

// Aggregates holds the statistics that are only defined for a non-empty sequence.
type Aggregates struct {
	Success            int                    `json:"success"`
	Fail               int                    `json:"fail"`
	SuccessPct         float64                `json:"success_pct"`
	AvgMillis          float64                `json:"avg_ms"`
	MethodStats        map[string]MethodStats `json:"method_stats"`
	StatusDistribution map[int]int            `json:"status_distribution"`
}

// MethodStats are the statistics for all calls made with one HTTP method.
type MethodStats struct {
	Count     int     `json:"count"`
	Success   int     `json:"success"`
	Fail      int     `json:"fail"`
	AvgMillis float64 `json:"avg_ms"`
	P95Millis float64 `json:"p95_ms"`
}

// Summarize computes a Summary for the given outcomes. Latency values are rounded to two decimal
// places.
func Summarize(outcomes []RequestOutcome) Summary {
	if len(outcomes) == 0 {
		return Summary{Total: 0}
	}
	agg := &Aggregates{
		MethodStats:        make(map[string]MethodStats),
		StatusDistribution: make(map[int]int),
	}
	latenciesByMethod := make(map[string][]float64)
	var totalMillis float64
	for _, o := range outcomes {
		ms := agg.MethodStats[o.Method]
		ms.Count++
		if o.OK {
			agg.Success++
			ms.Success++
		} else {
			ms.Fail++
		}
		agg.MethodStats[o.Method] = ms
		agg.StatusDistribution[o.StatusCode]++
		latenciesByMethod[o.Method] = append(latenciesByMethod[o.Method], o.ElapsedMillis)
		totalMillis += o.ElapsedMillis
	}
	total := len(outcomes)
	agg.Fail = total - agg.Success
	agg.SuccessPct = round2(float64(agg.Success) / float64(total) * 100)
	agg.AvgMillis = round2(totalMillis / float64(total))

	for method, latencies := range latenciesByMethod {
		ms := agg.MethodStats[method]
		ms.AvgMillis = round2(mean(latencies))
		ms.P95Millis = round2(Percentile(latencies, p95Percent))
		agg.MethodStats[method] = ms
	}
	return Summary{Total: total, Aggregates: agg}
}

// Percentile returns the nearest-rank percentile of values: the element at 1-indexed rank
// ceil(p/100 * n) of the ascending sorted values. The input slice is not modified. It returns
// zero for an empty slice.
func Percentile(values []float64, p int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	rank := (p*n + 99) / 100 // ceil without floating point error
	index := rank - 1
	if index < 0 {
		index = 0
	}
	if index >= n {
		index = n - 1
	}
	return sorted[index]
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
