// Package aggregator turns per-document topic assignments into per-date topic
// proportions.
package aggregator

import (
	"sort"
	"time"

	"topicviz/internal/domain"
)

type cellKey struct {
	date  time.Time
	topic int
}

// LabelMap builds topic -> label. When a topic occurs more than once the last
// row in file order wins.
func LabelMap(labels []domain.LabelRow) map[int]string {
	m := make(map[int]string, len(labels))
	for _, l := range labels {
		m[l.Topic] = l.Label
	}
	return m
}

// Aggregate counts rows per (date, topic), divides by the per-date total and
// attaches topic labels. Rows are ordered by date, then topic. Topics missing
// from labels keep an empty label with Labeled set to false.
func Aggregate(docs []domain.DocumentRow, labels []domain.LabelRow) []domain.AggregatedRow {
	counts := make(map[cellKey]int)
	totals := make(map[time.Time]int)
	for _, d := range docs {
		counts[cellKey{date: d.Date, topic: d.Topic}]++
		totals[d.Date]++
	}

	keys := make([]cellKey, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].date.Equal(keys[j].date) {
			return keys[i].date.Before(keys[j].date)
		}
		return keys[i].topic < keys[j].topic
	})

	labelOf := LabelMap(labels)
	out := make([]domain.AggregatedRow, 0, len(keys))
	for _, k := range keys {
		count := counts[k]
		total := totals[k.date]
		label, ok := labelOf[k.topic]
		out = append(out, domain.AggregatedRow{
			Date:         k.date,
			Topic:        k.topic,
			Count:        count,
			TotalForDate: total,
			Proportion:   float64(count) / float64(total),
			TopicLabel:   label,
			Labeled:      ok,
		})
	}
	return out
}

// Dates returns the distinct dates of rows in ascending order.
func Dates(rows []domain.AggregatedRow) []time.Time {
	var out []time.Time
	for _, r := range rows {
		if n := len(out); n == 0 || !out[n-1].Equal(r.Date) {
			out = append(out, r.Date)
		}
	}
	return out
}

// Topics returns the distinct topic ids of rows in ascending order.
func Topics(rows []domain.AggregatedRow) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, r := range rows {
		if _, ok := seen[r.Topic]; ok {
			continue
		}
		seen[r.Topic] = struct{}{}
		out = append(out, r.Topic)
	}
	sort.Ints(out)
	return out
}
