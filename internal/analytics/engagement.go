// Package analytics summarizes the engagement journal.
package analytics

import (
	"sort"
	"time"

	"solofeed/internal/model"
)

// HourBucket counts journal events of one UTC hour by type.
type HourBucket struct {
	Hour   time.Time      `json:"hour"`
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

// HourlyEngagement aggregates events into per-hour buckets.
func HourlyEngagement(events []model.EngagementEvent) map[time.Time]map[string]int {
	buckets := make(map[time.Time]map[string]int)
	for _, e := range events {
		ts := e.Timestamp.UTC()
		key := time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), 0, 0, 0, time.UTC)
		if _, ok := buckets[key]; !ok {
			buckets[key] = make(map[string]int)
		}
		buckets[key][e.Type]++
	}
	return buckets
}

// SortedBucketKeys returns sorted hour keys.
func SortedBucketKeys(m map[time.Time]map[string]int) []time.Time {
	keys := make([]time.Time, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	return keys
}

// Hourly returns the buckets in chronological order.
func Hourly(events []model.EngagementEvent) []HourBucket {
	m := HourlyEngagement(events)
	out := make([]HourBucket, 0, len(m))
	for _, k := range SortedBucketKeys(m) {
		total := 0
		for _, n := range m[k] {
			total += n
		}
		out = append(out, HourBucket{Hour: k, Counts: m[k], Total: total})
	}
	return out
}
