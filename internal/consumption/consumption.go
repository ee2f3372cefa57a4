// Package consumption aggregates raw per-device samples into the 24 hourly
// buckets the charts render.
package consumption

import (
	"github.com/Simi445/DMS-K8S/internal/api"
)

// HourlyAverages buckets samples by the hour-of-day of their timestamp and
// returns the mean per bucket. Hours with no samples report 0.
func HourlyAverages(samples []api.Sample) [24]float64 {
	var sums [24]float64
	var counts [24]int
	for _, s := range samples {
		if s.Timestamp.IsZero() {
			continue
		}
		hour := s.Timestamp.Hour()
		sums[hour] += float64(s.Consumption)
		counts[hour]++
	}

	var out [24]float64
	for h := range out {
		if counts[h] > 0 {
			out[h] = sums[h] / float64(counts[h])
		}
	}
	return out
}

// Peak returns the highest bucket value and its hour. Hour is -1 when every
// bucket is zero.
func Peak(buckets [24]float64) (hour int, value float64) {
	hour = -1
	for h, v := range buckets {
		if v > value {
			hour, value = h, v
		}
	}
	return hour, value
}

// Total sums all bucket values.
func Total(buckets [24]float64) float64 {
	var total float64
	for _, v := range buckets {
		total += v
	}
	return total
}
