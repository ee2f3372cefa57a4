package consumption

import (
	"strings"
	"testing"
	"time"

	"github.com/Simi445/DMS-K8S/internal/api"
)

func sampleAt(hour int, value float64) api.Sample {
	return api.Sample{
		DeviceID:    1,
		Consumption: api.Number(value),
		Timestamp:   api.Timestamp{Time: time.Date(2024, 3, 1, hour, 30, 0, 0, time.UTC)},
	}
}

func TestHourlyAverages(t *testing.T) {
	samples := []api.Sample{
		sampleAt(5, 10),
		sampleAt(5, 20),
		sampleAt(9, 4),
	}
	buckets := HourlyAverages(samples)

	if buckets[5] != 15 {
		t.Errorf("bucket 5 = %v, want 15", buckets[5])
	}
	if buckets[9] != 4 {
		t.Errorf("bucket 9 = %v, want 4", buckets[9])
	}
	for h, v := range buckets {
		if h == 5 || h == 9 {
			continue
		}
		if v != 0 {
			t.Errorf("bucket %d = %v, want 0", h, v)
		}
	}
}

func TestHourlyAveragesEmpty(t *testing.T) {
	buckets := HourlyAverages(nil)
	for h, v := range buckets {
		if v != 0 {
			t.Errorf("bucket %d = %v, want 0", h, v)
		}
	}
}

func TestHourlyAveragesSkipsUnparsedTimestamps(t *testing.T) {
	samples := []api.Sample{
		{Consumption: 99}, // zero timestamp, dropped
		sampleAt(3, 7),
	}
	buckets := HourlyAverages(samples)
	if buckets[0] != 0 {
		t.Errorf("bucket 0 = %v, want 0", buckets[0])
	}
	if buckets[3] != 7 {
		t.Errorf("bucket 3 = %v, want 7", buckets[3])
	}
}

func TestPeak(t *testing.T) {
	var buckets [24]float64
	buckets[7] = 3.5
	buckets[18] = 9.25

	hour, value := Peak(buckets)
	if hour != 18 || value != 9.25 {
		t.Errorf("Peak = (%d, %v), want (18, 9.25)", hour, value)
	}

	hour, value = Peak([24]float64{})
	if hour != -1 || value != 0 {
		t.Errorf("Peak of zeros = (%d, %v), want (-1, 0)", hour, value)
	}
}

func TestParseStyle(t *testing.T) {
	if _, err := ParseStyle("line"); err != nil {
		t.Errorf("ParseStyle(line): %v", err)
	}
	if _, err := ParseStyle("bar"); err != nil {
		t.Errorf("ParseStyle(bar): %v", err)
	}
	if _, err := ParseStyle("pie"); err == nil {
		t.Error("ParseStyle(pie) accepted")
	}
}

func TestRenderBar(t *testing.T) {
	var buckets [24]float64
	buckets[5] = 15
	buckets[9] = 4

	out := Render(buckets, StyleBar)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 24 {
		t.Fatalf("rows = %d, want 24", len(lines))
	}
	if !strings.HasPrefix(lines[5], "05 ") || !strings.Contains(lines[5], "15.00") {
		t.Errorf("row 5 = %q", lines[5])
	}
	// The peak row carries the longest bar.
	if strings.Count(lines[5], "█") <= strings.Count(lines[9], "█") {
		t.Errorf("peak bar not longest: %q vs %q", lines[5], lines[9])
	}
	if strings.Count(lines[0], "█") != 0 {
		t.Errorf("empty bucket rendered a bar: %q", lines[0])
	}
}

func TestRenderLinePlacesPeakOnTopRow(t *testing.T) {
	var buckets [24]float64
	buckets[12] = 100

	out := Render(buckets, StyleLine)
	lines := strings.Split(out, "\n")
	if !strings.ContainsRune(lines[0], '●') {
		t.Errorf("top row has no point: %q", lines[0])
	}
}
