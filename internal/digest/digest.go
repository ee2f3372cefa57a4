// Package digest summarizes the local archive on a cron schedule and pushes
// the summary through the notifier sinks.
package digest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Simi445/DMS-K8S/internal/notify"
	"github.com/Simi445/DMS-K8S/internal/store"
)

// Report holds computed metrics for one digest period.
type Report struct {
	PeriodStart  time.Time
	PeriodEnd    time.Time
	AlertCount   int
	MessageCount int64
	Devices      []DeviceDigest
}

// DeviceDigest holds per-device alert metrics.
type DeviceDigest struct {
	DeviceID        int64
	Alerts          int
	PeakConsumption float64
}

// Build queries the archive for the period. Returns nil when nothing
// happened, so quiet periods send no digest.
func Build(st *store.Store, since, until time.Time) (*Report, error) {
	alerts, err := st.AlertsSince(since)
	if err != nil {
		return nil, fmt.Errorf("digest: %w", err)
	}

	var messages int64
	err = st.DB().Model(&store.ChatLine{}).
		Where("created_at >= ? AND created_at < ?", since, until).
		Count(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("digest: message count: %w", err)
	}

	if len(alerts) == 0 && messages == 0 {
		return nil, nil
	}

	byDevice := make(map[int64]*DeviceDigest)
	count := 0
	for _, a := range alerts {
		if a.OccurredAt.After(until) {
			continue
		}
		count++
		d, ok := byDevice[a.DeviceID]
		if !ok {
			d = &DeviceDigest{DeviceID: a.DeviceID}
			byDevice[a.DeviceID] = d
		}
		d.Alerts++
		if a.Consumption > d.PeakConsumption {
			d.PeakConsumption = a.Consumption
		}
	}

	devices := make([]DeviceDigest, 0, len(byDevice))
	for _, d := range byDevice {
		devices = append(devices, *d)
	}
	sort.Slice(devices, func(i, j int) bool {
		if devices[i].Alerts != devices[j].Alerts {
			return devices[i].Alerts > devices[j].Alerts
		}
		return devices[i].DeviceID < devices[j].DeviceID
	})

	return &Report{
		PeriodStart:  since,
		PeriodEnd:    until,
		AlertCount:   count,
		MessageCount: messages,
		Devices:      devices,
	}, nil
}

// Format renders the report as a notifier event.
func Format(r *Report) notify.Event {
	var b strings.Builder
	fmt.Fprintf(&b, "Period %s to %s\n",
		r.PeriodStart.Format("2006-01-02 15:04"), r.PeriodEnd.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Overconsumption alerts: %d\n", r.AlertCount)
	fmt.Fprintf(&b, "Chat messages archived: %d\n", r.MessageCount)

	evt := notify.Event{
		Title: "DMS activity digest",
		Body:  strings.TrimRight(b.String(), "\n"),
		Color: "#4f9cf9",
	}
	for _, d := range r.Devices {
		evt.Fields = append(evt.Fields, notify.Field{
			Name:  fmt.Sprintf("Device %d", d.DeviceID),
			Value: fmt.Sprintf("%d alerts, peak %.2f kWh", d.Alerts, d.PeakConsumption),
		})
	}
	return evt
}
