package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Simi445/DMS-K8S/internal/store"
)

// alertEvent holds data for an alert SSE event.
type alertEvent struct {
	ID          uint    `json:"id"`
	DeviceID    int64   `json:"device_id"`
	Consumption float64 `json:"consumption"`
	Threshold   float64 `json:"threshold"`
	Message     string  `json:"message"`
	Count       int64   `json:"count"`
}

// handleSSE streams newly archived alerts so open pages can show a banner
// without reloading.
func handleSSE(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		writeSSE(c.Writer, "connected", map[string]string{"type": "connected"})
		c.Writer.Flush()

		db := st.DB()

		// Only alert on records that arrive after the stream opens.
		var lastSeenID uint
		var latest store.AlertRecord
		if err := db.Order("id DESC").Limit(1).First(&latest).Error; err == nil {
			lastSeenID = latest.ID
		}

		ctx := c.Request.Context()
		ticker := time.NewTicker(3 * time.Second)
		heartbeat := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				writeSSE(c.Writer, "heartbeat", map[string]string{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				})
				c.Writer.Flush()
			case <-ticker.C:
				var newRecs []store.AlertRecord
				db.Where("id > ?", lastSeenID).Order("id ASC").Find(&newRecs)
				if len(newRecs) == 0 {
					continue
				}
				lastSeenID = newRecs[len(newRecs)-1].ID

				var count int64
				db.Model(&store.AlertRecord{}).Count(&count)

				latest := newRecs[len(newRecs)-1]
				writeSSE(c.Writer, "alert", alertEvent{
					ID:          latest.ID,
					DeviceID:    latest.DeviceID,
					Consumption: latest.Consumption,
					Threshold:   latest.Threshold,
					Message:     latest.Message,
					Count:       count,
				})
				c.Writer.Flush()
			}
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
