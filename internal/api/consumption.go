package api

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// DateLayout is the calendar-date format the monitoring service accepts.
const DateLayout = "2006-01-02"

// Consumptions fetches the raw samples for one user on one calendar day.
func (c *Client) Consumptions(ctx context.Context, userID int64, date time.Time) ([]Sample, error) {
	q := url.Values{}
	q.Set("user_id", fmt.Sprintf("%d", userID))
	q.Set("date", date.Format(DateLayout))

	var resp struct {
		Consumptions []Sample `json:"consumptions"`
	}
	if err := c.do(ctx, "GET", "/consumptions?"+q.Encode(), nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Consumptions, nil
}
