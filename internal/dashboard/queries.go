package dashboard

import (
	"time"

	"gorm.io/gorm"

	"github.com/Simi445/DMS-K8S/internal/store"
)

// DeviceRow holds cached device data for display.
type DeviceRow struct {
	DeviceID       int64
	Owner          string
	Status         string
	Name           string
	MaxConsumption float64
	RefreshedAt    time.Time
}

// DeviceSummary joins cached devices with their owners' usernames.
func DeviceSummary(db *gorm.DB) ([]DeviceRow, error) {
	var devices []store.CachedDevice
	if err := db.Order("device_id ASC").Find(&devices).Error; err != nil {
		return nil, err
	}
	var users []store.CachedUser
	if err := db.Find(&users).Error; err != nil {
		return nil, err
	}
	byID := make(map[int64]string, len(users))
	for _, u := range users {
		byID[u.UserID] = u.Username
	}

	rows := make([]DeviceRow, len(devices))
	for i, d := range devices {
		owner := "unassigned"
		if d.UserID != nil {
			if name, ok := byID[*d.UserID]; ok {
				owner = name
			}
		}
		rows[i] = DeviceRow{
			DeviceID:       d.DeviceID,
			Owner:          owner,
			Status:         d.Status,
			Name:           d.Name,
			MaxConsumption: d.MaxConsumption,
			RefreshedAt:    d.RefreshedAt,
		}
	}
	return rows, nil
}

// UserRow holds cached user data for display.
type UserRow struct {
	AuthID      int64
	Username    string
	Email       string
	Role        string
	RefreshedAt time.Time
}

// UserSummary returns the snapshot user list.
func UserSummary(db *gorm.DB) ([]UserRow, error) {
	var users []store.CachedUser
	if err := db.Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	rows := make([]UserRow, len(users))
	for i, u := range users {
		rows[i] = UserRow{
			AuthID:      u.AuthID,
			Username:    u.Username,
			Email:       u.Email,
			Role:        u.Role,
			RefreshedAt: u.RefreshedAt,
		}
	}
	return rows, nil
}

// AlertRow holds one archived overconsumption alert for display.
type AlertRow struct {
	DeviceID    int64
	Consumption float64
	Threshold   float64
	Message     string
	OccurredAt  time.Time
}

// AlertSummary returns the most recent archived alerts, newest first.
func AlertSummary(db *gorm.DB, limit int) ([]AlertRow, error) {
	q := db.Order("occurred_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recs []store.AlertRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	rows := make([]AlertRow, len(recs))
	for i, r := range recs {
		rows[i] = AlertRow{
			DeviceID:    r.DeviceID,
			Consumption: r.Consumption,
			Threshold:   r.Threshold,
			Message:     r.Message,
			OccurredAt:  r.OccurredAt,
		}
	}
	return rows, nil
}

// TranscriptRow is one archived chat line for display.
type TranscriptRow struct {
	SenderID    string
	Content     string
	MessageType string
	SentAt      time.Time
}

// SessionList returns the archived session ids.
func SessionList(db *gorm.DB) ([]string, error) {
	var ids []string
	err := db.Model(&store.ChatLine{}).Distinct("session_id").
		Where("session_id <> ''").Order("session_id").Pluck("session_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// TranscriptSummary returns one session's lines in send order.
func TranscriptSummary(db *gorm.DB, sessionID string) ([]TranscriptRow, error) {
	var lines []store.ChatLine
	err := db.Where("session_id = ?", sessionID).
		Order("sent_at ASC, id ASC").Find(&lines).Error
	if err != nil {
		return nil, err
	}
	rows := make([]TranscriptRow, len(lines))
	for i, l := range lines {
		rows[i] = TranscriptRow{
			SenderID:    l.SenderID,
			Content:     l.Content,
			MessageType: l.MessageType,
			SentAt:      l.SentAt,
		}
	}
	return rows, nil
}
