// Package store is the local archive: chat transcripts, matched alerts, and
// snapshots of the portal's user/device lists for offline rendering.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/Simi445/DMS-K8S/internal/alerts"
	"github.com/Simi445/DMS-K8S/internal/api"
)

// Store wraps the archive database.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// Open connects to the archive and migrates its tables. driver is "sqlite"
// or "mysql"; for sqlite the DSN is the database file path.
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		// The default DSN lives next to the token file; neither may exist
		// before the first login.
		if dir := filepath.Dir(dsn); dir != "." && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("store: create db dir: %w", err)
			}
		}
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", driver, err)
	}
	if err := db.AutoMigrate(allModels()...); err != nil {
		return nil, fmt.Errorf("store: auto-migrate: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// DB exposes the underlying handle for the dashboard's read-only queries.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// RecordMessage archives one chat line. Lines that carry both a session and a
// server-issued message id are deduplicated, so re-fetching history on a
// rejoin does not double the transcript.
func (s *Store) RecordMessage(sessionID string, msg api.ChatMessage) error {
	if sessionID != "" && msg.ID != "" {
		var count int64
		err := s.db.Model(&ChatLine{}).
			Where("session_id = ? AND message_id = ?", sessionID, msg.ID).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("store: message lookup: %w", err)
		}
		if count > 0 {
			return nil
		}
	}

	line := ChatLine{
		SessionID:   sessionID,
		MessageID:   msg.ID,
		SenderID:    msg.SenderID,
		Content:     msg.Content,
		MessageType: msg.MessageType,
		IsRead:      msg.IsRead,
		SentAt:      msg.Timestamp.Time,
	}
	if err := s.db.Create(&line).Error; err != nil {
		return fmt.Errorf("store: record message: %w", err)
	}
	return nil
}

// Transcript returns a session's archived lines in send order.
func (s *Store) Transcript(sessionID string) ([]ChatLine, error) {
	var lines []ChatLine
	err := s.db.Where("session_id = ?", sessionID).
		Order("sent_at ASC, id ASC").Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("store: transcript %s: %w", sessionID, err)
	}
	return lines, nil
}

// SessionIDs lists the archived sessions, most recent first.
func (s *Store) SessionIDs() ([]string, error) {
	var ids []string
	err := s.db.Model(&ChatLine{}).Distinct("session_id").
		Where("session_id <> ''").Order("session_id").Pluck("session_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("store: session ids: %w", err)
	}
	return ids, nil
}

// RecordAlert archives one matched overconsumption alert.
func (s *Store) RecordAlert(alert alerts.Alert) error {
	rec := AlertRecord{
		UserID:      alert.UserID,
		DeviceID:    alert.DeviceID,
		Consumption: float64(alert.Consumption),
		Threshold:   float64(alert.Threshold),
		Message:     alert.Message,
		OccurredAt:  alert.Timestamp.Time,
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("store: record alert: %w", err)
	}
	return nil
}

// Alerts returns the most recent archived alerts, newest first.
func (s *Store) Alerts(limit int) ([]AlertRecord, error) {
	q := s.db.Order("occurred_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recs []AlertRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("store: alerts: %w", err)
	}
	return recs, nil
}

// AlertsSince returns archived alerts at or after the cutoff, oldest first.
func (s *Store) AlertsSince(cutoff time.Time) ([]AlertRecord, error) {
	var recs []AlertRecord
	err := s.db.Where("occurred_at >= ?", cutoff).
		Order("occurred_at ASC, id ASC").Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("store: alerts since %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return recs, nil
}

// CacheUsers replaces the user snapshots with a freshly fetched list.
func (s *Store) CacheUsers(users []api.User) error {
	refreshedAt := s.now()
	for _, u := range users {
		row := CachedUser{
			AuthID:      u.AuthID,
			UserID:      u.UserID,
			Username:    u.Username,
			Email:       u.Email,
			Role:        u.Role,
			RefreshedAt: refreshedAt,
		}
		result := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "auth_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "username", "email", "role", "refreshed_at"}),
		}).Create(&row)
		if result.Error != nil {
			return fmt.Errorf("store: cache user %d: %w", u.AuthID, result.Error)
		}
	}
	return nil
}

// CachedUsers returns the snapshot user list.
func (s *Store) CachedUsers() ([]CachedUser, error) {
	var users []CachedUser
	if err := s.db.Order("username ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("store: cached users: %w", err)
	}
	return users, nil
}

// CacheDevices replaces the device snapshots with a freshly fetched list.
func (s *Store) CacheDevices(devices []api.Device) error {
	refreshedAt := s.now()
	for _, d := range devices {
		row := CachedDevice{
			DeviceID:       d.DeviceID,
			UserID:         d.UserID,
			Name:           d.Name,
			Status:         d.Status,
			MaxConsumption: float64(d.MaxConsumption),
			RefreshedAt:    refreshedAt,
		}
		result := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "device_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "name", "status", "max_consumption", "refreshed_at"}),
		}).Create(&row)
		if result.Error != nil {
			return fmt.Errorf("store: cache device %d: %w", d.DeviceID, result.Error)
		}
	}
	return nil
}

// CachedDevices returns the snapshot device list.
func (s *Store) CachedDevices() ([]CachedDevice, error) {
	var devices []CachedDevice
	if err := s.db.Order("device_id ASC").Find(&devices).Error; err != nil {
		return nil, fmt.Errorf("store: cached devices: %w", err)
	}
	return devices, nil
}
