package store

import "time"

// ChatLine is one archived chat message, keyed to its portal session.
type ChatLine struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	SessionID   string `gorm:"size:64;index"`
	MessageID   string `gorm:"size:64;index"`
	SenderID    string `gorm:"size:64"`
	Content     string `gorm:"type:text"`
	MessageType string `gorm:"size:16"`
	IsRead      bool   `gorm:"default:false"`
	SentAt      time.Time
	CreatedAt   time.Time
}

// AlertRecord is one matched overconsumption alert.
type AlertRecord struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	UserID      string `gorm:"size:64;index"`
	DeviceID    int64  `gorm:"index"`
	Consumption float64
	Threshold   float64
	Message     string `gorm:"type:text"`
	OccurredAt  time.Time
	CreatedAt   time.Time
}

// CachedUser is the latest snapshot of a portal user, refreshed on each list
// fetch so the dashboard can render without the portal being reachable.
type CachedUser struct {
	AuthID      int64  `gorm:"primaryKey"`
	UserID      int64  `gorm:"index"`
	Username    string `gorm:"size:64"`
	Email       string `gorm:"size:128"`
	Role        string `gorm:"size:16"`
	RefreshedAt time.Time
}

// CachedDevice is the latest snapshot of a portal device.
type CachedDevice struct {
	DeviceID       int64 `gorm:"primaryKey"`
	UserID         *int64
	Name           string `gorm:"size:128"`
	Status         string `gorm:"size:16"`
	MaxConsumption float64
	RefreshedAt    time.Time
}

// allModels returns every model for migration.
func allModels() []interface{} {
	return []interface{}{
		&ChatLine{},
		&AlertRecord{},
		&CachedUser{},
		&CachedDevice{},
	}
}
