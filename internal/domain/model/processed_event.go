package model

import "time"

// Payment gateway event that has already been handled.
// The primary key makes a redelivered event a no-op.
type ProcessedEvent struct {
	EventID     string    `gorm:"primaryKey;type:varchar(255)" json:"eventId"`
	EventType   string    `gorm:"type:varchar(100);not null" json:"eventType"`
	SessionID   string    `gorm:"type:varchar(255);index" json:"sessionId"`
	ProcessedAt time.Time `gorm:"not null" json:"processedAt"`
}
