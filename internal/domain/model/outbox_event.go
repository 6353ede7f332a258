package model

import "time"

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// Order event waiting to be relayed to the broker.
type OutboxEvent struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AggregateID string     `gorm:"type:varchar(64);not null;index" json:"aggregateId"`
	EventType   string     `gorm:"type:varchar(100);not null" json:"eventType"`
	Payload     string     `gorm:"type:text;not null" json:"payload"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"createdAt"`
	PublishedAt *time.Time `gorm:"index" json:"publishedAt"`
}
