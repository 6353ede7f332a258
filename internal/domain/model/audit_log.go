package model

import "time"

type AuditAction string

const (
	// seller changed an order status
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
)

type AuditResourceType string

const (
	AuditResourceOrder AuditResourceType = "order"
)

// Who changed what on which resource, with before/after as JSON.
type AuditLog struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID  int64             `gorm:"not null;index" json:"actorUserId"`
	ActorRole    Role              `gorm:"type:varchar(20);not null" json:"actorRole"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resourceType"`
	ResourceID   int64             `gorm:"not null;index" json:"resourceId"`
	BeforeJSON   string            `gorm:"type:text" json:"beforeJson"`
	AfterJSON    string            `gorm:"type:text" json:"afterJson"`
	CreatedAt    time.Time         `gorm:"not null;index" json:"createdAt"`
}
