package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActorRole distinguishes the two sides of an engagement.
type ActorRole string

const (
	RoleCompany ActorRole = "company"
	RoleWorker  ActorRole = "worker"
)

// Notification is the persisted delivery record for a lifecycle event.
// Delivery to connected clients is best-effort and happens outside the
// transaction that produced the event.
type Notification struct {
	BaseModel

	RecipientID   string         `gorm:"type:uuid;not null;index" json:"recipient_id"`
	RecipientRole ActorRole      `gorm:"type:varchar(16);not null" json:"recipient_role"`
	Type          string         `gorm:"type:varchar(64);not null" json:"type"`
	Title         string         `gorm:"type:varchar(255);not null" json:"title"`
	Message       string         `gorm:"type:text" json:"message"`
	Metadata      datatypes.JSON `json:"metadata"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at"`
}
