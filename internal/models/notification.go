package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	NotificationStatementProcessed = "statement_processed"
)

// Notification is an in-app event record for the external notification
// subsystem to deliver. Writing one is fire-and-forget from the pipeline's
// point of view.
type Notification struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	Type      string         `gorm:"size:50" json:"notification_type"`
	Title     string         `gorm:"size:255" json:"title"`
	Message   string         `json:"message"`
	IsRead    bool           `gorm:"default:false;index" json:"is_read"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
