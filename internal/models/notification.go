// internal/models/notification.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a consumer-facing in-app record. Immutable after creation
// except for ReadAt (nil means unread).
type Notification struct {
	BaseModel
	RecipientID uuid.UUID        `json:"recipient_id" gorm:"type:uuid;not null;index:idx_notifications_recipient_read"`
	ActorID     *uuid.UUID       `json:"actor_id" gorm:"type:uuid"`
	Type        NotificationType `json:"type" gorm:"type:varchar(30);not null;index"`
	Message     string           `json:"message" gorm:"type:text;not null"`
	ImageID     *uuid.UUID       `json:"image_id" gorm:"type:uuid"`
	ReportID    *uuid.UUID       `json:"report_id" gorm:"type:uuid"`
	OrderID     *uuid.UUID       `json:"order_id" gorm:"type:uuid"`
	ReadAt      *time.Time       `json:"read_at" gorm:"index:idx_notifications_recipient_read"`

	// Relationships
	Recipient User  `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`
	Actor     *User `json:"actor,omitempty" gorm:"foreignKey:ActorID"`
}
