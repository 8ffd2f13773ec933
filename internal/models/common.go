// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the id client-side so the same models run on
// Postgres and the sqlite test databases.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserType string

const (
	UserTypeArtist UserType = "artist"
	UserTypeBuyer  UserType = "buyer"
	UserTypeAdmin  UserType = "admin"
)

type ModerationStatus string

const (
	ModerationStatusActive    ModerationStatus = "active"
	ModerationStatusWarned    ModerationStatus = "warned"
	ModerationStatusSuspended ModerationStatus = "suspended"
	ModerationStatusBanned    ModerationStatus = "banned"
)

type ImageStatus string

const (
	ImageStatusActive  ImageStatus = "active"
	ImageStatusSold    ImageStatus = "sold"
	ImageStatusRemoved ImageStatus = "removed"
)

type ReportStatus string

const (
	ReportStatusPending     ReportStatus = "pending"
	ReportStatusUnderReview ReportStatus = "under_review"
	ReportStatusResolved    ReportStatus = "resolved"
	ReportStatusDismissed   ReportStatus = "dismissed"
)

// IsTerminal reports whether no further status transitions are allowed.
func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusResolved || s == ReportStatusDismissed
}

func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusPending, ReportStatusUnderReview, ReportStatusResolved, ReportStatusDismissed:
		return true
	}
	return false
}

type ReportTargetType string

const (
	ReportTargetImage ReportTargetType = "image"
	ReportTargetUser  ReportTargetType = "user"
)

type ReportReason string

const (
	ReportReasonInappropriateContent ReportReason = "inappropriate_content"
	ReportReasonCopyright            ReportReason = "copyright_infringement"
	ReportReasonHarassment           ReportReason = "harassment"
	ReportReasonSpam                 ReportReason = "spam"
	ReportReasonImpersonation        ReportReason = "impersonation"
	ReportReasonOther                ReportReason = "other"
)

// AllReportReasons lists the accepted reasons in the order clients show them.
func AllReportReasons() []ReportReason {
	return []ReportReason{
		ReportReasonInappropriateContent,
		ReportReasonCopyright,
		ReportReasonHarassment,
		ReportReasonSpam,
		ReportReasonImpersonation,
		ReportReasonOther,
	}
}

func (r ReportReason) IsValid() bool {
	for _, reason := range AllReportReasons() {
		if r == reason {
			return true
		}
	}
	return false
}

type ResolutionAction string

const (
	ResolutionNoAction       ResolutionAction = "no_action"
	ResolutionWarningIssued  ResolutionAction = "warning_issued"
	ResolutionContentRemoved ResolutionAction = "content_removed"
	ResolutionUserSuspended  ResolutionAction = "user_suspended"
	ResolutionUserBanned     ResolutionAction = "user_banned"
)

type NotificationType string

const (
	NotificationModerationWarning NotificationType = "moderation_warning"
	NotificationAccountSuspended  NotificationType = "account_suspended"
	NotificationAccountBanned     NotificationType = "account_banned"
	NotificationContentRemoved    NotificationType = "content_removed"
	NotificationReportResolved    NotificationType = "report_resolved"
	NotificationOrderUpdate       NotificationType = "order_update"
)
