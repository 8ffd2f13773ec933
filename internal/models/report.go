// internal/models/report.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Report is a moderation report against an image or a user. Reports are never
// hard-deleted; they are the audit trail for every moderation decision.
type Report struct {
	BaseModel
	ReporterID uuid.UUID        `json:"reporter_id" gorm:"type:uuid;not null;index:idx_reports_reporter_created"`
	TargetType ReportTargetType `json:"target_type" gorm:"type:varchar(10);not null;index:idx_reports_target"`

	// TargetImageID is set iff TargetType is image. TargetUserID is always
	// set: for image reports it is the image owner, so per-user report
	// aggregation works regardless of target type.
	TargetImageID *uuid.UUID `json:"target_image_id" gorm:"type:uuid;index:idx_reports_target"`
	TargetUserID  uuid.UUID  `json:"target_user_id" gorm:"type:uuid;not null;index"`

	Reason      ReportReason `json:"reason" gorm:"type:varchar(30);not null;index"`
	Description string       `json:"description" gorm:"type:text"`
	Status      ReportStatus `json:"status" gorm:"type:varchar(20);default:'pending';index:idx_reports_status_deadline"`

	// SLA tracking. SLADeadline is fixed at creation; SLABreached only ever
	// flips false -> true.
	SLADeadline time.Time `json:"sla_deadline" gorm:"not null;index:idx_reports_status_deadline"`
	SLABreached bool      `json:"sla_breached" gorm:"default:false;index"`

	// Resolution fields, stamped when the report reaches a terminal status.
	ResolvedAt         *time.Time       `json:"resolved_at"`
	ResolvedByAdminID  *uuid.UUID       `json:"resolved_by_admin_id" gorm:"type:uuid"`
	ResolutionAction   ResolutionAction `json:"resolution_action,omitempty" gorm:"type:varchar(20)"`
	ResolutionNotes    string           `json:"resolution_notes,omitempty" gorm:"type:text"`

	// ContentSnapshot is a point-in-time copy of the reported content's
	// displayable fields. It is never refreshed; staleness after the target
	// is deleted is the intended audit semantics.
	ContentSnapshot JSONB `json:"content_snapshot" gorm:"type:jsonb"`

	// Relationships
	Reporter   User   `json:"reporter,omitempty" gorm:"foreignKey:ReporterID"`
	TargetUser User   `json:"target_user,omitempty" gorm:"foreignKey:TargetUserID"`
	Resolver   *User  `json:"resolver,omitempty" gorm:"foreignKey:ResolvedByAdminID"`
	Image      *Image `json:"image,omitempty" gorm:"foreignKey:TargetImageID"`
}

// SLATimeRemaining returns the time left until the deadline, negative once
// the deadline has passed.
func (r *Report) SLATimeRemaining(now time.Time) time.Duration {
	return r.SLADeadline.Sub(now)
}

// SLAAtRisk reports whether the unresolved report's deadline falls within the
// given window.
func (r *Report) SLAAtRisk(now time.Time, window time.Duration) bool {
	if r.Status.IsTerminal() {
		return false
	}
	return r.SLADeadline.Before(now.Add(window))
}
