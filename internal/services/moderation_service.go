// internal/services/moderation_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/artfolio/artfolio-backend/internal/database"
	"github.com/artfolio/artfolio-backend/internal/models"
)

const defaultSuspensionDays = 7

// ModerationService executes resolution actions on reports. Every action
// updates the report, the target, and the in-app notifications in one
// transaction; emails and storage cleanup run after commit and only log on
// failure.
type ModerationService struct {
	db                  *gorm.DB
	notificationService *NotificationService
	storageService      *StorageService
}

type ModerationActionInput struct {
	ReportID     uuid.UUID
	AdminID      uuid.UUID
	Reason       string // communicated to the affected user
	Notes        string // internal resolution notes
	SuspendDays  int    // suspend only; defaults to 7
	NotifyTarget *bool  // remove-content only; nil means notify the owner
}

func (i ModerationActionInput) notifyTarget() bool {
	return i.NotifyTarget == nil || *i.NotifyTarget
}

func NewModerationService(db *gorm.DB, notificationService *NotificationService, storageService *StorageService) *ModerationService {
	return &ModerationService{
		db:                  db,
		notificationService: notificationService,
		storageService:      storageService,
	}
}

// WarnUser issues a formal warning against the report's target user.
func (s *ModerationService) WarnUser(input ModerationActionInput) (*models.Report, error) {
	report, done, err := s.loadActionable(input.ReportID)
	if err != nil || done {
		return report, err
	}

	var user models.User
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", report.TargetUserID).Error; err != nil {
			return translateNotFound(err, "user")
		}

		// A warning never downgrades a suspended or banned account; the
		// counter still moves.
		user.WarningCount++
		if user.ModerationStatus == models.ModerationStatusActive {
			user.ModerationStatus = models.ModerationStatusWarned
		}
		now := time.Now()
		user.LastModerationAction = &now
		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		if err := s.resolve(tx, report, models.ResolutionWarningIssued, input); err != nil {
			return err
		}

		return s.notifyParties(tx, report, &models.Notification{
			RecipientID: user.ID,
			Type:        models.NotificationModerationWarning,
			Message:     fmt.Sprintf("You have received a warning: %s", input.Reason),
			ReportID:    &report.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(input.AdminID, "warn_user", report, models.JSONB{"warning_count": user.WarningCount, "reason": input.Reason})
	s.afterCommit(report, func() error { return s.notificationService.SendWarningEmail(&user, input.Reason) })

	return report, nil
}

// SuspendUser suspends the target user for a limited period.
func (s *ModerationService) SuspendUser(input ModerationActionInput) (*models.Report, error) {
	report, done, err := s.loadActionable(input.ReportID)
	if err != nil || done {
		return report, err
	}

	days := input.SuspendDays
	if days <= 0 {
		days = defaultSuspensionDays
	}
	until := time.Now().AddDate(0, 0, days)

	var user models.User
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", report.TargetUserID).Error; err != nil {
			return translateNotFound(err, "user")
		}
		if user.ModerationStatus == models.ModerationStatusBanned {
			return NewConflictError("user is already banned")
		}

		now := time.Now()
		user.ModerationStatus = models.ModerationStatusSuspended
		user.SuspendedUntil = &until
		user.LastModerationAction = &now
		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		if err := s.resolve(tx, report, models.ResolutionUserSuspended, input); err != nil {
			return err
		}

		return s.notifyParties(tx, report, &models.Notification{
			RecipientID: user.ID,
			Type:        models.NotificationAccountSuspended,
			Message:     fmt.Sprintf("Your account is suspended until %s: %s", until.Format("2006-01-02"), input.Reason),
			ReportID:    &report.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(input.AdminID, "suspend_user", report, models.JSONB{"suspended_until": until, "reason": input.Reason})
	s.afterCommit(report, func() error { return s.notificationService.SendSuspensionEmail(&user, until, input.Reason) })

	return report, nil
}

// BanUser permanently bans the target user. A reason is mandatory.
func (s *ModerationService) BanUser(input ModerationActionInput) (*models.Report, error) {
	if input.Reason == "" {
		return nil, NewValidationError("a reason is required to ban a user")
	}

	report, done, err := s.loadActionable(input.ReportID)
	if err != nil || done {
		return report, err
	}

	var user models.User
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", report.TargetUserID).Error; err != nil {
			return translateNotFound(err, "user")
		}

		now := time.Now()
		user.ModerationStatus = models.ModerationStatusBanned
		user.BanReason = input.Reason
		user.SuspendedUntil = nil
		user.LastModerationAction = &now
		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		if err := s.resolve(tx, report, models.ResolutionUserBanned, input); err != nil {
			return err
		}

		return s.notifyParties(tx, report, &models.Notification{
			RecipientID: user.ID,
			Type:        models.NotificationAccountBanned,
			Message:     fmt.Sprintf("Your account has been banned: %s", input.Reason),
			ReportID:    &report.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(input.AdminID, "ban_user", report, models.JSONB{"reason": input.Reason})
	s.afterCommit(report, func() error { return s.notificationService.SendBanEmail(&user, input.Reason) })

	return report, nil
}

// RemoveContent takes down the reported image. If the image is already gone,
// the report is still resolved; takedown of deleted content is a no-op, not
// an error.
func (s *ModerationService) RemoveContent(input ModerationActionInput) (*models.Report, error) {
	report, done, err := s.loadActionable(input.ReportID)
	if err != nil || done {
		return report, err
	}
	if report.TargetType != models.ReportTargetImage || report.TargetImageID == nil {
		return nil, NewValidationError("remove-content applies only to image reports")
	}

	var image models.Image
	var imageFound bool
	var owner models.User
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		err := tx.First(&image, "id = ?", *report.TargetImageID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			imageFound = false
		case err != nil:
			return fmt.Errorf("database error: %w", err)
		default:
			imageFound = true
		}

		if imageFound && image.Status != models.ImageStatusRemoved {
			image.Status = models.ImageStatusRemoved
			if err := tx.Save(&image).Error; err != nil {
				return fmt.Errorf("failed to update image: %w", err)
			}
		}

		if err := tx.First(&owner, "id = ?", report.TargetUserID).Error; err != nil {
			return translateNotFound(err, "user")
		}

		if err := s.resolve(tx, report, models.ResolutionContentRemoved, input); err != nil {
			return err
		}

		// The reporter always hears back; the owner only unless the admin
		// opted out of the takedown notice.
		if !input.notifyTarget() {
			return s.notifyReporter(tx, report)
		}
		notification := &models.Notification{
			RecipientID: owner.ID,
			Type:        models.NotificationContentRemoved,
			Message:     fmt.Sprintf("Your artwork has been removed: %s", input.Reason),
			ReportID:    &report.ID,
		}
		if imageFound {
			notification.ImageID = &image.ID
		}
		return s.notifyParties(tx, report, notification)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(input.AdminID, "remove_content", report, models.JSONB{"image_found": imageFound, "reason": input.Reason})
	s.afterCommit(report, func() error {
		if imageFound {
			title := image.Title
			if image.StorageKey != "" && s.storageService != nil {
				if err := s.storageService.DeleteFile(image.StorageKey); err != nil {
					logrus.WithError(err).WithField("key", image.StorageKey).
						Error("Failed to delete removed artwork from storage")
				}
			}
			if input.notifyTarget() {
				return s.notificationService.SendContentRemovedEmail(&owner, title, input.Reason)
			}
		}
		return nil
	})

	return report, nil
}

// Dismiss closes the report without action against the target.
func (s *ModerationService) Dismiss(input ModerationActionInput) (*models.Report, error) {
	report, done, err := s.loadActionable(input.ReportID)
	if err != nil || done {
		return report, err
	}

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		report.Status = models.ReportStatusDismissed
		if err := s.stampResolution(tx, report, models.ResolutionNoAction, input); err != nil {
			return err
		}

		// The target is never told about dismissed reports.
		return s.notifyReporter(tx, report)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(input.AdminID, "dismiss_report", report, models.JSONB{"notes": input.Notes})
	s.afterCommit(report, nil)

	return report, nil
}

// loadActionable fetches the report. done=true means the report is already
// terminal and the caller should treat the action as an idempotent no-op.
func (s *ModerationService) loadActionable(reportID uuid.UUID) (*models.Report, bool, error) {
	var report models.Report
	if err := s.db.Preload("Reporter").First(&report, "id = ?", reportID).Error; err != nil {
		return nil, false, translateNotFound(err, "report")
	}
	if report.Status.IsTerminal() {
		return &report, true, nil
	}
	return &report, false, nil
}

// resolve marks the report resolved with the given action.
func (s *ModerationService) resolve(tx *gorm.DB, report *models.Report, action models.ResolutionAction, input ModerationActionInput) error {
	report.Status = models.ReportStatusResolved
	return s.stampResolution(tx, report, action, input)
}

func (s *ModerationService) stampResolution(tx *gorm.DB, report *models.Report, action models.ResolutionAction, input ModerationActionInput) error {
	now := time.Now()
	report.ResolvedAt = &now
	report.ResolvedByAdminID = &input.AdminID
	report.ResolutionAction = action
	report.ResolutionNotes = input.Notes

	if err := tx.Save(report).Error; err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	return nil
}

// notifyParties writes the target-user notification plus the reporter's
// resolution notice inside the action transaction.
func (s *ModerationService) notifyParties(tx *gorm.DB, report *models.Report, targetNotification *models.Notification) error {
	if err := s.notificationService.Create(tx, targetNotification); err != nil {
		return err
	}
	return s.notifyReporter(tx, report)
}

func (s *ModerationService) notifyReporter(tx *gorm.DB, report *models.Report) error {
	return s.notificationService.Create(tx, &models.Notification{
		RecipientID: report.ReporterID,
		Type:        models.NotificationReportResolved,
		Message:     "Your report has been reviewed. Thank you for helping keep Artfolio safe.",
		ReportID:    &report.ID,
	})
}

// afterCommit runs the post-commit side effects: the action email and the
// reporter's resolution email. Failures are logged, never returned.
func (s *ModerationService) afterCommit(report *models.Report, sendActionEmail func() error) {
	go func() {
		if sendActionEmail != nil {
			if err := sendActionEmail(); err != nil {
				logrus.WithError(err).WithField("report_id", report.ID).
					Error("Failed to send moderation email")
			}
		}
		if report.Reporter.Email != "" {
			if err := s.notificationService.SendReportResolvedEmail(&report.Reporter, report); err != nil {
				logrus.WithError(err).WithField("report_id", report.ID).
					Error("Failed to send report resolution email")
			}
		}
	}()
}

func (s *ModerationService) recordAudit(adminID uuid.UUID, action string, report *models.Report, newValues models.JSONB) {
	go func() {
		entry := &models.AuditLog{
			UserID:       &adminID,
			Action:       action,
			ResourceType: "report",
			ResourceID:   &report.ID,
			NewValues:    newValues,
		}
		if err := s.db.Create(entry).Error; err != nil {
			logrus.WithError(err).WithField("action", action).Error("Failed to write audit log")
		}
	}()
}

func translateNotFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFoundError(resource)
	}
	return fmt.Errorf("database error: %w", err)
}
