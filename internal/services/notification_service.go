// internal/services/notification_service.go
package services

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/artfolio/artfolio-backend/internal/config"
	"github.com/artfolio/artfolio-backend/internal/contentfilter"
	"github.com/artfolio/artfolio-backend/internal/models"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// Create writes an in-app notification row. Used inside moderation
// transactions, so it takes the caller's tx handle.
func (s *NotificationService) Create(tx *gorm.DB, notification *models.Notification) error {
	if tx == nil {
		tx = s.db
	}
	if err := tx.Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetNotifications lists a user's in-app notifications, newest first.
func (s *NotificationService) GetNotifications(userID uuid.UUID, unreadOnly bool, params PaginationParams) ([]models.Notification, int64, error) {
	query := s.db.Model(&models.Notification{}).Where("recipient_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	var notifications []models.Notification
	err := applyPagination(query.Preload("Actor").Order("created_at DESC"), params).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	return notifications, total, nil
}

// MarkRead stamps ReadAt on one notification owned by userID.
func (s *NotificationService) MarkRead(userID, notificationID uuid.UUID) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ? AND read_at IS NULL", notificationID, userID).
		Update("read_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		s.db.Model(&models.Notification{}).
			Where("id = ? AND recipient_id = ?", notificationID, userID).
			Count(&count)
		if count == 0 {
			return NewNotFoundError("notification")
		}
	}
	return nil
}

// MarkAllRead stamps ReadAt on every unread notification of userID.
func (s *NotificationService) MarkAllRead(userID uuid.UUID) (int64, error) {
	result := s.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", userID).
		Update("read_at", time.Now())
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// UnreadCount returns the number of unread notifications for userID.
func (s *NotificationService) UnreadCount(userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

// NotifyAdminsNewReport drops a new-report entry into the moderation inbox.
// Priority follows the content filter verdict captured in the snapshot.
func (s *NotificationService) NotifyAdminsNewReport(report *models.Report) {
	priority := "medium"
	// The filter entry is a contentfilter.Analysis on the submission path and
	// a plain map once the snapshot has round-tripped through the database.
	switch filter := report.ContentSnapshot["filter"].(type) {
	case contentfilter.Analysis:
		if filter.RiskLevel == contentfilter.RiskHigh {
			priority = "high"
		}
	case map[string]interface{}:
		if risk, ok := filter["risk_level"].(string); ok && risk == string(contentfilter.RiskHigh) {
			priority = "high"
		}
	}

	notification := &models.AdminNotification{
		Type:                "new_report",
		Title:               "New report submitted",
		Message:             fmt.Sprintf("New %s report against %s, due %s", report.Reason, report.TargetType, report.SLADeadline.Format(time.RFC3339)),
		Priority:            priority,
		RelatedResourceType: "report",
		RelatedResourceID:   &report.ID,
	}

	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).WithField("report_id", report.ID).
			Error("Failed to create admin notification for new report")
	}
}

// Moderation emails. All of these are best-effort: callers invoke them after
// the database transaction has committed and only log failures.

func (s *NotificationService) SendWarningEmail(user *models.User, reason string) error {
	data := map[string]interface{}{
		"Username":     user.Username,
		"Reason":       reason,
		"WarningCount": user.WarningCount,
		"RulesURL":     fmt.Sprintf("%s/community-guidelines", s.config.Frontend.BaseURL),
	}
	return s.sendTemplatedEmail(user.Email, "moderation_warning", "Community Guidelines Warning", data)
}

func (s *NotificationService) SendSuspensionEmail(user *models.User, until time.Time, reason string) error {
	data := map[string]interface{}{
		"Username": user.Username,
		"Reason":   reason,
		"Until":    until.Format("January 2, 2006 15:04 MST"),
	}
	return s.sendTemplatedEmail(user.Email, "account_suspended", "Your Account Has Been Suspended", data)
}

func (s *NotificationService) SendBanEmail(user *models.User, reason string) error {
	data := map[string]interface{}{
		"Username": user.Username,
		"Reason":   reason,
	}
	return s.sendTemplatedEmail(user.Email, "account_banned", "Your Account Has Been Banned", data)
}

func (s *NotificationService) SendContentRemovedEmail(user *models.User, imageTitle, reason string) error {
	data := map[string]interface{}{
		"Username": user.Username,
		"Title":    imageTitle,
		"Reason":   reason,
	}
	return s.sendTemplatedEmail(user.Email, "content_removed", "Your Artwork Has Been Removed", data)
}

func (s *NotificationService) SendReportResolvedEmail(reporter *models.User, report *models.Report) error {
	data := map[string]interface{}{
		"Username": reporter.Username,
		"Reason":   string(report.Reason),
		"Outcome":  string(report.ResolutionAction),
	}
	return s.sendTemplatedEmail(reporter.Email, "report_resolved", "Update on Your Report", data)
}

// SendSLAAlertEmail sends one batched alert to the moderation inbox covering
// every report in the tier. Reports arrive ordered soonest deadline first.
func (s *NotificationService) SendSLAAlertEmail(tier string, reports []models.Report) error {
	if len(reports) == 0 {
		return nil
	}

	type reportLine struct {
		ID        string
		Reason    string
		Remaining string
	}
	now := time.Now()
	lines := make([]reportLine, 0, len(reports))
	for _, report := range reports {
		lines = append(lines, reportLine{
			ID:        report.ID.String(),
			Reason:    string(report.Reason),
			Remaining: report.SLATimeRemaining(now).Round(time.Minute).String(),
		})
	}

	data := map[string]interface{}{
		"Tier":     tier,
		"Count":    len(reports),
		"Reports":  lines,
		"QueueURL": fmt.Sprintf("%s/admin/reports?sla_at_risk=true", s.config.Frontend.BaseURL),
	}

	subject := fmt.Sprintf("[%s] %d report(s) approaching SLA deadline", tier, len(reports))
	return s.sendTemplatedEmail(s.config.Moderation.AlertEmail, "sla_alert", subject, data)
}

// Helper methods

func (s *NotificationService) sendTemplatedEmail(to, templateType, subject string, data map[string]interface{}) error {
	tmpl := s.getEmailTemplate(templateType)

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(to, subject, body)
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if to == "" {
		return errors.New("empty recipient address")
	}
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).
			Info("Email delivery skipped, SMTP not configured")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"moderation_warning": {
			Subject: "Community Guidelines Warning",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Username}},</h2>
	<p>Your account has received a warning from our moderation team.</p>
	<p><strong>Reason:</strong> {{.Reason}}</p>
	<p>This is warning #{{.WarningCount}} on your account. Repeated violations may lead to suspension.</p>
	<p>Please review our <a href="{{.RulesURL}}">community guidelines</a>.</p>
	<p>Artfolio Trust &amp; Safety</p>
</body>
</html>`,
		},
		"account_suspended": {
			Subject: "Your Account Has Been Suspended",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Username}},</h2>
	<p>Your account has been suspended until <strong>{{.Until}}</strong>.</p>
	<p><strong>Reason:</strong> {{.Reason}}</p>
	<p>You will not be able to upload or sell artwork during the suspension.</p>
	<p>Artfolio Trust &amp; Safety</p>
</body>
</html>`,
		},
		"account_banned": {
			Subject: "Your Account Has Been Banned",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Username}},</h2>
	<p>Your account has been permanently banned.</p>
	<p><strong>Reason:</strong> {{.Reason}}</p>
	<p>If you believe this is a mistake, reply to this email to appeal.</p>
	<p>Artfolio Trust &amp; Safety</p>
</body>
</html>`,
		},
		"content_removed": {
			Subject: "Your Artwork Has Been Removed",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Username}},</h2>
	<p>Your artwork "<strong>{{.Title}}</strong>" has been removed for violating our guidelines.</p>
	<p><strong>Reason:</strong> {{.Reason}}</p>
	<p>Artfolio Trust &amp; Safety</p>
</body>
</html>`,
		},
		"report_resolved": {
			Subject: "Update on Your Report",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Username}},</h2>
	<p>Thank you for helping keep Artfolio safe. Your report ({{.Reason}}) has been reviewed.</p>
	<p><strong>Outcome:</strong> {{.Outcome}}</p>
	<p>Artfolio Trust &amp; Safety</p>
</body>
</html>`,
		},
		"sla_alert": {
			Subject: "Reports approaching SLA deadline",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>{{.Count}} report(s) in the {{.Tier}} tier</h2>
	<table border="1" cellpadding="4">
		<tr><th>Report</th><th>Reason</th><th>Time remaining</th></tr>
		{{range .Reports}}<tr><td>{{.ID}}</td><td>{{.Reason}}</td><td>{{.Remaining}}</td></tr>
		{{end}}
	</table>
	<p><a href="{{.QueueURL}}">Open the moderation queue</a></p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
