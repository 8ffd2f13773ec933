// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"
	KeyAuthTokenExpired = "auth.token_expired"

	// User Management
	KeyUserNotFound  = "user.not_found"
	KeyUserSuspended = "user.suspended"
	KeyUserBanned    = "user.banned"

	// Images
	KeyImageNotFound = "image.not_found"
	KeyImageRemoved  = "image.removed"

	// Reports
	KeyReportNotFound      = "report.not_found"
	KeyReportCreated       = "report.created"
	KeyReportDuplicate     = "report.duplicate"
	KeyReportSelfReport    = "report.self_report"
	KeyReportInvalidReason = "report.invalid_reason"
	KeyReportInvalidStatus = "report.invalid_status"
	KeyReportAlreadyClosed = "report.already_closed"

	// Blocks
	KeyBlockNotFound  = "block.not_found"
	KeyBlockCreated   = "block.created"
	KeyBlockRemoved   = "block.removed"
	KeyBlockDuplicate = "block.duplicate"
	KeyBlockSelfBlock = "block.self_block"

	// Moderation
	KeyModerationWarned    = "moderation.user_warned"
	KeyModerationSuspended = "moderation.user_suspended"
	KeyModerationBanned    = "moderation.user_banned"
	KeyModerationRemoved   = "moderation.content_removed"
	KeyModerationDismissed = "moderation.report_dismissed"

	// Admin
	KeyAdminActionSuccess = "admin.action_success"
	KeyAdminAccessDenied  = "admin.access_denied"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"

	// Notifications
	KeyNotificationSent   = "notification.sent"
	KeyNotificationFailed = "notification.failed"
)
