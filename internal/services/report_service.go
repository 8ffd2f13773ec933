// internal/services/report_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/artfolio/artfolio-backend/internal/contentfilter"
	"github.com/artfolio/artfolio-backend/internal/models"
)

// duplicateWindow suppresses repeat reports from the same reporter against
// the same target.
const duplicateWindow = 24 * time.Hour

type ReportService struct {
	db                  *gorm.DB
	notificationService *NotificationService
	slaWindow           time.Duration
}

type SubmitReportInput struct {
	ReporterID  uuid.UUID
	TargetType  models.ReportTargetType
	TargetID    uuid.UUID // image id or user id, depending on TargetType
	Reason      models.ReportReason
	Description string
}

type AdminReportFilter struct {
	Params    PaginationParams
	Status    *models.ReportStatus
	Reason    *models.ReportReason
	SLAAtRisk bool
}

// PaginationParams mirrors utils.PaginationParams without importing the gin
// layer into services.
type PaginationParams struct {
	Page  int
	Limit int
	Sort  string
	Order string
}

// ReportView decorates a report with the SLA fields computed at read time.
type ReportView struct {
	models.Report
	SLATimeRemainingSeconds int64 `json:"sla_time_remaining_seconds"`
	SLAAtRisk               bool  `json:"sla_at_risk"`
}

type ReportStats struct {
	Total           int64                         `json:"total"`
	ByStatus        map[models.ReportStatus]int64 `json:"by_status"`
	ByReason        map[models.ReportReason]int64 `json:"by_reason"`
	SLAAtRisk       int64                         `json:"sla_at_risk"`
	SLABreached     int64                         `json:"sla_breached"`
	CreatedLast24h  int64                         `json:"created_last_24h"`
	ResolvedLast24h int64                         `json:"resolved_last_24h"`
}

func NewReportService(db *gorm.DB, notificationService *NotificationService, slaWindow time.Duration) *ReportService {
	if slaWindow <= 0 {
		slaWindow = 24 * time.Hour
	}
	return &ReportService{
		db:                  db,
		notificationService: notificationService,
		slaWindow:           slaWindow,
	}
}

// Submit creates a new pending report. The target's displayable fields are
// snapshotted so the report stays inspectable after the target is deleted,
// and the content filter verdict rides along as an advisory triage signal.
func (s *ReportService) Submit(input SubmitReportInput) (*models.Report, error) {
	if !input.Reason.IsValid() {
		return nil, NewValidationError("invalid report reason: %s", input.Reason)
	}
	if len(input.Description) > 2000 {
		return nil, NewValidationError("description must be at most 2000 characters")
	}

	report := &models.Report{
		ReporterID:  input.ReporterID,
		TargetType:  input.TargetType,
		Reason:      input.Reason,
		Description: input.Description,
		Status:      models.ReportStatusPending,
	}

	switch input.TargetType {
	case models.ReportTargetImage:
		var image models.Image
		if err := s.db.Preload("Owner").First(&image, "id = ?", input.TargetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewNotFoundError("image")
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		report.TargetImageID = &image.ID
		report.TargetUserID = image.OwnerID
		report.ContentSnapshot = snapshotImage(&image)

	case models.ReportTargetUser:
		var user models.User
		if err := s.db.First(&user, "id = ?", input.TargetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewNotFoundError("user")
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		report.TargetUserID = user.ID
		report.ContentSnapshot = snapshotUser(&user)

	default:
		return nil, NewValidationError("invalid target type: %s", input.TargetType)
	}

	if report.ReporterID == report.TargetUserID {
		return nil, NewForbiddenError("you cannot report your own content")
	}

	if err := s.checkDuplicate(report); err != nil {
		return nil, err
	}

	report.ContentSnapshot["filter"] = contentfilter.Analyze(input.Description)

	// Stamp creation time explicitly so the deadline is exactly created+window.
	now := time.Now().UTC()
	report.CreatedAt = now
	report.SLADeadline = now.Add(s.slaWindow)

	if err := s.db.Create(report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	// Surface the new report in the moderation inbox, best effort.
	go s.notifyAdminsNewReport(report)

	return report, nil
}

func (s *ReportService) checkDuplicate(report *models.Report) error {
	query := s.db.Model(&models.Report{}).
		Where("reporter_id = ?", report.ReporterID).
		Where("status IN ?", []models.ReportStatus{models.ReportStatusPending, models.ReportStatusUnderReview}).
		Where("created_at > ?", time.Now().Add(-duplicateWindow))

	if report.TargetType == models.ReportTargetImage {
		query = query.Where("target_type = ? AND target_image_id = ?", models.ReportTargetImage, report.TargetImageID)
	} else {
		query = query.Where("target_type = ? AND target_user_id = ?", models.ReportTargetUser, report.TargetUserID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return NewConflictError("you have already reported this recently")
	}

	return nil
}

// SetStatus moves a report through the state machine. Terminal states are
// final; entering one stamps the resolution fields.
func (s *ReportService) SetStatus(reportID uuid.UUID, newStatus models.ReportStatus, adminID uuid.UUID) (*models.Report, error) {
	if !newStatus.IsValid() {
		return nil, NewValidationError("invalid report status: %s", newStatus)
	}

	var report models.Report
	if err := s.db.First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("report")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if report.Status.IsTerminal() {
		return nil, NewConflictError("report is already closed")
	}

	report.Status = newStatus
	if newStatus.IsTerminal() {
		now := time.Now()
		report.ResolvedAt = &now
		report.ResolvedByAdminID = &adminID
		if report.ResolutionAction == "" {
			report.ResolutionAction = models.ResolutionNoAction
		}
	}

	if err := s.db.Save(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to update report: %w", err)
	}

	return &report, nil
}

// MarkBreached flips sla_breached on every overdue open report. Idempotent:
// the predicate excludes already-marked rows, so repeated sweeps are no-ops.
func (s *ReportService) MarkBreached() (int64, error) {
	result := s.db.Model(&models.Report{}).
		Where("status IN ?", []models.ReportStatus{models.ReportStatusPending, models.ReportStatusUnderReview}).
		Where("sla_deadline < ?", time.Now()).
		Where("sla_breached = ?", false).
		Update("sla_breached", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark breached reports: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// AtRisk returns open reports whose deadline falls within the window,
// soonest deadline first. The ordering is the tie-break for alert priority.
func (s *ReportService) AtRisk(window time.Duration) ([]models.Report, error) {
	now := time.Now()

	var reports []models.Report
	err := s.db.
		Where("status IN ?", []models.ReportStatus{models.ReportStatusPending, models.ReportStatusUnderReview}).
		Where("sla_deadline > ? AND sla_deadline <= ?", now, now.Add(window)).
		Order("sla_deadline ASC").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch at-risk reports: %w", err)
	}

	return reports, nil
}

// TerminalReportIDs returns the subset of ids whose report has reached a
// terminal status. The SLA monitor uses it to retire alert-dedup keys.
func (s *ReportService) TerminalReportIDs(ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var terminal []uuid.UUID
	err := s.db.Model(&models.Report{}).
		Where("id IN ?", ids).
		Where("status IN ?", []models.ReportStatus{models.ReportStatusResolved, models.ReportStatusDismissed}).
		Pluck("id", &terminal).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch terminal reports: %w", err)
	}

	return terminal, nil
}

// GetAdminReports lists reports for the moderation queue with computed SLA
// fields.
func (s *ReportService) GetAdminReports(filter AdminReportFilter) ([]ReportView, int64, error) {
	query := s.db.Model(&models.Report{}).Preload("Reporter").Preload("TargetUser")

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Reason != nil {
		query = query.Where("reason = ?", *filter.Reason)
	}
	if filter.SLAAtRisk {
		query = query.
			Where("status IN ?", []models.ReportStatus{models.ReportStatusPending, models.ReportStatusUnderReview}).
			Where("sla_deadline <= ?", time.Now().Add(4*time.Hour))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	query = applySort(query, filter.Params, []string{"created_at", "updated_at", "sla_deadline", "status", "reason"})
	query = applyPagination(query, filter.Params)

	var reports []models.Report
	if err := query.Find(&reports).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reports: %w", err)
	}

	return s.toViews(reports), total, nil
}

// GetReport fetches one report plus up to 5 historical reports against the
// same target user.
func (s *ReportService) GetReport(reportID uuid.UUID) (*ReportView, []ReportView, error) {
	var report models.Report
	err := s.db.Preload("Reporter").Preload("TargetUser").Preload("Resolver").
		First(&report, "id = ?", reportID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, NewNotFoundError("report")
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	var related []models.Report
	err = s.db.
		Where("target_user_id = ? AND id != ?", report.TargetUserID, report.ID).
		Order("created_at DESC").
		Limit(5).
		Find(&related).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch related reports: %w", err)
	}

	view := s.toViews([]models.Report{report})
	return &view[0], s.toViews(related), nil
}

// GetMyReports lists the caller's own reports, newest first.
func (s *ReportService) GetMyReports(reporterID uuid.UUID, params PaginationParams) ([]models.Report, int64, error) {
	query := s.db.Model(&models.Report{}).Where("reporter_id = ?", reporterID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	var reports []models.Report
	err := applyPagination(query.Order("created_at DESC"), params).Find(&reports).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reports: %w", err)
	}

	return reports, total, nil
}

// GetStats aggregates queue health for the admin dashboard.
func (s *ReportService) GetStats() (*ReportStats, error) {
	stats := &ReportStats{
		ByStatus: make(map[models.ReportStatus]int64),
		ByReason: make(map[models.ReportReason]int64),
	}
	now := time.Now()
	dayAgo := now.Add(-24 * time.Hour)

	if err := s.db.Model(&models.Report{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	type statusCount struct {
		Status models.ReportStatus
		Count  int64
	}
	var statusCounts []statusCount
	if err := s.db.Model(&models.Report{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate by status: %w", err)
	}
	for _, sc := range statusCounts {
		stats.ByStatus[sc.Status] = sc.Count
	}

	type reasonCount struct {
		Reason models.ReportReason
		Count  int64
	}
	var reasonCounts []reasonCount
	if err := s.db.Model(&models.Report{}).
		Select("reason, COUNT(*) as count").
		Group("reason").
		Scan(&reasonCounts).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate by reason: %w", err)
	}
	for _, rc := range reasonCounts {
		stats.ByReason[rc.Reason] = rc.Count
	}

	s.db.Model(&models.Report{}).
		Where("status IN ?", []models.ReportStatus{models.ReportStatusPending, models.ReportStatusUnderReview}).
		Where("sla_deadline > ? AND sla_deadline <= ?", now, now.Add(4*time.Hour)).
		Count(&stats.SLAAtRisk)

	s.db.Model(&models.Report{}).
		Where("sla_breached = ?", true).
		Count(&stats.SLABreached)

	s.db.Model(&models.Report{}).
		Where("created_at >= ?", dayAgo).
		Count(&stats.CreatedLast24h)

	s.db.Model(&models.Report{}).
		Where("resolved_at >= ?", dayAgo).
		Count(&stats.ResolvedLast24h)

	return stats, nil
}

func (s *ReportService) toViews(reports []models.Report) []ReportView {
	now := time.Now()
	views := make([]ReportView, 0, len(reports))
	for _, report := range reports {
		views = append(views, ReportView{
			Report:                  report,
			SLATimeRemainingSeconds: int64(report.SLATimeRemaining(now).Seconds()),
			SLAAtRisk:               report.SLAAtRisk(now, 4*time.Hour),
		})
	}
	return views
}

func (s *ReportService) notifyAdminsNewReport(report *models.Report) {
	if s.notificationService != nil {
		s.notificationService.NotifyAdminsNewReport(report)
	}
}

func snapshotImage(image *models.Image) models.JSONB {
	return models.JSONB{
		"type":           "image",
		"title":          image.Title,
		"description":    image.Description,
		"file_url":       image.FileURL,
		"thumbnail_url":  image.ThumbnailURL,
		"owner_id":       image.OwnerID.String(),
		"owner_username": image.Owner.Username,
		"tags":           []string(image.Tags),
	}
}

func snapshotUser(user *models.User) models.JSONB {
	return models.JSONB{
		"type":       "user",
		"username":   user.Username,
		"bio":        user.Bio,
		"avatar_url": user.AvatarURL,
	}
}

// applySort/applyPagination mirror the utils helpers for service-side filters.
// applySort orders by one of the allowed columns, falling back to the first
// entry. Entries may be table-qualified (e.g. "images.created_at") so joined
// queries stay unambiguous; clients sort by the bare column name.
func applySort(db *gorm.DB, params PaginationParams, allowedSortFields []string) *gorm.DB {
	sortColumn := allowedSortFields[0]
	for _, column := range allowedSortFields {
		if params.Sort == column || strings.HasSuffix(column, "."+params.Sort) {
			sortColumn = column
			break
		}
	}

	order := params.Order
	if order != "asc" && order != "desc" {
		order = "desc"
	}

	return db.Order(sortColumn + " " + order)
}

func applyPagination(db *gorm.DB, params PaginationParams) *gorm.DB {
	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	return db.Offset((page - 1) * limit).Limit(limit)
}
