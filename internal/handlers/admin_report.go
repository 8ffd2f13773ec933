// internal/handlers/admin_report.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/artfolio/artfolio-backend/internal/i18n"
	"github.com/artfolio/artfolio-backend/internal/models"
	"github.com/artfolio/artfolio-backend/internal/services"
	"github.com/artfolio/artfolio-backend/internal/utils"
)

// AdminReportHandler serves the moderation queue: listing, triage and the
// resolution actions.
type AdminReportHandler struct {
	reportService     *services.ReportService
	moderationService *services.ModerationService
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type moderationActionRequest struct {
	Reason       string `json:"reason"`
	Notes        string `json:"notes" validate:"max=2000"`
	SuspendDays  int    `json:"suspend_days" validate:"omitempty,min=1,max=365"`
	NotifyTarget *bool  `json:"notify_target"` // remove-content only; omitted means true
}

func NewAdminReportHandler(reportService *services.ReportService, moderationService *services.ModerationService) *AdminReportHandler {
	return &AdminReportHandler{
		reportService:     reportService,
		moderationService: moderationService,
	}
}

// GET /admin/reports
func (h *AdminReportHandler) GetReports(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := services.AdminReportFilter{Params: toServiceParams(params)}

	if status := c.Query("status"); status != "" {
		reportStatus := models.ReportStatus(status)
		if !reportStatus.IsValid() {
			utils.BadRequestResponse(c, "invalid status filter", nil)
			return
		}
		filter.Status = &reportStatus
	}
	if reason := c.Query("reason"); reason != "" {
		reportReason := models.ReportReason(reason)
		if !reportReason.IsValid() {
			utils.BadRequestResponse(c, "invalid reason filter", nil)
			return
		}
		filter.Reason = &reportReason
	}
	if atRiskStr := c.Query("sla_at_risk"); atRiskStr != "" {
		if atRisk, err := strconv.ParseBool(atRiskStr); err == nil {
			filter.SLAAtRisk = atRisk
		}
	}

	reports, total, err := h.reportService.GetAdminReports(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(reports, total, params))
}

// GET /admin/reports/stats
func (h *AdminReportHandler) GetStats(c *gin.Context) {
	stats, err := h.reportService.GetStats()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

// GET /admin/reports/:id
func (h *AdminReportHandler) GetReport(c *gin.Context) {
	reportID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	report, related, err := h.reportService.GetReport(reportID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"report":          report,
		"related_reports": related,
	})
}

// PATCH /admin/reports/:id/status
func (h *AdminReportHandler) UpdateStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	reportID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	report, err := h.reportService.SetStatus(reportID, models.ReportStatus(req.Status), adminID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, report)
}

// POST /admin/reports/:id/action/warn-user
func (h *AdminReportHandler) WarnUser(c *gin.Context) {
	h.runAction(c, i18n.KeyModerationWarned, h.moderationService.WarnUser)
}

// POST /admin/reports/:id/action/suspend-user
func (h *AdminReportHandler) SuspendUser(c *gin.Context) {
	h.runAction(c, i18n.KeyModerationSuspended, h.moderationService.SuspendUser)
}

// POST /admin/reports/:id/action/ban-user
func (h *AdminReportHandler) BanUser(c *gin.Context) {
	h.runAction(c, i18n.KeyModerationBanned, h.moderationService.BanUser)
}

// POST /admin/reports/:id/action/remove-content
func (h *AdminReportHandler) RemoveContent(c *gin.Context) {
	h.runAction(c, i18n.KeyModerationRemoved, h.moderationService.RemoveContent)
}

// POST /admin/reports/:id/action/dismiss
func (h *AdminReportHandler) Dismiss(c *gin.Context) {
	h.runAction(c, i18n.KeyModerationDismissed, h.moderationService.Dismiss)
}

func (h *AdminReportHandler) runAction(c *gin.Context, messageKey string, action func(services.ModerationActionInput) (*models.Report, error)) {
	lang := utils.GetLangFromContext(c)

	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	reportID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	// An empty body is fine for actions that need no reason.
	var req moderationActionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
			return
		}
		if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
			utils.ValidationErrorResponse(c, validationErrors)
			return
		}
	}

	report, err := action(services.ModerationActionInput{
		ReportID:     reportID,
		AdminID:      adminID,
		Reason:       req.Reason,
		Notes:        req.Notes,
		SuspendDays:  req.SuspendDays,
		NotifyTarget: req.NotifyTarget,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"report":  report,
		"message": i18n.T(lang, messageKey),
	})
}
