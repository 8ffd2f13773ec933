// internal/handlers/report.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/artfolio/artfolio-backend/internal/i18n"
	"github.com/artfolio/artfolio-backend/internal/models"
	"github.com/artfolio/artfolio-backend/internal/services"
	"github.com/artfolio/artfolio-backend/internal/utils"
)

type ReportHandler struct {
	reportService *services.ReportService
}

type submitReportRequest struct {
	Reason      string `json:"reason" validate:"required"`
	Description string `json:"description" validate:"max=2000"`
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// POST /reports/image/:imageId
func (h *ReportHandler) ReportImage(c *gin.Context) {
	h.submit(c, models.ReportTargetImage, "imageId")
}

// POST /reports/user/:userId
func (h *ReportHandler) ReportUser(c *gin.Context) {
	h.submit(c, models.ReportTargetUser, "userId")
}

func (h *ReportHandler) submit(c *gin.Context, targetType models.ReportTargetType, param string) {
	lang := utils.GetLangFromContext(c)

	reporterID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := pathUUID(c, param)
	if !ok {
		return
	}

	var req submitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	report, err := h.reportService.Submit(services.SubmitReportInput{
		ReporterID:  reporterID,
		TargetType:  targetType,
		TargetID:    targetID,
		Reason:      models.ReportReason(req.Reason),
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"report":  report,
		"message": i18n.T(lang, i18n.KeyReportCreated),
	})
}

// GET /reports/my-reports
func (h *ReportHandler) GetMyReports(c *gin.Context) {
	reporterID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	reports, total, err := h.reportService.GetMyReports(reporterID, toServiceParams(params))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(reports, total, params))
}

// GET /reports/reasons
func (h *ReportHandler) GetReportReasons(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"reasons": models.AllReportReasons(),
	})
}

func toServiceParams(params utils.PaginationParams) services.PaginationParams {
	return services.PaginationParams{
		Page:  params.Page,
		Limit: params.Limit,
		Sort:  params.Sort,
		Order: params.Order,
	}
}
