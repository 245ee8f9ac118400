package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/udonggeum-storefront/internal/app/service"
	"github.com/ikkim/udonggeum-storefront/internal/errors"
	"github.com/ikkim/udonggeum-storefront/internal/middleware"
)

type ModerationController struct {
	moderationService service.ModerationService
}

func NewModerationController(moderationService service.ModerationService) *ModerationController {
	return &ModerationController{
		moderationService: moderationService,
	}
}

type ResolveReportRequest struct {
	Action string `json:"action" binding:"required"`
	Note   string `json:"note"`
}

// GetReports lists moderation reports
// GET /api/v1/moderation/reports?status=&page=&pageSize=
func (ctrl *ModerationController) GetReports(c *gin.Context) {
	page, err := ctrl.moderationService.ListReports(c.Request.Context(), middleware.GetToken(c), c.Query("status"), queryInt(c, "page", 1), queryInt(c, "pageSize", 0))
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list reports", err)
		respondError(c, err, "list reports")
		return
	}

	c.JSON(http.StatusOK, page)
}

// ResolveReport applies a moderation decision
// POST /api/v1/moderation/reports/:id/resolve
func (ctrl *ModerationController) ResolveReport(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	reportID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req ResolveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.RespondWithValidationError(c, map[string]string{
			"action": "required",
		})
		return
	}

	report, err := ctrl.moderationService.ResolveReport(c.Request.Context(), middleware.GetToken(c), reportID, req.Action, req.Note)
	if err != nil {
		log.Warn("Failed to resolve report", map[string]interface{}{
			"report_id": reportID,
			"action":    req.Action,
			"error":     err.Error(),
		})
		respondError(c, err, "resolve report")
		return
	}

	fields := map[string]interface{}{
		"report_id": reportID,
		"action":    req.Action,
	}
	if user, ok := middleware.GetCurrentUser(c); ok {
		fields["moderator_id"] = user.ID
	}
	log.Info("Report resolved", fields)

	c.JSON(http.StatusOK, report)
}
