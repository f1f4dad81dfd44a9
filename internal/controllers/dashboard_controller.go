package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sigo-api/internal/models"
	"sigo-api/internal/service"
)

type DashboardController struct {
	dashboardService service.DashboardService
}

func NewDashboardController(dashboardService service.DashboardService) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
	}
}

// Sync handles POST /v1/powerbi/sync
func (dc *DashboardController) Sync(c *gin.Context) {
	result, err := dc.dashboardService.Sync(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// List handles GET /v1/powerbi/dashboards
func (dc *DashboardController) List(c *gin.Context) {
	dashboards, err := dc.dashboardService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboards)
}

// ListByGroup handles GET /v1/powerbi/dashboards/group/:group_id
func (dc *DashboardController) ListByGroup(c *gin.Context) {
	dashboards, err := dc.dashboardService.ListByGroup(c.Request.Context(), c.Param("group_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboards)
}

// Get handles GET /v1/powerbi/workspaces/:workspace_id/dashboards/:dashboard_id
func (dc *DashboardController) Get(c *gin.Context) {
	dashboard, err := dc.dashboardService.Get(c.Request.Context(), c.Param("workspace_id"), c.Param("dashboard_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// Update handles PATCH /v1/powerbi/workspaces/:workspace_id/dashboards/:dashboard_id
func (dc *DashboardController) Update(c *gin.Context) {
	var req models.UpdateDashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	dashboard, err := dc.dashboardService.Update(c.Request.Context(), c.Param("workspace_id"), c.Param("dashboard_id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// Delete handles DELETE /v1/powerbi/workspaces/:workspace_id/dashboards/:dashboard_id
func (dc *DashboardController) Delete(c *gin.Context) {
	if err := dc.dashboardService.Delete(c.Request.Context(), c.Param("workspace_id"), c.Param("dashboard_id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// QRCode handles GET /v1/powerbi/workspaces/:workspace_id/dashboards/:dashboard_id/qrcode
func (dc *DashboardController) QRCode(c *gin.Context) {
	pngData, err := dc.dashboardService.QRCode(c.Request.Context(), c.Param("workspace_id"), c.Param("dashboard_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename=qrcode.png")
	c.Data(http.StatusOK, "image/png", pngData)
}

// Refresh handles POST /v1/powerbi/refresh
func (dc *DashboardController) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := dc.dashboardService.Refresh(c.Request.Context(), req.WorkspaceID, req.DatasetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, models.MessageResponse{Message: "Refresh triggered"})
}

// RefreshStatus handles GET /v1/powerbi/refresh-status?workspace_id=&dataset_id=
func (dc *DashboardController) RefreshStatus(c *gin.Context) {
	var query models.RefreshStatusQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	status, err := dc.dashboardService.RefreshStatus(c.Request.Context(), query.WorkspaceID, query.DatasetID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}
