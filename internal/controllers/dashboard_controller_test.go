package controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sigo-api/internal/apperrors"
	"sigo-api/internal/controllers"
	"sigo-api/internal/models"
	"sigo-api/internal/service/mocks"
)

const dashboardPath = "/v1/powerbi/workspaces/ws-1/dashboards/d-1"

func setupDashboardRouter(t *testing.T) (*gin.Engine, *mocks.MockDashboardService) {
	ctrl := gomock.NewController(t)
	dashboardService := mocks.NewMockDashboardService(ctrl)
	dc := controllers.NewDashboardController(dashboardService)

	router := gin.New()
	pbi := router.Group("/v1/powerbi")
	pbi.POST("/sync", dc.Sync)
	pbi.GET("/dashboards", dc.List)
	pbi.GET("/dashboards/group/:group_id", dc.ListByGroup)
	pbi.GET("/workspaces/:workspace_id/dashboards/:dashboard_id", dc.Get)
	pbi.PATCH("/workspaces/:workspace_id/dashboards/:dashboard_id", dc.Update)
	pbi.DELETE("/workspaces/:workspace_id/dashboards/:dashboard_id", dc.Delete)
	pbi.GET("/workspaces/:workspace_id/dashboards/:dashboard_id/qrcode", dc.QRCode)
	pbi.POST("/refresh", dc.Refresh)
	pbi.GET("/refresh-status", dc.RefreshStatus)
	return router, dashboardService
}

func TestDashboardController_Sync(t *testing.T) {
	router, dashboardService := setupDashboardRouter(t)

	dashboardService.EXPECT().Sync(gomock.Any()).Return(&models.SyncResponse{
		Message:          "Synced 1 dashboards",
		Synced:           1,
		FailedWorkspaces: []string{"ws-9"},
		Dashboards:       []models.DashboardResponse{{DashboardID: "d-1", DashboardName: "Sales", WorkspaceID: "ws-1"}},
	}, nil)

	rr := perform(router, http.MethodPost, "/v1/powerbi/sync", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"failed_workspaces":["ws-9"]`)
}

func TestDashboardController_PowerBIErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "not configured", err: apperrors.ErrPowerBINotConfigured, wantStatus: http.StatusServiceUnavailable, wantCode: "powerbi_not_configured"},
		{name: "upstream", err: fmt.Errorf("list workspaces: %w", apperrors.ErrUpstream), wantStatus: http.StatusBadGateway, wantCode: "upstream_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, dashboardService := setupDashboardRouter(t)
			dashboardService.EXPECT().Sync(gomock.Any()).Return(nil, tt.err)

			rr := perform(router, http.MethodPost, "/v1/powerbi/sync", nil)
			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rr).Code)
		})
	}
}

func TestDashboardController_ListByGroup(t *testing.T) {
	router, dashboardService := setupDashboardRouter(t)

	dashboardService.EXPECT().ListByGroup(gomock.Any(), groupID).Return([]models.DashboardResponse{}, nil)

	rr := perform(router, http.MethodGet, "/v1/powerbi/dashboards/group/"+groupID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestDashboardController_Get(t *testing.T) {
	router, dashboardService := setupDashboardRouter(t)
	web := "https://app.powerbi.com/d/1"

	dashboardService.EXPECT().Get(gomock.Any(), "ws-1", "d-1").Return(&models.DashboardResponse{
		DashboardID:   "d-1",
		DashboardName: "Sales",
		WorkspaceID:   "ws-1",
		WebURL:        &web,
	}, nil)

	rr := perform(router, http.MethodGet, dashboardPath, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, `"dashboard_name":"Sales"`)
	assert.Contains(t, body, `"web_url":"https://app.powerbi.com/d/1"`)
	assert.NotContains(t, body, "group_id")
}

func TestDashboardController_Update(t *testing.T) {
	router, dashboardService := setupDashboardRouter(t)
	empty := ""

	dashboardService.EXPECT().
		Update(gomock.Any(), "ws-1", "d-1", &models.UpdateDashboardRequest{GroupID: &empty}).
		Return(&models.DashboardResponse{DashboardID: "d-1", WorkspaceID: "ws-1"}, nil)

	rr := perform(router, http.MethodPatch, dashboardPath, map[string]string{"group_id": ""})
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestDashboardController_Update_BadGroupID(t *testing.T) {
	router, _ := setupDashboardRouter(t)

	rr := perform(router, http.MethodPatch, dashboardPath, map[string]string{"group_id": "finance"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeError(t, rr).Details, "group_id")
}

func TestDashboardController_Delete(t *testing.T) {
	router, dashboardService := setupDashboardRouter(t)

	dashboardService.EXPECT().Delete(gomock.Any(), "ws-1", "d-1").Return(nil)

	rr := perform(router, http.MethodDelete, dashboardPath, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestDashboardController_QRCode(t *testing.T) {
	router, dashboardService := setupDashboardRouter(t)
	png := []byte("\x89PNG\r\n\x1a\nfake")

	dashboardService.EXPECT().QRCode(gomock.Any(), "ws-1", "d-1").Return(png, nil)

	rr := perform(router, http.MethodGet, dashboardPath+"/qrcode", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, "inline; filename=qrcode.png", rr.Header().Get("Content-Disposition"))
	assert.Equal(t, png, rr.Body.Bytes())
}

func TestDashboardController_QRCode_NoWebURL(t *testing.T) {
	router, dashboardService := setupDashboardRouter(t)

	dashboardService.EXPECT().QRCode(gomock.Any(), "ws-1", "d-1").Return(nil, apperrors.ErrNotFound)

	rr := perform(router, http.MethodGet, dashboardPath+"/qrcode", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
}

func TestDashboardController_Refresh(t *testing.T) {
	router, dashboardService := setupDashboardRouter(t)

	dashboardService.EXPECT().Refresh(gomock.Any(), "ws-1", "ds-1").Return(nil)

	rr := perform(router, http.MethodPost, "/v1/powerbi/refresh", map[string]string{"workspace_id": "ws-1", "dataset_id": "ds-1"})
	require.Equal(t, http.StatusAccepted, rr.Code)

	rr = perform(router, http.MethodPost, "/v1/powerbi/refresh", map[string]string{"workspace_id": "ws-1"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "is required", decodeError(t, rr).Details["dataset_id"])
}

func TestDashboardController_RefreshStatus(t *testing.T) {
	router, dashboardService := setupDashboardRouter(t)
	last := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	dashboardService.EXPECT().
		RefreshStatus(gomock.Any(), "ws-1", "ds-1").
		Return(&models.RefreshStatusResponse{RemainingRefreshCount: 5, LastUpdatedAt: &last}, nil)

	rr := perform(router, http.MethodGet, "/v1/powerbi/refresh-status?workspace_id=ws-1&dataset_id=ds-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"remaining_refresh_count":5,"last_updated_at":"2026-03-01T08:00:00Z"}`, rr.Body.String())

	rr = perform(router, http.MethodGet, "/v1/powerbi/refresh-status?workspace_id=ws-1", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeError(t, rr).Details, "dataset_id")
}
