package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sigo-api/internal/apperrors"
	"sigo-api/internal/entities"
	"sigo-api/internal/mocks"
	"sigo-api/internal/models"
	"sigo-api/internal/powerbi"
)

type dashboardFixture struct {
	dashboards *mocks.DashboardRepository
	groups     *mocks.GroupRepository
	pbi        *mocks.PowerBIClient
	svc        *dashboardService
}

func newDashboardFixture() *dashboardFixture {
	f := &dashboardFixture{
		dashboards: new(mocks.DashboardRepository),
		groups:     new(mocks.GroupRepository),
		pbi:        new(mocks.PowerBIClient),
	}
	f.svc = NewDashboardService(f.dashboards, f.groups, f.pbi, zap.NewNop()).(*dashboardService)
	return f
}

func TestDashboardService_Sync_SkipsFailingWorkspace(t *testing.T) {
	f := newDashboardFixture()

	f.pbi.On("Workspaces", mock.Anything).Return([]powerbi.Workspace{
		{ID: "ws-1", Name: "Commercial"},
		{ID: "ws-2", Name: "Broken"},
	}, nil)
	f.pbi.On("WorkspaceDashboards", mock.Anything, "ws-1").Return([]powerbi.Dashboard{
		{ID: "d-1", DisplayName: "Sales", WebURL: "https://app.powerbi.com/d/1"},
	}, nil)
	f.pbi.On("WorkspaceDashboards", mock.Anything, "ws-2").Return(nil, apperrors.ErrUpstream)

	synced := []*entities.Dashboard{{DashboardID: "d-1", DashboardName: "Sales", WorkspaceID: "ws-1"}}
	f.dashboards.On("UpsertAll", mock.Anything, mock.MatchedBy(func(ds []*entities.Dashboard) bool {
		return len(ds) == 1 &&
			ds[0].DashboardID == "d-1" &&
			*ds[0].WorkspaceName == "Commercial" &&
			*ds[0].WebURL == "https://app.powerbi.com/d/1" &&
			ds[0].EmbedURL == nil &&
			ds[0].GroupID == nil
	})).Return(synced, nil)

	resp, err := f.svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Synced)
	assert.Equal(t, []string{"ws-2"}, resp.FailedWorkspaces)
	require.Len(t, resp.Dashboards, 1)
	assert.Equal(t, "Sales", resp.Dashboards[0].DashboardName)
	f.dashboards.AssertExpectations(t)
}

func TestDashboardService_Sync_WorkspaceListFails(t *testing.T) {
	f := newDashboardFixture()
	f.pbi.On("Workspaces", mock.Anything).Return(nil, apperrors.ErrUpstream)

	_, err := f.svc.Sync(context.Background())
	require.ErrorIs(t, err, apperrors.ErrUpstream)
	f.dashboards.AssertNotCalled(t, "UpsertAll", mock.Anything, mock.Anything)
}

func TestDashboardService_NotConfigured(t *testing.T) {
	svc := NewDashboardService(new(mocks.DashboardRepository), new(mocks.GroupRepository), nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Sync(ctx)
	assert.ErrorIs(t, err, apperrors.ErrPowerBINotConfigured)
	assert.ErrorIs(t, svc.Delete(ctx, "ws", "d"), apperrors.ErrPowerBINotConfigured)
	assert.ErrorIs(t, svc.Refresh(ctx, "ws", "ds"), apperrors.ErrPowerBINotConfigured)
	_, err = svc.RefreshStatus(ctx, "ws", "ds")
	assert.ErrorIs(t, err, apperrors.ErrPowerBINotConfigured)
}

func TestDashboardService_ListByGroup_UnknownGroup(t *testing.T) {
	f := newDashboardFixture()
	f.groups.On("FindByID", mock.Anything, testGroupID).Return(nil, apperrors.ErrNotFound)

	_, err := f.svc.ListByGroup(context.Background(), testGroupID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	f.dashboards.AssertNotCalled(t, "ListByGroup", mock.Anything, mock.Anything)
}

func TestDashboardService_Update_ChecksGroup(t *testing.T) {
	f := newDashboardFixture()
	groupID := testGroupID
	f.groups.On("FindByID", mock.Anything, testGroupID).Return(&entities.Group{ID: testGroupID}, nil)
	f.dashboards.On("Update", mock.Anything, "ws-1", "d-1", entities.DashboardChanges{GroupID: &groupID}).
		Return(&entities.Dashboard{DashboardID: "d-1", GroupID: &groupID}, nil)

	got, err := f.svc.Update(context.Background(), "ws-1", "d-1", &models.UpdateDashboardRequest{GroupID: &groupID})
	require.NoError(t, err)
	assert.Equal(t, testGroupID, *got.GroupID)
}

func TestDashboardService_Update_ClearGroupSkipsLookup(t *testing.T) {
	f := newDashboardFixture()
	empty := ""
	f.dashboards.On("Update", mock.Anything, "ws-1", "d-1", entities.DashboardChanges{GroupID: &empty}).
		Return(&entities.Dashboard{DashboardID: "d-1"}, nil)

	_, err := f.svc.Update(context.Background(), "ws-1", "d-1", &models.UpdateDashboardRequest{GroupID: &empty})
	require.NoError(t, err)
	f.groups.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestDashboardService_Update_UppercaseGroupID(t *testing.T) {
	f := newDashboardFixture()
	groupID := testGroupID
	upper := strings.ToUpper(testGroupID)
	f.groups.On("FindByID", mock.Anything, testGroupID).Return(&entities.Group{ID: testGroupID}, nil)
	f.dashboards.On("Update", mock.Anything, "ws-1", "d-1", entities.DashboardChanges{GroupID: &groupID}).
		Return(&entities.Dashboard{DashboardID: "d-1", GroupID: &groupID}, nil)

	_, err := f.svc.Update(context.Background(), "ws-1", "d-1", &models.UpdateDashboardRequest{GroupID: &upper})
	require.NoError(t, err)
	f.dashboards.AssertExpectations(t)
}

func TestDashboardService_Get_RefreshesFromPowerBI(t *testing.T) {
	f := newDashboardFixture()
	wsName := "Commercial"
	oldWeb := "https://app.powerbi.com/d/old"
	newWeb := "https://app.powerbi.com/d/1"
	groupID := testGroupID

	f.dashboards.On("FindByID", mock.Anything, "ws-1", "d-1").Return(&entities.Dashboard{
		DashboardID:   "d-1",
		DashboardName: "Sales",
		WorkspaceID:   "ws-1",
		WorkspaceName: &wsName,
		WebURL:        &oldWeb,
		GroupID:       &groupID,
	}, nil)
	f.pbi.On("WorkspaceDashboard", mock.Anything, "ws-1", "d-1").Return(&powerbi.Dashboard{
		ID: "d-1", DisplayName: "Sales 2024", WebURL: newWeb,
	}, nil)
	f.dashboards.On("UpsertAll", mock.Anything, mock.MatchedBy(func(ds []*entities.Dashboard) bool {
		return len(ds) == 1 &&
			ds[0].DashboardName == "Sales 2024" &&
			*ds[0].WebURL == newWeb &&
			*ds[0].WorkspaceName == "Commercial"
	})).Return([]*entities.Dashboard{{
		DashboardID:   "d-1",
		DashboardName: "Sales 2024",
		WorkspaceID:   "ws-1",
		WebURL:        &newWeb,
		GroupID:       &groupID,
	}}, nil)

	got, err := f.svc.Get(context.Background(), "ws-1", "d-1")
	require.NoError(t, err)
	assert.Equal(t, "Sales 2024", got.DashboardName)
	assert.Equal(t, newWeb, *got.WebURL)
	assert.Equal(t, testGroupID, *got.GroupID)
	f.dashboards.AssertExpectations(t)
}

func TestDashboardService_Get_UnchangedSkipsWrite(t *testing.T) {
	f := newDashboardFixture()
	web := "https://app.powerbi.com/d/1"
	f.dashboards.On("FindByID", mock.Anything, "ws-1", "d-1").Return(&entities.Dashboard{
		DashboardID: "d-1", DashboardName: "Sales", WorkspaceID: "ws-1", WebURL: &web,
	}, nil)
	f.pbi.On("WorkspaceDashboard", mock.Anything, "ws-1", "d-1").Return(&powerbi.Dashboard{
		ID: "d-1", DisplayName: "Sales", WebURL: web,
	}, nil)

	got, err := f.svc.Get(context.Background(), "ws-1", "d-1")
	require.NoError(t, err)
	assert.Equal(t, "Sales", got.DashboardName)
	f.dashboards.AssertNotCalled(t, "UpsertAll", mock.Anything, mock.Anything)
}

func TestDashboardService_Get_PowerBIUnavailableServesStored(t *testing.T) {
	f := newDashboardFixture()
	f.dashboards.On("FindByID", mock.Anything, "ws-1", "d-1").Return(&entities.Dashboard{
		DashboardID: "d-1", DashboardName: "Sales", WorkspaceID: "ws-1",
	}, nil)
	f.pbi.On("WorkspaceDashboard", mock.Anything, "ws-1", "d-1").Return(nil, apperrors.ErrUpstream)

	got, err := f.svc.Get(context.Background(), "ws-1", "d-1")
	require.NoError(t, err)
	assert.Equal(t, "Sales", got.DashboardName)
	f.dashboards.AssertNotCalled(t, "UpsertAll", mock.Anything, mock.Anything)
}

func TestDashboardService_Get_NotConfiguredReadsCatalogue(t *testing.T) {
	dashboards := new(mocks.DashboardRepository)
	svc := NewDashboardService(dashboards, new(mocks.GroupRepository), nil, zap.NewNop())
	dashboards.On("FindByID", mock.Anything, "ws-1", "d-1").Return(&entities.Dashboard{
		DashboardID: "d-1", DashboardName: "Sales", WorkspaceID: "ws-1",
	}, nil)

	got, err := svc.Get(context.Background(), "ws-1", "d-1")
	require.NoError(t, err)
	assert.Equal(t, "d-1", got.DashboardID)
}

func TestDashboardService_Get_UnknownDashboard(t *testing.T) {
	f := newDashboardFixture()
	f.dashboards.On("FindByID", mock.Anything, "ws-1", "nope").Return(nil, apperrors.ErrNotFound)

	_, err := f.svc.Get(context.Background(), "ws-1", "nope")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	f.pbi.AssertNotCalled(t, "WorkspaceDashboard", mock.Anything, mock.Anything, mock.Anything)
}

func TestDashboardService_Delete(t *testing.T) {
	f := newDashboardFixture()
	f.dashboards.On("FindByID", mock.Anything, "ws-1", "d-1").Return(&entities.Dashboard{DashboardID: "d-1"}, nil)
	f.pbi.On("DeleteDashboard", mock.Anything, "ws-1", "d-1").Return(apperrors.ErrNotFound)
	f.dashboards.On("Delete", mock.Anything, "ws-1", "d-1").Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), "ws-1", "d-1"))
	f.dashboards.AssertExpectations(t)
}

func TestDashboardService_Delete_UpstreamFailureKeepsLocalRow(t *testing.T) {
	f := newDashboardFixture()
	f.dashboards.On("FindByID", mock.Anything, "ws-1", "d-1").Return(&entities.Dashboard{DashboardID: "d-1"}, nil)
	f.pbi.On("DeleteDashboard", mock.Anything, "ws-1", "d-1").Return(apperrors.ErrUpstream)

	err := f.svc.Delete(context.Background(), "ws-1", "d-1")
	require.ErrorIs(t, err, apperrors.ErrUpstream)
	f.dashboards.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDashboardService_RefreshStatus(t *testing.T) {
	f := newDashboardFixture()
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	lastEnd := now.Add(-time.Hour)
	history := []powerbi.Refresh{
		{StartTime: now.Add(-2 * time.Hour), EndTime: &lastEnd, Status: "Completed"},
		{StartTime: now.Add(-5 * time.Hour), Status: "Failed"},
		{StartTime: now.Add(-30 * time.Hour), Status: "Completed"},
	}
	f.pbi.On("RefreshHistory", mock.Anything, "ws-1", "ds-1").Return(history, nil)

	got, err := f.svc.RefreshStatus(context.Background(), "ws-1", "ds-1")
	require.NoError(t, err)
	assert.Equal(t, DailyRefreshLimit-2, got.RemainingRefreshCount)
	require.NotNil(t, got.LastUpdatedAt)
	assert.True(t, lastEnd.Equal(*got.LastUpdatedAt))
}

func TestDashboardService_RefreshStatus_FloorsAtZero(t *testing.T) {
	f := newDashboardFixture()
	now := time.Now()
	f.svc.now = func() time.Time { return now }

	history := make([]powerbi.Refresh, 0, 12)
	for i := 0; i < 12; i++ {
		history = append(history, powerbi.Refresh{StartTime: now.Add(-time.Duration(i) * time.Minute)})
	}
	f.pbi.On("RefreshHistory", mock.Anything, "ws-1", "ds-1").Return(history, nil)

	got, err := f.svc.RefreshStatus(context.Background(), "ws-1", "ds-1")
	require.NoError(t, err)
	assert.Zero(t, got.RemainingRefreshCount)
	assert.Nil(t, got.LastUpdatedAt)
}

func TestDashboardService_QRCode(t *testing.T) {
	f := newDashboardFixture()
	web := "https://app.powerbi.com/groups/ws-1/dashboards/d-1"
	f.dashboards.On("FindByID", mock.Anything, "ws-1", "d-1").Return(&entities.Dashboard{DashboardID: "d-1", WebURL: &web}, nil)
	f.dashboards.On("FindByID", mock.Anything, "ws-1", "d-2").Return(&entities.Dashboard{DashboardID: "d-2"}, nil)

	png, err := f.svc.QRCode(context.Background(), "ws-1", "d-1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = f.svc.QRCode(context.Background(), "ws-1", "d-2")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
