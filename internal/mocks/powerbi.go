package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"sigo-api/internal/powerbi"
)

type PowerBIClient struct {
	mock.Mock
}

func (m *PowerBIClient) Workspaces(ctx context.Context) ([]powerbi.Workspace, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]powerbi.Workspace), args.Error(1)
}

func (m *PowerBIClient) WorkspaceDashboards(ctx context.Context, workspaceID string) ([]powerbi.Dashboard, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]powerbi.Dashboard), args.Error(1)
}

func (m *PowerBIClient) WorkspaceDashboard(ctx context.Context, workspaceID, dashboardID string) (*powerbi.Dashboard, error) {
	args := m.Called(ctx, workspaceID, dashboardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*powerbi.Dashboard), args.Error(1)
}

func (m *PowerBIClient) DeleteDashboard(ctx context.Context, workspaceID, dashboardID string) error {
	return m.Called(ctx, workspaceID, dashboardID).Error(0)
}

func (m *PowerBIClient) RefreshDataset(ctx context.Context, workspaceID, datasetID string) error {
	return m.Called(ctx, workspaceID, datasetID).Error(0)
}

func (m *PowerBIClient) RefreshHistory(ctx context.Context, workspaceID, datasetID string) ([]powerbi.Refresh, error) {
	args := m.Called(ctx, workspaceID, datasetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]powerbi.Refresh), args.Error(1)
}
