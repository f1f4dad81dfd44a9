package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sigo-api/internal/apperrors"
	"sigo-api/internal/entities"
	"sigo-api/internal/metrics"
	"sigo-api/internal/models"
	"sigo-api/internal/powerbi"
	"sigo-api/internal/repository"
)

const (
	// DailyRefreshLimit is the Power BI Pro quota of scheduled plus API refreshes.
	DailyRefreshLimit = 8

	syncConcurrency = 4
	qrCodeSize      = 256
)

// PowerBIClient is satisfied by *powerbi.Client
type PowerBIClient interface {
	Workspaces(ctx context.Context) ([]powerbi.Workspace, error)
	WorkspaceDashboards(ctx context.Context, workspaceID string) ([]powerbi.Dashboard, error)
	WorkspaceDashboard(ctx context.Context, workspaceID, dashboardID string) (*powerbi.Dashboard, error)
	DeleteDashboard(ctx context.Context, workspaceID, dashboardID string) error
	RefreshDataset(ctx context.Context, workspaceID, datasetID string) error
	RefreshHistory(ctx context.Context, workspaceID, datasetID string) ([]powerbi.Refresh, error)
}

// DashboardService defines the interface for the dashboard catalogue
type DashboardService interface {
	Sync(ctx context.Context) (*models.SyncResponse, error)
	List(ctx context.Context) ([]models.DashboardResponse, error)
	ListByGroup(ctx context.Context, groupID string) ([]models.DashboardResponse, error)
	Get(ctx context.Context, workspaceID, dashboardID string) (*models.DashboardResponse, error)
	Update(ctx context.Context, workspaceID, dashboardID string, req *models.UpdateDashboardRequest) (*models.DashboardResponse, error)
	Delete(ctx context.Context, workspaceID, dashboardID string) error
	Refresh(ctx context.Context, workspaceID, datasetID string) error
	RefreshStatus(ctx context.Context, workspaceID, datasetID string) (*models.RefreshStatusResponse, error)
	QRCode(ctx context.Context, workspaceID, dashboardID string) ([]byte, error)
}

type dashboardService struct {
	dashboardRepo repository.DashboardRepository
	groupRepo     repository.GroupRepository
	powerbi       PowerBIClient // nil when no service principal is configured
	log           *zap.Logger
	now           func() time.Time
}

// NewDashboardService creates a new dashboard service. pbi may be nil, in
// which case only the local catalogue endpoints work.
func NewDashboardService(
	dashboardRepo repository.DashboardRepository,
	groupRepo repository.GroupRepository,
	pbi PowerBIClient,
	log *zap.Logger,
) DashboardService {
	return &dashboardService{
		dashboardRepo: dashboardRepo,
		groupRepo:     groupRepo,
		powerbi:       pbi,
		log:           log,
		now:           time.Now,
	}
}

func (s *dashboardService) requirePowerBI() error {
	if s.powerbi == nil {
		return apperrors.ErrPowerBINotConfigured
	}
	return nil
}

// Sync pulls every workspace's dashboards from Power BI and upserts them.
// Workspaces that fail are skipped and reported.
func (s *dashboardService) Sync(ctx context.Context) (*models.SyncResponse, error) {
	if err := s.requirePowerBI(); err != nil {
		return nil, err
	}

	workspaces, err := s.powerbi.Workspaces(ctx)
	if err != nil {
		metrics.PowerBISyncTotal.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}

	var (
		mu         sync.Mutex
		dashboards []*entities.Dashboard
		failed     = []string{}
		g          errgroup.Group
	)
	g.SetLimit(syncConcurrency)

	for _, ws := range workspaces {
		g.Go(func() error {
			items, err := s.powerbi.WorkspaceDashboards(ctx, ws.ID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.Warn("Skipping workspace during sync",
					zap.String("workspace_id", ws.ID), zap.Error(err))
				failed = append(failed, ws.ID)
				return nil
			}
			for _, item := range items {
				dashboards = append(dashboards, fromPowerBI(ws, item))
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		metrics.PowerBISyncTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	synced, err := s.dashboardRepo.UpsertAll(ctx, dashboards)
	if err != nil {
		metrics.PowerBISyncTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	metrics.PowerBISyncTotal.WithLabelValues("success").Inc()
	metrics.PowerBISyncedDashboards.Set(float64(len(synced)))
	s.log.Info("Power BI sync finished",
		zap.Int("workspaces", len(workspaces)),
		zap.Int("failed_workspaces", len(failed)),
		zap.Int("dashboards", len(synced)))

	return &models.SyncResponse{
		Message:          fmt.Sprintf("Synced %d dashboards from Power BI", len(synced)),
		Synced:           len(synced),
		FailedWorkspaces: failed,
		Dashboards:       models.NewDashboardResponses(synced),
	}, nil
}

func fromPowerBI(ws powerbi.Workspace, d powerbi.Dashboard) *entities.Dashboard {
	return &entities.Dashboard{
		DashboardID:   d.ID,
		DashboardName: d.DisplayName,
		WorkspaceID:   ws.ID,
		WorkspaceName: optional(ws.Name),
		EmbedURL:      optional(d.EmbedURL),
		WebURL:        optional(d.WebURL),
	}
}

func valueOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *dashboardService) List(ctx context.Context) ([]models.DashboardResponse, error) {
	dashboards, err := s.dashboardRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return models.NewDashboardResponses(dashboards), nil
}

// ListByGroup returns the dashboards assigned to an existing group
func (s *dashboardService) ListByGroup(ctx context.Context, groupID string) ([]models.DashboardResponse, error) {
	groupID, err := canonicalID("group", groupID)
	if err != nil {
		return nil, err
	}
	if _, err := s.groupRepo.FindByID(ctx, groupID); err != nil {
		return nil, err
	}

	dashboards, err := s.dashboardRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return models.NewDashboardResponses(dashboards), nil
}

// Get returns a catalogue entry. When Power BI is configured the name and
// URLs are first brought up to date from the live dashboard; if Power BI
// cannot answer, the stored entry is served as is.
func (s *dashboardService) Get(ctx context.Context, workspaceID, dashboardID string) (*models.DashboardResponse, error) {
	dashboard, err := s.dashboardRepo.FindByID(ctx, workspaceID, dashboardID)
	if err != nil {
		return nil, err
	}

	if s.powerbi != nil {
		if dashboard, err = s.refreshFromPowerBI(ctx, dashboard); err != nil {
			return nil, err
		}
	}

	resp := models.NewDashboardResponse(dashboard)
	return &resp, nil
}

func (s *dashboardService) refreshFromPowerBI(ctx context.Context, stored *entities.Dashboard) (*entities.Dashboard, error) {
	live, err := s.powerbi.WorkspaceDashboard(ctx, stored.WorkspaceID, stored.DashboardID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.log.Warn("Serving stored dashboard, Power BI lookup failed",
			zap.String("workspace_id", stored.WorkspaceID),
			zap.String("dashboard_id", stored.DashboardID),
			zap.Error(err))
		return stored, nil
	}

	if live.DisplayName == stored.DashboardName &&
		live.EmbedURL == valueOf(stored.EmbedURL) &&
		live.WebURL == valueOf(stored.WebURL) {
		return stored, nil
	}

	fresh := fromPowerBI(powerbi.Workspace{ID: stored.WorkspaceID}, *live)
	fresh.WorkspaceName = stored.WorkspaceName
	updated, err := s.dashboardRepo.UpsertAll(ctx, []*entities.Dashboard{fresh})
	if err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		return stored, nil
	}
	return updated[0], nil
}

// Update changes the locally owned fields. A non-empty group must exist.
func (s *dashboardService) Update(ctx context.Context, workspaceID, dashboardID string, req *models.UpdateDashboardRequest) (*models.DashboardResponse, error) {
	changes := entities.DashboardChanges{
		GroupID:         req.GroupID,
		BackgroundImage: req.BackgroundImage,
		PipelineID:      req.PipelineID,
	}
	if req.GroupID != nil && *req.GroupID != "" {
		groupID, err := canonicalID("group", *req.GroupID)
		if err != nil {
			return nil, err
		}
		if _, err := s.groupRepo.FindByID(ctx, groupID); err != nil {
			return nil, err
		}
		changes.GroupID = &groupID
	}

	dashboard, err := s.dashboardRepo.Update(ctx, workspaceID, dashboardID, changes)
	if err != nil {
		return nil, err
	}
	resp := models.NewDashboardResponse(dashboard)
	return &resp, nil
}

// Delete removes the dashboard from Power BI and then from the catalogue.
// A dashboard already gone from Power BI is still removed locally.
func (s *dashboardService) Delete(ctx context.Context, workspaceID, dashboardID string) error {
	if err := s.requirePowerBI(); err != nil {
		return err
	}
	if _, err := s.dashboardRepo.FindByID(ctx, workspaceID, dashboardID); err != nil {
		return err
	}

	err := s.powerbi.DeleteDashboard(ctx, workspaceID, dashboardID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	if err := s.dashboardRepo.Delete(ctx, workspaceID, dashboardID); err != nil {
		return err
	}
	s.log.Info("Dashboard deleted",
		zap.String("workspace_id", workspaceID), zap.String("dashboard_id", dashboardID))
	return nil
}

func (s *dashboardService) Refresh(ctx context.Context, workspaceID, datasetID string) error {
	if err := s.requirePowerBI(); err != nil {
		return err
	}
	if err := s.powerbi.RefreshDataset(ctx, workspaceID, datasetID); err != nil {
		return err
	}
	s.log.Info("Dataset refresh requested",
		zap.String("workspace_id", workspaceID), zap.String("dataset_id", datasetID))
	return nil
}

// RefreshStatus reports the refreshes left in the trailing 24 hours and
// when the newest refresh finished.
func (s *dashboardService) RefreshStatus(ctx context.Context, workspaceID, datasetID string) (*models.RefreshStatusResponse, error) {
	if err := s.requirePowerBI(); err != nil {
		return nil, err
	}

	history, err := s.powerbi.RefreshHistory(ctx, workspaceID, datasetID)
	if err != nil {
		return nil, err
	}

	since := s.now().Add(-24 * time.Hour)
	recent := 0
	for _, r := range history {
		if r.StartTime.After(since) {
			recent++
		}
	}

	resp := &models.RefreshStatusResponse{
		RemainingRefreshCount: max(DailyRefreshLimit-recent, 0),
	}
	if len(history) > 0 {
		resp.LastUpdatedAt = history[0].EndTime
	}
	return resp, nil
}

// QRCode renders the dashboard's web URL as a PNG
func (s *dashboardService) QRCode(ctx context.Context, workspaceID, dashboardID string) ([]byte, error) {
	dashboard, err := s.dashboardRepo.FindByID(ctx, workspaceID, dashboardID)
	if err != nil {
		return nil, err
	}
	if dashboard.WebURL == nil || *dashboard.WebURL == "" {
		return nil, fmt.Errorf("dashboard %s has no web url: %w", dashboardID, apperrors.ErrNotFound)
	}

	png, err := qrcode.Encode(*dashboard.WebURL, qrcode.Medium, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}
