package models

import (
	"time"

	"sigo-api/internal/entities"
)

// DashboardResponse is a catalogue entry as served to clients
type DashboardResponse struct {
	DashboardID     string    `json:"dashboard_id"`
	DashboardName   string    `json:"dashboard_name"`
	WorkspaceID     string    `json:"workspace_id"`
	WorkspaceName   *string   `json:"workspace_name,omitempty"`
	GroupID         *string   `json:"group_id,omitempty"`
	GroupName       *string   `json:"group_name,omitempty"`
	BackgroundImage *string   `json:"background_image,omitempty"`
	PipelineID      *string   `json:"pipeline_id,omitempty"`
	EmbedURL        *string   `json:"embed_url,omitempty"`
	WebURL          *string   `json:"web_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewDashboardResponse(d *entities.Dashboard) DashboardResponse {
	return DashboardResponse{
		DashboardID:     d.DashboardID,
		DashboardName:   d.DashboardName,
		WorkspaceID:     d.WorkspaceID,
		WorkspaceName:   d.WorkspaceName,
		GroupID:         d.GroupID,
		GroupName:       d.GroupName,
		BackgroundImage: d.BackgroundImage,
		PipelineID:      d.PipelineID,
		EmbedURL:        d.EmbedURL,
		WebURL:          d.WebURL,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func NewDashboardResponses(dashboards []*entities.Dashboard) []DashboardResponse {
	out := make([]DashboardResponse, 0, len(dashboards))
	for _, d := range dashboards {
		out = append(out, NewDashboardResponse(d))
	}
	return out
}

// SyncResponse summarises a Power BI sync
type SyncResponse struct {
	Message          string              `json:"message"`
	Synced           int                 `json:"synced"`
	FailedWorkspaces []string            `json:"failed_workspaces"`
	Dashboards       []DashboardResponse `json:"dashboards"`
}

// RefreshStatusResponse reports how many refreshes are left in the rolling day
type RefreshStatusResponse struct {
	RemainingRefreshCount int        `json:"remaining_refresh_count"`
	LastUpdatedAt         *time.Time `json:"last_updated_at"`
}
