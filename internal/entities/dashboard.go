package entities

import "time"

// Dashboard is the local record of a Power BI dashboard
type Dashboard struct {
	DashboardID     string    `json:"dashboard_id"`
	DashboardName   string    `json:"dashboard_name"`
	WorkspaceID     string    `json:"workspace_id"`
	WorkspaceName   *string   `json:"workspace_name,omitempty"`
	GroupID         *string   `json:"group_id,omitempty"`
	GroupName       *string   `json:"group_name,omitempty"` // Joined from groups, read-only
	BackgroundImage *string   `json:"background_image,omitempty"`
	PipelineID      *string   `json:"pipeline_id,omitempty"`
	EmbedURL        *string   `json:"embed_url,omitempty"`
	WebURL          *string   `json:"web_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DashboardChanges lists the locally owned dashboard fields. Nil means unchanged.
type DashboardChanges struct {
	GroupID         *string
	BackgroundImage *string
	PipelineID      *string
}
