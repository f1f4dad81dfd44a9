package models

// UpdateDashboardRequest carries the locally owned dashboard fields.
// An empty group_id unassigns the dashboard from its group.
type UpdateDashboardRequest struct {
	GroupID         *string `json:"group_id,omitempty" binding:"omitempty,uuid|len=0"`
	BackgroundImage *string `json:"background_image,omitempty" binding:"omitempty,max=2048"`
	PipelineID      *string `json:"pipeline_id,omitempty" binding:"omitempty,max=255"`
}

// RefreshRequest asks Power BI to refresh a dataset
type RefreshRequest struct {
	WorkspaceID string `json:"workspace_id" binding:"required"`
	DatasetID   string `json:"dataset_id" binding:"required"`
}

// RefreshStatusQuery is bound from the query string
type RefreshStatusQuery struct {
	WorkspaceID string `form:"workspace_id" binding:"required"`
	DatasetID   string `form:"dataset_id" binding:"required"`
}
