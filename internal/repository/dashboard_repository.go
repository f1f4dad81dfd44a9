package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"sigo-api/internal/database"
	"sigo-api/internal/entities"
)

// DashboardRepository defines the interface for the local dashboard catalogue
type DashboardRepository interface {
	// UpsertAll writes the Power BI fields of every dashboard in one
	// transaction. Locally owned fields on existing rows are left alone.
	UpsertAll(ctx context.Context, dashboards []*entities.Dashboard) ([]*entities.Dashboard, error)
	List(ctx context.Context) ([]*entities.Dashboard, error)
	ListByGroup(ctx context.Context, groupID string) ([]*entities.Dashboard, error)
	FindByID(ctx context.Context, workspaceID, dashboardID string) (*entities.Dashboard, error)
	Update(ctx context.Context, workspaceID, dashboardID string, changes entities.DashboardChanges) (*entities.Dashboard, error)
	Delete(ctx context.Context, workspaceID, dashboardID string) error
}

type dashboardRepository struct {
	db database.DBTX
	tx database.TxRunner
}

// NewDashboardRepository creates a new dashboard repository
func NewDashboardRepository(db *sql.DB) DashboardRepository {
	return &dashboardRepository{db: db, tx: database.NewTxRunner(db)}
}

const selectDashboards = `
	SELECT d.dashboard_id, d.dashboard_name, d.workspace_id, d.workspace_name,
		d.group_id, g.name, d.background_image, d.pipeline_id, d.embed_url, d.web_url,
		d.created_at, d.updated_at
	FROM dashboards d
	LEFT JOIN groups g ON g.id = d.group_id`

func scanDashboard(row rowScanner) (*entities.Dashboard, error) {
	var d entities.Dashboard
	err := row.Scan(
		&d.DashboardID,
		&d.DashboardName,
		&d.WorkspaceID,
		&d.WorkspaceName,
		&d.GroupID,
		&d.GroupName,
		&d.BackgroundImage,
		&d.PipelineID,
		&d.EmbedURL,
		&d.WebURL,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *dashboardRepository) UpsertAll(ctx context.Context, dashboards []*entities.Dashboard) ([]*entities.Dashboard, error) {
	if len(dashboards) == 0 {
		return []*entities.Dashboard{}, nil
	}

	query := `
		INSERT INTO dashboards (dashboard_id, dashboard_name, workspace_id, workspace_name, embed_url, web_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (dashboard_id) DO UPDATE
		SET dashboard_name = EXCLUDED.dashboard_name,
			workspace_id = EXCLUDED.workspace_id,
			workspace_name = EXCLUDED.workspace_name,
			embed_url = EXCLUDED.embed_url,
			web_url = EXCLUDED.web_url,
			updated_at = NOW()`

	ids := make([]string, 0, len(dashboards))
	var synced []*entities.Dashboard

	err := r.tx.WithTx(ctx, func(ctx context.Context, tx database.DBTX) error {
		for _, d := range dashboards {
			_, err := tx.ExecContext(ctx, query,
				d.DashboardID,
				d.DashboardName,
				d.WorkspaceID,
				d.WorkspaceName,
				d.EmbedURL,
				d.WebURL,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert dashboard %s: %w", d.DashboardID, err)
			}
			ids = append(ids, d.DashboardID)
		}

		var err error
		synced, err = queryDashboards(ctx, tx,
			selectDashboards+` WHERE d.dashboard_id = ANY($1) ORDER BY d.workspace_id, d.dashboard_name`,
			pq.Array(ids))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sync dashboards: %w", err)
	}
	return synced, nil
}

func (r *dashboardRepository) List(ctx context.Context) ([]*entities.Dashboard, error) {
	return queryDashboards(ctx, r.db, selectDashboards+` ORDER BY d.workspace_id, d.dashboard_name`)
}

func (r *dashboardRepository) ListByGroup(ctx context.Context, groupID string) ([]*entities.Dashboard, error) {
	return queryDashboards(ctx, r.db,
		selectDashboards+` WHERE d.group_id = $1 ORDER BY d.dashboard_name`, groupID)
}

func (r *dashboardRepository) FindByID(ctx context.Context, workspaceID, dashboardID string) (*entities.Dashboard, error) {
	query := selectDashboards + ` WHERE d.workspace_id = $1 AND d.dashboard_id = $2`

	d, err := scanDashboard(r.db.QueryRowContext(ctx, query, workspaceID, dashboardID))
	if err != nil {
		return nil, fmt.Errorf("failed to find dashboard: %w", translate(err))
	}
	return d, nil
}

// Update applies local changes. An empty GroupID unassigns the dashboard.
func (r *dashboardRepository) Update(ctx context.Context, workspaceID, dashboardID string, changes entities.DashboardChanges) (*entities.Dashboard, error) {
	query := `
		UPDATE dashboards
		SET group_id = CASE
				WHEN $3::text IS NULL THEN group_id
				WHEN $3::text = '' THEN NULL
				ELSE $3::uuid
			END,
			background_image = COALESCE($4, background_image),
			pipeline_id = COALESCE($5, pipeline_id),
			updated_at = NOW()
		WHERE workspace_id = $1 AND dashboard_id = $2`

	result, err := r.db.ExecContext(ctx, query,
		workspaceID,
		dashboardID,
		changes.GroupID,
		changes.BackgroundImage,
		changes.PipelineID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update dashboard: %w", translate(err))
	}
	if err := requireOneRow(result, "update dashboard"); err != nil {
		return nil, err
	}

	return r.FindByID(ctx, workspaceID, dashboardID)
}

func (r *dashboardRepository) Delete(ctx context.Context, workspaceID, dashboardID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM dashboards WHERE workspace_id = $1 AND dashboard_id = $2`, workspaceID, dashboardID)
	if err != nil {
		return fmt.Errorf("failed to delete dashboard: %w", err)
	}
	return requireOneRow(result, "delete dashboard")
}

func queryDashboards(ctx context.Context, db database.DBTX, query string, args ...any) ([]*entities.Dashboard, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list dashboards: %w", err)
	}
	defer rows.Close()

	dashboards := []*entities.Dashboard{}
	for rows.Next() {
		d, err := scanDashboard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dashboard: %w", err)
		}
		dashboards = append(dashboards, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dashboards: %w", err)
	}
	return dashboards, nil
}
