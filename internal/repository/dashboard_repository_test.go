package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"sigo-api/internal/apperrors"
	"sigo-api/internal/entities"
)

var dashboardRowColumns = []string{
	"dashboard_id", "dashboard_name", "workspace_id", "workspace_name",
	"group_id", "name", "background_image", "pipeline_id", "embed_url", "web_url",
	"created_at", "updated_at",
}

func strPtr(s string) *string { return &s }

func TestDashboardRepository_UpsertAll(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDashboardRepository(db)
	now := time.Now().UTC()

	upsert := `(?s)INSERT\s+INTO\s+dashboards.*ON\s+CONFLICT\s+\(dashboard_id\)\s+DO\s+UPDATE`

	mock.ExpectBegin()
	mock.ExpectExec(upsert).
		WithArgs("d-1", "Sales", "ws-1", "Commercial", "https://embed/1", "https://web/1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(upsert).
		WithArgs("d-2", "Costs", "ws-2", "Finance", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`(?s)LEFT\s+JOIN\s+groups\s+g.*WHERE\s+d\.dashboard_id\s*=\s*ANY\(\$1\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(dashboardRowColumns).
			AddRow("d-1", "Sales", "ws-1", "Commercial", groupID, "Finance", "bg.png", "p-9", "https://embed/1", "https://web/1", now, now).
			AddRow("d-2", "Costs", "ws-2", "Finance", nil, nil, nil, nil, nil, nil, now, now))
	mock.ExpectCommit()

	got, err := repo.UpsertAll(context.Background(), []*entities.Dashboard{
		{DashboardID: "d-1", DashboardName: "Sales", WorkspaceID: "ws-1", WorkspaceName: strPtr("Commercial"), EmbedURL: strPtr("https://embed/1"), WebURL: strPtr("https://web/1")},
		{DashboardID: "d-2", DashboardName: "Costs", WorkspaceID: "ws-2", WorkspaceName: strPtr("Finance")},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Finance", *got[0].GroupName)
	require.Equal(t, "p-9", *got[0].PipelineID)
	require.Nil(t, got[1].GroupID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardRepository_UpsertAll_RollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDashboardRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT\s+INTO\s+dashboards`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.UpsertAll(context.Background(), []*entities.Dashboard{
		{DashboardID: "d-1", DashboardName: "Sales", WorkspaceID: "ws-1"},
	})
	require.ErrorContains(t, err, "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardRepository_UpsertAll_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDashboardRepository(db)

	got, err := repo.UpsertAll(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardRepository_ListByGroup(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDashboardRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`(?s)WHERE\s+d\.group_id\s*=\s*\$1`).
		WithArgs(groupID).
		WillReturnRows(sqlmock.NewRows(dashboardRowColumns).
			AddRow("d-1", "Sales", "ws-1", nil, groupID, "Finance", nil, nil, nil, nil, now, now))

	got, err := repo.ListByGroup(context.Background(), groupID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, groupID, *got[0].GroupID)
}

func TestDashboardRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDashboardRepository(db)

	mock.ExpectQuery(`WHERE\s+d\.workspace_id\s*=\s*\$1\s+AND\s+d\.dashboard_id\s*=\s*\$2`).
		WithArgs("ws-1", "d-404").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "ws-1", "d-404")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDashboardRepository_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDashboardRepository(db)
	now := time.Now().UTC()

	mock.ExpectExec(`(?s)UPDATE\s+dashboards\s+SET\s+group_id\s*=\s*CASE`).
		WithArgs("ws-1", "d-1", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`WHERE\s+d\.workspace_id\s*=\s*\$1\s+AND\s+d\.dashboard_id\s*=\s*\$2`).
		WithArgs("ws-1", "d-1").
		WillReturnRows(sqlmock.NewRows(dashboardRowColumns).
			AddRow("d-1", "Sales", "ws-1", nil, nil, nil, nil, "p-1", nil, nil, now, now))

	got, err := repo.Update(context.Background(), "ws-1", "d-1", entities.DashboardChanges{
		GroupID:    strPtr(""),
		PipelineID: strPtr("p-1"),
	})
	require.NoError(t, err)
	require.Nil(t, got.GroupID)
	require.Equal(t, "p-1", *got.PipelineID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardRepository_Update_UnknownGroup(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDashboardRepository(db)

	mock.ExpectExec(`UPDATE\s+dashboards`).WillReturnError(&pq.Error{Code: "23503"})

	_, err := repo.Update(context.Background(), "ws-1", "d-1", entities.DashboardChanges{GroupID: strPtr(groupID)})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDashboardRepository_Delete_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDashboardRepository(db)

	mock.ExpectExec(`DELETE\s+FROM\s+dashboards\s+WHERE\s+workspace_id\s*=\s*\$1\s+AND\s+dashboard_id\s*=\s*\$2`).
		WithArgs("ws-1", "d-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "ws-1", "d-1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
