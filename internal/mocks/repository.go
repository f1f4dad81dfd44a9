// Package mocks holds testify mocks for the repository, cache, Power BI and
// service interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"sigo-api/internal/entities"
)

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *UserRepository) List(ctx context.Context, offset, limit int) ([]*entities.User, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, id string, changes entities.UserChanges) (*entities.User, error) {
	args := m.Called(ctx, id, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *UserRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *UserRepository) Deactivate(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type GroupRepository struct {
	mock.Mock
}

func (m *GroupRepository) Create(ctx context.Context, group *entities.Group) (*entities.Group, error) {
	args := m.Called(ctx, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Group), args.Error(1)
}

func (m *GroupRepository) FindByID(ctx context.Context, id string) (*entities.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Group), args.Error(1)
}

func (m *GroupRepository) List(ctx context.Context, offset, limit int) ([]*entities.Group, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Group), args.Error(1)
}

func (m *GroupRepository) Update(ctx context.Context, id string, changes entities.GroupChanges) (*entities.Group, error) {
	args := m.Called(ctx, id, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Group), args.Error(1)
}

func (m *GroupRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *GroupRepository) Members(ctx context.Context, groupID string) ([]*entities.User, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

func (m *GroupRepository) AddMember(ctx context.Context, groupID, userID string) error {
	return m.Called(ctx, groupID, userID).Error(0)
}

func (m *GroupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	return m.Called(ctx, groupID, userID).Error(0)
}

func (m *GroupRepository) ForUser(ctx context.Context, userID string) ([]*entities.Group, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Group), args.Error(1)
}

type DashboardRepository struct {
	mock.Mock
}

func (m *DashboardRepository) UpsertAll(ctx context.Context, dashboards []*entities.Dashboard) ([]*entities.Dashboard, error) {
	args := m.Called(ctx, dashboards)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Dashboard), args.Error(1)
}

func (m *DashboardRepository) List(ctx context.Context) ([]*entities.Dashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Dashboard), args.Error(1)
}

func (m *DashboardRepository) ListByGroup(ctx context.Context, groupID string) ([]*entities.Dashboard, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Dashboard), args.Error(1)
}

func (m *DashboardRepository) FindByID(ctx context.Context, workspaceID, dashboardID string) (*entities.Dashboard, error) {
	args := m.Called(ctx, workspaceID, dashboardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Dashboard), args.Error(1)
}

func (m *DashboardRepository) Update(ctx context.Context, workspaceID, dashboardID string, changes entities.DashboardChanges) (*entities.Dashboard, error) {
	args := m.Called(ctx, workspaceID, dashboardID, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Dashboard), args.Error(1)
}

func (m *DashboardRepository) Delete(ctx context.Context, workspaceID, dashboardID string) error {
	return m.Called(ctx, workspaceID, dashboardID).Error(0)
}
