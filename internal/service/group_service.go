package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"sigo-api/internal/apperrors"
	"sigo-api/internal/entities"
	"sigo-api/internal/models"
	"sigo-api/internal/repository"
)

// GroupService defines the interface for group and membership business logic
type GroupService interface {
	Create(ctx context.Context, req *models.CreateGroupRequest) (*models.GroupResponse, error)
	Get(ctx context.Context, id string) (*models.GroupDetailResponse, error)
	List(ctx context.Context, page Page) ([]models.GroupResponse, error)
	Update(ctx context.Context, id string, req *models.UpdateGroupRequest) (*models.GroupResponse, error)
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
}

type groupService struct {
	groupRepo repository.GroupRepository
	log       *zap.Logger
}

// NewGroupService creates a new group service
func NewGroupService(groupRepo repository.GroupRepository, log *zap.Logger) GroupService {
	return &groupService{groupRepo: groupRepo, log: log}
}

func (s *groupService) Create(ctx context.Context, req *models.CreateGroupRequest) (*models.GroupResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "must not be blank")
	}

	group, err := s.groupRepo.Create(ctx, &entities.Group{
		Name:            name,
		Description:     req.Description,
		BackgroundImage: req.BackgroundImage,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Group created", zap.String("group_id", group.ID), zap.String("name", group.Name))
	resp := models.NewGroupResponse(group)
	return &resp, nil
}

// Get returns the group with its active members
func (s *groupService) Get(ctx context.Context, id string) (*models.GroupDetailResponse, error) {
	id, err := canonicalID("group", id)
	if err != nil {
		return nil, err
	}

	group, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	members, err := s.groupRepo.Members(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := models.NewGroupDetailResponse(group, members)
	return &resp, nil
}

func (s *groupService) List(ctx context.Context, page Page) ([]models.GroupResponse, error) {
	groups, err := s.groupRepo.List(ctx, page.Offset, page.Limit)
	if err != nil {
		return nil, err
	}
	return models.NewGroupResponses(groups), nil
}

func (s *groupService) Update(ctx context.Context, id string, req *models.UpdateGroupRequest) (*models.GroupResponse, error) {
	id, err := canonicalID("group", id)
	if err != nil {
		return nil, err
	}

	changes := entities.GroupChanges{
		Description:     req.Description,
		BackgroundImage: req.BackgroundImage,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name", "must not be blank")
		}
		changes.Name = &name
	}

	group, err := s.groupRepo.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	resp := models.NewGroupResponse(group)
	return &resp, nil
}

// Delete removes the group for good. Members are unlinked and its
// dashboards become unassigned.
func (s *groupService) Delete(ctx context.Context, id string) error {
	id, err := canonicalID("group", id)
	if err != nil {
		return err
	}
	if err := s.groupRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("Group deleted", zap.String("group_id", id))
	return nil
}

func (s *groupService) AddMember(ctx context.Context, groupID, userID string) error {
	groupID, err := canonicalID("group", groupID)
	if err != nil {
		return err
	}
	if userID, err = canonicalID("user", userID); err != nil {
		return err
	}
	return s.groupRepo.AddMember(ctx, groupID, userID)
}

func (s *groupService) RemoveMember(ctx context.Context, groupID, userID string) error {
	groupID, err := canonicalID("group", groupID)
	if err != nil {
		return err
	}
	if userID, err = canonicalID("user", userID); err != nil {
		return err
	}
	return s.groupRepo.RemoveMember(ctx, groupID, userID)
}
