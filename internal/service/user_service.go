package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sigo-api/internal/apperrors"
	"sigo-api/internal/cache"
	"sigo-api/internal/entities"
	"sigo-api/internal/models"
	"sigo-api/internal/repository"
)

const (
	// UserCacheTTL bounds how stale a cached user document can be.
	UserCacheTTL = 10 * time.Minute

	// UserTombstoneTTL is how long an invalidated key refuses read-through
	// fills. It must outlive any request, so a Get that read the database
	// before an update or delete cannot put the old row back.
	UserTombstoneTTL = 2 * time.Minute
)

// UserService defines the interface for user lifecycle business logic
type UserService interface {
	Create(ctx context.Context, req *models.CreateUserRequest) (*models.UserResponse, error)
	List(ctx context.Context, page Page) ([]models.UserResponse, error)
	Get(ctx context.Context, id string) (*models.UserResponse, error)
	Update(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.UserResponse, error)
	Delete(ctx context.Context, id string) error
	Groups(ctx context.Context, id string) ([]models.GroupResponse, error)
}

type userService struct {
	userRepo  repository.UserRepository
	groupRepo repository.GroupRepository
	hasher    PasswordHasher
	cache     cache.Cache // nil when Redis is unavailable
	log       *zap.Logger
}

// NewUserService creates a new user service. cacheClient may be nil.
func NewUserService(
	userRepo repository.UserRepository,
	groupRepo repository.GroupRepository,
	hasher PasswordHasher,
	cacheClient cache.Cache,
	log *zap.Logger,
) UserService {
	return &userService{
		userRepo:  userRepo,
		groupRepo: groupRepo,
		hasher:    hasher,
		cache:     cacheClient,
		log:       log,
	}
}

// Create registers a new active user. The email must not belong to another
// active user; the database constraint backs the pre-check against races.
func (s *userService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.UserResponse, error) {
	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, apperrors.NewValidationError("username", "must not be blank")
	}

	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, hashError(err)
	}

	user, err := s.userRepo.Create(ctx, &entities.User{
		Username:       username,
		Email:          email,
		PasswordHash:   hash,
		BusinessArea:   strings.TrimSpace(req.BusinessArea),
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("User created", zap.String("user_id", user.ID))
	resp := models.NewUserResponse(user)
	return &resp, nil
}

func (s *userService) List(ctx context.Context, page Page) ([]models.UserResponse, error) {
	users, err := s.userRepo.List(ctx, page.Offset, page.Limit)
	if err != nil {
		return nil, err
	}
	return models.NewUserResponses(users), nil
}

// Get returns an active user, served from the cache when possible
func (s *userService) Get(ctx context.Context, id string) (*models.UserResponse, error) {
	id, err := canonicalID("user", id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		var cached models.UserResponse
		err := s.cache.GetJSON(ctx, cache.UserKey(id), &cached)
		switch {
		case err == nil && cached.ID != "":
			return &cached, nil
		case err == nil, errors.Is(err, cache.ErrMiss):
			// tombstone or absent
		default:
			s.log.Warn("User cache read failed, using database", zap.String("user_id", id), zap.Error(err))
		}
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := models.NewUserResponse(user)
	if s.cache != nil {
		// Add, not set: a tombstone written meanwhile wins over this read.
		if _, err := s.cache.AddJSON(ctx, cache.UserKey(id), resp, UserCacheTTL); err != nil {
			s.log.Warn("User cache write failed", zap.String("user_id", id), zap.Error(err))
		}
	}
	return &resp, nil
}

// Update applies only the provided fields
func (s *userService) Update(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.UserResponse, error) {
	id, err := canonicalID("user", id)
	if err != nil {
		return nil, err
	}

	var changes entities.UserChanges
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return nil, apperrors.NewValidationError("username", "must not be blank")
		}
		changes.Username = &username
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if err := s.ensureEmailFree(ctx, email, id); err != nil {
			return nil, err
		}
		changes.Email = &email
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, hashError(err)
		}
		changes.PasswordHash = &hash
	}
	if req.BusinessArea != nil {
		area := strings.TrimSpace(*req.BusinessArea)
		changes.BusinessArea = &area
	}
	changes.ProfilePicture = req.ProfilePicture

	user, err := s.userRepo.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	resp := models.NewUserResponse(user)
	return &resp, nil
}

// Delete soft-deletes the user. A second delete is ErrNotFound.
func (s *userService) Delete(ctx context.Context, id string) error {
	id, err := canonicalID("user", id)
	if err != nil {
		return err
	}
	if err := s.userRepo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.log.Info("User deactivated", zap.String("user_id", id))
	return nil
}

// Groups lists the groups an active user belongs to
func (s *userService) Groups(ctx context.Context, id string) ([]models.GroupResponse, error) {
	id, err := canonicalID("user", id)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	groups, err := s.groupRepo.ForUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.NewGroupResponses(groups), nil
}

// ensureEmailFree fails with ErrConflict when another active user owns email.
// selfID is the user being updated, or empty on create.
func (s *userService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID == selfID:
		return nil
	default:
		return fmt.Errorf("email %s: %w", email, apperrors.ErrConflict)
	}
}

// invalidate replaces the cached document with an empty tombstone, which Get
// treats as a miss and which blocks read-through fills until it expires.
func (s *userService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, cache.UserKey(id), models.UserResponse{}, UserTombstoneTTL); err != nil {
		s.log.Warn("User cache invalidation failed", zap.String("user_id", id), zap.Error(err))
	}
}
