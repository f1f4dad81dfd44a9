package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sigo-api/internal/apperrors"
	"sigo-api/internal/entities"
	"sigo-api/internal/metrics"
	"sigo-api/internal/models"
	"sigo-api/internal/repository"
)

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
}

// PasswordHasher is satisfied by *password.Hasher
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
	VerifyDummy(plain string)
	NeedsRehash(hash string) bool
}

// TokenIssuer is satisfied by *jwt.JWTService
type TokenIssuer interface {
	GenerateToken(userID, email string) (string, time.Time, error)
}

type authService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	log      *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer, log *zap.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		log:      log,
	}
}

// Login authenticates an active user and returns a signed token.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.hasher.VerifyDummy(req.Password)
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, apperrors.ErrInvalidCredentials
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if !s.hasher.Verify(user.PasswordHash, req.Password) {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user, req.Password)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return &models.AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		User:      models.NewUserResponse(user),
	}, nil
}

// rehash upgrades a hash made with an outdated cost. Failures only cost us
// the upgrade, so they are logged and the login proceeds.
func (s *authService) rehash(ctx context.Context, user *entities.User, plain string) {
	hash, err := s.hasher.Hash(plain)
	if err == nil {
		err = s.userRepo.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		s.log.Warn("Failed to rehash password on login", zap.String("user_id", user.ID), zap.Error(err))
		return
	}
	s.log.Info("Rehashed password with current cost", zap.String("user_id", user.ID))
}
