package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"sigo-api/internal/apperrors"
)

//go:generate mockgen -destination=mocks/services.go -package=mocks sigo-api/internal/service AuthService,DashboardService,GroupService,UserService

// normalizeEmail lowercases and trims so uniqueness is case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// canonicalID returns id in lowercase hyphenated form so that every spelling
// of the same UUID maps to one cache key and compares equal to stored ids.
// A malformed identifier is a record that does not exist.
func canonicalID(kind, id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%s %q: %w", kind, id, apperrors.ErrNotFound)
	}
	return parsed.String(), nil
}

// hashError turns bcrypt's length limit into a field error.
func hashError(err error) error {
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return apperrors.NewValidationError("password", "must be at most 72 bytes")
	}
	return fmt.Errorf("failed to hash password: %w", err)
}

// Page is a validated offset/limit pair.
type Page struct {
	Offset int
	Limit  int
}

// DefaultPageLimit is used when the client does not ask for a limit.
const DefaultPageLimit = 100

// NewPage clamps limit to [1, maxLimit]. A zero limit means the default.
func NewPage(offset, limit, maxLimit int) (Page, error) {
	if offset < 0 {
		return Page{}, apperrors.NewValidationError("offset", "must be zero or positive")
	}
	if limit < 0 {
		return Page{}, apperrors.NewValidationError("limit", "must be zero or positive")
	}
	if limit == 0 {
		limit = DefaultPageLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Page{Offset: offset, Limit: limit}, nil
}
