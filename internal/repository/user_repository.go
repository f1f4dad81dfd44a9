package repository

import (
	"context"
	"fmt"

	"sigo-api/internal/database"
	"sigo-api/internal/entities"
)

// UserRepository defines the interface for user database operations.
// Every method only ever sees active users.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	FindByID(ctx context.Context, id string) (*entities.User, error)
	List(ctx context.Context, offset, limit int) ([]*entities.User, error)
	Update(ctx context.Context, id string, changes entities.UserChanges) (*entities.User, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	Deactivate(ctx context.Context, id string) error
}

type userRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DBTX) UserRepository {
	return &userRepository{db: db}
}

const (
	userColumns = `id, username, email, password_hash, business_area, profile_picture, is_active, created_at, updated_at`

	// activeOnly is the soft-delete filter. Every user statement includes it.
	activeOnly = `is_active`
)

// activeUsers is the single place user reads are built. It always restricts
// to active rows; cond is ANDed on when non-empty.
func activeUsers(cond string) string {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + activeOnly
	if cond != "" {
		query += ` AND ` + cond
	}
	return query
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.BusinessArea,
		&user.ProfilePicture,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new active user
func (r *userRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, business_area, profile_picture)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.BusinessArea,
		user.ProfilePicture,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", translate(err))
	}

	return created, nil
}

// FindByEmail finds an active user by email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, activeUsers(`email = $1`), email))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", translate(err))
	}
	return user, nil
}

// FindByID finds an active user by ID (UUID)
func (r *userRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, activeUsers(`id = $1`), id))
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", translate(err))
	}
	return user, nil
}

// List returns one page of active users in a stable order
func (r *userRepository) List(ctx context.Context, offset, limit int) ([]*entities.User, error) {
	query := activeUsers("") + ` ORDER BY created_at ASC, id ASC OFFSET $1 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*entities.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// Update applies the non-nil changes to an active user
func (r *userRepository) Update(ctx context.Context, id string, changes entities.UserChanges) (*entities.User, error) {
	query := `
		UPDATE users
		SET username = COALESCE($2, username),
			email = COALESCE($3, email),
			password_hash = COALESCE($4, password_hash),
			business_area = COALESCE($5, business_area),
			profile_picture = COALESCE($6, profile_picture),
			updated_at = NOW()
		WHERE id = $1 AND ` + activeOnly + `
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query,
		id,
		changes.Username,
		changes.Email,
		changes.PasswordHash,
		changes.BusinessArea,
		changes.ProfilePicture,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", translate(err))
	}
	return user, nil
}

// UpdatePasswordHash replaces the stored hash, used when rehashing on login
func (r *userRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1 AND ` + activeOnly
	return r.execOne(ctx, "update password hash", query, id, passwordHash)
}

// Deactivate soft-deletes an active user
func (r *userRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND ` + activeOnly
	return r.execOne(ctx, "deactivate user", query, id)
}

// execOne runs a statement that must touch exactly one active row.
func (r *userRepository) execOne(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, translate(err))
	}
	return requireOneRow(result, op)
}
