package repository

import (
	"context"
	"fmt"

	"sigo-api/internal/apperrors"
	"sigo-api/internal/database"
	"sigo-api/internal/entities"
)

// GroupRepository defines the interface for group and membership operations
type GroupRepository interface {
	Create(ctx context.Context, group *entities.Group) (*entities.Group, error)
	FindByID(ctx context.Context, id string) (*entities.Group, error)
	List(ctx context.Context, offset, limit int) ([]*entities.Group, error)
	Update(ctx context.Context, id string, changes entities.GroupChanges) (*entities.Group, error)
	Delete(ctx context.Context, id string) error
	Members(ctx context.Context, groupID string) ([]*entities.User, error)
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	ForUser(ctx context.Context, userID string) ([]*entities.Group, error)
}

type groupRepository struct {
	db database.DBTX
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db database.DBTX) GroupRepository {
	return &groupRepository{db: db}
}

const groupColumns = `id, name, description, background_image, created_at, updated_at`

func scanGroup(row rowScanner) (*entities.Group, error) {
	var group entities.Group
	err := row.Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.BackgroundImage,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// Create inserts a new group; a duplicate name is ErrConflict
func (r *groupRepository) Create(ctx context.Context, group *entities.Group) (*entities.Group, error) {
	query := `
		INSERT INTO groups (name, description, background_image)
		VALUES ($1, $2, $3)
		RETURNING ` + groupColumns

	created, err := scanGroup(r.db.QueryRowContext(ctx, query, group.Name, group.Description, group.BackgroundImage))
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", translate(err))
	}
	return created, nil
}

func (r *groupRepository) FindByID(ctx context.Context, id string) (*entities.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1`

	group, err := scanGroup(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to find group: %w", translate(err))
	}
	return group, nil
}

func (r *groupRepository) List(ctx context.Context, offset, limit int) ([]*entities.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups ORDER BY created_at ASC, id ASC OFFSET $1 LIMIT $2`
	return r.queryGroups(ctx, "list groups", query, offset, limit)
}

func (r *groupRepository) Update(ctx context.Context, id string, changes entities.GroupChanges) (*entities.Group, error) {
	query := `
		UPDATE groups
		SET name = COALESCE($2, name),
			description = COALESCE($3, description),
			background_image = COALESCE($4, background_image),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + groupColumns

	group, err := scanGroup(r.db.QueryRowContext(ctx, query, id, changes.Name, changes.Description, changes.BackgroundImage))
	if err != nil {
		return nil, fmt.Errorf("failed to update group: %w", translate(err))
	}
	return group, nil
}

// Delete removes the group; memberships cascade and dashboards are unassigned
func (r *groupRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", translate(err))
	}
	return requireOneRow(result, "delete group")
}

// Members lists the active users of a group
func (r *groupRepository) Members(ctx context.Context, groupID string) ([]*entities.User, error) {
	query := activeUsers(`id IN (SELECT user_id FROM group_members WHERE group_id = $1)`) +
		` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	defer rows.Close()

	var users []*entities.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group members: %w", err)
	}
	return users, nil
}

// AddMember links an active user to a group in one statement. A missing group
// or inactive user is ErrNotFound, an existing membership ErrConflict.
func (r *groupRepository) AddMember(ctx context.Context, groupID, userID string) error {
	query := `
		INSERT INTO group_members (group_id, user_id)
		SELECT $1, id FROM users WHERE id = $2 AND ` + activeOnly

	result, err := r.db.ExecContext(ctx, query, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to add group member: %w", translate(err))
	}
	return requireOneRow(result, "add group member")
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove group member: %w", err)
	}
	return requireOneRow(result, "remove group member")
}

// ForUser lists the groups a user belongs to
func (r *groupRepository) ForUser(ctx context.Context, userID string) ([]*entities.Group, error) {
	query := `
		SELECT g.id, g.name, g.description, g.background_image, g.created_at, g.updated_at
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = $1
		ORDER BY g.name ASC`
	return r.queryGroups(ctx, "list user groups", query, userID)
}

func (r *groupRepository) queryGroups(ctx context.Context, op, query string, args ...any) ([]*entities.Group, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer rows.Close()

	groups := []*entities.Group{}
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}
	return groups, nil
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func requireOneRow(result rowsAffecter, op string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("failed to %s: %w", op, apperrors.ErrNotFound)
	}
	return nil
}
