package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/EmmmanuelL28/user-management-system/internal/models"
	"go.uber.org/zap"
)

// roleRepository implements role and role-assignment data access
type roleRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *sql.DB, logger *zap.Logger) *roleRepository {
	return &roleRepository{
		db:     db,
		logger: logger,
	}
}

// ExistsByName checks if a role with the given name exists
func (r *roleRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM roles WHERE name = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, name).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check role existence", zap.Error(err), zap.String("role", name))
		return false, fmt.Errorf("failed to check role existence: %w", err)
	}

	return exists, nil
}

// Create inserts a new role
func (r *roleRepository) Create(ctx context.Context, role *models.Role) error {
	query := `INSERT INTO roles (name) VALUES (?)`

	result, err := r.db.ExecContext(ctx, query, role.Name)
	if err != nil {
		r.logger.Error("failed to create role", zap.Error(err), zap.String("role", role.Name))
		return fmt.Errorf("failed to create role: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	role.ID = int(id)
	return nil
}

// AssignToUser adds the named role to a user. Assigning an unknown role is
// an error; assigning an already-held role is a duplicate-key error from the
// store.
func (r *roleRepository) AssignToUser(ctx context.Context, userID int, roleName string) error {
	query := `
		INSERT INTO user_roles (user_id, role_id)
		SELECT ?, id FROM roles WHERE name = ?
	`

	result, err := r.db.ExecContext(ctx, query, userID, roleName)
	if err != nil {
		r.logger.Error("failed to assign role", zap.Error(err), zap.Int("userID", userID), zap.String("role", roleName))
		return fmt.Errorf("failed to assign role: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("failed to get rows affected", zap.Error(err))
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("role %q does not exist", roleName)
	}

	return nil
}

// GetByUserID retrieves the role names assigned to a user
func (r *roleRepository) GetByUserID(ctx context.Context, userID int) ([]string, error) {
	query := `
		SELECT r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = ?
		ORDER BY r.name
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to get user roles", zap.Error(err), zap.Int("userID", userID))
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}
	defer rows.Close()

	roles := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			r.logger.Error("failed to scan role row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan role row: %w", err)
		}
		roles = append(roles, name)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("failed to iterate role rows", zap.Error(err))
		return nil, fmt.Errorf("failed to iterate role rows: %w", err)
	}

	return roles, nil
}

// GetAllAssignments retrieves role names grouped by user ID, for building
// user lists without a query per user
func (r *roleRepository) GetAllAssignments(ctx context.Context) (map[int][]string, error) {
	query := `
		SELECT ur.user_id, r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		ORDER BY ur.user_id, r.name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to get role assignments", zap.Error(err))
		return nil, fmt.Errorf("failed to get role assignments: %w", err)
	}
	defer rows.Close()

	assignments := make(map[int][]string)
	for rows.Next() {
		var userID int
		var name string
		if err := rows.Scan(&userID, &name); err != nil {
			r.logger.Error("failed to scan assignment row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan assignment row: %w", err)
		}
		assignments[userID] = append(assignments[userID], name)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("failed to iterate assignment rows", zap.Error(err))
		return nil, fmt.Errorf("failed to iterate assignment rows: %w", err)
	}

	return assignments, nil
}

// GetByName retrieves a role by name
func (r *roleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	query := `SELECT id, name FROM roles WHERE name = ? LIMIT 1`

	role := &models.Role{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(&role.ID, &role.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("role %q not found", name)
	}
	if err != nil {
		r.logger.Error("failed to get role by name", zap.Error(err), zap.String("role", name))
		return nil, fmt.Errorf("failed to get role by name: %w", err)
	}

	return role, nil
}
