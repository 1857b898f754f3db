package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/EmmmanuelL28/user-management-system/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// userRepository implements user table data access
type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user into the database.
// The concurrency stamp and creation timestamp are set here; the generated
// ID is written back into the user.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.ConcurrencyStamp = uuid.New().String()
	user.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO users (username, email, password_hash, first_name, last_name, phone_number, email_confirmed, is_active, concurrency_stamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
		user.EmailConfirmed,
		user.IsActive,
		user.ConcurrencyStamp,
		user.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = int(id)
	return nil
}

// GetByUsername retrieves a user by exact username match
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, first_name, last_name, phone_number, email_confirmed, is_active, concurrency_stamp, created_at, updated_at
		FROM users
		WHERE username = ?
		LIMIT 1
	`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.PhoneNumber,
		&user.EmailConfirmed,
		&user.IsActive,
		&user.ConcurrencyStamp,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get user by username", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, first_name, last_name, phone_number, email_confirmed, is_active, concurrency_stamp, created_at, updated_at
		FROM users
		WHERE id = ?
		LIMIT 1
	`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.PhoneNumber,
		&user.EmailConfirmed,
		&user.IsActive,
		&user.ConcurrencyStamp,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get user by id", zap.Error(err), zap.Int("userID", userID))
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// GetAll retrieves all users ordered by ID
func (r *userRepository) GetAll(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, username, email, password_hash, first_name, last_name, phone_number, email_confirmed, is_active, concurrency_stamp, created_at, updated_at
		FROM users
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to get users", zap.Error(err))
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.FirstName,
			&user.LastName,
			&user.PhoneNumber,
			&user.EmailConfirmed,
			&user.IsActive,
			&user.ConcurrencyStamp,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			r.logger.Error("failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("failed to iterate user rows", zap.Error(err))
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return users, nil
}

// ExistsByEmail checks if a user exists with the given email
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM users WHERE email = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check email existence", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// ExistsByUsername checks if a user exists with the given username
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM users WHERE username = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, username).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check username existence", zap.Error(err), zap.String("username", username))
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

// Update overwrites the mutable user fields with an optimistic-concurrency
// guard: the write only lands when the stored concurrency stamp still equals
// the one the user was loaded with. A stale stamp yields models.ErrConflict,
// never a silent overwrite. A new stamp and updated_at are set on success.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	newStamp := uuid.New().String()
	now := time.Now().UTC()

	query := `
		UPDATE users
		SET username = ?, email = ?, first_name = ?, last_name = ?, phone_number = ?, concurrency_stamp = ?, updated_at = ?
		WHERE id = ? AND concurrency_stamp = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
		newStamp,
		now,
		user.ID,
		user.ConcurrencyStamp,
	)
	if err != nil {
		r.logger.Error("failed to update user", zap.Error(err), zap.Int("userID", user.ID))
		return fmt.Errorf("failed to update user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("failed to get rows affected", zap.Error(err))
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		// Either the row is gone or the stamp is stale; distinguish the two
		exists, err := r.existsByID(ctx, user.ID)
		if err != nil {
			return err
		}
		if !exists {
			return models.ErrNotFound
		}
		return models.ErrConflict
	}

	user.ConcurrencyStamp = newStamp
	user.UpdatedAt = &now
	return nil
}

// Delete removes a user by ID. Role assignments are removed by the foreign
// key cascade on user_roles.
func (r *userRepository) Delete(ctx context.Context, userID int) error {
	query := `DELETE FROM users WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to delete user", zap.Error(err), zap.Int("userID", userID))
		return fmt.Errorf("failed to delete user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("failed to get rows affected", zap.Error(err))
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		return models.ErrNotFound
	}

	return nil
}

// existsByID checks if a user row exists for the given ID
func (r *userRepository) existsByID(ctx context.Context, userID int) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM users WHERE id = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check user existence", zap.Error(err), zap.Int("userID", userID))
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return exists, nil
}
