package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/EmmmanuelL28/user-management-system/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminUserRepository is the interface that wraps methods for user CRUD
type AdminUserRepository interface {
	UserCredentialRepository
	// Method Create inserts a new user into the database and writes the
	// generated ID back into the user.
	Create(ctx context.Context, user *models.User) error
	// Method GetByID retrieves a user by ID.
	//
	// If the user does not exist, models.ErrNotFound is returned together with "nil" value.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// Method GetAll retrieves all users.
	GetAll(ctx context.Context) ([]models.User, error)
	// Method Update overwrites the mutable user fields with an optimistic
	// concurrency guard.
	//
	// A write against a stale concurrency stamp returns models.ErrConflict;
	// a missing row returns models.ErrNotFound.
	Update(ctx context.Context, user *models.User) error
	// Method Delete removes a user and its role assignments by ID.
	//
	// If the user does not exist, models.ErrNotFound is returned.
	Delete(ctx context.Context, userID int) error
}

// AdminRoleRepository is the interface that wraps role lookups for user lists
type AdminRoleRepository interface {
	// Method GetByUserID retrieves the role names assigned to a user.
	GetByUserID(ctx context.Context, userID int) ([]string, error)
	// Method GetAllAssignments retrieves role names grouped by user ID.
	GetAllAssignments(ctx context.Context) (map[int][]string, error)
}

// userService implements CRUD over user records
type userService struct {
	userRepo AdminUserRepository
	roleRepo AdminRoleRepository
	logger   *zap.Logger
}

// NewUserService creates a new user admin service
func NewUserService(
	userRepo AdminUserRepository,
	roleRepo AdminRoleRepository,
	logger *zap.Logger,
) *userService {
	return &userService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		logger:   logger,
	}
}

// List returns all users with their role sets
func (s *userService) List(ctx context.Context) ([]models.UserSummary, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	assignments, err := s.roleRepo.GetAllAssignments(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.UserSummary, len(users))
	for i, user := range users {
		roles := assignments[user.ID]
		if roles == nil {
			roles = []string{}
		}
		summaries[i] = newUserSummary(&user, roles)
	}

	return summaries, nil
}

// Get returns a single user with their role set
func (s *userService) Get(ctx context.Context, userID int) (*models.UserSummary, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	roles, err := s.roleRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := newUserSummary(user, roles)
	return &summary, nil
}

// Create builds a user exactly like registration but assigns no default
// role; a user created this way holds no roles until an admin grants one.
func (s *userService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.UserSummary, error) {
	normalizedEmail := strings.TrimSpace(strings.ToLower(req.Email))
	normalizedUsername := strings.TrimSpace(req.Username)

	if err := checkNewUserCredentials(ctx, s.userRepo, normalizedUsername, normalizedEmail, req.Password); err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:       normalizedUsername,
		Email:          normalizedEmail,
		PasswordHash:   string(passwordHash),
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		PhoneNumber:    "",
		EmailConfirmed: false,
		IsActive:       true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.Int("userID", user.ID), zap.String("username", user.Username))

	summary := newUserSummary(user, []string{})
	return &summary, nil
}

// Update overwrites username, email, names and phone number on an existing
// user. The write carries the concurrency stamp the user was loaded with, so
// a concurrent modification surfaces as models.ErrConflict instead of a
// silent last-writer-wins overwrite.
func (s *userService) Update(ctx context.Context, userID int, req *models.UpdateUserRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	normalizedEmail := strings.TrimSpace(strings.ToLower(req.Email))
	normalizedUsername := strings.TrimSpace(req.Username)

	if err := s.checkUpdatedCredentials(ctx, user, normalizedUsername, normalizedEmail); err != nil {
		return err
	}

	user.Username = normalizedUsername
	user.Email = normalizedEmail
	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	return s.userRepo.Update(ctx, user)
}

// Delete removes a user and their role assignments
func (s *userService) Delete(ctx context.Context, userID int) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("user deleted", zap.Int("userID", userID))
	return nil
}

// checkUpdatedCredentials validates the new username and email for an
// update. Uniqueness is only checked for values that actually change, so an
// update that keeps its own username does not collide with itself.
func (s *userService) checkUpdatedCredentials(ctx context.Context, current *models.User, username, email string) error {
	validation := models.NewValidationError()

	if username == "" {
		validation.Add("username", "username cannot be empty")
	} else if username != current.Username {
		exists, err := s.userRepo.ExistsByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if exists {
			validation.Add("username", "username already in use")
		}
	}

	if !emailRegex.MatchString(email) {
		validation.Add("email", "invalid email format")
	} else if email != current.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			validation.Add("email", "email already in use")
		}
	}

	if validation.HasErrors() {
		return validation
	}
	return nil
}

// newUserSummary maps a user row and its roles to the response shape
func newUserSummary(user *models.User, roles []string) models.UserSummary {
	return models.UserSummary{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		PhoneNumber: user.PhoneNumber,
		IsActive:    user.IsActive,
		Roles:       roles,
	}
}
