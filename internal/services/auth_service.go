package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/EmmmanuelL28/user-management-system/internal/auth"
	"github.com/EmmmanuelL28/user-management-system/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserCredentialRepository is the interface that wraps the uniqueness checks
// shared between registration and the admin user service
type UserCredentialRepository interface {
	// Method ExistsByEmail checks if a user with such email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method ExistsByUsername checks if a user with such username exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// UserRepository is the interface that wraps methods for user table data access
type UserRepository interface {
	UserCredentialRepository
	// Method Create inserts a new user into the database and writes the
	// generated ID back into the user.
	Create(ctx context.Context, user *models.User) error
	// Method GetByUsername retrieves a user by exact username match.
	//
	// If the user does not exist, models.ErrNotFound is returned together with "nil" value.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// RoleRepository is the interface that wraps methods for role assignments
type RoleRepository interface {
	// Method AssignToUser adds the named role to a user.
	AssignToUser(ctx context.Context, userID int, roleName string) error
	// Method GetByUserID retrieves the role names assigned to a user.
	GetByUserID(ctx context.Context, userID int) ([]string, error)
}

// authService orchestrates registration and login
type authService struct {
	userRepo UserRepository
	roleRepo RoleRepository
	issuer   *auth.TokenIssuer
	logger   *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo UserRepository,
	roleRepo RoleRepository,
	issuer *auth.TokenIssuer,
	logger *zap.Logger,
) *authService {
	return &authService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		issuer:   issuer,
		logger:   logger,
	}
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// minPasswordLength is the only password policy requirement. No character
// classes are enforced; this permissive default is carried over on purpose
// and tightening it is a product decision, not a bugfix.
const minPasswordLength = 6

// dummyPasswordHash is compared against when login hits an unknown username,
// so the miss path costs the same as a wrong password. The plaintext behind
// it is never accepted: login fails before comparison succeeds.
var dummyPasswordHash = func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("timing-equalizer"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("failed to generate dummy hash: %v", err))
	}
	return hash
}()

// Register creates a new user account with the default "User" role.
// Registration does not log the user in; no token is issued.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) error {
	normalizedEmail := strings.TrimSpace(strings.ToLower(req.Email))
	normalizedUsername := strings.TrimSpace(req.Username)

	if err := checkNewUserCredentials(ctx, s.userRepo, normalizedUsername, normalizedEmail, req.Password); err != nil {
		return err
	}

	// Hash password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// Create user
	user := &models.User{
		Username:       normalizedUsername,
		Email:          normalizedEmail,
		PasswordHash:   string(passwordHash),
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		PhoneNumber:    "", // always present, empty until the user provides one
		EmailConfirmed: false,
		IsActive:       true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	// Self-registration always gets the default role
	if err := s.roleRepo.AssignToUser(ctx, user.ID, models.RoleUser); err != nil {
		return fmt.Errorf("failed to assign default role: %w", err)
	}

	s.logger.Info("user registered", zap.Int("userID", user.ID), zap.String("username", user.Username))
	return nil
}

// Login verifies credentials and issues a bearer token.
//
// Unknown username and wrong password both return models.ErrInvalidCredentials,
// with a dummy hash comparison on the unknown-username path so the two
// failures are indistinguishable in timing as well as in message.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (string, time.Time, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(req.Password))
			return "", time.Time{}, models.ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", time.Time{}, models.ErrInvalidCredentials
	}

	// Roles are loaded at login time and frozen into the token claims
	roles, err := s.roleRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return "", time.Time{}, err
	}

	token, expiresAt, err := s.issuer.Issue(user.ID, user.Username, roles)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to issue token: %w", err)
	}

	return token, expiresAt, nil
}

// checkNewUserCredentials validates username, email and password for a new
// account and collects every failure as a field-level validation error.
// The uniqueness checks run in parallel since they are independent store
// round trips.
func checkNewUserCredentials(ctx context.Context, repo UserCredentialRepository, username, email, password string) error {
	type fieldCheck struct {
		field   string
		message string
		err     error
	}

	results := make(chan fieldCheck, 3)

	// Validate password policy
	go func() {
		if len(password) < minPasswordLength {
			results <- fieldCheck{field: "password", message: fmt.Sprintf("password must be at least %d characters long", minPasswordLength)}
			return
		}
		results <- fieldCheck{}
	}()

	// Validate email format and uniqueness
	go func() {
		if !emailRegex.MatchString(email) {
			results <- fieldCheck{field: "email", message: "invalid email format"}
			return
		}
		exists, err := repo.ExistsByEmail(ctx, email)
		if err != nil {
			results <- fieldCheck{err: fmt.Errorf("failed to check email: %w", err)}
			return
		}
		if exists {
			results <- fieldCheck{field: "email", message: "email already in use"}
			return
		}
		results <- fieldCheck{}
	}()

	// Validate username presence and uniqueness
	go func() {
		if username == "" {
			results <- fieldCheck{field: "username", message: "username cannot be empty"}
			return
		}
		exists, err := repo.ExistsByUsername(ctx, username)
		if err != nil {
			results <- fieldCheck{err: fmt.Errorf("failed to check username: %w", err)}
			return
		}
		if exists {
			results <- fieldCheck{field: "username", message: "username already in use"}
			return
		}
		results <- fieldCheck{}
	}()

	validation := models.NewValidationError()
	for range 3 {
		result := <-results
		if result.err != nil {
			return result.err
		}
		if result.field != "" {
			validation.Add(result.field, result.message)
		}
	}

	if validation.HasErrors() {
		return validation
	}
	return nil
}
