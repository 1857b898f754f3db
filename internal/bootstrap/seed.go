// Package bootstrap performs the one-time startup seeding of roles and the
// default admin account.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/EmmmanuelL28/user-management-system/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Default admin credentials, created when no admin account exists yet.
// The password is a known literal; operators must rotate it before exposing
// the service.
const (
	adminUsername = "admin"
	adminEmail    = "admin@example.com"
	adminPassword = "Admin123!"
)

// UserRepository is the interface that wraps the user operations seeding needs
type UserRepository interface {
	// Method ExistsByUsername checks if a user with such username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Method Create inserts a new user into the database.
	Create(ctx context.Context, user *models.User) error
}

// RoleRepository is the interface that wraps the role operations seeding needs
type RoleRepository interface {
	// Method ExistsByName checks if a role with such name exists.
	ExistsByName(ctx context.Context, name string) (bool, error)
	// Method Create inserts a new role into the database.
	Create(ctx context.Context, role *models.Role) error
	// Method AssignToUser adds the named role to a user.
	AssignToUser(ctx context.Context, userID int, roleName string) error
}

// Seed ensures the "Admin" and "User" roles and the default admin account
// exist. It is idempotent: every step is guarded by an existence check, so
// running it on every process start is safe.
func Seed(ctx context.Context, userRepo UserRepository, roleRepo RoleRepository, logger *zap.Logger) error {
	for _, name := range []string{models.RoleAdmin, models.RoleUser} {
		exists, err := roleRepo.ExistsByName(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to check role %q: %w", name, err)
		}
		if exists {
			continue
		}
		if err := roleRepo.Create(ctx, &models.Role{Name: name}); err != nil {
			return fmt.Errorf("failed to create role %q: %w", name, err)
		}
		logger.Info("seeded role", zap.String("role", name))
	}

	exists, err := userRepo.ExistsByUsername(ctx, adminUsername)
	if err != nil {
		return fmt.Errorf("failed to check admin account: %w", err)
	}
	if exists {
		return nil
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Username:       adminUsername,
		Email:          adminEmail,
		PasswordHash:   string(passwordHash),
		FirstName:      "System",
		LastName:       "Administrator",
		PhoneNumber:    "",
		EmailConfirmed: false,
		IsActive:       true,
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	if err := roleRepo.AssignToUser(ctx, admin.ID, models.RoleAdmin); err != nil {
		return fmt.Errorf("failed to assign admin role: %w", err)
	}

	logger.Warn("seeded default admin account with a well-known password; rotate it before production use",
		zap.String("username", adminUsername),
	)
	return nil
}
