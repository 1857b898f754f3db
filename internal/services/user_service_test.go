package services

import (
	"context"
	"errors"
	"testing"

	"github.com/EmmmanuelL28/user-management-system/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// mockAdminUserRepository is a mock implementation of AdminUserRepository
type mockAdminUserRepository struct {
	user                   *models.User
	users                  []models.User
	getByIDError           error
	getAllError            error
	createError            error
	updateError            error
	deleteError            error
	existsByEmailResult    bool
	existsByEmailError     error
	existsByUsernameResult bool
	existsByUsernameError  error

	createdUser *models.User
	updatedUser *models.User
	deletedID   int
}

func (m *mockAdminUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createError != nil {
		return m.createError
	}
	user.ID = 1
	m.createdUser = user
	return nil
}

func (m *mockAdminUserRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	if m.getByIDError != nil {
		return nil, m.getByIDError
	}
	return m.user, nil
}

func (m *mockAdminUserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	if m.getAllError != nil {
		return nil, m.getAllError
	}
	return m.users, nil
}

func (m *mockAdminUserRepository) Update(ctx context.Context, user *models.User) error {
	if m.updateError != nil {
		return m.updateError
	}
	m.updatedUser = user
	return nil
}

func (m *mockAdminUserRepository) Delete(ctx context.Context, userID int) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	m.deletedID = userID
	return nil
}

func (m *mockAdminUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailError != nil {
		return false, m.existsByEmailError
	}
	return m.existsByEmailResult, nil
}

func (m *mockAdminUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameError != nil {
		return false, m.existsByUsernameError
	}
	return m.existsByUsernameResult, nil
}

// mockAdminRoleRepository is a mock implementation of AdminRoleRepository
type mockAdminRoleRepository struct {
	roles          []string
	assignments    map[int][]string
	getByUserIDErr error
	assignmentsErr error
}

func (m *mockAdminRoleRepository) GetByUserID(ctx context.Context, userID int) ([]string, error) {
	if m.getByUserIDErr != nil {
		return nil, m.getByUserIDErr
	}
	return m.roles, nil
}

func (m *mockAdminRoleRepository) GetAllAssignments(ctx context.Context) (map[int][]string, error) {
	if m.assignmentsErr != nil {
		return nil, m.assignmentsErr
	}
	return m.assignments, nil
}

func TestNewUserService(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	userRepo := &mockAdminUserRepository{}
	roleRepo := &mockAdminRoleRepository{}

	svc := NewUserService(userRepo, roleRepo, logger)

	assert.NotNil(t, svc)
	assert.Equal(t, userRepo, svc.userRepo)
	assert.Equal(t, roleRepo, svc.roleRepo)
	assert.Equal(t, logger, svc.logger)
}

func TestUserService_List(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	tests := []struct {
		name          string
		userRepo      *mockAdminUserRepository
		roleRepo      *mockAdminRoleRepository
		expectedError bool
		expected      []models.UserSummary
	}{
		{
			name: "success with roles merged",
			userRepo: &mockAdminUserRepository{
				users: []models.User{
					{ID: 1, Username: "admin", Email: "admin@example.com", IsActive: true},
					{ID: 2, Username: "testuser", Email: "test@example.com", IsActive: true},
				},
			},
			roleRepo: &mockAdminRoleRepository{
				assignments: map[int][]string{
					1: {"Admin", "User"},
				},
			},
			expected: []models.UserSummary{
				{ID: 1, Username: "admin", Email: "admin@example.com", IsActive: true, Roles: []string{"Admin", "User"}},
				{ID: 2, Username: "testuser", Email: "test@example.com", IsActive: true, Roles: []string{}},
			},
		},
		{
			name:     "empty store",
			userRepo: &mockAdminUserRepository{},
			roleRepo: &mockAdminRoleRepository{assignments: map[int][]string{}},
			expected: []models.UserSummary{},
		},
		{
			name:          "user query error",
			userRepo:      &mockAdminUserRepository{getAllError: errors.New("connection lost")},
			roleRepo:      &mockAdminRoleRepository{},
			expectedError: true,
		},
		{
			name: "assignment query error",
			userRepo: &mockAdminUserRepository{
				users: []models.User{{ID: 1, Username: "admin"}},
			},
			roleRepo:      &mockAdminRoleRepository{assignmentsErr: errors.New("connection lost")},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(tt.userRepo, tt.roleRepo, logger)

			users, err := svc.List(context.Background())

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, users)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, users)
			}
		})
	}
}

func TestUserService_Get(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	tests := []struct {
		name          string
		userRepo      *mockAdminUserRepository
		roleRepo      *mockAdminRoleRepository
		expectedError error
		expected      *models.UserSummary
	}{
		{
			name: "success",
			userRepo: &mockAdminUserRepository{
				user: &models.User{ID: 1, Username: "admin", Email: "admin@example.com", IsActive: true},
			},
			roleRepo: &mockAdminRoleRepository{roles: []string{"Admin"}},
			expected: &models.UserSummary{ID: 1, Username: "admin", Email: "admin@example.com", IsActive: true, Roles: []string{"Admin"}},
		},
		{
			name:          "not found",
			userRepo:      &mockAdminUserRepository{getByIDError: models.ErrNotFound},
			roleRepo:      &mockAdminRoleRepository{},
			expectedError: models.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(tt.userRepo, tt.roleRepo, logger)

			user, err := svc.Get(context.Background(), 1)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, user)
			}
		})
	}
}

func TestUserService_Create(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	tests := []struct {
		name           string
		request        *models.CreateUserRequest
		userRepo       *mockAdminUserRepository
		expectedError  bool
		expectedFields []string
	}{
		{
			name: "success",
			request: &models.CreateUserRequest{
				Username: "newuser",
				Email:    "new@example.com",
				Password: "secret123",
			},
			userRepo: &mockAdminUserRepository{},
		},
		{
			name: "duplicate username",
			request: &models.CreateUserRequest{
				Username: "newuser",
				Email:    "new@example.com",
				Password: "secret123",
			},
			userRepo:       &mockAdminUserRepository{existsByUsernameResult: true},
			expectedError:  true,
			expectedFields: []string{"username"},
		},
		{
			name: "invalid email and short password",
			request: &models.CreateUserRequest{
				Username: "newuser",
				Email:    "broken",
				Password: "x",
			},
			userRepo:       &mockAdminUserRepository{},
			expectedError:  true,
			expectedFields: []string{"email", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(tt.userRepo, &mockAdminRoleRepository{}, logger)

			user, err := svc.Create(context.Background(), tt.request)

			if !tt.expectedError {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, 1, user.ID)
				assert.Equal(t, "newuser", user.Username)
				// No default role is assigned on the admin-side create
				assert.Equal(t, []string{}, user.Roles)
				assert.NoError(t, bcrypt.CompareHashAndPassword(
					[]byte(tt.userRepo.createdUser.PasswordHash), []byte("secret123")))
				return
			}

			require.Error(t, err)
			assert.Nil(t, user)
			var validation *models.ValidationError
			require.ErrorAs(t, err, &validation)
			for _, field := range tt.expectedFields {
				assert.Contains(t, validation.Fields, field)
			}
		})
	}
}

func TestUserService_Update(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	current := func() *models.User {
		return &models.User{
			ID:               1,
			Username:         "testuser",
			Email:            "test@example.com",
			ConcurrencyStamp: "stamp-1",
		}
	}

	tests := []struct {
		name           string
		request        *models.UpdateUserRequest
		userRepo       *mockAdminUserRepository
		expectedError  error
		expectedFields []string
	}{
		{
			name: "success",
			request: &models.UpdateUserRequest{
				Username:    "renamed",
				Email:       "renamed@example.com",
				FirstName:   "Taro",
				LastName:    "Yamada",
				PhoneNumber: "+81-90-0000-0000",
			},
			userRepo: &mockAdminUserRepository{user: current()},
		},
		{
			name: "unchanged username and email skip uniqueness checks",
			request: &models.UpdateUserRequest{
				Username: "testuser",
				Email:    "test@example.com",
			},
			userRepo: &mockAdminUserRepository{
				user: current(),
				// Both exist in the store (it is this very user); an update
				// keeping its own identity must not collide with itself
				existsByUsernameResult: true,
				existsByEmailResult:    true,
			},
		},
		{
			name: "user not found",
			request: &models.UpdateUserRequest{
				Username: "renamed",
				Email:    "renamed@example.com",
			},
			userRepo:      &mockAdminUserRepository{getByIDError: models.ErrNotFound},
			expectedError: models.ErrNotFound,
		},
		{
			name: "concurrent modification",
			request: &models.UpdateUserRequest{
				Username: "renamed",
				Email:    "renamed@example.com",
			},
			userRepo:      &mockAdminUserRepository{user: current(), updateError: models.ErrConflict},
			expectedError: models.ErrConflict,
		},
		{
			name: "new username already taken",
			request: &models.UpdateUserRequest{
				Username: "taken",
				Email:    "test@example.com",
			},
			userRepo:       &mockAdminUserRepository{user: current(), existsByUsernameResult: true},
			expectedFields: []string{"username"},
		},
		{
			name: "new email already taken",
			request: &models.UpdateUserRequest{
				Username: "testuser",
				Email:    "taken@example.com",
			},
			userRepo:       &mockAdminUserRepository{user: current(), existsByEmailResult: true},
			expectedFields: []string{"email"},
		},
		{
			name: "empty username",
			request: &models.UpdateUserRequest{
				Username: "",
				Email:    "test@example.com",
			},
			userRepo:       &mockAdminUserRepository{user: current()},
			expectedFields: []string{"username"},
		},
		{
			name: "invalid email",
			request: &models.UpdateUserRequest{
				Username: "testuser",
				Email:    "broken",
			},
			userRepo:       &mockAdminUserRepository{user: current()},
			expectedFields: []string{"email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(tt.userRepo, &mockAdminRoleRepository{}, logger)

			err := svc.Update(context.Background(), 1, tt.request)

			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
			case len(tt.expectedFields) > 0:
				var validation *models.ValidationError
				require.ErrorAs(t, err, &validation)
				for _, field := range tt.expectedFields {
					assert.Contains(t, validation.Fields, field)
				}
			default:
				require.NoError(t, err)
				require.NotNil(t, tt.userRepo.updatedUser)
				assert.Equal(t, tt.request.Username, tt.userRepo.updatedUser.Username)
				assert.Equal(t, tt.request.Email, tt.userRepo.updatedUser.Email)
			}
		})
	}
}

func TestUserService_Delete(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	tests := []struct {
		name          string
		userRepo      *mockAdminUserRepository
		expectedError error
	}{
		{
			name:     "success",
			userRepo: &mockAdminUserRepository{},
		},
		{
			name:          "not found",
			userRepo:      &mockAdminUserRepository{deleteError: models.ErrNotFound},
			expectedError: models.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(tt.userRepo, &mockAdminRoleRepository{}, logger)

			err := svc.Delete(context.Background(), 7)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 7, tt.userRepo.deletedID)
			}
		})
	}
}
