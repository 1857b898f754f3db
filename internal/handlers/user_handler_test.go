package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/EmmmanuelL28/user-management-system/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockUserService is a mock implementation of UserService
type mockUserService struct {
	users       []models.UserSummary
	user        *models.UserSummary
	listError   error
	getError    error
	createError error
	updateError error
	deleteError error

	updatedID int
	deletedID int
}

func (m *mockUserService) List(ctx context.Context) ([]models.UserSummary, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	return m.users, nil
}

func (m *mockUserService) Get(ctx context.Context, userID int) (*models.UserSummary, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.user, nil
}

func (m *mockUserService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.UserSummary, error) {
	if m.createError != nil {
		return nil, m.createError
	}
	return m.user, nil
}

func (m *mockUserService) Update(ctx context.Context, userID int, req *models.UpdateUserRequest) error {
	m.updatedID = userID
	return m.updateError
}

func (m *mockUserService) Delete(ctx context.Context, userID int) error {
	m.deletedID = userID
	return m.deleteError
}

// passThrough stands in for the auth middleware in handler-level tests
func passThrough(next http.Handler) http.Handler {
	return next
}

// setupUserRouter mounts the user handler with pass-through middleware,
// scoped to /api the way main does
func setupUserRouter(svc *mockUserService) *chi.Mux {
	handler := NewUserHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		handler.RegisterRoutes(r, passThrough, passThrough)
	})
	return r
}

func TestUserHandler_List(t *testing.T) {
	tests := []struct {
		name           string
		service        *mockUserService
		expectedStatus int
		expectedCount  int
	}{
		{
			name: "success",
			service: &mockUserService{
				users: []models.UserSummary{
					{ID: 1, Username: "admin", Roles: []string{"Admin"}},
					{ID: 2, Username: "testuser", Roles: []string{}},
				},
			},
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:           "empty list",
			service:        &mockUserService{users: []models.UserSummary{}},
			expectedStatus: http.StatusOK,
			expectedCount:  0,
		},
		{
			name:           "internal error",
			service:        &mockUserService{listError: assert.AnError},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupUserRouter(tt.service)

			req := httptest.NewRequest(http.MethodGet, "/api/user/", nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusOK {
				var users []models.UserSummary
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
				assert.Len(t, users, tt.expectedCount)
			}
		})
	}
}

func TestUserHandler_Get(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		service        *mockUserService
		expectedStatus int
	}{
		{
			name: "success",
			path: "/api/user/1",
			service: &mockUserService{
				user: &models.UserSummary{ID: 1, Username: "admin", Roles: []string{"Admin"}},
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "not found",
			path:           "/api/user/99",
			service:        &mockUserService{getError: models.ErrNotFound},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "non-numeric id",
			path:           "/api/user/abc",
			service:        &mockUserService{},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupUserRouter(tt.service)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusOK {
				var user models.UserSummary
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
				assert.Equal(t, 1, user.ID)
			}
		})
	}
}

func TestUserHandler_Create(t *testing.T) {
	validationErr := models.NewValidationError()
	validationErr.Add("username", "username already in use")

	tests := []struct {
		name             string
		body             string
		service          *mockUserService
		expectedStatus   int
		expectedLocation string
	}{
		{
			name: "success",
			body: `{"username":"newuser","email":"new@example.com","password":"secret123"}`,
			service: &mockUserService{
				user: &models.UserSummary{ID: 7, Username: "newuser", Roles: []string{}},
			},
			expectedStatus:   http.StatusCreated,
			expectedLocation: "/api/user/7",
		},
		{
			name:           "malformed JSON",
			body:           `{"username":`,
			service:        &mockUserService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "validation failure",
			body:           `{"username":"taken","email":"new@example.com","password":"secret123"}`,
			service:        &mockUserService{createError: validationErr},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupUserRouter(tt.service)

			req := httptest.NewRequest(http.MethodPost, "/api/user/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusCreated {
				assert.Equal(t, tt.expectedLocation, rec.Header().Get("Location"))

				var user models.UserSummary
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
				assert.Equal(t, 7, user.ID)
				assert.Equal(t, []string{}, user.Roles)
			}
		})
	}
}

func TestUserHandler_Update(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		body           string
		service        *mockUserService
		expectedStatus int
	}{
		{
			name:           "success",
			path:           "/api/user/1",
			body:           `{"username":"renamed","email":"renamed@example.com"}`,
			service:        &mockUserService{},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "not found",
			path:           "/api/user/99",
			body:           `{"username":"renamed","email":"renamed@example.com"}`,
			service:        &mockUserService{updateError: models.ErrNotFound},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "concurrent modification",
			path:           "/api/user/1",
			body:           `{"username":"renamed","email":"renamed@example.com"}`,
			service:        &mockUserService{updateError: models.ErrConflict},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "non-numeric id",
			path:           "/api/user/abc",
			body:           `{"username":"renamed","email":"renamed@example.com"}`,
			service:        &mockUserService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed JSON",
			path:           "/api/user/1",
			body:           `{"username":`,
			service:        &mockUserService{},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupUserRouter(tt.service)

			req := httptest.NewRequest(http.MethodPut, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusNoContent {
				assert.Equal(t, 1, tt.service.updatedID)
				assert.Empty(t, rec.Body.String())
			}
		})
	}
}

func TestUserHandler_Delete(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		service        *mockUserService
		expectedStatus int
	}{
		{
			name:           "success",
			path:           "/api/user/1",
			service:        &mockUserService{},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "not found",
			path:           "/api/user/99",
			service:        &mockUserService{deleteError: models.ErrNotFound},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "non-numeric id",
			path:           "/api/user/abc",
			service:        &mockUserService{},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupUserRouter(tt.service)

			req := httptest.NewRequest(http.MethodDelete, tt.path, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusNoContent {
				assert.Equal(t, 1, tt.service.deletedID)
			}
		})
	}
}
