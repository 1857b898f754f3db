package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/EmmmanuelL28/user-management-system/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserService is the interface that wraps methods for user administration
type UserService interface {
	// Method List returns all users with their role sets.
	List(ctx context.Context) ([]models.UserSummary, error)
	// Method Get returns a single user with their role set.
	//
	// If the user does not exist, models.ErrNotFound is returned together with "nil" value.
	Get(ctx context.Context, userID int) (*models.UserSummary, error)
	// Method Create builds a user like registration but without the default
	// role assignment, and returns the created record.
	Create(ctx context.Context, req *models.CreateUserRequest) (*models.UserSummary, error)
	// Method Update overwrites username, email, names and phone number.
	//
	// A concurrent modification is returned as models.ErrConflict; a missing
	// user as models.ErrNotFound.
	Update(ctx context.Context, userID int, req *models.UpdateUserRequest) error
	// Method Delete removes a user and their role assignments.
	//
	// If the user does not exist, models.ErrNotFound is returned.
	Delete(ctx context.Context, userID int) error
}

// UserHandler handles user administration HTTP requests
type UserHandler struct {
	BaseHandler
	userService UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: BaseHandler{Logger: logger},
		userService: userService,
	}
}

// RegisterRoutes registers all user handler routes.
// Note: This assumes the router is already scoped to /api.
//
// Create is reachable by any authenticated caller while the other routes
// require the Admin role; the asymmetry is inherited policy and kept as is.
func (h *UserHandler) RegisterRoutes(r chi.Router, authenticate, requireAdmin func(http.Handler) http.Handler) {
	r.Route("/user", func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/", h.Create)
		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/", h.List)
			r.Get("/{id}", h.Get)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List handles GET /user
// @Summary List all users
// @Description Get all users with their role sets. Admin only.
// @Tags user
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.UserSummary "List of users"
// @Failure 401 {object} map[string]string "Missing or invalid token"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /user [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, users)
}

// Get handles GET /user/{id}
// @Summary Get user by ID
// @Description Get a single user with their role set. Admin only.
// @Tags user
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.UserSummary "User"
// @Failure 400 {object} map[string]string "Invalid user ID"
// @Failure 404 {object} map[string]string "User not found"
// @Router /user/{id} [get]
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := h.parseUserID(r)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// Create handles POST /user
// @Summary Create a user
// @Description Create a user without a default role. Available to any authenticated caller.
// @Tags user
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateUserRequest true "User creation request"
// @Success 201 {object} models.UserSummary "Created user"
// @Failure 400 {object} map[string]any "Field-level validation errors"
// @Failure 401 {object} map[string]string "Missing or invalid token"
// @Router /user [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.Create(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/user/%d", user.ID))
	h.RespondJSON(w, http.StatusCreated, user)
}

// Update handles PUT /user/{id}
// @Summary Update a user
// @Description Overwrite username, email, names and phone number. Admin only.
// @Tags user
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Param request body models.UpdateUserRequest true "User update request"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]any "Field-level validation errors"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 409 {object} map[string]string "Concurrent modification"
// @Router /user/{id} [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := h.parseUserID(r)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.userService.Update(r.Context(), userID, &req); err != nil {
		h.RespondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /user/{id}
// @Summary Delete a user
// @Description Remove a user and their role assignments. Admin only.
// @Tags user
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid user ID"
// @Failure 404 {object} map[string]string "User not found"
// @Router /user/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := h.parseUserID(r)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	if err := h.userService.Delete(r.Context(), userID); err != nil {
		h.RespondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseUserID parses the {id} route parameter
func (h *UserHandler) parseUserID(r *http.Request) (int, error) {
	userIDStr := chi.URLParam(r, "id")
	userID, err := strconv.Atoi(userIDStr)
	if err != nil {
		h.Logger.Error("failed to parse user ID", zap.Error(err), zap.String("id", userIDStr))
		return 0, err
	}
	return userID, nil
}
