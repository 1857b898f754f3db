package models

import "time"

// Role name constants seeded at startup
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// User represents a user account in the system
type User struct {
	ID               int        `json:"id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"` // Never serialize password hash
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	PhoneNumber      string     `json:"phoneNumber"` // Always present, may be empty
	EmailConfirmed   bool       `json:"-"`
	IsActive         bool       `json:"isActive"`
	ConcurrencyStamp string     `json:"-"` // Regenerated on every write
	CreatedAt        time.Time  `json:"-"`
	UpdatedAt        *time.Time `json:"-"`
}

// Role represents a named permission group
type Role struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// UserSummary is the user shape returned by the user endpoints
type UserSummary struct {
	ID          int      `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	PhoneNumber string   `json:"phoneNumber"`
	IsActive    bool     `json:"isActive"`
	Roles       []string `json:"roles"`
}

// RegisterRequest represents a registration request body
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// LoginRequest represents a login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the signed token and its absolute expiry
type LoginResponse struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// CreateUserRequest represents an admin-side user creation request body
type CreateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// UpdateUserRequest represents a user update request body
type UpdateUserRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}
