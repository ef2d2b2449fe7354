package models

import (
	"time"
)

// Role defines user permission levels
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered account
type User struct {
	ID           int        `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Username     *string    `json:"username,omitempty"`
	Role         Role       `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// UserPublic is the user representation safe to return to clients
type UserPublic struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Username  *string   `json:"username,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic converts a User to its public representation
func (u *User) ToPublic() *UserPublic {
	return &UserPublic{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// IsAdmin returns true if the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RegisterRequest is the request body for registration
type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned after successful authentication
type AuthResponse struct {
	Token string      `json:"token"`
	User  *UserPublic `json:"user"`
}
