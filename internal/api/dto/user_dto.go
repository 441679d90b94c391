package dto

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	AvatarURL   *string     `json:"avatar_url,omitempty"`
	Role        domain.Role `json:"role"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// AuthResponse carries a session token and its subject.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UpdateProfileRequest payload.
type UpdateProfileRequest struct {
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

// InviteMemberRequest payload.
type InviteMemberRequest struct {
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Role        domain.Role `json:"role"`
}

// ChangeRoleRequest payload.
type ChangeRoleRequest struct {
	Role domain.Role `json:"role"`
}
