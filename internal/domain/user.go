package domain

import "time"

// Role determines what a user may see and mutate.
type Role string

const (
	RoleClient Role = "client"
	RoleTeam   Role = "team"
	RoleAdmin  Role = "admin"
)

// ValidRole reports whether the value is one of the three known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleClient, RoleTeam, RoleAdmin:
		return true
	}
	return false
}

// User is the domain model for anyone who signs in, client or internal.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	AvatarURL    *string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
