package models

import "time"

// User roles. Role is informational only; no role participates in ownership checks.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAgent  = "agent"
)

// User is an account that can own listings, favorite them and review them.
// PasswordHash is never serialized.
type User struct {
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	ProfilePicture *string   `json:"profile_picture"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	PhoneNumber    string    `json:"phone_number"`
	Role           string    `json:"role"`
	Bio            string    `json:"bio"`
	ID             int64     `json:"id"`
	IsVerified     bool      `json:"is_verified"`
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleBuyer, RoleSeller, RoleAgent:
		return true
	}
	return false
}
