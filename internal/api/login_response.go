package api

import "bayou-blog/internal/models"

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

// PublicUser is the externally visible shape of an account.
type PublicUser struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Bio      string      `json:"bio,omitempty"`
	Role     models.Role `json:"role"`
}

// NewPublicUser strips everything that must never leave the server.
func NewPublicUser(u *models.User) PublicUser {
	return PublicUser{
		ID:       u.ID.String(),
		Username: u.Username,
		Email:    u.Email,
		Bio:      u.Bio,
		Role:     u.Role,
	}
}

// ProfileResponse is returned by the profile endpoint: the account, its
// authored posts newest first, and aggregate counters across them.
type ProfileResponse struct {
	User  PublicUser          `json:"user"`
	Posts []*models.Post      `json:"posts"`
	Stats models.ProfileStats `json:"stats"`
}
