package dto

import "github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"

// UpdateProfileRequest edits the caller's own profile. Nil fields are left
// unchanged; role, email and blocked state cannot be edited here.
type UpdateProfileRequest struct {
	Name       *string        `json:"name,omitempty"`
	Phone      *string        `json:"phone,omitempty"`
	Avatar     *string        `json:"avatar,omitempty"`
	Bio        *string        `json:"bio,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

type UserListResponse struct {
	Users []models.User `json:"users"`
	Total int           `json:"total"`
}
