package dto

import "github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"

// SignUpRequest registers a founder or developer. Attributes carries the
// role-specific profile fields (startup details, skills) untouched.
type SignUpRequest struct {
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Password   string         `json:"password"`
	Phone      string         `json:"phone,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LeadLoginRequest struct {
	Email     string `json:"email"`
	AccessKey string `json:"access_key"`
}

type SuperAdminLoginRequest struct {
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse is returned by every sign-in path. RefreshToken is empty for
// emergency super-admin sessions.
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	User         *models.User `json:"user"`
	Emergency    bool         `json:"emergency,omitempty"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Store     string `json:"store"`
	Backend   string `json:"backend"`
}
