package dto

import "github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"

type CreatePostRequest struct {
	Type        models.PostType `json:"type"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Image       string          `json:"image,omitempty"`
	Company     string          `json:"company,omitempty"`
	JobLink     string          `json:"job_link,omitempty"`
	TechStack   []string        `json:"tech_stack,omitempty"`
	SchemaImage string          `json:"schema_image,omitempty"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

type DeliveryLinksRequest struct {
	GithubURL   string `json:"github_url"`
	LiveDemoURL string `json:"live_demo_url"`
}

type AssignRequest struct {
	UserID string `json:"user_id"`
}

type AssignTeamRequest struct {
	UserIDs []string `json:"user_ids"`
}

type PostListResponse struct {
	Posts []models.Post `json:"posts"`
	Total int           `json:"total"`
}

// MembershipResponse reports whether a set operation changed anything.
// Applying twice or assigning an existing member returns Changed=false.
type MembershipResponse struct {
	Post    *models.Post `json:"post"`
	Changed bool         `json:"changed"`
}

type LikeResponse struct {
	Likes int `json:"likes"`
}
