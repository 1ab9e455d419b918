package models

import "time"

// PostType is the immutable category of a post.
type PostType string

const (
	PostIdeaSubmission PostType = "IDEA_SUBMISSION"
	PostOpenRole       PostType = "OPEN_ROLE"
	PostDelivery       PostType = "DELIVERY"
	PostSprintUpdate   PostType = "SPRINT_UPDATE"
)

// Valid reports whether t is one of the four post categories.
func (t PostType) Valid() bool {
	switch t {
	case PostIdeaSubmission, PostOpenRole, PostDelivery, PostSprintUpdate:
		return true
	}
	return false
}

// PostStatus moves PENDING -> VERIFIED or PENDING -> REJECTED and never back.
type PostStatus string

const (
	StatusPending  PostStatus = "PENDING"
	StatusVerified PostStatus = "VERIFIED"
	StatusRejected PostStatus = "REJECTED"
)

// Post is a unit of content. Applicants and Team are sets of developer ids
// and are independent of each other.
type Post struct {
	ID          string     `gorm:"primaryKey;size:64" json:"id"`
	AuthorID    string     `gorm:"size:64;not null;index" json:"author_id"`
	AuthorName  string     `gorm:"size:255" json:"author_name"`
	AuthorRole  Role       `gorm:"size:20" json:"author_role"`
	Type        PostType   `gorm:"size:30;not null;index" json:"type"`
	Status      PostStatus `gorm:"size:20;not null;index" json:"status"`
	Title       string     `gorm:"size:255" json:"title,omitempty"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Image       string     `gorm:"size:500" json:"image,omitempty"`
	Company     string     `gorm:"size:255" json:"company,omitempty"`
	JobLink     string     `gorm:"size:500" json:"job_link,omitempty"`
	TechStack   []string   `gorm:"serializer:json" json:"tech_stack,omitempty"`
	SchemaImage string     `gorm:"size:500" json:"schema_image,omitempty"`
	GithubURL   string     `gorm:"size:500" json:"github_url,omitempty"`
	LiveDemoURL string     `gorm:"size:500" json:"live_demo_url,omitempty"`
	Likes       int        `gorm:"default:0" json:"likes"`
	Comments    []Comment  `gorm:"serializer:json" json:"comments"`
	Applicants  []string   `gorm:"serializer:json" json:"applicants"`
	Team        []string   `gorm:"serializer:json" json:"team"`
	MVP         *MVP       `gorm:"serializer:json" json:"mvp,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}

// HasTeamMember reports whether uid is on the post's team.
func (p *Post) HasTeamMember(uid string) bool {
	for _, id := range p.Team {
		if id == uid {
			return true
		}
	}
	return false
}

// Comment is an append-only entry on a post.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

const MVPStatusReady = "READY"

// MVP is synthesized when an idea submission is verified.
type MVP struct {
	Description  string   `json:"description"`
	TechStack    []string `json:"tech_stack"`
	DocLink      string   `json:"doc_link"`
	Status       string   `json:"status"`
	Architecture string   `json:"architecture,omitempty"`
	Rationale    string   `json:"rationale,omitempty"`
	SchemaImage  string   `json:"schema_image,omitempty"`
}
