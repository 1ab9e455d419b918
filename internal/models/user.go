package models

import (
	"time"

	"gorm.io/datatypes"
)

// Role is the fixed platform role assigned at account creation.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleLead       Role = "LEAD"
	RoleFounder    Role = "FOUNDER"
	RoleDeveloper  Role = "DEVELOPER"
	RoleNone       Role = "NONE"
)

// IsReviewer reports whether the role moderates the platform.
func (r Role) IsReviewer() bool {
	return r == RoleLead || r == RoleSuperAdmin
}

// User is a platform participant. Role-specific details (startup info for
// founders, skills for developers) live in Attributes and are never
// interpreted by the visibility rules.
type User struct {
	ID           string            `gorm:"primaryKey;size:64" json:"uid"`
	Name         string            `gorm:"size:255;not null" json:"name"`
	Email        string            `gorm:"size:255;index" json:"email,omitempty"`
	Phone        string            `gorm:"size:50" json:"phone,omitempty"`
	Role         Role              `gorm:"size:20;not null;index" json:"role"`
	Avatar       string            `gorm:"size:500" json:"avatar,omitempty"`
	Bio          string            `gorm:"type:text" json:"bio,omitempty"`
	Blocked      bool              `gorm:"default:false;index" json:"blocked"`
	Attributes   datatypes.JSONMap `gorm:"type:jsonb" json:"attributes,omitempty"`
	PasswordHash string            `gorm:"size:255" json:"-" cbor:"password_hash"`
	AuthProvider string            `gorm:"size:50;default:'email'" json:"-" cbor:"auth_provider"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
