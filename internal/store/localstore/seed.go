package localstore

import (
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// DemoPassword signs in every seeded account except the super admin, who
// uses the master password flow.
const DemoPassword = "buildforge-demo"

func seedUsers(superAdminEmail string, cost int, now time.Time) ([]models.User, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}

	return []models.User{
		{
			ID:        "super_admin",
			Name:      "BuildForge Root",
			Email:     superAdminEmail,
			Role:      models.RoleSuperAdmin,
			Avatar:    "https://ui-avatars.com/api/?name=Root",
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:           "founder_01",
			Name:         "Rohan (Founder)",
			Email:        "rohan@buildforge.io",
			Role:         models.RoleFounder,
			Avatar:       "https://picsum.photos/seed/student1/200",
			Bio:          "Building a decentralized voting app.",
			Attributes:   datatypes.JSONMap{"startup_name": "DecentraVote"},
			PasswordHash: string(hash),
			AuthProvider: "email",
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           "lead_01",
			Name:         "Platform Lead",
			Email:        "lead@buildforge.io",
			Role:         models.RoleLead,
			Avatar:       "https://ui-avatars.com/api/?name=Lead",
			PasswordHash: string(hash),
			AuthProvider: "email",
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           "dev_01",
			Name:         "Vikram (Dev)",
			Email:        "vikram@buildforge.io",
			Role:         models.RoleDeveloper,
			Avatar:       "https://picsum.photos/seed/iit1/200",
			Bio:          "Full Stack Developer looking for projects.",
			Attributes:   datatypes.JSONMap{"skills": "React, Node.js"},
			PasswordHash: string(hash),
			AuthProvider: "email",
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}, nil
}

func seedPosts(now time.Time) []models.Post {
	created := now.Add(-50 * time.Second)
	return []models.Post{
		{
			ID:         "post_demo_1",
			AuthorID:   "founder_01",
			AuthorName: "Rohan (Founder)",
			AuthorRole: models.RoleFounder,
			Type:       models.PostIdeaSubmission,
			Status:     models.StatusVerified,
			Title:      "Smart Canteen App",
			Content:    "We are building a queue management system for the canteen.",
			Likes:      20,
			Comments:   []models.Comment{},
			Applicants: []string{"dev_01"},
			Team:       []string{"dev_01"},
			TechStack:  []string{"Flutter", "Node.js", "Firebase"},
			MVP: &models.MVP{
				Description: "Mobile App (Flutter) + Node.js Backend for real-time order tracking.",
				TechStack:   []string{"Flutter", "Node.js", "Firebase"},
				DocLink:     "#",
				Status:      models.MVPStatusReady,
			},
			CreatedAt: created,
			UpdatedAt: created,
		},
	}
}
