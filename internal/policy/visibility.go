// Package policy holds the read-side access rules: which posts a requester
// may see in a feed category and which users a requester may message.
//
// Both functions are pure. Callers pass the full current dataset and get a
// freshly built slice back; inputs are never modified.
package policy

import (
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/store"
)

// VisiblePosts returns the posts of the given category that requester may
// see, newest first. A nil requester is treated as anonymous.
func VisiblePosts(requester *models.User, category models.PostType, posts []models.Post) []models.Post {
	result := make([]models.Post, 0, len(posts))
	for i := range posts {
		if CanSee(requester, category, &posts[i]) {
			result = append(result, posts[i])
		}
	}
	store.SortPostsNewestFirst(result)
	return result
}

// CanSee reports whether requester may see p in the category feed. Single
// post reads pass p.Type as the category.
func CanSee(requester *models.User, category models.PostType, p *models.Post) bool {
	role := models.RoleNone
	uid := ""
	if requester != nil {
		role = requester.Role
		uid = requester.ID
	}

	switch role {
	case models.RoleLead, models.RoleSuperAdmin:
		if p.Type == category {
			return true
		}
		// Reviewers track delivery progress of approved ideas from the sprint feed.
		return category == models.PostSprintUpdate &&
			p.Type == models.PostIdeaSubmission &&
			p.Status == models.StatusVerified

	case models.RoleFounder:
		if category == models.PostIdeaSubmission {
			return p.Type == models.PostIdeaSubmission && p.AuthorID == uid
		}
		return publiclyVisible(category, p)

	case models.RoleDeveloper:
		if category == models.PostIdeaSubmission {
			return p.Type == models.PostIdeaSubmission && p.HasTeamMember(uid)
		}
		return publiclyVisible(category, p)

	default:
		return publiclyVisible(category, p)
	}
}

func publiclyVisible(category models.PostType, p *models.Post) bool {
	return p.Type == category && p.Status == models.StatusVerified
}

// ConnectedUsers returns the users requester may message. Reviewers reach
// everyone; founders and developers reach reviewers plus the other members
// of verified ideas they belong to. Blocked users and the requester are
// never included.
func ConnectedUsers(requester *models.User, users []models.User, posts []models.Post) []models.User {
	if requester == nil {
		return []models.User{}
	}

	byID := make(map[string]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	seen := make(map[string]bool)
	result := make([]models.User, 0)
	add := func(u *models.User) {
		if u == nil || u.ID == requester.ID || u.Blocked || seen[u.ID] {
			return
		}
		seen[u.ID] = true
		result = append(result, *u)
	}

	switch requester.Role {
	case models.RoleSuperAdmin, models.RoleLead:
		for i := range users {
			add(&users[i])
		}

	case models.RoleFounder, models.RoleDeveloper:
		for i := range users {
			if users[i].Role.IsReviewer() {
				add(&users[i])
			}
		}
		for i := range posts {
			p := &posts[i]
			if p.Type != models.PostIdeaSubmission || p.Status != models.StatusVerified {
				continue
			}
			if p.AuthorID != requester.ID && !p.HasTeamMember(requester.ID) {
				continue
			}
			add(byID[p.AuthorID])
			for _, member := range p.Team {
				add(byID[member])
			}
		}
	}

	return result
}
