package policy

import (
	"fmt"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func post(id string, typ models.PostType, status models.PostStatus, author string, team ...string) models.Post {
	return models.Post{
		ID:        id,
		AuthorID:  author,
		Type:      typ,
		Status:    status,
		Team:      team,
		CreatedAt: base,
	}
}

func ids(posts []models.Post) map[string]bool {
	out := make(map[string]bool, len(posts))
	for _, p := range posts {
		out[p.ID] = true
	}
	return out
}

func userIDs(users []models.User) map[string]bool {
	out := make(map[string]bool, len(users))
	for _, u := range users {
		out[u.ID] = true
	}
	return out
}

var (
	founder   = &models.User{ID: "f1", Role: models.RoleFounder}
	founder2  = &models.User{ID: "f2", Role: models.RoleFounder}
	developer = &models.User{ID: "d1", Role: models.RoleDeveloper}
	lead      = &models.User{ID: "l1", Role: models.RoleLead}
	admin     = &models.User{ID: "sa", Role: models.RoleSuperAdmin}
	none      = &models.User{ID: "n1", Role: models.RoleNone}
)

var statuses = []models.PostStatus{models.StatusPending, models.StatusVerified, models.StatusRejected}

func TestUnverifiedNonIdeaPostsHiddenFromParticipants(t *testing.T) {
	categories := []models.PostType{models.PostOpenRole, models.PostDelivery, models.PostSprintUpdate}
	for _, category := range categories {
		for _, status := range statuses {
			p := post("p", category, status, "f1", "d1")
			posts := []models.Post{p}

			tests := []struct {
				name      string
				requester *models.User
				want      bool
			}{
				{"founder", founder, status == models.StatusVerified},
				{"developer", developer, status == models.StatusVerified},
				{"anonymous", nil, status == models.StatusVerified},
				{"none", none, status == models.StatusVerified},
				{"lead", lead, true},
				{"super admin", admin, true},
			}
			for _, tt := range tests {
				t.Run(fmt.Sprintf("%s/%s/%s", category, status, tt.name), func(t *testing.T) {
					got := len(VisiblePosts(tt.requester, category, posts)) == 1
					if got != tt.want {
						t.Errorf("visible = %v, want %v", got, tt.want)
					}
				})
			}
		}
	}
}

func TestFounderSeesExactlyOwnIdeas(t *testing.T) {
	var posts []models.Post
	for i, status := range statuses {
		posts = append(posts,
			post(fmt.Sprintf("own-%d", i), models.PostIdeaSubmission, status, founder.ID),
			post(fmt.Sprintf("other-%d", i), models.PostIdeaSubmission, status, founder2.ID),
		)
	}
	posts = append(posts, post("own-role", models.PostOpenRole, models.StatusVerified, founder.ID))

	got := ids(VisiblePosts(founder, models.PostIdeaSubmission, posts))
	if len(got) != len(statuses) {
		t.Fatalf("got %d posts, want %d: %v", len(got), len(statuses), got)
	}
	for i := range statuses {
		if !got[fmt.Sprintf("own-%d", i)] {
			t.Errorf("own idea own-%d missing", i)
		}
	}
}

func TestDeveloperSeesExactlyTeamIdeas(t *testing.T) {
	posts := []models.Post{
		post("team-verified", models.PostIdeaSubmission, models.StatusVerified, "f1", "d1", "d2"),
		post("team-pending", models.PostIdeaSubmission, models.StatusPending, "f1", "d1"),
		post("not-team", models.PostIdeaSubmission, models.StatusVerified, "f1", "d2"),
		{ID: "applied-only", AuthorID: "f1", Type: models.PostIdeaSubmission, Status: models.StatusVerified, Applicants: []string{"d1"}, CreatedAt: base},
	}

	got := ids(VisiblePosts(developer, models.PostIdeaSubmission, posts))
	want := map[string]bool{"team-verified": true, "team-pending": true}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for id := range want {
		if !got[id] {
			t.Errorf("missing %s", id)
		}
	}
}

func TestReviewerSprintFeedIncludesVerifiedIdeas(t *testing.T) {
	posts := []models.Post{
		post("sprint", models.PostSprintUpdate, models.StatusPending, "d1"),
		post("idea-verified", models.PostIdeaSubmission, models.StatusVerified, "f1"),
		post("idea-pending", models.PostIdeaSubmission, models.StatusPending, "f1"),
		post("delivery", models.PostDelivery, models.StatusVerified, "d1"),
	}

	for _, reviewer := range []*models.User{lead, admin} {
		got := ids(VisiblePosts(reviewer, models.PostSprintUpdate, posts))
		if len(got) != 2 || !got["sprint"] || !got["idea-verified"] {
			t.Errorf("%s sprint feed = %v", reviewer.Role, got)
		}
	}

	// Participants get the plain rule.
	got := ids(VisiblePosts(developer, models.PostSprintUpdate, posts))
	if len(got) != 0 {
		t.Errorf("developer sprint feed = %v, want empty", got)
	}
}

func TestCanSeeSinglePostUnderOwnType(t *testing.T) {
	idea := post("i", models.PostIdeaSubmission, models.StatusVerified, "f1", "d1")
	role := post("r", models.PostOpenRole, models.StatusVerified, "f1")
	pendingRole := post("pr", models.PostOpenRole, models.StatusPending, "f1")

	tests := []struct {
		name      string
		requester *models.User
		p         models.Post
		want      bool
	}{
		{"team developer sees idea", developer, idea, true},
		{"other developer misses idea", &models.User{ID: "d2", Role: models.RoleDeveloper}, idea, false},
		{"other founder misses idea", founder2, idea, false},
		{"author sees idea", founder, idea, true},
		{"lead sees idea", lead, idea, true},
		{"other founder sees verified role", founder2, role, true},
		{"developer misses pending role", developer, pendingRole, false},
		{"admin sees pending role", admin, pendingRole, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.p
			if got := CanSee(tt.requester, p.Type, &p); got != tt.want {
				t.Errorf("CanSee = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisiblePostsNewestFirst(t *testing.T) {
	posts := []models.Post{
		{ID: "old", Type: models.PostOpenRole, Status: models.StatusVerified, CreatedAt: base},
		{ID: "new", Type: models.PostOpenRole, Status: models.StatusVerified, CreatedAt: base.Add(time.Hour)},
		{ID: "mid-b", Type: models.PostOpenRole, Status: models.StatusVerified, CreatedAt: base.Add(time.Minute)},
		{ID: "mid-a", Type: models.PostOpenRole, Status: models.StatusVerified, CreatedAt: base.Add(time.Minute)},
	}

	got := VisiblePosts(nil, models.PostOpenRole, posts)
	want := []string{"new", "mid-a", "mid-b", "old"}
	if len(got) != len(want) {
		t.Fatalf("got %d posts, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].ID, id)
		}
	}
	if posts[0].ID != "old" {
		t.Error("input slice was reordered")
	}
}

func connectionFixture() ([]models.User, []models.Post) {
	users := []models.User{
		{ID: "sa", Role: models.RoleSuperAdmin},
		{ID: "l1", Role: models.RoleLead},
		{ID: "l2", Role: models.RoleLead, Blocked: true},
		{ID: "f1", Role: models.RoleFounder},
		{ID: "f2", Role: models.RoleFounder},
		{ID: "d1", Role: models.RoleDeveloper},
		{ID: "d2", Role: models.RoleDeveloper},
		{ID: "d3", Role: models.RoleDeveloper, Blocked: true},
		{ID: "d4", Role: models.RoleDeveloper},
		{ID: "n1", Role: models.RoleNone},
	}
	posts := []models.Post{
		post("idea", models.PostIdeaSubmission, models.StatusVerified, "f1", "d1", "d2", "d3"),
		post("pending-idea", models.PostIdeaSubmission, models.StatusPending, "f2", "d1"),
		post("delivery", models.PostDelivery, models.StatusVerified, "f2", "d4"),
	}
	return users, posts
}

func TestConnectedUsers(t *testing.T) {
	users, posts := connectionFixture()

	tests := []struct {
		name      string
		requester *models.User
		want      []string
	}{
		{"super admin reaches every non-blocked user", &users[0], []string{"l1", "f1", "f2", "d1", "d2", "d4", "n1"}},
		{"lead reaches every non-blocked user", &users[1], []string{"sa", "f1", "f2", "d1", "d2", "d4", "n1"}},
		{"founder reaches reviewers and team", &users[3], []string{"sa", "l1", "d1", "d2"}},
		{"developer reaches reviewers founder and teammates", &users[5], []string{"sa", "l1", "f1", "d2"}},
		{"delivery posts create no connection", &users[8], []string{"sa", "l1"}},
		{"founder of unverified idea reaches reviewers only", &users[4], []string{"sa", "l1"}},
		{"none role reaches nobody", &users[9], nil},
		{"anonymous reaches nobody", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConnectedUsers(tt.requester, users, posts)
			gotIDs := userIDs(got)
			if len(got) != len(gotIDs) {
				t.Fatalf("duplicate users in result: %v", got)
			}
			if len(gotIDs) != len(tt.want) {
				t.Fatalf("got %v, want %v", gotIDs, tt.want)
			}
			for _, id := range tt.want {
				if !gotIDs[id] {
					t.Errorf("missing %s in %v", id, gotIDs)
				}
			}
		})
	}
}

func TestBlockedUserVanishesFromEveryonesConnections(t *testing.T) {
	users, posts := connectionFixture()
	for i := range users {
		if users[i].ID == "d2" {
			users[i].Blocked = true
		}
	}

	for i := range users {
		if users[i].ID == "d2" {
			continue
		}
		for _, u := range ConnectedUsers(&users[i], users, posts) {
			if u.ID == "d2" {
				t.Errorf("blocked user visible to %s", users[i].ID)
			}
		}
	}
}
