package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/policy"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/store"
	"github.com/google/uuid"
)

// DefaultMVPStack is used when a verified idea declares no tech stack.
var DefaultMVPStack = []string{"React", "Node.js", "Firebase"}

// errUnchanged aborts a mutation that would not modify the record.
var errUnchanged = errors.New("unchanged")

type PostService struct {
	store  store.Provider
	filter *ContentFilter
	now    func() time.Time
}

func NewPostService(provider store.Provider, filter *ContentFilter) *PostService {
	return &PostService{store: provider, filter: filter, now: time.Now}
}

// List returns the feed for one category as requester is allowed to see it.
// A nil requester is anonymous.
func (s *PostService) List(ctx context.Context, requester *models.User, category models.PostType) ([]models.Post, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown post type %q", ErrInvalidInput, category)
	}
	posts, err := s.store.ListPosts(ctx, store.PostFilter{})
	if err != nil {
		return nil, upstream("list posts", err, nil)
	}
	return policy.VisiblePosts(requester, category, posts), nil
}

// Get returns one post if requester may see it under its own type. Hidden
// posts are reported as missing.
func (s *PostService) Get(ctx context.Context, requester *models.User, postID string) (*models.Post, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, upstream("get post", err, ErrPostNotFound)
	}
	if !visibleTo(requester, post) {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// Create stores a new post in PENDING state. Only founders submit ideas.
func (s *PostService) Create(ctx context.Context, author *models.User, req *dto.CreatePostRequest) (*models.Post, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown post type %q", ErrInvalidInput, req.Type)
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if author.Role == models.RoleNone {
		return nil, ErrForbidden
	}
	if req.Type == models.PostIdeaSubmission && author.Role != models.RoleFounder {
		return nil, fmt.Errorf("%w: only founders can submit ideas", ErrForbidden)
	}
	if err := s.filter.Screen(req.Title + "\n" + content); err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:          uuid.NewString(),
		AuthorID:    author.ID,
		AuthorName:  author.Name,
		AuthorRole:  author.Role,
		Type:        req.Type,
		Status:      models.StatusPending,
		Title:       strings.TrimSpace(req.Title),
		Content:     content,
		Image:       req.Image,
		Company:     req.Company,
		JobLink:     req.JobLink,
		TechStack:   cleanStack(req.TechStack),
		SchemaImage: req.SchemaImage,
		Comments:    []models.Comment{},
		Applicants:  []string{},
		Team:        []string{},
		CreatedAt:   s.now(),
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, upstream("create post", err, nil)
	}

	slog.Info("post created", "action", "post_create", "post_id", post.ID, "user_id", author.ID, "type", post.Type)
	return post, nil
}

// Verify approves a pending post. Verified ideas get an MVP record.
func (s *PostService) Verify(ctx context.Context, reviewerID, postID string) (*models.Post, error) {
	post, err := s.store.MutatePost(ctx, postID, func(p *models.Post) error {
		if p.Status != models.StatusPending {
			return ErrInvalidTransition
		}
		p.Status = models.StatusVerified
		if p.Type == models.PostIdeaSubmission {
			p.MVP = synthesizeMVP(p)
		}
		return nil
	})
	if err != nil {
		return nil, postError("verify post", err)
	}

	slog.Info("post verified", "action", "post_verify", "post_id", postID, "user_id", reviewerID)
	return post, nil
}

// Reject closes a pending post. The post is kept so its author still sees it.
func (s *PostService) Reject(ctx context.Context, reviewerID, postID string) (*models.Post, error) {
	post, err := s.store.MutatePost(ctx, postID, func(p *models.Post) error {
		if p.Status != models.StatusPending {
			return ErrInvalidTransition
		}
		p.Status = models.StatusRejected
		return nil
	})
	if err != nil {
		return nil, postError("reject post", err)
	}

	slog.Info("post rejected", "action", "post_reject", "post_id", postID, "user_id", reviewerID)
	return post, nil
}

// Apply records developer interest in an idea. Applying twice is a no-op
// reported through the changed flag. The team is never touched.
func (s *PostService) Apply(ctx context.Context, postID string, developer *models.User) (*models.Post, bool, error) {
	if developer.Role != models.RoleDeveloper {
		return nil, false, ErrNotDeveloper
	}
	return s.mutateMembership(ctx, "apply to project", postID, func(p *models.Post) bool {
		if contains(p.Applicants, developer.ID) {
			return false
		}
		p.Applicants = append(p.Applicants, developer.ID)
		return true
	}, slog.String("action", "post_apply"), slog.String("user_id", developer.ID))
}

// Assign adds one developer to the team.
func (s *PostService) Assign(ctx context.Context, reviewerID, postID, developerID string) (*models.Post, bool, error) {
	return s.AssignTeam(ctx, reviewerID, postID, []string{developerID})
}

// AssignTeam merges developerIDs into the team. Existing members are kept.
func (s *PostService) AssignTeam(ctx context.Context, reviewerID, postID string, developerIDs []string) (*models.Post, bool, error) {
	if len(developerIDs) == 0 {
		return nil, false, fmt.Errorf("%w: no developers given", ErrInvalidInput)
	}
	for _, id := range developerIDs {
		if err := s.requireDeveloper(ctx, id); err != nil {
			return nil, false, err
		}
	}
	return s.mutateMembership(ctx, "assign team", postID, func(p *models.Post) bool {
		changed := false
		for _, id := range developerIDs {
			if !contains(p.Team, id) {
				p.Team = append(p.Team, id)
				changed = true
			}
		}
		return changed
	}, slog.String("action", "post_assign"), slog.String("user_id", reviewerID), slog.Any("developers", developerIDs))
}

// Unassign removes one developer from the team. Applicants are untouched.
func (s *PostService) Unassign(ctx context.Context, reviewerID, postID, developerID string) (*models.Post, bool, error) {
	return s.mutateMembership(ctx, "unassign developer", postID, func(p *models.Post) bool {
		if !contains(p.Team, developerID) {
			return false
		}
		p.Team = remove(p.Team, developerID)
		return true
	}, slog.String("action", "post_unassign"), slog.String("user_id", reviewerID), slog.String("developer", developerID))
}

// mutateMembership runs edit on an idea submission, skipping the write when
// edit reports no change.
func (s *PostService) mutateMembership(ctx context.Context, op, postID string, edit func(p *models.Post) bool, attrs ...slog.Attr) (*models.Post, bool, error) {
	var snapshot models.Post
	post, err := s.store.MutatePost(ctx, postID, func(p *models.Post) error {
		if p.Type != models.PostIdeaSubmission {
			return ErrNotIdeaSubmission
		}
		if !edit(p) {
			snapshot = *p
			return errUnchanged
		}
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return &snapshot, false, nil
	}
	if err != nil {
		return nil, false, postError(op, err)
	}

	args := []any{"post_id", postID}
	for _, a := range attrs {
		args = append(args, a)
	}
	slog.Info(op, args...)
	return post, true, nil
}

func (s *PostService) requireDeveloper(ctx context.Context, uid string) error {
	user, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return upstream("load developer", err, ErrUserNotFound)
	}
	if user.Role != models.RoleDeveloper {
		return fmt.Errorf("%w: %s", ErrNotDeveloper, uid)
	}
	return nil
}

// Like increments the like counter of a post requester can see and returns
// the new count. It never decrements.
func (s *PostService) Like(ctx context.Context, requester *models.User, postID string) (int, error) {
	post, err := s.store.MutatePost(ctx, postID, func(p *models.Post) error {
		if !visibleTo(requester, p) {
			return ErrPostNotFound
		}
		p.Likes++
		return nil
	})
	if err != nil {
		return 0, postError("like post", err)
	}
	return post.Likes, nil
}

func (s *PostService) Comment(ctx context.Context, requester *models.User, postID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrInvalidInput)
	}
	if err := s.filter.Screen(text); err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        "c_" + uuid.NewString(),
		UserID:    requester.ID,
		UserName:  requester.Name,
		Text:      text,
		Timestamp: s.now(),
	}
	_, err := s.store.MutatePost(ctx, postID, func(p *models.Post) error {
		if !visibleTo(requester, p) {
			return ErrPostNotFound
		}
		p.Comments = append(p.Comments, comment)
		return nil
	})
	if err != nil {
		return nil, postError("add comment", err)
	}

	slog.Info("comment added", "action", "post_comment", "post_id", postID, "user_id", requester.ID)
	return &comment, nil
}

// Delete removes a post. Only its author or a reviewer may do so.
func (s *PostService) Delete(ctx context.Context, requester *models.User, postID string) error {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return upstream("get post", err, ErrPostNotFound)
	}
	if post.AuthorID != requester.ID && !requester.Role.IsReviewer() {
		return ErrForbidden
	}
	if err := s.store.DeletePost(ctx, postID); err != nil {
		return upstream("delete post", err, ErrPostNotFound)
	}

	slog.Info("post deleted", "action", "post_delete", "post_id", postID, "user_id", requester.ID)
	return nil
}

// Pending lists every post awaiting review, newest first.
func (s *PostService) Pending(ctx context.Context) ([]models.Post, error) {
	posts, err := s.store.ListPosts(ctx, store.PostFilter{Status: models.StatusPending})
	if err != nil {
		return nil, upstream("list pending posts", err, nil)
	}
	return posts, nil
}

// UserPosts lists posts authored by uid that requester may see, each judged
// under its own type.
func (s *PostService) UserPosts(ctx context.Context, requester *models.User, uid string) ([]models.Post, error) {
	posts, err := s.store.ListPosts(ctx, store.PostFilter{AuthorID: uid})
	if err != nil {
		return nil, upstream("list user posts", err, nil)
	}
	visible := make([]models.Post, 0, len(posts))
	for i := range posts {
		if visibleTo(requester, &posts[i]) {
			visible = append(visible, posts[i])
		}
	}
	return visible, nil
}

// UpdateDeliveryLinks lets a team member publish the repository and demo
// links of an idea.
func (s *PostService) UpdateDeliveryLinks(ctx context.Context, requester *models.User, postID string, req *dto.DeliveryLinksRequest) (*models.Post, error) {
	post, err := s.store.MutatePost(ctx, postID, func(p *models.Post) error {
		if p.Type != models.PostIdeaSubmission {
			return ErrNotIdeaSubmission
		}
		if !p.HasTeamMember(requester.ID) {
			return ErrForbidden
		}
		p.GithubURL = strings.TrimSpace(req.GithubURL)
		p.LiveDemoURL = strings.TrimSpace(req.LiveDemoURL)
		return nil
	})
	if err != nil {
		return nil, postError("update delivery links", err)
	}

	slog.Info("delivery links updated", "action", "post_delivery", "post_id", postID, "user_id", requester.ID)
	return post, nil
}

// visibleTo applies the feed rule for the post's own type. Authors always
// see their own posts.
func visibleTo(requester *models.User, p *models.Post) bool {
	if requester != nil && requester.ID == p.AuthorID {
		return true
	}
	return policy.CanSee(requester, p.Type, p)
}

func synthesizeMVP(p *models.Post) *models.MVP {
	stack := append([]string(nil), p.TechStack...)
	rationale := "Tech stack specified by the founder"
	if len(stack) == 0 {
		stack = append([]string(nil), DefaultMVPStack...)
		rationale = "Default web stack; the founder did not declare one"
	}
	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = "this project"
	}
	return &models.MVP{
		Description:  "MVP for " + title,
		TechStack:    stack,
		DocLink:      "#",
		Status:       models.MVPStatusReady,
		Architecture: "Modern Web Application",
		Rationale:    rationale,
		SchemaImage:  p.SchemaImage,
	}
}

// postError maps a MutatePost failure onto the service error set.
func postError(op string, err error) error {
	for _, domain := range []error{ErrPostNotFound, ErrInvalidTransition, ErrNotIdeaSubmission, ErrForbidden, ErrNotDeveloper} {
		if errors.Is(err, domain) {
			return err
		}
	}
	return upstream(op, err, ErrPostNotFound)
}

func cleanStack(stack []string) []string {
	out := make([]string, 0, len(stack))
	for _, s := range stack {
		if s = strings.TrimSpace(s); s != "" && !contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}

func remove(list []string, val string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item != val {
			out = append(out, item)
		}
	}
	return out
}
