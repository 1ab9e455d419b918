package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/policy"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/store"
)

type UserService struct {
	store store.Provider
}

func NewUserService(provider store.Provider) *UserService {
	return &UserService{store: provider}
}

func (s *UserService) Get(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return nil, upstream("get user", err, ErrUserNotFound)
	}
	return user, nil
}

// Connected returns the users requester may message.
func (s *UserService) Connected(ctx context.Context, requester *models.User) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx, store.UserFilter{})
	if err != nil {
		return nil, upstream("list users", err, nil)
	}
	posts, err := s.store.ListPosts(ctx, store.PostFilter{Type: models.PostIdeaSubmission, Status: models.StatusVerified})
	if err != nil {
		return nil, upstream("list posts", err, nil)
	}
	return policy.ConnectedUsers(requester, users, posts), nil
}

// IsConnected reports whether requester may message uid.
func (s *UserService) IsConnected(ctx context.Context, requester *models.User, uid string) (bool, error) {
	connected, err := s.Connected(ctx, requester)
	if err != nil {
		return false, err
	}
	for _, u := range connected {
		if u.ID == uid {
			return true, nil
		}
	}
	return false, nil
}

// Developers lists developers available for assignment.
func (s *UserService) Developers(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx, store.UserFilter{Role: models.RoleDeveloper, ExcludeBlocked: true})
	if err != nil {
		return nil, upstream("list developers", err, nil)
	}
	return users, nil
}

func (s *UserService) All(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx, store.UserFilter{})
	if err != nil {
		return nil, upstream("list users", err, nil)
	}
	return users, nil
}

// ToggleBlock flips the blocked flag of uid and returns the profile as the
// caller computed it. The returned value is not re-read from the store, so
// a concurrent edit landing afterwards is not reflected in it.
func (s *UserService) ToggleBlock(ctx context.Context, admin *models.User, uid string) (*models.User, error) {
	if admin.ID == uid {
		return nil, fmt.Errorf("%w: cannot block yourself", ErrForbidden)
	}

	var computed models.User
	_, err := s.store.MutateUser(ctx, uid, func(u *models.User) error {
		if u.Role == models.RoleSuperAdmin {
			return fmt.Errorf("%w: super admins cannot be blocked", ErrForbidden)
		}
		u.Blocked = !u.Blocked
		computed = *u
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			return nil, err
		}
		return nil, upstream("toggle block", err, ErrUserNotFound)
	}

	slog.Info("user block toggled", "action", "user_block", "user_id", admin.ID, "target", uid, "blocked", computed.Blocked)
	return &computed, nil
}

// UpdateProfile edits the caller's own profile. Role, email and blocked
// state are not reachable through this path.
func (s *UserService) UpdateProfile(ctx context.Context, uid string, req *dto.UpdateProfileRequest) (*models.User, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	user, err := s.store.MutateUser(ctx, uid, func(u *models.User) error {
		if req.Name != nil {
			u.Name = strings.TrimSpace(*req.Name)
		}
		if req.Phone != nil {
			u.Phone = strings.TrimSpace(*req.Phone)
		}
		if req.Avatar != nil {
			u.Avatar = *req.Avatar
		}
		if req.Bio != nil {
			u.Bio = *req.Bio
		}
		if req.Attributes != nil {
			if u.Attributes == nil {
				u.Attributes = map[string]any{}
			}
			for k, v := range req.Attributes {
				u.Attributes[k] = v
			}
		}
		return nil
	})
	if err != nil {
		return nil, upstream("update profile", err, ErrUserNotFound)
	}

	slog.Info("profile updated", "action", "user_update", "user_id", uid)
	return user, nil
}
