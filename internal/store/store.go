// Package store defines the persistence contract shared by the PostgreSQL
// document store and the local fallback store.
//
// Reads return whole collections narrowed by a filter. Both implementations
// fetch everything and evaluate the filter in memory, which keeps the
// database free of composite indexes; a backend may push a filter down to
// the server as long as Match stays the source of truth.
package store

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// UserFilter narrows a user listing. Zero fields match everything.
type UserFilter struct {
	Role           models.Role
	Email          string
	ExcludeBlocked bool
}

func (f UserFilter) Match(u *models.User) bool {
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.Email != "" && u.Email != f.Email {
		return false
	}
	if f.ExcludeBlocked && u.Blocked {
		return false
	}
	return true
}

// PostFilter narrows a post listing. Zero fields match everything.
type PostFilter struct {
	Type     models.PostType
	Status   models.PostStatus
	AuthorID string
}

func (f PostFilter) Match(p *models.Post) bool {
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.AuthorID != "" && p.AuthorID != f.AuthorID {
		return false
	}
	return true
}

// MessageFilter selects messages involving Participant, optionally only
// those exchanged with Counterpart.
type MessageFilter struct {
	Participant string
	Counterpart string
}

func (f MessageFilter) Match(m *models.Message) bool {
	if f.Participant == "" {
		return true
	}
	if f.Counterpart == "" {
		return m.SenderID == f.Participant || m.ReceiverID == f.Participant
	}
	return (m.SenderID == f.Participant && m.ReceiverID == f.Counterpart) ||
		(m.SenderID == f.Counterpart && m.ReceiverID == f.Participant)
}

// UserMutation edits a user in place. Returning an error aborts the write.
type UserMutation func(u *models.User) error

// PostMutation edits a post in place. Returning an error aborts the write.
type PostMutation func(p *models.Post) error

type UserStore interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	// MutateUser applies fn to the stored user and writes the result back
	// atomically with respect to other mutations of the same record.
	MutateUser(ctx context.Context, uid string, fn UserMutation) (*models.User, error)
}

type PostStore interface {
	GetPost(ctx context.Context, id string) (*models.Post, error)
	// ListPosts returns matching posts, newest first.
	ListPosts(ctx context.Context, filter PostFilter) ([]models.Post, error)
	CreatePost(ctx context.Context, post *models.Post) error
	MutatePost(ctx context.Context, id string, fn PostMutation) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
}

type MessageStore interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	// ListMessages returns matching messages, oldest first.
	ListMessages(ctx context.Context, filter MessageFilter) ([]models.Message, error)
	// MarkRead flags every message from sender to receiver as read and
	// returns how many changed.
	MarkRead(ctx context.Context, receiverID, senderID string) (int, error)
}

type TokenStore interface {
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
}

// Provider is the full persistence capability the services depend on.
type Provider interface {
	UserStore
	PostStore
	MessageStore
	TokenStore
	Ping(ctx context.Context) error
	Close() error
}
