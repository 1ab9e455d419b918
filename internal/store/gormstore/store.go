// Package gormstore implements store.Provider on PostgreSQL through GORM.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

var _ store.Provider = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}

// ---- users ----

func (s *Store) GetUser(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", uid).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// ListUsers loads the whole users table and filters in memory.
func (s *Store) ListUsers(ctx context.Context, filter store.UserFilter) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	result := make([]models.User, 0, len(users))
	for i := range users {
		if filter.Match(&users[i]) {
			result = append(result, users[i])
		}
	}
	return result, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		q := tx.Model(&models.User{}).Where("id = ?", user.ID)
		if user.Email != "" {
			q = q.Or("email = ?", user.Email)
		}
		if err := q.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return store.ErrConflict
		}
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return store.ErrConflict
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

// MutateUser locks the row for the duration of fn.
func (s *Store) MutateUser(ctx context.Context, uid string, fn store.UserMutation) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", uid).Error; err != nil {
			return notFound(err)
		}
		if err := fn(&user); err != nil {
			return err
		}
		user.ID = uid
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ---- posts ----

func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

// ListPosts loads the whole posts table and filters in memory.
func (s *Store) ListPosts(ctx context.Context, filter store.PostFilter) ([]models.Post, error) {
	var posts []models.Post
	if err := s.db.WithContext(ctx).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	result := make([]models.Post, 0, len(posts))
	for i := range posts {
		if filter.Match(&posts[i]) {
			result = append(result, posts[i])
		}
	}
	store.SortPostsNewestFirst(result)
	return result, nil
}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return store.ErrConflict
		}
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// MutatePost locks the row for the duration of fn, so concurrent team
// assignments apply one after another instead of overwriting each other.
func (s *Store) MutatePost(ctx context.Context, id string, fn store.PostMutation) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if err := fn(&post); err != nil {
			return err
		}
		post.ID = id
		return tx.Save(&post).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ---- messages ----

func (s *Store) CreateMessage(ctx context.Context, msg *models.Message) error {
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (s *Store) ListMessages(ctx context.Context, filter store.MessageFilter) ([]models.Message, error) {
	var msgs []models.Message
	if err := s.db.WithContext(ctx).Order("timestamp ASC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	result := make([]models.Message, 0, len(msgs))
	for i := range msgs {
		if filter.Match(&msgs[i]) {
			result = append(result, msgs[i])
		}
	}
	store.SortMessagesOldestFirst(result)
	return result, nil
}

func (s *Store) MarkRead(ctx context.Context, receiverID, senderID string) (int, error) {
	result := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND read = false", receiverID, senderID).
		Update("read", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

// ---- refresh tokens ----

func (s *Store) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if err := s.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (s *Store) FindRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := s.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&token).Error; err != nil {
		return nil, notFound(err)
	}
	return &token, nil
}

func (s *Store) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
