// Package localstore implements store.Provider on namespaced key-value blobs.
//
// Each collection lives in one namespace (BF_USERS, BF_POSTS, BF_MESSAGES,
// BF_SESSIONS) as a single CBOR-encoded slice. A namespace that has never been
// written is created with its default records on first access. Every
// mutation rewrites the whole collection inside one kv.Store Update, so
// read-modify-write cycles never interleave.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/codec"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/kv"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/store"
)

const (
	NamespaceUsers    = "BF_USERS"
	NamespacePosts    = "BF_POSTS"
	NamespaceMessages = "BF_MESSAGES"
	NamespaceSessions = "BF_SESSIONS"
)

type Options struct {
	// Seed controls whether absent namespaces are populated with demo
	// records. When false they start empty.
	Seed bool
	// SuperAdminEmail is given to the seeded super admin so the master
	// password login finds it.
	SuperAdminEmail string
	// BcryptCost hashes the demo password of seeded accounts.
	BcryptCost int
	Now        func() time.Time
	Logger     *slog.Logger
}

type Store struct {
	kv     kv.Store
	opts   Options
	logger *slog.Logger
}

var _ store.Provider = (*Store)(nil)

func New(kvs kv.Store, opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kvs, opts: opts, logger: logger}
}

// load decodes a namespace, writing its defaults first if it does not exist.
func load[T any](ctx context.Context, s *Store, namespace string, defaults func() ([]T, error)) ([]T, error) {
	raw, ok, err := s.kv.Get(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("localstore: read %s: %w", namespace, err)
	}
	if ok {
		return decode[T](namespace, raw)
	}

	var items []T
	err = s.kv.Update(ctx, namespace, func(current []byte, exists bool) ([]byte, error) {
		if exists {
			decoded, err := decode[T](namespace, current)
			if err != nil {
				return nil, err
			}
			items = decoded
			return current, nil
		}
		seeded, err := defaults()
		if err != nil {
			return nil, err
		}
		items = seeded
		s.logger.Info("local namespace initialized", "namespace", namespace, "records", len(seeded))
		return codec.Marshal(seeded)
	})
	if err != nil {
		return nil, fmt.Errorf("localstore: initialize %s: %w", namespace, err)
	}
	return items, nil
}

// mutate runs fn over the decoded namespace and writes back what it returns.
func mutate[T any](ctx context.Context, s *Store, namespace string, defaults func() ([]T, error), fn func(items []T) ([]T, error)) error {
	return s.kv.Update(ctx, namespace, func(current []byte, exists bool) ([]byte, error) {
		var (
			items []T
			err   error
		)
		if exists {
			items, err = decode[T](namespace, current)
		} else {
			items, err = defaults()
		}
		if err != nil {
			return nil, err
		}
		next, err := fn(items)
		if err != nil {
			return nil, err
		}
		return codec.Marshal(next)
	})
}

func decode[T any](namespace string, raw []byte) ([]T, error) {
	var items []T
	if len(raw) == 0 {
		return items, nil
	}
	if err := codec.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("localstore: decode %s: %w", namespace, err)
	}
	return items, nil
}

func noDefaults[T any]() ([]T, error) {
	return []T{}, nil
}

func (s *Store) userDefaults() ([]models.User, error) {
	if !s.opts.Seed {
		return []models.User{}, nil
	}
	return seedUsers(s.opts.SuperAdminEmail, s.opts.BcryptCost, s.opts.Now())
}

func (s *Store) postDefaults() ([]models.Post, error) {
	if !s.opts.Seed {
		return []models.Post{}, nil
	}
	return seedPosts(s.opts.Now()), nil
}

// ---- users ----

func (s *Store) GetUser(ctx context.Context, uid string) (*models.User, error) {
	users, err := load(ctx, s, NamespaceUsers, s.userDefaults)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == uid {
			return &users[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListUsers(ctx context.Context, filter store.UserFilter) ([]models.User, error) {
	users, err := load(ctx, s, NamespaceUsers, s.userDefaults)
	if err != nil {
		return nil, err
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
	now := s.opts.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	return mutate(ctx, s, NamespaceUsers, s.userDefaults, func(users []models.User) ([]models.User, error) {
		for i := range users {
			if users[i].ID == user.ID || (user.Email != "" && users[i].Email == user.Email) {
				return nil, store.ErrConflict
			}
		}
		return append(users, *user), nil
	})
}

func (s *Store) MutateUser(ctx context.Context, uid string, fn store.UserMutation) (*models.User, error) {
	var updated models.User
	err := mutate(ctx, s, NamespaceUsers, s.userDefaults, func(users []models.User) ([]models.User, error) {
		for i := range users {
			if users[i].ID != uid {
				continue
			}
			candidate := users[i]
			if err := fn(&candidate); err != nil {
				return nil, err
			}
			candidate.ID = uid
			candidate.UpdatedAt = s.opts.Now()
			users[i] = candidate
			updated = candidate
			return users, nil
		}
		return nil, store.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ---- posts ----

func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	posts, err := load(ctx, s, NamespacePosts, s.postDefaults)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].ID == id {
			return &posts[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListPosts(ctx context.Context, filter store.PostFilter) ([]models.Post, error) {
	posts, err := load(ctx, s, NamespacePosts, s.postDefaults)
	if err != nil {
		return nil, err
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
	now := s.opts.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now
	return mutate(ctx, s, NamespacePosts, s.postDefaults, func(posts []models.Post) ([]models.Post, error) {
		for i := range posts {
			if posts[i].ID == post.ID {
				return nil, store.ErrConflict
			}
		}
		return append([]models.Post{*post}, posts...), nil
	})
}

func (s *Store) MutatePost(ctx context.Context, id string, fn store.PostMutation) (*models.Post, error) {
	var updated models.Post
	err := mutate(ctx, s, NamespacePosts, s.postDefaults, func(posts []models.Post) ([]models.Post, error) {
		for i := range posts {
			if posts[i].ID != id {
				continue
			}
			candidate := posts[i]
			if err := fn(&candidate); err != nil {
				return nil, err
			}
			candidate.ID = id
			candidate.UpdatedAt = s.opts.Now()
			posts[i] = candidate
			updated = candidate
			return posts, nil
		}
		return nil, store.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	return mutate(ctx, s, NamespacePosts, s.postDefaults, func(posts []models.Post) ([]models.Post, error) {
		for i := range posts {
			if posts[i].ID == id {
				return append(posts[:i], posts[i+1:]...), nil
			}
		}
		return nil, store.ErrNotFound
	})
}

// ---- messages ----

func (s *Store) CreateMessage(ctx context.Context, msg *models.Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.opts.Now()
	}
	return mutate(ctx, s, NamespaceMessages, noDefaults[models.Message], func(msgs []models.Message) ([]models.Message, error) {
		return append(msgs, *msg), nil
	})
}

func (s *Store) ListMessages(ctx context.Context, filter store.MessageFilter) ([]models.Message, error) {
	msgs, err := load(ctx, s, NamespaceMessages, noDefaults[models.Message])
	if err != nil {
		return nil, err
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
	changed := 0
	err := mutate(ctx, s, NamespaceMessages, noDefaults[models.Message], func(msgs []models.Message) ([]models.Message, error) {
		for i := range msgs {
			if msgs[i].ReceiverID == receiverID && msgs[i].SenderID == senderID && !msgs[i].Read {
				msgs[i].Read = true
				changed++
			}
		}
		return msgs, nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// ---- refresh tokens ----

func (s *Store) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	now := s.opts.Now()
	if token.CreatedAt.IsZero() {
		token.CreatedAt = now
	}
	return mutate(ctx, s, NamespaceSessions, noDefaults[models.RefreshToken], func(tokens []models.RefreshToken) ([]models.RefreshToken, error) {
		kept := tokens[:0]
		for _, t := range tokens {
			if t.Revoked || now.After(t.ExpiresAt) {
				continue
			}
			kept = append(kept, t)
		}
		return append(kept, *token), nil
	})
}

func (s *Store) FindRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	tokens, err := load(ctx, s, NamespaceSessions, noDefaults[models.RefreshToken])
	if err != nil {
		return nil, err
	}
	for i := range tokens {
		if tokens[i].TokenHash == tokenHash {
			return &tokens[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	err := mutate(ctx, s, NamespaceSessions, noDefaults[models.RefreshToken], func(tokens []models.RefreshToken) ([]models.RefreshToken, error) {
		for i := range tokens {
			if tokens[i].TokenHash == tokenHash {
				tokens[i].Revoked = true
				return tokens, nil
			}
		}
		return nil, store.ErrNotFound
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	_, _, err := s.kv.Get(ctx, NamespaceUsers)
	return err
}

func (s *Store) Close() error {
	return s.kv.Close()
}
