package gormstore_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/store"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/store/gormstore"
)

// newStore connects to the database named by BUILDFORGE_TEST_DSN and skips
// the test when it is unset. Every record a test creates carries a unique
// prefix and is removed on cleanup.
func newStore(t *testing.T) (*gormstore.Store, *gorm.DB, string) {
	t.Helper()
	dsn := os.Getenv("BUILDFORGE_TEST_DSN")
	if dsn == "" {
		t.Skip("BUILDFORGE_TEST_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	prefix := "t" + uuid.NewString()[:8] + "_"
	t.Cleanup(func() {
		like := prefix + "%"
		db.Where("id LIKE ?", like).Delete(&models.User{})
		db.Where("id LIKE ?", like).Delete(&models.Post{})
		db.Where("id LIKE ?", like).Delete(&models.Message{})
		db.Where("id LIKE ?", like).Delete(&models.RefreshToken{})
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gormstore.New(db), db, prefix
}

func TestUserConflictsAndAbortedMutation(t *testing.T) {
	s, _, prefix := newStore(t)
	ctx := context.Background()

	user := &models.User{ID: prefix + "u1", Name: "Asha", Email: prefix + "asha@example.com", Role: models.RoleFounder}
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	dupEmail := &models.User{ID: prefix + "u2", Name: "Other", Email: user.Email, Role: models.RoleDeveloper}
	if err := s.CreateUser(ctx, dupEmail); !errors.Is(err, store.ErrConflict) {
		t.Errorf("duplicate email: got %v", err)
	}
	dupID := &models.User{ID: user.ID, Name: "Other", Email: prefix + "other@example.com", Role: models.RoleDeveloper}
	if err := s.CreateUser(ctx, dupID); !errors.Is(err, store.ErrConflict) {
		t.Errorf("duplicate id: got %v", err)
	}

	abort := errors.New("abort")
	_, err := s.MutateUser(ctx, user.ID, func(u *models.User) error {
		u.Name = "Changed"
		return abort
	})
	if !errors.Is(err, abort) {
		t.Fatalf("MutateUser: got %v", err)
	}
	got, err := s.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Name != "Asha" {
		t.Errorf("aborted mutation persisted: name %q", got.Name)
	}

	if _, err := s.GetUser(ctx, prefix+"missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing user: got %v", err)
	}
	if _, err := s.MutateUser(ctx, prefix+"missing", func(*models.User) error { return nil }); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("mutate missing user: got %v", err)
	}
}

func TestConcurrentTeamUnionUnderRowLock(t *testing.T) {
	s, _, prefix := newStore(t)
	ctx := context.Background()
	id := prefix + "idea"

	if err := s.CreatePost(ctx, &models.Post{ID: id, AuthorID: prefix + "f", Type: models.PostIdeaSubmission, Status: models.StatusVerified, Content: "x", Team: []string{}}); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	const workers = 12
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(dev string) {
			defer wg.Done()
			_, err := s.MutatePost(ctx, id, func(p *models.Post) error {
				p.Team = append(p.Team, dev)
				return nil
			})
			if err != nil {
				t.Errorf("MutatePost: %v", err)
			}
		}(fmt.Sprintf("dev_%02d", i))
	}
	wg.Wait()

	post, err := s.GetPost(ctx, id)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if len(post.Team) != workers {
		t.Errorf("lost updates: team has %d members, want %d", len(post.Team), workers)
	}
}

func TestPostDeleteAndListing(t *testing.T) {
	s, _, prefix := newStore(t)
	ctx := context.Background()
	author := prefix + "author"
	base := time.Now().Add(-time.Hour)

	for i, title := range []string{"old", "new"} {
		p := &models.Post{
			ID:        prefix + title,
			AuthorID:  author,
			Type:      models.PostOpenRole,
			Status:    models.StatusPending,
			Title:     title,
			Content:   "c",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.CreatePost(ctx, p); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
	}

	posts, err := s.ListPosts(ctx, store.PostFilter{AuthorID: author})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != prefix+"new" {
		t.Errorf("want newest first, got %d posts", len(posts))
	}

	if err := s.DeletePost(ctx, prefix+"old"); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if err := s.DeletePost(ctx, prefix+"old"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: got %v", err)
	}
}

func TestMarkReadAndRefreshTokens(t *testing.T) {
	s, _, prefix := newStore(t)
	ctx := context.Background()
	a, b := prefix+"a", prefix+"b"
	base := time.Now()

	for i, m := range []models.Message{
		{SenderID: a, ReceiverID: b, Text: "hi"},
		{SenderID: b, ReceiverID: a, Text: "hey"},
		{SenderID: a, ReceiverID: b, Text: "again"},
	} {
		m.ID = fmt.Sprintf("%sm%d", prefix, i)
		m.Timestamp = base.Add(time.Duration(i) * time.Second)
		if err := s.CreateMessage(ctx, &m); err != nil {
			t.Fatalf("CreateMessage: %v", err)
		}
	}

	msgs, err := s.ListMessages(ctx, store.MessageFilter{Participant: a, Counterpart: b})
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 3 || msgs[0].Text != "hi" {
		t.Errorf("conversation order: %+v", msgs)
	}
	if n, _ := s.MarkRead(ctx, b, a); n != 2 {
		t.Errorf("first MarkRead = %d, want 2", n)
	}
	if n, _ := s.MarkRead(ctx, b, a); n != 0 {
		t.Errorf("second MarkRead = %d, want 0", n)
	}

	token := &models.RefreshToken{ID: prefix + "rt", UserID: a, TokenHash: prefix + "hash", ExpiresAt: base.Add(time.Hour)}
	if err := s.SaveRefreshToken(ctx, token); err != nil {
		t.Fatalf("SaveRefreshToken: %v", err)
	}
	if err := s.RevokeRefreshToken(ctx, token.TokenHash); err != nil {
		t.Fatalf("RevokeRefreshToken: %v", err)
	}
	found, err := s.FindRefreshToken(ctx, token.TokenHash)
	if err != nil {
		t.Fatalf("FindRefreshToken: %v", err)
	}
	if !found.Revoked {
		t.Error("token not revoked")
	}
	if _, err := s.FindRefreshToken(ctx, prefix+"nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing token: got %v", err)
	}
}
