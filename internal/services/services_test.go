package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/kv"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/store"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/store/localstore"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	cfg      *config.Config
	store    store.Provider
	auth     *AuthService
	users    *UserService
	posts    *PostService
	messages *MessageService
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                   "test-secret",
		JWTAccessExpiry:             15 * time.Minute,
		JWTRefreshExpiry:            time.Hour,
		BcryptCost:                  bcrypt.MinCost,
		MasterPassword:              "Master-Pass",
		SuperAdminEmail:             "root@example.com",
		SuperAdminEmergencyFallback: true,
		LeadAccessKey:               "lead-key",
	}
}

func newEnv(t *testing.T, seed bool) *testEnv {
	t.Helper()
	cfg := testConfig()
	provider := localstore.New(kv.NewMemory(), localstore.Options{
		Seed:            seed,
		SuperAdminEmail: cfg.SuperAdminEmail,
		BcryptCost:      cfg.BcryptCost,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return newEnvWith(cfg, provider)
}

func newEnvWith(cfg *config.Config, provider store.Provider) *testEnv {
	users := NewUserService(provider)
	return &testEnv{
		cfg:      cfg,
		store:    provider,
		auth:     NewAuthService(provider, cfg),
		users:    users,
		posts:    NewPostService(provider, NewContentFilter()),
		messages: NewMessageService(provider, users),
	}
}

func (e *testEnv) signUp(t *testing.T, role models.Role, name string) *models.User {
	t.Helper()
	resp, err := e.auth.SignUp(context.Background(), role, &dto.SignUpRequest{
		Name:     name,
		Email:    name + "@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("SignUp %s: %v", name, err)
	}
	return resp.User
}

func (e *testEnv) lead(t *testing.T, name string) *models.User {
	t.Helper()
	resp, err := e.auth.LoginLead(context.Background(), name+"@example.com", e.cfg.LeadAccessKey)
	if err != nil {
		t.Fatalf("LoginLead %s: %v", name, err)
	}
	return resp.User
}

func (e *testEnv) idea(t *testing.T, founder *models.User, title string, stack []string) *models.Post {
	t.Helper()
	post, err := e.posts.Create(context.Background(), founder, &dto.CreatePostRequest{
		Type:      models.PostIdeaSubmission,
		Title:     title,
		Content:   "A project worth building.",
		TechStack: stack,
	})
	if err != nil {
		t.Fatalf("Create idea: %v", err)
	}
	return post
}

func ids[T any](items []T, id func(T) string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, item := range items {
		out[id(item)] = true
	}
	return out
}

func userIDs(users []models.User) map[string]bool {
	return ids(users, func(u models.User) string { return u.ID })
}

func postIDs(posts []models.Post) map[string]bool {
	return ids(posts, func(p models.Post) string { return p.ID })
}

// stepClock returns a clock that advances one second per call.
func stepClock(start time.Time) func() time.Time {
	tick := start
	return func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
}
