package services

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/kv"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/store"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/store/localstore"
)

// brokenProvider fails every user lookup and creation.
type brokenProvider struct {
	store.Provider
}

var errDown = errors.New("identity provider unreachable")

func (brokenProvider) ListUsers(context.Context, store.UserFilter) ([]models.User, error) {
	return nil, errDown
}

func (brokenProvider) CreateUser(context.Context, *models.User) error {
	return errDown
}

func parseClaims(t *testing.T, token, secret string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	return claims
}

func TestSignUpAndSignIn(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	resp, err := env.auth.SignUp(ctx, models.RoleFounder, &dto.SignUpRequest{
		Email:      " Priya@Example.com ",
		Password:   "password123",
		Attributes: map[string]any{"startup_name": "Ledgerly"},
	})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if resp.User.Email != "priya@example.com" || resp.User.Name != "priya" {
		t.Errorf("unexpected profile %+v", resp.User)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("missing tokens")
	}
	claims := parseClaims(t, resp.AccessToken, env.cfg.JWTSecret)
	if claims["sub"] != resp.User.ID || claims["role"] != string(models.RoleFounder) {
		t.Errorf("claims %v", claims)
	}

	if _, err := env.auth.SignUp(ctx, models.RoleDeveloper, &dto.SignUpRequest{Email: "priya@example.com", Password: "password123"}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate sign-up: got %v", err)
	}

	signedIn, err := env.auth.SignIn(ctx, &dto.LoginRequest{Email: "PRIYA@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if signedIn.User.ID != resp.User.ID {
		t.Errorf("signed in as %s", signedIn.User.ID)
	}
	if _, err := env.auth.SignIn(ctx, &dto.LoginRequest{Email: "priya@example.com", Password: "wrong-pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", err)
	}
}

func TestSignUpValidation(t *testing.T) {
	env := newEnv(t, false)
	tests := []struct {
		name string
		role models.Role
		req  dto.SignUpRequest
		want error
	}{
		{"lead self-register", models.RoleLead, dto.SignUpRequest{Email: "a@example.com", Password: "password123"}, ErrForbidden},
		{"bad email", models.RoleFounder, dto.SignUpRequest{Email: "not-an-email", Password: "password123"}, ErrInvalidInput},
		{"short password", models.RoleFounder, dto.SignUpRequest{Email: "a@example.com", Password: "short"}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.auth.SignUp(context.Background(), tt.role, &tt.req); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()
	resp, err := env.auth.SignUp(ctx, models.RoleDeveloper, &dto.SignUpRequest{Email: "dev@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	next, err := env.auth.Refresh(ctx, &dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if next.RefreshToken == resp.RefreshToken {
		t.Error("refresh token was not rotated")
	}
	if _, err := env.auth.Refresh(ctx, &dto.RefreshRequest{RefreshToken: resp.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("reusing a rotated token: got %v", err)
	}

	if err := env.auth.SignOut(ctx, next.User.ID, &dto.LogoutRequest{RefreshToken: next.RefreshToken}); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, err := env.auth.Refresh(ctx, &dto.RefreshRequest{RefreshToken: next.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("refresh after sign-out: got %v", err)
	}
}

func TestOnAuthChange(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	var events []AuthEvent
	unsubscribe := env.auth.OnAuthChange(func(e AuthEvent) { events = append(events, e) })

	resp, _ := env.auth.SignUp(ctx, models.RoleFounder, &dto.SignUpRequest{Email: "f@example.com", Password: "password123"})
	env.auth.SignOut(ctx, resp.User.ID, &dto.LogoutRequest{})
	unsubscribe()
	env.auth.SignIn(ctx, &dto.LoginRequest{Email: "f@example.com", Password: "password123"})

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].User == nil || events[0].UserID != resp.User.ID {
		t.Errorf("sign-in event %+v", events[0])
	}
	if events[1].User != nil {
		t.Errorf("sign-out event carries a user: %+v", events[1])
	}
}

func TestLoginLead(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	if _, err := env.auth.LoginLead(ctx, "lead@example.com", "wrong"); !errors.Is(err, ErrInvalidAccessKey) {
		t.Errorf("wrong key: got %v", err)
	}

	first, err := env.auth.LoginLead(ctx, "lead@example.com", "lead-key")
	if err != nil {
		t.Fatalf("LoginLead: %v", err)
	}
	if first.User.Role != models.RoleLead {
		t.Errorf("role %s", first.User.Role)
	}
	second, err := env.auth.LoginLead(ctx, "LEAD@example.com", "lead-key")
	if err != nil {
		t.Fatalf("second LoginLead: %v", err)
	}
	if second.User.ID != first.User.ID {
		t.Error("lead account provisioned twice")
	}

	env.signUp(t, models.RoleFounder, "founder")
	if _, err := env.auth.LoginLead(ctx, "founder@example.com", "lead-key"); !errors.Is(err, ErrForbidden) {
		t.Errorf("founder via lead login: got %v", err)
	}
}

func TestLoginSuperAdmin(t *testing.T) {
	t.Run("seeded account", func(t *testing.T) {
		env := newEnv(t, true)
		resp, err := env.auth.LoginSuperAdmin(context.Background(), "master-pass")
		if err != nil {
			t.Fatalf("LoginSuperAdmin: %v", err)
		}
		if resp.User.ID != "super_admin" || resp.Emergency {
			t.Errorf("unexpected session %+v", resp.User)
		}
	})

	t.Run("provisioned on first use", func(t *testing.T) {
		env := newEnv(t, false)
		ctx := context.Background()
		first, err := env.auth.LoginSuperAdmin(ctx, "Master-Pass")
		if err != nil {
			t.Fatalf("LoginSuperAdmin: %v", err)
		}
		if first.User.Role != models.RoleSuperAdmin || first.RefreshToken == "" {
			t.Errorf("unexpected session %+v", first)
		}
		second, _ := env.auth.LoginSuperAdmin(ctx, "Master-Pass")
		if second.User.ID != first.User.ID {
			t.Error("super admin provisioned twice")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		env := newEnv(t, false)
		if _, err := env.auth.LoginSuperAdmin(context.Background(), "guess"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("got %v", err)
		}
	})
}

func TestSuperAdminEmergencyFallback(t *testing.T) {
	cfg := testConfig()
	env := newEnvWith(cfg, brokenProvider{Provider: localstore.New(kv.NewMemory(), localstore.Options{})})

	resp, err := env.auth.LoginSuperAdmin(context.Background(), "master-pass")
	if err != nil {
		t.Fatalf("LoginSuperAdmin: %v", err)
	}
	if !resp.Emergency || resp.RefreshToken != "" {
		t.Errorf("expected access-only emergency session, got %+v", resp)
	}
	if resp.User.ID != EmergencyUserID || resp.User.Role != models.RoleSuperAdmin {
		t.Errorf("unexpected profile %+v", resp.User)
	}
	claims := parseClaims(t, resp.AccessToken, cfg.JWTSecret)
	if claims["emergency"] != true {
		t.Errorf("emergency claim missing: %v", claims)
	}

	cfg.SuperAdminEmergencyFallback = false
	if _, err := env.auth.LoginSuperAdmin(context.Background(), "master-pass"); !errors.Is(err, ErrUpstream) || !errors.Is(err, errDown) {
		t.Errorf("fallback disabled: got %v", err)
	}
}
