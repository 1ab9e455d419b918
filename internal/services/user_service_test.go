package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/store/localstore"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/store"
)

func TestToggleBlock(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()
	admin, _ := env.users.Get(ctx, "super_admin")
	founder, _ := env.users.Get(ctx, "founder_01")

	conns, _ := env.users.Connected(ctx, founder)
	if !userIDs(conns)["dev_01"] {
		t.Fatal("seeded founder should reach the seeded team developer")
	}

	blocked, err := env.users.ToggleBlock(ctx, admin, "dev_01")
	if err != nil {
		t.Fatalf("ToggleBlock: %v", err)
	}
	if !blocked.Blocked {
		t.Fatal("user not blocked")
	}

	_, err = env.auth.SignIn(ctx, &dto.LoginRequest{Email: "vikram@buildforge.io", Password: localstore.DemoPassword})
	if !errors.Is(err, ErrAccountBlocked) {
		t.Errorf("blocked sign-in: got %v", err)
	}

	for _, uid := range []string{"founder_01", "lead_01", "super_admin"} {
		requester, _ := env.users.Get(ctx, uid)
		conns, err := env.users.Connected(ctx, requester)
		if err != nil {
			t.Fatalf("Connected: %v", err)
		}
		if userIDs(conns)["dev_01"] {
			t.Errorf("%s still connected to a blocked user", uid)
		}
	}

	devs, _ := env.users.Developers(ctx)
	if userIDs(devs)["dev_01"] {
		t.Error("blocked developer offered for assignment")
	}

	// Authored content survives a block.
	if _, err := env.store.GetPost(ctx, "post_demo_1"); err != nil {
		t.Errorf("post lost after block: %v", err)
	}

	unblocked, err := env.users.ToggleBlock(ctx, admin, "dev_01")
	if err != nil || unblocked.Blocked {
		t.Fatalf("unblock: %+v %v", unblocked, err)
	}
	if _, err := env.auth.SignIn(ctx, &dto.LoginRequest{Email: "vikram@buildforge.io", Password: localstore.DemoPassword}); err != nil {
		t.Errorf("sign-in after unblock: %v", err)
	}
}

func TestToggleBlockRules(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()
	admin, _ := env.users.Get(ctx, "super_admin")
	lead, _ := env.users.Get(ctx, "lead_01")

	if _, err := env.users.ToggleBlock(ctx, admin, admin.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("self block: got %v", err)
	}
	if _, err := env.users.ToggleBlock(ctx, lead, "super_admin"); !errors.Is(err, ErrForbidden) {
		t.Errorf("blocking super admin: got %v", err)
	}
	if _, err := env.users.ToggleBlock(ctx, admin, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user: got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	name, bio := "Vikram S", "Backend engineer"
	user, err := env.users.UpdateProfile(ctx, "dev_01", &dto.UpdateProfileRequest{
		Name:       &name,
		Bio:        &bio,
		Attributes: map[string]any{"college": "IIT"},
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if user.Name != name || user.Bio != bio {
		t.Errorf("profile %+v", user)
	}
	if user.Attributes["skills"] != "React, Node.js" || user.Attributes["college"] != "IIT" {
		t.Errorf("attributes not merged: %v", user.Attributes)
	}
	if user.Role != models.RoleDeveloper || user.Email != "vikram@buildforge.io" {
		t.Error("protected fields changed")
	}

	empty := " "
	if _, err := env.users.UpdateProfile(ctx, "dev_01", &dto.UpdateProfileRequest{Name: &empty}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty name: got %v", err)
	}
}

func TestGetUnknownUser(t *testing.T) {
	env := newEnv(t, false)
	if _, err := env.users.Get(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("got %v", err)
	}
}

func TestAllListsEveryone(t *testing.T) {
	env := newEnv(t, true)
	all, err := env.users.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	want, _ := env.store.ListUsers(context.Background(), store.UserFilter{})
	if len(all) != len(want) {
		t.Errorf("got %d users, want %d", len(all), len(want))
	}
}
