package services

import (
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/store"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("assistant session not found")

	ErrAccountBlocked     = errors.New("account is blocked")
	ErrInvalidAccessKey   = errors.New("invalid access key")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrForbidden          = errors.New("not allowed")
	ErrNotConnected       = errors.New("recipient is not in your connections")

	ErrEmailTaken        = errors.New("email already registered")
	ErrInvalidTransition = errors.New("post is not pending review")
	ErrNotIdeaSubmission = errors.New("post is not an idea submission")
	ErrNotDeveloper      = errors.New("user is not a developer")
	ErrContentRejected   = errors.New("content rejected")
	ErrInvalidInput      = errors.New("invalid input")

	ErrUpstream = errors.New("upstream provider failure")
)

// upstream wraps a persistence failure, keeping not-found distinct.
func upstream(op string, err error, notFound error) error {
	if errors.Is(err, store.ErrNotFound) && notFound != nil {
		return notFound
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}
