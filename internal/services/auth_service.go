package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// EmergencyUserID identifies the super-admin profile issued when the master
// password is correct but no super-admin record can be provisioned.
const EmergencyUserID = "root_override_v4"

// EmergencyProfile is the fixed profile behind emergency sessions.
func EmergencyProfile(email string) *models.User {
	return &models.User{
		ID:    EmergencyUserID,
		Name:  "BuildForge Root (Systems)",
		Email: email,
		Role:  models.RoleSuperAdmin,
	}
}

// AuthEvent is delivered to OnAuthChange listeners. User is nil on sign-out.
type AuthEvent struct {
	UserID string
	User   *models.User
}

type AuthService struct {
	store store.Provider
	cfg   *config.Config
	now   func() time.Time

	mu        sync.Mutex
	listeners map[int]func(AuthEvent)
	nextID    int
}

func NewAuthService(provider store.Provider, cfg *config.Config) *AuthService {
	return &AuthService{
		store:     provider,
		cfg:       cfg,
		now:       time.Now,
		listeners: make(map[int]func(AuthEvent)),
	}
}

// OnAuthChange registers fn for sign-in and sign-out events and returns a
// function that removes it.
func (s *AuthService) OnAuthChange(fn func(AuthEvent)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *AuthService) notify(event AuthEvent) {
	s.mu.Lock()
	fns := make([]func(AuthEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}

// SignUp registers a founder or developer account.
func (s *AuthService) SignUp(ctx context.Context, role models.Role, req *dto.SignUpRequest) (*dto.AuthResponse, error) {
	if role != models.RoleFounder && role != models.RoleDeveloper {
		return nil, fmt.Errorf("%w: cannot self-register as %s", ErrForbidden, role)
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	existing, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost())
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		Role:         role,
		Attributes:   req.Attributes,
		PasswordHash: string(hash),
		AuthProvider: "email",
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, upstream("create user", err, nil)
	}

	slog.Info("user registered", "action", "auth_signup", "user_id", user.ID, "role", role)
	return s.startSession(ctx, user)
}

// SignIn checks email and password. Blocked accounts get ErrAccountBlocked
// once the password has been verified.
func (s *AuthService) SignIn(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Blocked {
		slog.Warn("blocked user sign-in refused", "action", "auth_signin", "user_id", user.ID)
		return nil, ErrAccountBlocked
	}
	return s.startSession(ctx, user)
}

// SignOut revokes the refresh token and notifies listeners.
func (s *AuthService) SignOut(ctx context.Context, uid string, req *dto.LogoutRequest) error {
	if req.RefreshToken != "" {
		if err := s.store.RevokeRefreshToken(ctx, hashToken(req.RefreshToken)); err != nil {
			return upstream("revoke refresh token", err, nil)
		}
	}
	s.notify(AuthEvent{UserID: uid})
	return nil
}

// Refresh rotates a refresh token into a new token pair.
func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	tokenHash := hashToken(req.RefreshToken)

	stored, err := s.store.FindRefreshToken(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, upstream("find refresh token", err, nil)
	}
	if stored.Revoked {
		return nil, ErrInvalidToken
	}
	if err := s.store.RevokeRefreshToken(ctx, tokenHash); err != nil {
		return nil, upstream("revoke refresh token", err, nil)
	}
	if s.now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	user, err := s.store.GetUser(ctx, stored.UserID)
	if err != nil {
		return nil, upstream("get user", err, ErrUserNotFound)
	}
	if user.Blocked {
		return nil, ErrAccountBlocked
	}
	return s.generateTokenPair(ctx, user)
}

// LoginSuperAdmin signs in with the master password. The super-admin record
// is provisioned on first use. If provisioning fails and the emergency
// fallback is enabled, a session for EmergencyProfile is issued instead.
func (s *AuthService) LoginSuperAdmin(ctx context.Context, password string) (*dto.AuthResponse, error) {
	if s.cfg.MasterPassword == "" || !equalFold(password, s.cfg.MasterPassword) {
		return nil, ErrInvalidCredentials
	}
	email := strings.ToLower(strings.TrimSpace(s.cfg.SuperAdminEmail))

	user, err := s.findByEmail(ctx, email)
	if err == nil && user != nil {
		if user.Role != models.RoleSuperAdmin {
			return nil, fmt.Errorf("%w: %s is not a super admin account", ErrForbidden, email)
		}
		if user.Blocked {
			return nil, ErrAccountBlocked
		}
		return s.startSession(ctx, user)
	}

	if err == nil {
		user = &models.User{
			ID:           uuid.NewString(),
			Name:         "Super Admin",
			Email:        email,
			Role:         models.RoleSuperAdmin,
			AuthProvider: "master",
			CreatedAt:    s.now(),
		}
		err = s.store.CreateUser(ctx, user)
		if err == nil {
			slog.Info("super admin provisioned", "action", "auth_super_admin", "user_id", user.ID)
			return s.startSession(ctx, user)
		}
	}

	if !s.cfg.SuperAdminEmergencyFallback {
		return nil, upstream("provision super admin", err, nil)
	}

	slog.Warn("issuing emergency super admin session",
		"action", "auth_super_admin_emergency",
		"user_id", EmergencyUserID,
		"error", err,
	)
	profile := EmergencyProfile(email)
	accessToken, err := s.generateAccessToken(profile, true)
	if err != nil {
		return nil, err
	}
	s.notify(AuthEvent{UserID: profile.ID, User: profile})
	return &dto.AuthResponse{AccessToken: accessToken, User: profile, Emergency: true}, nil
}

// LoginLead signs in a lead with the shared access key, creating the lead
// account on first valid use.
func (s *AuthService) LoginLead(ctx context.Context, rawEmail, accessKey string) (*dto.AuthResponse, error) {
	if s.cfg.LeadAccessKey == "" || subtle.ConstantTimeCompare([]byte(accessKey), []byte(s.cfg.LeadAccessKey)) != 1 {
		return nil, ErrInvalidAccessKey
	}
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return nil, err
	}

	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if user.Role != models.RoleLead {
			return nil, fmt.Errorf("%w: %s is registered as %s", ErrForbidden, email, user.Role)
		}
		if user.Blocked {
			return nil, ErrAccountBlocked
		}
		return s.startSession(ctx, user)
	}

	user = &models.User{
		ID:           uuid.NewString(),
		Name:         strings.Split(email, "@")[0],
		Email:        email,
		Role:         models.RoleLead,
		AuthProvider: "access_key",
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, upstream("create lead", err, nil)
	}

	slog.Info("lead provisioned", "action", "auth_lead", "user_id", user.ID)
	return s.startSession(ctx, user)
}

func (s *AuthService) findByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := s.store.ListUsers(ctx, store.UserFilter{Email: email})
	if err != nil {
		return nil, upstream("find user", err, nil)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (s *AuthService) startSession(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	resp, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	s.notify(AuthEvent{UserID: user.ID, User: user})
	return resp, nil
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user, false)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User, emergency bool) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}
	if emergency {
		claims["emergency"] = true
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)
	record := models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: s.now().Add(s.cfg.JWTRefreshExpiry),
		CreatedAt: s.now(),
	}
	if err := s.store.SaveRefreshToken(ctx, &record); err != nil {
		return "", upstream("store refresh token", err, nil)
	}

	return rawToken, nil
}

func (s *AuthService) bcryptCost() int {
	if s.cfg.BcryptCost < bcrypt.MinCost || s.cfg.BcryptCost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return s.cfg.BcryptCost
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	return email, nil
}

// equalFold compares case-insensitively in constant time.
func equalFold(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(a)), []byte(strings.ToLower(b))) == 1
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
