package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bokaap-reservations/models"
	"bokaap-reservations/store"
)

// SetupMode controls the unauthenticated admin bootstrap endpoint.
type SetupMode string

const (
	SetupOpen SetupMode = "open"
	SetupOnce SetupMode = "once"
	SetupOff  SetupMode = "off"
)

func ParseSetupMode(s string) (SetupMode, error) {
	switch m := SetupMode(strings.ToLower(strings.TrimSpace(s))); m {
	case SetupOpen, SetupOnce, SetupOff:
		return m, nil
	default:
		return "", fmt.Errorf("unknown admin setup mode %q", s)
	}
}

// dummyHash is compared against when the username is unknown, so a failed
// login costs one bcrypt comparison either way.
var dummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("bokaap-no-such-admin"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
})

type AuthService struct {
	admins  store.AdminStore
	tokens  *TokenIssuer
	setup   SetupMode
	now     func() time.Time
	compare func(hash, password []byte) error
}

func NewAuthService(admins store.AdminStore, tokens *TokenIssuer, setup SetupMode) *AuthService {
	return &AuthService{
		admins:  admins,
		tokens:  tokens,
		setup:   setup,
		now:     time.Now,
		compare: bcrypt.CompareHashAndPassword,
	}
}

func (s *AuthService) SetupMode() SetupMode { return s.setup }

// Login verifies the credentials and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	admin, err := s.admins.AdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = s.compare(dummyHash(), []byte(password))
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := s.compare([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(admin.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Authenticate resolves a bearer token back to the stored admin.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.AdminUser, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	username, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	admin, err := s.admins.AdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return admin, nil
}

// CreateAdmin bootstraps an administrator. Outside SetupOpen it only succeeds
// while no admin exists; a taken username is always reported as ErrConflict.
func (s *AuthService) CreateAdmin(ctx context.Context, username, password string) (*models.AdminUser, error) {
	if s.setup == SetupOff {
		return nil, ErrSetupClosed
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	_, err := s.admins.AdminByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, ErrConflict
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if s.setup == SetupOnce {
		count, err := s.admins.CountAdmins(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if count > 0 {
			return nil, ErrSetupClosed
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	admin := &models.AdminUser{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	create := s.admins.CreateAdmin
	if s.setup == SetupOnce {
		create = s.admins.CreateFirstAdmin
	}
	if err := create(ctx, admin); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return nil, ErrConflict
		case errors.Is(err, store.ErrSetupDone):
			return nil, ErrSetupClosed
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	slog.Info("admin user created", "username", admin.Username, "setup", s.setup)
	return admin, nil
}
