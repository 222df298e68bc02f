package admin

import (
	"context"
	"errors"
	"time"

	"github.com/webuild-community/honor/model"
)

var (
	ErrInvalidInput       = errors.New("username and password are required")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
	ErrNoSession          = errors.New("no session")
)

type Service interface {
	Register(ctx context.Context, username, password string) (model.Admin, error)
	Login(ctx context.Context, username, password string) (model.Admin, error)
	StartSession(ctx context.Context, adminID uint) (model.Session, error)
	// Authenticate resolves a session token to its admin.
	Authenticate(ctx context.Context, token string) (model.Admin, error)
	Logout(ctx context.Context, token string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

type Option func(*pg)

func WithHasher(h PasswordHasher) Option {
	return func(s *pg) { s.hasher = h }
}

func WithClock(now func() time.Time) Option {
	return func(s *pg) { s.now = now }
}
