package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/webuild-community/honor/database/dbtest"
	"github.com/webuild-community/honor/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func setup(t *testing.T) (*gorm.DB, Service, *clock) {
	t.Helper()
	db := dbtest.New(t)
	c := &clock{t: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewPGService(db, time.Hour, WithHasher(BcryptHasher{Cost: bcrypt.MinCost}), WithClock(c.now))
	return db, svc, c
}

func TestRegisterHashesPassword(t *testing.T) {
	db, svc, _ := setup(t)
	a, err := svc.Register(context.Background(), " alice ", "s3cret")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if a.Username != "alice" {
		t.Errorf("username not trimmed: %q", a.Username)
	}

	var stored model.Admin
	if err := db.First(&stored, a.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Password == "s3cret" || bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("s3cret")) != nil {
		t.Error("password must be stored as a bcrypt hash")
	}
}

func TestRegisterRejectsDuplicateAndEmpty(t *testing.T) {
	_, svc, _ := setup(t)
	if _, err := svc.Register(context.Background(), "alice", "pw"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Register(context.Background(), "alice", "other"); !errors.Is(err, ErrDuplicateUsername) {
		t.Errorf("expected ErrDuplicateUsername, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "  ", "pw"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLoginDoesNotRevealUsernames(t *testing.T) {
	_, svc, _ := setup(t)
	if _, err := svc.Register(context.Background(), "alice", "pw"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	_, wrongPw := svc.Login(context.Background(), "alice", "nope")
	_, unknown := svc.Login(context.Background(), "mallory", "pw")
	if !errors.Is(wrongPw, ErrInvalidCredentials) || !errors.Is(unknown, ErrInvalidCredentials) {
		t.Fatalf("expected identical invalid credentials errors, got %v and %v", wrongPw, unknown)
	}
}

func TestSessionLifecycle(t *testing.T) {
	_, svc, c := setup(t)
	ctx := context.Background()
	a, err := svc.Register(ctx, "alice", "pw")
	if err != nil {
		t.Fatal(err)
	}

	session, err := svc.StartSession(ctx, a.ID)
	if err != nil {
		t.Fatalf("StartSession() error: %v", err)
	}
	if !session.ExpiresAt.Equal(c.t.Add(time.Hour)) {
		t.Errorf("unexpected expiry %v", session.ExpiresAt)
	}

	got, err := svc.Authenticate(ctx, session.Token)
	if err != nil || got.ID != a.ID {
		t.Fatalf("Authenticate() = %v, %v", got, err)
	}

	if err := svc.Logout(ctx, session.Token); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Authenticate(ctx, session.Token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after logout, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, ""); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for empty token, got %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	db, svc, c := setup(t)
	ctx := context.Background()
	a, _ := svc.Register(ctx, "alice", "pw")
	expiring, _ := svc.StartSession(ctx, a.ID)

	c.t = c.t.Add(30 * time.Minute)
	fresh, _ := svc.StartSession(ctx, a.ID)

	c.t = c.t.Add(31 * time.Minute)
	if _, err := svc.Authenticate(ctx, expiring.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, fresh.Token); err != nil {
		t.Fatalf("fresh session rejected: %v", err)
	}

	c.t = c.t.Add(time.Hour)
	n, err := svc.PurgeExpired(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("purged %d sessions, want 1", n)
	}
	var left int64
	db.Model(&model.Session{}).Count(&left)
	if left != 0 {
		t.Errorf("%d sessions left", left)
	}
}
