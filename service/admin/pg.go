package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/webuild-community/honor/model"
	"gorm.io/gorm"
)

type pg struct {
	db     *gorm.DB
	ttl    time.Duration
	hasher PasswordHasher
	now    func() time.Time

	// compared against when the username is unknown so both paths cost the same
	dummyHash string
}

// NewPGService --
func NewPGService(db *gorm.DB, sessionTTL time.Duration, opts ...Option) Service {
	s := &pg{
		db:     db,
		ttl:    sessionTTL,
		hasher: BcryptHasher{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dummyHash, _ = s.hasher.Hash(uuid.NewString())
	return s
}

func (s *pg) Register(ctx context.Context, username, password string) (model.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return model.Admin{}, ErrInvalidInput
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Admin{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return model.Admin{}, err
	}
	if count > 0 {
		return model.Admin{}, ErrDuplicateUsername
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.Admin{}, err
	}

	admin := model.Admin{Username: username, Password: hash}
	if err := s.db.WithContext(ctx).Create(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.Admin{}, ErrDuplicateUsername
		}
		return model.Admin{}, err
	}
	return admin, nil
}

func (s *pg) Login(ctx context.Context, username, password string) (model.Admin, error) {
	username = strings.TrimSpace(username)

	var admin model.Admin
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.hasher.Verify(s.dummyHash, password)
		return model.Admin{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.Admin{}, err
	}

	if !s.hasher.Verify(admin.Password, password) {
		return model.Admin{}, ErrInvalidCredentials
	}
	return admin, nil
}

func (s *pg) StartSession(ctx context.Context, adminID uint) (model.Session, error) {
	now := s.now().UTC()
	session := model.Session{
		Token:     uuid.NewString(),
		AdminID:   adminID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.db.WithContext(ctx).Omit("Admin").Create(&session).Error; err != nil {
		return model.Session{}, err
	}
	return session, nil
}

func (s *pg) Authenticate(ctx context.Context, token string) (model.Admin, error) {
	if token == "" {
		return model.Admin{}, ErrNoSession
	}

	var session model.Session
	err := s.db.WithContext(ctx).Preload("Admin").Where("token = ?", token).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Admin{}, ErrNoSession
	}
	if err != nil {
		return model.Admin{}, err
	}

	if session.IsExpired(s.now()) {
		_ = s.Logout(ctx, token)
		return model.Admin{}, ErrSessionExpired
	}
	return session.Admin, nil
}

func (s *pg) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.db.WithContext(ctx).Where("token = ?", token).Delete(&model.Session{}).Error
}

func (s *pg) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now().UTC()).Delete(&model.Session{})
	return res.RowsAffected, res.Error
}
