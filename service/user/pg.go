package user

import (
	"context"
	"errors"
	"time"

	"github.com/webuild-community/honor/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type pg struct {
	db *gorm.DB
}

// NewPGService --
func NewPGService(db *gorm.DB) Service {
	return &pg{db: db}
}

func (s *pg) Find(ctx context.Context, id string) (model.User, bool, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, false, nil
	}
	return user, err == nil, err
}

func (s *pg) Register(ctx context.Context, id, username string) (model.User, bool, error) {
	if id == "" {
		return model.User{}, false, ErrInvalidInput
	}

	user := model.User{ID: id, Username: username, Points: model.StartingPoints}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&user)
	if res.Error != nil {
		return model.User{}, false, res.Error
	}
	if res.RowsAffected == 1 {
		return user, true, nil
	}

	existing, _, err := s.Find(ctx, id)
	return existing, false, err
}

func (s *pg) Accrue(ctx context.Context, a model.Activity) (bool, error) {
	if a.UserID == "" {
		return false, ErrInvalidInput
	}
	if a.SeenAt.IsZero() {
		a.SeenAt = time.Now().UTC()
	}

	credited := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if a.EventID != "" {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.AccrualEvent{
				EventID:   a.EventID,
				UserID:    a.UserID,
				CreatedAt: a.SeenAt,
			})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}
		}

		// single upsert so concurrent messages from one user never lose an increment
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"points":     gorm.Expr(`"user"."points" + ?`, 1),
				"username":   a.Username,
				"updated_at": a.SeenAt,
			}),
		}).Create(&model.User{
			ID:        a.UserID,
			Username:  a.Username,
			Points:    1,
			CreatedAt: a.SeenAt,
			UpdatedAt: a.SeenAt,
		}).Error; err != nil {
			return err
		}

		credited = true
		return nil
	})
	return credited, err
}

func (s *pg) Leaderboard(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := s.db.WithContext(ctx).Order("points desc").Order("id asc").Find(&users).Error
	return users, err
}

func (s *pg) Top(ctx context.Context, limit int) ([]model.Standing, error) {
	var standings []model.Standing
	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Select("username", "points").
		Order("points desc").Order("id asc").
		Limit(limit).
		Scan(&standings).Error
	return standings, err
}

func (s *pg) SetPoints(ctx context.Context, id string, points int64) (model.User, error) {
	if points < 0 {
		return model.User{}, ErrInvalidInput
	}

	var user model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).Where("id = ?", id).Update("points", points)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.First(&user, "id = ?", id).Error
	})
	return user, err
}

func (s *pg) Redemptions(ctx context.Context, id string) ([]model.Redemption, error) {
	var redemptions []model.Redemption
	err := s.db.WithContext(ctx).Where("user_id = ?", id).Order("id asc").Find(&redemptions).Error
	return redemptions, err
}

func (s *pg) PurgeAccrualEvents(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at < ?", before).Delete(&model.AccrualEvent{})
	return res.RowsAffected, res.Error
}
