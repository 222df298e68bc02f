package transaction

import (
	"context"
	"errors"

	"github.com/segmentio/ksuid"
	"github.com/webuild-community/honor/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxAttempts = 3

// errStale aborts an attempt whose guarded write matched no row.
var errStale = errors.New("stale read")

type pg struct {
	logger *zap.Logger
	db     *gorm.DB
}

// NewPGService --
func NewPGService(logger *zap.Logger, db *gorm.DB) Service {
	return &pg{logger: logger, db: db}
}

func (s *pg) Redeem(ctx context.Context, userID string, itemID uint) (Receipt, error) {
	for attempt := 1; ; attempt++ {
		receipt, err := s.redeem(ctx, userID, itemID)
		if !errors.Is(err, errStale) {
			return receipt, err
		}
		if attempt == maxAttempts {
			return Receipt{}, ErrConflict
		}
		s.logger.Info("retrying purchase after concurrent update",
			zap.String("user_id", userID), zap.Uint("item_id", itemID), zap.Int("attempt", attempt))
	}
}

// redeem runs one validate-and-commit attempt inside a single transaction.
// Every write is guarded by the condition it was validated against, so a
// concurrent commit that invalidated it makes the write match no row and the
// whole attempt rolls back.
func (s *pg) redeem(ctx context.Context, userID string, itemID uint) (Receipt, error) {
	var receipt Receipt
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.Item
		if err := tx.First(&item, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemUnavailable
			}
			return err
		}
		if !item.IsActive {
			return ErrItemUnavailable
		}
		if !item.InStock() {
			return ErrOutOfStock
		}

		var user model.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotRegistered
			}
			return err
		}
		if user.Points < item.Cost {
			return &InsufficientBalanceError{Cost: item.Cost, Balance: user.Points}
		}

		res := tx.Model(&model.User{}).
			Where("id = ? AND points >= ?", user.ID, item.Cost).
			Update("points", gorm.Expr("points - ?", item.Cost))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errStale
		}

		// the item must still be active at the price and stock it was read with
		guard := tx.Model(&model.Item{}).Where("id = ? AND is_active = ? AND cost = ?", item.ID, true, item.Cost)
		if item.IsUnlimited() {
			res = guard.Where("stock = ?", model.UnlimitedStock).Update("stock", model.UnlimitedStock)
		} else {
			res = guard.Where("stock > 0").Update("stock", gorm.Expr("stock - 1"))
		}
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errStale
		}
		if !item.IsUnlimited() {
			item.Stock--
		}

		var balance int64
		if err := tx.Model(&model.User{}).Where("id = ?", user.ID).Pluck("points", &balance).Error; err != nil {
			return err
		}

		redemption := model.Redemption{
			Code:   ksuid.New().String(),
			UserID: user.ID,
			ItemID: item.ID,
			Cost:   item.Cost,
		}
		if err := tx.Create(&redemption).Error; err != nil {
			return err
		}

		receipt = Receipt{
			Redemption: redemption,
			Item:       item,
			Balance:    balance,
		}
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}
