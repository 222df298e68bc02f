package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/webuild-community/honor/model"
)

var (
	ErrItemUnavailable = errors.New("item not found or unavailable")
	ErrOutOfStock      = errors.New("item out of stock")
	ErrNotRegistered   = errors.New("user not registered")
	// ErrConflict is returned when concurrent purchases kept invalidating
	// the validated balance or stock until the retry budget ran out.
	ErrConflict = errors.New("purchase conflicted with a concurrent update")
)

type InsufficientBalanceError struct {
	Cost    int64
	Balance int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: need %d, have %d", e.Cost, e.Balance)
}

// Receipt describes a committed purchase.
type Receipt struct {
	Redemption model.Redemption
	Item       model.Item
	Balance    int64
}

type Service interface {
	// Redeem validates and atomically applies a purchase of one unit of
	// itemID by userID. Validation failures return one of the errors above
	// and leave the store untouched.
	Redeem(ctx context.Context, userID string, itemID uint) (Receipt, error)
}
