package item

import (
	"context"
	"errors"

	"github.com/webuild-community/honor/model"
)

var (
	ErrNotFound     = errors.New("item not found")
	ErrInvalidInput = errors.New("invalid item input")
)

// Changes is a partial update; nil fields are left untouched.
type Changes struct {
	Name         *string
	Description  *string
	Cost         *int64
	Stock        *int64
	IsActive     *bool
	NotionPageID *string
}

type Service interface {
	// Catalog returns active items, cheapest first.
	Catalog(ctx context.Context) ([]model.Item, error)
	List(ctx context.Context) ([]model.Item, error)
	Find(ctx context.Context, id uint) (model.Item, error)
	Create(ctx context.Context, item model.Item) (model.Item, error)
	Update(ctx context.Context, id uint, changes Changes) (model.Item, error)
	Delete(ctx context.Context, id uint) error
}

// Mirror publishes redemption counts to an external catalog.
type Mirror interface {
	SyncRedeemed(ctx context.Context) error
}
