package model

import (
	"strconv"
	"time"
)

// UnlimitedStock marks an item that is never depleted.
const UnlimitedStock int64 = -1

type Item struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Cost        int64  `gorm:"not null;check:chk_item_cost,cost >= 0" json:"cost"`
	Stock       int64  `gorm:"not null;check:chk_item_stock,stock >= -1" json:"stock"`
	IsActive    bool   `gorm:"not null;index" json:"isActive"`

	// only used to mirror redemption counts into notion
	NotionPageID string `json:"notionPageId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Item) TableName() string {
	return "item"
}

func (o Item) IsUnlimited() bool {
	return o.Stock == UnlimitedStock
}

// InStock reports whether one more unit can be sold.
func (o Item) InStock() bool {
	return o.IsUnlimited() || o.Stock > 0
}

func (o Item) StockLabel() string {
	if o.IsUnlimited() {
		return "unlimited"
	}
	return strconv.FormatInt(o.Stock, 10)
}
