package model

import "time"

// Redemption is an append-only record of a completed purchase. Cost is the
// price paid at purchase time and is never recomputed from the item.
type Redemption struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	Code   string `gorm:"size:27;not null;uniqueIndex" json:"code"`
	UserID string `gorm:"size:32;not null;index" json:"userId"`
	ItemID uint   `gorm:"not null;index" json:"itemId"`
	Cost   int64  `gorm:"not null" json:"cost"`

	CreatedAt time.Time `json:"createdAt"`
}

func (Redemption) TableName() string {
	return "redemption"
}
