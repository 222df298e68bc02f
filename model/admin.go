package model

import "time"

type Admin struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Username string `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Password string `gorm:"not null" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

func (Admin) TableName() string {
	return "admin"
}

// Session is a server-side admin login keyed by the token the client holds.
type Session struct {
	Token     string    `gorm:"size:36;primarykey" json:"-"`
	AdminID   uint      `gorm:"not null;index" json:"adminId"`
	Admin     Admin     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`

	CreatedAt time.Time `json:"createdAt"`
}

func (Session) TableName() string {
	return "session"
}

func (o Session) IsExpired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
