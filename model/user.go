package model

import "time"

// StartingPoints is the balance granted by explicit registration.
const StartingPoints = 10

type User struct {
	ID       string `gorm:"size:32;primarykey" json:"id"`
	Username string `gorm:"not null" json:"username"`
	Points   int64  `gorm:"not null;default:0;check:chk_user_points,points >= 0" json:"points"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "user"
}

// Standing is the public leaderboard projection of a User.
type Standing struct {
	Username string `json:"username"`
	Points   int64  `json:"points"`
}
