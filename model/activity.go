package model

import "time"

// Activity is one qualifying chat message waiting to be credited.
type Activity struct {
	EventID  string
	UserID   string
	Username string
	SeenAt   time.Time
}

// AccrualEvent records an already credited chat event so redelivered
// events are not credited twice.
type AccrualEvent struct {
	EventID   string    `gorm:"size:128;primarykey"`
	UserID    string    `gorm:"size:32;not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

func (AccrualEvent) TableName() string {
	return "accrual_event"
}

// All lists every model managed by migrations.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Item{},
		&Redemption{},
		&Admin{},
		&Session{},
		&AccrualEvent{},
	}
}
