package model

import "time"

// Toast is the generated weekly summary for one user and one week window.
// The (user_id, week_start) unique index is the idempotency anchor: at most
// one toast may exist per user per week.
// swagger:model Toast
type Toast struct {
	UUIDBase
	UserID      uint      `gorm:"uniqueIndex:idx_user_week;type:bigint unsigned;not null" json:"userId"`
	WeekStart   time.Time `gorm:"uniqueIndex:idx_user_week;not null" json:"weekStart"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	AudioURL    string    `gorm:"size:255" json:"audioUrl"` // empty when synthesis failed or is pending
	GeneratedBy string    `gorm:"size:64" json:"generatedBy"`
	Regenerated int       `gorm:"default:0" json:"regenerated"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Toast) TableName() string {
	return "toasts"
}
