package model

import "time"

// Badge is static reference data describing one achievement: the metric it
// watches (Requirement key) and the value that unlocks it.
// swagger:model Badge
type Badge struct {
	BaseModel
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	Category    string `gorm:"size:64;index" json:"category"`
	Requirement string `gorm:"size:64;not null" json:"requirement"`
	Threshold   int    `gorm:"not null" json:"threshold"`
	Icon        string `gorm:"size:255" json:"icon"`
	Enabled     bool   `gorm:"default:true" json:"enabled"`
}

func (Badge) TableName() string {
	return "badges"
}

// UserBadge records a single award. The (user_id, badge_id) unique index is
// the only guard against double-awarding under concurrent evaluation.
// swagger:model UserBadge
type UserBadge struct {
	BaseModel
	UserID    uint      `gorm:"uniqueIndex:idx_user_badge;type:bigint unsigned;not null" json:"userId"`
	BadgeID   uint      `gorm:"uniqueIndex:idx_user_badge;type:bigint unsigned;not null" json:"badgeId"`
	Seen      bool      `gorm:"default:false" json:"seen"`
	AwardedAt time.Time `gorm:"not null" json:"awardedAt"`

	Badge *Badge `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}
