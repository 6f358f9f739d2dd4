package model

import "time"

type ActivityType string

const (
	ActivityNoteCreated      ActivityType = "note_created"
	ActivityToastGenerated   ActivityType = "toast_generated"
	ActivityToastShared      ActivityType = "toast_shared"
	ActivityReactionReceived ActivityType = "reaction_received"
	ActivityCommentReceived  ActivityType = "comment_received"
)

// UserActivity is the append-only activity log feeding badge evaluation.
// Rows are never updated or deleted.
// swagger:model UserActivity
type UserActivity struct {
	ID        uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint         `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	Type      ActivityType `gorm:"size:32;index;not null" json:"type"`
	Metadata  string       `gorm:"type:text" json:"metadata"` // opaque JSON blob
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"createdAt"`
}

func (UserActivity) TableName() string {
	return "user_activities"
}
