package model

type NotificationKind string

const (
	NotifyNewToast NotificationKind = "new_toast"
	NotifyNewBadge NotificationKind = "new_badge"
	NotifyNewShare NotificationKind = "new_share"
	NotifyReaction NotificationKind = "reaction"
	NotifyComment  NotificationKind = "comment"
)

// Notification is the durable copy of a hub push so offline users catch up
// by polling. Delivery over the socket is best effort.
// swagger:model Notification
type Notification struct {
	UUIDBase
	UserID  uint             `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	Kind    NotificationKind `gorm:"size:32;not null" json:"kind"`
	Payload string           `gorm:"type:text" json:"payload"` // JSON blob
	Read    bool             `gorm:"default:false" json:"read"`
}

func (Notification) TableName() string {
	return "notifications"
}
