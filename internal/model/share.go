package model

// ToastShare makes a toast visible to one friend. Re-sharing the same toast
// to the same person is a no-op thanks to the unique index.
type ToastShare struct {
	UUIDBase
	ToastID     string `gorm:"uniqueIndex:idx_share;type:varchar(36);not null" json:"toastId"`
	SenderID    uint   `gorm:"uniqueIndex:idx_share;type:bigint unsigned;not null" json:"senderId"`
	RecipientID uint   `gorm:"uniqueIndex:idx_share;index;type:bigint unsigned;not null" json:"recipientId"`

	Toast  *Toast `gorm:"foreignKey:ToastID" json:"toast,omitempty"`
	Sender *User  `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (ToastShare) TableName() string {
	return "toast_shares"
}

// ToastReaction is one emoji per user per toast.
type ToastReaction struct {
	UUIDBase
	ToastID string `gorm:"uniqueIndex:idx_reaction;type:varchar(36);not null" json:"toastId"`
	UserID  uint   `gorm:"uniqueIndex:idx_reaction;type:bigint unsigned;not null" json:"userId"`
	Emoji   string `gorm:"uniqueIndex:idx_reaction;size:16;not null" json:"emoji"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ToastReaction) TableName() string {
	return "toast_reactions"
}

type ToastComment struct {
	UUIDBase
	ToastID  string `gorm:"index;type:varchar(36);not null" json:"toastId"`
	AuthorID uint   `gorm:"index;type:bigint unsigned;not null" json:"authorId"`
	Content  string `gorm:"type:text;not null" json:"content"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (ToastComment) TableName() string {
	return "toast_comments"
}
