package model

import "time"

// Friendship stores accepted pairs; a row exists in both directions.
type Friendship struct {
	UserID    uint      `gorm:"primaryKey" json:"userId"`
	FriendID  uint      `gorm:"primaryKey" json:"friendId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Friendship) TableName() string {
	return "friendships"
}

// FriendRequest is a pending invitation between two users.
type FriendRequest struct {
	UUIDBase
	SenderID   uint   `gorm:"index;not null" json:"senderId"`
	Sender     User   `gorm:"foreignKey:SenderID;references:ID;constraint:false" json:"sender,omitempty"`
	ReceiverID uint   `gorm:"index;not null" json:"receiverId"`
	Receiver   User   `gorm:"foreignKey:ReceiverID;references:ID;constraint:false" json:"receiver,omitempty"`
	Status     string `gorm:"type:enum('pending','accepted','rejected');default:'pending'" json:"status"`
	Message    string `gorm:"size:255" json:"message"`
}

func (FriendRequest) TableName() string {
	return "friend_requests"
}
