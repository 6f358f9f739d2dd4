package repository

import (
	"toast_backend/internal/model"

	"gorm.io/gorm"
)

type FriendshipRepository struct {
	DB *gorm.DB
}

func NewFriendshipRepository(db *gorm.DB) *FriendshipRepository {
	return &FriendshipRepository{DB: db}
}

func (r *FriendshipRepository) AreFriends(userID, friendID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Count(&count).Error
	return count > 0, err
}

// CreatePair inserts both directions of a friendship in one transaction.
func (r *FriendshipRepository) CreatePair(userID, friendID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model.Friendship{UserID: userID, FriendID: friendID}).Error; err != nil {
			return err
		}
		return tx.Create(&model.Friendship{UserID: friendID, FriendID: userID}).Error
	})
}

func (r *FriendshipRepository) ListFriendIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Friendship{}).Where("user_id = ?", userID).
		Pluck("friend_id", &ids).Error
	return ids, err
}

func (r *FriendshipRepository) ListFriends(userID uint) ([]model.User, error) {
	var friends []model.User
	err := r.DB.Joins("JOIN friendships ON friendships.friend_id = users.id").
		Where("friendships.user_id = ?", userID).
		Find(&friends).Error
	return friends, err
}

func (r *FriendshipRepository) CreateRequest(req *model.FriendRequest) error {
	return r.DB.Create(req).Error
}

func (r *FriendshipRepository) FindRequest(id string) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := r.DB.First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *FriendshipRepository) FindPendingBetween(senderID, receiverID uint) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := r.DB.Where("sender_id = ? AND receiver_id = ? AND status = ?", senderID, receiverID, "pending").
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *FriendshipRepository) UpdateRequest(req *model.FriendRequest) error {
	return r.DB.Save(req).Error
}

func (r *FriendshipRepository) ListPendingForReceiver(receiverID uint) ([]model.FriendRequest, error) {
	var reqs []model.FriendRequest
	err := r.DB.Preload("Sender").
		Where("receiver_id = ? AND status = ?", receiverID, "pending").
		Order("created_at desc").Find(&reqs).Error
	return reqs, err
}
