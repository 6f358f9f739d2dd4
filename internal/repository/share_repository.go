package repository

import (
	"toast_backend/internal/model"

	"gorm.io/gorm"
)

type ShareRepository struct {
	DB *gorm.DB
}

func NewShareRepository(db *gorm.DB) *ShareRepository {
	return &ShareRepository{DB: db}
}

func (r *ShareRepository) Create(share *model.ToastShare) error {
	return r.DB.Create(share).Error
}

func (r *ShareRepository) CountBySender(senderID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ToastShare{}).Where("sender_id = ?", senderID).Count(&count).Error
	return count, err
}

// ListSharedWith returns toasts friends have shared with the user.
func (r *ShareRepository) ListSharedWith(userID uint, page, pageSize int) ([]model.ToastShare, int64, error) {
	var shares []model.ToastShare
	var total int64

	query := r.DB.Model(&model.ToastShare{}).Where("recipient_id = ?", userID)
	query.Count(&total)

	offset := (page - 1) * pageSize
	err := r.DB.Preload("Toast").Preload("Sender").
		Where("recipient_id = ?", userID).
		Order("created_at desc").Offset(offset).Limit(pageSize).Find(&shares).Error
	return shares, total, err
}

// WasSharedWith reports whether the toast has been shared with the user;
// reactions and comments are only allowed on toasts one can see.
func (r *ShareRepository) WasSharedWith(toastID string, userID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.ToastShare{}).
		Where("toast_id = ? AND recipient_id = ?", toastID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *ShareRepository) CreateReaction(reaction *model.ToastReaction) error {
	return r.DB.Create(reaction).Error
}

func (r *ShareRepository) DeleteReaction(toastID string, userID uint, emoji string) error {
	return r.DB.Where("toast_id = ? AND user_id = ? AND emoji = ?", toastID, userID, emoji).
		Delete(&model.ToastReaction{}).Error
}

func (r *ShareRepository) ListReactions(toastID string) ([]model.ToastReaction, error) {
	var reactions []model.ToastReaction
	err := r.DB.Preload("User").Where("toast_id = ?", toastID).
		Order("created_at asc").Find(&reactions).Error
	return reactions, err
}

// CountReactionsReceived counts reactions on all of the user's toasts,
// excluding self-reactions.
func (r *ShareRepository) CountReactionsReceived(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ToastReaction{}).
		Joins("JOIN toasts ON toasts.id = toast_reactions.toast_id").
		Where("toasts.user_id = ? AND toast_reactions.user_id <> ?", userID, userID).
		Count(&count).Error
	return count, err
}

func (r *ShareRepository) CreateComment(comment *model.ToastComment) error {
	return r.DB.Create(comment).Error
}

func (r *ShareRepository) ListComments(toastID string) ([]model.ToastComment, error) {
	var comments []model.ToastComment
	err := r.DB.Preload("Author").Where("toast_id = ?", toastID).
		Order("created_at asc").Find(&comments).Error
	return comments, err
}
