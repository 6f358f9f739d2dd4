package repository

import (
	"toast_backend/internal/model"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(n *model.Notification) error {
	return r.DB.Create(n).Error
}

func (r *NotificationRepository) ListByUser(userID uint, onlyUnread bool, limit int) ([]model.Notification, error) {
	var items []model.Notification
	query := r.DB.Where("user_id = ?", userID)
	if onlyUnread {
		query = query.Where("`read` = ?", false)
	}
	err := query.Order("created_at desc").Limit(limit).Find(&items).Error
	return items, err
}

func (r *NotificationRepository) MarkRead(userID uint, id string) error {
	return r.DB.Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true).Error
}

func (r *NotificationRepository) MarkAllRead(userID uint) error {
	return r.DB.Model(&model.Notification{}).
		Where("user_id = ? AND `read` = ?", userID, false).
		Update("read", true).Error
}
