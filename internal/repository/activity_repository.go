package repository

import (
	"toast_backend/internal/model"

	"gorm.io/gorm"
)

type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

// Append writes one row to the activity log. The log is insert-only; there
// are deliberately no update or delete methods here.
func (r *ActivityRepository) Append(activity *model.UserActivity) error {
	return r.DB.Create(activity).Error
}

func (r *ActivityRepository) CountByUserAndType(userID uint, activityType model.ActivityType) (int64, error) {
	var count int64
	err := r.DB.Model(&model.UserActivity{}).
		Where("user_id = ? AND type = ?", userID, activityType).
		Count(&count).Error
	return count, err
}

func (r *ActivityRepository) ListByUser(userID uint, limit int) ([]model.UserActivity, error) {
	var activities []model.UserActivity
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at desc").Limit(limit).Find(&activities).Error
	return activities, err
}
