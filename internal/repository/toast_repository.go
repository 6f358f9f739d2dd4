package repository

import (
	"time"
	"toast_backend/internal/model"

	"gorm.io/gorm"
)

type ToastRepository struct {
	DB *gorm.DB
}

func NewToastRepository(db *gorm.DB) *ToastRepository {
	return &ToastRepository{DB: db}
}

func (r *ToastRepository) Create(toast *model.Toast) error {
	return r.DB.Create(toast).Error
}

func (r *ToastRepository) Save(toast *model.Toast) error {
	return r.DB.Save(toast).Error
}

func (r *ToastRepository) FindByID(id string) (*model.Toast, error) {
	var toast model.Toast
	err := r.DB.First(&toast, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &toast, nil
}

// FindByUserAndWeek is the aggregator's idempotency check. weekStart must
// already be normalized to the user's week boundary.
func (r *ToastRepository) FindByUserAndWeek(userID uint, weekStart time.Time) (*model.Toast, error) {
	var toast model.Toast
	err := r.DB.Where("user_id = ? AND week_start = ?", userID, weekStart).First(&toast).Error
	if err != nil {
		return nil, err
	}
	return &toast, nil
}

func (r *ToastRepository) ListByUser(userID uint, page, pageSize int) ([]model.Toast, int64, error) {
	var toasts []model.Toast
	var total int64

	query := r.DB.Model(&model.Toast{}).Where("user_id = ?", userID)
	query.Count(&total)

	offset := (page - 1) * pageSize
	err := query.Order("week_start desc").Offset(offset).Limit(pageSize).Find(&toasts).Error
	return toasts, total, err
}

func (r *ToastRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Toast{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
