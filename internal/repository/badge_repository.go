package repository

import (
	"toast_backend/internal/model"

	"gorm.io/gorm"
)

type BadgeRepository struct {
	DB *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: db}
}

// ListEnabled returns the active catalog ordered so that a single evaluation
// awards intermediate badges before higher ones (backfill case).
func (r *BadgeRepository) ListEnabled() ([]model.Badge, error) {
	var badges []model.Badge
	err := r.DB.Where("enabled = ?", true).
		Order("category asc, threshold asc").Find(&badges).Error
	return badges, err
}

func (r *BadgeRepository) ListAll() ([]model.Badge, error) {
	var badges []model.Badge
	err := r.DB.Order("category asc, threshold asc").Find(&badges).Error
	return badges, err
}

func (r *BadgeRepository) FindByID(id uint) (*model.Badge, error) {
	var badge model.Badge
	err := r.DB.First(&badge, id).Error
	if err != nil {
		return nil, err
	}
	return &badge, nil
}

func (r *BadgeRepository) Create(badge *model.Badge) error {
	return r.DB.Create(badge).Error
}

func (r *BadgeRepository) Update(badge *model.Badge) error {
	return r.DB.Save(badge).Error
}

func (r *BadgeRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Badge{}, id).Error
}

// Award inserts a UserBadge. A duplicate (user, badge) pair surfaces as
// gorm.ErrDuplicatedKey, which the evaluator treats as already awarded.
func (r *BadgeRepository) Award(ub *model.UserBadge) error {
	return r.DB.Create(ub).Error
}

func (r *BadgeRepository) AwardedBadgeIDs(userID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.DB.Model(&model.UserBadge{}).Where("user_id = ?", userID).
		Pluck("badge_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (r *BadgeRepository) ListUserBadges(userID uint) ([]model.UserBadge, error) {
	var awards []model.UserBadge
	err := r.DB.Preload("Badge").Where("user_id = ?", userID).
		Order("awarded_at desc").Find(&awards).Error
	return awards, err
}

// MarkSeen flips seen to true. Already-seen rows are untouched, so repeated
// calls are no-ops.
func (r *BadgeRepository) MarkSeen(userID uint, userBadgeID uint) error {
	return r.DB.Model(&model.UserBadge{}).
		Where("id = ? AND user_id = ?", userBadgeID, userID).
		Update("seen", true).Error
}
