package repository

import (
	"time"
	"toast_backend/internal/model"

	"gorm.io/gorm"
)

type NoteRepository struct {
	DB *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{DB: db}
}

func (r *NoteRepository) Create(note *model.Note) error {
	return r.DB.Create(note).Error
}

func (r *NoteRepository) Save(note *model.Note) error {
	return r.DB.Save(note).Error
}

func (r *NoteRepository) FindByIDAndUser(id string, userID uint) (*model.Note, error) {
	var note model.Note
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&note).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *NoteRepository) Delete(id string, userID uint) error {
	return r.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Note{}).Error
}

// ListByUserBetween returns the user's notes with createdAt in [start, end),
// oldest first — the aggregator's input for one week window.
func (r *NoteRepository) ListByUserBetween(userID uint, start, end time.Time) ([]model.Note, error) {
	var notes []model.Note
	err := r.DB.Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start, end).
		Order("created_at asc").Find(&notes).Error
	return notes, err
}

func (r *NoteRepository) ListByUser(userID uint, page, pageSize int) ([]model.Note, int64, error) {
	var notes []model.Note
	var total int64

	query := r.DB.Model(&model.Note{}).Where("user_id = ?", userID)
	query.Count(&total)

	offset := (page - 1) * pageSize
	err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&notes).Error
	return notes, total, err
}

func (r *NoteRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Note{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Timestamps returns every note creation time for the user. Volumes are small
// (one user's daily notes), so streak bucketing happens in Go where the
// user's timezone can be applied reliably.
func (r *NoteRepository) Timestamps(userID uint) ([]time.Time, error) {
	var stamps []time.Time
	err := r.DB.Model(&model.Note{}).Where("user_id = ?", userID).
		Pluck("created_at", &stamps).Error
	return stamps, err
}
