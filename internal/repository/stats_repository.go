package repository

import (
	"time"

	"gorm.io/gorm"
)

// StatsRepository answers the per-user counts badge evaluation needs. It
// reads the authoritative tables directly rather than trusting the activity
// log, so deleted notes and toasts stop counting.
type StatsRepository struct {
	notes  *NoteRepository
	toasts *ToastRepository
	shares *ShareRepository
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{
		notes:  NewNoteRepository(db),
		toasts: NewToastRepository(db),
		shares: NewShareRepository(db),
	}
}

func (r *StatsRepository) NoteCount(userID uint) (int64, error) {
	return r.notes.CountByUser(userID)
}

func (r *StatsRepository) NoteTimestamps(userID uint) ([]time.Time, error) {
	return r.notes.Timestamps(userID)
}

func (r *StatsRepository) ToastCount(userID uint) (int64, error) {
	return r.toasts.CountByUser(userID)
}

func (r *StatsRepository) ShareCount(userID uint) (int64, error) {
	return r.shares.CountBySender(userID)
}

func (r *StatsRepository) ReactionCount(userID uint) (int64, error) {
	return r.shares.CountReactionsReceived(userID)
}
