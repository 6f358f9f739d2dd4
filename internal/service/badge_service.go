package service

import (
	"errors"
	"fmt"
	"time"
	"toast_backend/internal/model"
	"toast_backend/internal/util"
	"toast_backend/pkg/logger"
	"toast_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MetricKind is the closed set of metrics a badge can watch. Badge rows carry
// the string key; everything past the parse boundary works with the enum so an
// unknown requirement is rejected once instead of silently never awarding.
type MetricKind int

const (
	MetricNoteTotal MetricKind = iota
	MetricNoteStreak
	MetricToastTotal
	MetricShareTotal
	MetricReactionTotal
)

const (
	RequirementNoteTotal     = "note_total"
	RequirementNoteStreak    = "note_streak"
	RequirementToastTotal    = "toast_total"
	RequirementShareTotal    = "share_total"
	RequirementReactionTotal = "reaction_total"
)

// MetricKindFromKey maps a stored requirement key onto the enum. The second
// return is false for keys this build does not know.
func MetricKindFromKey(key string) (MetricKind, bool) {
	switch key {
	case RequirementNoteTotal:
		return MetricNoteTotal, true
	case RequirementNoteStreak:
		return MetricNoteStreak, true
	case RequirementToastTotal:
		return MetricToastTotal, true
	case RequirementShareTotal:
		return MetricShareTotal, true
	case RequirementReactionTotal:
		return MetricReactionTotal, true
	}
	return 0, false
}

func (k MetricKind) Key() string {
	switch k {
	case MetricNoteTotal:
		return RequirementNoteTotal
	case MetricNoteStreak:
		return RequirementNoteStreak
	case MetricToastTotal:
		return RequirementToastTotal
	case MetricShareTotal:
		return RequirementShareTotal
	case MetricReactionTotal:
		return RequirementReactionTotal
	}
	return "unknown"
}

// ActivitySnapshot is one consistent read of a user's metrics. Evaluation
// compares every badge against the same snapshot, so a badge can never see a
// higher count than the one that awarded its predecessor in the same pass.
type ActivitySnapshot struct {
	NoteTotal     int
	NoteStreak    int
	ToastTotal    int
	ShareTotal    int
	ReactionTotal int
}

func (s ActivitySnapshot) Metric(kind MetricKind) int {
	switch kind {
	case MetricNoteTotal:
		return s.NoteTotal
	case MetricNoteStreak:
		return s.NoteStreak
	case MetricToastTotal:
		return s.ToastTotal
	case MetricShareTotal:
		return s.ShareTotal
	case MetricReactionTotal:
		return s.ReactionTotal
	}
	return 0
}

// BadgeCatalog serves the active badge definitions, ordered by category then
// ascending threshold.
type BadgeCatalog interface {
	ListEnabled() ([]model.Badge, error)
}

// AwardStore persists awards. Award must surface gorm.ErrDuplicatedKey when
// the (user, badge) pair already exists.
type AwardStore interface {
	Award(ub *model.UserBadge) error
	AwardedBadgeIDs(userID uint) (map[uint]bool, error)
}

// AwardBrowser lists a user's awards and acknowledges them.
type AwardBrowser interface {
	ListUserBadges(userID uint) ([]model.UserBadge, error)
	MarkSeen(userID uint, userBadgeID uint) error
}

// StatsSource reads the raw per-user counts a snapshot is built from.
type StatsSource interface {
	NoteCount(userID uint) (int64, error)
	NoteTimestamps(userID uint) ([]time.Time, error)
	ToastCount(userID uint) (int64, error)
	ShareCount(userID uint) (int64, error)
	ReactionCount(userID uint) (int64, error)
}

// BadgeService awards achievement badges from activity metrics. Awards are
// one-time: the unique (user, badge) index is the final arbiter, so two
// concurrent evaluations of the same user cannot double-award.
type BadgeService struct {
	catalog  BadgeCatalog
	awards   AwardStore
	browser  AwardBrowser
	stats    StatsSource
	users    UserSource
	notifier Notifier

	// now is injectable so streak evaluation is deterministic in tests.
	now func() time.Time
}

func NewBadgeService(catalog BadgeCatalog, awards AwardStore, browser AwardBrowser, stats StatsSource, users UserSource, notifier Notifier) *BadgeService {
	return &BadgeService{
		catalog:  catalog,
		awards:   awards,
		browser:  browser,
		stats:    stats,
		users:    users,
		notifier: notifier,
		now:      time.Now,
	}
}

// Catalog returns the enabled badge definitions for display.
func (s *BadgeService) Catalog() ([]model.Badge, error) {
	return s.catalog.ListEnabled()
}

// MyBadges lists a user's earned badges, newest first.
func (s *BadgeService) MyBadges(userID uint) ([]model.UserBadge, error) {
	return s.browser.ListUserBadges(userID)
}

// MarkSeen acknowledges an award. Safe to repeat.
func (s *BadgeService) MarkSeen(userID uint, userBadgeID uint) error {
	return s.browser.MarkSeen(userID, userBadgeID)
}

// affectedKinds limits an incremental evaluation to metrics the triggering
// activity can have moved. Reaction counts belong to the toast owner, not the
// reactor, which is why the evaluator is invoked with the owner's userID.
func affectedKinds(activityType model.ActivityType) map[MetricKind]bool {
	switch activityType {
	case model.ActivityNoteCreated:
		return map[MetricKind]bool{MetricNoteTotal: true, MetricNoteStreak: true}
	case model.ActivityToastGenerated:
		return map[MetricKind]bool{MetricToastTotal: true}
	case model.ActivityToastShared:
		return map[MetricKind]bool{MetricShareTotal: true}
	case model.ActivityReactionReceived:
		return map[MetricKind]bool{MetricReactionTotal: true}
	}
	return nil
}

// Snapshot builds a full metric snapshot for the user. Streaks count
// consecutive days with at least one note, in the user's timezone.
func (s *BadgeService) Snapshot(userID uint) (ActivitySnapshot, error) {
	var snap ActivitySnapshot

	user, err := s.users.FindByID(userID)
	if err != nil {
		return snap, util.ErrUserNotFound
	}

	noteCount, err := s.stats.NoteCount(userID)
	if err != nil {
		return snap, err
	}
	snap.NoteTotal = int(noteCount)

	stamps, err := s.stats.NoteTimestamps(userID)
	if err != nil {
		return snap, err
	}
	snap.NoteStreak = util.StreakDays(stamps, s.now(), user.Location())

	toastCount, err := s.stats.ToastCount(userID)
	if err != nil {
		return snap, err
	}
	snap.ToastTotal = int(toastCount)

	shareCount, err := s.stats.ShareCount(userID)
	if err != nil {
		return snap, err
	}
	snap.ShareTotal = int(shareCount)

	reactionCount, err := s.stats.ReactionCount(userID)
	if err != nil {
		return snap, err
	}
	snap.ReactionTotal = int(reactionCount)

	return snap, nil
}

// Evaluate checks badges watching metrics the activity could have moved and
// awards every newly crossed threshold. Because the catalog is ordered by
// ascending threshold, a backfilled user collects intermediate badges in the
// same pass. Returns the fresh awards.
func (s *BadgeService) Evaluate(userID uint, activityType model.ActivityType, metadata map[string]interface{}) ([]model.UserBadge, error) {
	kinds := affectedKinds(activityType)
	if len(kinds) == 0 {
		return nil, nil
	}
	return s.evaluate(userID, kinds)
}

// EvaluateAll re-checks every metric; used by the backfill script and after
// catalog edits.
func (s *BadgeService) EvaluateAll(userID uint) ([]model.UserBadge, error) {
	return s.evaluate(userID, map[MetricKind]bool{
		MetricNoteTotal:     true,
		MetricNoteStreak:    true,
		MetricToastTotal:    true,
		MetricShareTotal:    true,
		MetricReactionTotal: true,
	})
}

func (s *BadgeService) evaluate(userID uint, kinds map[MetricKind]bool) ([]model.UserBadge, error) {
	snap, err := s.Snapshot(userID)
	if err != nil {
		return nil, err
	}

	badges, err := s.catalog.ListEnabled()
	if err != nil {
		return nil, err
	}

	awarded, err := s.awards.AwardedBadgeIDs(userID)
	if err != nil {
		return nil, err
	}

	var fresh []model.UserBadge
	for _, badge := range badges {
		kind, known := MetricKindFromKey(badge.Requirement)
		if !known {
			logger.Log.Warn("badge has unknown requirement, skipping",
				zap.Uint("badgeId", badge.ID), zap.String("requirement", badge.Requirement))
			continue
		}
		if !kinds[kind] || awarded[badge.ID] {
			continue
		}
		if snap.Metric(kind) < badge.Threshold {
			continue
		}

		ub := model.UserBadge{
			UserID:    userID,
			BadgeID:   badge.ID,
			AwardedAt: s.now(),
		}
		if err := s.awards.Award(&ub); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// A concurrent evaluation got there first; not an error.
				continue
			}
			return fresh, err
		}

		monitoring.BadgeAwardCounter.WithLabelValues(badge.Requirement).Inc()
		fresh = append(fresh, ub)

		if s.notifier != nil {
			s.notifier.Push(userID, model.NotifyNewBadge, map[string]interface{}{
				"badgeId":   badge.ID,
				"name":      badge.Name,
				"icon":      badge.Icon,
				"awardedAt": ub.AwardedAt.Format(time.RFC3339),
			})
		}
	}

	if len(fresh) > 0 {
		logger.Log.Info(fmt.Sprintf("awarded %d badge(s)", len(fresh)), zap.Uint("userId", userID))
	}
	return fresh, nil
}
