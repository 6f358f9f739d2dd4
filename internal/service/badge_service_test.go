package service

import (
	"testing"
	"time"
	"toast_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- fakes ---

type fakeCatalog struct {
	badges []model.Badge
}

func (f *fakeCatalog) ListEnabled() ([]model.Badge, error) {
	return f.badges, nil
}

type fakeAwards struct {
	existing map[uint]bool
	dupOn    map[uint]bool // badge IDs whose insert loses a race

	awarded []model.UserBadge
}

func (f *fakeAwards) Award(ub *model.UserBadge) error {
	if f.dupOn[ub.BadgeID] {
		return gorm.ErrDuplicatedKey
	}
	f.awarded = append(f.awarded, *ub)
	return nil
}

func (f *fakeAwards) AwardedBadgeIDs(userID uint) (map[uint]bool, error) {
	if f.existing == nil {
		return map[uint]bool{}, nil
	}
	return f.existing, nil
}

// fakeBrowser mirrors the repository's guarded update: only a row matching
// both ids flips to seen, and a miss is a quiet no-op, not an error.
type fakeBrowser struct {
	rows  map[uint]*model.UserBadge
	calls int
}

func (f *fakeBrowser) ListUserBadges(userID uint) ([]model.UserBadge, error) {
	var out []model.UserBadge
	for _, ub := range f.rows {
		if ub.UserID == userID {
			out = append(out, *ub)
		}
	}
	return out, nil
}

func (f *fakeBrowser) MarkSeen(userID uint, userBadgeID uint) error {
	f.calls++
	if ub, ok := f.rows[userBadgeID]; ok && ub.UserID == userID {
		ub.Seen = true
	}
	return nil
}

type fakeStats struct {
	noteCount     int64
	noteStamps    []time.Time
	toastCount    int64
	shareCount    int64
	reactionCount int64
}

func (f *fakeStats) NoteCount(userID uint) (int64, error)           { return f.noteCount, nil }
func (f *fakeStats) NoteTimestamps(userID uint) ([]time.Time, error) { return f.noteStamps, nil }
func (f *fakeStats) ToastCount(userID uint) (int64, error)          { return f.toastCount, nil }
func (f *fakeStats) ShareCount(userID uint) (int64, error)          { return f.shareCount, nil }
func (f *fakeStats) ReactionCount(userID uint) (int64, error)       { return f.reactionCount, nil }

// --- harness ---

func badge(id uint, requirement string, threshold int) model.Badge {
	b := model.Badge{Requirement: requirement, Threshold: threshold, Enabled: true}
	b.ID = id
	return b
}

type badgeFixture struct {
	svc     *BadgeService
	awards  *fakeAwards
	browser *fakeBrowser
	stats   *fakeStats
	push    *fakeNotifier
}

func newBadgeFixture(user *model.User, badges []model.Badge, stats *fakeStats) *badgeFixture {
	f := &badgeFixture{
		awards:  &fakeAwards{},
		browser: &fakeBrowser{rows: map[uint]*model.UserBadge{}},
		stats:   stats,
		push:    &fakeNotifier{},
	}
	f.svc = NewBadgeService(&fakeCatalog{badges: badges}, f.awards, f.browser, stats, &fakeUsers{user: user}, f.push)
	return f
}

// --- tests ---

func TestMetricKindFromKey(t *testing.T) {
	for _, key := range []string{"note_total", "note_streak", "toast_total", "share_total", "reaction_total"} {
		kind, ok := MetricKindFromKey(key)
		require.True(t, ok, key)
		assert.Equal(t, key, kind.Key())
	}

	_, ok := MetricKindFromKey("follower_total")
	assert.False(t, ok)
}

func TestEvaluateAwardsCrossedThreshold(t *testing.T) {
	f := newBadgeFixture(testUser("UTC"),
		[]model.Badge{badge(1, "note_total", 1), badge(2, "note_total", 25)},
		&fakeStats{noteCount: 1})

	fresh, err := f.svc.Evaluate(1, model.ActivityNoteCreated, nil)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, uint(1), fresh[0].BadgeID)
	assert.False(t, fresh[0].AwardedAt.IsZero())

	require.Len(t, f.push.pushed, 1)
	assert.Equal(t, model.NotifyNewBadge, f.push.pushed[0].kind)
}

func TestEvaluateSkipsAlreadyAwarded(t *testing.T) {
	f := newBadgeFixture(testUser("UTC"),
		[]model.Badge{badge(1, "note_total", 1)},
		&fakeStats{noteCount: 5})
	f.awards.existing = map[uint]bool{1: true}

	fresh, err := f.svc.Evaluate(1, model.ActivityNoteCreated, nil)
	require.NoError(t, err)
	assert.Empty(t, fresh)
	assert.Empty(t, f.push.pushed)
}

func TestEvaluateAbsorbsConcurrentAward(t *testing.T) {
	f := newBadgeFixture(testUser("UTC"),
		[]model.Badge{badge(1, "note_total", 1), badge(2, "note_total", 25)},
		&fakeStats{noteCount: 30})
	f.awards.dupOn = map[uint]bool{1: true}

	fresh, err := f.svc.Evaluate(1, model.ActivityNoteCreated, nil)
	require.NoError(t, err)
	// Badge 1 lost the race and is skipped; badge 2 still lands.
	require.Len(t, fresh, 1)
	assert.Equal(t, uint(2), fresh[0].BadgeID)
}

func TestEvaluateBackfillsIntermediateBadges(t *testing.T) {
	f := newBadgeFixture(testUser("UTC"),
		[]model.Badge{
			badge(1, "note_total", 1),
			badge(2, "note_total", 25),
			badge(3, "note_total", 100),
		},
		&fakeStats{noteCount: 40})

	fresh, err := f.svc.Evaluate(1, model.ActivityNoteCreated, nil)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, uint(1), fresh[0].BadgeID)
	assert.Equal(t, uint(2), fresh[1].BadgeID)
}

func TestEvaluateOnlyChecksAffectedKinds(t *testing.T) {
	f := newBadgeFixture(testUser("UTC"),
		[]model.Badge{badge(1, "note_total", 1), badge(2, "toast_total", 1)},
		&fakeStats{noteCount: 10, toastCount: 1})

	fresh, err := f.svc.Evaluate(1, model.ActivityToastGenerated, nil)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, uint(2), fresh[0].BadgeID, "note badges must wait for a note activity")
}

func TestEvaluateCommentActivityAwardsNothing(t *testing.T) {
	f := newBadgeFixture(testUser("UTC"),
		[]model.Badge{badge(1, "note_total", 1)},
		&fakeStats{noteCount: 10})

	fresh, err := f.svc.Evaluate(1, model.ActivityCommentReceived, nil)
	require.NoError(t, err)
	assert.Empty(t, fresh)
}

func TestEvaluateAllChecksEveryKind(t *testing.T) {
	f := newBadgeFixture(testUser("UTC"),
		[]model.Badge{
			badge(1, "note_total", 1),
			badge(2, "toast_total", 1),
			badge(3, "share_total", 1),
			badge(4, "reaction_total", 10),
		},
		&fakeStats{noteCount: 3, toastCount: 1, shareCount: 2, reactionCount: 4})

	fresh, err := f.svc.EvaluateAll(1)
	require.NoError(t, err)
	require.Len(t, fresh, 3, "reaction badge is below threshold")
}

func TestEvaluateSkipsUnknownRequirement(t *testing.T) {
	f := newBadgeFixture(testUser("UTC"),
		[]model.Badge{badge(1, "friend_total", 1), badge(2, "note_total", 1)},
		&fakeStats{noteCount: 1})

	fresh, err := f.svc.Evaluate(1, model.ActivityNoteCreated, nil)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, uint(2), fresh[0].BadgeID)
}

func TestStreakEvaluatedInUserTimezone(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	// Three notes on three consecutive LA days. Projected onto UTC dates the
	// first two collapse onto Aug 30 and the evaluation instant (Aug 31 8pm
	// LA) is already Sep 1 UTC, a day with no note at all.
	now := time.Date(2026, 8, 31, 20, 0, 0, 0, la)
	stamps := []time.Time{
		time.Date(2026, 8, 29, 20, 0, 0, 0, la), // Aug 30 03:00 UTC
		time.Date(2026, 8, 30, 5, 0, 0, 0, la),  // Aug 30 12:00 UTC
		time.Date(2026, 8, 31, 8, 0, 0, 0, la),  // Aug 31 15:00 UTC
	}

	f := newBadgeFixture(testUser("America/Los_Angeles"),
		[]model.Badge{badge(1, "note_streak", 3)},
		&fakeStats{noteCount: 3, noteStamps: stamps})
	f.svc.now = func() time.Time { return now }

	fresh, err := f.svc.Evaluate(1, model.ActivityNoteCreated, nil)
	require.NoError(t, err)
	require.Len(t, fresh, 1, "3-day streak in LA time must award")

	// The same history viewed from a UTC profile has a gap and no streak.
	g := newBadgeFixture(testUser("UTC"),
		[]model.Badge{badge(1, "note_streak", 3)},
		&fakeStats{noteCount: 3, noteStamps: stamps})
	g.svc.now = func() time.Time { return now }

	fresh, err = g.svc.Evaluate(1, model.ActivityNoteCreated, nil)
	require.NoError(t, err)
	assert.Empty(t, fresh)
}

func TestMarkSeenIsIdempotent(t *testing.T) {
	f := newBadgeFixture(testUser("UTC"), nil, &fakeStats{})

	mine := &model.UserBadge{UserID: 1, BadgeID: 2}
	mine.ID = 7
	other := &model.UserBadge{UserID: 1, BadgeID: 3}
	other.ID = 8
	f.browser.rows[7] = mine
	f.browser.rows[8] = other

	require.NoError(t, f.svc.MarkSeen(1, 7))
	assert.True(t, mine.Seen)

	// Acknowledging again is a no-op and seen never reverts.
	require.NoError(t, f.svc.MarkSeen(1, 7))
	assert.True(t, mine.Seen)
	assert.Equal(t, 2, f.browser.calls)

	// A foreign user id misses the ownership guard and touches nothing.
	require.NoError(t, f.svc.MarkSeen(99, 8))
	assert.False(t, other.Seen)
}

func TestSnapshotMetrics(t *testing.T) {
	f := newBadgeFixture(testUser("UTC"), nil,
		&fakeStats{noteCount: 7, toastCount: 2, shareCount: 3, reactionCount: 11})

	snap, err := f.svc.Snapshot(1)
	require.NoError(t, err)
	assert.Equal(t, 7, snap.Metric(MetricNoteTotal))
	assert.Equal(t, 2, snap.Metric(MetricToastTotal))
	assert.Equal(t, 3, snap.Metric(MetricShareTotal))
	assert.Equal(t, 11, snap.Metric(MetricReactionTotal))
	assert.Equal(t, 0, snap.Metric(MetricNoteStreak))
}
