package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekStartMondayAnchor(t *testing.T) {
	// A Wednesday afternoon maps back to its Monday midnight.
	wed := time.Date(2026, 8, 26, 15, 30, 0, 0, time.UTC)
	got := WeekStart(wed, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), got)

	// Monday itself is its own week start.
	mon := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, mon, WeekStart(mon, time.UTC))

	// Sunday belongs to the week that began six days earlier.
	sun := time.Date(2026, 8, 30, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, mon, WeekStart(sun, time.UTC))
}

func TestWeekStartRespectsLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// Sunday 22:00 UTC is already Monday 07:00 in Tokyo, so the Tokyo week
	// has rolled over while the UTC week has not.
	instant := time.Date(2026, 8, 30, 22, 0, 0, 0, time.UTC)

	utcStart := WeekStart(instant, time.UTC)
	tokyoStart := WeekStart(instant, tokyo)

	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), utcStart)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, tokyo), tokyoStart)
}

func TestDateInKeepsCalendarDate(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	// A query date parses to UTC midnight. Converted as an instant it would
	// still be the previous evening in Los Angeles; DateIn keeps the day.
	parsed, err := time.Parse(DateFormat, "2026-08-31")
	require.NoError(t, err)

	got := DateIn(parsed, la)
	y, m, d := got.Date()
	assert.Equal(t, 2026, y)
	assert.Equal(t, time.August, m)
	assert.Equal(t, 31, d)
	assert.Equal(t, la, got.Location())

	// The reinterpreted anchor lands in the week of Aug 31, not Aug 24.
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, la), WeekStart(got, la))
}

func TestWeekWindowIsSevenDays(t *testing.T) {
	start, end := WeekWindow(time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, 7*24*time.Hour, end.Sub(start))
}

func TestStreakDays(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 8, 31, 18, 0, 0, 0, loc)

	day := func(offset int, hour int) time.Time {
		return time.Date(2026, 8, 31+offset, hour, 0, 0, 0, loc)
	}

	t.Run("consecutive days count", func(t *testing.T) {
		stamps := []time.Time{day(0, 8), day(-1, 9), day(-2, 22)}
		assert.Equal(t, 3, StreakDays(stamps, now, loc))
	})

	t.Run("gap breaks the streak", func(t *testing.T) {
		stamps := []time.Time{day(0, 8), day(-2, 9)}
		assert.Equal(t, 1, StreakDays(stamps, now, loc))
	})

	t.Run("no note today means no streak", func(t *testing.T) {
		stamps := []time.Time{day(-1, 8), day(-2, 9)}
		assert.Equal(t, 0, StreakDays(stamps, now, loc))
	})

	t.Run("several notes on one day count once", func(t *testing.T) {
		stamps := []time.Time{day(0, 8), day(0, 12), day(0, 20)}
		assert.Equal(t, 1, StreakDays(stamps, now, loc))
	})

	t.Run("empty history", func(t *testing.T) {
		assert.Equal(t, 0, StreakDays(nil, now, loc))
	})
}
