package util

import "time"

// Calendar helpers for week windows and streaks. Everything here operates in
// an explicit *time.Location; callers pass the user's zone, never the
// server's.

// WeekStart returns Monday 00:00 of the week containing t, in loc.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	// Weekday() is Sunday==0; shift so Monday==0.
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return day.AddDate(0, 0, -offset)
}

// DateIn reinterprets the calendar date of t in loc. Client-supplied dates
// parse to UTC midnight, which for a user west of UTC is still the previous
// day; anchoring at noon in their zone keeps the date on the intended day
// regardless of offset or DST shifts.
func DateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, loc)
}

// WeekWindow returns the [start, end) bounds of the week containing t.
func WeekWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := WeekStart(t, loc)
	return start, start.AddDate(0, 0, 7)
}

// DayKey buckets a timestamp into its calendar date in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateFormat)
}

// StreakDays counts consecutive calendar days ending at now (inclusive) that
// each have at least one timestamp in stamps. A day with no entry breaks the
// streak, so a user with notes yesterday but none today has streak 0.
func StreakDays(stamps []time.Time, now time.Time, loc *time.Location) int {
	if len(stamps) == 0 {
		return 0
	}
	days := make(map[string]struct{}, len(stamps))
	for _, s := range stamps {
		days[DayKey(s, loc)] = struct{}{}
	}

	streak := 0
	cur := now.In(loc)
	for {
		if _, ok := days[DayKey(cur, loc)]; !ok {
			break
		}
		streak++
		cur = cur.AddDate(0, 0, -1)
	}
	return streak
}
