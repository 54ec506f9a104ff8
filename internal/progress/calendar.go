package progress

import (
	"fmt"
	"time"
)

// Day statuses used by the streak calendars.
const (
	DayActive   = "active"
	DaySkipped  = "skipped"
	DayUpcoming = "upcoming"
)

// DayStatus is one cell of a streak calendar.
type DayStatus struct {
	Date   string `json:"date"`   // YYYY-MM-DD
	Day    string `json:"day"`    // Monday, Tuesday, etc.
	Status string `json:"status"` // active, skipped, upcoming
}

// WeeklyStreak is the Monday to Sunday calendar containing an anchor date.
type WeeklyStreak struct {
	Week          string      `json:"week"` // YYYY-WW (ISO week)
	TotalStreak   int         `json:"total_streak"`
	CurrentStreak int         `json:"current_streak"`
	Days          []DayStatus `json:"days"`
}

// MonthlyStreak is the calendar of a single month.
type MonthlyStreak struct {
	Month         int         `json:"month"`
	Year          int         `json:"year"`
	TotalStreak   int         `json:"total_streak"`
	CurrentStreak int         `json:"current_streak"`
	Days          []DayStatus `json:"days"`
}

// CurrentStreak is the running streak as stored on the aggregate.
type CurrentStreak struct {
	CurrentStreak int  `json:"current_streak"`
	LongestStreak int  `json:"longest_streak"`
	ActiveToday   bool `json:"active_today"`
}

// Week builds the weekly calendar for the week containing anchor.
func Week(p Progress, anchor, now time.Time, loc *time.Location) WeeklyStreak {
	if loc == nil {
		loc = time.UTC
	}
	start := weekStart(truncateToDay(anchor.In(loc)))
	days, active := calendarDays(p.DailyHistory, start, 7, now.In(loc).Format(DayLayout))
	year, week := start.ISOWeek()
	return WeeklyStreak{
		Week:          fmt.Sprintf("%04d-%02d", year, week),
		TotalStreak:   active,
		CurrentStreak: p.CurrentStreak,
		Days:          days,
	}
}

// Month builds the calendar of the given month.
func Month(p Progress, year int, month time.Month, now time.Time, loc *time.Location) MonthlyStreak {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	length := start.AddDate(0, 1, -1).Day()
	days, active := calendarDays(p.DailyHistory, start, length, now.In(loc).Format(DayLayout))
	return MonthlyStreak{
		Month:         int(month),
		Year:          year,
		TotalStreak:   active,
		CurrentStreak: p.CurrentStreak,
		Days:          days,
	}
}

// Current reports the stored streak counters and whether today already counts.
func Current(p Progress, now time.Time, loc *time.Location) CurrentStreak {
	if loc == nil {
		loc = time.UTC
	}
	return CurrentStreak{
		CurrentStreak: p.CurrentStreak,
		LongestStreak: p.LongestStreak,
		ActiveToday:   p.DailyHistory[now.In(loc).Format(DayLayout)] > 0,
	}
}

func calendarDays(history map[string]int, start time.Time, n int, today string) ([]DayStatus, int) {
	days := make([]DayStatus, 0, n)
	active := 0
	for i := 0; i < n; i++ {
		day := start.AddDate(0, 0, i)
		key := day.Format(DayLayout)
		status := DaySkipped
		switch {
		case key > today:
			status = DayUpcoming
		case history[key] > 0:
			status = DayActive
			active++
		}
		days = append(days, DayStatus{Date: key, Day: day.Weekday().String(), Status: status})
	}
	return days, active
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// weekStart returns the Monday of the week containing t.
func weekStart(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.AddDate(0, 0, -(weekday - 1))
}
