package progress

import (
	"math"
	"time"
)

// DefaultJourneyDays is the length of a preparation journey.
const DefaultJourneyDays = 60

// SummaryInput gathers what the dashboard read model is computed from.
type SummaryInput struct {
	Progress    Progress
	Tasks       []Task
	Goals       *Goals
	StartedAt   time.Time
	Now         time.Time
	Location    *time.Location
	JourneyDays int
}

// Summary is the dashboard view of a journey.
type Summary struct {
	TotalXP           int            `json:"total_xp"`
	Level             LevelProgress  `json:"level"`
	CurrentStreak     int            `json:"current_streak"`
	LongestStreak     int            `json:"longest_streak"`
	CompletedTasks    int            `json:"completed_tasks"`
	Achievements      int            `json:"achievements"`
	TasksToday        int            `json:"tasks_today"`
	DSAQuestionsToday int            `json:"dsa_questions_today"`
	TotalDSAQuestions int            `json:"total_dsa_questions"`
	ActiveDSADays     int            `json:"active_dsa_days"`
	AverageDSAPerDay  int            `json:"average_dsa_per_day"`
	Journey           Journey        `json:"journey"`
	Goals             []GoalProgress `json:"goals,omitempty"`
	Topics            []TopicStatus  `json:"topics,omitempty"`
}

// Journey locates today within the preparation window.
type Journey struct {
	StartedAt     time.Time `json:"started_at"`
	TotalDays     int       `json:"total_days"`
	DaysElapsed   int       `json:"days_elapsed"`
	DaysRemaining int       `json:"days_remaining"`
}

// Summarize computes the dashboard read model.
func Summarize(in SummaryInput) Summary {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	days := in.JourneyDays
	if days <= 0 {
		days = DefaultJourneyDays
	}
	today := in.Now.In(loc).Format(DayLayout)
	p := in.Progress

	total, activeDays := 0, 0
	for _, n := range p.DSAQuestionsHistory {
		total += n
		if n > 0 {
			activeDays++
		}
	}

	elapsed := daysBetween(in.StartedAt.In(loc), in.Now.In(loc))

	return Summary{
		TotalXP:           p.TotalXP,
		Level:             ProgressToNextLevel(p.TotalXP),
		CurrentStreak:     p.CurrentStreak,
		LongestStreak:     p.LongestStreak,
		CompletedTasks:    p.CompletedTasks,
		Achievements:      len(p.Achievements),
		TasksToday:        p.DailyHistory[today],
		DSAQuestionsToday: p.DSAQuestionsHistory[today],
		TotalDSAQuestions: total,
		ActiveDSADays:     activeDays,
		AverageDSAPerDay:  int(math.Round(float64(total) / float64(max(activeDays, 1)))),
		Journey: Journey{
			StartedAt:     in.StartedAt,
			TotalDays:     days,
			DaysElapsed:   elapsed,
			DaysRemaining: max(days-elapsed, 0),
		},
		Goals:  GoalsProgress(in.Goals, in.Tasks, p),
		Topics: TopicsProgress(in.Goals, p),
	}
}

// daysBetween counts calendar midnights from start to end; both are already in the display zone.
func daysBetween(start, end time.Time) int {
	if start.IsZero() {
		return 0
	}
	s := truncateToDay(start)
	e := truncateToDay(end)
	n := 0
	for s.Before(e) {
		s = s.AddDate(0, 0, 1)
		n++
	}
	return n
}
