package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProgressToNextLevel(t *testing.T) {
	cases := []struct {
		xp   int
		want LevelProgress
	}{
		{0, LevelProgress{Level: 1, XPIntoLevel: 0, XPForNextLevel: 1000, NextLevelAt: 1000, Percent: 0}},
		{999, LevelProgress{Level: 1, XPIntoLevel: 999, XPForNextLevel: 1, NextLevelAt: 1000, Percent: 99}},
		{1000, LevelProgress{Level: 2, XPIntoLevel: 0, XPForNextLevel: 1000, NextLevelAt: 2000, Percent: 0}},
		{2750, LevelProgress{Level: 3, XPIntoLevel: 750, XPForNextLevel: 250, NextLevelAt: 3000, Percent: 75}},
		{-40, LevelProgress{Level: 1, XPIntoLevel: 0, XPForNextLevel: 1000, NextLevelAt: 1000, Percent: 0}},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ProgressToNextLevel(tc.xp), "xp=%d", tc.xp)
		require.Equal(t, tc.want.Level, LevelForXP(tc.xp))
	}
}

func TestWeek(t *testing.T) {
	p := NewProgress()
	p.CurrentStreak = 2
	p.DailyHistory["2026-03-08"] = 4 // previous week
	p.DailyHistory["2026-03-09"] = 2
	p.DailyHistory["2026-03-10"] = 1
	p.DailyHistory["2026-03-11"] = 5 // after today

	w := Week(p, testNow, testNow, time.UTC)

	require.Equal(t, "2026-11", w.Week)
	require.Equal(t, 2, w.TotalStreak)
	require.Equal(t, 2, w.CurrentStreak)
	require.Len(t, w.Days, 7)
	require.Equal(t, DayStatus{Date: "2026-03-09", Day: "Monday", Status: DayActive}, w.Days[0])
	require.Equal(t, DayActive, w.Days[1].Status)
	require.Equal(t, DayUpcoming, w.Days[2].Status)
	require.Equal(t, "Sunday", w.Days[6].Day)
	require.Equal(t, "2026-03-15", w.Days[6].Date)
}

func TestWeekAnchorOnSunday(t *testing.T) {
	sunday := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	w := Week(NewProgress(), sunday, testNow, time.UTC)
	require.Equal(t, "2026-03-09", w.Days[0].Date)
}

func TestWeekUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 2026-03-08 23:00 UTC is Monday morning in Tokyo.
	anchor := time.Date(2026, time.March, 8, 23, 0, 0, 0, time.UTC)
	w := Week(NewProgress(), anchor, testNow, tokyo)
	require.Equal(t, "2026-03-09", w.Days[0].Date)
}

func TestMonth(t *testing.T) {
	p := NewProgress()
	p.DailyHistory["2026-03-01"] = 1
	p.DailyHistory["2026-03-10"] = 3
	p.DailyHistory["2026-02-28"] = 1

	m := Month(p, 2026, time.March, testNow, time.UTC)

	require.Equal(t, 3, m.Month)
	require.Equal(t, 2026, m.Year)
	require.Len(t, m.Days, 31)
	require.Equal(t, 2, m.TotalStreak)
	require.Equal(t, DayStatus{Date: "2026-03-01", Day: "Sunday", Status: DayActive}, m.Days[0])
	require.Equal(t, DaySkipped, m.Days[1].Status)
	require.Equal(t, DayUpcoming, m.Days[30].Status)

	feb := Month(p, 2028, time.February, testNow, time.UTC)
	require.Len(t, feb.Days, 29)
}

func TestCurrent(t *testing.T) {
	p := NewProgress()
	p.CurrentStreak, p.LongestStreak = 3, 9

	require.Equal(t, CurrentStreak{CurrentStreak: 3, LongestStreak: 9}, Current(p, testNow, time.UTC))

	p.DailyHistory["2026-03-10"] = 1
	require.True(t, Current(p, testNow, time.UTC).ActiveToday)
}

func TestSummarize(t *testing.T) {
	p := NewProgress()
	p.TotalXP = 2300
	p.CurrentStreak, p.LongestStreak = 2, 5
	p.CompletedTasks = 4
	p.Achievements = []Achievement{{ID: "a1", Title: TitleDSADailyChampion}}
	p.DailyHistory["2026-03-10"] = 2
	p.DSAQuestionsHistory["2026-03-08"] = 6
	p.DSAQuestionsHistory["2026-03-09"] = 10
	p.DSAQuestionsHistory["2026-03-10"] = 5

	s := Summarize(SummaryInput{
		Progress:    p,
		StartedAt:   time.Date(2026, time.March, 1, 21, 0, 0, 0, time.UTC),
		Now:         testNow,
		JourneyDays: 60,
	})

	require.Equal(t, 2300, s.TotalXP)
	require.Equal(t, 3, s.Level.Level)
	require.Equal(t, 2, s.TasksToday)
	require.Equal(t, 5, s.DSAQuestionsToday)
	require.Equal(t, 21, s.TotalDSAQuestions)
	require.Equal(t, 3, s.ActiveDSADays)
	require.Equal(t, 7, s.AverageDSAPerDay)
	require.Equal(t, 1, s.Achievements)
	require.Equal(t, Journey{
		StartedAt:     time.Date(2026, time.March, 1, 21, 0, 0, 0, time.UTC),
		TotalDays:     60,
		DaysElapsed:   9,
		DaysRemaining: 51,
	}, s.Journey)
	require.Nil(t, s.Goals)
	require.Nil(t, s.Topics)
}

func TestSummarizeEmptyJourney(t *testing.T) {
	s := Summarize(SummaryInput{Progress: NewProgress(), Now: testNow})
	require.Equal(t, 0, s.AverageDSAPerDay)
	require.Equal(t, DefaultJourneyDays, s.Journey.TotalDays)
	require.Equal(t, 0, s.Journey.DaysElapsed)
	require.Equal(t, 1, s.Level.Level)
}

func TestGoalsProgress(t *testing.T) {
	goals := &Goals{
		DSAQuestions:            100,
		WebDevProjects:          []string{"Portfolio", "Chat App"},
		MockInterviews:          4,
		EnglishSpeakingSessions: 1,
	}
	tasks := []Task{
		{Category: CategoryWebDev, ProjectName: " portfolio ", Completed: true},
		{Category: CategoryWebDev, ProjectName: "Chat App"},
		{Category: CategoryMockInterview, Completed: true},
		{Category: CategoryMockInterview, SessionCount: 2, Completed: true},
		{Category: CategoryEnglishSpeaking, SessionCount: 3, Completed: true},
	}
	p := NewProgress()
	p.DSAQuestionsHistory["2026-03-09"] = 21

	got := GoalsProgress(goals, tasks, p)
	require.Len(t, got, len(Categories))

	byCategory := map[Category]GoalProgress{}
	for _, g := range got {
		byCategory[g.Category] = g
	}

	require.Equal(t, GoalProgress{Category: CategoryDSA, Target: 100, Done: 21, Percent: 21}, byCategory[CategoryDSA])

	web := byCategory[CategoryWebDev]
	require.Equal(t, 2, web.Target)
	require.Equal(t, 1, web.Done)
	require.Equal(t, 50, web.Percent)
	require.Equal(t, []ItemStatus{{Name: "Portfolio", Done: true}, {Name: "Chat App", Done: false}}, web.Items)

	require.Equal(t, 3, byCategory[CategoryMockInterview].Done)
	require.Equal(t, 75, byCategory[CategoryMockInterview].Percent)
	require.Equal(t, 100, byCategory[CategoryEnglishSpeaking].Percent)
	require.Equal(t, 0, byCategory[CategoryDataScience].Percent)

	require.Nil(t, GoalsProgress(nil, tasks, p))
}

func TestTopicsProgress(t *testing.T) {
	goals := &Goals{DSATopics: []DSATopicGoal{
		{Name: "Graphs", TargetQuestions: 30},
		{Name: "Trees", TargetQuestions: 20},
	}}
	p := NewProgress()
	p.Topics["Graphs"] = TopicProgress{QuestionsCompleted: 12, TotalQuestions: 30}

	require.Equal(t, []TopicStatus{
		{Name: "Graphs", TargetQuestions: 30, QuestionsCompleted: 12},
		{Name: "Trees", TargetQuestions: 20},
	}, TopicsProgress(goals, p))

	require.Nil(t, TopicsProgress(&Goals{}, p))
}
