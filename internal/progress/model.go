package progress

import (
	"strings"
	"time"
)

// Task is a planned unit of preparation work.
//
// Completed and CompletedAt are only flipped by Engine.Toggle; CompletedAt is set iff Completed.
// Credits records, per milestone ID, the increment the engine applied when the task was completed
// so that un-completing it subtracts exactly the same amounts. TopicKey and TopicCredit do the same
// for the DSA topic entry the task advanced.
type Task struct {
	ID             string         `json:"id" firestore:"id"`
	Title          string         `json:"title" firestore:"title"`
	Category       Category       `json:"category" firestore:"category"`
	TimeSlot       TimeSlot       `json:"time_slot" firestore:"time_slot"`
	Completed      bool           `json:"completed" firestore:"completed"`
	XP             int            `json:"xp" firestore:"xp"`
	CreatedAt      time.Time      `json:"created_at" firestore:"created_at"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty" firestore:"completed_at"`
	QuestionsCount int            `json:"questions_count,omitempty" firestore:"questions_count"`
	SessionCount   int            `json:"session_count,omitempty" firestore:"session_count"`
	TutorialCount  int            `json:"tutorial_count,omitempty" firestore:"tutorial_count"`
	ProjectName    string         `json:"project_name,omitempty" firestore:"project_name"`
	CaseStudyName  string         `json:"case_study_name,omitempty" firestore:"case_study_name"`
	ChapterName    string         `json:"chapter_name,omitempty" firestore:"chapter_name"`
	DSATopic       string         `json:"dsa_topic,omitempty" firestore:"dsa_topic"`
	Credits        map[string]int `json:"milestone_credits,omitempty" firestore:"milestone_credits"`
	TopicKey       string         `json:"topic_key,omitempty" firestore:"topic_key"`
	TopicCredit    int            `json:"topic_credit,omitempty" firestore:"topic_credit"`
}

// Milestone is a category scoped numeric goal with a one-time XP reward.
// Completed is true exactly when Current >= Target.
type Milestone struct {
	ID          string   `json:"id" firestore:"id" yaml:"id"`
	Title       string   `json:"title" firestore:"title" yaml:"title"`
	Description string   `json:"description" firestore:"description" yaml:"description"`
	Category    Category `json:"category" firestore:"category" yaml:"category"`
	Target      int      `json:"target" firestore:"target" yaml:"target"`
	Current     int      `json:"current" firestore:"current" yaml:"current"`
	XP          int      `json:"xp" firestore:"xp" yaml:"xp"`
	Completed   bool     `json:"completed" firestore:"completed" yaml:"completed"`
}

// AchievementType tags the rule that produced an achievement.
type AchievementType string

const (
	AchievementStreak    AchievementType = "streak"
	AchievementMilestone AchievementType = "milestone"
	AchievementXP        AchievementType = "xp"
	AchievementDaily     AchievementType = "daily"
	AchievementTopic     AchievementType = "topic"
)

// Achievement is an append-only unlock record.
type Achievement struct {
	ID          string          `json:"id" firestore:"id"`
	Title       string          `json:"title" firestore:"title"`
	Description string          `json:"description" firestore:"description"`
	Type        AchievementType `json:"type" firestore:"type"`
	UnlockedAt  time.Time       `json:"unlocked_at" firestore:"unlocked_at"`
}

// TopicProgress tracks questions solved against the target of one named DSA topic.
type TopicProgress struct {
	QuestionsCompleted int  `json:"questions_completed" firestore:"questions_completed"`
	TotalQuestions     int  `json:"total_questions" firestore:"total_questions"`
	Completed          bool `json:"completed" firestore:"completed"`
}

// Progress is the aggregate of everything derived from task completions.
// History maps are keyed by calendar day (YYYY-MM-DD).
type Progress struct {
	TotalXP             int                      `json:"total_xp" firestore:"total_xp"`
	Level               int                      `json:"level" firestore:"level"`
	CurrentStreak       int                      `json:"current_streak" firestore:"current_streak"`
	LongestStreak       int                      `json:"longest_streak" firestore:"longest_streak"`
	// StreakDay is the last day (YYYY-MM-DD) the streak counters moved.
	StreakDay           string                   `json:"streak_day,omitempty" firestore:"streak_day"`
	CompletedTasks      int                      `json:"completed_tasks" firestore:"completed_tasks"`
	Achievements        []Achievement            `json:"achievements" firestore:"achievements"`
	DailyHistory        map[string]int           `json:"daily_history" firestore:"daily_history"`
	DSAQuestionsHistory map[string]int           `json:"dsa_questions_history" firestore:"dsa_questions_history"`
	Topics              map[string]TopicProgress `json:"dsa_topics_progress" firestore:"dsa_topics_progress"`
}

// NewProgress returns the aggregate of a journey with no completions.
func NewProgress() Progress {
	return Progress{
		Level:               1,
		Achievements:        []Achievement{},
		DailyHistory:        map[string]int{},
		DSAQuestionsHistory: map[string]int{},
		Topics:              map[string]TopicProgress{},
	}
}

// Clone returns a deep copy so callers can hand snapshots around without aliasing.
func (p Progress) Clone() Progress {
	out := p
	out.Achievements = append([]Achievement{}, p.Achievements...)
	out.DailyHistory = cloneCounts(p.DailyHistory)
	out.DSAQuestionsHistory = cloneCounts(p.DSAQuestionsHistory)
	out.Topics = make(map[string]TopicProgress, len(p.Topics))
	for k, v := range p.Topics {
		out.Topics[k] = v
	}
	return out
}

// Goals is the user supplied configuration of per-category targets.
type Goals struct {
	DSAQuestions            int            `json:"dsa_questions" firestore:"dsa_questions" validate:"gte=0"`
	WebDevProjects          []string       `json:"web_dev_projects" firestore:"web_dev_projects"`
	SystemDesignCases       []string       `json:"system_design_cases" firestore:"system_design_cases"`
	MockInterviews          int            `json:"mock_interviews" firestore:"mock_interviews" validate:"gte=0"`
	DataScienceTutorials    int            `json:"data_science_tutorials" firestore:"data_science_tutorials" validate:"gte=0"`
	CSFundamentalsChapters  []string       `json:"cs_fundamentals_chapters" firestore:"cs_fundamentals_chapters"`
	EnglishSpeakingSessions int            `json:"english_speaking_sessions" firestore:"english_speaking_sessions" validate:"gte=0"`
	DSATopics               []DSATopicGoal `json:"dsa_topics,omitempty" firestore:"dsa_topics" validate:"dive"`
}

// DSATopicGoal is the question target for one named DSA topic.
type DSATopicGoal struct {
	Name            string `json:"name" firestore:"name" validate:"required"`
	TargetQuestions int    `json:"target_questions" firestore:"target_questions" validate:"gte=0"`
}

// Topic finds the configured topic matching name.
func (g *Goals) Topic(name string) (DSATopicGoal, bool) {
	if g == nil {
		return DSATopicGoal{}, false
	}
	for _, t := range g.DSATopics {
		if sameName(t.Name, name) {
			return t, true
		}
	}
	return DSATopicGoal{}, false
}

// Normalize trims names and drops blank entries from every list.
func (g Goals) Normalize() Goals {
	g.WebDevProjects = compactNames(g.WebDevProjects)
	g.SystemDesignCases = compactNames(g.SystemDesignCases)
	g.CSFundamentalsChapters = compactNames(g.CSFundamentalsChapters)
	topics := make([]DSATopicGoal, 0, len(g.DSATopics))
	for _, t := range g.DSATopics {
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			continue
		}
		topics = append(topics, t)
	}
	g.DSATopics = topics
	return g
}

// DefaultGoals mirrors the targets offered when a user first sets up goals.
func DefaultGoals() Goals {
	return Goals{
		DSAQuestions:   400,
		WebDevProjects: []string{"E-commerce Platform", "Task Management App"},
		SystemDesignCases: []string{
			"Design Twitter",
			"Design URL Shortener",
			"Design Chat System",
			"Design Video Streaming",
			"Design Search Engine",
		},
		MockInterviews:       20,
		DataScienceTutorials: 100,
		CSFundamentalsChapters: []string{
			"Operating Systems: Process Management",
			"Database Systems: SQL Fundamentals",
			"Computer Networks: TCP/IP",
			"Data Structures: Trees and Graphs",
		},
		EnglishSpeakingSessions: 30,
	}
}

// Clone deep copies the goal lists.
func (g Goals) Clone() Goals {
	g.WebDevProjects = append([]string(nil), g.WebDevProjects...)
	g.SystemDesignCases = append([]string(nil), g.SystemDesignCases...)
	g.CSFundamentalsChapters = append([]string(nil), g.CSFundamentalsChapters...)
	g.DSATopics = append([]DSATopicGoal(nil), g.DSATopics...)
	return g
}

func compactNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func cloneCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// CloneTasks deep copies tasks including completion timestamps and credit ledgers.
func CloneTasks(in []Task) []Task {
	out := make([]Task, len(in))
	for i, t := range in {
		if t.CompletedAt != nil {
			at := *t.CompletedAt
			t.CompletedAt = &at
		}
		if t.Credits != nil {
			t.Credits = cloneCounts(t.Credits)
		}
		out[i] = t
	}
	return out
}

// CloneMilestones copies a milestone list.
func CloneMilestones(in []Milestone) []Milestone {
	return append([]Milestone{}, in...)
}
