package events

import "time"

// TaskToggled is emitted after a task completion flips and the new state is stored.
type TaskToggled struct {
	UserID    string    `json:"userId"`
	TaskID    string    `json:"taskId"`
	Category  string    `json:"category"`
	Completed bool      `json:"completed"`
	XPDelta   int       `json:"xpDelta"`
	TotalXP   int       `json:"totalXp"`
	Level     int       `json:"level"`
	ToggledAt time.Time `json:"toggledAt"`
}

// AchievementUnlocked is emitted once per achievement appended to a user's log.
type AchievementUnlocked struct {
	UserID        string    `json:"userId"`
	AchievementID string    `json:"achievementId"`
	Title         string    `json:"title"`
	Type          string    `json:"type"`
	UnlockedAt    time.Time `json:"unlockedAt"`
}

// JourneyReset is emitted when a user wipes their journey and starts over.
type JourneyReset struct {
	UserID    string    `json:"userId"`
	StartedAt time.Time `json:"startedAt"`
}
