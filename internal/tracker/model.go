package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/focusnest/prep-service/internal/progress"
)

// Record keys a journey is persisted under. Each key holds one JSON or document value.
const (
	KeyStartDate  = "start-date"
	KeyTasks      = "tasks"
	KeyProgress   = "progress"
	KeyMilestones = "milestones"
	KeyGoals      = "goals"
)

// RecordKeys lists every key a journey may occupy.
var RecordKeys = []string{KeyStartDate, KeyTasks, KeyProgress, KeyMilestones, KeyGoals}

// Journey is everything stored for one user.
type Journey struct {
	StartedAt  time.Time
	Tasks      []progress.Task
	Milestones []progress.Milestone
	Progress   progress.Progress
	// Goals is nil until the user configures them.
	Goals *progress.Goals
}

// Clone deep copies the journey.
func (j Journey) Clone() Journey {
	out := Journey{
		StartedAt:  j.StartedAt,
		Tasks:      progress.CloneTasks(j.Tasks),
		Milestones: progress.CloneMilestones(j.Milestones),
		Progress:   j.Progress.Clone(),
	}
	if j.Goals != nil {
		g := j.Goals.Clone()
		out.Goals = &g
	}
	return out
}

func (j Journey) state() progress.State {
	return progress.State{Tasks: j.Tasks, Milestones: j.Milestones, Progress: j.Progress, Goals: j.Goals}
}

// Store persists journeys. Save must write every record of a journey atomically.
type Store interface {
	// Load returns found == false when the user has no records yet.
	Load(ctx context.Context, userID string) (journey Journey, found bool, err error)
	Save(ctx context.Context, userID string, journey Journey) error
	Delete(ctx context.Context, userID string) error
}

// Publisher delivers domain events to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

// Clock delivers the current time; extracted for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces unique identifiers for new tasks, milestones and achievements.
type IDGenerator interface {
	NewID() string
}

var validate = validator.New()

// TaskDraft captures the data required to plan a new task.
type TaskDraft struct {
	Title          string `json:"title" validate:"required,max=200"`
	Category       string `json:"category" validate:"required"`
	TimeSlot       string `json:"time_slot" validate:"required"`
	XP             int    `json:"xp" validate:"gte=0"`
	QuestionsCount int    `json:"questions_count" validate:"gte=0"`
	SessionCount   int    `json:"session_count" validate:"gte=0"`
	TutorialCount  int    `json:"tutorial_count" validate:"gte=0"`
	ProjectName    string `json:"project_name" validate:"max=200"`
	CaseStudyName  string `json:"case_study_name" validate:"max=200"`
	ChapterName    string `json:"chapter_name" validate:"max=200"`
	DSATopic       string `json:"dsa_topic" validate:"max=200"`
}

// Validate checks field constraints and resolves the category and time slot.
func (d TaskDraft) Validate() (progress.Category, progress.TimeSlot, error) {
	d.Title = strings.TrimSpace(d.Title)

	var problems []string
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return "", "", err
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}

	category, ok := progress.ParseCategory(d.Category)
	if d.Category != "" && !ok {
		problems = append(problems, "category must be one of: "+joinNames(progress.Categories))
	}
	slot, ok := progress.ParseTimeSlot(d.TimeSlot)
	if d.TimeSlot != "" && !ok {
		problems = append(problems, "time_slot must be one of: "+joinNames(progress.TimeSlots))
	}

	if len(problems) > 0 {
		return "", "", errors.New(strings.Join(problems, "; "))
	}
	return category, slot, nil
}

func joinNames[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// ToggleResult is the outcome of a toggle as returned to callers.
type ToggleResult struct {
	// Task is nil when the task id was unknown; nothing changed in that case.
	Task       *progress.Task         `json:"task"`
	Progress   progress.Progress      `json:"progress"`
	Milestones []progress.Milestone   `json:"milestones"`
	Unlocked   []progress.Achievement `json:"unlocked"`
}

// ProgressView is the aggregate together with its level breakdown.
type ProgressView struct {
	progress.Progress
	LevelProgress progress.LevelProgress `json:"level_progress"`
}
