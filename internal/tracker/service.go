package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/focusnest/prep-service/internal/progress"
	"github.com/focusnest/prep-service/shared-libs/events"
	"github.com/focusnest/prep-service/shared-libs/logging"
	"github.com/focusnest/prep-service/shared-libs/pubsub"
)

// Options tunes a Service. Zero values fall back to sensible defaults.
type Options struct {
	// Location buckets completions into calendar days. UTC when nil.
	Location *time.Location
	// Catalog seeds the milestones of new journeys. The built-in catalog when empty.
	Catalog []progress.Milestone
	// JourneyDays is the length of a journey on the dashboard.
	JourneyDays int
	Publisher   Publisher
	Logger      *slog.Logger
}

// Service orchestrates journeys: it loads them, runs the progress engine and stores the result.
type Service struct {
	store       Store
	clock       Clock
	ids         IDGenerator
	engine      *progress.Engine
	publisher   Publisher
	logger      *slog.Logger
	catalog     []progress.Milestone
	journeyDays int
	locks       userLocks
}

// NewService constructs a Service instance with the provided collaborators.
func NewService(store Store, clock Clock, ids IDGenerator, opts Options) (*Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if clock == nil {
		return nil, errors.New("clock is required")
	}
	if ids == nil {
		return nil, errors.New("id generator is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = NewLogPublisher(logger)
	}
	days := opts.JourneyDays
	if days <= 0 {
		days = progress.DefaultJourneyDays
	}

	return &Service{
		store:       store,
		clock:       clock,
		ids:         ids,
		engine:      progress.NewEngine(opts.Location, ids),
		publisher:   publisher,
		logger:      logger,
		catalog:     progress.CloneMilestones(opts.Catalog),
		journeyDays: days,
	}, nil
}

// Location returns the zone calendar days are computed in.
func (s *Service) Location() *time.Location {
	return s.engine.Location()
}

// AddTask plans a new, not yet completed task.
func (s *Service) AddTask(ctx context.Context, userID string, draft TaskDraft) (progress.Task, error) {
	if userID == "" {
		return progress.Task{}, ErrMissingUserID
	}
	category, slot, err := draft.Validate()
	if err != nil {
		return progress.Task{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	task := progress.Task{
		ID:             s.ids.NewID(),
		Title:          strings.TrimSpace(draft.Title),
		Category:       category,
		TimeSlot:       slot,
		XP:             draft.XP,
		CreatedAt:      s.clock.Now().UTC(),
		QuestionsCount: draft.QuestionsCount,
		SessionCount:   draft.SessionCount,
		TutorialCount:  draft.TutorialCount,
		ProjectName:    strings.TrimSpace(draft.ProjectName),
		CaseStudyName:  strings.TrimSpace(draft.CaseStudyName),
		ChapterName:    strings.TrimSpace(draft.ChapterName),
		DSATopic:       strings.TrimSpace(draft.DSATopic),
	}

	err = s.update(ctx, userID, func(j *Journey) (bool, error) {
		j.Tasks = append(j.Tasks, task)
		return true, nil
	})
	if err != nil {
		return progress.Task{}, err
	}
	return task, nil
}

// ToggleTask flips the completion of a task and applies every derived progress rule.
// An unknown task id leaves the journey untouched and returns a result with a nil Task.
func (s *Service) ToggleTask(ctx context.Context, userID, taskID string) (ToggleResult, error) {
	if userID == "" {
		return ToggleResult{}, ErrMissingUserID
	}

	var (
		out    progress.Transition
		before int
		now    = s.clock.Now()
	)
	err := s.update(ctx, userID, func(j *Journey) (bool, error) {
		before = j.Progress.TotalXP
		out = s.engine.Toggle(j.state(), taskID, now)
		if out.Task == nil {
			return false, nil
		}
		j.Tasks = out.Tasks
		j.Milestones = out.Milestones
		j.Progress = out.Progress
		return true, nil
	})
	if err != nil {
		return ToggleResult{}, err
	}

	result := ToggleResult{
		Task:       out.Task,
		Progress:   out.Progress,
		Milestones: out.Milestones,
		Unlocked:   out.Unlocked,
	}
	if out.Task == nil {
		return result, nil
	}

	logger := logging.WithUser(s.logger, userID)
	logger.InfoContext(ctx, "task toggled",
		"taskId", out.Task.ID,
		"completed", out.Task.Completed,
		"totalXp", out.Progress.TotalXP,
		"level", out.Progress.Level,
		"unlocked", len(out.Unlocked),
	)
	s.publishToggle(ctx, logger, userID, out, out.Progress.TotalXP-before, now)
	return result, nil
}

func (s *Service) publishToggle(ctx context.Context, logger *slog.Logger, userID string, out progress.Transition, xpDelta int, at time.Time) {
	s.publish(ctx, logger, pubsub.TopicTaskEvents, events.TaskToggled{
		UserID:    userID,
		TaskID:    out.Task.ID,
		Category:  string(out.Task.Category),
		Completed: out.Task.Completed,
		XPDelta:   xpDelta,
		TotalXP:   out.Progress.TotalXP,
		Level:     out.Progress.Level,
		ToggledAt: at.UTC(),
	})
	for _, a := range out.Unlocked {
		s.publish(ctx, logger, pubsub.TopicAchievementEvents, events.AchievementUnlocked{
			UserID:        userID,
			AchievementID: a.ID,
			Title:         a.Title,
			Type:          string(a.Type),
			UnlockedAt:    a.UnlockedAt.UTC(),
		})
	}
}

// publish never fails the caller: the journey is already stored.
func (s *Service) publish(ctx context.Context, logger *slog.Logger, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		logger.WarnContext(ctx, "publish event failed", "topic", topic, "error", err)
	}
}

// DeleteTask removes a task. Progress already earned by it is kept.
func (s *Service) DeleteTask(ctx context.Context, userID, taskID string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	return s.update(ctx, userID, func(j *Journey) (bool, error) {
		for i, t := range j.Tasks {
			if t.ID == taskID {
				j.Tasks = append(j.Tasks[:i:i], j.Tasks[i+1:]...)
				return true, nil
			}
		}
		return false, ErrNotFound
	})
}

// ListTasks returns tasks in planning order, optionally restricted to one time slot.
func (s *Service) ListTasks(ctx context.Context, userID, slot string) ([]progress.Task, error) {
	var filter progress.TimeSlot
	if slot != "" {
		parsed, ok := progress.ParseTimeSlot(slot)
		if !ok {
			return nil, fmt.Errorf("%w: time_slot must be one of: %s", ErrInvalidInput, joinNames(progress.TimeSlots))
		}
		filter = parsed
	}

	j, err := s.journey(ctx, userID)
	if err != nil {
		return nil, err
	}
	if filter == "" {
		return j.Tasks, nil
	}
	out := make([]progress.Task, 0, len(j.Tasks))
	for _, t := range j.Tasks {
		if t.TimeSlot == filter {
			out = append(out, t)
		}
	}
	return out, nil
}

// GetProgress returns the aggregate with its level breakdown.
func (s *Service) GetProgress(ctx context.Context, userID string) (ProgressView, error) {
	j, err := s.journey(ctx, userID)
	if err != nil {
		return ProgressView{}, err
	}
	return ProgressView{Progress: j.Progress, LevelProgress: progress.ProgressToNextLevel(j.Progress.TotalXP)}, nil
}

// ListMilestones returns milestones grouped by category.
func (s *Service) ListMilestones(ctx context.Context, userID string) ([]progress.MilestoneGroup, error) {
	j, err := s.journey(ctx, userID)
	if err != nil {
		return nil, err
	}
	return progress.MilestonesByCategory(j.Milestones), nil
}

// ListAchievements returns the achievement log, most recent first.
func (s *Service) ListAchievements(ctx context.Context, userID string) ([]progress.Achievement, error) {
	j, err := s.journey(ctx, userID)
	if err != nil {
		return nil, err
	}
	history := j.Progress.Achievements
	out := make([]progress.Achievement, len(history))
	for i, a := range history {
		out[len(history)-1-i] = a
	}
	return out, nil
}

// GetGoals returns the configured goals, or nil when none are set.
func (s *Service) GetGoals(ctx context.Context, userID string) (*progress.Goals, error) {
	j, err := s.journey(ctx, userID)
	if err != nil {
		return nil, err
	}
	return j.Goals, nil
}

// UpdateGoals replaces the goal configuration. Targets of topics already being tracked are kept.
func (s *Service) UpdateGoals(ctx context.Context, userID string, goals progress.Goals) (progress.Goals, error) {
	if userID == "" {
		return progress.Goals{}, ErrMissingUserID
	}
	goals = goals.Normalize()
	if err := validate.Struct(goals); err != nil {
		return progress.Goals{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	err := s.update(ctx, userID, func(j *Journey) (bool, error) {
		g := goals.Clone()
		j.Goals = &g
		return true, nil
	})
	if err != nil {
		return progress.Goals{}, err
	}
	return goals, nil
}

// ResetJourney discards every record of the user. The next access starts a fresh journey.
func (s *Service) ResetJourney(ctx context.Context, userID string) (Journey, error) {
	if userID == "" {
		return Journey{}, ErrMissingUserID
	}
	unlock := s.locks.lock(userID)
	defer unlock()

	if err := s.store.Delete(ctx, userID); err != nil {
		return Journey{}, fmt.Errorf("delete journey: %w", err)
	}
	j, err := s.loadOrSeed(ctx, userID)
	if err != nil {
		return Journey{}, err
	}

	logger := logging.WithUser(s.logger, userID)
	logger.InfoContext(ctx, "journey reset", "startedAt", j.StartedAt)
	s.publish(ctx, logger, pubsub.TopicJourneyEvents, events.JourneyReset{UserID: userID, StartedAt: j.StartedAt})
	return j, nil
}

// Summary computes the dashboard of the user's journey.
func (s *Service) Summary(ctx context.Context, userID string) (progress.Summary, error) {
	j, err := s.journey(ctx, userID)
	if err != nil {
		return progress.Summary{}, err
	}
	return progress.Summarize(progress.SummaryInput{
		Progress:    j.Progress,
		Tasks:       j.Tasks,
		Goals:       j.Goals,
		StartedAt:   j.StartedAt,
		Now:         s.clock.Now(),
		Location:    s.Location(),
		JourneyDays: s.journeyDays,
	}), nil
}

// CurrentStreak reports the stored streak counters.
func (s *Service) CurrentStreak(ctx context.Context, userID string) (progress.CurrentStreak, error) {
	j, err := s.journey(ctx, userID)
	if err != nil {
		return progress.CurrentStreak{}, err
	}
	return progress.Current(j.Progress, s.clock.Now(), s.Location()), nil
}

// WeeklyStreak returns the activity calendar of the week containing anchor (today when zero).
func (s *Service) WeeklyStreak(ctx context.Context, userID string, anchor time.Time) (progress.WeeklyStreak, error) {
	j, err := s.journey(ctx, userID)
	if err != nil {
		return progress.WeeklyStreak{}, err
	}
	now := s.clock.Now()
	if anchor.IsZero() {
		anchor = now
	}
	return progress.Week(j.Progress, anchor, now, s.Location()), nil
}

// MonthlyStreak returns the activity calendar of a month (the current one when year or month is zero).
func (s *Service) MonthlyStreak(ctx context.Context, userID string, year int, month time.Month) (progress.MonthlyStreak, error) {
	if month < 0 || month > time.December {
		return progress.MonthlyStreak{}, fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
	}
	j, err := s.journey(ctx, userID)
	if err != nil {
		return progress.MonthlyStreak{}, err
	}
	now := s.clock.Now()
	if year == 0 || month == 0 {
		local := now.In(s.Location())
		year, month = local.Year(), local.Month()
	}
	return progress.Month(j.Progress, year, month, now, s.Location()), nil
}

// journey loads (seeding when needed) under the user's lock.
func (s *Service) journey(ctx context.Context, userID string) (Journey, error) {
	if userID == "" {
		return Journey{}, ErrMissingUserID
	}
	unlock := s.locks.lock(userID)
	defer unlock()
	return s.loadOrSeed(ctx, userID)
}

// update runs fn on the user's journey under the user's lock and saves it when fn reports a change.
func (s *Service) update(ctx context.Context, userID string, fn func(*Journey) (bool, error)) error {
	unlock := s.locks.lock(userID)
	defer unlock()

	j, err := s.loadOrSeed(ctx, userID)
	if err != nil {
		return err
	}
	changed, err := fn(&j)
	if err != nil || !changed {
		return err
	}
	if err := s.store.Save(ctx, userID, j); err != nil {
		s.logger.ErrorContext(ctx, "save journey failed", "userId", userID, "error", err)
		return fmt.Errorf("save journey: %w", err)
	}
	return nil
}

// loadOrSeed must be called with the user's lock held.
func (s *Service) loadOrSeed(ctx context.Context, userID string) (Journey, error) {
	j, found, err := s.store.Load(ctx, userID)
	if err != nil {
		return Journey{}, fmt.Errorf("load journey: %w", err)
	}
	if found {
		j.Progress = j.Progress.Clone()
		if j.Progress.Level == 0 {
			j.Progress.Level = progress.LevelForXP(j.Progress.TotalXP)
		}
		return j, nil
	}

	j = s.newJourney()
	if err := s.store.Save(ctx, userID, j); err != nil {
		return Journey{}, fmt.Errorf("seed journey: %w", err)
	}
	s.logger.InfoContext(ctx, "journey started", "userId", userID, "milestones", len(j.Milestones))
	return j, nil
}

func (s *Service) newJourney() Journey {
	var milestones []progress.Milestone
	if len(s.catalog) > 0 {
		milestones = progress.SeedMilestones(s.catalog, s.ids)
	} else {
		milestones = progress.DefaultMilestones(s.ids)
	}
	return Journey{
		StartedAt:  s.clock.Now().UTC(),
		Tasks:      []progress.Task{},
		Milestones: milestones,
		Progress:   progress.NewProgress(),
	}
}
