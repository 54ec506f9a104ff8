package progress

import (
	"strings"
	"time"
)

// DayLayout is the calendar-day key format used by every history map.
const DayLayout = "2006-01-02"

// IDGenerator produces identifiers for unlocked achievements.
type IDGenerator interface {
	NewID() string
}

// State is the input snapshot a transition is computed against. The engine never mutates it.
type State struct {
	Tasks      []Task
	Milestones []Milestone
	Progress   Progress
	Goals      *Goals
}

// Transition is the output snapshot of a toggle.
type Transition struct {
	Tasks      []Task
	Milestones []Milestone
	Progress   Progress
	// Unlocked holds the achievements appended by this transition, in unlock order.
	Unlocked []Achievement
	// Task is the toggled task after the transition, nil when the id was unknown.
	Task *Task
}

// Engine computes progress transitions. It holds no state between calls.
type Engine struct {
	loc *time.Location
	ids IDGenerator
}

// NewEngine builds an engine that buckets days in loc (UTC when nil).
func NewEngine(loc *time.Location, ids IDGenerator) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{loc: loc, ids: ids}
}

// Location returns the zone calendar days are computed in.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// DayKey formats t as the calendar day it falls on in the engine's zone.
func (e *Engine) DayKey(t time.Time) string {
	return t.In(e.loc).Format(DayLayout)
}

// Toggle flips the completion of taskID and returns the next state.
// An unknown task id yields a copy of the input state with Task == nil.
func (e *Engine) Toggle(state State, taskID string, now time.Time) Transition {
	tx := &transition{
		engine:     e,
		now:        now,
		today:      e.DayKey(now),
		goals:      state.Goals,
		tasks:      CloneTasks(state.Tasks),
		milestones: CloneMilestones(state.Milestones),
		progress:   state.Progress.Clone(),
	}

	idx := -1
	for i := range tx.tasks {
		if tx.tasks[i].ID == taskID {
			idx = i
			break
		}
	}

	if idx >= 0 {
		task := &tx.tasks[idx]
		if task.Completed {
			tx.uncomplete(task)
		} else {
			tx.complete(task)
		}
	}
	tx.progress.Level = LevelForXP(tx.progress.TotalXP)

	out := Transition{
		Tasks:      tx.tasks,
		Milestones: tx.milestones,
		Progress:   tx.progress,
		Unlocked:   tx.unlocked,
	}
	if idx >= 0 {
		toggled := tx.tasks[idx]
		out.Task = &toggled
	}
	return out
}

type transition struct {
	engine     *Engine
	now        time.Time
	today      string
	goals      *Goals
	tasks      []Task
	milestones []Milestone
	progress   Progress
	unlocked   []Achievement
}

func (tx *transition) complete(task *Task) {
	p := &tx.progress
	prevLevel := LevelForXP(p.TotalXP)

	at := tx.now
	task.Completed = true
	task.CompletedAt = &at

	p.TotalXP = addClamped(p.TotalXP, task.XP)
	p.CompletedTasks++

	prevToday := p.DailyHistory[tx.today]
	p.DailyHistory[tx.today] = prevToday + 1
	if task.Category == CategoryDSA && task.QuestionsCount > 0 {
		p.DSAQuestionsHistory[tx.today] += task.QuestionsCount
	}

	tx.creditTopic(task)
	tx.creditMilestones(task)
	tx.applyStreak(prevToday)
	tx.applyDaily()
	tx.applyLevelUp(prevLevel)
}

func (tx *transition) uncomplete(task *Task) {
	p := &tx.progress

	task.Completed = false
	task.CompletedAt = nil

	p.TotalXP = subClamped(p.TotalXP, task.XP)
	p.CompletedTasks = subClamped(p.CompletedTasks, 1)

	decrementDay(p.DailyHistory, tx.today, 1)
	if task.Category == CategoryDSA && task.QuestionsCount > 0 {
		decrementDay(p.DSAQuestionsHistory, tx.today, task.QuestionsCount)
	}

	tx.debitTopic(task)
	tx.debitMilestones(task)
}

// creditMilestones advances every open milestone of the task's category and records the credit on the task.
func (tx *transition) creditMilestones(task *Task) {
	task.Credits = nil
	inc := Increment(*task)
	if inc <= 0 {
		return
	}

	p := &tx.progress
	for i := range tx.milestones {
		m := &tx.milestones[i]
		if m.Category != task.Category || m.Completed || m.Current >= m.Target {
			continue
		}
		m.Current += inc
		if task.Credits == nil {
			task.Credits = make(map[string]int)
		}
		task.Credits[m.ID] += inc

		if m.Current >= m.Target {
			m.Completed = true
			p.TotalXP = addClamped(p.TotalXP, m.XP)
			tx.unlock(milestoneAchievement(*m))
		}
	}
}

// debitMilestones removes exactly what creditMilestones added for this task.
func (tx *transition) debitMilestones(task *Task) {
	credits := task.Credits
	task.Credits = nil
	if len(credits) == 0 {
		return
	}

	p := &tx.progress
	for i := range tx.milestones {
		m := &tx.milestones[i]
		credit, ok := credits[m.ID]
		if !ok {
			continue
		}
		m.Current = subClamped(m.Current, credit)
		if m.Completed && m.Current < m.Target {
			m.Completed = false
			p.TotalXP = subClamped(p.TotalXP, m.XP)
		}
	}
}

// creditTopic advances the configured topic of a DSA task and records the credit on the task.
func (tx *transition) creditTopic(task *Task) {
	task.TopicKey, task.TopicCredit = "", 0
	name := strings.TrimSpace(task.DSATopic)
	if task.Category != CategoryDSA || name == "" {
		return
	}

	goal, configured := tx.goals.Topic(name)
	if configured {
		name = goal.Name
	}

	p := &tx.progress
	tp, tracked := p.Topics[name]
	if !tracked {
		// Targets are captured from goals at first touch; unknown or empty topics are not tracked.
		if !configured || goal.TargetQuestions <= 0 {
			return
		}
		tp = TopicProgress{TotalQuestions: goal.TargetQuestions}
	}

	count := countOrOne(task.QuestionsCount)
	tp.QuestionsCompleted += count
	task.TopicKey, task.TopicCredit = name, count
	if !tp.Completed && tp.QuestionsCompleted >= tp.TotalQuestions {
		tp.Completed = true
		p.TotalXP = addClamped(p.TotalXP, TopicBonusXP)
		tx.unlock(topicAchievement(name))
	}
	p.Topics[name] = tp
}

// debitTopic removes exactly what creditTopic added for this task.
func (tx *transition) debitTopic(task *Task) {
	name, credit := task.TopicKey, task.TopicCredit
	task.TopicKey, task.TopicCredit = "", 0
	if name == "" || credit <= 0 {
		return
	}

	p := &tx.progress
	tp, tracked := p.Topics[name]
	if !tracked {
		return
	}
	tp.QuestionsCompleted = subClamped(tp.QuestionsCompleted, credit)
	if tp.Completed && tp.QuestionsCompleted < tp.TotalQuestions {
		tp.Completed = false
		p.TotalXP = subClamped(p.TotalXP, TopicBonusXP)
	}

	if tp.QuestionsCompleted == 0 && !tp.Completed {
		delete(p.Topics, name)
		return
	}
	p.Topics[name] = tp
}

// applyStreak moves the streak on the first completion of a day, at most once per calendar day
// even when that day's completions are undone and redone.
func (tx *transition) applyStreak(prevToday int) {
	p := &tx.progress
	if prevToday != 0 || p.StreakDay == tx.today {
		return
	}

	yesterday := tx.now.In(tx.engine.loc).AddDate(0, 0, -1).Format(DayLayout)
	if p.DailyHistory[yesterday] > 0 {
		p.CurrentStreak++
	} else {
		p.CurrentStreak = 1
	}
	p.LongestStreak = max(p.LongestStreak, p.CurrentStreak)
	p.StreakDay = tx.today

	if p.CurrentStreak == WeekWarriorStreak {
		tx.unlock(weekWarriorAchievement())
	}
}

// applyDaily evaluates the daily thresholds over tasks completed today.
func (tx *transition) applyDaily() {
	var tally dailyTally
	for _, t := range tx.tasks {
		if !t.Completed || t.CompletedAt == nil || tx.engine.DayKey(*t.CompletedAt) != tx.today {
			continue
		}
		tally.total++
		switch t.Category {
		case CategoryDSA:
			tally.dsa++
		case CategoryWebDev:
			tally.webDev++
		}
	}

	for _, rule := range dailyRules {
		if rule.count(tally) < rule.threshold || tx.unlockedToday(rule.title) {
			continue
		}
		tx.unlock(Achievement{Title: rule.title, Description: rule.description, Type: AchievementDaily})
	}
}

// applyLevelUp unlocks a level achievement for every level newly reached, once ever per level.
func (tx *transition) applyLevelUp(prevLevel int) {
	level := LevelForXP(tx.progress.TotalXP)
	for n := prevLevel + 1; n <= level; n++ {
		a := levelAchievement(n)
		if tx.hasTitle(a.Title) {
			continue
		}
		tx.unlock(a)
	}
}

func (tx *transition) unlock(a Achievement) {
	if tx.engine.ids != nil {
		a.ID = tx.engine.ids.NewID()
	}
	a.UnlockedAt = tx.now
	tx.progress.Achievements = append(tx.progress.Achievements, a)
	tx.unlocked = append(tx.unlocked, a)
}

func (tx *transition) unlockedToday(title string) bool {
	for _, a := range tx.progress.Achievements {
		if a.Title == title && tx.engine.DayKey(a.UnlockedAt) == tx.today {
			return true
		}
	}
	return false
}

func (tx *transition) hasTitle(title string) bool {
	for _, a := range tx.progress.Achievements {
		if a.Title == title {
			return true
		}
	}
	return false
}

// decrementDay lowers a history bucket, dropping it once it reaches zero.
func decrementDay(history map[string]int, day string, n int) {
	next := subClamped(history[day], n)
	if next == 0 {
		delete(history, day)
		return
	}
	history[day] = next
}
