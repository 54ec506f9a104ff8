package progress

// GoalProgress compares one category target from the goal configuration with what is done.
type GoalProgress struct {
	Category Category     `json:"category"`
	Target   int          `json:"target"`
	Done     int          `json:"done"`
	Percent  int          `json:"percent"`
	Items    []ItemStatus `json:"items,omitempty"`
}

// ItemStatus tells whether a named goal item (project, case study, chapter) has a completed task.
type ItemStatus struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
}

// TopicStatus is the view of one configured DSA topic.
type TopicStatus struct {
	Name               string `json:"name"`
	TargetQuestions    int    `json:"target_questions"`
	QuestionsCompleted int    `json:"questions_completed"`
	Completed          bool   `json:"completed"`
}

// GoalsProgress reports every category of goals. It returns nil when no goals are configured.
func GoalsProgress(goals *Goals, tasks []Task, p Progress) []GoalProgress {
	if goals == nil {
		return nil
	}

	var dsaSolved int
	for _, n := range p.DSAQuestionsHistory {
		dsaSolved += n
	}

	out := make([]GoalProgress, 0, len(Categories))
	for _, c := range Categories {
		var g GoalProgress
		switch c {
		case CategoryDSA:
			g = counted(c, goals.DSAQuestions, dsaSolved)
		case CategoryWebDev:
			g = named(c, goals.WebDevProjects, tasks, func(t Task) string { return t.ProjectName })
		case CategorySystemDesign:
			g = named(c, goals.SystemDesignCases, tasks, func(t Task) string { return t.CaseStudyName })
		case CategoryCSFundamentals:
			g = named(c, goals.CSFundamentalsChapters, tasks, func(t Task) string { return t.ChapterName })
		case CategoryDataScience:
			g = counted(c, goals.DataScienceTutorials, completedUnits(tasks, c, func(t Task) int { return t.TutorialCount }))
		case CategoryMockInterview:
			g = counted(c, goals.MockInterviews, completedUnits(tasks, c, func(t Task) int { return t.SessionCount }))
		case CategoryEnglishSpeaking:
			g = counted(c, goals.EnglishSpeakingSessions, completedUnits(tasks, c, func(t Task) int { return t.SessionCount }))
		}
		out = append(out, g)
	}
	return out
}

// TopicsProgress lists configured DSA topics with their tracked progress.
func TopicsProgress(goals *Goals, p Progress) []TopicStatus {
	if goals == nil || len(goals.DSATopics) == 0 {
		return nil
	}
	out := make([]TopicStatus, 0, len(goals.DSATopics))
	for _, t := range goals.DSATopics {
		status := TopicStatus{Name: t.Name, TargetQuestions: t.TargetQuestions}
		if tp, ok := p.Topics[t.Name]; ok {
			status.TargetQuestions = tp.TotalQuestions
			status.QuestionsCompleted = tp.QuestionsCompleted
			status.Completed = tp.Completed
		}
		out = append(out, status)
	}
	return out
}

func counted(c Category, target, done int) GoalProgress {
	return GoalProgress{Category: c, Target: target, Done: done, Percent: percent(done, target)}
}

func named(c Category, names []string, tasks []Task, field func(Task) string) GoalProgress {
	items := make([]ItemStatus, 0, len(names))
	done := 0
	for _, name := range names {
		item := ItemStatus{Name: name}
		for _, t := range tasks {
			if t.Completed && t.Category == c && sameName(field(t), name) {
				item.Done = true
				done++
				break
			}
		}
		items = append(items, item)
	}
	g := counted(c, len(names), done)
	g.Items = items
	return g
}

func completedUnits(tasks []Task, c Category, field func(Task) int) int {
	n := 0
	for _, t := range tasks {
		if t.Completed && t.Category == c {
			n += countOrOne(field(t))
		}
	}
	return n
}

func percent(done, target int) int {
	if target <= 0 {
		return 0
	}
	return min(done*100/target, 100)
}
