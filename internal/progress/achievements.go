package progress

import "fmt"

const (
	// TopicBonusXP is granted once per crossing of a DSA topic target.
	TopicBonusXP = 150
	// WeekWarriorStreak is the exact streak length that unlocks "Week Warrior".
	WeekWarriorStreak = 7
)

const (
	TitleWeekWarrior       = "Week Warrior"
	TitleDSADailyChampion  = "DSA Daily Champion"
	TitleWebDevDailyMaster = "Web Dev Daily Master"
	TitleProductivityBeast = "Productivity Beast"
)

type dailyTally struct {
	dsa    int
	webDev int
	total  int
}

type dailyRule struct {
	title       string
	description string
	threshold   int
	count       func(dailyTally) int
}

// dailyRules is evaluated in order after every completion. Titles are the dedup key, keep them stable.
var dailyRules = []dailyRule{
	{
		title:       TitleDSADailyChampion,
		description: "Solved 10+ DSA problems in a day!",
		threshold:   10,
		count:       func(t dailyTally) int { return t.dsa },
	},
	{
		title:       TitleWebDevDailyMaster,
		description: "Completed 3+ Web Dev tasks in a day!",
		threshold:   3,
		count:       func(t dailyTally) int { return t.webDev },
	},
	{
		title:       TitleProductivityBeast,
		description: "Completed 10+ tasks in a single day!",
		threshold:   10,
		count:       func(t dailyTally) int { return t.total },
	},
}

func milestoneAchievement(m Milestone) Achievement {
	return Achievement{
		Title:       m.Title + " Complete!",
		Description: m.Description,
		Type:        AchievementMilestone,
	}
}

func topicAchievement(topic string) Achievement {
	return Achievement{
		Title:       topic + " Mastered!",
		Description: "Completed all questions in " + topic,
		Type:        AchievementTopic,
	}
}

func weekWarriorAchievement() Achievement {
	return Achievement{
		Title:       TitleWeekWarrior,
		Description: "Maintained a 7-day streak!",
		Type:        AchievementStreak,
	}
}

func levelAchievement(level int) Achievement {
	return Achievement{
		Title:       fmt.Sprintf("Level %d Reached", level),
		Description: fmt.Sprintf("Earned %d XP in total", (level-1)*XPPerLevel),
		Type:        AchievementXP,
	}
}
