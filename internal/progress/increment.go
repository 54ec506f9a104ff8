package progress

import "strings"

// Increment is the amount a completed task advances the milestones of its category.
//
// Counting categories credit their cardinality field (defaulting to 1); named-item categories
// only credit a task that names the project, case study or chapter it finished.
func Increment(t Task) int {
	switch t.Category {
	case CategoryDSA:
		return countOrOne(t.QuestionsCount)
	case CategoryWebDev:
		return namedItem(t.ProjectName)
	case CategorySystemDesign:
		return namedItem(t.CaseStudyName)
	case CategoryDataScience:
		return countOrOne(t.TutorialCount)
	case CategoryMockInterview, CategoryEnglishSpeaking:
		return countOrOne(t.SessionCount)
	case CategoryCSFundamentals:
		return namedItem(t.ChapterName)
	default:
		return 1
	}
}

func countOrOne(n int) int {
	if n > 0 {
		return n
	}
	return 1
}

func namedItem(name string) int {
	if strings.TrimSpace(name) != "" {
		return 1
	}
	return 0
}
