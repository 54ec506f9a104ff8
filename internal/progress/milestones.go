package progress

// DefaultMilestones is the milestone catalog every new journey starts with.
// IDs are assigned by ids so that each journey owns distinct milestone identities.
func DefaultMilestones(ids IDGenerator) []Milestone {
	catalog := []Milestone{
		{Title: "DSA Foundation", Description: "Complete 400 DSA problems", Category: CategoryDSA, Target: 400, XP: 500},
		{Title: "Web Development Project", Description: "Build and deploy a full-stack application", Category: CategoryWebDev, Target: 5, XP: 1000},
		{Title: "System Design Mastery", Description: "Complete 10 system design case studies", Category: CategorySystemDesign, Target: 10, XP: 800},
		{Title: "Mock Interview Champion", Description: "Complete 20 mock interviews with good feedback", Category: CategoryMockInterview, Target: 20, XP: 600},
		{Title: "Data Science Basics", Description: "Finish 100 data science tutorials", Category: CategoryDataScience, Target: 100, XP: 700},
		{Title: "CS Fundamentals Core", Description: "Master 15 CS fundamentals topics", Category: CategoryCSFundamentals, Target: 15, XP: 700},
		{Title: "English Speaking Fluency", Description: "Complete 30 English speaking practice sessions", Category: CategoryEnglishSpeaking, Target: 30, XP: 400},
	}
	return SeedMilestones(catalog, ids)
}

// SeedMilestones copies a catalog into fresh milestones: new IDs where missing, zero progress.
func SeedMilestones(catalog []Milestone, ids IDGenerator) []Milestone {
	out := make([]Milestone, len(catalog))
	for i, m := range catalog {
		if m.ID == "" && ids != nil {
			m.ID = ids.NewID()
		}
		m.Current = 0
		m.Completed = m.Target <= 0
		out[i] = m
	}
	return out
}

// MilestonesByCategory groups milestones in category display order, skipping empty groups.
func MilestonesByCategory(milestones []Milestone) []MilestoneGroup {
	var groups []MilestoneGroup
	for _, c := range Categories {
		var items []Milestone
		for _, m := range milestones {
			if m.Category == c {
				items = append(items, m)
			}
		}
		if len(items) > 0 {
			groups = append(groups, MilestoneGroup{Category: c, Milestones: items})
		}
	}
	return groups
}

// MilestoneGroup is the milestones of a single category.
type MilestoneGroup struct {
	Category   Category    `json:"category"`
	Milestones []Milestone `json:"milestones"`
}
