package progress

// XPPerLevel is the XP width of every level.
const XPPerLevel = 1000

// LevelForXP derives the level from total XP: floor(xp/1000)+1.
func LevelForXP(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/XPPerLevel + 1
}

// LevelProgress describes how far a user is into the current level.
type LevelProgress struct {
	Level          int `json:"level"`
	XPIntoLevel    int `json:"xp_into_level"`
	XPForNextLevel int `json:"xp_for_next_level"`
	NextLevelAt    int `json:"next_level_at"`
	Percent        int `json:"percent"`
}

// ProgressToNextLevel splits total XP into the current level and the remainder needed for the next one.
func ProgressToNextLevel(totalXP int) LevelProgress {
	if totalXP < 0 {
		totalXP = 0
	}
	level := LevelForXP(totalXP)
	into := totalXP - (level-1)*XPPerLevel
	return LevelProgress{
		Level:          level,
		XPIntoLevel:    into,
		XPForNextLevel: XPPerLevel - into,
		NextLevelAt:    level * XPPerLevel,
		Percent:        into * 100 / XPPerLevel,
	}
}

// addClamped and subClamped keep every counter at or above zero.
func addClamped(v, n int) int {
	return max(0, v+n)
}

func subClamped(v, n int) int {
	return max(0, v-n)
}
