package progress

import (
	"strings"

	"golang.org/x/text/cases"
)

// Category identifies the preparation track a task or milestone belongs to.
type Category string

const (
	CategoryDSA             Category = "DSA"
	CategoryWebDev          Category = "Web Dev"
	CategoryDataScience     Category = "Data Science"
	CategoryCSFundamentals  Category = "CS Fundamentals"
	CategorySystemDesign    Category = "System Design"
	CategoryMockInterview   Category = "Mock Interview"
	CategoryEnglishSpeaking Category = "English Speaking Practice"
)

// Categories lists every supported category in display order.
var Categories = []Category{
	CategoryDSA,
	CategoryWebDev,
	CategoryDataScience,
	CategoryCSFundamentals,
	CategorySystemDesign,
	CategoryMockInterview,
	CategoryEnglishSpeaking,
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryDSA,
		CategoryWebDev,
		CategoryDataScience,
		CategoryCSFundamentals,
		CategorySystemDesign,
		CategoryMockInterview,
		CategoryEnglishSpeaking:
		return true
	default:
		return false
	}
}

// ParseCategory resolves a category name, ignoring case and surrounding whitespace.
func ParseCategory(raw string) (Category, bool) {
	for _, c := range Categories {
		if sameName(string(c), raw) {
			return c, true
		}
	}
	return "", false
}

// TimeSlot is the part of the day a task is planned for.
type TimeSlot string

const (
	TimeSlotMorning   TimeSlot = "Morning"
	TimeSlotAfternoon TimeSlot = "Afternoon"
	TimeSlotEvening   TimeSlot = "Evening"
)

// TimeSlots lists the slots in day order.
var TimeSlots = []TimeSlot{TimeSlotMorning, TimeSlotAfternoon, TimeSlotEvening}

// ParseTimeSlot resolves a time slot name, ignoring case and surrounding whitespace.
func ParseTimeSlot(raw string) (TimeSlot, bool) {
	for _, s := range TimeSlots {
		if sameName(string(s), raw) {
			return s, true
		}
	}
	return "", false
}

// sameName compares user supplied names (topics, projects, chapters) the way people type them.
// A Caser is stateful, so a fresh one is built per call.
func sameName(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}
