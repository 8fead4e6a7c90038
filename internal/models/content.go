package models

import "fmt"

type TimeSlot string

const (
	TimeSlotMorning TimeSlot = "morning"
	TimeSlotAnytime TimeSlot = "anytime"
	TimeSlotEvening TimeSlot = "evening"
)

// TimeSlots lists the slots in display order.
var TimeSlots = []TimeSlot{TimeSlotMorning, TimeSlotAnytime, TimeSlotEvening}

// Priority orders slots for display: morning < anytime < evening.
// Unknown slots sort last.
func (s TimeSlot) Priority() int {
	switch s {
	case TimeSlotMorning:
		return 0
	case TimeSlotAnytime:
		return 1
	case TimeSlotEvening:
		return 2
	default:
		return 3
	}
}

func (s TimeSlot) Valid() bool {
	return s.Priority() < 3
}

func (s TimeSlot) Label() string {
	switch s {
	case TimeSlotMorning:
		return "Morning"
	case TimeSlotAnytime:
		return "Anytime"
	case TimeSlotEvening:
		return "Evening"
	default:
		return string(s)
	}
}

// ParseTimeSlot converts user input into a TimeSlot.
func ParseTimeSlot(s string) (TimeSlot, error) {
	slot := TimeSlot(s)
	if !slot.Valid() {
		return "", fmt.Errorf("invalid time slot %q (expected morning, anytime or evening)", s)
	}
	return slot, nil
}

// Dua is a single supplication as served by the content provider.
type Dua struct {
	ID              int    `json:"id" yaml:"id"`
	Title           string `json:"title" yaml:"title"`
	ArabicText      string `json:"arabic_text" yaml:"arabic_text"`
	Transliteration string `json:"transliteration,omitempty" yaml:"transliteration,omitempty"`
	Translation     string `json:"translation" yaml:"translation"`
	Repetitions     int    `json:"repetitions" yaml:"repetitions"`
	XPValue         int    `json:"xp_value" yaml:"xp_value"`
	Category        string `json:"category,omitempty" yaml:"category,omitempty"`
}

// Journey is a curated bundle of duas practiced as a daily routine.
type Journey struct {
	ID               int    `json:"id" yaml:"id"`
	Name             string `json:"name" yaml:"name"`
	Slug             string `json:"slug" yaml:"slug"`
	Description      string `json:"description,omitempty" yaml:"description,omitempty"`
	Emoji            string `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	EstimatedMinutes int    `json:"estimated_minutes" yaml:"estimated_minutes"`
	DailyXP          int    `json:"daily_xp" yaml:"daily_xp"`
	IsPremium        bool   `json:"is_premium" yaml:"is_premium"`
	IsFeatured       bool   `json:"is_featured" yaml:"is_featured"`
}

// JourneyDua places a dua inside a journey.
type JourneyDua struct {
	Dua       Dua      `json:"dua"`
	TimeSlot  TimeSlot `json:"time_slot"`
	SortOrder int      `json:"sort_order"`
}

type JourneyWithDuas struct {
	Journey Journey      `json:"journey"`
	Duas    []JourneyDua `json:"duas"`
}
