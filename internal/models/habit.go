package models

import (
	"fmt"
	"time"
)

// CustomHabit is a single dua the user added outside of any journey.
type CustomHabit struct {
	ID        string    `json:"id"`
	DuaID     int       `json:"dua_id"`
	TimeSlot  TimeSlot  `json:"time_slot"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot is the full persisted state of the habit store.
type Snapshot struct {
	ActiveJourneyIDs []int            `json:"active_journey_ids"`
	CustomHabits     []CustomHabit    `json:"custom_habits"`
	DailyCompletions map[string][]int `json:"daily_completions"` // YYYY-MM-DD -> dua IDs
	// RewardedDuas records which duas already paid XP on a day. Unmarking a
	// completion leaves it in place.
	RewardedDuas     map[string][]int `json:"rewarded_duas,omitempty"`
}

// EmptySnapshot returns a snapshot with all collections allocated.
func EmptySnapshot() Snapshot {
	return Snapshot{
		ActiveJourneyIDs: []int{},
		CustomHabits:     []CustomHabit{},
		DailyCompletions: map[string][]int{},
		RewardedDuas:     map[string][]int{},
	}
}

// Normalize replaces nil collections so decoded and freshly built snapshots compare equal.
func (s *Snapshot) Normalize() {
	if s.ActiveJourneyIDs == nil {
		s.ActiveJourneyIDs = []int{}
	}
	if s.CustomHabits == nil {
		s.CustomHabits = []CustomHabit{}
	}
	if s.DailyCompletions == nil {
		s.DailyCompletions = map[string][]int{}
	}
	if s.RewardedDuas == nil {
		s.RewardedDuas = map[string][]int{}
	}
	for _, days := range []map[string][]int{s.DailyCompletions, s.RewardedDuas} {
		for day, ids := range days {
			if ids == nil {
				days[day] = []int{}
			}
		}
	}
}

// Clone returns a deep copy so callers cannot mutate store-owned state.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		ActiveJourneyIDs: append([]int{}, s.ActiveJourneyIDs...),
		CustomHabits:     append([]CustomHabit{}, s.CustomHabits...),
		DailyCompletions: make(map[string][]int, len(s.DailyCompletions)),
		RewardedDuas:     make(map[string][]int, len(s.RewardedDuas)),
	}
	for day, ids := range s.DailyCompletions {
		out.DailyCompletions[day] = append([]int{}, ids...)
	}
	for day, ids := range s.RewardedDuas {
		out.RewardedDuas[day] = append([]int{}, ids...)
	}
	return out
}

// Habit is one practice item for today, merged from a journey or a custom habit.
// It is never persisted.
type Habit struct {
	ID              string   `json:"id"`
	DuaID           int      `json:"dua_id"`
	JourneyID       *int     `json:"journey_id,omitempty"`
	TimeSlot        TimeSlot `json:"time_slot"`
	Title           string   `json:"title"`
	ArabicText      string   `json:"arabic_text"`
	Transliteration string   `json:"transliteration,omitempty"`
	Translation     string   `json:"translation"`
	Repetitions     int      `json:"repetitions"`
	XPValue         int      `json:"xp_value"`
	IsCustom        bool     `json:"is_custom"`
}

// JourneyHabit builds the habit contributed by a journey.
func JourneyHabit(journeyID int, jd JourneyDua) Habit {
	id := journeyID
	h := habitFromDua(jd.Dua, jd.TimeSlot)
	h.ID = fmt.Sprintf("journey-%d-dua-%d", journeyID, jd.Dua.ID)
	h.JourneyID = &id
	return h
}

// CustomHabitItem builds the habit contributed by a custom habit.
func CustomHabitItem(c CustomHabit, dua Dua) Habit {
	h := habitFromDua(dua, c.TimeSlot)
	h.ID = "custom-" + c.ID
	h.IsCustom = true
	return h
}

func habitFromDua(d Dua, slot TimeSlot) Habit {
	return Habit{
		DuaID:           d.ID,
		TimeSlot:        slot,
		Title:           d.Title,
		ArabicText:      d.ArabicText,
		Transliteration: d.Transliteration,
		Translation:     d.Translation,
		Repetitions:     d.Repetitions,
		XPValue:         d.XPValue,
	}
}

// DailyProgress summarizes today's list against today's completions.
type DailyProgress struct {
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Percentage float64 `json:"percentage"` // fraction in [0, 1]
	TotalXP    int     `json:"total_xp"`
	EarnedXP   int     `json:"earned_xp"`
}
