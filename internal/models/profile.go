package models

import "time"

// ProfileCounters is the durable gamification state. Level is derived from
// TotalXP and is recomputed whenever counters are read.
type ProfileCounters struct {
	TotalXP        int    `json:"total_xp"`
	Level          int    `json:"level"`
	StreakCount    int    `json:"streak_count"`
	LastActiveDate string `json:"last_active_date,omitempty"` // YYYY-MM-DD format
}

// CompletionEvent is emitted after a dua is marked completed for today.
type CompletionEvent struct {
	DuaID            int             `json:"dua_id"`
	Title            string          `json:"title,omitempty"`
	XPEarned         int             `json:"xp_earned"`
	AlreadyCompleted bool            `json:"already_completed"`
	// AlreadyRewarded is set when the dua was completed, unmarked and completed
	// again on the same day. The completion is recorded but earns no XP.
	AlreadyRewarded  bool            `json:"already_rewarded,omitempty"`
	LeveledUp        bool            `json:"leveled_up"`
	StreakExtended   bool            `json:"streak_extended"`
	Counters         ProfileCounters `json:"counters"`
	CompletedAt      time.Time       `json:"completed_at"`
}
