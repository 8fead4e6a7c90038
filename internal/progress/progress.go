// Package progress holds the pure XP, level and streak arithmetic.
package progress

import "time"

// XPThreshold returns the cumulative XP needed to finish level. Levels below 1 need nothing.
func XPThreshold(level int) int {
	if level <= 0 {
		return 0
	}
	return 50*level*level + 50*level
}

// CalculateLevel returns the level reached with xp experience points.
// Level 1 covers [0, 100), level 2 covers [100, 300), and so on.
func CalculateLevel(xp int) int {
	level := 1
	for XPThreshold(level) <= xp {
		level++
	}
	return level
}

// XPProgressInLevel reports how far totalXP is into level and how wide the level is.
func XPProgressInLevel(totalXP, level int) (current, needed int) {
	floor := XPThreshold(level - 1)
	return totalXP - floor, XPThreshold(level) - floor
}

// LevelFraction is the in-level progress of totalXP in [0, 1].
func LevelFraction(totalXP int) float64 {
	current, needed := XPProgressInLevel(totalXP, CalculateLevel(totalXP))
	if needed <= 0 {
		return 0
	}
	f := float64(current) / float64(needed)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// DaysBetween counts calendar days from a to b, using each value's own date.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	// Noon UTC avoids DST gaps shifting the difference
	da := time.Date(ay, am, ad, 12, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 12, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// UpdateStreak returns the streak after activity on today.
// A zero lastActive means the user has never been active.
func UpdateStreak(lastActive, today time.Time, previous int) int {
	if lastActive.IsZero() {
		return 1
	}
	switch days := DaysBetween(lastActive, today); {
	case days <= 0:
		// Same day, or a clock that moved backwards
		return previous
	case days == 1:
		return previous + 1
	default:
		return 1
	}
}
