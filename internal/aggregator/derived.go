package aggregator

import (
	"sort"

	"github.com/julianstephens/rizq/internal/models"
)

// SortBySlot orders habits morning, anytime, evening. Order within a slot is kept.
func SortBySlot(habits []models.Habit) {
	sort.SliceStable(habits, func(i, j int) bool {
		return habits[i].TimeSlot.Priority() < habits[j].TimeSlot.Priority()
	})
}

// GroupByTimeSlot buckets habits by slot, keeping list order inside each bucket.
func GroupByTimeSlot(habits []models.Habit) map[models.TimeSlot][]models.Habit {
	groups := make(map[models.TimeSlot][]models.Habit)
	for _, h := range habits {
		groups[h.TimeSlot] = append(groups[h.TimeSlot], h)
	}
	return groups
}

func ComputeProgress(habits []models.Habit, completed map[int]bool) models.DailyProgress {
	var p models.DailyProgress
	for _, h := range habits {
		p.Total++
		p.TotalXP += h.XPValue
		if completed[h.DuaID] {
			p.Completed++
			p.EarnedXP += h.XPValue
		}
	}
	if p.Total > 0 {
		p.Percentage = float64(p.Completed) / float64(p.Total)
	}
	return p
}

// NextUncompleted returns the first habit in slot order not yet completed.
func NextUncompleted(habits []models.Habit, completed map[int]bool) (models.Habit, bool) {
	for _, h := range habits {
		if !completed[h.DuaID] {
			return h, true
		}
	}
	return models.Habit{}, false
}
