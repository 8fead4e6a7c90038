package practice

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/rizq/internal/aggregator"
	"github.com/julianstephens/rizq/internal/cli"
	"github.com/julianstephens/rizq/internal/models"
)

type TodayCmd struct {
	JSON bool `help:"Print the list as JSON."`
}

type todayOutput struct {
	Date     string               `json:"date"`
	Habits   []models.Habit       `json:"habits"`
	Done     []int                `json:"completed_dua_ids"`
	Progress models.DailyProgress `json:"progress"`
	Fallback bool                 `json:"fallback"`
}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	res := ctx.Aggregator.LoadTodaysHabits(bg)
	completed := ctx.Aggregator.CompletedSet(bg)
	prog := aggregator.ComputeProgress(res.Habits, completed)

	if c.JSON {
		out := todayOutput{
			Date:     ctx.Habits.Today(),
			Habits:   res.Habits,
			Done:     ctx.Habits.TodayCompletedIDs(bg),
			Progress: prog,
			Fallback: res.Fallback,
		}
		enc := json.NewEncoder(ctx.Writer())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	ctx.Printf("Today (%s)\n", ctx.Habits.Today())
	if res.Fallback {
		ctx.Println("⚠  Content could not be loaded in time, showing saved or sample habits.")
	}
	if len(res.Habits) == 0 {
		ctx.Println()
		ctx.Println("No habits yet.")
		ctx.Println("Subscribe with 'rizq journey add <id>' or add one with 'rizq custom add <dua-id>'.")
		return nil
	}

	groups := aggregator.GroupByTimeSlot(res.Habits)
	for _, slot := range models.TimeSlots {
		items := groups[slot]
		if len(items) == 0 {
			continue
		}
		ctx.Printf("\n%s\n", slot.Label())
		for _, h := range items {
			mark := "○"
			if completed[h.DuaID] {
				mark = "✓"
			}
			ctx.Printf("  %s [%d] %s%s  +%d XP\n", mark, h.DuaID, h.Title, repetitions(h), h.XPValue)
		}
	}

	ctx.Printf("\nProgress: %d/%d (%.0f%%), %d/%d XP\n",
		prog.Completed, prog.Total, prog.Percentage*100, prog.EarnedXP, prog.TotalXP)
	if next, ok := aggregator.NextUncompleted(res.Habits, completed); ok {
		ctx.Printf("Next: [%d] %s\n", next.DuaID, next.Title)
	} else {
		ctx.Println("All done for today. 🎉")
	}
	return nil
}

func repetitions(h models.Habit) string {
	if h.Repetitions > 1 {
		return fmt.Sprintf(" ×%d", h.Repetitions)
	}
	return ""
}
