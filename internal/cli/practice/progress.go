package practice

import (
	"context"
	"strings"

	"github.com/julianstephens/rizq/internal/aggregator"
	"github.com/julianstephens/rizq/internal/cli"
	"github.com/julianstephens/rizq/internal/progress"
)

type ProgressCmd struct{}

func (c *ProgressCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	counters := ctx.Profile.Counters(bg)
	current, needed := progress.XPProgressInLevel(counters.TotalXP, counters.Level)

	ctx.Printf("Level %d  %s  %d/%d XP\n", counters.Level, bar(progress.LevelFraction(counters.TotalXP), 20), current, needed)
	ctx.Printf("Total XP: %d\n", counters.TotalXP)
	ctx.Printf("Streak:   %d day(s)\n", counters.StreakCount)
	if counters.LastActiveDate != "" {
		ctx.Printf("Last active: %s\n", counters.LastActiveDate)
	}

	res := ctx.Aggregator.LoadTodaysHabits(bg)
	p := aggregator.ComputeProgress(res.Habits, ctx.Aggregator.CompletedSet(bg))
	ctx.Printf("Today:    %s  %d/%d\n", bar(p.Percentage, 20), p.Completed, p.Total)
	return nil
}

func bar(fraction float64, width int) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction*float64(width) + 0.5)
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
