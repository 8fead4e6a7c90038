package practice

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/rizq/internal/cli"
	"github.com/julianstephens/rizq/internal/utils"
)

type HistoryCmd struct {
	Days int `help:"Number of days to show, ending today." default:"7"`
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	bg := context.Background()
	today := ctx.Habits.Today()
	snap := ctx.Habits.Load(bg)

	for i := c.Days - 1; i >= 0; i-- {
		day, err := utils.AddDays(today, -i)
		if err != nil {
			return err
		}
		n := len(snap.DailyCompletions[day])
		marker := strings.Repeat("●", n)
		if n == 0 {
			marker = "·"
		}
		ctx.Printf("%s  %2d  %s\n", day, n, marker)
	}
	return nil
}
