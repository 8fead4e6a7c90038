package practice

import (
	"context"
	"fmt"

	"github.com/julianstephens/rizq/internal/cli"
	"github.com/julianstephens/rizq/internal/models"
)

type CompleteCmd struct {
	DuaID int `arg:"" name:"dua-id" help:"ID of the dua to mark done today."`
}

func (c *CompleteCmd) Run(ctx *cli.Context) error {
	event, err := ctx.Aggregator.Complete(context.Background(), c.DuaID)
	if err != nil {
		return err
	}
	for _, line := range CelebrationLines(event) {
		ctx.Println(line)
	}
	return nil
}

// CelebrationLines renders a completion event for terminal output.
func CelebrationLines(e models.CompletionEvent) []string {
	name := e.Title
	if name == "" {
		name = "dua"
	}
	if e.AlreadyCompleted {
		return []string{"ℹ " + name + " is already completed today."}
	}
	if e.AlreadyRewarded {
		return []string{"✓ Completed " + name + " (XP already earned today)"}
	}

	lines := []string{fmt.Sprintf("✓ Completed %s (+%d XP)", name, e.XPEarned)}
	if e.LeveledUp {
		lines = append(lines, fmt.Sprintf("🎉 Level up! You reached level %d.", e.Counters.Level))
	}
	if e.StreakExtended {
		lines = append(lines, fmt.Sprintf("🔥 Streak: %d day(s)", e.Counters.StreakCount))
	}
	return lines
}
