package catalog

import (
	"context"
	"fmt"

	"github.com/julianstephens/rizq/internal/cli"
)

type JourneyCmd struct {
	Add    JourneyAddCmd    `cmd:"" help:"Subscribe to a journey."`
	Remove JourneyRemoveCmd `cmd:"" help:"Unsubscribe from a journey."`
	List   JourneyListCmd   `cmd:"" help:"List journeys and subscriptions." default:"1"`
}

type JourneyAddCmd struct {
	ID int `arg:"" help:"Journey ID."`
}

func (c *JourneyAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	j, err := ctx.Content.FetchJourneyWithDuas(bg, c.ID)
	if err != nil {
		return err
	}
	if ctx.Habits.IsJourneyActive(bg, c.ID) {
		ctx.Printf("Already subscribed to %s\n", j.Journey.Name)
		return nil
	}
	if err := ctx.Habits.AddJourney(bg, c.ID); err != nil {
		return err
	}
	ctx.Printf("✓ Subscribed to %s %s (%d duas, %d XP/day)\n", j.Journey.Emoji, j.Journey.Name, len(j.Duas), j.Journey.DailyXP)
	return nil
}

type JourneyRemoveCmd struct {
	ID int `arg:"" help:"Journey ID."`
}

func (c *JourneyRemoveCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if !ctx.Habits.IsJourneyActive(bg, c.ID) {
		return fmt.Errorf("not subscribed to journey %d", c.ID)
	}
	if err := ctx.Habits.RemoveJourney(bg, c.ID); err != nil {
		return err
	}
	ctx.Printf("✓ Unsubscribed from journey %d\n", c.ID)
	return nil
}

type JourneyListCmd struct {
	Active bool `help:"Only show subscribed journeys."`
}

func (c *JourneyListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	journeys, err := ctx.Content.ListJourneys(bg)
	if err != nil {
		return err
	}

	active := make(map[int]bool)
	for _, id := range ctx.Habits.ActiveJourneyIDs(bg) {
		active[id] = true
	}

	shown := 0
	for _, j := range journeys {
		if c.Active && !active[j.ID] {
			continue
		}
		mark := " "
		if active[j.ID] {
			mark = "✓"
		}
		tags := ""
		if j.IsFeatured {
			tags += " [featured]"
		}
		if j.IsPremium {
			tags += " [premium]"
		}
		ctx.Printf("%s %3d  %s %s (%d min, %d XP)%s\n", mark, j.ID, j.Emoji, j.Name, j.EstimatedMinutes, j.DailyXP, tags)
		shown++
	}
	if shown == 0 {
		ctx.Println("No journeys found.")
	}
	return nil
}
