package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/rizq/internal/cli"
	"github.com/julianstephens/rizq/internal/models"
)

type CustomCmd struct {
	Add    CustomAddCmd    `cmd:"" help:"Add a single dua to your routine."`
	Remove CustomRemoveCmd `cmd:"" help:"Remove a custom habit."`
	List   CustomListCmd   `cmd:"" help:"List custom habits." default:"1"`
}

type CustomAddCmd struct {
	DuaID int    `arg:"" name:"dua-id" help:"Dua ID."`
	Slot  string `help:"Time slot (morning, anytime, evening)." default:"anytime" enum:"morning,anytime,evening"`
}

func (c *CustomAddCmd) Run(ctx *cli.Context) error {
	slot, err := models.ParseTimeSlot(c.Slot)
	if err != nil {
		return err
	}
	bg := context.Background()
	dua, err := ctx.Content.FetchDua(bg, c.DuaID)
	if err != nil {
		return err
	}

	for _, h := range ctx.Habits.CustomHabits(bg) {
		if h.DuaID == c.DuaID {
			ctx.Printf("%s is already a custom habit (%s)\n", dua.Title, h.TimeSlot.Label())
			return nil
		}
	}
	if err := ctx.Habits.AddCustomHabit(bg, c.DuaID, slot); err != nil {
		return err
	}
	ctx.Printf("✓ Added %s to %s\n", dua.Title, slot.Label())
	return nil
}

type CustomRemoveCmd struct {
	Ref string `arg:"" help:"Custom habit ID or dua ID."`
}

func (c *CustomRemoveCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	duaID, numErr := strconv.Atoi(c.Ref)
	for _, h := range ctx.Habits.CustomHabits(bg) {
		if matchesID(h.ID, c.Ref) || (numErr == nil && h.DuaID == duaID) {
			if err := ctx.Habits.RemoveCustomHabit(bg, h.ID); err != nil {
				return err
			}
			ctx.Printf("✓ Removed custom habit for dua %d\n", h.DuaID)
			return nil
		}
	}
	return fmt.Errorf("no custom habit matches %q", c.Ref)
}

type CustomListCmd struct{}

func (c *CustomListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	customs := ctx.Habits.CustomHabits(bg)
	if len(customs) == 0 {
		ctx.Println("No custom habits.")
		return nil
	}
	for _, h := range customs {
		title := "(unavailable)"
		if dua, err := ctx.Content.FetchDua(bg, h.DuaID); err == nil {
			title = dua.Title
		}
		ctx.Printf("%s  %3d  %-8s %s\n", shortID(h.ID), h.DuaID, h.TimeSlot, title)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// matchesID accepts a full ID or the 8-character prefix printed by 'custom list'.
func matchesID(id, ref string) bool {
	return id == ref || (len(ref) >= 8 && strings.HasPrefix(id, ref))
}
