package practice

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/rizq/internal/cli"
)

type ResetCmd struct {
	Yes bool `help:"Skip the confirmation prompt."`
	All bool `help:"Also clear journeys, custom habits and completion history."`
}

func (c *ResetCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		confirmed := false
		title := "Reset XP, level and streak?"
		if c.All {
			title = "Reset progress and delete all habits and history?"
		}
		err := huh.NewConfirm().
			Title(title).
			Description("This cannot be undone.").
			Affirmative("Reset").
			Negative("Cancel").
			Value(&confirmed).
			WithTheme(huh.ThemeDracula()).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			ctx.Println("Reset cancelled.")
			return nil
		}
	}

	bg := context.Background()
	if ctx.Backups != nil {
		path, err := ctx.Backups.CreateBackup(bg)
		if err != nil {
			return fmt.Errorf("failed to back up before reset: %w", err)
		}
		ctx.Printf("Backup created: %s\n", filepath.Base(path))
	}
	if err := ctx.Profile.Reset(bg); err != nil {
		return err
	}
	if c.All {
		if err := ctx.Habits.Clear(bg); err != nil {
			return err
		}
	}
	ctx.Println("✓ Progress reset")
	return nil
}
