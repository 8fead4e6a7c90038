package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/rizq/internal/cli"
	"github.com/julianstephens/rizq/internal/keyring"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(*cli.Context) error
	// warnOnly failures do not fail the command
	warnOnly bool
}

var checks = []check{
	{name: "Store reachable", run: checkStore},
	{name: "Schema version", run: checkSchema},
	{name: "Content catalog", run: checkContent},
	{name: "Subscriptions resolve", run: checkSubscriptions, warnOnly: true},
	{name: "Clock/timezone", run: checkClock},
	{name: "OS keyring", run: checkKeyring, warnOnly: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	failed := 0
	for _, c := range checks {
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		default:
			ctx.Printf("❌ %s: FAIL\n   Error: %v\n", c.name, err)
			failed++
		}
	}

	ctx.Println()
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	ctx.Println("All checks passed")
	return nil
}

func checkStore(ctx *cli.Context) error {
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return ctx.KV.Ping(c)
}

func checkSchema(ctx *cli.Context) error {
	runner, ok, err := cli.MigrationRunner(ctx.KV)
	if err != nil || !ok {
		return err
	}
	if err := runner.ValidateVersion(); err != nil {
		return err
	}
	current, err := runner.GetCurrentVersion()
	if err != nil {
		return err
	}
	latest, err := runner.GetLatestVersion()
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("schema at version %d, %d available", current, latest)
	}
	return nil
}

func checkContent(ctx *cli.Context) error {
	journeys, err := ctx.Content.ListJourneys(context.Background())
	if err != nil {
		return err
	}
	if len(journeys) == 0 {
		return errors.New("no journeys available, run 'rizq content seed'")
	}
	return nil
}

func checkSubscriptions(ctx *cli.Context) error {
	bg := context.Background()
	var missing []int
	for _, id := range ctx.Habits.ActiveJourneyIDs(bg) {
		if _, err := ctx.Content.FetchJourneyWithDuas(bg, id); err != nil {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("journeys %v cannot be resolved and will be skipped", missing)
	}
	return nil
}

func checkClock(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	if ctx.Location == nil {
		return errors.New("no timezone configured")
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}
