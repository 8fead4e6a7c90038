package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/rizq/internal/cli"
	"github.com/julianstephens/rizq/internal/content"
)

type InitCmd struct {
	Seed bool `help:"Load the built-in catalog into empty SQL content tables." default:"true" negatable:""`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.KV.Ping(bg); err != nil {
		return fmt.Errorf("store is not reachable: %w", err)
	}
	ctx.Printf("Initialized rizq storage at: %s\n", ctx.KV.Location())

	if !c.Seed {
		return nil
	}
	store, err := cli.SQLContent(ctx.KV)
	if err != nil {
		// Non-SQL stores read the built-in catalog directly
		return nil
	}
	n, err := store.Count(bg)
	if err != nil {
		return err
	}
	if n > 0 {
		ctx.Printf("Content tables already hold %d journeys\n", n)
		return nil
	}
	if err := store.Seed(bg, content.Builtin()); err != nil {
		return err
	}
	ctx.Println("Seeded the built-in catalog into the content tables")
	return nil
}
