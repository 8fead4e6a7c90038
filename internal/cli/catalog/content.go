package catalog

import (
	"context"

	"github.com/julianstephens/rizq/internal/cli"
	"github.com/julianstephens/rizq/internal/content"
)

type ContentCmd struct {
	List ContentListCmd `cmd:"" help:"List the duas in the active catalog." default:"1"`
	Seed ContentSeedCmd `cmd:"" help:"Load a catalog into the database content tables."`
}

type ContentListCmd struct {
	Journey int `help:"Only show duas of this journey." default:"0"`
}

func (c *ContentListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if c.Journey != 0 {
		j, err := ctx.Content.FetchJourneyWithDuas(bg, c.Journey)
		if err != nil {
			return err
		}
		ctx.Printf("%s %s\n", j.Journey.Emoji, j.Journey.Name)
		if j.Journey.Description != "" {
			ctx.Printf("%s\n", j.Journey.Description)
		}
		for _, jd := range j.Duas {
			ctx.Printf("  %3d  %-8s %s (+%d XP)\n", jd.Dua.ID, jd.TimeSlot, jd.Dua.Title, jd.Dua.XPValue)
		}
		return nil
	}

	duas, err := ctx.Content.ListDuas(bg)
	if err != nil {
		return err
	}
	if len(duas) == 0 {
		ctx.Println("Catalog is empty. Run 'rizq content seed' to load the built-in catalog.")
		return nil
	}
	for _, d := range duas {
		ctx.Printf("%3d  %s (+%d XP)\n", d.ID, d.Title, d.XPValue)
	}
	return nil
}

type ContentSeedCmd struct {
	File string `help:"YAML catalog to load instead of the built-in one." type:"existingfile"`
}

func (c *ContentSeedCmd) Run(ctx *cli.Context) error {
	catalog := content.Builtin()
	if c.File != "" {
		var err error
		catalog, err = content.LoadFile(c.File)
		if err != nil {
			return err
		}
	}

	store, err := cli.SQLContent(ctx.KV)
	if err != nil {
		return err
	}
	bg := context.Background()
	if err := store.Seed(bg, catalog); err != nil {
		return err
	}
	n, err := store.Count(bg)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Seeded %s (%d journeys). Use --content=db to read from it.\n", ctx.KV.Location(), n)
	return nil
}
