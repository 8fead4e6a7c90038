package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/rizq/internal/aggregator"
	"github.com/julianstephens/rizq/internal/cli"
	"github.com/julianstephens/rizq/internal/models"
	"github.com/julianstephens/rizq/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	events := make(chan models.CompletionEvent, 8)
	agg := ctx.NewAggregator(aggregator.WithCompletionHandler(tui.Notify(events)))

	p := tea.NewProgram(tui.NewModel(tui.Deps{
		Aggregator: agg,
		Habits:     ctx.Habits,
		Profile:    ctx.Profile,
		Content:    ctx.Content,
		Events:     events,
	}), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited: %w", err)
	}
	return nil
}
