package system

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/guardian/internal/cli"
	"github.com/julianstephens/guardian/internal/logger"
	"github.com/julianstephens/guardian/internal/storage"
	"github.com/julianstephens/guardian/internal/tui"
)

type TuiCmd struct {
	Path string `arg:"" optional:"" help:"Screen to open, e.g. /habits. Defaults to the last visited screen."`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	c.restorePath(ctx)

	deps := tui.Deps{
		Client:           ctx.Client,
		Session:          ctx.Session,
		Tokens:           ctx.Tokens,
		Router:           ctx.Router,
		Translator:       ctx.Translator,
		LeaderboardLimit: ctx.Config.LeaderboardLimit,
	}
	if ctx.Store != nil {
		deps.Settings = ctx.Store
	}

	p := tea.NewProgram(tui.NewModel(ctx.RequestContext(), deps), tea.WithAltScreen(), tea.WithContext(ctx.RequestContext()))
	final, err := p.Run()
	if m, ok := final.(tui.Model); ok {
		m.Close()
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// restorePath opens the requested screen, or the one visited last. Unknown
// paths fall back to the dashboard.
func (c *TuiCmd) restorePath(ctx *cli.Context) {
	path := c.Path
	if path == "" && ctx.Store != nil {
		last, err := ctx.Store.GetSetting(ctx.RequestContext(), storage.SettingLastPath)
		if err != nil && !errors.Is(err, storage.ErrSettingNotFound) {
			logger.Warn("failed to read last path", "error", err)
		}
		path = last
	}
	if path == "" {
		return
	}
	if err := ctx.Router.Navigate(path); err != nil {
		logger.Warn("ignoring start path", "path", path, "error", err)
	}
}
