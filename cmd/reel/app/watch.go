package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/tui"
	"github.com/mmcdole/reel/internal/view"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var noRefresh bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Browse favorites and watchlist live",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bridge := tui.NewBridge(128)

			e, err := openEngine(cmd.Context(), opts, bridge)
			if err != nil {
				return err
			}
			defer e.Close()

			var panes []tui.Pane
			for _, list := range []domain.ListKind{domain.ListFavorites, domain.ListWatchlist} {
				v, err := view.New(e.store, e.notifier, view.ForList(list),
					view.WithListener(bridge.Listener(list)),
					view.WithLogger(e.logger),
				)
				if err != nil {
					return err
				}
				defer v.Close()
				panes = append(panes, tui.Pane{List: list, Source: v})
			}

			refresh := !noRefresh && e.cfg.IsConfigured() && e.session.Authorized()
			model := tui.NewModel(e.catalog, bridge, panes,
				tui.WithTheme(e.cfg.UI.Theme),
				tui.WithLogger(e.logger),
				tui.WithRefreshOnStart(refresh),
			)

			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

			e.logger.Info("starting TUI")
			if _, err := p.Run(); err != nil {
				e.logger.Error("TUI error", "error", err)
				return fmt.Errorf("TUI error: %w", err)
			}
			e.logger.Info("shutting down")
			return nil
		},
	}
	cmd.Flags().BoolVar(&noRefresh, "no-refresh", false, "Show cached lists without fetching")
	return cmd
}
