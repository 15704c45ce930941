package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/reel/internal/domain"
)

const actionTimeout = 60 * time.Second

// Command factories for async operations

// RefreshCmd refreshes favorites and watchlist from the catalog
func RefreshCmd(actions Actions) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		return RefreshDoneMsg{Results: actions.RefreshAll(ctx)}
	}
}

// ToggleFlagCmd sets one flag of a movie locally and remotely
func ToggleFlagCmd(actions Actions, movieID int, flag domain.FlagKind, value bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		var (
			res domain.MutationResult
			err error
		)
		if flag == domain.FlagWatchlist {
			res, err = actions.SetWatchlist(ctx, movieID, value)
		} else {
			res, err = actions.SetFavorite(ctx, movieID, value)
		}
		return FlagToggledMsg{MovieID: movieID, Flag: flag, Value: value, Result: res, Err: err}
	}
}
