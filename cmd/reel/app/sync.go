package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmcdole/reel/internal/coordinator"
)

var syncTargets = []string{"favorites", "watchlist", "popular", "all"}

func newSyncCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "sync [" + strings.Join(syncTargets, "|") + "]",
		Short:     "Fetch lists from TMDB into the local cache",
		Long:      `Fetch lists from TMDB into the local cache. Without an argument, favorites and watchlist are fetched.`,
		ValidArgs: syncTargets,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "all"
			if len(args) == 1 {
				target = args[0]
			}

			e, err := openEngine(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.requireAPIKey(); err != nil {
				return err
			}

			ctx := cmd.Context()
			var results []coordinator.Result
			switch target {
			case "favorites":
				results = append(results, e.catalog.RefreshFavorites(ctx))
			case "watchlist":
				results = append(results, e.catalog.RefreshWatchlist(ctx))
			case "popular":
				results = append(results, e.catalog.RefreshPopular(ctx))
			default:
				results = e.catalog.RefreshAll(ctx)
			}

			var errs []error
			for _, r := range results {
				printResult(cmd.OutOrStdout(), r, e.store.Count(r.List.Filter()))
				if err := r.UserVisibleError(); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	}
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the TMDB catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEngine(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.requireAPIKey(); err != nil {
				return err
			}

			movies, res := e.catalog.Search(cmd.Context(), strings.Join(args, " "))
			if err := res.UserVisibleError(); err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			return printMovies(cmd.OutOrStdout(), movies)
		},
	}
}

func newPruneCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove cached movies that are on neither list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEngine(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer e.Close()

			res := e.coord.Prune(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d movies, %d remain.\n", res.Applied, e.store.Len())
			return res.Err
		},
	}
}
