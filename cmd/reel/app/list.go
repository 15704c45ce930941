package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/view"
)

var listKinds = map[string]domain.ListKind{
	"favorites": domain.ListFavorites,
	"watchlist": domain.ListWatchlist,
	"cached":    domain.ListCatalog,
}

var sortKeys = map[string]domain.SortKey{
	"date":  domain.ByReleaseDateDesc,
	"title": domain.ByTitle,
	"id":    domain.ByID,
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		match   string
		rank    string
		sortKey string
	)
	cmd := &cobra.Command{
		Use:       "list [favorites|watchlist|cached]",
		Short:     "Show cached movies without contacting TMDB",
		ValidArgs: []string{"favorites", "watchlist", "cached"},
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			list := domain.ListFavorites
			if len(args) == 1 {
				list = listKinds[args[0]]
			}
			order, ok := sortKeys[sortKey]
			if !ok {
				return fmt.Errorf("unknown sort %q (use date, title or id)", sortKey)
			}

			e, err := openEngine(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer e.Close()

			q := view.Query{
				Filter: view.And(list.Filter(), view.TitleFilter(match)),
				Sort:   order,
			}
			v, err := view.New(e.store, e.notifier, q, view.WithLogger(e.logger))
			if err != nil {
				return err
			}
			defer v.Close()

			if rank == "" {
				return printMovies(cmd.OutOrStdout(), v.Snapshot())
			}

			matches := v.Search(rank)
			movies := make([]domain.Movie, len(matches))
			for i, m := range matches {
				movies[i] = m.Movie
			}
			return printMovies(cmd.OutOrStdout(), movies)
		},
	}
	cmd.Flags().StringVar(&match, "match", "", "Only movies whose title fuzzily contains this text")
	cmd.Flags().StringVar(&rank, "rank", "", "Rank movies by fuzzy title match, best first")
	cmd.Flags().StringVar(&sortKey, "sort", "date", "Sort order: date, title or id")
	return cmd
}
