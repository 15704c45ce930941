package app

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mmcdole/reel/internal/domain"
)

type flagCommand struct {
	use   string
	short string
	flag  domain.FlagKind
}

var (
	flagFavorite  = flagCommand{use: "fav", short: "Mark a cached movie as favorite", flag: domain.FlagFavorite}
	flagWatchlist = flagCommand{use: "watchlist", short: "Add a cached movie to the watchlist", flag: domain.FlagWatchlist}
)

func newFlagCmd(opts *rootOptions, fc flagCommand) *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   fc.use + " <movie-id>",
		Short: fc.short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid movie id %q", args[0])
			}

			e, err := openEngine(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer e.Close()

			value := !off
			var res domain.MutationResult
			if fc.flag == domain.FlagWatchlist {
				res, err = e.catalog.SetWatchlist(cmd.Context(), id, value)
			} else {
				res, err = e.catalog.SetFavorite(cmd.Context(), id, value)
			}

			out := cmd.OutOrStdout()
			switch {
			case errors.Is(err, domain.ErrMovieNotFound):
				return fmt.Errorf("movie %d is not cached; find it with \"reel search\" first", id)
			case errors.Is(err, domain.ErrWriteFailed), errors.Is(err, domain.ErrWriterClosed):
				return err
			case err != nil:
				fmt.Fprintf(out, "%s: %s saved locally, not synced to TMDB: %v\n", res.Movie.Title, fc.flag, err)
				return nil
			case res.Kind == domain.MutationNoop:
				fmt.Fprintf(out, "%s: %s unchanged\n", res.Movie.Title, fc.flag)
			default:
				fmt.Fprintf(out, "%s: %s %s\n", res.Movie.Title, fc.flag, onOff(value))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "Clear the flag instead of setting it")
	return cmd
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
