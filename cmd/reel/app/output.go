package app

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/mmcdole/reel/internal/coordinator"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/tui/styles"
)

func flagMarks(m domain.Movie) string {
	fav, watch := styles.EmptyChar, styles.EmptyChar
	if m.Favorite {
		fav = styles.FavoriteChar
	}
	if m.Watchlist {
		watch = styles.WatchlistChar
	}
	return fav + watch
}

// printMovies renders movies as a table
func printMovies(w io.Writer, movies []domain.Movie) error {
	if len(movies) == 0 {
		_, err := fmt.Fprintln(w, "No movies.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Title", "Year", "Lists")
	for _, m := range movies {
		year := ""
		if y := m.Year(); y > 0 {
			year = strconv.Itoa(y)
		}
		if err := table.Append([]string{strconv.Itoa(m.ID), m.Title, year, flagMarks(m)}); err != nil {
			return err
		}
	}
	return table.Render()
}

// printResult summarizes one sync result
func printResult(w io.Writer, r coordinator.Result, cached int) {
	switch {
	case r.FromCache:
		fmt.Fprintf(w, "%s: offline, showing %d cached\n", r.List, cached)
	case r.UserVisibleError() != nil:
		fmt.Fprintf(w, "%s: failed: %v\n", r.List, r.UserVisibleError())
	default:
		fmt.Fprintf(w, "%s: %d changed, %d cached\n", r.List, r.Applied, cached)
		if r.Failed > 0 {
			fmt.Fprintf(w, "%s: %d records could not be saved\n", r.List, r.Failed)
		}
	}
}
