package domain

import (
	"cmp"
	"strings"
)

// Filter selects movies for a query. A nil Filter selects everything.
type Filter func(Movie) bool

// Match applies the filter, treating nil as match-all
func (f Filter) Match(m Movie) bool {
	return f == nil || f(m)
}

// Predefined filters
var (
	Favorites Filter = func(m Movie) bool { return m.Favorite }
	Watchlist Filter = func(m Movie) bool { return m.Watchlist }
	Flagged   Filter = func(m Movie) bool { return m.Flagged() }
	Unflagged Filter = func(m Movie) bool { return !m.Flagged() }
)

// SortField is the attribute a query orders by
type SortField int

const (
	SortByID SortField = iota
	SortByTitle
	SortByReleaseDate
)

// SortKey orders query results. Ties are broken by ascending id.
type SortKey struct {
	Field SortField
	Desc  bool
}

var (
	ByID              = SortKey{Field: SortByID}
	ByTitle           = SortKey{Field: SortByTitle}
	ByReleaseDateDesc = SortKey{Field: SortByReleaseDate, Desc: true}
)

// Compare orders a before b (negative), after b (positive) or equal (zero)
func (k SortKey) Compare(a, b Movie) int {
	var c int
	switch k.Field {
	case SortByID:
		c = cmp.Compare(a.ID, b.ID)
	case SortByTitle:
		c = strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case SortByReleaseDate:
		// Unknown dates always sort last
		switch {
		case a.ReleaseDate.IsZero() && b.ReleaseDate.IsZero():
			c = 0
		case a.ReleaseDate.IsZero():
			return 1
		case b.ReleaseDate.IsZero():
			return -1
		default:
			c = a.ReleaseDate.Compare(b.ReleaseDate)
		}
	}
	if k.Desc {
		c = -c
	}
	if c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
