package domain

import (
	"strings"
	"time"
)

// Movie is the cached record for one catalog movie.
// Catalog fields mirror the most recent remote observation; Favorite and
// Watchlist are local membership flags.
type Movie struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	PosterPath  string    `json:"poster_path,omitempty"`  // Empty when the catalog has no poster
	ReleaseDate time.Time `json:"release_date,omitzero"` // Zero when unknown
	Favorite    bool      `json:"favorite"`
	Watchlist   bool      `json:"watchlist"`
}

// Flagged returns true if the movie is on either list
func (m Movie) Flagged() bool {
	return m.Favorite || m.Watchlist
}

// Flag returns the value of the given membership flag
func (m Movie) Flag(kind FlagKind) bool {
	switch kind {
	case FlagFavorite:
		return m.Favorite
	case FlagWatchlist:
		return m.Watchlist
	default:
		return false
	}
}

// Year returns the release year (0 if unknown)
func (m Movie) Year() int {
	if m.ReleaseDate.IsZero() {
		return 0
	}
	return m.ReleaseDate.Year()
}

// RemoteMovie is a movie as handed over by the catalog client.
// ReleaseDate is the raw remote string and is parsed during merge.
type RemoteMovie struct {
	ID          int
	Title       string
	PosterPath  string
	ReleaseDate string
}

// FlagKind identifies one of the two membership flags
type FlagKind int

const (
	FlagFavorite FlagKind = iota
	FlagWatchlist
)

func (k FlagKind) String() string {
	switch k {
	case FlagFavorite:
		return "favorite"
	case FlagWatchlist:
		return "watchlist"
	default:
		return "unknown"
	}
}

// IntentKind is the declared purpose of a merge
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentFavorite
	IntentWatchlist
)

// Intent tells the merge which flag, if any, the incoming records assert.
type Intent struct {
	Kind  IntentKind
	Value bool
}

// NoIntent is a plain catalog refresh.
var NoIntent = Intent{}

// SetFavorite asserts the favorite flag.
func SetFavorite(v bool) Intent { return Intent{Kind: IntentFavorite, Value: v} }

// SetWatchlist asserts the watchlist flag.
func SetWatchlist(v bool) Intent { return Intent{Kind: IntentWatchlist, Value: v} }

// IntentFor returns the intent that sets the given flag to v.
func IntentFor(kind FlagKind, v bool) Intent {
	if kind == FlagWatchlist {
		return SetWatchlist(v)
	}
	return SetFavorite(v)
}

func (i Intent) String() string {
	switch i.Kind {
	case IntentFavorite:
		if i.Value {
			return "favorite"
		}
		return "unfavorite"
	case IntentWatchlist:
		if i.Value {
			return "watchlist"
		}
		return "unwatchlist"
	default:
		return "none"
	}
}

// Fields is a set of Movie fields touched by a mutation
type Fields uint8

const (
	FieldTitle Fields = 1 << iota
	FieldPosterPath
	FieldReleaseDate
	FieldFavorite
	FieldWatchlist

	FieldsNone    Fields = 0
	FieldsCatalog        = FieldTitle | FieldPosterPath | FieldReleaseDate
	FieldsAll            = FieldsCatalog | FieldFavorite | FieldWatchlist
)

var fieldNames = []struct {
	f    Fields
	name string
}{
	{FieldTitle, "title"},
	{FieldPosterPath, "posterPath"},
	{FieldReleaseDate, "releaseDate"},
	{FieldFavorite, "favorite"},
	{FieldWatchlist, "watchlist"},
}

// Has reports whether every field in f is present.
func (fs Fields) Has(f Fields) bool {
	return fs&f == f
}

func (fs Fields) String() string {
	if fs == FieldsNone {
		return "none"
	}
	var names []string
	for _, fn := range fieldNames {
		if fs.Has(fn.f) {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, ",")
}

// ListKind identifies a remote listing and how it maps onto the cache
type ListKind int

const (
	ListCatalog ListKind = iota
	ListFavorites
	ListWatchlist
)

func (l ListKind) String() string {
	switch l {
	case ListFavorites:
		return "favorites"
	case ListWatchlist:
		return "watchlist"
	default:
		return "catalog"
	}
}

// Intent returns the intent carried by records of this listing
func (l ListKind) Intent() Intent {
	switch l {
	case ListFavorites:
		return SetFavorite(true)
	case ListWatchlist:
		return SetWatchlist(true)
	default:
		return NoIntent
	}
}

// Filter returns the filter selecting this listing's cached records (nil for the catalog)
func (l ListKind) Filter() Filter {
	switch l {
	case ListFavorites:
		return Favorites
	case ListWatchlist:
		return Watchlist
	default:
		return nil
	}
}
