// Package merge reconciles remote movie records with cached state.
// Everything here is pure: no I/O, no locks, same inputs give the same output.
package merge

import (
	"fmt"
	"time"

	"github.com/mmcdole/reel/internal/domain"
)

// Release date layouts accepted from the catalog, tried in order.
// The four-digit form must come first: "06" would accept the "20" of "2021-..." and fail later.
var releaseDateLayouts = []string{
	"2006-01-02",
	"06-01-02",
}

// ParseReleaseDate parses a remote release date. Unparseable or empty input yields the zero time.
func ParseReleaseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Resolve computes the record that results from merging incoming into existing under intent.
//
// Rules, in order:
//  1. No existing record: build one from the incoming catalog fields, flags from intent or false.
//  2. Existing record: keep its flags, overwrite title, poster path and release date from incoming.
//  3. A favorite intent sets Favorite when it differs.
//  4. A watchlist intent sets Watchlist when it differs.
func Resolve(existing *domain.Movie, incoming domain.RemoteMovie, intent domain.Intent) domain.Movie {
	var m domain.Movie
	if existing != nil {
		m = *existing
	}
	m.ID = incoming.ID
	m.Title = incoming.Title
	m.PosterPath = incoming.PosterPath
	m.ReleaseDate = ParseReleaseDate(incoming.ReleaseDate)
	return ApplyIntent(m, intent)
}

// ApplyIntent sets the flag named by intent. NoIntent returns m unchanged.
func ApplyIntent(m domain.Movie, intent domain.Intent) domain.Movie {
	switch intent.Kind {
	case domain.IntentFavorite:
		if m.Favorite != intent.Value {
			m.Favorite = intent.Value
		}
	case domain.IntentWatchlist:
		if m.Watchlist != intent.Value {
			m.Watchlist = intent.Value
		}
	}
	return m
}

// Diff reports the fields that differ between two versions of a record
func Diff(old, updated domain.Movie) domain.Fields {
	var fs domain.Fields
	if old.Title != updated.Title {
		fs |= domain.FieldTitle
	}
	if old.PosterPath != updated.PosterPath {
		fs |= domain.FieldPosterPath
	}
	if !old.ReleaseDate.Equal(updated.ReleaseDate) {
		fs |= domain.FieldReleaseDate
	}
	if old.Favorite != updated.Favorite {
		fs |= domain.FieldFavorite
	}
	if old.Watchlist != updated.Watchlist {
		fs |= domain.FieldWatchlist
	}
	return fs
}

// Mutator returns the store mutator that merges a remote record
func Mutator(incoming domain.RemoteMovie, intent domain.Intent) domain.MutatorFunc {
	return func(existing *domain.Movie) (domain.Movie, domain.Fields, error) {
		merged := Resolve(existing, incoming, intent)
		if existing == nil {
			return merged, domain.FieldsAll, nil
		}
		return merged, Diff(*existing, merged), nil
	}
}

// FlagMutator returns the mutator for a direct user edit of one flag.
// Catalog fields are preserved; the movie must already be cached.
func FlagMutator(kind domain.FlagKind, value bool) domain.MutatorFunc {
	return func(existing *domain.Movie) (domain.Movie, domain.Fields, error) {
		if existing == nil {
			return domain.Movie{}, domain.FieldsNone, fmt.Errorf("set %s: %w", kind, domain.ErrMovieNotFound)
		}
		updated := ApplyIntent(*existing, domain.IntentFor(kind, value))
		return updated, Diff(*existing, updated), nil
	}
}
