package view

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/reel/internal/domain"
)

// Match is a search hit within a view
type Match struct {
	Movie          domain.Movie
	MatchedIndexes []int // Title positions that matched (for highlighting)
}

// titleSource implements fuzzy.Source over lowercase titles
type titleSource []string

func (s titleSource) String(i int) string { return s[i] }
func (s titleSource) Len() int            { return len(s) }

// Search ranks the view's movies by fuzzy title match, best first.
// An empty pattern matches nothing.
func (v *Live) Search(pattern string) []Match {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}

	items := v.Snapshot()
	titles := make(titleSource, len(items))
	for i, m := range items {
		titles[i] = strings.ToLower(m.Title)
	}

	found := fuzzy.FindFrom(strings.ToLower(pattern), titles)
	matches := make([]Match, len(found))
	for i, f := range found {
		matches[i] = Match{Movie: items[f.Index], MatchedIndexes: f.MatchedIndexes}
	}
	return matches
}
