package view

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/reel/internal/domain"
)

// TitleFilter matches movies whose title contains the characters of q in order,
// ignoring case. An empty q matches everything.
func TitleFilter(q string) domain.Filter {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}
	return func(m domain.Movie) bool {
		return fuzzy.MatchFold(q, m.Title)
	}
}

// And combines filters; nil filters are skipped
func And(filters ...domain.Filter) domain.Filter {
	var active []domain.Filter
	for _, f := range filters {
		if f != nil {
			active = append(active, f)
		}
	}
	if len(active) == 0 {
		return nil
	}
	return func(m domain.Movie) bool {
		for _, f := range active {
			if !f(m) {
				return false
			}
		}
		return true
	}
}
