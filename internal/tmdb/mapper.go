package tmdb

import (
	"strings"

	"github.com/mmcdole/reel/internal/domain"
)

// MapMovies converts TMDB listings to remote movies, dropping entries without an id
func MapMovies(dtos []movieDTO) []domain.RemoteMovie {
	movies := make([]domain.RemoteMovie, 0, len(dtos))
	for _, d := range dtos {
		if d.ID == 0 {
			continue
		}
		movies = append(movies, domain.RemoteMovie{
			ID:          d.ID,
			Title:       d.Title,
			PosterPath:  d.PosterPath,
			ReleaseDate: d.ReleaseDate,
		})
	}
	return movies
}

// PosterURL builds the full image URL for a poster path. Empty paths give "".
func PosterURL(imageBaseURL, posterPath string) string {
	if posterPath == "" {
		return ""
	}
	if imageBaseURL == "" {
		imageBaseURL = DefaultImageBaseURL
	}
	return strings.TrimRight(imageBaseURL, "/") + "/" + strings.TrimLeft(posterPath, "/")
}
