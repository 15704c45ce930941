// Package catalog connects TMDB listings to the cache.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/reel/internal/coordinator"
	"github.com/mmcdole/reel/internal/domain"
)

// Service runs fetches against the catalog client and hands the results to
// the coordinator.
type Service struct {
	client  domain.CatalogClient
	session domain.SessionProvider
	store   domain.Reader
	coord   *coordinator.Coordinator
	logger  *slog.Logger
}

// NewService creates a new catalog service.
func NewService(
	client domain.CatalogClient,
	session domain.SessionProvider,
	store domain.Reader,
	coord *coordinator.Coordinator,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, session: session, store: store, coord: coord, logger: logger}
}

// RefreshFavorites fetches the account's favorites and marks them in the cache
func (s *Service) RefreshFavorites(ctx context.Context) coordinator.Result {
	return s.refreshAccountList(ctx, domain.ListFavorites, s.client.Favorites)
}

// RefreshWatchlist fetches the account's watchlist and marks it in the cache
func (s *Service) RefreshWatchlist(ctx context.Context) coordinator.Result {
	return s.refreshAccountList(ctx, domain.ListWatchlist, s.client.Watchlist)
}

func (s *Service) refreshAccountList(ctx context.Context, list domain.ListKind, fetch coordinator.FetchFunc) coordinator.Result {
	if !s.session.Authorized() {
		s.logger.Debug("skipping account fetch without session", "list", list)
		return coordinator.Result{List: list, State: coordinator.StateFailed, Err: domain.ErrNotAuthenticated}
	}
	return s.coord.SyncFetch(ctx, list, fetch)
}

// RefreshPopular fetches the popular listing. Flags of cached movies are kept.
func (s *Service) RefreshPopular(ctx context.Context) coordinator.Result {
	return s.coord.SyncFetch(ctx, domain.ListCatalog, s.client.Popular)
}

// Search queries the catalog, caches the hits and returns them in catalog order
// with their local flags.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Movie, coordinator.Result) {
	var records []domain.RemoteMovie
	res := s.coord.SyncFetch(ctx, domain.ListCatalog, func(ctx context.Context) ([]domain.RemoteMovie, error) {
		var err error
		records, err = s.client.Search(ctx, query)
		return records, err
	})
	if res.State == coordinator.StateFailed {
		return nil, res
	}

	movies := make([]domain.Movie, 0, len(records))
	for _, r := range records {
		if m, ok := s.store.Get(r.ID); ok {
			movies = append(movies, m)
		}
	}
	s.logger.Debug("search complete", "query", query, "count", len(movies))
	return movies, res
}

// RefreshAll fetches favorites and watchlist concurrently. One list failing
// does not stop the other; each outcome is in its own result.
func (s *Service) RefreshAll(ctx context.Context) []coordinator.Result {
	results := make([]coordinator.Result, 2)

	var g errgroup.Group
	g.Go(func() error {
		results[0] = s.RefreshFavorites(ctx)
		return results[0].UserVisibleError()
	})
	g.Go(func() error {
		results[1] = s.RefreshWatchlist(ctx)
		return results[1].UserVisibleError()
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("refresh incomplete", "error", err)
	}

	return results
}

// SetFavorite flags a cached movie as favorite and pushes the change to TMDB.
// The local edit stands even when the push fails.
func (s *Service) SetFavorite(ctx context.Context, movieID int, favorite bool) (domain.MutationResult, error) {
	return s.setFlag(ctx, movieID, domain.FlagFavorite, favorite)
}

// SetWatchlist is SetFavorite for the watchlist flag
func (s *Service) SetWatchlist(ctx context.Context, movieID int, watchlist bool) (domain.MutationResult, error) {
	return s.setFlag(ctx, movieID, domain.FlagWatchlist, watchlist)
}

func (s *Service) setFlag(ctx context.Context, movieID int, flag domain.FlagKind, value bool) (domain.MutationResult, error) {
	res, err := s.coord.ToggleFlag(ctx, movieID, flag, value)
	if err != nil {
		return res, err
	}

	if !s.session.Authorized() {
		return res, fmt.Errorf("push %s for movie %d: %w", flag, movieID, domain.ErrNotAuthenticated)
	}

	if flag == domain.FlagWatchlist {
		err = s.client.MarkWatchlist(ctx, movieID, value)
	} else {
		err = s.client.MarkFavorite(ctx, movieID, value)
	}
	if err != nil {
		s.logger.Error("failed to push flag", "error", err, "movieID", movieID, "flag", flag, "value", value)
		return res, fmt.Errorf("push %s for movie %d: %w", flag, movieID, err)
	}
	return res, nil
}
