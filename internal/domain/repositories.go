package domain

import (
	"context"
)

//go:generate mockgen -destination=mocks/mock_repositories.go -package=mocks -source=repositories.go CatalogClient,SessionProvider

// CatalogClient provides access to the remote movie catalog (implemented by tmdb.Client)
type CatalogClient interface {
	// Popular returns the current popular movies listing
	Popular(ctx context.Context) ([]RemoteMovie, error)

	// Search returns catalog movies matching a free-text query
	Search(ctx context.Context, query string) ([]RemoteMovie, error)

	// Favorites returns every movie the account marked as favorite
	Favorites(ctx context.Context) ([]RemoteMovie, error)

	// Watchlist returns every movie on the account watchlist
	Watchlist(ctx context.Context) ([]RemoteMovie, error)

	// MarkFavorite sets the remote favorite flag for a movie
	MarkFavorite(ctx context.Context, movieID int, favorite bool) error

	// MarkWatchlist sets the remote watchlist flag for a movie
	MarkWatchlist(ctx context.Context, movieID int, watchlist bool) error
}

// SessionProvider exposes the current login session.
// The cache engine never inspects the session id; it only asks whether a fetch is authorized.
type SessionProvider interface {
	SessionID() string
	AccountID() int
	Authorized() bool
}

// AuthResult contains the result of a successful login
type AuthResult struct {
	SessionID string // Session id for account endpoints
	AccountID int    // Account identifier
	Username  string // Display username
}

// AuthFlow performs a login against the catalog service.
type AuthFlow interface {
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
}
