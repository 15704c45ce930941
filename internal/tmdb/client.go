// Package tmdb is a client for The Movie Database v3 API.
package tmdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/mmcdole/reel/internal/domain"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"

	defaultTimeout       = 30 * time.Second
	defaultMaxTries      = 4
	defaultRetryInterval = 500 * time.Millisecond
	maxAccountPages      = 100
	userAgent            = "Reel/1.0"
)

// APIError is a non-success response from TMDB.
type APIError struct {
	StatusCode    int    // HTTP status
	Code          int    // TMDB status_code
	StatusMessage string // TMDB status_message
}

func (e *APIError) Error() string {
	if e.StatusMessage == "" {
		return fmt.Sprintf("tmdb: unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("tmdb: %s (status %d, code %d)", e.StatusMessage, e.StatusCode, e.Code)
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var st statusDTO
	if json.Unmarshal(body, &st) == nil {
		apiErr.Code = st.StatusCode
		apiErr.StatusMessage = st.StatusMessage
	}
	return apiErr
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the API base URL
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRetry sets how many attempts a request gets and the first backoff interval
func WithRetry(maxTries uint, initial time.Duration) Option {
	return func(c *Client) {
		if maxTries > 0 {
			c.maxTries = maxTries
		}
		if initial > 0 {
			c.retryInterval = initial
		}
	}
}

// Client implements domain.CatalogClient and domain.AuthFlow for TMDB
type Client struct {
	baseURL       string
	apiKey        string
	session       domain.SessionProvider
	httpClient    *http.Client
	logger        *slog.Logger
	maxTries      uint
	retryInterval time.Duration
}

// NewClient creates a new TMDB API client. session may be nil for
// unauthenticated use (popular listings, search, login).
func NewClient(apiKey string, session domain.SessionProvider, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		session: session,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:        logger,
		maxTries:      defaultMaxTries,
		retryInterval: defaultRetryInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	return b
}

// doRequest performs a request, retrying network failures, 429 and 5xx
// responses with exponential backoff
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, strings.TrimLeft(path, "/"), query.Encode())

	operation := func() ([]byte, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		if body != nil {
			req.Header.Set("Content-Type", "application/json;charset=utf-8")
		}

		c.logger.Debug("tmdb request", "method", method, "path", path)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, fmt.Errorf("%w: %w", domain.ErrServerOffline, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read response: %w", domain.ErrServerOffline, err)
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, backoff.Permanent(fmt.Errorf("%w: %w", domain.ErrAuthFailed, newAPIError(resp.StatusCode, data)))
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return nil, newAPIError(resp.StatusCode, data)
		case resp.StatusCode >= 300:
			return nil, backoff.Permanent(newAPIError(resp.StatusCode, data))
		}
		return data, nil
	}

	data, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Debug("retrying tmdb request", "path", path, "error", err, "backoff", next)
		}),
	)
	if err != nil {
		c.logger.Error("tmdb request failed", "method", method, "path", path, "error", err)
		return nil, err
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, query url.Values, payload, dest any) error {
	body, err := c.doRequest(ctx, method, path, query, payload)
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) getPage(ctx context.Context, path string, query url.Values, page int) (*pageDTO, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page))

	var p pageDTO
	if err := c.getJSON(ctx, path, q, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// fetchAll follows page/total_pages until the listing is exhausted
func (c *Client) fetchAll(ctx context.Context, path string, query url.Values) ([]domain.RemoteMovie, error) {
	var all []domain.RemoteMovie
	for page := 1; page <= maxAccountPages; page++ {
		p, err := c.getPage(ctx, path, query, page)
		if err != nil {
			return nil, err
		}
		all = append(all, MapMovies(p.Results)...)
		if page >= p.TotalPages {
			break
		}
	}
	return all, nil
}

// accountQuery returns the session query for account endpoints
func (c *Client) accountQuery() (url.Values, int, error) {
	if c.session == nil || !c.session.Authorized() {
		return nil, 0, domain.ErrNotAuthenticated
	}
	q := url.Values{}
	q.Set("session_id", c.session.SessionID())
	return q, c.session.AccountID(), nil
}

// Popular returns the first page of popular movies
func (c *Client) Popular(ctx context.Context) ([]domain.RemoteMovie, error) {
	p, err := c.getPage(ctx, "movie/popular", nil, 1)
	if err != nil {
		return nil, err
	}
	return MapMovies(p.Results), nil
}

// Search returns the first page of movies matching query
func (c *Client) Search(ctx context.Context, query string) ([]domain.RemoteMovie, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	q := url.Values{}
	q.Set("query", query)

	p, err := c.getPage(ctx, "search/movie", q, 1)
	if err != nil {
		return nil, err
	}
	return MapMovies(p.Results), nil
}

// Favorites returns every movie on the account's favorites list
func (c *Client) Favorites(ctx context.Context) ([]domain.RemoteMovie, error) {
	q, accountID, err := c.accountQuery()
	if err != nil {
		return nil, err
	}
	return c.fetchAll(ctx, fmt.Sprintf("account/%d/favorite/movies", accountID), q)
}

// Watchlist returns every movie on the account's watchlist
func (c *Client) Watchlist(ctx context.Context) ([]domain.RemoteMovie, error) {
	q, accountID, err := c.accountQuery()
	if err != nil {
		return nil, err
	}
	return c.fetchAll(ctx, fmt.Sprintf("account/%d/watchlist/movies", accountID), q)
}

// MarkFavorite sets the favorite flag on TMDB
func (c *Client) MarkFavorite(ctx context.Context, movieID int, favorite bool) error {
	q, accountID, err := c.accountQuery()
	if err != nil {
		return err
	}
	req := markFavoriteRequest{MediaType: "movie", MediaID: movieID, Favorite: favorite}
	return c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("account/%d/favorite", accountID), q, req, nil)
}

// MarkWatchlist sets the watchlist flag on TMDB
func (c *Client) MarkWatchlist(ctx context.Context, movieID int, watchlist bool) error {
	q, accountID, err := c.accountQuery()
	if err != nil {
		return err
	}
	req := markWatchlistRequest{MediaType: "movie", MediaID: movieID, Watchlist: watchlist}
	return c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("account/%d/watchlist", accountID), q, req, nil)
}

// IsAPIError reports whether err carries a TMDB error with the given HTTP status
func IsAPIError(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
