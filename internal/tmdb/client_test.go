package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/domain/mocks"
)

const testKey = "test-key"

func newTestClient(t *testing.T, h http.Handler, session domain.SessionProvider) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(testKey, session, nil, WithBaseURL(srv.URL), WithRetry(3, time.Millisecond))
}

func loggedIn(t *testing.T) domain.SessionProvider {
	t.Helper()
	ctrl := gomock.NewController(t)
	session := mocks.NewMockSessionProvider(ctrl)
	session.EXPECT().Authorized().Return(true).AnyTimes()
	session.EXPECT().SessionID().Return("sess-1").AnyTimes()
	session.EXPECT().AccountID().Return(77).AnyTimes()
	return session
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_Popular(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/popular", r.URL.Path)
		assert.Equal(t, testKey, r.URL.Query().Get("api_key"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		writeJSON(w, http.StatusOK, pageDTO{
			Page:       1,
			TotalPages: 500,
			Results: []movieDTO{
				{ID: 1, Title: "Dune", PosterPath: "/d.jpg", ReleaseDate: "2021-10-01"},
				{ID: 0, Title: "broken"},
			},
		})
	}), nil)

	movies, err := c.Popular(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, domain.RemoteMovie{ID: 1, Title: "Dune", PosterPath: "/d.jpg", ReleaseDate: "2021-10-01"}, movies[0])
}

func TestClient_FavoritesFollowsPages(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/account/77/favorite/movies", r.URL.Path)
		assert.Equal(t, "sess-1", r.URL.Query().Get("session_id"))

		page := r.URL.Query().Get("page")
		var id int
		_, _ = fmt.Sscanf(page, "%d", &id)
		writeJSON(w, http.StatusOK, pageDTO{
			Page:       id,
			TotalPages: 3,
			Results:    []movieDTO{{ID: id * 10, Title: fmt.Sprintf("Movie %d", id)}},
		})
	}), loggedIn(t))

	movies, err := c.Favorites(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 3)
	assert.Equal(t, []int{10, 20, 30}, []int{movies[0].ID, movies[1].ID, movies[2].ID})
}

func TestClient_AccountListsNeedSession(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}), nil)

	_, err := c.Watchlist(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.ErrorIs(t, c.MarkFavorite(context.Background(), 1, true), domain.ErrNotAuthenticated)
	assert.Zero(t, calls.Load())
}

func TestClient_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, statusDTO{StatusCode: 9, StatusMessage: "Service offline."})
			return
		}
		writeJSON(w, http.StatusOK, pageDTO{Page: 1, TotalPages: 1, Results: []movieDTO{{ID: 5, Title: "Up"}}})
	}), nil)

	movies, err := c.Search(context.Background(), "up")
	require.NoError(t, err)
	assert.Len(t, movies, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_GivesUpAfterMaxTries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusInternalServerError, statusDTO{StatusCode: 11, StatusMessage: "Internal error."})
	}), nil)

	_, err := c.Popular(context.Background())
	require.Error(t, err)
	assert.True(t, IsAPIError(err, http.StatusInternalServerError))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrAuthFailed)
			},
		},
		{
			name:   "not found is not retried",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
				assert.Equal(t, 34, apiErr.Code)
				assert.Contains(t, err.Error(), "could not be found")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var calls atomic.Int32
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				writeJSON(w, tt.status, statusDTO{StatusCode: 34, StatusMessage: "The resource you requested could not be found."})
			}), nil)

			_, err := c.Popular(context.Background())
			require.Error(t, err)
			tt.check(t, err)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestClient_OfflineServer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewClient(testKey, nil, nil, WithBaseURL(srv.URL), WithRetry(2, time.Millisecond))
	_, err := c.Popular(context.Background())
	assert.ErrorIs(t, err, domain.ErrServerOffline)
}

func TestClient_MarkWatchlist(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/account/77/watchlist", r.URL.Path)

		var body markWatchlistRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, markWatchlistRequest{MediaType: "movie", MediaID: 42, Watchlist: true}, body)

		writeJSON(w, http.StatusCreated, statusDTO{Success: true, StatusCode: 1, StatusMessage: "Success."})
	}), loggedIn(t))

	require.NoError(t, c.MarkWatchlist(context.Background(), 42, true))
}

func TestClient_Login(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /authentication/token/new", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, requestTokenDTO{Success: true, RequestToken: "tok-1"})
	})
	mux.HandleFunc("POST /authentication/token/validate_with_login", func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, statusDTO{StatusCode: 30, StatusMessage: "Invalid username and/or password."})
			return
		}
		assert.Equal(t, "tok-1", body.RequestToken)
		writeJSON(w, http.StatusOK, requestTokenDTO{Success: true, RequestToken: "tok-2"})
	})
	mux.HandleFunc("POST /authentication/session/new", func(w http.ResponseWriter, r *http.Request) {
		var body sessionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tok-2", body.RequestToken)
		writeJSON(w, http.StatusOK, sessionDTO{Success: true, SessionID: "sess-9"})
	})
	mux.HandleFunc("GET /account", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sess-9", r.URL.Query().Get("session_id"))
		writeJSON(w, http.StatusOK, accountDTO{ID: 77, Username: "perla"})
	})
	mux.HandleFunc("DELETE /authentication/session", func(w http.ResponseWriter, r *http.Request) {
		var body logoutRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sess-9", body.SessionID)
		writeJSON(w, http.StatusOK, statusDTO{Success: true})
	})

	c := newTestClient(t, mux, nil)

	result, err := c.Login(context.Background(), "perla", "secret")
	require.NoError(t, err)
	assert.Equal(t, &domain.AuthResult{SessionID: "sess-9", AccountID: 77, Username: "perla"}, result)

	_, err = c.Login(context.Background(), "perla", "wrong")
	assert.ErrorIs(t, err, domain.ErrAuthFailed)

	assert.NoError(t, c.Logout(context.Background(), "sess-9"))
	assert.NoError(t, c.Logout(context.Background(), ""))
}

func TestPosterURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://image.tmdb.org/t/p/w500/d.jpg", PosterURL("", "/d.jpg"))
	assert.Equal(t, "http://img/x/d.jpg", PosterURL("http://img/x/", "/d.jpg"))
	assert.Equal(t, "", PosterURL("", ""))
}
