package tmdb

// movieDTO is a movie as listed by TMDB
type movieDTO struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	PosterPath  string `json:"poster_path"` // null decodes to ""
	ReleaseDate string `json:"release_date"`
}

// pageDTO is one page of a movie listing
type pageDTO struct {
	Page         int        `json:"page"`
	Results      []movieDTO `json:"results"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
}

type requestTokenDTO struct {
	Success      bool   `json:"success"`
	ExpiresAt    string `json:"expires_at"`
	RequestToken string `json:"request_token"`
}

type sessionDTO struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id"`
}

type accountDTO struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// statusDTO is the generic TMDB status body, returned on errors and by write endpoints
type statusDTO struct {
	Success       bool   `json:"success"`
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

type loginRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	RequestToken string `json:"request_token"`
}

type sessionRequest struct {
	RequestToken string `json:"request_token"`
}

type logoutRequest struct {
	SessionID string `json:"session_id"`
}

type markFavoriteRequest struct {
	MediaType string `json:"media_type"`
	MediaID   int    `json:"media_id"`
	Favorite  bool   `json:"favorite"`
}

type markWatchlistRequest struct {
	MediaType string `json:"media_type"`
	MediaID   int    `json:"media_id"`
	Watchlist bool   `json:"watchlist"`
}
