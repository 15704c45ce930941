package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrWriteFailed indicates a store commit failed and the mutation was not applied
	ErrWriteFailed = errors.New("store write failed")

	// ErrPresentedFromCache indicates a fetch failed but cached records satisfy the view
	ErrPresentedFromCache = errors.New("fetch failed, presented from cache")

	// ErrBackpressure indicates a subscriber queue overflowed and it must resynchronize
	ErrBackpressure = errors.New("subscriber queue saturated")

	// ErrMovieNotFound indicates the requested movie is not cached
	ErrMovieNotFound = errors.New("movie not found")

	// ErrWriterClosed indicates a write was submitted after shutdown
	ErrWriterClosed = errors.New("writer is closed")

	// ErrServerOffline indicates the catalog service is unreachable
	ErrServerOffline = errors.New("catalog service is unreachable")

	// ErrAuthFailed indicates authentication failed
	ErrAuthFailed = errors.New("session is invalid")

	// ErrNotAuthenticated indicates an account listing was requested without a session
	ErrNotAuthenticated = errors.New("not logged in")
)

// FetchError wraps a failure reported by the catalog client for one listing.
type FetchError struct {
	List ListKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.List, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// BatchError reports the records of one sync call that could not be applied.
type BatchError struct {
	Failed int
	Total  int
	First  error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%d of %d records failed: %v", e.Failed, e.Total, e.First)
}

func (e *BatchError) Unwrap() error { return e.First }
