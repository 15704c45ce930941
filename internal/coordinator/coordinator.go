// Package coordinator applies batches of remote records to the cache and
// publishes the resulting change sets.
package coordinator

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/merge"
	"github.com/mmcdole/reel/internal/notify"
	"github.com/mmcdole/reel/internal/telemetry"
	"github.com/mmcdole/reel/internal/writer"
)

// State is the progress of one sync call
type State int

const (
	StateIdle State = iota
	StateFetching
	StateMerging
	StatePublishing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateMerging:
		return "merging"
	case StatePublishing:
		return "publishing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Observer receives state transitions of sync calls
type Observer interface {
	OnSyncState(list domain.ListKind, state State)
}

// NoOpObserver discards state transitions
type NoOpObserver struct{}

func (NoOpObserver) OnSyncState(domain.ListKind, State) {}

// FetchFunc retrieves one listing from the catalog
type FetchFunc func(ctx context.Context) ([]domain.RemoteMovie, error)

// Result is the outcome of a sync call.
type Result struct {
	List      domain.ListKind
	State     State
	Applied   int // Records that changed the cache
	Failed    int // Records that could not be written
	Changes   domain.ChangeSet
	FromCache bool // Fetch failed; cached records are shown instead
	Err       error
}

// UserVisibleError returns the error to show the user, if any.
// A failed fetch is hidden when the cache already has something to show.
func (r Result) UserVisibleError() error {
	if r.Err == nil || r.FromCache || errors.Is(r.Err, domain.ErrPresentedFromCache) {
		return nil
	}
	return r.Err
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSyncMetrics records sync durations and record counts
func WithSyncMetrics(m *telemetry.SyncMetrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithObserver reports state transitions to o
func WithObserver(o Observer) Option {
	return func(c *Coordinator) {
		if o != nil {
			c.observer = o
		}
	}
}

// Coordinator orchestrates merge, write and publish for remote batches and
// user edits.
type Coordinator struct {
	store    domain.Reader
	writer   *writer.Serializer
	notifier *notify.Notifier
	logger   *slog.Logger
	metrics  *telemetry.SyncMetrics
	observer Observer
}

// New creates a coordinator. All writes go through w; reads use store.
func New(store domain.Reader, w *writer.Serializer, n *notify.Notifier, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:    store,
		writer:   w,
		notifier: n,
		logger:   slog.Default(),
		observer: NoOpObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func listForIntent(intent domain.Intent) domain.ListKind {
	switch intent.Kind {
	case domain.IntentFavorite:
		return domain.ListFavorites
	case domain.IntentWatchlist:
		return domain.ListWatchlist
	default:
		return domain.ListCatalog
	}
}

// Sync merges records into the cache under intent and publishes one change
// set for the whole batch. The batch is not cancelled by ctx: once submitted,
// every record is applied or fails before Sync returns.
func (c *Coordinator) Sync(ctx context.Context, records []domain.RemoteMovie, intent domain.Intent) Result {
	return c.sync(ctx, listForIntent(intent), records, intent)
}

func (c *Coordinator) sync(ctx context.Context, list domain.ListKind, records []domain.RemoteMovie, intent domain.Intent) Result {
	start := time.Now()
	c.observer.OnSyncState(list, StateMerging)

	pending := make([]*writer.Pending, len(records))
	for i, r := range records {
		pending[i] = c.writer.Submit(r.ID, merge.Mutator(r, intent))
	}

	waitCtx := context.WithoutCancel(ctx)
	applied := make([]domain.MutationResult, 0, len(records))
	var (
		failed   int
		firstErr error
	)
	for i, p := range pending {
		res, err := p.Wait(waitCtx)
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = fmt.Errorf("movie %d: %w", records[i].ID, err)
			}
			c.logger.Error("failed to apply record", "error", err, "movieID", records[i].ID, "list", list)
			continue
		}
		applied = append(applied, res)
	}

	events := inApplyOrder(applied)
	c.observer.OnSyncState(list, StatePublishing)
	cs := c.notifier.Publish(events)

	result := Result{
		List:    list,
		State:   StateDone,
		Applied: len(events),
		Failed:  failed,
		Changes: cs,
	}
	if failed > 0 {
		result.Err = &domain.BatchError{Failed: failed, Total: len(records), First: firstErr}
		if failed == len(records) {
			result.State = StateFailed
		}
	}

	c.metrics.RecordSync(ctx, list.String(), time.Since(start), result.Applied, failed)
	c.observer.OnSyncState(list, result.State)
	c.logger.Debug("sync complete",
		"list", list,
		"count", len(records),
		"applied", result.Applied,
		"failed", failed,
		"seq", cs.Seq,
	)
	return result
}

// SyncFetch runs fetch and syncs what it returns under the list's intent.
//
// If the fetch fails and the store already holds records for the list, the
// result is FromCache with an error wrapping domain.ErrPresentedFromCache and
// the store is left untouched.
func (c *Coordinator) SyncFetch(ctx context.Context, list domain.ListKind, fetch FetchFunc) Result {
	c.observer.OnSyncState(list, StateFetching)

	records, err := fetch(ctx)
	if err != nil {
		fetchErr := &domain.FetchError{List: list, Err: err}

		if list != domain.ListCatalog {
			if cached := c.store.Count(list.Filter()); cached > 0 {
				c.logger.Warn("fetch failed, presenting cached records", "error", err, "list", list, "count", cached)
				c.observer.OnSyncState(list, StateDone)
				return Result{
					List:      list,
					State:     StateDone,
					FromCache: true,
					Err:       fmt.Errorf("%w: %w", domain.ErrPresentedFromCache, fetchErr),
				}
			}
		}

		c.logger.Error("fetch failed", "error", err, "list", list)
		c.observer.OnSyncState(list, StateFailed)
		return Result{List: list, State: StateFailed, Err: fetchErr}
	}

	return c.sync(ctx, list, records, list.Intent())
}

// ToggleFlag sets one flag of a cached movie and publishes the change.
// Catalog fields are not touched. Unknown ids fail with domain.ErrMovieNotFound.
func (c *Coordinator) ToggleFlag(ctx context.Context, id int, flag domain.FlagKind, value bool) (domain.MutationResult, error) {
	res, err := c.writer.Submit(id, merge.FlagMutator(flag, value)).Wait(context.WithoutCancel(ctx))
	if err != nil {
		c.logger.Error("failed to toggle flag", "error", err, "movieID", id, "flag", flag)
		return domain.MutationResult{}, err
	}

	if ev, ok := res.Event(); ok {
		c.notifier.Publish([]domain.ChangeEvent{ev})
	}
	c.logger.Debug("flag toggled", "movieID", id, "flag", flag, "value", value, "result", res.Kind)
	return res, nil
}

// Prune deletes cached movies that are on neither list and publishes the
// deletions. A movie flagged while the prune is in flight is kept.
func (c *Coordinator) Prune(ctx context.Context) Result {
	candidates, err := c.store.All(domain.Unflagged, domain.ByID)
	if err != nil {
		return Result{List: domain.ListCatalog, State: StateFailed, Err: err}
	}

	pending := make([]*writer.Pending, len(candidates))
	for i, m := range candidates {
		pending[i] = c.writer.SubmitDeleteIf(m.ID, domain.Unflagged)
	}

	waitCtx := context.WithoutCancel(ctx)
	var (
		applied  []domain.MutationResult
		failed   int
		firstErr error
	)
	for i, p := range pending {
		res, err := p.Wait(waitCtx)
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = fmt.Errorf("movie %d: %w", candidates[i].ID, err)
			}
			continue
		}
		applied = append(applied, res)
	}

	events := inApplyOrder(applied)
	cs := c.notifier.Publish(events)
	result := Result{List: domain.ListCatalog, State: StateDone, Applied: len(events), Failed: failed, Changes: cs}
	if failed > 0 {
		result.Err = &domain.BatchError{Failed: failed, Total: len(candidates), First: firstErr}
		if failed == len(candidates) {
			result.State = StateFailed
		}
	}
	c.logger.Info("pruned cache", "removed", len(events), "failed", failed)
	return result
}

// inApplyOrder returns the events of results ordered by when the store
// applied them. Different ids may commit out of submission order.
func inApplyOrder(results []domain.MutationResult) []domain.ChangeEvent {
	slices.SortStableFunc(results, func(a, b domain.MutationResult) int {
		return cmp.Compare(a.Seq, b.Seq)
	})
	events := make([]domain.ChangeEvent, 0, len(results))
	for _, r := range results {
		if ev, ok := r.Event(); ok {
			events = append(events, ev)
		}
	}
	return events
}
