// Package view keeps filtered, sorted projections of the movie store current.
//
// A Live view treats every change set as an invalidation: it re-reads the
// affected ids from the store and updates its own membership and order.
// Sets published out of commit order therefore still converge on the
// store's state.
package view

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/merge"
	"github.com/mmcdole/reel/internal/notify"
)

// Query selects and orders the movies of a view
type Query struct {
	Filter domain.Filter
	Sort   domain.SortKey
}

// Favorites is the favorites list as the app shows it (newest first)
var Favorites = Query{Filter: domain.Favorites, Sort: domain.ByReleaseDateDesc}

// Watchlist is the watchlist as the app shows it (newest first)
var Watchlist = Query{Filter: domain.Watchlist, Sort: domain.ByReleaseDateDesc}

// ForList returns the query backing a list
func ForList(list domain.ListKind) Query {
	return Query{Filter: list.Filter(), Sort: domain.ByReleaseDateDesc}
}

// Update is what a view reports to its listener.
// Changes is relative to the view: a movie entering the view is Inserted,
// one leaving it is Deleted, even if the store updated it in place.
type Update struct {
	Changes  domain.ChangeSet
	Resynced bool // Snapshot was reloaded; Changes is empty
}

// Listener receives view updates from the notifier's delivery goroutine
type Listener func(Update)

// Option configures a Live view
type Option func(*Live)

// WithListener sets the function called after the view changes
func WithListener(l Listener) Option {
	return func(v *Live) {
		v.listener = l
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(v *Live) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// Live is a continuously updated query result.
type Live struct {
	reader   domain.Reader
	query    Query
	sub      *notify.Subscription
	listener Listener
	logger   *slog.Logger

	mu      sync.RWMutex
	items   []domain.Movie       // Sorted by query.Sort
	members map[int]domain.Movie // Same records keyed by id
	seq     uint64               // Last applied change set
	closed  bool                 // Change sets are ignored once set
}

// New subscribes to n, then loads the initial snapshot from reader.
// Change sets that arrive during the load are applied after it.
func New(reader domain.Reader, n *notify.Notifier, q Query, opts ...Option) (*Live, error) {
	v := &Live{
		reader:  reader,
		query:   q,
		logger:  slog.Default(),
		members: make(map[int]domain.Movie),
	}
	for _, opt := range opts {
		opt(v)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.sub = n.Subscribe(v)
	if err := v.loadLocked(); err != nil {
		// A delivery may already be waiting on mu
		v.closed = true
		v.sub.Close()
		return nil, fmt.Errorf("load view: %w", err)
	}
	return v, nil
}

func (v *Live) loadLocked() error {
	items, err := v.reader.All(v.query.Filter, v.query.Sort)
	if err != nil {
		return err
	}
	v.items = items
	v.members = make(map[int]domain.Movie, len(items))
	for _, m := range items {
		v.members[m.ID] = m
	}
	return nil
}

// OnChangeSet implements notify.Handler
func (v *Live) OnChangeSet(cs domain.ChangeSet) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	events := v.applyLocked(cs)
	v.seq = cs.Seq
	v.mu.Unlock()

	if len(events) > 0 && v.listener != nil {
		v.listener(Update{Changes: domain.ChangeSet{Seq: cs.Seq, Events: events}})
	}
}

// OnBackpressure implements notify.Handler
func (v *Live) OnBackpressure() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	err := v.loadLocked()
	v.mu.Unlock()

	if err != nil {
		v.logger.Error("failed to resync view", "error", err)
		return
	}
	v.logger.Debug("view resynced", "count", v.Len())
	if v.listener != nil {
		v.listener(Update{Resynced: true})
	}
}

// applyLocked re-reads every id touched by cs and returns view-relative events
func (v *Live) applyLocked(cs domain.ChangeSet) []domain.ChangeEvent {
	var events []domain.ChangeEvent
	for _, id := range cs.IDs() {
		old, wasIn := v.members[id]
		current, exists := v.reader.Get(id)
		nowIn := exists && v.query.Filter.Match(current)

		switch {
		case !wasIn && nowIn:
			v.insertLocked(current)
			events = append(events, domain.ChangeEvent{Kind: domain.ChangeInserted, ID: id, Movie: current, Fields: domain.FieldsAll})
		case wasIn && nowIn:
			fields := merge.Diff(old, current)
			if fields == domain.FieldsNone {
				continue
			}
			v.removeLocked(old)
			v.insertLocked(current)
			events = append(events, domain.ChangeEvent{Kind: domain.ChangeUpdated, ID: id, Movie: current, Fields: fields})
		case wasIn && !nowIn:
			v.removeLocked(old)
			events = append(events, domain.ChangeEvent{Kind: domain.ChangeDeleted, ID: id})
		}
	}
	return events
}

func (v *Live) insertLocked(m domain.Movie) {
	i, _ := slices.BinarySearchFunc(v.items, m, v.query.Sort.Compare)
	v.items = slices.Insert(v.items, i, m)
	v.members[m.ID] = m
}

func (v *Live) removeLocked(m domain.Movie) {
	if i, found := slices.BinarySearchFunc(v.items, m, v.query.Sort.Compare); found {
		v.items = slices.Delete(v.items, i, i+1)
	}
	delete(v.members, m.ID)
}

// Snapshot returns a copy of the current items in order
func (v *Live) Snapshot() []domain.Movie {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.items)
}

// Get returns the movie with the given id if it is in the view
func (v *Live) Get(id int) (domain.Movie, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	m, ok := v.members[id]
	return m, ok
}

func (v *Live) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.items)
}

func (v *Live) Empty() bool {
	return v.Len() == 0
}

// Seq returns the sequence number of the last change set applied
func (v *Live) Seq() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.seq
}

// Close stops receiving change sets
func (v *Live) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	v.sub.Close()
}
