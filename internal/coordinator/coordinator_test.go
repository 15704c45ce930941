package coordinator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/merge"
	"github.com/mmcdole/reel/internal/notify"
	"github.com/mmcdole/reel/internal/store"
	"github.com/mmcdole/reel/internal/writer"
)

// failingStore rejects commits for selected ids
type failingStore struct {
	*store.MovieStore
	failIDs map[int]bool
}

func (s *failingStore) Upsert(id int, fn domain.MutatorFunc) (domain.MutationResult, error) {
	if s.failIDs[id] {
		return domain.MutationResult{}, fmt.Errorf("%w: injected", domain.ErrWriteFailed)
	}
	return s.MovieStore.Upsert(id, fn)
}

// stateRecorder collects observed states
type stateRecorder struct {
	mu     sync.Mutex
	states []State
}

func (r *stateRecorder) OnSyncState(_ domain.ListKind, s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) get() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

type fixture struct {
	store    *store.MovieStore
	notifier *notify.Notifier
	coord    *Coordinator
	sets     chan domain.ChangeSet
}

func newFixture(t *testing.T, failIDs ...int) *fixture {
	t.Helper()

	s, err := store.NewMovieStore("", "")
	require.NoError(t, err)

	var target domain.Store = s
	if len(failIDs) > 0 {
		fs := &failingStore{MovieStore: s, failIDs: make(map[int]bool)}
		for _, id := range failIDs {
			fs.failIDs[id] = true
		}
		target = fs
	}

	w := writer.New(target, 4, nil)
	n := notify.New()
	sets := make(chan domain.ChangeSet, 16)
	n.Subscribe(notify.HandlerFuncs{ChangeSet: func(cs domain.ChangeSet) { sets <- cs }})

	t.Cleanup(func() {
		n.Close()
		w.Close()
		s.Close()
	})

	return &fixture{
		store:    s,
		notifier: n,
		coord:    New(s, w, n),
		sets:     sets,
	}
}

func (f *fixture) seed(t *testing.T, id int, title string, intent domain.Intent) {
	t.Helper()
	_, err := f.store.Upsert(id, merge.Mutator(domain.RemoteMovie{ID: id, Title: title}, intent))
	require.NoError(t, err)
}

func (f *fixture) nextSet(t *testing.T) domain.ChangeSet {
	t.Helper()
	select {
	case cs := <-f.sets:
		return cs
	case <-time.After(2 * time.Second):
		t.Fatal("no change set delivered")
		return domain.ChangeSet{}
	}
}

func TestSync_InsertWithIntent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res := f.coord.Sync(context.Background(), []domain.RemoteMovie{
		{ID: 1, Title: "Dune", PosterPath: "/d.jpg", ReleaseDate: "21-10-01"},
	}, domain.SetFavorite(true))

	require.NoError(t, res.Err)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, 1, res.Applied)

	got, ok := f.store.Get(1)
	require.True(t, ok)
	assert.True(t, got.Favorite)
	assert.Equal(t, 1, f.store.Len())

	cs := f.nextSet(t)
	require.Len(t, cs.Events, 1)
	assert.Equal(t, domain.ChangeInserted, cs.Events[0].Kind)
	assert.Equal(t, 1, cs.Events[0].ID)
	assert.Equal(t, res.Changes.Seq, cs.Seq)
}

func TestSync_CatalogRefreshKeepsFlags(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 1, "Dune", domain.SetFavorite(true))

	res := f.coord.Sync(context.Background(), []domain.RemoteMovie{
		{ID: 1, Title: "Dune: Part Two"},
	}, domain.NoIntent)
	require.NoError(t, res.Err)

	got, _ := f.store.Get(1)
	assert.Equal(t, "Dune: Part Two", got.Title)
	assert.True(t, got.Favorite)

	cs := f.nextSet(t)
	require.Len(t, cs.Events, 1)
	assert.Equal(t, domain.ChangeUpdated, cs.Events[0].Kind)
	assert.Equal(t, domain.FieldTitle, cs.Events[0].Fields)
}

func TestToggleFlag(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 1, "Dune", domain.SetFavorite(true))

	res, err := f.coord.ToggleFlag(context.Background(), 1, domain.FlagFavorite, false)
	require.NoError(t, err)
	assert.Equal(t, domain.MutationUpdated, res.Kind)

	got, _ := f.store.Get(1)
	assert.False(t, got.Favorite)
	assert.Equal(t, "Dune", got.Title)

	cs := f.nextSet(t)
	require.Len(t, cs.Events, 1)
	assert.Equal(t, domain.ChangeUpdated, cs.Events[0].Kind)
	assert.Equal(t, domain.FieldFavorite, cs.Events[0].Fields)
}

func TestToggleFlag_UnknownMovie(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.coord.ToggleFlag(context.Background(), 404, domain.FlagWatchlist, true)
	assert.ErrorIs(t, err, domain.ErrMovieNotFound)
	assert.Equal(t, 0, f.store.Len())
}

func TestToggleFlag_NoChangePublishesNothing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 1, "Dune", domain.SetWatchlist(true))

	res, err := f.coord.ToggleFlag(context.Background(), 1, domain.FlagWatchlist, true)
	require.NoError(t, err)
	assert.Equal(t, domain.MutationNoop, res.Kind)

	select {
	case cs := <-f.sets:
		t.Fatalf("unexpected change set %d", cs.Seq)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSyncFetch_PresentsFromCache(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 1, "Heat", domain.SetWatchlist(true))
	f.seed(t, 2, "Ran", domain.SetWatchlist(true))

	rec := &stateRecorder{}
	f.coord = New(f.store, f.coord.writer, f.notifier, WithObserver(rec))

	res := f.coord.SyncFetch(context.Background(), domain.ListWatchlist, func(context.Context) ([]domain.RemoteMovie, error) {
		return nil, domain.ErrServerOffline
	})

	assert.True(t, res.FromCache)
	assert.ErrorIs(t, res.Err, domain.ErrPresentedFromCache)
	assert.ErrorIs(t, res.Err, domain.ErrServerOffline)
	var fetchErr *domain.FetchError
	require.True(t, errors.As(res.Err, &fetchErr))
	assert.Equal(t, domain.ListWatchlist, fetchErr.List)
	assert.NoError(t, res.UserVisibleError())

	assert.Equal(t, 2, f.store.Count(domain.Watchlist))
	assert.Equal(t, []State{StateFetching, StateDone}, rec.get())
}

func TestSyncFetch_FailsWithEmptyCache(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	// A watchlist entry does not satisfy the favorites view
	f.seed(t, 1, "Heat", domain.SetWatchlist(true))

	res := f.coord.SyncFetch(context.Background(), domain.ListFavorites, func(context.Context) ([]domain.RemoteMovie, error) {
		return nil, domain.ErrServerOffline
	})

	assert.Equal(t, StateFailed, res.State)
	assert.False(t, res.FromCache)
	assert.ErrorIs(t, res.UserVisibleError(), domain.ErrServerOffline)
}

func TestSyncFetch_AppliesListIntent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := &stateRecorder{}
	f.coord = New(f.store, f.coord.writer, f.notifier, WithObserver(rec))

	res := f.coord.SyncFetch(context.Background(), domain.ListWatchlist, func(context.Context) ([]domain.RemoteMovie, error) {
		return []domain.RemoteMovie{{ID: 3, Title: "Up"}, {ID: 4, Title: "Jaws"}}, nil
	})

	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, 2, f.store.Count(domain.Watchlist))
	assert.Equal(t, []State{StateFetching, StateMerging, StatePublishing, StateDone}, rec.get())
}

func TestSync_PartialFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 2)

	res := f.coord.Sync(context.Background(), []domain.RemoteMovie{
		{ID: 1, Title: "Alien"},
		{ID: 2, Title: "Heat"},
		{ID: 3, Title: "Ran"},
	}, domain.SetFavorite(true))

	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, 1, res.Failed)

	var batchErr *domain.BatchError
	require.True(t, errors.As(res.Err, &batchErr))
	assert.Equal(t, 1, batchErr.Failed)
	assert.Equal(t, 3, batchErr.Total)
	assert.ErrorIs(t, res.Err, domain.ErrWriteFailed)

	cs := f.nextSet(t)
	assert.ElementsMatch(t, []int{1, 3}, cs.IDs())
	_, ok := f.store.Get(2)
	assert.False(t, ok)
}

// gatedStore holds writes for one id until another id has committed
type gatedStore struct {
	*store.MovieStore
	held    int
	after   int
	release chan struct{}
}

func (s *gatedStore) Upsert(id int, fn domain.MutatorFunc) (domain.MutationResult, error) {
	if id == s.held {
		<-s.release
	}
	res, err := s.MovieStore.Upsert(id, fn)
	if id == s.after {
		close(s.release)
	}
	return res, err
}

func TestSync_EventsFollowApplyOrder(t *testing.T) {
	t.Parallel()

	s, err := store.NewMovieStore("", "")
	require.NoError(t, err)
	gated := &gatedStore{MovieStore: s, held: 1, after: 3, release: make(chan struct{})}
	w := writer.New(gated, 4, nil)
	n := notify.New()
	t.Cleanup(func() {
		n.Close()
		w.Close()
		s.Close()
	})
	coord := New(s, w, n)

	// Movie 1 is submitted first but commits after movie 3
	res := coord.Sync(context.Background(), []domain.RemoteMovie{
		{ID: 1, Title: "Alien"},
		{ID: 2, Title: "Heat"},
		{ID: 3, Title: "Ran"},
	}, domain.NoIntent)
	require.NoError(t, res.Err)

	ids := res.Changes.IDs()
	require.Len(t, ids, 3)
	assert.Equal(t, 1, ids[2])
	assert.Less(t, slices.Index(ids, 3), slices.Index(ids, 1))
}

func TestSync_AllRecordsFailing(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 1, 2)

	res := f.coord.Sync(context.Background(), []domain.RemoteMovie{
		{ID: 1, Title: "Alien"},
		{ID: 2, Title: "Heat"},
	}, domain.SetWatchlist(true))

	assert.Equal(t, StateFailed, res.State)
	assert.Equal(t, 0, res.Applied)
	assert.Equal(t, 2, res.Failed)
	assert.ErrorIs(t, res.Err, domain.ErrWriteFailed)
	assert.True(t, res.Changes.Empty())
	assert.Equal(t, 0, f.store.Len())
}

func TestSync_IsNotCancelledMidBatch(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := f.coord.Sync(ctx, []domain.RemoteMovie{{ID: 1, Title: "Up"}, {ID: 2, Title: "Ran"}}, domain.NoIntent)
	require.NoError(t, res.Err)
	assert.Equal(t, 2, f.store.Len())
}

func TestSync_Idempotent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	records := []domain.RemoteMovie{{ID: 1, Title: "Up", ReleaseDate: "09-05-29"}}

	first := f.coord.Sync(context.Background(), records, domain.SetFavorite(true))
	require.NoError(t, first.Err)
	before, _ := f.store.Get(1)

	second := f.coord.Sync(context.Background(), records, domain.SetFavorite(true))
	require.NoError(t, second.Err)
	after, _ := f.store.Get(1)

	assert.Equal(t, before, after)
	assert.Equal(t, 0, second.Applied)
	assert.True(t, second.Changes.Empty())
}

func TestSync_ConcurrentCallsSameID(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 1, "Dune", domain.NoIntent)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		f.coord.Sync(context.Background(), []domain.RemoteMovie{{ID: 1, Title: "Dune"}}, domain.SetFavorite(true))
	}()
	go func() {
		defer wg.Done()
		f.coord.Sync(context.Background(), []domain.RemoteMovie{{ID: 1, Title: "Dune"}}, domain.SetWatchlist(true))
	}()
	wg.Wait()

	// Neither intent is lost
	got, _ := f.store.Get(1)
	assert.True(t, got.Favorite)
	assert.True(t, got.Watchlist)
	assert.Equal(t, 1, f.store.Len())
}

func TestPrune(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, 1, "Alien", domain.SetFavorite(true))
	f.seed(t, 2, "Heat", domain.NoIntent)
	f.seed(t, 3, "Ran", domain.SetWatchlist(true))
	f.seed(t, 4, "Jaws", domain.NoIntent)

	res := f.coord.Prune(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Applied)

	cs := f.nextSet(t)
	assert.ElementsMatch(t, []int{2, 4}, cs.IDs())
	for _, ev := range cs.Events {
		assert.Equal(t, domain.ChangeDeleted, ev.Kind)
	}
	assert.Equal(t, 2, f.store.Len())
}

func TestResult_UserVisibleError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		result  Result
		wantErr bool
	}{
		{name: "success", result: Result{State: StateDone}},
		{name: "presented from cache", result: Result{FromCache: true, Err: domain.ErrPresentedFromCache}},
		{name: "fetch failed with nothing cached", result: Result{State: StateFailed, Err: &domain.FetchError{Err: domain.ErrServerOffline}}, wantErr: true},
		{name: "partial failure", result: Result{Err: &domain.BatchError{Failed: 1, Total: 3, First: domain.ErrWriteFailed}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.wantErr {
				assert.Error(t, tt.result.UserVisibleError())
			} else {
				assert.NoError(t, tt.result.UserVisibleError())
			}
		})
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "publishing", StatePublishing.String())
	assert.Equal(t, "unknown", State(42).String())
}
