package merge

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseReleaseDate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{name: "two digit year", input: "21-10-01", want: date(2021, time.October, 1)},
		{name: "four digit year", input: "2021-10-01", want: date(2021, time.October, 1)},
		{name: "empty", input: "", want: time.Time{}},
		{name: "garbage", input: "soon", want: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.True(t, tt.want.Equal(ParseReleaseDate(tt.input)), "got %v", ParseReleaseDate(tt.input))
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	dune := domain.RemoteMovie{ID: 1, Title: "Dune", PosterPath: "/d.jpg", ReleaseDate: "21-10-01"}
	cached := &domain.Movie{ID: 1, Title: "Dune", PosterPath: "/d.jpg", ReleaseDate: date(2021, time.October, 1), Favorite: true}

	tests := []struct {
		name     string
		existing *domain.Movie
		incoming domain.RemoteMovie
		intent   domain.Intent
		want     domain.Movie
	}{
		{
			name:     "new record without intent has flags off",
			incoming: dune,
			intent:   domain.NoIntent,
			want:     domain.Movie{ID: 1, Title: "Dune", PosterPath: "/d.jpg", ReleaseDate: date(2021, time.October, 1)},
		},
		{
			name:     "new record with favorite intent",
			incoming: dune,
			intent:   domain.SetFavorite(true),
			want:     domain.Movie{ID: 1, Title: "Dune", PosterPath: "/d.jpg", ReleaseDate: date(2021, time.October, 1), Favorite: true},
		},
		{
			name:     "new record with watchlist intent",
			incoming: dune,
			intent:   domain.SetWatchlist(true),
			want:     domain.Movie{ID: 1, Title: "Dune", PosterPath: "/d.jpg", ReleaseDate: date(2021, time.October, 1), Watchlist: true},
		},
		{
			name:     "catalog refresh keeps flags and overwrites catalog fields",
			existing: cached,
			incoming: domain.RemoteMovie{ID: 1, Title: "Dune: Part Two", PosterPath: "/d2.jpg", ReleaseDate: "2024-03-01"},
			intent:   domain.NoIntent,
			want:     domain.Movie{ID: 1, Title: "Dune: Part Two", PosterPath: "/d2.jpg", ReleaseDate: date(2024, time.March, 1), Favorite: true},
		},
		{
			name:     "watchlist intent leaves favorite alone",
			existing: cached,
			incoming: dune,
			intent:   domain.SetWatchlist(true),
			want:     domain.Movie{ID: 1, Title: "Dune", PosterPath: "/d.jpg", ReleaseDate: date(2021, time.October, 1), Favorite: true, Watchlist: true},
		},
		{
			name:     "favorite intent can clear the flag",
			existing: cached,
			incoming: dune,
			intent:   domain.SetFavorite(false),
			want:     domain.Movie{ID: 1, Title: "Dune", PosterPath: "/d.jpg", ReleaseDate: date(2021, time.October, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Resolve(tt.existing, tt.incoming, tt.intent)
			assert.Equal(t, tt.want.ID, got.ID)
			assert.Equal(t, tt.want.Title, got.Title)
			assert.Equal(t, tt.want.PosterPath, got.PosterPath)
			assert.True(t, tt.want.ReleaseDate.Equal(got.ReleaseDate))
			assert.Equal(t, tt.want.Favorite, got.Favorite)
			assert.Equal(t, tt.want.Watchlist, got.Watchlist)
		})
	}
}

func TestResolve_DoesNotMutateExisting(t *testing.T) {
	t.Parallel()

	existing := &domain.Movie{ID: 7, Title: "Old", Favorite: true}
	_ = Resolve(existing, domain.RemoteMovie{ID: 7, Title: "New"}, domain.SetFavorite(false))

	assert.Equal(t, "Old", existing.Title)
	assert.True(t, existing.Favorite)
}

func randomRemote(r *rand.Rand, id int) domain.RemoteMovie {
	titles := []string{"Alien", "Heat", "Ran", "Up", ""}
	dates := []string{"79-05-25", "1995-12-15", "", "bad"}
	return domain.RemoteMovie{
		ID:          id,
		Title:       titles[r.IntN(len(titles))],
		PosterPath:  []string{"", "/a.jpg", "/b.jpg"}[r.IntN(3)],
		ReleaseDate: dates[r.IntN(len(dates))],
	}
}

func TestResolve_FlagPreservation(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		existing := Resolve(nil, randomRemote(r, i), domain.NoIntent)
		existing.Favorite = r.IntN(2) == 0
		existing.Watchlist = r.IntN(2) == 0

		got := Resolve(&existing, randomRemote(r, i), domain.NoIntent)

		require.Equal(t, existing.Favorite, got.Favorite, "iteration %d", i)
		require.Equal(t, existing.Watchlist, got.Watchlist, "iteration %d", i)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(3, 4))
	intents := []domain.Intent{domain.NoIntent, domain.SetFavorite(true), domain.SetFavorite(false), domain.SetWatchlist(true)}
	for i := 0; i < 200; i++ {
		existing := Resolve(nil, randomRemote(r, i), intents[r.IntN(len(intents))])
		incoming := randomRemote(r, i)
		intent := intents[r.IntN(len(intents))]

		a := Resolve(&existing, incoming, intent)
		b := Resolve(&existing, incoming, intent)
		require.Equal(t, a, b)
	}
}

func TestDiff(t *testing.T) {
	t.Parallel()

	base := domain.Movie{ID: 1, Title: "Dune", PosterPath: "/d.jpg", ReleaseDate: date(2021, time.October, 1)}

	assert.Equal(t, domain.FieldsNone, Diff(base, base))

	changed := base
	changed.Title = "Dune: Part Two"
	changed.Favorite = true
	assert.Equal(t, domain.FieldTitle|domain.FieldFavorite, Diff(base, changed))

	// Same instant in another location is not a change
	moved := base
	moved.ReleaseDate = base.ReleaseDate.In(time.FixedZone("X", 3600))
	assert.Equal(t, domain.FieldsNone, Diff(base, moved))
}

func TestMutator(t *testing.T) {
	t.Parallel()

	incoming := domain.RemoteMovie{ID: 1, Title: "Dune", PosterPath: "/d.jpg", ReleaseDate: "21-10-01"}
	fn := Mutator(incoming, domain.SetFavorite(true))

	inserted, fields, err := fn(nil)
	require.NoError(t, err)
	assert.True(t, inserted.Favorite)
	assert.Equal(t, domain.FieldsAll, fields)

	again, fields, err := fn(&inserted)
	require.NoError(t, err)
	assert.Equal(t, inserted, again)
	assert.Equal(t, domain.FieldsNone, fields)
}

func TestFlagMutator(t *testing.T) {
	t.Parallel()

	t.Run("missing movie", func(t *testing.T) {
		t.Parallel()
		_, _, err := FlagMutator(domain.FlagFavorite, true)(nil)
		assert.True(t, errors.Is(err, domain.ErrMovieNotFound))
	})

	t.Run("only the flag changes", func(t *testing.T) {
		t.Parallel()
		existing := domain.Movie{ID: 1, Title: "Dune", Favorite: true}
		updated, fields, err := FlagMutator(domain.FlagFavorite, false)(&existing)
		require.NoError(t, err)
		assert.False(t, updated.Favorite)
		assert.Equal(t, "Dune", updated.Title)
		assert.Equal(t, domain.FieldFavorite, fields)
	})

	t.Run("unchanged flag is a no-op", func(t *testing.T) {
		t.Parallel()
		existing := domain.Movie{ID: 1, Watchlist: true}
		_, fields, err := FlagMutator(domain.FlagWatchlist, true)(&existing)
		require.NoError(t, err)
		assert.Equal(t, domain.FieldsNone, fields)
	})
}
