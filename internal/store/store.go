package store

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/reel/internal/domain"
	bolt "go.etcd.io/bbolt"
)

var bucketMovies = []byte("movies")

var errClosed = errors.New("store is closed")

// MovieStore implements domain.Store using BoltDB.
//
// Every committed record is mirrored in memory. Reads never touch the
// database; the mirror is only updated after a commit succeeds.
type MovieStore struct {
	db     *bolt.DB
	logger *slog.Logger

	writeMu sync.Mutex // One writer at a time
	applied uint64     // Last apply stamp; guarded by writeMu

	mu     sync.RWMutex // Protects mirror and closed
	mirror map[int]domain.Movie
	closed bool
}

// Option configures a MovieStore
type Option func(*MovieStore)

// WithLogger sets the logger used for load diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(s *MovieStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewMovieStore opens the movie database for the given API endpoint.
// An empty baseCacheDir gives a memory-only store.
func NewMovieStore(baseCacheDir, baseURL string, opts ...Option) (*MovieStore, error) {
	s := &MovieStore{
		logger: slog.Default(),
		mirror: make(map[int]domain.Movie),
	}
	for _, opt := range opts {
		opt(s)
	}

	if baseCacheDir == "" {
		// Memory-only mode (no persistence)
		return s, nil
	}

	dir := baseCacheDir
	if baseURL != "" {
		dir = filepath.Join(baseCacheDir, hashBaseURL(baseURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "reel.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketMovies)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	if err := s.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load movies: %w", err)
	}
	return s, nil
}

func hashBaseURL(baseURL string) string {
	normalized := strings.TrimRight(strings.ToLower(baseURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func itob(id int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

// load fills the mirror from disk. Undecodable records are skipped.
func (s *MovieStore) load() error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMovies).ForEach(func(k, v []byte) error {
			var m domain.Movie
			if err := json.Unmarshal(v, &m); err != nil {
				s.logger.Warn("skipping corrupt movie record", "key", hex.EncodeToString(k), "error", err)
				return nil
			}
			s.mirror[m.ID] = m
			return nil
		})
	})
}

func (s *MovieStore) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Reads ===

func (s *MovieStore) Get(id int) (domain.Movie, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mirror[id]
	return m, ok
}

// All returns a sorted snapshot of the records matching filter
func (s *MovieStore) All(filter domain.Filter, sort domain.SortKey) ([]domain.Movie, error) {
	s.mu.RLock()
	movies := make([]domain.Movie, 0, len(s.mirror))
	for _, m := range s.mirror {
		if filter.Match(m) {
			movies = append(movies, m)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(movies, sort.Compare)
	return movies, nil
}

func (s *MovieStore) Count(filter domain.Filter) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if filter == nil {
		return len(s.mirror)
	}
	n := 0
	for _, m := range s.mirror {
		if filter(m) {
			n++
		}
	}
	return n
}

// Len returns the number of cached records
func (s *MovieStore) Len() int {
	return s.Count(nil)
}

// === Writes ===

// Upsert applies fn to the record with the given id and commits the result.
// Mutator errors are returned unchanged; commit failures wrap domain.ErrWriteFailed.
func (s *MovieStore) Upsert(id int, fn domain.MutatorFunc) (domain.MutationResult, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.isClosed() {
		return domain.MutationResult{}, fmt.Errorf("%w: upsert %d: %w", domain.ErrWriteFailed, id, errClosed)
	}

	if s.db == nil {
		return s.stamp(s.upsertMemory(id, fn))
	}

	var (
		result domain.MutationResult
		fnErr  error
	)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMovies)
		key := itob(id)

		var existing *domain.Movie
		if v := b.Get(key); v != nil {
			var m domain.Movie
			if err := json.Unmarshal(v, &m); err == nil {
				existing = &m
			}
		}

		result, fnErr = apply(id, existing, fn)
		if fnErr != nil {
			return fnErr
		}
		if result.Kind == domain.MutationNoop {
			return nil
		}

		data, err := json.Marshal(result.Movie)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
	if fnErr != nil {
		return domain.MutationResult{}, fnErr
	}
	if err != nil {
		return domain.MutationResult{}, fmt.Errorf("%w: upsert %d: %w", domain.ErrWriteFailed, id, err)
	}

	if result.Kind != domain.MutationNoop {
		s.mu.Lock()
		s.mirror[id] = result.Movie
		s.mu.Unlock()
	}
	return s.stamp(result, nil)
}

// stamp numbers an applied mutation. Callers hold writeMu, so stamps follow
// commit order.
func (s *MovieStore) stamp(result domain.MutationResult, err error) (domain.MutationResult, error) {
	if err != nil || result.Kind == domain.MutationNoop {
		return result, err
	}
	s.applied++
	result.Seq = s.applied
	return result, nil
}

func (s *MovieStore) upsertMemory(id int, fn domain.MutatorFunc) (domain.MutationResult, error) {
	var existing *domain.Movie
	if m, ok := s.Get(id); ok {
		existing = &m
	}

	result, err := apply(id, existing, fn)
	if err != nil {
		return domain.MutationResult{}, err
	}
	if result.Kind != domain.MutationNoop {
		s.mu.Lock()
		s.mirror[id] = result.Movie
		s.mu.Unlock()
	}
	return result, nil
}

// apply runs the mutator and classifies the outcome
func apply(id int, existing *domain.Movie, fn domain.MutatorFunc) (domain.MutationResult, error) {
	updated, fields, err := fn(existing)
	if err != nil {
		return domain.MutationResult{}, err
	}
	updated.ID = id

	switch {
	case existing == nil:
		return domain.MutationResult{Kind: domain.MutationInserted, Movie: updated, Fields: fields}, nil
	case fields == domain.FieldsNone:
		return domain.MutationResult{Kind: domain.MutationNoop, Movie: *existing}, nil
	default:
		return domain.MutationResult{Kind: domain.MutationUpdated, Movie: updated, Fields: fields}, nil
	}
}

// Delete removes the record with the given id. A missing id is a no-op.
func (s *MovieStore) Delete(id int) (domain.MutationResult, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.isClosed() {
		return domain.MutationResult{}, fmt.Errorf("%w: delete %d: %w", domain.ErrWriteFailed, id, errClosed)
	}

	existing, ok := s.Get(id)
	if !ok {
		return domain.MutationResult{Kind: domain.MutationNoop, Movie: domain.Movie{ID: id}}, nil
	}

	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketMovies).Delete(itob(id))
		})
		if err != nil {
			return domain.MutationResult{}, fmt.Errorf("%w: delete %d: %w", domain.ErrWriteFailed, id, err)
		}
	}

	s.mu.Lock()
	delete(s.mirror, id)
	s.mu.Unlock()

	return s.stamp(domain.MutationResult{Kind: domain.MutationDeleted, Movie: existing}, nil)
}

func (s *MovieStore) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
