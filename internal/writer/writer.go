// Package writer serializes store mutations.
//
// Jobs for the same movie id run one at a time in submission order. Jobs for
// different ids may run concurrently, bounded by the configured concurrency;
// the store itself admits a single committing writer.
package writer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcdole/reel/internal/domain"
)

// DefaultConcurrency is used when the configured concurrency is not positive
const DefaultConcurrency = 4

// Pending is the future result of a submitted write
type Pending struct {
	done   chan struct{}
	result domain.MutationResult
	err    error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) resolve(result domain.MutationResult, err error) {
	p.result = result
	p.err = err
	close(p.done)
}

// Done is closed once the write has been applied or has failed
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the write completes or ctx is done.
// A cancelled wait does not cancel the write.
func (p *Pending) Wait(ctx context.Context) (domain.MutationResult, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return domain.MutationResult{}, ctx.Err()
	}
}

type job struct {
	id      int
	fn      domain.MutatorFunc // nil means delete
	cond    domain.Filter      // Delete only if the record still matches
	pending *Pending
}

// Serializer is the only path through which the store is mutated.
type Serializer struct {
	store  domain.Store
	logger *slog.Logger
	sem    chan struct{}

	mu     sync.Mutex
	queues map[int][]job // Queued jobs per id; present while a worker owns the id
	closed bool
	wg     sync.WaitGroup
}

// New creates a serializer over store. concurrency bounds how many ids are
// written at once.
func New(store domain.Store, concurrency int, logger *slog.Logger) *Serializer {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Serializer{
		store:  store,
		logger: logger,
		sem:    make(chan struct{}, concurrency),
		queues: make(map[int][]job),
	}
}

// Submit queues fn to be applied to the record with the given id
func (s *Serializer) Submit(id int, fn domain.MutatorFunc) *Pending {
	return s.enqueue(job{id: id, fn: fn, pending: newPending()})
}

// SubmitDelete queues removal of the record with the given id
func (s *Serializer) SubmitDelete(id int) *Pending {
	return s.SubmitDeleteIf(id, nil)
}

// SubmitDeleteIf queues removal of the record if, when its turn comes, it
// still matches cond. A record that no longer matches is left alone and the
// result is a no-op.
func (s *Serializer) SubmitDeleteIf(id int, cond domain.Filter) *Pending {
	return s.enqueue(job{id: id, cond: cond, pending: newPending()})
}

func (s *Serializer) enqueue(j job) *Pending {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		j.pending.resolve(domain.MutationResult{}, domain.ErrWriterClosed)
		return j.pending
	}

	q, running := s.queues[j.id]
	s.queues[j.id] = append(q, j)
	if !running {
		s.wg.Add(1)
		go s.drain(j.id)
	}
	return j.pending
}

// drain runs queued jobs for one id until its queue is empty
func (s *Serializer) drain(id int) {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		q := s.queues[id]
		if len(q) == 0 {
			delete(s.queues, id)
			s.mu.Unlock()
			return
		}
		j := q[0]
		s.queues[id] = q[1:]
		s.mu.Unlock()

		s.sem <- struct{}{}
		result, err := s.run(j)
		<-s.sem

		if err != nil {
			s.logger.Debug("write failed", "movieID", id, "error", err)
		}
		j.pending.resolve(result, err)
	}
}

func (s *Serializer) run(j job) (domain.MutationResult, error) {
	if j.fn == nil {
		if j.cond != nil {
			m, ok := s.store.Get(j.id)
			if !ok || !j.cond(m) {
				return domain.MutationResult{Kind: domain.MutationNoop, Movie: m}, nil
			}
		}
		return s.store.Delete(j.id)
	}
	return s.store.Upsert(j.id, j.fn)
}

// Close stops accepting work and waits for queued writes to finish
func (s *Serializer) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()
}
