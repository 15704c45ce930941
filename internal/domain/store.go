package domain

// MutatorFunc computes the new state of a record from the existing one
// (nil when absent) and reports which fields changed. Returning FieldsNone
// for an existing record makes the write a no-op.
type MutatorFunc func(existing *Movie) (Movie, Fields, error)

// Reader is the read side of the movie store.
// Views and queries depend only on this.
type Reader interface {
	Get(id int) (Movie, bool)
	All(filter Filter, sort SortKey) ([]Movie, error)
	Count(filter Filter) int
}

// Store handles the durable movie table (BoltDB + memory mirror).
// All mutations must go through the write serializer.
type Store interface {
	Reader

	// Upsert applies fn atomically to the record with the given id
	Upsert(id int, fn MutatorFunc) (MutationResult, error)

	// Delete removes the record; deleting a missing id is a no-op
	Delete(id int) (MutationResult, error)

	Close() error
}
