package domain

// ChangeKind distinguishes change events
type ChangeKind int

const (
	ChangeInserted ChangeKind = iota
	ChangeUpdated
	ChangeDeleted
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeInserted:
		return "inserted"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// ChangeEvent describes one applied mutation.
// Movie holds the post-mutation record; it is zero for deletions.
type ChangeEvent struct {
	Kind   ChangeKind
	ID     int
	Movie  Movie
	Fields Fields // Changed fields (Updated only)
}

// ChangeSet is the ordered group of events produced by one coordinator call.
// Seq increases with every publish.
type ChangeSet struct {
	Seq    uint64
	Events []ChangeEvent
}

// Empty returns true if the set carries no events
func (cs ChangeSet) Empty() bool {
	return len(cs.Events) == 0
}

// IDs returns the ids touched by the set in event order (deduplicated)
func (cs ChangeSet) IDs() []int {
	seen := make(map[int]bool, len(cs.Events))
	ids := make([]int, 0, len(cs.Events))
	for _, e := range cs.Events {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		ids = append(ids, e.ID)
	}
	return ids
}

// MutationKind is what a store write actually did
type MutationKind int

const (
	MutationNoop MutationKind = iota
	MutationInserted
	MutationUpdated
	MutationDeleted
)

func (k MutationKind) String() string {
	switch k {
	case MutationNoop:
		return "noop"
	case MutationInserted:
		return "inserted"
	case MutationUpdated:
		return "updated"
	case MutationDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// MutationResult is the outcome of a single store write.
type MutationResult struct {
	Kind   MutationKind
	Movie  Movie
	Fields Fields
	Seq    uint64 // Store apply order; zero for no-ops
}

// Event converts the result to a change event. No-ops produce no event.
func (r MutationResult) Event() (ChangeEvent, bool) {
	switch r.Kind {
	case MutationInserted:
		return ChangeEvent{Kind: ChangeInserted, ID: r.Movie.ID, Movie: r.Movie, Fields: r.Fields}, true
	case MutationUpdated:
		return ChangeEvent{Kind: ChangeUpdated, ID: r.Movie.ID, Movie: r.Movie, Fields: r.Fields}, true
	case MutationDeleted:
		return ChangeEvent{Kind: ChangeDeleted, ID: r.Movie.ID}, true
	default:
		return ChangeEvent{}, false
	}
}
