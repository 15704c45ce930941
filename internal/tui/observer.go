package tui

import (
	"maps"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/reel/internal/coordinator"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/view"
)

// Bridge forwards view updates and sync states to Bubble Tea.
//
// View updates go through a buffered channel and are dropped when it is
// full; the model re-reads full snapshots, so a drop only delays a redraw.
// Sync states are kept per list and delivered latest-first, so the final
// state of a sync always reaches the model.
type Bridge struct {
	ch    chan tea.Msg
	ready chan struct{} // Signals unread sync states

	mu     sync.Mutex
	states map[domain.ListKind]coordinator.State
}

// NewBridge creates a bridge buffering up to size view updates
func NewBridge(size int) *Bridge {
	if size <= 0 {
		size = 64
	}
	return &Bridge{
		ch:     make(chan tea.Msg, size),
		ready:  make(chan struct{}, 1),
		states: make(map[domain.ListKind]coordinator.State),
	}
}

var _ coordinator.Observer = (*Bridge)(nil)

// Listener returns a view listener tagged with list
func (b *Bridge) Listener(list domain.ListKind) view.Listener {
	return func(u view.Update) {
		select {
		case b.ch <- ViewUpdatedMsg{List: list, Seq: u.Changes.Seq, Resynced: u.Resynced}:
		default:
		}
	}
}

// OnSyncState implements coordinator.Observer. It never blocks; a newer
// state for the same list replaces an unread one.
func (b *Bridge) OnSyncState(list domain.ListKind, state coordinator.State) {
	b.mu.Lock()
	b.states[list] = state
	b.mu.Unlock()

	select {
	case b.ready <- struct{}{}:
	default:
	}
}

func (b *Bridge) takeStates() SyncStateMsg {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg := SyncStateMsg{States: maps.Clone(b.states)}
	clear(b.states)
	return msg
}

// Wait returns a command that delivers the next forwarded message
func (b *Bridge) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.ch:
			return msg
		case <-b.ready:
			return b.takeStates()
		}
	}
}
