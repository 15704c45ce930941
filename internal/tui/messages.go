package tui

import (
	"github.com/mmcdole/reel/internal/coordinator"
	"github.com/mmcdole/reel/internal/domain"
)

// Message types for the TUI

// ViewUpdatedMsg signals that a live view changed and should be re-read
type ViewUpdatedMsg struct {
	List     domain.ListKind
	Seq      uint64
	Resynced bool
}

// SyncStateMsg carries the latest coordinator state of each list that
// changed since the previous one
type SyncStateMsg struct {
	States map[domain.ListKind]coordinator.State
}

// RefreshDoneMsg signals that a refresh of the account lists finished
type RefreshDoneMsg struct {
	Results []coordinator.Result
}

// FlagToggledMsg signals that a flag edit finished
type FlagToggledMsg struct {
	MovieID int
	Flag    domain.FlagKind
	Value   bool
	Result  domain.MutationResult
	Err     error
}
