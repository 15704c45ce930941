package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/reel/internal/coordinator"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/tui/styles"
)

// Actions is what the live view asks of the catalog (implemented by catalog.Service)
type Actions interface {
	RefreshAll(ctx context.Context) []coordinator.Result
	SetFavorite(ctx context.Context, movieID int, favorite bool) (domain.MutationResult, error)
	SetWatchlist(ctx context.Context, movieID int, watchlist bool) (domain.MutationResult, error)
}

// Source is a live list of movies (implemented by view.Live)
type Source interface {
	Snapshot() []domain.Movie
}

// Pane binds a list to the source that renders it
type Pane struct {
	List   domain.ListKind
	Source Source
}

type pane struct {
	Pane
	rows   []domain.Movie
	cursor int
}

// Option configures a Model
type Option func(*Model)

// WithTheme selects the color theme
func WithTheme(name string) Option {
	return func(m *Model) {
		m.theme = styles.NewTheme(name)
		m.spinner.Style = m.theme.Spinner
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithRefreshOnStart refreshes the account lists when the program starts
func WithRefreshOnStart(refresh bool) Option {
	return func(m *Model) {
		m.refreshOnStart = refresh
	}
}

// Model is the Bubble Tea model for the live favorites/watchlist view
type Model struct {
	actions Actions
	bridge  *Bridge
	logger  *slog.Logger

	panes  []*pane
	active int

	// Sync state
	states         map[domain.ListKind]coordinator.State
	refreshing     bool
	refreshOnStart bool
	spinning       bool

	// UI components
	spinner spinner.Model
	help    help.Model
	keys    KeyMap
	theme   styles.Theme

	status    string
	statusErr bool

	width  int
	height int
}

// NewModel creates the live view model. Each pane starts from its source's
// current snapshot.
func NewModel(actions Actions, bridge *Bridge, panes []Pane, opts ...Option) Model {
	m := Model{
		actions: actions,
		bridge:  bridge,
		logger:  slog.Default(),
		states:  make(map[domain.ListKind]coordinator.State),
		help:    help.New(),
		keys:    DefaultKeyMap(),
		theme:   styles.NewTheme("default"),
	}
	m.spinner = spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(m.theme.Spinner))

	for _, p := range panes {
		m.panes = append(m.panes, &pane{Pane: p, rows: p.Source.Snapshot()})
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts listening for view updates
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.bridge.Wait()}
	if m.refreshOnStart {
		cmds = append(cmds, m.startRefresh()...)
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case ViewUpdatedMsg:
		m.reload(msg.List)
		if msg.Resynced {
			m.logger.Debug("view resynced", "list", msg.List)
		}
		return m, m.bridge.Wait()

	case SyncStateMsg:
		for list, state := range msg.States {
			m.states[list] = state
		}
		cmds := []tea.Cmd{m.bridge.Wait()}
		if cmd := m.ensureSpinner(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !m.syncing() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case RefreshDoneMsg:
		m.refreshing = false
		m.status, m.statusErr = summarize(msg.Results)
		return m, nil

	case FlagToggledMsg:
		m.status, m.statusErr = describeToggle(msg)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.NextList):
		if len(m.panes) > 0 {
			m.active = (m.active + 1) % len(m.panes)
		}

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Home):
		m.moveCursor(-len(m.current().rows))
	case key.Matches(msg, m.keys.End):
		m.moveCursor(len(m.current().rows))

	case key.Matches(msg, m.keys.ToggleFavorite):
		if movie, ok := m.selected(); ok {
			return m, ToggleFlagCmd(m.actions, movie.ID, domain.FlagFavorite, !movie.Favorite)
		}
	case key.Matches(msg, m.keys.ToggleWatchlist):
		if movie, ok := m.selected(); ok {
			return m, ToggleFlagCmd(m.actions, movie.ID, domain.FlagWatchlist, !movie.Watchlist)
		}

	case key.Matches(msg, m.keys.Refresh):
		if m.refreshing {
			return m, nil
		}
		cmds := m.startRefresh()
		m.status, m.statusErr = "", false
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

func (m *Model) startRefresh() []tea.Cmd {
	m.refreshing = true
	cmds := []tea.Cmd{RefreshCmd(m.actions)}
	if cmd := m.ensureSpinner(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return cmds
}

// ensureSpinner starts the spinner tick loop if work is in flight
func (m *Model) ensureSpinner() tea.Cmd {
	if m.spinning || !m.syncing() {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m Model) syncing() bool {
	if m.refreshing {
		return true
	}
	for _, s := range m.states {
		if inFlight(s) {
			return true
		}
	}
	return false
}

func inFlight(s coordinator.State) bool {
	return s == coordinator.StateFetching || s == coordinator.StateMerging || s == coordinator.StatePublishing
}

func (m *Model) reload(list domain.ListKind) {
	for _, p := range m.panes {
		if p.List != list {
			continue
		}
		p.rows = p.Source.Snapshot()
		p.cursor = clamp(p.cursor, len(p.rows))
	}
}

func (m Model) current() *pane {
	if len(m.panes) == 0 {
		return &pane{}
	}
	return m.panes[m.active]
}

func (m *Model) moveCursor(delta int) {
	p := m.current()
	p.cursor = clamp(p.cursor+delta, len(p.rows))
}

func (m Model) selected() (domain.Movie, bool) {
	p := m.current()
	if len(p.rows) == 0 {
		return domain.Movie{}, false
	}
	return p.rows[p.cursor], true
}

func clamp(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

func summarize(results []coordinator.Result) (string, bool) {
	var (
		errs      []string
		applied   int
		fromCache bool
	)
	for _, r := range results {
		if err := r.UserVisibleError(); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		fromCache = fromCache || r.FromCache
		applied += r.Applied
	}

	switch {
	case len(errs) > 0:
		return strings.Join(errs, "; "), true
	case fromCache:
		return "offline, showing cached lists", false
	default:
		return fmt.Sprintf("synced, %d changes", applied), false
	}
}

func describeToggle(msg FlagToggledMsg) (string, bool) {
	title := msg.Result.Movie.Title
	if title == "" {
		title = fmt.Sprintf("movie %d", msg.MovieID)
	}

	if msg.Err != nil {
		if errors.Is(msg.Err, domain.ErrMovieNotFound) ||
			errors.Is(msg.Err, domain.ErrWriteFailed) ||
			errors.Is(msg.Err, domain.ErrWriterClosed) {
			return msg.Err.Error(), true
		}
		return fmt.Sprintf("%s saved locally, not synced: %v", title, msg.Err), true
	}

	verb := "removed from"
	if msg.Value {
		verb = "added to"
	}
	return fmt.Sprintf("%s %s %s", title, verb, listName(msg.Flag)), false
}

func listName(flag domain.FlagKind) string {
	if flag == domain.FlagWatchlist {
		return "watchlist"
	}
	return "favorites"
}

// === Rendering ===

// View renders the model
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")
	b.WriteString(m.renderList())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func paneTitle(list domain.ListKind) string {
	switch list {
	case domain.ListFavorites:
		return "Favorites"
	case domain.ListWatchlist:
		return "Watchlist"
	default:
		return "Catalog"
	}
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(m.panes))
	for i, p := range m.panes {
		label := fmt.Sprintf("%s (%d)", paneTitle(p.List), len(p.rows))
		if i == m.active {
			tabs = append(tabs, m.theme.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, m.theme.Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderList() string {
	p := m.current()
	if len(p.rows) == 0 {
		return m.theme.Dim.Render("  Nothing here yet. Press r to refresh.")
	}

	// Header, status and help take the remaining lines
	visible := len(p.rows)
	if m.height > 0 {
		visible = max(1, m.height-6)
	}
	start := 0
	if p.cursor >= visible {
		start = p.cursor - visible + 1
	}
	end := min(len(p.rows), start+visible)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderRow(p.rows[i], i == p.cursor))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(movie domain.Movie, selected bool) string {
	fav := styles.EmptyChar
	if movie.Favorite {
		fav = m.theme.Favorite.Render(styles.FavoriteChar)
	}
	watch := styles.EmptyChar
	if movie.Watchlist {
		watch = m.theme.Watchlist.Render(styles.WatchlistChar)
	}

	title := movie.Title
	if year := movie.Year(); year > 0 {
		title = fmt.Sprintf("%s (%d)", title, year)
	}
	if m.width > 0 {
		title = styles.Truncate(title, m.width-8)
	}

	style := m.theme.NormalItem
	if selected {
		style = m.theme.SelectedItem
	}
	return fav + watch + style.Render(title)
}

func (m Model) renderStatus() string {
	if m.syncing() {
		var parts []string
		for _, list := range []domain.ListKind{domain.ListFavorites, domain.ListWatchlist, domain.ListCatalog} {
			if s, ok := m.states[list]; ok && inFlight(s) {
				parts = append(parts, fmt.Sprintf("%s %s", s, list))
			}
		}
		label := "refreshing"
		if len(parts) > 0 {
			label = strings.Join(parts, ", ")
		}
		return m.spinner.View() + " " + m.theme.Dim.Render(label)
	}

	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return m.theme.Error.Render(m.status)
	}
	return m.theme.Success.Render(m.status)
}
