package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Amber      = lipgloss.Color("#E5A00D")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
	Blue       = lipgloss.Color("#3B82F6")
)

// Flag indicator characters
const (
	FavoriteChar  = "★"
	WatchlistChar = "◆"
	EmptyChar     = " "
)

// Theme groups the styles used by the live view
type Theme struct {
	Title     lipgloss.Style
	Dim       lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Spinner   lipgloss.Style
	Favorite  lipgloss.Style
	Watchlist lipgloss.Style

	Tab       lipgloss.Style
	ActiveTab lipgloss.Style

	NormalItem   lipgloss.Style
	SelectedItem lipgloss.Style
}

// NewTheme returns the named theme. "mono" renders without colors; anything
// else gets the default palette.
func NewTheme(name string) Theme {
	if name == "mono" {
		plain := lipgloss.NewStyle()
		return Theme{
			Title:        plain.Bold(true),
			Dim:          plain.Faint(true),
			Error:        plain.Bold(true),
			Success:      plain,
			Spinner:      plain,
			Favorite:     plain,
			Watchlist:    plain,
			Tab:          plain.Padding(0, 1),
			ActiveTab:    plain.Padding(0, 1).Reverse(true),
			NormalItem:   plain.Padding(0, 1),
			SelectedItem: plain.Padding(0, 1).Reverse(true),
		}
	}

	return Theme{
		Title:     lipgloss.NewStyle().Foreground(White).Bold(true),
		Dim:       lipgloss.NewStyle().Foreground(DimGray),
		Error:     lipgloss.NewStyle().Foreground(Red),
		Success:   lipgloss.NewStyle().Foreground(Green),
		Spinner:   lipgloss.NewStyle().Foreground(Amber),
		Favorite:  lipgloss.NewStyle().Foreground(Amber),
		Watchlist: lipgloss.NewStyle().Foreground(Blue),

		Tab: lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().
			Foreground(White).
			Background(Amber).
			Bold(true).
			Padding(0, 1),

		NormalItem: lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 1),
		SelectedItem: lipgloss.NewStyle().
			Foreground(White).
			Background(SlateLight).
			Padding(0, 1),
	}
}

// Truncate truncates a string to the given display width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
