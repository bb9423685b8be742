package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the styles used to print results and failures
type Styles struct {
	Theme Theme

	// JSON tokens
	Key     lipgloss.Style
	String  lipgloss.Style
	Number  lipgloss.Style
	Literal lipgloss.Style
	Punct   lipgloss.Style

	// Status lines
	ErrorKind    lipgloss.Style
	ErrorMessage lipgloss.Style
	Success      lipgloss.Style
	Spinner      lipgloss.Style
	Label        lipgloss.Style
	Title        lipgloss.Style
	Help         lipgloss.Style
}

// NewStyles creates a new styles instance with the given theme
func NewStyles(theme Theme) *Styles {
	s := &Styles{
		Theme: theme,
	}

	s.Key = lipgloss.NewStyle().
		Foreground(theme.Key).
		Bold(true)

	s.String = lipgloss.NewStyle().
		Foreground(theme.String)

	s.Number = lipgloss.NewStyle().
		Foreground(theme.Number)

	s.Literal = lipgloss.NewStyle().
		Foreground(theme.Literal).
		Italic(true)

	s.Punct = lipgloss.NewStyle().
		Foreground(theme.TextDim)

	s.ErrorKind = lipgloss.NewStyle().
		Foreground(theme.Error).
		Bold(true)

	s.ErrorMessage = lipgloss.NewStyle().
		Foreground(theme.Text)

	s.Success = lipgloss.NewStyle().
		Foreground(theme.Success)

	s.Spinner = lipgloss.NewStyle().
		Foreground(theme.Primary)

	s.Label = lipgloss.NewStyle().
		Foreground(theme.TextDim)

	s.Title = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	s.Help = lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Italic(true)

	return s
}

// Plain returns styles that render text unchanged
func Plain() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Theme:        DefaultTheme,
		Key:          plain,
		String:       plain,
		Number:       plain,
		Literal:      plain,
		Punct:        plain,
		ErrorKind:    plain,
		ErrorMessage: plain,
		Success:      plain,
		Spinner:      plain,
		Label:        plain,
		Title:        plain,
		Help:         plain,
	}
}
