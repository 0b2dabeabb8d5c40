package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Primary   = lipgloss.Color("#4ECDC4")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
	Saved     = lipgloss.Color("#95E1A3")
	Failure   = lipgloss.Color("#FF6B6B")
	TagColor  = lipgloss.Color("#FFE66D")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	ArticleStyle = lipgloss.NewStyle().
			Padding(0, 1)

	ArticleSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	MetaStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			PaddingLeft(4)

	TagStyle = lipgloss.NewStyle().Foreground(TagColor)

	SavedStyle = lipgloss.NewStyle().Foreground(Saved).Bold(true)

	ErrorStyle = lipgloss.NewStyle().Foreground(Failure)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)
