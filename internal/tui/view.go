package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the browser
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	content := m.renderList()

	switch m.mode {
	case ModeTag:
		content = lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center,
			ModalStyle.Render(HeaderStyle.Render("Filter by tag")+"\n\n"+m.input.View()),
			lipgloss.WithWhitespaceChars(" "))
	case ModeHelp:
		content = lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center,
			ModalStyle.Render(m.renderHelp()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderStatusBar())
}

func (m Model) renderList() string {
	var b strings.Builder

	header := fmt.Sprintf("Quick-Post  page %d", m.page)
	if m.tag != "" {
		header += "  #" + m.tag
	}
	b.WriteString(HeaderStyle.Render(header) + "\n\n")

	switch {
	case m.loading:
		b.WriteString(HelpStyle.Render("  Loading articles...") + "\n")
		return b.String()
	case len(m.articles) == 0:
		b.WriteString(HelpStyle.Render("  No articles found.") + "\n")
		return b.String()
	}

	width := m.width - 8
	if width < 20 {
		width = 20
	}

	for i, a := range m.articles {
		mark := "  "
		if m.saved[articleKey(a)] {
			mark = SavedStyle.Render("★ ")
		}

		style := ArticleStyle
		if i == m.cursor {
			style = ArticleSelectedStyle
		}
		b.WriteString(style.Render(mark+truncate(a.Title, width)) + "\n")

		meta := a.User.Name
		if len(a.TagList) > 0 {
			meta += "  " + TagStyle.Render("#"+strings.Join(a.TagList, " #"))
		}
		b.WriteString(MetaStyle.Render(meta) + "\n")
	}

	return b.String()
}

func (m Model) renderStatusBar() string {
	status := m.message
	if m.err != nil {
		status = ErrorStyle.Render(m.err.Error())
	}
	if status == "" {
		status = "? help  q quit"
	}
	return StatusBarStyle.Width(m.width).Render(status)
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Keys") + "\n\n")
	for _, k := range helpBindings() {
		h := k.Help()
		fmt.Fprintf(&b, "%-8s %s\n", h.Key, HelpStyle.Render(h.Desc))
	}
	b.WriteString("\n" + HelpStyle.Render("press any key to close"))
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
