package tui

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/namgaylhamo24/quick-post-02240350/internal/client"
	"github.com/namgaylhamo24/quick-post-02240350/internal/logger"
	"github.com/namgaylhamo24/quick-post-02240350/internal/model"
)

type articlesMsg struct {
	page     int
	tag      string
	articles []model.Article
	err      error
}

type savedMsg struct {
	ids []string
	err error
}

type toggledMsg struct {
	id    string
	title string
	saved bool
	err   error
}

// Init loads the first page and the user's bookmarks
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchArticles(), m.fetchSaved())
}

func (m Model) fetchArticles() tea.Cmd {
	page, tag := m.page, m.tag
	return func() tea.Msg {
		articles, err := m.api.Articles(m.ctx, client.ArticleQuery{Tag: tag, Page: page, PerPage: perPage})
		return articlesMsg{page: page, tag: tag, articles: articles, err: err}
	}
}

func (m Model) fetchSaved() tea.Cmd {
	if !m.api.IsLoggedIn() {
		return nil
	}
	return func() tea.Msg {
		list, err := m.api.Bookmarks(m.ctx)
		ids := make([]string, 0, len(list))
		for _, b := range list {
			ids = append(ids, b.ArticleID)
		}
		return savedMsg{ids: ids, err: err}
	}
}

func (m Model) toggle(a model.Article) tea.Cmd {
	id := articleKey(a)
	wasSaved := m.saved[id]
	return func() tea.Msg {
		var err error
		if wasSaved {
			err = m.api.RemoveBookmark(m.ctx, id)
		} else {
			_, err = m.api.AddBookmark(m.ctx, client.BookmarkFromArticle(a))
		}
		return toggledMsg{id: id, title: a.Title, saved: !wasSaved, err: err}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case articlesMsg:
		if msg.page != m.page || msg.tag != m.tag {
			return m, nil // stale response
		}
		m.loading = false
		if msg.err != nil {
			logger.Warn("Failed to load articles", logger.F("error", msg.err))
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.articles = msg.articles
		m.cursor = 0
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.saved = make(map[string]bool, len(msg.ids))
		for _, id := range msg.ids {
			m.saved[id] = true
		}
		return m, nil

	case toggledMsg:
		if msg.err != nil {
			var apiErr *client.APIError
			if errors.As(msg.err, &apiErr) && apiErr.Status == http.StatusConflict {
				m.saved[msg.id] = true
			}
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		if msg.saved {
			m.saved[msg.id] = true
			m.message = fmt.Sprintf("Bookmarked %q", msg.title)
		} else {
			delete(m.saved, msg.id)
			m.message = fmt.Sprintf("Removed %q", msg.title)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeTag:
			return m.updateTag(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.articles)-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.NextPage):
		if len(m.articles) < perPage {
			m.message = "Last page"
			return m, nil
		}
		m.page++
		return m.reload()

	case key.Matches(msg, keys.PrevPage):
		if m.page == 1 {
			return m, nil
		}
		m.page--
		return m.reload()

	case key.Matches(msg, keys.Refresh):
		return m, tea.Batch(m.fetchArticles(), m.fetchSaved())

	case key.Matches(msg, keys.Bookmark):
		if !m.api.IsLoggedIn() {
			m.err = client.ErrNotLoggedIn
			return m, nil
		}
		if a, ok := m.selected(); ok {
			return m, m.toggle(a)
		}

	case key.Matches(msg, keys.Tag):
		m.mode = ModeTag
		m.input.SetValue(m.tag)
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
	}

	return m, nil
}

func (m Model) updateTag(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Enter):
		m.mode = ModeNormal
		m.input.Blur()
		m.tag = strings.TrimSpace(m.input.Value())
		m.page = 1
		return m.reload()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) reload() (tea.Model, tea.Cmd) {
	m.loading = true
	m.message = ""
	return m, m.fetchArticles()
}
