// Package tui is an interactive feed browser for the terminal client.
package tui

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/namgaylhamo24/quick-post-02240350/internal/client"
	"github.com/namgaylhamo24/quick-post-02240350/internal/logger"
	"github.com/namgaylhamo24/quick-post-02240350/internal/model"
)

const perPage = 20

// API is the part of the HTTP client the browser needs
type API interface {
	IsLoggedIn() bool
	Articles(ctx context.Context, q client.ArticleQuery) ([]model.Article, error)
	Bookmarks(ctx context.Context) ([]model.Bookmark, error)
	AddBookmark(ctx context.Context, b client.NewBookmark) (*model.Bookmark, error)
	RemoveBookmark(ctx context.Context, articleID string) error
}

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeTag
	ModeHelp
)

// Model is the browser state
type Model struct {
	ctx context.Context
	api API

	articles []model.Article
	saved    map[string]bool // article ids bookmarked by the user

	page    int
	tag     string
	cursor  int
	loading bool

	width  int
	height int
	mode   Mode
	input  textinput.Model

	message string
	err     error
}

// NewModel creates a browser on the first feed page
func NewModel(ctx context.Context, api API) Model {
	ti := textinput.New()
	ti.Placeholder = "tag, empty for all"
	ti.CharLimit = 64
	ti.Width = 30

	logger.Debug("Initializing feed browser", logger.F("logged_in", api.IsLoggedIn()))

	return Model{
		ctx:     ctx,
		api:     api,
		saved:   make(map[string]bool),
		page:    1,
		loading: true,
		input:   ti,
	}
}

// Run starts the browser and blocks until the user quits
func Run(ctx context.Context, api API) error {
	p := tea.NewProgram(NewModel(ctx, api), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) selected() (model.Article, bool) {
	if m.cursor < 0 || m.cursor >= len(m.articles) {
		return model.Article{}, false
	}
	return m.articles[m.cursor], true
}

func articleKey(a model.Article) string {
	return strconv.FormatInt(a.ID, 10)
}
