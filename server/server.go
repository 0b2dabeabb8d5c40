// Package server wires the HTTP API onto echo.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/namgaylhamo24/quick-post-02240350/internal/auth"
	"github.com/namgaylhamo24/quick-post-02240350/internal/bookmarks"
	"github.com/namgaylhamo24/quick-post-02240350/internal/config"
	"github.com/namgaylhamo24/quick-post-02240350/internal/feed"
	"github.com/namgaylhamo24/quick-post-02240350/internal/metrics"
	"github.com/namgaylhamo24/quick-post-02240350/internal/model"
)

// ArticleSource supplies feed pages
type ArticleSource interface {
	Articles(ctx context.Context, q feed.Query) ([]model.Article, error)
}

// Deps are the services the API is built from
type Deps struct {
	Config    *config.Config
	Auth      *auth.Service
	Guard     *auth.Guard
	Bookmarks *bookmarks.Service
	Feed      ArticleSource
}

// Server is the API server
type Server struct {
	cfg       *config.Config
	auth      *auth.Service
	guard     *auth.Guard
	bookmarks *bookmarks.Service
	feed      ArticleSource
	echo      *echo.Echo
	now       func() time.Time
}

// New creates a new server
func New(deps Deps) *Server {
	s := &Server{
		cfg:       deps.Config,
		auth:      deps.Auth,
		guard:     deps.Guard,
		bookmarks: deps.Bookmarks,
		feed:      deps.Feed,
		now:       time.Now,
	}

	s.setupEcho()

	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(requestLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{s.cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit("1M"))
	e.Use(requestMetrics)

	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := e.Group("/api")
	api.GET("/articles", s.handleArticles)

	authGroup := api.Group("/auth")
	authGroup.POST("/magic-link", s.handleMagicLink, magicLinkLimiter(s.cfg.Auth.MagicLinkPerMinute))
	authGroup.POST("/verify", s.handleVerify)
	authGroup.GET("/me", s.handleMe, s.authMiddleware)

	// Protected endpoints
	protected := api.Group("/bookmarks")
	protected.Use(s.authMiddleware)
	protected.GET("", s.handleListBookmarks)
	protected.POST("", s.handleCreateBookmark)
	protected.DELETE("/:articleId", s.handleDeleteBookmark)

	s.echo = e
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown. It returns http.ErrServerClosed after a
// graceful shutdown.
func (s *Server) Start(addr string) error {
	s.echo.Server.ReadTimeout = s.cfg.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.cfg.Server.WriteTimeout
	return s.echo.Start(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": s.now().UTC().Format(time.RFC3339Nano),
	})
}
