package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/namgaylhamo24/quick-post-02240350/internal/apperr"
	"github.com/namgaylhamo24/quick-post-02240350/internal/feed"
)

// handleArticles proxies one page of the upstream feed
func (s *Server) handleArticles(c echo.Context) error {
	perPage, err := intParam(c, "per_page")
	if err != nil {
		return err
	}
	page, err := intParam(c, "page")
	if err != nil {
		return err
	}

	articles, err := s.feed.Articles(c.Request().Context(), feed.Query{
		PerPage: perPage,
		Page:    page,
		Tag:     c.QueryParam("tag"),
	})
	if err != nil {
		return err
	}

	if maxAge := int(s.cfg.Feed.CacheMaxAge.Seconds()); maxAge > 0 {
		c.Response().Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
	}
	return c.JSON(http.StatusOK, articles)
}

// intParam reads an optional integer query parameter; absent is zero.
func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validationf("%s must be an integer", name)
	}
	return v, nil
}
