package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/namgaylhamo24/quick-post-02240350/internal/apperr"
	"github.com/namgaylhamo24/quick-post-02240350/internal/auth"
	"github.com/namgaylhamo24/quick-post-02240350/internal/bookmarks"
)

func (s *Server) handleListBookmarks(c echo.Context) error {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		return apperr.ErrMissingCredential
	}

	list, err := s.bookmarks.List(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleCreateBookmark(c echo.Context) error {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		return apperr.ErrMissingCredential
	}

	var in bookmarks.CreateInput
	if err := c.Bind(&in); err != nil {
		return apperr.New(apperr.Validation, "Invalid request data")
	}

	b, err := s.bookmarks.Create(c.Request().Context(), id.UserID, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, b)
}

func (s *Server) handleDeleteBookmark(c echo.Context) error {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		return apperr.ErrMissingCredential
	}

	if err := s.bookmarks.Delete(c.Request().Context(), id.UserID, c.Param("articleId")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Bookmark deleted successfully"})
}
