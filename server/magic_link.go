package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/namgaylhamo24/quick-post-02240350/internal/apperr"
	"github.com/namgaylhamo24/quick-post-02240350/internal/auth"
)

type magicLinkRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

// handleMagicLink issues a sign-in link. The response is the same whether or
// not the email already had an account.
func (s *Server) handleMagicLink(c echo.Context) error {
	var req magicLinkRequest
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "Invalid email address")
	}

	if err := s.auth.RequestMagicLink(c.Request().Context(), req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Magic link sent successfully"})
}

// handleVerify redeems a magic link and returns an access token
func (s *Server) handleVerify(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.Validation, "Invalid request body")
	}

	token := strings.TrimSpace(req.Token)
	if token == "" {
		return apperr.New(apperr.Validation, "Token is required")
	}

	res, err := s.auth.Verify(c.Request().Context(), token)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleMe(c echo.Context) error {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		return apperr.ErrMissingCredential
	}

	user, err := s.auth.Me(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}
