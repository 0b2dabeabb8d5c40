package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/namgaylhamo24/quick-post-02240350/internal/apperr"
	"github.com/namgaylhamo24/quick-post-02240350/internal/logger"
)

var kindStatus = map[apperr.Kind]int{
	apperr.Unauthorized: http.StatusUnauthorized,
	apperr.NotFound:     http.StatusNotFound,
	apperr.Conflict:     http.StatusConflict,
	apperr.Validation:   http.StatusBadRequest,
	apperr.Upstream:     http.StatusBadGateway,
	apperr.Internal:     http.StatusInternalServerError,
}

// errorHandler renders every error as {"error": message}.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := s.errorResponse(err, c)

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logger.Error("Failed to write error response", logger.F("error", err))
	}
}

func (s *Server) errorResponse(err error, c echo.Context) (int, map[string]any) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound:
			return he.Code, map[string]any{"error": "Route not found"}
		case http.StatusMethodNotAllowed:
			return he.Code, map[string]any{"error": "Method not allowed"}
		}
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			msg = m
		}
		return he.Code, map[string]any{"error": msg}
	}

	kind := apperr.KindOf(err)
	status := kindStatus[kind]
	body := map[string]any{"error": apperr.PublicMessage(err)}

	var ae *apperr.Error
	if errors.As(err, &ae) && len(ae.Fields) > 0 {
		body["details"] = ae.Fields
	}

	switch kind {
	case apperr.Internal:
		logger.Error("Request failed",
			logger.F("method", c.Request().Method),
			logger.F("path", c.Path()),
			logger.F("error", err))
		if s.cfg.IsDevelopment() {
			body["details"] = err.Error()
		}
	case apperr.Upstream:
		logger.Warn("Upstream failure", logger.F("error", err))
	default:
		logger.Debug("Request rejected",
			logger.F("kind", kind.String()),
			logger.F("error", fmt.Sprint(err)))
	}

	return status, body
}
