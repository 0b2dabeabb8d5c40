package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/namgaylhamo24/quick-post-02240350/internal/auth"
	"github.com/namgaylhamo24/quick-post-02240350/internal/logger"
	"github.com/namgaylhamo24/quick-post-02240350/internal/metrics"
)

// requestLogger logs every request and its response. Errors are rendered here
// so the logged status is the one sent to the client.
func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		logger.Debug("HTTP Request",
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("remote", c.RealIP()))

		if err := next(c); err != nil {
			c.Error(err)
		}

		res := c.Response()
		logger.Info("HTTP Response",
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("status", res.Status),
			logger.F("size", res.Size),
			logger.F("duration", time.Since(start).String()),
			logger.F("request_id", res.Header().Get(echo.HeaderXRequestID)))

		return nil
	}
}

// requestMetrics records count and latency per route template.
func requestMetrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordRequest(c.Request().Method, route,
			strconv.Itoa(c.Response().Status), time.Since(start).Seconds())
		return nil
	}
}

// authMiddleware resolves the bearer credential and attaches the identity
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)

		id, err := s.guard.Authenticate(c.Request().Context(), header)
		if err != nil {
			return err
		}

		auth.SetIdentity(c, id)
		return next(c)
	}
}

// magicLinkLimiter allows perMinute requests per client IP. Zero disables it.
func magicLinkLimiter(perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(perMinute) / 60),
			Burst:     perMinute,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Unable to identify client"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many requests, please try again later"})
		},
	})
}
