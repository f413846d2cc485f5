package middleware

import (
	"time"

	applogger "MacroPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs each request with method, path, status and latency.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			err := next(c)

			l.Info("http request",
				applogger.String("method", req.Method),
				applogger.String("path", req.URL.Path),
				applogger.Int("status", res.Status),
				applogger.Duration("latency", time.Since(start)),
			)

			return err
		}
	}
}
