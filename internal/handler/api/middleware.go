package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"DevSight/internal/service/metrics"
	"DevSight/internal/service/ratelimit"
	xhttp "DevSight/pkg/http"
)

// limitByIP rejects requests once the client's token bucket is empty.
func limitByIP(l *ratelimit.Limiter, endpoint string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if l != nil && !l.Allow(c.RealIP()) {
				metrics.RateLimited.WithLabelValues(endpoint).Inc()
				c.Response().Header().Set("Retry-After", "1")
				return xhttp.TooManyRequestsResponse(c, []*xhttp.AppError{
					xhttp.TooManyRequestsError("too many requests, slow down"),
				})
			}
			return next(c)
		}
	}
}

// observe records per-endpoint latency and server errors.
func observe(endpoint string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			metrics.PortalLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
			if err != nil || c.Response().Status >= 500 {
				metrics.PortalErrors.WithLabelValues(endpoint).Inc()
			}
			return err
		}
	}
}
