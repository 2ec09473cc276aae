package middleware

import (
	"strconv"
	"time"

	"esports-arena/logger"
	"esports-arena/metrics"

	"github.com/gofiber/fiber/v2"
)

// RequestMetrics records request counts and latency per route template, and logs server errors.
func RequestMetrics(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		route := c.Route().Path
		method := c.Method()

		metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		if status >= fiber.StatusInternalServerError {
			log.Error("❌ [HTTP] request failed", "method", method, "path", c.Path(), "status", status, "error", err)
		}
		return err
	}
}
