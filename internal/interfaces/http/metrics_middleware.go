package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-ledger/pkg/metrics"
)

// MetricsMiddleware cuenta peticiones y observa latencias por método, ruta y estado.
func MetricsMiddleware(m *metrics.HTTPMetrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		route := c.Route().Path
		m.Requests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.Duration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
