package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// RequestLogger registra cada petición con su status y latencia. Las respuestas 5xx van a nivel error.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// el manejador de errores de fiber escribe la respuesta después; se registra el status que producirá
			var fe *fiber.Error
			if errors.As(err, &fe) {
				c.Status(fe.Code)
			} else {
				c.Status(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error().Err(err)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("tenant_id", GetTenantID(c)).
			Msg("petición")
		return err
	}
}
