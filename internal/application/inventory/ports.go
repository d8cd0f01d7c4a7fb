package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// EngineConfig parámetros del motor de movimientos.
// Dimensions son los valores por defecto; la configuración por empresa los reemplaza.
type EngineConfig struct {
	Dimensions       entity.DimensionPolicy
	Retry            RetryPolicy
	OperationTimeout time.Duration // 0 = sin límite propio (solo el del caller)
}

// DefaultEngineConfig dimensiones opcionales, 5 intentos y 5s por operación.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Retry:            DefaultRetryPolicy(),
		OperationTimeout: 5 * time.Second,
	}
}

// bound aplica OperationTimeout solo si el caller no fijó su propio deadline.
func (c EngineConfig) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || c.OperationTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.OperationTimeout)
}
