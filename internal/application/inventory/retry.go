package inventory

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
)

// RetryPolicy reintento con backoff exponencial y jitter para conflictos de concurrencia.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy 5 intentos entre 10ms y 250ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, BaseDelay: 10 * time.Millisecond, MaxDelay: 250 * time.Millisecond}
}

// Do ejecuta fn hasta que no devuelva ErrConflict o se agote el presupuesto.
// Cualquier otro error se devuelve de inmediato, sin reintentar.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !errors.Is(err, domain.ErrConflict) {
			return err
		}
		if i == attempts-1 {
			break
		}
		timer := time.NewTimer(p.delay(i))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return domain.Conflict(fmt.Sprintf("contención persistente tras %d intentos", attempts), err)
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	d := p.BaseDelay << attempt
	if p.MaxDelay > 0 && (d > p.MaxDelay || d <= 0) {
		d = p.MaxDelay
	}
	// jitter completo en [d/2, d)
	half := d / 2
	if half <= 0 {
		return d
	}
	return half + rand.N(half)
}

// Finish traduce el resultado de una operación a la taxonomía de dominio.
// La cancelación o vencimiento del ctx llega como INTERNAL: la transacción ya se abortó.
func Finish(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		var de *domain.Error
		if errors.As(err, &de) && de.Kind != domain.KindInternal {
			return err
		}
		return domain.Internal("operación abortada por tiempo o cancelación", err)
	}
	return domain.AsDomain(err)
}
