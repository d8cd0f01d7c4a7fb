package reorder

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// Scanner invoca ListFlagged periódicamente para cada empresa con reglas.
// No guarda estado entre pasadas: cada una es una lectura independiente.
type Scanner struct {
	uc       *UseCase
	interval time.Duration
	log      *logger.Logger
}

// NewScanner crea el escáner; interval <= 0 lo deshabilita.
func NewScanner(uc *UseCase, interval time.Duration, log *logger.Logger) *Scanner {
	return &Scanner{uc: uc, interval: interval, log: log}
}

// Run bloquea hasta que ctx se cancele.
func (s *Scanner) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info().Msg("escáner de reorden deshabilitado")
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.ScanOnce(ctx); err != nil && ctx.Err() == nil {
				s.log.Error().Err(err).Msg("escaneo de reorden fallido")
			}
		}
	}
}

// ScanOnce devuelve cuántos productos quedaron marcados por empresa.
func (s *Scanner) ScanOnce(ctx context.Context) (map[string]int, error) {
	tenants, err := s.uc.Tenants(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(tenants))
	for _, t := range tenants {
		flagged, err := s.uc.ListFlagged(ctx, t, "")
		if err != nil {
			s.log.Error().Err(err).Str("tenant_id", t).Msg("no se pudo calcular la reposición")
			continue
		}
		counts[t] = len(flagged)
		if len(flagged) > 0 {
			s.log.Info().Str("tenant_id", t).Int("flagged", len(flagged)).Msg("productos bajo mínimo")
		}
	}
	return counts, nil
}
