package inventory

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

const (
	defaultMovementLimit = 50
	maxMovementLimit     = 500
)

// StockQueryUseCase lecturas de stock y libro, más verificación y reconstrucción de la proyección.
// Todas las lecturas corren en una instantánea consistente (RunReadOnly).
type StockQueryUseCase struct {
	txRunner repository.TxRunner
	log      *logger.Logger
}

// NewStockQueryUseCase construye el caso de uso de consultas.
func NewStockQueryUseCase(txRunner repository.TxRunner, log *logger.Logger) *StockQueryUseCase {
	return &StockQueryUseCase{txRunner: txRunner, log: log}
}

// CurrentStock devuelve el stock de la tupla; cero si nunca tuvo movimientos.
func (uc *StockQueryUseCase) CurrentStock(ctx context.Context, key entity.StockKey) (*entity.StockLevel, error) {
	if key.TenantID == "" || key.ProductID == "" || key.LocationID == "" {
		return nil, domain.Validation("empresa, producto y bodega son obligatorios")
	}
	key = key.Normalize()
	var level *entity.StockLevel
	err := uc.txRunner.RunReadOnly(ctx, func(repos repository.Repos) error {
		var err error
		level, err = repos.Stock.Get(ctx, key)
		return err
	})
	if err != nil {
		return nil, Finish(err)
	}
	return level, nil
}

// ListStock lista tuplas de la empresa según filtro; oculta las que están en cero salvo IncludeZero.
func (uc *StockQueryUseCase) ListStock(ctx context.Context, filter repository.StockFilter) ([]*entity.StockLevel, error) {
	if filter.TenantID == "" {
		return nil, domain.Validation("la empresa es obligatoria")
	}
	var levels []*entity.StockLevel
	err := uc.txRunner.RunReadOnly(ctx, func(repos repository.Repos) error {
		var err error
		levels, err = repos.Stock.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, Finish(err)
	}
	return levels, nil
}

// MovementPage devuelve la página efectiva: limit fuera de (0, 500] cae a 50 o al tope, offset negativo a 0.
func MovementPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultMovementLimit
	}
	if limit > maxMovementLimit {
		limit = maxMovementLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListMovements pagina el libro, más recientes primero.
func (uc *StockQueryUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter, limit, offset int) ([]*entity.MovementEntry, error) {
	if filter.TenantID == "" {
		return nil, domain.Validation("la empresa es obligatoria")
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, domain.Validation("tipo de movimiento desconocido: %s", filter.Kind)
	}
	limit, offset = MovementPage(limit, offset)
	var entries []*entity.MovementEntry
	err := uc.txRunner.RunReadOnly(ctx, func(repos repository.Repos) error {
		var err error
		entries, err = repos.Movements.List(ctx, filter, limit, offset)
		return err
	})
	if err != nil {
		return nil, Finish(err)
	}
	return entries, nil
}

// MovementsByReference devuelve las entradas que comparten referencia (p. ej. las dos patas de un traslado).
func (uc *StockQueryUseCase) MovementsByReference(ctx context.Context, tenantID, reference string) ([]*entity.MovementEntry, error) {
	if tenantID == "" || reference == "" {
		return nil, domain.Validation("empresa y referencia son obligatorias")
	}
	var entries []*entity.MovementEntry
	err := uc.txRunner.RunReadOnly(ctx, func(repos repository.Repos) error {
		var err error
		entries, err = repos.Movements.ListByReference(ctx, tenantID, reference)
		return err
	})
	if err != nil {
		return nil, Finish(err)
	}
	return entries, nil
}

// VerifyReport resultado de contrastar el replay del libro con la proyección.
type VerifyReport struct {
	TenantID  string
	Movements int
	Tuples    int
	Drifts    []inventory.Drift
}

// Consistent indica que la proyección coincide con el replay.
func (r *VerifyReport) Consistent() bool { return len(r.Drifts) == 0 }

// Verify reproduce el libro completo de la empresa y lo compara con la proyección.
func (uc *StockQueryUseCase) Verify(ctx context.Context, tenantID string) (*VerifyReport, error) {
	if tenantID == "" {
		return nil, domain.Validation("la empresa es obligatoria")
	}
	report := &VerifyReport{TenantID: tenantID}
	err := uc.txRunner.RunReadOnly(ctx, func(repos repository.Repos) error {
		replay, n, err := fold(ctx, repos.Movements, tenantID)
		if err != nil {
			return err
		}
		projected, err := repos.Stock.List(ctx, repository.StockFilter{TenantID: tenantID, IncludeZero: true})
		if err != nil {
			return err
		}
		report.Movements = n
		report.Tuples = len(projected)
		report.Drifts = inventory.Compare(replay, projected)
		return nil
	})
	if err != nil {
		return nil, Finish(err)
	}
	if !report.Consistent() {
		uc.log.Warn().
			Str("tenant_id", tenantID).
			Int("drifts", len(report.Drifts)).
			Msg("la proyección de stock difiere del libro")
	}
	return report, nil
}

// Rebuild reescribe la proyección de la empresa desde el libro. Es idempotente.
func (uc *StockQueryUseCase) Rebuild(ctx context.Context, tenantID string) (*VerifyReport, error) {
	if tenantID == "" {
		return nil, domain.Validation("la empresa es obligatoria")
	}
	report := &VerifyReport{TenantID: tenantID}
	err := uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		if err := repos.Stock.LockForRebuild(ctx, tenantID); err != nil {
			return err
		}
		replay, n, err := fold(ctx, repos.Movements, tenantID)
		if err != nil {
			return err
		}
		levels := replay.Levels()
		if err := repos.Stock.Replace(ctx, tenantID, levels); err != nil {
			return err
		}
		report.Movements = n
		report.Tuples = len(levels)
		return nil
	})
	if err != nil {
		return nil, Finish(err)
	}
	uc.log.Info().
		Str("tenant_id", tenantID).
		Int("movements", report.Movements).
		Int("tuples", report.Tuples).
		Msg("proyección de stock reconstruida")
	return report, nil
}

func fold(ctx context.Context, movements repository.MovementRepository, tenantID string) (*inventory.Ledger, int, error) {
	replay := inventory.NewLedger()
	n := 0
	err := movements.Scan(ctx, tenantID, func(m *entity.MovementEntry) error {
		replay.Apply(m)
		n++
		return nil
	})
	return replay, n, err
}
