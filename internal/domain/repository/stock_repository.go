package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockFilter filtros del listado de stock. TenantID es obligatorio.
type StockFilter struct {
	TenantID    string
	ProductID   string
	LocationID  string
	PlacementID string
	BatchID     string
	IncludeZero bool
}

// StockRepository define el puerto de la proyección de stock por tupla.
// Solo se escribe dentro de la misma transacción que anexa el movimiento.
type StockRepository interface {
	// Get devuelve el stock actual; una tupla sin movimientos tiene cantidad cero.
	Get(ctx context.Context, key entity.StockKey) (*entity.StockLevel, error)
	// GetForUpdate bloquea la fila de la tupla hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockLevel, error)
	// ApplyDelta suma delta a la tupla e incrementa la versión.
	ApplyDelta(ctx context.Context, key entity.StockKey, delta decimal.Decimal) (*entity.StockLevel, error)
	List(ctx context.Context, filter StockFilter) ([]*entity.StockLevel, error)
	// SumByProductLocation suma el stock de todas las ubicaciones/lotes de un producto en una bodega.
	SumByProductLocation(ctx context.Context, tenantID, productID, locationID string) (decimal.Decimal, error)
	// LockForRebuild bloquea la escritura de la proyección hasta el fin de la transacción,
	// así el libro leído después no cambia mientras se reconstruye.
	LockForRebuild(ctx context.Context, tenantID string) error
	// Replace reescribe la proyección completa de la empresa (reconstrucción desde el libro).
	Replace(ctx context.Context, tenantID string, levels []*entity.StockLevel) error
}
