package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// MovementFilter filtros para listar el libro. Los campos vacíos no filtran.
type MovementFilter struct {
	TenantID    string
	ProductID   string
	LocationID  string
	PlacementID string
	BatchID     string
	Kind        entity.MovementKind
	From, To    *time.Time
}

// MovementRepository define el puerto del libro de movimientos (solo anexar).
// No existe Update ni Delete: las correcciones son ajustes nuevos.
type MovementRepository interface {
	// Append persiste el movimiento y le asigna ID y CreatedAt si faltan.
	Append(ctx context.Context, movement *entity.MovementEntry) error
	List(ctx context.Context, filter MovementFilter, limit, offset int) ([]*entity.MovementEntry, error)
	ListByReference(ctx context.Context, tenantID, reference string) ([]*entity.MovementEntry, error)
	// LockReference serializa hasta el fin de la transacción a quienes anexan con la misma referencia.
	LockReference(ctx context.Context, tenantID, reference string) error
	// Scan recorre todos los movimientos de la empresa en orden de ID (para replay).
	Scan(ctx context.Context, tenantID string, fn func(*entity.MovementEntry) error) error
}
