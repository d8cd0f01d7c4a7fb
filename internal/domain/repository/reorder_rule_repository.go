package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// ReorderRuleRepository puerto de las reglas de reorden por (empresa, producto, bodega).
type ReorderRuleRepository interface {
	Upsert(ctx context.Context, rule *entity.ReorderRule) error
	Get(ctx context.Context, tenantID, productID, locationID string) (*entity.ReorderRule, error)
	// List devuelve las reglas de la empresa; locationID vacío = todas las bodegas.
	List(ctx context.Context, tenantID, locationID string) ([]*entity.ReorderRule, error)
	Delete(ctx context.Context, tenantID, productID, locationID string) error
	ListTenants(ctx context.Context) ([]string, error)
}
