package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// CatalogRepository puerto de lectura del maestro de productos, bodegas, ubicaciones y lotes.
// Los métodos devuelven (nil, nil) cuando el registro no existe.
type CatalogRepository interface {
	GetProduct(ctx context.Context, id string) (*entity.Product, error)
	GetLocation(ctx context.Context, id string) (*entity.Location, error)
	GetPlacement(ctx context.Context, id string) (*entity.Placement, error)
	GetBatch(ctx context.Context, id string) (*entity.Batch, error)
}

// SettingsRepository puerto de la configuración por empresa (dimensiones obligatorias).
// found=false indica que la empresa usa los valores por defecto del motor.
type SettingsRepository interface {
	DimensionPolicy(ctx context.Context, tenantID string) (policy entity.DimensionPolicy, found bool, err error)
}
