package inventory

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// guard valida una tupla contra el catálogo y la política de dimensiones antes de cualquier escritura.
type guard struct {
	catalog  repository.CatalogRepository
	settings repository.SettingsRepository
	defaults entity.DimensionPolicy
}

func (g *guard) policy(ctx context.Context, tenantID string) (entity.DimensionPolicy, error) {
	if g.settings == nil {
		return g.defaults, nil
	}
	p, found, err := g.settings.DimensionPolicy(ctx, tenantID)
	if err != nil {
		return entity.DimensionPolicy{}, domain.Internal("no se pudo leer la configuración de la empresa", err)
	}
	if !found {
		return g.defaults, nil
	}
	return p, nil
}

// resolve comprueba pertenencia a la empresa y a la bodega, bloqueos y dimensiones
// obligatorias; devuelve la tupla con los buckets por defecto resueltos.
func (g *guard) resolve(ctx context.Context, key entity.StockKey) (entity.StockKey, error) {
	if key.TenantID == "" || key.ProductID == "" || key.LocationID == "" {
		return entity.StockKey{}, domain.Validation("empresa, producto y bodega son obligatorios")
	}
	policy, err := g.policy(ctx, key.TenantID)
	if err != nil {
		return entity.StockKey{}, err
	}
	if policy.PlacementRequired && !key.HasPlacement() {
		return entity.StockKey{}, domain.Validation("la ubicación es obligatoria para esta empresa")
	}
	if policy.BatchRequired && !key.HasBatch() {
		return entity.StockKey{}, domain.Validation("el lote es obligatorio para esta empresa")
	}

	product, err := g.catalog.GetProduct(ctx, key.ProductID)
	if err != nil {
		return entity.StockKey{}, domain.Internal("no se pudo leer el producto", err)
	}
	if product == nil || product.TenantID != key.TenantID {
		return entity.StockKey{}, domain.NotFound("producto %s no encontrado", key.ProductID)
	}
	location, err := g.catalog.GetLocation(ctx, key.LocationID)
	if err != nil {
		return entity.StockKey{}, domain.Internal("no se pudo leer la bodega", err)
	}
	if location == nil || location.TenantID != key.TenantID {
		return entity.StockKey{}, domain.NotFound("bodega %s no encontrada", key.LocationID)
	}

	if key.HasPlacement() {
		p, err := g.catalog.GetPlacement(ctx, key.PlacementID)
		if err != nil {
			return entity.StockKey{}, domain.Internal("no se pudo leer la ubicación", err)
		}
		if p == nil || p.TenantID != key.TenantID {
			return entity.StockKey{}, domain.NotFound("ubicación %s no encontrada", key.PlacementID)
		}
		if p.LocationID != key.LocationID {
			return entity.StockKey{}, domain.Validation("la ubicación %s no pertenece a la bodega %s", p.ID, key.LocationID)
		}
		if p.Barred {
			return entity.StockKey{}, domain.Validation("la ubicación %s está bloqueada para nuevos movimientos", p.ID)
		}
	}
	if key.HasBatch() {
		b, err := g.catalog.GetBatch(ctx, key.BatchID)
		if err != nil {
			return entity.StockKey{}, domain.Internal("no se pudo leer el lote", err)
		}
		if b == nil || b.TenantID != key.TenantID {
			return entity.StockKey{}, domain.NotFound("lote %s no encontrado", key.BatchID)
		}
		if b.LocationID != key.LocationID {
			return entity.StockKey{}, domain.Validation("el lote %s no pertenece a la bodega %s", b.ID, key.LocationID)
		}
		if b.Barred {
			return entity.StockKey{}, domain.Validation("el lote %s está bloqueado para nuevos movimientos", b.ID)
		}
	}
	return key.Normalize(), nil
}
