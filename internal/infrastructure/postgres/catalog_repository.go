package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var (
	_ repository.CatalogRepository  = (*CatalogRepo)(nil)
	_ repository.SettingsRepository = (*SettingsRepo)(nil)
)

// CatalogRepo lectura del maestro (productos, bodegas, ubicaciones, lotes).
// Se consulta por operación: el flag barred nunca se cachea.
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador del catálogo.
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

func (r *CatalogRepo) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, `SELECT id, tenant_id, sku, name, unit_measure FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.TenantID, &p.SKU, &p.Name, &p.UnitMeasure)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get product", err)
	}
	return &p, nil
}

func (r *CatalogRepo) GetLocation(ctx context.Context, id string) (*entity.Location, error) {
	var l entity.Location
	err := r.q.QueryRow(ctx, `SELECT id, tenant_id, name, created_at FROM locations WHERE id = $1`, id).
		Scan(&l.ID, &l.TenantID, &l.Name, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get location", err)
	}
	return &l, nil
}

func (r *CatalogRepo) GetPlacement(ctx context.Context, id string) (*entity.Placement, error) {
	var p entity.Placement
	err := r.q.QueryRow(ctx, `SELECT id, tenant_id, location_id, name, barred FROM placements WHERE id = $1`, id).
		Scan(&p.ID, &p.TenantID, &p.LocationID, &p.Name, &p.Barred)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get placement", err)
	}
	return &p, nil
}

func (r *CatalogRepo) GetBatch(ctx context.Context, id string) (*entity.Batch, error) {
	var b entity.Batch
	err := r.q.QueryRow(ctx, `SELECT id, tenant_id, location_id, name, expires_at, barred FROM batches WHERE id = $1`, id).
		Scan(&b.ID, &b.TenantID, &b.LocationID, &b.Name, &b.ExpiresAt, &b.Barred)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get batch", err)
	}
	return &b, nil
}

// UpsertProduct alta o actualización de un producto (sembrado y pruebas).
func (r *CatalogRepo) UpsertProduct(ctx context.Context, p entity.Product) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO products (id, tenant_id, sku, name, unit_measure) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET sku = EXCLUDED.sku, name = EXCLUDED.name, unit_measure = EXCLUDED.unit_measure`,
		p.ID, p.TenantID, p.SKU, p.Name, p.UnitMeasure)
	if err != nil {
		return wrap("upsert product", err)
	}
	return nil
}

// UpsertLocation alta o actualización de una bodega.
func (r *CatalogRepo) UpsertLocation(ctx context.Context, l entity.Location) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO locations (id, tenant_id, name) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
		l.ID, l.TenantID, l.Name)
	if err != nil {
		return wrap("upsert location", err)
	}
	return nil
}

// UpsertPlacement alta o actualización de una ubicación, incluido su bloqueo.
func (r *CatalogRepo) UpsertPlacement(ctx context.Context, p entity.Placement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO placements (id, tenant_id, location_id, name, barred) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, barred = EXCLUDED.barred`,
		p.ID, p.TenantID, p.LocationID, p.Name, p.Barred)
	if err != nil {
		return wrap("upsert placement", err)
	}
	return nil
}

// UpsertBatch alta o actualización de un lote, incluido su bloqueo.
func (r *CatalogRepo) UpsertBatch(ctx context.Context, b entity.Batch) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO batches (id, tenant_id, location_id, name, expires_at, barred) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, expires_at = EXCLUDED.expires_at, barred = EXCLUDED.barred`,
		b.ID, b.TenantID, b.LocationID, b.Name, b.ExpiresAt, b.Barred)
	if err != nil {
		return wrap("upsert batch", err)
	}
	return nil
}

// SettingsRepo configuración por empresa (tabla tenant_settings).
type SettingsRepo struct {
	q Querier
}

// NewSettingsRepository construye el adaptador de configuración.
func NewSettingsRepository(q Querier) *SettingsRepo {
	return &SettingsRepo{q: q}
}

// DimensionPolicy devuelve la política de la empresa; found=false si no tiene fila propia.
func (r *SettingsRepo) DimensionPolicy(ctx context.Context, tenantID string) (entity.DimensionPolicy, bool, error) {
	var p entity.DimensionPolicy
	err := r.q.QueryRow(ctx, `SELECT placement_required, batch_required FROM tenant_settings WHERE tenant_id = $1`, tenantID).
		Scan(&p.PlacementRequired, &p.BatchRequired)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.DimensionPolicy{}, false, nil
		}
		return entity.DimensionPolicy{}, false, wrap("get tenant settings", err)
	}
	return p, true, nil
}

// PutDimensionPolicy fija la política de dimensiones de la empresa.
func (r *SettingsRepo) PutDimensionPolicy(ctx context.Context, tenantID string, p entity.DimensionPolicy) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO tenant_settings (tenant_id, placement_required, batch_required) VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id) DO UPDATE SET placement_required = EXCLUDED.placement_required, batch_required = EXCLUDED.batch_required`,
		tenantID, p.PlacementRequired, p.BatchRequired)
	if err != nil {
		return wrap("put tenant settings", err)
	}
	return nil
}

// Seeder une catálogo y configuración como destino de la siembra del maestro.
type Seeder struct {
	*CatalogRepo
	*SettingsRepo
}

// NewSeeder construye el destino de siembra sobre el pool (o una tx).
func NewSeeder(q Querier) *Seeder {
	return &Seeder{CatalogRepo: NewCatalogRepository(q), SettingsRepo: NewSettingsRepository(q)}
}
