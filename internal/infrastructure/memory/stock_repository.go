package memory

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockRepository = (*stockRepo)(nil)

type stockRepo struct{ v *view }

func (r *stockRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockLevel, error) {
	if err := r.v.check(ctx, false); err != nil {
		return nil, err
	}
	key = key.Normalize()
	if lvl, ok := r.v.st.stock[key]; ok {
		cp := *lvl
		return &cp, nil
	}
	return &entity.StockLevel{Key: key, Quantity: decimal.Zero}, nil
}

// GetForUpdate: el candado de escritura del Store ya serializa la transacción completa.
func (r *stockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockLevel, error) {
	if err := r.v.check(ctx, true); err != nil {
		return nil, err
	}
	return r.Get(ctx, key)
}

func (r *stockRepo) ApplyDelta(ctx context.Context, key entity.StockKey, delta decimal.Decimal) (*entity.StockLevel, error) {
	if err := r.v.check(ctx, true); err != nil {
		return nil, err
	}
	key = key.Normalize()
	r.v.saveStock(key)
	lvl, ok := r.v.st.stock[key]
	if !ok {
		lvl = &entity.StockLevel{Key: key, Quantity: decimal.Zero}
		r.v.st.stock[key] = lvl
	}
	lvl.Quantity = lvl.Quantity.Add(delta)
	lvl.Version++
	lvl.UpdatedAt = time.Now().UTC()
	cp := *lvl
	return &cp, nil
}

func (r *stockRepo) List(ctx context.Context, f repository.StockFilter) ([]*entity.StockLevel, error) {
	if err := r.v.check(ctx, false); err != nil {
		return nil, err
	}
	keys := make([]entity.StockKey, 0, len(r.v.st.stock))
	for k, lvl := range r.v.st.stock {
		if !matchStock(k, f) || (!f.IncludeZero && lvl.Quantity.IsZero()) {
			continue
		}
		keys = append(keys, k)
	}
	out := make([]*entity.StockLevel, 0, len(keys))
	for _, k := range inventory.SortKeys(keys) {
		cp := *r.v.st.stock[k]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *stockRepo) SumByProductLocation(ctx context.Context, tenantID, productID, locationID string) (decimal.Decimal, error) {
	if err := r.v.check(ctx, false); err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for k, lvl := range r.v.st.stock {
		if k.TenantID == tenantID && k.ProductID == productID && k.LocationID == locationID {
			total = total.Add(lvl.Quantity)
		}
	}
	return total, nil
}

// LockForRebuild solo valida el modo: Run ya tiene el candado de escritura del almacén.
func (r *stockRepo) LockForRebuild(ctx context.Context, tenantID string) error {
	return r.v.check(ctx, true)
}

func (r *stockRepo) Replace(ctx context.Context, tenantID string, levels []*entity.StockLevel) error {
	if err := r.v.check(ctx, true); err != nil {
		return err
	}
	for k := range r.v.st.stock {
		if k.TenantID == tenantID {
			r.v.saveStock(k)
			delete(r.v.st.stock, k)
		}
	}
	now := time.Now().UTC()
	for _, l := range levels {
		key := l.Key.Normalize()
		r.v.saveStock(key)
		r.v.st.stock[key] = &entity.StockLevel{Key: key, Quantity: l.Quantity, Version: 1, UpdatedAt: now}
	}
	return nil
}

func matchStock(k entity.StockKey, f repository.StockFilter) bool {
	switch {
	case k.TenantID != f.TenantID:
		return false
	case f.ProductID != "" && k.ProductID != f.ProductID:
		return false
	case f.LocationID != "" && k.LocationID != f.LocationID:
		return false
	case f.PlacementID != "" && k.PlacementID != f.PlacementID:
		return false
	case f.BatchID != "" && k.BatchID != f.BatchID:
		return false
	}
	return true
}
