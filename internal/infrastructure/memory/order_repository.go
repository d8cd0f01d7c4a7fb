package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.OrderRepository = (*orderRepo)(nil)

type orderRepo struct{ v *view }

func (r *orderRepo) Create(ctx context.Context, order *entity.Order) error {
	if err := r.v.check(ctx, true); err != nil {
		return err
	}
	if _, ok := r.v.st.orders[order.ID]; ok {
		return domain.Validation("la orden %s ya existe", order.ID)
	}
	r.v.saveOrder(order.ID)
	r.v.st.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	if err := r.v.check(ctx, false); err != nil {
		return nil, err
	}
	o, ok := r.v.st.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

func (r *orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	if err := r.v.check(ctx, true); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *orderRepo) UpdateLine(ctx context.Context, line *entity.OrderLine) error {
	if err := r.v.check(ctx, true); err != nil {
		return err
	}
	o, ok := r.v.st.orders[line.OrderID]
	if !ok {
		return domain.NotFound("orden %s no encontrada", line.OrderID)
	}
	for i, l := range o.Lines {
		if l.ID == line.ID {
			r.v.saveOrder(o.ID)
			cp := *line
			o.Lines[i] = &cp
			return nil
		}
	}
	return domain.NotFound("línea %s no encontrada", line.ID)
}

func (r *orderRepo) ListOpen(ctx context.Context, tenantID, locationID string) ([]*entity.Order, error) {
	if err := r.v.check(ctx, false); err != nil {
		return nil, err
	}
	var out []*entity.Order
	for _, o := range r.v.st.orders {
		if o.TenantID != tenantID || (locationID != "" && o.LocationID != locationID) {
			continue
		}
		if o.Status().IsOpen() {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *orderRepo) OpenQuantity(ctx context.Context, tenantID, productID, locationID string) (decimal.Decimal, error) {
	if err := r.v.check(ctx, false); err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, o := range r.v.st.orders {
		if o.TenantID != tenantID || o.LocationID != locationID {
			continue
		}
		for _, l := range o.Lines {
			if l.ProductID == productID {
				total = total.Add(l.Outstanding())
			}
		}
	}
	return total, nil
}
