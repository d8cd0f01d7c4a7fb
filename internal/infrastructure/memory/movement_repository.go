package memory

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*movementRepo)(nil)

type movementRepo struct{ v *view }

func (r *movementRepo) Append(ctx context.Context, m *entity.MovementEntry) error {
	if err := r.v.check(ctx, true); err != nil {
		return err
	}
	m.ID = r.v.st.nextID
	r.v.st.nextID++
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	stored := *m
	r.v.st.movements = append(r.v.st.movements, &stored)
	return nil
}

func (r *movementRepo) List(ctx context.Context, f repository.MovementFilter, limit, offset int) ([]*entity.MovementEntry, error) {
	if err := r.v.check(ctx, false); err != nil {
		return nil, err
	}
	var out []*entity.MovementEntry
	// Más recientes primero, como el listado de PostgreSQL.
	for i := len(r.v.st.movements) - 1; i >= 0; i-- {
		m := r.v.st.movements[i]
		if !matchMovement(m, f) {
			continue
		}
		if offset > 0 {
			offset--
			continue
		}
		cp := *m
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *movementRepo) ListByReference(ctx context.Context, tenantID, reference string) ([]*entity.MovementEntry, error) {
	if err := r.v.check(ctx, false); err != nil {
		return nil, err
	}
	var out []*entity.MovementEntry
	for _, m := range r.v.st.movements {
		if m.TenantID == tenantID && m.Reference == reference {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

// LockReference: el candado de escritura del Store ya serializa la transacción completa.
func (r *movementRepo) LockReference(ctx context.Context, _, _ string) error {
	return r.v.check(ctx, true)
}

func (r *movementRepo) Scan(ctx context.Context, tenantID string, fn func(*entity.MovementEntry) error) error {
	if err := r.v.check(ctx, false); err != nil {
		return err
	}
	for _, m := range r.v.st.movements {
		if m.TenantID != tenantID {
			continue
		}
		cp := *m
		if err := fn(&cp); err != nil {
			return err
		}
	}
	return nil
}

func matchMovement(m *entity.MovementEntry, f repository.MovementFilter) bool {
	switch {
	case m.TenantID != f.TenantID:
		return false
	case f.ProductID != "" && m.ProductID != f.ProductID:
		return false
	case f.LocationID != "" && m.LocationID != f.LocationID:
		return false
	case f.PlacementID != "" && m.PlacementID != f.PlacementID:
		return false
	case f.BatchID != "" && m.BatchID != f.BatchID:
		return false
	case f.Kind != "" && m.Kind != f.Kind:
		return false
	case f.From != nil && m.CreatedAt.Before(*f.From):
		return false
	case f.To != nil && m.CreatedAt.After(*f.To):
		return false
	}
	return true
}
