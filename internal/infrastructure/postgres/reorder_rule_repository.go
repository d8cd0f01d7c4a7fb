package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.ReorderRuleRepository = (*ReorderRuleRepo)(nil)

// ReorderRuleRepo reglas de reorden sobre PostgreSQL (usable con pool o tx).
type ReorderRuleRepo struct {
	q Querier
}

// NewReorderRuleRepository construye el adaptador de reglas.
func NewReorderRuleRepository(q Querier) *ReorderRuleRepo {
	return &ReorderRuleRepo{q: q}
}

func (r *ReorderRuleRepo) Upsert(ctx context.Context, rule *entity.ReorderRule) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO reorder_rules (tenant_id, product_id, location_id, minimum, reorder_amount, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id, product_id, location_id) DO UPDATE
		SET minimum = EXCLUDED.minimum, reorder_amount = EXCLUDED.reorder_amount, updated_at = EXCLUDED.updated_at`,
		rule.TenantID, rule.ProductID, rule.LocationID, rule.Minimum, rule.ReorderAmount, rule.UpdatedAt)
	if err != nil {
		return wrap("upsert reorder rule", err)
	}
	return nil
}

func (r *ReorderRuleRepo) Get(ctx context.Context, tenantID, productID, locationID string) (*entity.ReorderRule, error) {
	var rule entity.ReorderRule
	err := r.q.QueryRow(ctx, `
		SELECT tenant_id, product_id, location_id, minimum, reorder_amount, updated_at
		FROM reorder_rules WHERE tenant_id = $1 AND product_id = $2 AND location_id = $3`,
		tenantID, productID, locationID).
		Scan(&rule.TenantID, &rule.ProductID, &rule.LocationID, &rule.Minimum, &rule.ReorderAmount, &rule.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get reorder rule", err)
	}
	return &rule, nil
}

// List reglas de la empresa; locationID vacío = todas las bodegas.
func (r *ReorderRuleRepo) List(ctx context.Context, tenantID, locationID string) ([]*entity.ReorderRule, error) {
	rows, err := r.q.Query(ctx, `
		SELECT tenant_id, product_id, location_id, minimum, reorder_amount, updated_at
		FROM reorder_rules
		WHERE tenant_id = $1 AND ($2 = '' OR location_id = $2)
		ORDER BY location_id COLLATE "C", product_id COLLATE "C"`,
		tenantID, locationID)
	if err != nil {
		return nil, wrap("list reorder rules", err)
	}
	defer rows.Close()
	var out []*entity.ReorderRule
	for rows.Next() {
		var rule entity.ReorderRule
		if err := rows.Scan(&rule.TenantID, &rule.ProductID, &rule.LocationID, &rule.Minimum, &rule.ReorderAmount, &rule.UpdatedAt); err != nil {
			return nil, wrap("scan reorder rule", err)
		}
		out = append(out, &rule)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list reorder rules", err)
	}
	return out, nil
}

func (r *ReorderRuleRepo) Delete(ctx context.Context, tenantID, productID, locationID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM reorder_rules WHERE tenant_id = $1 AND product_id = $2 AND location_id = $3`,
		tenantID, productID, locationID)
	if err != nil {
		return wrap("delete reorder rule", err)
	}
	return nil
}

func (r *ReorderRuleRepo) ListTenants(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT DISTINCT tenant_id FROM reorder_rules ORDER BY tenant_id`)
	if err != nil {
		return nil, wrap("list rule tenants", err)
	}
	tenants, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, wrap("list rule tenants", err)
	}
	return tenants, nil
}
