package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const tupleWhere = `tenant_id = $1 AND product_id = $2 AND location_id = $3 AND placement_id = $4 AND batch_id = $5`

// StockRepo proyección de stock por tupla sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func tupleArgs(k entity.StockKey) []any {
	k = k.Normalize()
	return []any{k.TenantID, k.ProductID, k.LocationID, k.PlacementID, k.BatchID}
}

// Get obtiene el stock de la tupla; cero si no hay fila.
func (r *StockRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockLevel, error) {
	return r.get(ctx, key, `SELECT quantity, version, updated_at FROM stock_levels WHERE `+tupleWhere)
}

// GetForUpdate crea la fila en cero si falta y la bloquea (SELECT FOR UPDATE) hasta el fin de la tx.
// Así incluso la primera entrada de una tupla serializa contra las demás.
func (r *StockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockLevel, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_levels (tenant_id, product_id, location_id, placement_id, batch_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING`, tupleArgs(key)...)
	if err != nil {
		return nil, wrap("ensure stock row", err)
	}
	return r.get(ctx, key, `SELECT quantity, version, updated_at FROM stock_levels WHERE `+tupleWhere+` FOR UPDATE`)
}

func (r *StockRepo) get(ctx context.Context, key entity.StockKey, query string) (*entity.StockLevel, error) {
	lvl := &entity.StockLevel{Key: key.Normalize()}
	err := r.q.QueryRow(ctx, query, tupleArgs(key)...).Scan(&lvl.Quantity, &lvl.Version, &lvl.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			lvl.Quantity = decimal.Zero
			return lvl, nil
		}
		return nil, wrap("get stock", err)
	}
	return lvl, nil
}

// ApplyDelta suma delta a la tupla. El CHECK (quantity >= 0) es la última barrera:
// si salta, se reporta como stock insuficiente.
func (r *StockRepo) ApplyDelta(ctx context.Context, key entity.StockKey, delta decimal.Decimal) (*entity.StockLevel, error) {
	query := `
		INSERT INTO stock_levels (tenant_id, product_id, location_id, placement_id, batch_id, quantity, version, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, now())
		ON CONFLICT (tenant_id, product_id, location_id, placement_id, batch_id) DO UPDATE
		SET quantity = stock_levels.quantity + EXCLUDED.quantity,
		    version = stock_levels.version + 1,
		    updated_at = now()
		RETURNING quantity, version, updated_at`
	lvl := &entity.StockLevel{Key: key.Normalize()}
	args := append(tupleArgs(key), delta)
	err := r.q.QueryRow(ctx, query, args...).Scan(&lvl.Quantity, &lvl.Version, &lvl.UpdatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return nil, &domain.InsufficientStockError{Key: lvl.Key.String(), Available: decimal.Zero, Requested: delta.Abs()}
		}
		return nil, wrap("apply stock delta", err)
	}
	return lvl, nil
}

// List filtra la proyección ordenada por tupla (orden binario, igual que StockKey.Compare).
func (r *StockRepo) List(ctx context.Context, f repository.StockFilter) ([]*entity.StockLevel, error) {
	conds := []string{"tenant_id = $1"}
	args := []any{f.TenantID}
	for _, c := range []struct{ col, val string }{
		{"product_id", f.ProductID},
		{"location_id", f.LocationID},
		{"placement_id", f.PlacementID},
		{"batch_id", f.BatchID},
	} {
		if c.val != "" {
			args = append(args, c.val)
			conds = append(conds, fmt.Sprintf("%s = $%d", c.col, len(args)))
		}
	}
	if !f.IncludeZero {
		conds = append(conds, "quantity <> 0")
	}
	query := `SELECT tenant_id, product_id, location_id, placement_id, batch_id, quantity, version, updated_at
		FROM stock_levels WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY product_id COLLATE "C", location_id COLLATE "C", placement_id COLLATE "C", batch_id COLLATE "C"`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list stock", err)
	}
	defer rows.Close()
	var out []*entity.StockLevel
	for rows.Next() {
		var l entity.StockLevel
		if err := rows.Scan(&l.Key.TenantID, &l.Key.ProductID, &l.Key.LocationID, &l.Key.PlacementID, &l.Key.BatchID,
			&l.Quantity, &l.Version, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list stock", err)
	}
	return out, nil
}

// SumByProductLocation stock del producto en la bodega sumando ubicaciones y lotes.
func (r *StockRepo) SumByProductLocation(ctx context.Context, tenantID, productID, locationID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM stock_levels
		WHERE tenant_id = $1 AND product_id = $2 AND location_id = $3`,
		tenantID, productID, locationID).Scan(&total)
	if err != nil {
		return decimal.Zero, wrap("sum stock", err)
	}
	return total, nil
}

// Replace borra la proyección de la empresa y la reescribe con COPY.
// LockForRebuild toma SHARE ROW EXCLUSIVE sobre stock_levels: bloquea a todo escritor
// (el INSERT ... ON CONFLICT previo al FOR UPDATE) hasta el fin de la tx. Afecta a todas
// las empresas; la reconstrucción es una operación de mantenimiento.
func (r *StockRepo) LockForRebuild(ctx context.Context, _ string) error {
	if _, err := r.q.Exec(ctx, `LOCK TABLE stock_levels IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return wrap("lock stock_levels", err)
	}
	return nil
}

func (r *StockRepo) Replace(ctx context.Context, tenantID string, levels []*entity.StockLevel) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_levels WHERE tenant_id = $1`, tenantID); err != nil {
		return wrap("clear stock", err)
	}
	now := time.Now().UTC()
	rows := make([][]any, 0, len(levels))
	for _, l := range levels {
		k := l.Key.Normalize()
		rows = append(rows, []any{k.TenantID, k.ProductID, k.LocationID, k.PlacementID, k.BatchID, l.Quantity, int64(1), now})
	}
	_, err := r.q.CopyFrom(ctx,
		pgx.Identifier{"stock_levels"},
		[]string{"tenant_id", "product_id", "location_id", "placement_id", "batch_id", "quantity", "version", "updated_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.Internal("el libro produce stock negativo; revisar movimientos", err)
		}
		return wrap("copy stock", err)
	}
	return nil
}
