package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo órdenes de compra y sus líneas sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de órdenes.
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, tenant_id, location_id, reference, created_by, created_at`
const lineColumns = `id, order_id, product_id, quantity, received, status, updated_at`

// Create inserta la orden y sus líneas en un solo batch, conservando el orden de las líneas.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	b := &pgx.Batch{}
	b.Queue(`INSERT INTO purchase_orders (`+orderColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.TenantID, o.LocationID, o.Reference, o.CreatedBy, o.CreatedAt)
	for i, l := range o.Lines {
		b.Queue(`INSERT INTO purchase_order_lines (id, order_id, position, product_id, quantity, received, status, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			l.ID, o.ID, i, l.ProductID, l.Quantity, l.Received, string(l.Status), l.UpdatedAt)
	}
	br := r.q.SendBatch(ctx, b)
	defer br.Close()
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			if isUniqueViolation(err) {
				return domain.Validation("la orden %s ya existe o repite productos", o.ID)
			}
			return wrap("create order", err)
		}
	}
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, id, false)
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, id, true)
}

func (r *OrderRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.Order, error) {
	lock := ""
	if forUpdate {
		lock = " FOR UPDATE"
	}
	var o entity.Order
	err := r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id = $1`+lock, id).
		Scan(&o.ID, &o.TenantID, &o.LocationID, &o.Reference, &o.CreatedBy, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get order", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+lineColumns+` FROM purchase_order_lines
		WHERE order_id = $1 ORDER BY position`+lock, id)
	if err != nil {
		return nil, wrap("get order lines", err)
	}
	lines, err := collectLines(rows)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (r *OrderRepo) UpdateLine(ctx context.Context, l *entity.OrderLine) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_order_lines SET received = $3, status = $4, updated_at = $5
		WHERE id = $1 AND order_id = $2`,
		l.ID, l.OrderID, l.Received, string(l.Status), l.UpdatedAt)
	if err != nil {
		return wrap("update order line", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("línea %s no encontrada en la orden %s", l.ID, l.OrderID)
	}
	return nil
}

// ListOpen órdenes con al menos una línea abierta; locationID vacío = todas las bodegas.
func (r *OrderRepo) ListOpen(ctx context.Context, tenantID, locationID string) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+orderColumns+` FROM purchase_orders o
		WHERE o.tenant_id = $1 AND ($2 = '' OR o.location_id = $2)
		  AND EXISTS (SELECT 1 FROM purchase_order_lines l
		              WHERE l.order_id = o.id AND l.status IN ('open', 'partially_received'))
		ORDER BY o.created_at, o.id`,
		tenantID, locationID)
	if err != nil {
		return nil, wrap("list open orders", err)
	}
	var orders []*entity.Order
	byID := make(map[string]*entity.Order)
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.TenantID, &o.LocationID, &o.Reference, &o.CreatedBy, &o.CreatedAt); err != nil {
			rows.Close()
			return nil, wrap("scan order", err)
		}
		orders = append(orders, &o)
		byID[o.ID] = &o
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrap("list open orders", err)
	}
	if len(orders) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	lineRows, err := r.q.Query(ctx, `SELECT `+lineColumns+` FROM purchase_order_lines
		WHERE order_id = ANY($1) ORDER BY order_id, position`, ids)
	if err != nil {
		return nil, wrap("list order lines", err)
	}
	lines, err := collectLines(lineRows)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		if o := byID[l.OrderID]; o != nil {
			o.Lines = append(o.Lines, l)
		}
	}
	return orders, nil
}

func (r *OrderRepo) OpenQuantity(ctx context.Context, tenantID, productID, locationID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(GREATEST(l.quantity - l.received, 0)), 0)
		FROM purchase_order_lines l
		JOIN purchase_orders o ON o.id = l.order_id
		WHERE o.tenant_id = $1 AND o.location_id = $3 AND l.product_id = $2
		  AND l.status IN ('open', 'partially_received')`,
		tenantID, productID, locationID).Scan(&total)
	if err != nil {
		return decimal.Zero, wrap("open quantity", err)
	}
	return total, nil
}

func collectLines(rows pgx.Rows) ([]*entity.OrderLine, error) {
	defer rows.Close()
	var out []*entity.OrderLine
	for rows.Next() {
		var (
			l      entity.OrderLine
			status string
		)
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.Received, &status, &l.UpdatedAt); err != nil {
			return nil, wrap("scan order line", err)
		}
		l.Status = entity.OrderLineStatus(status)
		out = append(out, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("read order lines", err)
	}
	return out, nil
}
