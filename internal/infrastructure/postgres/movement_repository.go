package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, tenant_id, product_id, location_id, placement_id, batch_id, kind, delta,
	reference, order_id, order_line_id, actor_id, note, created_at`

// MovementRepo libro de movimientos sobre PostgreSQL (usable con pool o tx). Solo INSERT y SELECT.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Append inserta el movimiento; id y created_at los asigna la base si faltan.
func (r *MovementRepo) Append(ctx context.Context, m *entity.MovementEntry) error {
	query := `
		INSERT INTO inventory_movements (tenant_id, product_id, location_id, placement_id, batch_id,
			kind, delta, reference, order_id, order_line_id, actor_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, COALESCE($13, now()))
		RETURNING id, created_at`
	var createdAt any
	if !m.CreatedAt.IsZero() {
		createdAt = m.CreatedAt
	}
	err := r.q.QueryRow(ctx, query,
		m.TenantID, m.ProductID, m.LocationID, m.PlacementID, m.BatchID,
		string(m.Kind), m.Delta, m.Reference, nullable(m.OrderID), nullable(m.OrderLineID),
		m.ActorID, m.Note, createdAt,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Validation("la referencia %s ya pertenece a un traslado", m.Reference)
		}
		return wrap("append movement", err)
	}
	return nil
}

// LockReference toma un advisory lock de transacción sobre (empresa, referencia).
func (r *MovementRepo) LockReference(ctx context.Context, tenantID, reference string) error {
	_, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1 || '/' || $2, 0))`, tenantID, reference)
	if err != nil {
		return wrap("lock reference", err)
	}
	return nil
}

// List filtra el libro y devuelve los más recientes primero.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter, limit, offset int) ([]*entity.MovementEntry, error) {
	conds := []string{"tenant_id = $1"}
	args := []any{f.TenantID}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.LocationID != "" {
		add("location_id = $%d", f.LocationID)
	}
	if f.PlacementID != "" {
		add("placement_id = $%d", f.PlacementID)
	}
	if f.BatchID != "" {
		add("batch_id = $%d", f.BatchID)
	}
	if f.Kind != "" {
		add("kind = $%d", string(f.Kind))
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM inventory_movements WHERE %s ORDER BY id DESC LIMIT $%d OFFSET $%d`,
		movementColumns, strings.Join(conds, " AND "), len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list movements", err)
	}
	return collectMovements(rows)
}

// ListByReference devuelve las entradas de una referencia en orden de anexo.
func (r *MovementRepo) ListByReference(ctx context.Context, tenantID, reference string) ([]*entity.MovementEntry, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements
		WHERE tenant_id = $1 AND reference = $2 ORDER BY id`
	rows, err := r.q.Query(ctx, query, tenantID, reference)
	if err != nil {
		return nil, wrap("list movements by reference", err)
	}
	return collectMovements(rows)
}

// Scan recorre el libro de la empresa en orden de id sin cargarlo entero en memoria.
func (r *MovementRepo) Scan(ctx context.Context, tenantID string, fn func(*entity.MovementEntry) error) error {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE tenant_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, tenantID)
	if err != nil {
		return wrap("scan movements", err)
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return err
		}
		if err := fn(m); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return wrap("scan movements", err)
	}
	return nil
}

func collectMovements(rows pgx.Rows) ([]*entity.MovementEntry, error) {
	defer rows.Close()
	var out []*entity.MovementEntry
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("read movements", err)
	}
	return out, nil
}

func scanMovement(row pgx.Row) (*entity.MovementEntry, error) {
	var m entity.MovementEntry
	var kind string
	var orderID, lineID *string
	err := row.Scan(&m.ID, &m.TenantID, &m.ProductID, &m.LocationID, &m.PlacementID, &m.BatchID,
		&kind, &m.Delta, &m.Reference, &orderID, &lineID, &m.ActorID, &m.Note, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan movement: %w", err)
	}
	m.Kind = entity.MovementKind(kind)
	m.OrderID = deref(orderID)
	m.OrderLineID = deref(lineID)
	return &m, nil
}
