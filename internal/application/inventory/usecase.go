package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

// MovementUseCase registra movimientos de un solo lado (entrada, salida, ajuste).
// Cada movimiento es una transacción: bloqueo de la tupla (SELECT FOR UPDATE), validación
// de stock, anexo al libro y actualización de la proyección, con Commit o Rollback.
type MovementUseCase struct {
	txRunner repository.TxRunner
	guard    *guard
	cfg      EngineConfig
	log      *logger.Logger
	now      func() time.Time
}

// NewMovementUseCase construye el motor de movimientos.
func NewMovementUseCase(
	txRunner repository.TxRunner,
	catalog repository.CatalogRepository,
	settings repository.SettingsRepository,
	cfg EngineConfig,
	log *logger.Logger,
) *MovementUseCase {
	return &MovementUseCase{
		txRunner: txRunner,
		guard:    &guard{catalog: catalog, settings: settings, defaults: cfg.Dimensions},
		cfg:      cfg,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// MovementInput entrada para un movimiento sobre una tupla.
// PlacementID y BatchID vacíos se resuelven al bucket por defecto si la empresa no los exige.
// OrderID/OrderLineID (solo entradas) concilian la recepción contra una orden de compra.
type MovementInput struct {
	TenantID    string
	ProductID   string
	LocationID  string
	PlacementID string
	BatchID     string
	Quantity    decimal.Decimal
	Reference   string
	ActorID     string
	Note        string
	OrderID     string
	OrderLineID string
}

// Key devuelve la tupla (sin normalizar) del movimiento.
func (in MovementInput) Key() entity.StockKey {
	return entity.StockKey{
		TenantID:    in.TenantID,
		ProductID:   in.ProductID,
		LocationID:  in.LocationID,
		PlacementID: in.PlacementID,
		BatchID:     in.BatchID,
	}
}

// RecordIncoming suma Quantity (> 0) a la tupla.
func (uc *MovementUseCase) RecordIncoming(ctx context.Context, in MovementInput) (*entity.MovementEntry, error) {
	if !in.Quantity.IsPositive() {
		return nil, uc.reject(in, entity.MovementIncoming, domain.Validation("la cantidad de entrada debe ser positiva"))
	}
	if (in.OrderID == "") != (in.OrderLineID == "") {
		return nil, uc.reject(in, entity.MovementIncoming, domain.Validation("orden y línea de orden deben indicarse juntas"))
	}
	return uc.record(ctx, in, entity.MovementIncoming, in.Quantity)
}

// RecordOutgoing resta Quantity (> 0) de la tupla; falla con InsufficientStockError si no alcanza.
func (uc *MovementUseCase) RecordOutgoing(ctx context.Context, in MovementInput) (*entity.MovementEntry, error) {
	if !in.Quantity.IsPositive() {
		return nil, uc.reject(in, entity.MovementOutgoing, domain.Validation("la cantidad de salida debe ser positiva"))
	}
	if in.OrderID != "" || in.OrderLineID != "" {
		return nil, uc.reject(in, entity.MovementOutgoing, domain.Validation("solo las entradas se concilian con órdenes de compra"))
	}
	return uc.record(ctx, in, entity.MovementOutgoing, in.Quantity.Neg())
}

// RecordAdjustment aplica una corrección con signo. Nunca puede dejar la tupla en negativo:
// una pérdida mayor al stock se rechaza y debe registrarse en pasos menores.
func (uc *MovementUseCase) RecordAdjustment(ctx context.Context, in MovementInput) (*entity.MovementEntry, error) {
	if in.Quantity.IsZero() {
		return nil, uc.reject(in, entity.MovementAdjustment, domain.Validation("el ajuste no puede ser cero"))
	}
	if in.OrderID != "" || in.OrderLineID != "" {
		return nil, uc.reject(in, entity.MovementAdjustment, domain.Validation("solo las entradas se concilian con órdenes de compra"))
	}
	return uc.record(ctx, in, entity.MovementAdjustment, in.Quantity)
}

func (uc *MovementUseCase) record(ctx context.Context, in MovementInput, kind entity.MovementKind, delta decimal.Decimal) (*entity.MovementEntry, error) {
	if err := entity.CheckQuantity("la cantidad", in.Quantity); err != nil {
		return nil, uc.reject(in, kind, err)
	}
	ctx, cancel := uc.cfg.bound(ctx)
	defer cancel()

	key, err := uc.guard.resolve(ctx, in.Key())
	if err != nil {
		return nil, uc.reject(in, kind, Finish(err))
	}
	reference, generated := in.Reference, in.Reference == ""
	if generated {
		reference = uuid.New().String()
	}

	var committed *entity.MovementEntry
	err = uc.cfg.Retry.Do(ctx, func() error {
		return uc.txRunner.Run(ctx, func(repos repository.Repos) error {
			if !generated {
				if err := claimReference(ctx, repos.Movements, key.TenantID, reference, false); err != nil {
					return err
				}
			}
			now := uc.now()
			if in.OrderLineID != "" {
				if err := receiveOnLine(ctx, repos.Orders, in.OrderID, in.OrderLineID, key, delta, now); err != nil {
					return err
				}
			}
			entry := entity.NewMovementEntry(key, kind, delta, reference, in.ActorID, now)
			entry.Note = in.Note
			entry.OrderID = in.OrderID
			entry.OrderLineID = in.OrderLineID
			if err := applyEntry(ctx, repos, entry); err != nil {
				return err
			}
			committed = entry
			return nil
		})
	})
	if err != nil {
		in.Reference = reference
		return nil, uc.reject(in, kind, Finish(err))
	}

	uc.log.Debug().
		Str("tenant_id", key.TenantID).
		Str("product_id", key.ProductID).
		Str("location_id", key.LocationID).
		Str("kind", string(kind)).
		Str("delta", delta.String()).
		Str("reference", reference).
		Int64("movement_id", committed.ID).
		Msg("movimiento registrado")
	return committed, nil
}

func (uc *MovementUseCase) reject(in MovementInput, kind entity.MovementKind, err error) error {
	ev := uc.log.Info()
	if domain.KindOf(err) == domain.KindInternal {
		ev = uc.log.Error()
	}
	ev.Err(err).
		Str("tenant_id", in.TenantID).
		Str("product_id", in.ProductID).
		Str("location_id", in.LocationID).
		Str("kind", string(kind)).
		Str("reference", in.Reference).
		Str("error_kind", string(domain.KindOf(err))).
		Msg("movimiento rechazado")
	return err
}

// applyEntry bloquea la tupla, verifica que no quede negativa, anexa y actualiza la proyección.
// Debe ejecutarse dentro de TxRunner.Run.
func applyEntry(ctx context.Context, repos repository.Repos, entry *entity.MovementEntry) error {
	key := entry.Key()
	level, err := repos.Stock.GetForUpdate(ctx, key)
	if err != nil {
		return err
	}
	if entry.Delta.IsNegative() && level.Quantity.Add(entry.Delta).IsNegative() {
		return &domain.InsufficientStockError{
			Key:       key.String(),
			Available: level.Quantity,
			Requested: entry.Delta.Abs(),
		}
	}
	if level.Quantity.Add(entry.Delta).GreaterThanOrEqual(entity.MaxQuantity) {
		return domain.Validation("el stock de %s superaría el máximo representable", key.String())
	}
	if err := repos.Movements.Append(ctx, entry); err != nil {
		return err
	}
	_, err = repos.Stock.ApplyDelta(ctx, key, entry.Delta)
	return err
}

// claimReference impide reutilizar la referencia de un traslado. Un traslado exige además
// una referencia sin uso previo, así sus dos patas son las únicas entradas que la comparten.
func claimReference(ctx context.Context, movements repository.MovementRepository, tenantID, reference string, transfer bool) error {
	if err := movements.LockReference(ctx, tenantID, reference); err != nil {
		return err
	}
	existing, err := movements.ListByReference(ctx, tenantID, reference)
	if err != nil {
		return err
	}
	for _, m := range existing {
		if transfer {
			return domain.Validation("la referencia %s ya está en uso; un traslado requiere una referencia nueva", reference)
		}
		if m.Kind == entity.MovementTransferOut || m.Kind == entity.MovementTransferIn {
			return domain.Validation("la referencia %s ya pertenece a un traslado", reference)
		}
	}
	return nil
}

// receiveOnLine concilia una entrada con su línea de orden en la misma transacción.
func receiveOnLine(ctx context.Context, orders repository.OrderRepository, orderID, lineID string, key entity.StockKey, qty decimal.Decimal, now time.Time) error {
	order, err := orders.GetForUpdate(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil || order.TenantID != key.TenantID {
		return domain.NotFound("orden %s no encontrada", orderID)
	}
	if order.LocationID != key.LocationID {
		return domain.Validation("la orden %s es de la bodega %s, no de %s", orderID, order.LocationID, key.LocationID)
	}
	line := order.Line(lineID)
	if line == nil {
		return domain.NotFound("línea %s no encontrada en la orden %s", lineID, orderID)
	}
	if line.ProductID != key.ProductID {
		return domain.Validation("la línea %s es del producto %s, no de %s", lineID, line.ProductID, key.ProductID)
	}
	if err := line.Receive(qty, now); err != nil {
		return err
	}
	return orders.UpdateLine(ctx, line)
}
