package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

// UseCase seguimiento de órdenes de compra: creación, consulta, cantidad abierta y cancelación.
// La recepción (conciliación) la hace el motor de movimientos al registrar una entrada.
type UseCase struct {
	txRunner repository.TxRunner
	catalog  repository.CatalogRepository
	retry    inventory.RetryPolicy
	log      *logger.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso de órdenes.
func NewUseCase(
	txRunner repository.TxRunner,
	catalog repository.CatalogRepository,
	retry inventory.RetryPolicy,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner: txRunner,
		catalog:  catalog,
		retry:    retry,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// LineInput producto y cantidad pedida.
type LineInput struct {
	ProductID string
	Quantity  decimal.Decimal
}

// CreateOrderInput orden para una bodega.
type CreateOrderInput struct {
	TenantID   string
	LocationID string
	Reference  string
	ActorID    string
	Lines      []LineInput
}

// CreateOrder crea una orden con todas sus líneas en estado open.
func (uc *UseCase) CreateOrder(ctx context.Context, in CreateOrderInput) (*entity.Order, error) {
	out, err := uc.CreateOrders(ctx, []CreateOrderInput{in})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// CreateOrders crea varias órdenes en una sola transacción: todas o ninguna.
func (uc *UseCase) CreateOrders(ctx context.Context, inputs []CreateOrderInput) ([]*entity.Order, error) {
	if len(inputs) == 0 {
		return nil, domain.Validation("no hay órdenes para crear")
	}
	now := uc.now()
	orders := make([]*entity.Order, 0, len(inputs))
	for _, in := range inputs {
		order, err := uc.build(ctx, in, now)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	err := uc.retry.Do(ctx, func() error {
		return uc.txRunner.Run(ctx, func(repos repository.Repos) error {
			for _, o := range orders {
				if err := repos.Orders.Create(ctx, o); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, inventory.Finish(err)
	}
	for _, o := range orders {
		uc.log.Info().
			Str("tenant_id", o.TenantID).
			Str("order_id", o.ID).
			Str("location_id", o.LocationID).
			Int("lines", len(o.Lines)).
			Msg("orden de compra creada")
	}
	return orders, nil
}

func (uc *UseCase) build(ctx context.Context, in CreateOrderInput, now time.Time) (*entity.Order, error) {
	if in.TenantID == "" || in.LocationID == "" {
		return nil, domain.Validation("empresa y bodega son obligatorias")
	}
	if len(in.Lines) == 0 {
		return nil, domain.Validation("la orden debe tener al menos una línea")
	}
	loc, err := uc.catalog.GetLocation(ctx, in.LocationID)
	if err != nil {
		return nil, domain.Internal("no se pudo leer la bodega", err)
	}
	if loc == nil || loc.TenantID != in.TenantID {
		return nil, domain.NotFound("bodega %s no encontrada", in.LocationID)
	}

	order := &entity.Order{
		ID:         uuid.New().String(),
		TenantID:   in.TenantID,
		LocationID: in.LocationID,
		Reference:  in.Reference,
		CreatedBy:  in.ActorID,
		CreatedAt:  now,
	}
	if order.Reference == "" {
		order.Reference = order.ID
	}
	seen := make(map[string]bool, len(in.Lines))
	for _, l := range in.Lines {
		if l.ProductID == "" || !l.Quantity.IsPositive() {
			return nil, domain.Validation("cada línea requiere producto y cantidad positiva")
		}
		if err := entity.CheckQuantity("la cantidad pedida", l.Quantity); err != nil {
			return nil, err
		}
		if seen[l.ProductID] {
			return nil, domain.Validation("producto %s repetido en la orden", l.ProductID)
		}
		seen[l.ProductID] = true
		p, err := uc.catalog.GetProduct(ctx, l.ProductID)
		if err != nil {
			return nil, domain.Internal("no se pudo leer el producto", err)
		}
		if p == nil || p.TenantID != in.TenantID {
			return nil, domain.NotFound("producto %s no encontrado", l.ProductID)
		}
		order.Lines = append(order.Lines, &entity.OrderLine{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Received:  decimal.Zero,
			Status:    entity.OrderLineOpen,
			UpdatedAt: now,
		})
	}
	return order, nil
}

// GetOrder devuelve la orden; NotFound si no existe o es de otra empresa.
func (uc *UseCase) GetOrder(ctx context.Context, tenantID, orderID string) (*entity.Order, error) {
	var order *entity.Order
	err := uc.txRunner.RunReadOnly(ctx, func(repos repository.Repos) error {
		var err error
		order, err = repos.Orders.GetByID(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, inventory.Finish(err)
	}
	if order == nil || order.TenantID != tenantID {
		return nil, domain.NotFound("orden %s no encontrada", orderID)
	}
	return order, nil
}

// ListOpenOrders órdenes con al menos una línea abierta; locationID vacío = todas las bodegas.
func (uc *UseCase) ListOpenOrders(ctx context.Context, tenantID, locationID string) ([]*entity.Order, error) {
	if tenantID == "" {
		return nil, domain.Validation("la empresa es obligatoria")
	}
	var out []*entity.Order
	err := uc.txRunner.RunReadOnly(ctx, func(repos repository.Repos) error {
		var err error
		out, err = repos.Orders.ListOpen(ctx, tenantID, locationID)
		return err
	})
	if err != nil {
		return nil, inventory.Finish(err)
	}
	return out, nil
}

// OpenQuantity cantidad pedida aún no recibida del producto en la bodega.
func (uc *UseCase) OpenQuantity(ctx context.Context, tenantID, productID, locationID string) (decimal.Decimal, error) {
	if tenantID == "" || productID == "" || locationID == "" {
		return decimal.Zero, domain.Validation("empresa, producto y bodega son obligatorios")
	}
	var open decimal.Decimal
	err := uc.txRunner.RunReadOnly(ctx, func(repos repository.Repos) error {
		var err error
		open, err = repos.Orders.OpenQuantity(ctx, tenantID, productID, locationID)
		return err
	})
	if err != nil {
		return decimal.Zero, inventory.Finish(err)
	}
	return open, nil
}

// CancelOrder cancela todas las líneas abiertas; las recibidas quedan como están.
func (uc *UseCase) CancelOrder(ctx context.Context, tenantID, orderID string) (*entity.Order, error) {
	return uc.cancel(ctx, tenantID, orderID, "")
}

// CancelLine cancela una sola línea (solo desde open o partially_received).
func (uc *UseCase) CancelLine(ctx context.Context, tenantID, orderID, lineID string) (*entity.Order, error) {
	if lineID == "" {
		return nil, domain.Validation("la línea es obligatoria")
	}
	return uc.cancel(ctx, tenantID, orderID, lineID)
}

func (uc *UseCase) cancel(ctx context.Context, tenantID, orderID, lineID string) (*entity.Order, error) {
	var order *entity.Order
	err := uc.retry.Do(ctx, func() error {
		return uc.txRunner.Run(ctx, func(repos repository.Repos) error {
			o, err := repos.Orders.GetForUpdate(ctx, orderID)
			if err != nil {
				return err
			}
			if o == nil || o.TenantID != tenantID {
				return domain.NotFound("orden %s no encontrada", orderID)
			}
			now := uc.now()
			if lineID != "" {
				line := o.Line(lineID)
				if line == nil {
					return domain.NotFound("línea %s no encontrada en la orden %s", lineID, orderID)
				}
				if err := line.Cancel(now); err != nil {
					return err
				}
				if err := repos.Orders.UpdateLine(ctx, line); err != nil {
					return err
				}
				order = o
				return nil
			}
			cancelled := 0
			for _, line := range o.Lines {
				if !line.Status.IsOpen() {
					continue
				}
				if err := line.Cancel(now); err != nil {
					return err
				}
				if err := repos.Orders.UpdateLine(ctx, line); err != nil {
					return err
				}
				cancelled++
			}
			if cancelled == 0 {
				return domain.Validation("la orden %s no tiene líneas abiertas", orderID)
			}
			order = o
			return nil
		})
	})
	if err != nil {
		return nil, inventory.Finish(err)
	}
	uc.log.Info().
		Str("tenant_id", tenantID).
		Str("order_id", orderID).
		Str("line_id", lineID).
		Msg("orden de compra cancelada")
	return order, nil
}
