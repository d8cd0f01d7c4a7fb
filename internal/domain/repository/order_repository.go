package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// OrderRepository puerto de órdenes de compra y sus líneas.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	// GetByID devuelve (nil, nil) si la orden no existe.
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetForUpdate igual que GetByID pero bloquea la orden y sus líneas.
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	UpdateLine(ctx context.Context, line *entity.OrderLine) error
	ListOpen(ctx context.Context, tenantID, locationID string) ([]*entity.Order, error)
	// OpenQuantity suma lo pendiente de recibir de las líneas abiertas o parcialmente recibidas.
	OpenQuantity(ctx context.Context, tenantID, productID, locationID string) (decimal.Decimal, error)
}
