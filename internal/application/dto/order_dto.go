package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderLineRequest línea de una orden nueva.
type CreateOrderLineRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	LocationID string                   `json:"location_id"`
	Reference  string                   `json:"reference,omitempty"`
	Lines      []CreateOrderLineRequest `json:"lines"`
}

// OrderLineResponse línea con lo recibido y pendiente.
type OrderLineResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Received    decimal.Decimal `json:"received"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Status      string          `json:"status"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OrderResponse orden de compra.
type OrderResponse struct {
	ID         string              `json:"id"`
	LocationID string              `json:"location_id"`
	Reference  string              `json:"reference"`
	Status     string              `json:"status"`
	CreatedBy  string              `json:"created_by"`
	CreatedAt  time.Time           `json:"created_at"`
	Lines      []OrderLineResponse `json:"lines"`
}

// OrderListResponse listado de órdenes.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
}

// OpenQuantityResponse cantidad pedida pendiente de un producto en una bodega.
type OpenQuantityResponse struct {
	ProductID  string          `json:"product_id"`
	LocationID string          `json:"location_id"`
	Open       decimal.Decimal `json:"open"`
}
