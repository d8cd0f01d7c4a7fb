package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReorderRule mínimo por (producto, bodega) y cantidad de pedido configurada.
type ReorderRule struct {
	TenantID      string
	ProductID     string
	LocationID    string
	Minimum       decimal.Decimal
	ReorderAmount decimal.Decimal
	UpdatedAt     time.Time
}

// ReorderRecommendation resultado del motor de reorden para un producto bajo mínimo.
// Recommended = max(0, Minimum - Stock - OpenOrdered).
type ReorderRecommendation struct {
	TenantID      string
	ProductID     string
	LocationID    string
	Minimum       decimal.Decimal
	Stock         decimal.Decimal
	OpenOrdered   decimal.Decimal
	Recommended   decimal.Decimal
	OrderQuantity decimal.Decimal // max(Recommended, ReorderAmount)
}

// Recommend aplica la regla sobre el stock y lo ya pedido.
func (r ReorderRule) Recommend(stock, openOrdered decimal.Decimal) ReorderRecommendation {
	recommended := r.Minimum.Sub(stock).Sub(openOrdered)
	if recommended.IsNegative() {
		recommended = decimal.Zero
	}
	orderQty := recommended
	if recommended.IsPositive() && r.ReorderAmount.GreaterThan(recommended) {
		orderQty = r.ReorderAmount
	}
	return ReorderRecommendation{
		TenantID:      r.TenantID,
		ProductID:     r.ProductID,
		LocationID:    r.LocationID,
		Minimum:       r.Minimum,
		Stock:         stock,
		OpenOrdered:   openOrdered,
		Recommended:   recommended,
		OrderQuantity: orderQty,
	}
}
