package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateReorderRuleRequest body para PUT /api/reorder/rules.
type CreateReorderRuleRequest struct {
	ProductID     string          `json:"product_id"`
	LocationID    string          `json:"location_id"`
	Minimum       decimal.Decimal `json:"minimum"`
	ReorderAmount decimal.Decimal `json:"reorder_amount"`
}

// ReorderRuleResponse regla de reorden.
type ReorderRuleResponse struct {
	ProductID     string          `json:"product_id"`
	LocationID    string          `json:"location_id"`
	Minimum       decimal.Decimal `json:"minimum"`
	ReorderAmount decimal.Decimal `json:"reorder_amount"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ReorderRecommendationDTO producto bajo mínimo con la cantidad sugerida.
type ReorderRecommendationDTO struct {
	ProductID     string          `json:"product_id"`
	LocationID    string          `json:"location_id"`
	Minimum       decimal.Decimal `json:"minimum"`
	Stock         decimal.Decimal `json:"stock"`
	OpenOrdered   decimal.Decimal `json:"open_ordered"`
	Recommended   decimal.Decimal `json:"recommended"`    // max(0, minimum - stock - open_ordered)
	OrderQuantity decimal.Decimal `json:"order_quantity"` // lo que se pediría
}

// BulkCreateOrdersRequest body para POST /api/reorder/orders.
// Sin recomendaciones: se usan las marcadas actualmente para location_id.
type BulkCreateOrdersRequest struct {
	LocationID      string                     `json:"location_id,omitempty"`
	Recommendations []ReorderRecommendationDTO `json:"recommendations,omitempty"`
}
