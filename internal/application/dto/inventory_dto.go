package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementRequest body para POST /api/inventory/movements/{incoming|outgoing|adjustment}.
// placement_id y batch_id omitidos = bucket por defecto de la bodega.
type MovementRequest struct {
	ProductID   string          `json:"product_id"`
	LocationID  string          `json:"location_id"`
	PlacementID string          `json:"placement_id,omitempty"`
	BatchID     string          `json:"batch_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reference   string          `json:"reference,omitempty"`
	Note        string          `json:"note,omitempty"`
	OrderID     string          `json:"order_id,omitempty"`      // solo entradas
	OrderLineID string          `json:"order_line_id,omitempty"` // solo entradas
}

// TransferRequest body para POST /api/inventory/transfers.
type TransferRequest struct {
	ProductID       string          `json:"product_id"`
	FromLocationID  string          `json:"from_location_id"`
	FromPlacementID string          `json:"from_placement_id,omitempty"`
	FromBatchID     string          `json:"from_batch_id,omitempty"`
	ToLocationID    string          `json:"to_location_id"`
	ToPlacementID   string          `json:"to_placement_id,omitempty"`
	ToBatchID       string          `json:"to_batch_id,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	Reference       string          `json:"reference,omitempty"`
	Note            string          `json:"note,omitempty"`
}

// MovementResponse un registro del libro.
type MovementResponse struct {
	ID          int64           `json:"id"`
	ProductID   string          `json:"product_id"`
	LocationID  string          `json:"location_id"`
	PlacementID string          `json:"placement_id"`
	BatchID     string          `json:"batch_id"`
	Kind        string          `json:"kind"`
	Delta       decimal.Decimal `json:"delta"`
	Reference   string          `json:"reference"`
	OrderID     string          `json:"order_id,omitempty"`
	OrderLineID string          `json:"order_line_id,omitempty"`
	ActorID     string          `json:"actor_id"`
	Note        string          `json:"note,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// MovementListResponse página del libro.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// TransferResponse las dos patas del traslado.
type TransferResponse struct {
	Reference string           `json:"reference"`
	Out       MovementResponse `json:"out"`
	In        MovementResponse `json:"in"`
}

// StockLevelResponse stock de una tupla.
type StockLevelResponse struct {
	ProductID   string          `json:"product_id"`
	LocationID  string          `json:"location_id"`
	PlacementID string          `json:"placement_id"`
	BatchID     string          `json:"batch_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Version     int64           `json:"version"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StockListResponse listado de tuplas.
type StockListResponse struct {
	Items []StockLevelResponse `json:"items"`
}

// DriftResponse tupla cuya proyección difiere del replay.
type DriftResponse struct {
	ProductID   string          `json:"product_id"`
	LocationID  string          `json:"location_id"`
	PlacementID string          `json:"placement_id"`
	BatchID     string          `json:"batch_id"`
	Ledger      decimal.Decimal `json:"ledger"`
	Projected   decimal.Decimal `json:"projected"`
}

// VerifyResponse resultado de verificar o reconstruir la proyección.
type VerifyResponse struct {
	TenantID   string          `json:"tenant_id"`
	Movements  int             `json:"movements"`
	Tuples     int             `json:"tuples"`
	Consistent bool            `json:"consistent"`
	Drifts     []DriftResponse `json:"drifts"`
}
