package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipos de movimiento del libro de inventario.
type MovementKind string

const (
	MovementIncoming    MovementKind = "incoming"     // entrada
	MovementOutgoing    MovementKind = "outgoing"     // salida
	MovementAdjustment  MovementKind = "adjustment"   // ajuste (regulación)
	MovementTransferOut MovementKind = "transfer_out" // salida por traslado
	MovementTransferIn  MovementKind = "transfer_in"  // entrada por traslado
)

// Valid indica si el tipo pertenece al catálogo.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementIncoming, MovementOutgoing, MovementAdjustment, MovementTransferOut, MovementTransferIn:
		return true
	}
	return false
}

// MovementEntry es un registro inmutable del libro de movimientos.
// Nunca se actualiza ni se borra; las correcciones son nuevos ajustes.
type MovementEntry struct {
	ID          int64
	TenantID    string
	ProductID   string
	LocationID  string
	PlacementID string
	BatchID     string
	Kind        MovementKind
	Delta       decimal.Decimal // positivo entrada/ajuste+, negativo salida
	Reference   string          // compartido por las dos patas de un traslado
	OrderID     string          // opcional: conciliación con órdenes de compra
	OrderLineID string
	ActorID     string
	Note        string
	CreatedAt   time.Time
}

// Key devuelve la tupla de stock afectada por el movimiento.
func (m *MovementEntry) Key() StockKey {
	return StockKey{
		TenantID:    m.TenantID,
		ProductID:   m.ProductID,
		LocationID:  m.LocationID,
		PlacementID: m.PlacementID,
		BatchID:     m.BatchID,
	}
}

// NewMovementEntry arma un movimiento sobre la tupla normalizada.
func NewMovementEntry(key StockKey, kind MovementKind, delta decimal.Decimal, reference, actorID string, at time.Time) *MovementEntry {
	key = key.Normalize()
	return &MovementEntry{
		TenantID:    key.TenantID,
		ProductID:   key.ProductID,
		LocationID:  key.LocationID,
		PlacementID: key.PlacementID,
		BatchID:     key.BatchID,
		Kind:        kind,
		Delta:       delta,
		Reference:   reference,
		ActorID:     actorID,
		CreatedAt:   at,
	}
}
