package entity

import (
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// OrderLineStatus estado de una línea de orden de compra.
// open → partially_received → received; cancelled solo desde open o partially_received.
type OrderLineStatus string

const (
	OrderLineOpen              OrderLineStatus = "open"
	OrderLinePartiallyReceived OrderLineStatus = "partially_received"
	OrderLineReceived          OrderLineStatus = "received"
	OrderLineCancelled         OrderLineStatus = "cancelled"
)

// IsOpen indica si la línea aún cuenta como cantidad pedida abierta.
func (s OrderLineStatus) IsOpen() bool {
	return s == OrderLineOpen || s == OrderLinePartiallyReceived
}

// Order orden de compra colocada para una bodega.
type Order struct {
	ID         string
	TenantID   string
	LocationID string
	Reference  string
	CreatedBy  string
	CreatedAt  time.Time
	Lines      []*OrderLine
}

// Status resume el estado de la orden a partir de sus líneas.
func (o *Order) Status() OrderLineStatus {
	var open, partial, received int
	for _, l := range o.Lines {
		switch l.Status {
		case OrderLineOpen:
			open++
		case OrderLinePartiallyReceived:
			partial++
		case OrderLineReceived:
			received++
		}
	}
	switch {
	case partial > 0 || (open > 0 && received > 0):
		return OrderLinePartiallyReceived
	case open > 0:
		return OrderLineOpen
	case received > 0:
		return OrderLineReceived
	default:
		return OrderLineCancelled
	}
}

// Line busca una línea por ID.
func (o *Order) Line(id string) *OrderLine {
	for _, l := range o.Lines {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// OrderLine cantidad pedida de un producto y lo recibido hasta ahora.
type OrderLine struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  decimal.Decimal
	Received  decimal.Decimal
	Status    OrderLineStatus
	UpdatedAt time.Time
}

// Outstanding cantidad aún pendiente de recibir; cero si la línea ya no está abierta.
func (l *OrderLine) Outstanding() decimal.Decimal {
	if !l.Status.IsOpen() {
		return decimal.Zero
	}
	rest := l.Quantity.Sub(l.Received)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// Receive concilia una entrada contra la línea. Monótono: nunca retrocede de estado.
func (l *OrderLine) Receive(qty decimal.Decimal, at time.Time) error {
	if !qty.IsPositive() {
		return domain.Validation("la cantidad recibida debe ser positiva")
	}
	if !l.Status.IsOpen() {
		return domain.Validation("la línea %s está en estado %s y no admite recepciones", l.ID, l.Status)
	}
	l.Received = l.Received.Add(qty)
	if l.Received.GreaterThanOrEqual(l.Quantity) {
		l.Status = OrderLineReceived
	} else {
		l.Status = OrderLinePartiallyReceived
	}
	l.UpdatedAt = at
	return nil
}

// Cancel cierra la línea sin recepción adicional.
func (l *OrderLine) Cancel(at time.Time) error {
	if !l.Status.IsOpen() {
		return domain.Validation("la línea %s está en estado %s y no puede cancelarse", l.ID, l.Status)
	}
	l.Status = OrderLineCancelled
	l.UpdatedAt = at
	return nil
}
