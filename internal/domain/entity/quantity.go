package entity

import (
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// QuantityScale decimales que guarda el libro; las columnas son NUMERIC(20, 6).
const QuantityScale = 6

// MaxQuantity cota exclusiva del valor absoluto de una cantidad (14 dígitos enteros).
var MaxQuantity = decimal.New(1, 20-QuantityScale)

// CheckQuantity rechaza cantidades que el almacenamiento redondearía o no podría representar.
func CheckQuantity(field string, q decimal.Decimal) error {
	if !q.Equal(q.Truncate(QuantityScale)) {
		return domain.Validation("%s admite como máximo %d decimales: %s", field, QuantityScale, q.String())
	}
	if q.Abs().GreaterThanOrEqual(MaxQuantity) {
		return domain.Validation("%s fuera de rango: %s", field, q.String())
	}
	return nil
}
