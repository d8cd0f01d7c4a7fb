package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel representa el stock actual de una tupla (proyección materializada del libro).
// Quantity siempre es igual a la suma de los Delta de los movimientos de la tupla.
type StockLevel struct {
	Key       StockKey
	Quantity  decimal.Decimal
	Version   int64
	UpdatedAt time.Time
}
