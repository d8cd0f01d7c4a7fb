package inventory

import (
	"sort"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Ledger acumula movimientos en cantidades por tupla (servicio de dominio puro).
// Stock(tupla) = Σ Delta de los movimientos de esa tupla.
type Ledger struct {
	totals map[entity.StockKey]decimal.Decimal
}

// NewLedger crea un acumulador vacío.
func NewLedger() *Ledger {
	return &Ledger{totals: make(map[entity.StockKey]decimal.Decimal)}
}

// Apply suma el movimiento a su tupla.
func (l *Ledger) Apply(m *entity.MovementEntry) {
	key := m.Key().Normalize()
	l.totals[key] = l.totals[key].Add(m.Delta)
}

// Quantity devuelve lo acumulado para la tupla (cero si no hay movimientos).
func (l *Ledger) Quantity(key entity.StockKey) decimal.Decimal {
	return l.totals[key.Normalize()]
}

// Levels devuelve las cantidades como filas de proyección ordenadas por tupla.
// Las tuplas que suman cero se conservan: tuvieron movimientos.
func (l *Ledger) Levels() []*entity.StockLevel {
	keys := SortKeys(l.keys())
	out := make([]*entity.StockLevel, 0, len(keys))
	for _, k := range keys {
		out = append(out, &entity.StockLevel{Key: k, Quantity: l.totals[k]})
	}
	return out
}

func (l *Ledger) keys() []entity.StockKey {
	keys := make([]entity.StockKey, 0, len(l.totals))
	for k := range l.totals {
		keys = append(keys, k)
	}
	return keys
}

// Fold reproduce una secuencia de movimientos.
func Fold(entries []*entity.MovementEntry) *Ledger {
	l := NewLedger()
	for _, e := range entries {
		l.Apply(e)
	}
	return l
}

// SortKeys ordena in situ según el orden total de StockKey y devuelve el slice.
func SortKeys(keys []entity.StockKey) []entity.StockKey {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Drift describe una tupla cuya proyección no coincide con el replay del libro.
type Drift struct {
	Key       entity.StockKey
	Ledger    decimal.Decimal
	Projected decimal.Decimal
}

// Compare contrasta el replay con la proyección; cualquier diferencia es una deriva.
func Compare(replay *Ledger, projected []*entity.StockLevel) []Drift {
	seen := make(map[entity.StockKey]bool, len(projected))
	var drifts []Drift
	for _, p := range projected {
		key := p.Key.Normalize()
		seen[key] = true
		want := replay.Quantity(key)
		if !want.Equal(p.Quantity) {
			drifts = append(drifts, Drift{Key: key, Ledger: want, Projected: p.Quantity})
		}
	}
	for _, k := range SortKeys(replay.keys()) {
		if seen[k] {
			continue
		}
		if q := replay.totals[k]; !q.IsZero() {
			drifts = append(drifts, Drift{Key: k, Ledger: q, Projected: decimal.Zero})
		}
	}
	return drifts
}
