package entity

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultBucket identifica la ubicación/lote por defecto de una bodega cuando el movimiento
// no especifica placement o batch. Es un valor concreto (UUID nulo), nunca NULL en la BD,
// para que la consulta de stock sea una función total sobre las tuplas.
var DefaultBucket = uuid.Nil.String()

// StockKey es la tupla (producto, bodega, ubicación, lote) de una empresa.
type StockKey struct {
	TenantID    string
	ProductID   string
	LocationID  string
	PlacementID string
	BatchID     string
}

// Normalize resuelve placement/batch vacíos al DefaultBucket.
func (k StockKey) Normalize() StockKey {
	if k.PlacementID == "" {
		k.PlacementID = DefaultBucket
	}
	if k.BatchID == "" {
		k.BatchID = DefaultBucket
	}
	return k
}

// HasPlacement indica si la tupla apunta a una ubicación concreta.
func (k StockKey) HasPlacement() bool {
	return k.PlacementID != "" && k.PlacementID != DefaultBucket
}

// HasBatch indica si la tupla apunta a un lote concreto.
func (k StockKey) HasBatch() bool {
	return k.BatchID != "" && k.BatchID != DefaultBucket
}

// Compare ordena lexicográficamente por (tenant, producto, bodega, ubicación, lote).
// Es el orden total usado para adquirir bloqueos sin interbloqueos.
func (k StockKey) Compare(o StockKey) int {
	for _, pair := range [...][2]string{
		{k.TenantID, o.TenantID},
		{k.ProductID, o.ProductID},
		{k.LocationID, o.LocationID},
		{k.PlacementID, o.PlacementID},
		{k.BatchID, o.BatchID},
	} {
		if c := strings.Compare(pair[0], pair[1]); c != 0 {
			return c
		}
	}
	return 0
}

// Less reporta si k va antes que o en el orden total.
func (k StockKey) Less(o StockKey) bool { return k.Compare(o) < 0 }

func (k StockKey) String() string {
	return strings.Join([]string{k.TenantID, k.ProductID, k.LocationID, k.PlacementID, k.BatchID}, "/")
}
