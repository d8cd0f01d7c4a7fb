package entity

import "time"

// Location representa una bodega o sede física de la empresa.
type Location struct {
	ID        string
	TenantID  string
	Name      string
	CreatedAt time.Time
}

// Placement es una ubicación (estante, bin) dentro de exactamente una bodega.
// Barred excluye la ubicación de nuevos movimientos; el stock existente sigue siendo válido.
type Placement struct {
	ID         string
	TenantID   string
	LocationID string
	Name       string
	Barred     bool
}

// Batch es un lote (vencimiento) dentro de exactamente una bodega. Misma semántica de Barred.
type Batch struct {
	ID         string
	TenantID   string
	LocationID string
	Name       string
	ExpiresAt  *time.Time
	Barred     bool
}
