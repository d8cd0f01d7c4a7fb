package entity

// Product referencia un producto del catálogo (maestro externo); solo se usa por ID.
type Product struct {
	ID          string
	TenantID    string
	SKU         string
	Name        string
	UnitMeasure string
}
