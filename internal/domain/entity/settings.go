package entity

// DimensionPolicy indica qué dimensiones de la tupla son obligatorias para una empresa.
// Una dimensión no obligatoria y omitida se resuelve al DefaultBucket.
type DimensionPolicy struct {
	PlacementRequired bool
	BatchRequired     bool
}
