package reorder

import (
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// ToRuleResponse convierte una regla.
func ToRuleResponse(r *entity.ReorderRule) dto.ReorderRuleResponse {
	return dto.ReorderRuleResponse{
		ProductID:     r.ProductID,
		LocationID:    r.LocationID,
		Minimum:       r.Minimum,
		ReorderAmount: r.ReorderAmount,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ToRecommendationDTO convierte una recomendación.
func ToRecommendationDTO(r entity.ReorderRecommendation) dto.ReorderRecommendationDTO {
	return dto.ReorderRecommendationDTO{
		ProductID:     r.ProductID,
		LocationID:    r.LocationID,
		Minimum:       r.Minimum,
		Stock:         r.Stock,
		OpenOrdered:   r.OpenOrdered,
		Recommended:   r.Recommended,
		OrderQuantity: r.OrderQuantity,
	}
}

// RecommendationsFromDTO reconstruye recomendaciones recibidas por HTTP para la empresa dada.
func RecommendationsFromDTO(tenantID string, in []dto.ReorderRecommendationDTO) []entity.ReorderRecommendation {
	out := make([]entity.ReorderRecommendation, 0, len(in))
	for _, r := range in {
		out = append(out, entity.ReorderRecommendation{
			TenantID:      tenantID,
			ProductID:     r.ProductID,
			LocationID:    r.LocationID,
			Minimum:       r.Minimum,
			Stock:         r.Stock,
			OpenOrdered:   r.OpenOrdered,
			Recommended:   r.Recommended,
			OrderQuantity: r.OrderQuantity,
		})
	}
	return out
}
