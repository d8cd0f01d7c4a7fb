package inventory

import (
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// MovementInputFromRequest adapta el request HTTP a MovementInput.
// tenantID y actorID vienen del token, nunca del body.
func MovementInputFromRequest(tenantID, actorID string, in dto.MovementRequest) MovementInput {
	return MovementInput{
		TenantID:    tenantID,
		ProductID:   in.ProductID,
		LocationID:  in.LocationID,
		PlacementID: in.PlacementID,
		BatchID:     in.BatchID,
		Quantity:    in.Quantity,
		Reference:   in.Reference,
		ActorID:     actorID,
		Note:        in.Note,
		OrderID:     in.OrderID,
		OrderLineID: in.OrderLineID,
	}
}

// TransferInputFromRequest adapta el request HTTP a TransferInput.
func TransferInputFromRequest(tenantID, actorID string, in dto.TransferRequest) TransferInput {
	return TransferInput{
		TenantID: tenantID,
		From: entity.StockKey{
			ProductID:   in.ProductID,
			LocationID:  in.FromLocationID,
			PlacementID: in.FromPlacementID,
			BatchID:     in.FromBatchID,
		},
		To: entity.StockKey{
			ProductID:   in.ProductID,
			LocationID:  in.ToLocationID,
			PlacementID: in.ToPlacementID,
			BatchID:     in.ToBatchID,
		},
		Quantity:  in.Quantity,
		Reference: in.Reference,
		ActorID:   actorID,
		Note:      in.Note,
	}
}

// ToMovementResponse convierte un registro del libro a su DTO.
func ToMovementResponse(m *entity.MovementEntry) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          m.ID,
		ProductID:   m.ProductID,
		LocationID:  m.LocationID,
		PlacementID: m.PlacementID,
		BatchID:     m.BatchID,
		Kind:        string(m.Kind),
		Delta:       m.Delta,
		Reference:   m.Reference,
		OrderID:     m.OrderID,
		OrderLineID: m.OrderLineID,
		ActorID:     m.ActorID,
		Note:        m.Note,
		CreatedAt:   m.CreatedAt,
	}
}

// ToTransferResponse convierte el resultado de un traslado.
func ToTransferResponse(r *TransferResult) dto.TransferResponse {
	return dto.TransferResponse{
		Reference: r.Reference,
		Out:       ToMovementResponse(r.Out),
		In:        ToMovementResponse(r.In),
	}
}

// ToStockLevelResponse convierte una fila de la proyección.
func ToStockLevelResponse(l *entity.StockLevel) dto.StockLevelResponse {
	return dto.StockLevelResponse{
		ProductID:   l.Key.ProductID,
		LocationID:  l.Key.LocationID,
		PlacementID: l.Key.PlacementID,
		BatchID:     l.Key.BatchID,
		Quantity:    l.Quantity,
		Version:     l.Version,
		UpdatedAt:   l.UpdatedAt,
	}
}

// ToVerifyResponse convierte un reporte de verificación.
func ToVerifyResponse(r *VerifyReport) dto.VerifyResponse {
	out := dto.VerifyResponse{
		TenantID:   r.TenantID,
		Movements:  r.Movements,
		Tuples:     r.Tuples,
		Consistent: r.Consistent(),
		Drifts:     make([]dto.DriftResponse, 0, len(r.Drifts)),
	}
	for _, d := range r.Drifts {
		out.Drifts = append(out.Drifts, dto.DriftResponse{
			ProductID:   d.Key.ProductID,
			LocationID:  d.Key.LocationID,
			PlacementID: d.Key.PlacementID,
			BatchID:     d.Key.BatchID,
			Ledger:      d.Ledger,
			Projected:   d.Projected,
		})
	}
	return out
}
