package orders

import (
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// InputFromRequest adapta el request HTTP a CreateOrderInput.
func InputFromRequest(tenantID, actorID string, in dto.CreateOrderRequest) CreateOrderInput {
	lines := make([]LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, LineInput{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return CreateOrderInput{
		TenantID:   tenantID,
		LocationID: in.LocationID,
		Reference:  in.Reference,
		ActorID:    actorID,
		Lines:      lines,
	}
}

// ToOrderResponse convierte una orden con sus líneas.
func ToOrderResponse(o *entity.Order) dto.OrderResponse {
	out := dto.OrderResponse{
		ID:         o.ID,
		LocationID: o.LocationID,
		Reference:  o.Reference,
		Status:     string(o.Status()),
		CreatedBy:  o.CreatedBy,
		CreatedAt:  o.CreatedAt,
		Lines:      make([]dto.OrderLineResponse, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, dto.OrderLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			Received:    l.Received,
			Outstanding: l.Outstanding(),
			Status:      string(l.Status),
			UpdatedAt:   l.UpdatedAt,
		})
	}
	return out
}

// ToOrderListResponse convierte un listado.
func ToOrderListResponse(list []*entity.Order) dto.OrderListResponse {
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, ToOrderResponse(o))
	}
	return dto.OrderListResponse{Items: items}
}
