package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/orders"
	"github.com/jhoicas/Inventario-ledger/internal/application/reorder"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// ReorderHandler reglas de reorden, productos marcados y creación masiva de órdenes.
type ReorderHandler struct {
	uc *reorder.UseCase
}

// NewReorderHandler construye el handler.
func NewReorderHandler(uc *reorder.UseCase) *ReorderHandler {
	return &ReorderHandler{uc: uc}
}

// PutRule godoc
// @Summary      Crear o reemplazar regla de reorden (admin)
// @Tags         reorder
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReorderRuleRequest  true  "Producto, bodega, mínimo y cantidad de reorden"
// @Success      200   {object}  dto.ReorderRuleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/reorder/rules [put]
func (h *ReorderHandler) PutRule(c *fiber.Ctx) error {
	var in dto.CreateReorderRuleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rule, err := h.uc.CreateReorderRule(c.Context(), GetTenantID(c), reorder.RuleInput{
		ProductID:     in.ProductID,
		LocationID:    in.LocationID,
		Minimum:       in.Minimum,
		ReorderAmount: in.ReorderAmount,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reorder.ToRuleResponse(rule))
}

// ListRules godoc
// @Summary      Listar reglas de reorden
// @Tags         reorder
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Bodega (vacío = todas)"
// @Success      200  {array}  dto.ReorderRuleResponse
// @Router       /api/reorder/rules [get]
func (h *ReorderHandler) ListRules(c *fiber.Ctx) error {
	rules, err := h.uc.ListRules(c.Context(), GetTenantID(c), c.Query("location_id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ReorderRuleResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, reorder.ToRuleResponse(r))
	}
	return c.JSON(out)
}

// DeleteRule godoc
// @Summary      Eliminar regla de reorden (admin)
// @Tags         reorder
// @Security     Bearer
// @Param        product_id   path  string  true  "Producto"
// @Param        location_id  path  string  true  "Bodega"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reorder/rules/{product_id}/{location_id} [delete]
func (h *ReorderHandler) DeleteRule(c *fiber.Ctx) error {
	if err := h.uc.DeleteRule(c.Context(), GetTenantID(c), c.Params("product_id"), c.Params("location_id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListFlagged godoc
// @Summary      Productos bajo mínimo con la cantidad recomendada
// @Description  recomendado = max(0, mínimo - stock - pedido abierto); mayor déficit primero.
// @Tags         reorder
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Bodega (vacío = todas)"
// @Success      200  {array}  dto.ReorderRecommendationDTO
// @Router       /api/reorder/flagged [get]
func (h *ReorderHandler) ListFlagged(c *fiber.Ctx) error {
	flagged, err := h.uc.ListFlagged(c.Context(), GetTenantID(c), c.Query("location_id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ReorderRecommendationDTO, 0, len(flagged))
	for _, r := range flagged {
		out = append(out, reorder.ToRecommendationDTO(r))
	}
	return c.JSON(fiber.Map{
		"total":   len(out),
		"flagged": out,
	})
}

// BulkCreateOrders godoc
// @Summary      Crear órdenes de compra a partir de recomendaciones
// @Description  Sin recomendaciones en el body se usan las marcadas actualmente para location_id.
// @Tags         reorder
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkCreateOrdersRequest  true  "Recomendaciones o bodega"
// @Success      201   {object}  dto.OrderListResponse
// @Router       /api/reorder/orders [post]
func (h *ReorderHandler) BulkCreateOrders(c *fiber.Ctx) error {
	var in dto.BulkCreateOrdersRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	tenantID := GetTenantID(c)
	var recs []entity.ReorderRecommendation
	if len(in.Recommendations) > 0 {
		recs = reorder.RecommendationsFromDTO(tenantID, in.Recommendations)
	} else {
		flagged, err := h.uc.ListFlagged(c.Context(), tenantID, in.LocationID)
		if err != nil {
			return respondError(c, err)
		}
		recs = flagged
	}
	created, err := h.uc.BulkCreateOrders(c.Context(), tenantID, GetUserID(c), recs)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(orders.ToOrderListResponse(created))
}
