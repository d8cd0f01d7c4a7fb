package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/orders"
)

// OrderHandler órdenes de compra: alta, consulta, cantidad abierta y cancelación.
type OrderHandler struct {
	uc *orders.UseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.UseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden de compra
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Bodega y líneas"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	order, err := h.uc.CreateOrder(c.Context(), orders.InputFromRequest(GetTenantID(c), GetUserID(c), in))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(orders.ToOrderResponse(order))
}

// GetByID godoc
// @Summary      Obtener orden por ID
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	order, err := h.uc.GetOrder(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders.ToOrderResponse(order))
}

// ListOpen godoc
// @Summary      Listar órdenes con líneas abiertas
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Bodega (vacío = todas)"
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) ListOpen(c *fiber.Ctx) error {
	list, err := h.uc.ListOpenOrders(c.Context(), GetTenantID(c), c.Query("location_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders.ToOrderListResponse(list))
}

// OpenQuantity godoc
// @Summary      Cantidad pedida pendiente de un producto en una bodega
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  true  "Producto"
// @Param        location_id  query  string  true  "Bodega"
// @Success      200  {object}  dto.OpenQuantityResponse
// @Router       /api/orders/open-quantity [get]
func (h *OrderHandler) OpenQuantity(c *fiber.Ctx) error {
	productID, locationID := c.Query("product_id"), c.Query("location_id")
	open, err := h.uc.OpenQuantity(c.Context(), GetTenantID(c), productID, locationID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OpenQuantityResponse{ProductID: productID, LocationID: locationID, Open: open})
}

// Cancel godoc
// @Summary      Cancelar las líneas abiertas de una orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	order, err := h.uc.CancelOrder(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders.ToOrderResponse(order))
}

// CancelLine godoc
// @Summary      Cancelar una línea de la orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id       path  string  true  "ID de la orden"
// @Param        line_id  path  string  true  "ID de la línea"
// @Success      200  {object}  dto.OrderResponse
// @Router       /api/orders/{id}/lines/{line_id}/cancel [post]
func (h *OrderHandler) CancelLine(c *fiber.Ctx) error {
	order, err := h.uc.CancelLine(c.Context(), GetTenantID(c), c.Params("id"), c.Params("line_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders.ToOrderResponse(order))
}
