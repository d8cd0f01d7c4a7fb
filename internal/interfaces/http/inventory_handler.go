package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// InventoryHandler maneja movimientos, traslados y consultas del libro (protegido).
type InventoryHandler struct {
	movements *inventory.MovementUseCase
	transfers *inventory.TransferUseCase
	queries   *inventory.StockQueryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(movements *inventory.MovementUseCase, transfers *inventory.TransferUseCase, queries *inventory.StockQueryUseCase) *InventoryHandler {
	return &InventoryHandler{movements: movements, transfers: transfers, queries: queries}
}

type recordFunc func(ctx context.Context, in inventory.MovementInput) (*entity.MovementEntry, error)

func (h *InventoryHandler) record(c *fiber.Ctx, fn recordFunc) error {
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	entry, err := fn(c.Context(), inventory.MovementInputFromRequest(GetTenantID(c), GetUserID(c), in))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inventory.ToMovementResponse(entry))
}

// RecordIncoming godoc
// @Summary      Registrar entrada de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "Tupla, cantidad > 0 y opcionalmente order_id/order_line_id"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/incoming [post]
func (h *InventoryHandler) RecordIncoming(c *fiber.Ctx) error {
	return h.record(c, h.movements.RecordIncoming)
}

// RecordOutgoing godoc
// @Summary      Registrar salida de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "Tupla y cantidad > 0"
// @Success      201   {object}  dto.MovementResponse
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK o CONFLICT"
// @Router       /api/inventory/movements/outgoing [post]
func (h *InventoryHandler) RecordOutgoing(c *fiber.Ctx) error {
	return h.record(c, h.movements.RecordOutgoing)
}

// RecordAdjustment godoc
// @Summary      Registrar ajuste (delta con signo, distinto de cero)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "Tupla y delta"
// @Success      201   {object}  dto.MovementResponse
// @Router       /api/inventory/movements/adjustment [post]
func (h *InventoryHandler) RecordAdjustment(c *fiber.Ctx) error {
	return h.record(c, h.movements.RecordAdjustment)
}

// Transfer godoc
// @Summary      Trasladar stock entre tuplas del mismo producto
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "Origen, destino y cantidad"
// @Success      201   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.transfers.Transfer(c.Context(), inventory.TransferInputFromRequest(GetTenantID(c), GetUserID(c), in))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inventory.ToTransferResponse(res))
}

// CurrentStock godoc
// @Summary      Stock actual de una tupla
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  true   "Producto"
// @Param        location_id   query  string  true   "Bodega"
// @Param        placement_id  query  string  false  "Ubicación (vacío = bucket por defecto)"
// @Param        batch_id      query  string  false  "Lote (vacío = bucket por defecto)"
// @Success      200  {object}  dto.StockLevelResponse
// @Router       /api/inventory/stock/current [get]
func (h *InventoryHandler) CurrentStock(c *fiber.Ctx) error {
	key := entity.StockKey{
		TenantID:    GetTenantID(c),
		ProductID:   c.Query("product_id"),
		LocationID:  c.Query("location_id"),
		PlacementID: c.Query("placement_id"),
		BatchID:     c.Query("batch_id"),
	}
	lvl, err := h.queries.CurrentStock(c.Context(), key)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(inventory.ToStockLevelResponse(lvl))
}

// ListStock godoc
// @Summary      Listar stock por tupla
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto"
// @Param        location_id   query  string  false  "Bodega"
// @Param        include_zero  query  bool    false  "Incluir tuplas en cero"
// @Success      200  {object}  dto.StockListResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) ListStock(c *fiber.Ctx) error {
	filter := repository.StockFilter{
		TenantID:    GetTenantID(c),
		ProductID:   c.Query("product_id"),
		LocationID:  c.Query("location_id"),
		PlacementID: c.Query("placement_id"),
		BatchID:     c.Query("batch_id"),
		IncludeZero: c.QueryBool("include_zero", false),
	}
	levels, err := h.queries.ListStock(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.StockListResponse{Items: make([]dto.StockLevelResponse, 0, len(levels))}
	for _, l := range levels {
		out.Items = append(out.Items, inventory.ToStockLevelResponse(l))
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Listar el libro de movimientos (más recientes primero)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        kind    query  string  false  "incoming|outgoing|adjustment|transfer_out|transfer_in"
// @Param        from    query  string  false  "Desde (RFC3339)"
// @Param        to      query  string  false  "Hasta (RFC3339)"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	filter := repository.MovementFilter{
		TenantID:    GetTenantID(c),
		ProductID:   c.Query("product_id"),
		LocationID:  c.Query("location_id"),
		PlacementID: c.Query("placement_id"),
		BatchID:     c.Query("batch_id"),
		Kind:        entity.MovementKind(c.Query("kind")),
	}
	var err error
	if filter.From, err = queryTime(c, "from"); err != nil {
		return badQuery(c, "from debe ser RFC3339")
	}
	if filter.To, err = queryTime(c, "to"); err != nil {
		return badQuery(c, "to debe ser RFC3339")
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badQuery(c, "limit y offset deben ser enteros")
	}
	page.Limit, page.Offset = inventory.MovementPage(page.Limit, page.Offset)
	entries, err := h.queries.ListMovements(c.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.MovementListResponse{
		Items: make([]dto.MovementResponse, 0, len(entries)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, e := range entries {
		out.Items = append(out.Items, inventory.ToMovementResponse(e))
	}
	return c.JSON(out)
}

// MovementsByReference godoc
// @Summary      Movimientos de una referencia (p. ej. las dos patas de un traslado)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        reference  path  string  true  "Referencia"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventory/movements/reference/{reference} [get]
func (h *InventoryHandler) MovementsByReference(c *fiber.Ctx) error {
	entries, err := h.queries.MovementsByReference(c.Context(), GetTenantID(c), c.Params("reference"))
	if err != nil {
		return respondError(c, err)
	}
	out := dto.MovementListResponse{Items: make([]dto.MovementResponse, 0, len(entries))}
	for _, e := range entries {
		out.Items = append(out.Items, inventory.ToMovementResponse(e))
	}
	return c.JSON(out)
}

// Verify godoc
// @Summary      Verificar la proyección contra el replay del libro
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.VerifyResponse
// @Router       /api/inventory/verify [get]
func (h *InventoryHandler) Verify(c *fiber.Ctx) error {
	report, err := h.queries.Verify(c.Context(), GetTenantID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(inventory.ToVerifyResponse(report))
}

// Rebuild godoc
// @Summary      Reconstruir la proyección desde el libro (admin)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.VerifyResponse
// @Router       /api/inventory/rebuild [post]
func (h *InventoryHandler) Rebuild(c *fiber.Ctx) error {
	report, err := h.queries.Rebuild(c.Context(), GetTenantID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(inventory.ToVerifyResponse(report))
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
