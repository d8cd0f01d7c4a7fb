package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/orders"
	"github.com/jhoicas/Inventario-ledger/internal/application/reorder"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Movements *inventory.MovementUseCase
	Transfers *inventory.TransferUseCase
	Queries   *inventory.StockQueryUseCase
	Orders    *orders.UseCase
	Reorder   *reorder.UseCase
	JWTSecret string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; la empresa sale del token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	writers := RequireRole(RoleAdmin, RoleBodeguero)
	admins := RequireRole(RoleAdmin)

	// Libro de movimientos y stock
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Movements, deps.Transfers, deps.Queries)
	inv.Post("/movements/incoming", writers, inventoryHandler.RecordIncoming)
	inv.Post("/movements/outgoing", writers, inventoryHandler.RecordOutgoing)
	inv.Post("/movements/adjustment", writers, inventoryHandler.RecordAdjustment)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Get("/movements/reference/:reference", inventoryHandler.MovementsByReference)
	inv.Post("/transfers", writers, inventoryHandler.Transfer)
	inv.Get("/stock", inventoryHandler.ListStock)
	inv.Get("/stock/current", inventoryHandler.CurrentStock)
	inv.Get("/verify", inventoryHandler.Verify)
	inv.Post("/rebuild", admins, inventoryHandler.Rebuild)

	// Reorden
	ro := api.Group("/reorder")
	reorderHandler := NewReorderHandler(deps.Reorder)
	ro.Get("/rules", reorderHandler.ListRules)
	ro.Put("/rules", admins, reorderHandler.PutRule)
	ro.Delete("/rules/:product_id/:location_id", admins, reorderHandler.DeleteRule)
	ro.Get("/flagged", reorderHandler.ListFlagged)
	ro.Post("/orders", writers, reorderHandler.BulkCreateOrders)

	// Órdenes de compra
	ord := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.Orders)
	ord.Get("/", orderHandler.ListOpen)
	ord.Post("/", writers, orderHandler.Create)
	ord.Get("/open-quantity", orderHandler.OpenQuantity)
	ord.Get("/:id", orderHandler.GetByID)
	ord.Post("/:id/cancel", writers, orderHandler.Cancel)
	ord.Post("/:id/lines/:line_id/cancel", writers, orderHandler.CancelLine)
}
