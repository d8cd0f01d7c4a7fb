package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/orders"
	"github.com/jhoicas/Inventario-ledger/internal/application/reorder"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

const (
	apiProduct = "prod-a"
	apiLoc1    = "loc-1"
	apiLoc2    = "loc-2"
)

// newAPI arma la API completa sobre el almacén en memoria con un catálogo mínimo.
func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	c := store.Catalog()
	c.PutProduct(entity.Product{ID: apiProduct, TenantID: testTenantID, SKU: "A", Name: "Producto A", UnitMeasure: "UND"})
	c.PutLocation(entity.Location{ID: apiLoc1, TenantID: testTenantID, Name: "Principal"})
	c.PutLocation(entity.Location{ID: apiLoc2, TenantID: testTenantID, Name: "Secundaria"})

	log := logger.Nop()
	cfg := inventory.DefaultEngineConfig()
	orderUC := orders.NewUseCase(store, c, cfg.Retry, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Movements: inventory.NewMovementUseCase(store, c, store.Settings(), cfg, log),
		Transfers: inventory.NewTransferUseCase(store, c, store.Settings(), cfg, log),
		Queries:   inventory.NewStockQueryUseCase(store, log),
		Orders:    orderUC,
		Reorder:   reorder.NewUseCase(store, c, orderUC, log),
		JWTSecret: testJWTSecret,
	})
	return app
}

// call lanza la petición con un token del rol dado y decodifica la respuesta en out (si no es nil).
func call(t *testing.T, app *fiber.App, role, method, path string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func movement(loc, qty string) dto.MovementRequest {
	return dto.MovementRequest{ProductID: apiProduct, LocationID: loc, Quantity: decimal.RequireFromString(qty)}
}

func TestAPI_IncomingOutgoingAndStock(t *testing.T) {
	app := newAPI(t)

	var created dto.MovementResponse
	status := call(t, app, apphttp.RoleBodeguero, http.MethodPost, "/api/inventory/movements/incoming", movement(apiLoc1, "10"), &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "incoming", created.Kind)
	assert.Equal(t, entity.DefaultBucket, created.PlacementID)
	assert.Equal(t, testUserID, created.ActorID)

	status = call(t, app, apphttp.RoleBodeguero, http.MethodPost, "/api/inventory/movements/outgoing", movement(apiLoc1, "4"), nil)
	require.Equal(t, http.StatusCreated, status)

	var level dto.StockLevelResponse
	status = call(t, app, apphttp.RoleVendedor, http.MethodGet, "/api/inventory/stock/current?product_id=prod-a&location_id=loc-1", nil, &level)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, level.Quantity.Equal(decimal.NewFromInt(6)))

	var list dto.MovementListResponse
	status = call(t, app, apphttp.RoleVendedor, http.MethodGet, "/api/inventory/movements?kind=outgoing", nil, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list.Items, 1)
	assert.True(t, list.Items[0].Delta.Equal(decimal.NewFromInt(-4)))
	assert.Equal(t, 50, list.Page.Limit, "sin limit se informa el límite efectivo")
	assert.Equal(t, 0, list.Page.Offset)

	status = call(t, app, apphttp.RoleVendedor, http.MethodGet, "/api/inventory/movements?limit=9000&offset=-3", nil, &list)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 500, list.Page.Limit)
	assert.Equal(t, 0, list.Page.Offset)
	assert.Len(t, list.Items, 2)
}

func TestAPI_ErrorMapping(t *testing.T) {
	app := newAPI(t)
	require.Equal(t, http.StatusCreated,
		call(t, app, apphttp.RoleAdmin, http.MethodPost, "/api/inventory/movements/incoming", movement(apiLoc1, "2"), nil))

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		code   string
	}{
		{"cantidad cero", "/api/inventory/movements/incoming", movement(apiLoc1, "0"), http.StatusBadRequest, "VALIDATION"},
		{"bodega inexistente", "/api/inventory/movements/incoming", movement("loc-x", "1"), http.StatusNotFound, "NOT_FOUND"},
		{"stock insuficiente", "/api/inventory/movements/outgoing", movement(apiLoc1, "3"), http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"cuerpo inválido", "/api/inventory/movements/incoming", "no-es-un-objeto", http.StatusBadRequest, "INVALID_BODY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errBody dto.ErrorResponse
			status := call(t, app, apphttp.RoleAdmin, http.MethodPost, tt.path, tt.body, &errBody)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, errBody.Code)
		})
	}
}

func TestAPI_VendedorNoPuedeRegistrarMovimientos(t *testing.T) {
	app := newAPI(t)
	var errBody dto.ErrorResponse
	status := call(t, app, apphttp.RoleVendedor, http.MethodPost, "/api/inventory/movements/incoming", movement(apiLoc1, "1"), &errBody)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errBody.Code)
}

func TestAPI_TransferAndReference(t *testing.T) {
	app := newAPI(t)
	require.Equal(t, http.StatusCreated,
		call(t, app, apphttp.RoleAdmin, http.MethodPost, "/api/inventory/movements/incoming", movement(apiLoc1, "10"), nil))

	var res dto.TransferResponse
	status := call(t, app, apphttp.RoleAdmin, http.MethodPost, "/api/inventory/transfers", dto.TransferRequest{
		ProductID:      apiProduct,
		FromLocationID: apiLoc1,
		ToLocationID:   apiLoc2,
		Quantity:       decimal.NewFromInt(3),
		Reference:      "TR-1",
	}, &res)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "TR-1", res.Reference)
	assert.Equal(t, "transfer_out", res.Out.Kind)
	assert.Equal(t, "transfer_in", res.In.Kind)

	var legs dto.MovementListResponse
	require.Equal(t, http.StatusOK,
		call(t, app, apphttp.RoleAdmin, http.MethodGet, "/api/inventory/movements/reference/TR-1", nil, &legs))
	assert.Len(t, legs.Items, 2)

	var stock dto.StockListResponse
	require.Equal(t, http.StatusOK,
		call(t, app, apphttp.RoleAdmin, http.MethodGet, "/api/inventory/stock?product_id=prod-a", nil, &stock))
	require.Len(t, stock.Items, 2)

	var report dto.VerifyResponse
	require.Equal(t, http.StatusOK, call(t, app, apphttp.RoleAdmin, http.MethodGet, "/api/inventory/verify", nil, &report))
	assert.True(t, report.Consistent)
	assert.Equal(t, 3, report.Movements)
}

func TestAPI_ReorderFlow(t *testing.T) {
	app := newAPI(t)

	var rule dto.ReorderRuleResponse
	status := call(t, app, apphttp.RoleAdmin, http.MethodPut, "/api/reorder/rules", dto.CreateReorderRuleRequest{
		ProductID: apiProduct, LocationID: apiLoc1,
		Minimum: decimal.NewFromInt(20), ReorderAmount: decimal.NewFromInt(5),
	}, &rule)
	require.Equal(t, http.StatusOK, status)

	require.Equal(t, http.StatusForbidden, call(t, app, apphttp.RoleBodeguero, http.MethodPut, "/api/reorder/rules", dto.CreateReorderRuleRequest{
		ProductID: apiProduct, LocationID: apiLoc1, Minimum: decimal.NewFromInt(1),
	}, nil))

	require.Equal(t, http.StatusCreated,
		call(t, app, apphttp.RoleAdmin, http.MethodPost, "/api/inventory/movements/incoming", movement(apiLoc1, "8"), nil))

	var flagged struct {
		Total   int                            `json:"total"`
		Flagged []dto.ReorderRecommendationDTO `json:"flagged"`
	}
	require.Equal(t, http.StatusOK, call(t, app, apphttp.RoleVendedor, http.MethodGet, "/api/reorder/flagged", nil, &flagged))
	require.Equal(t, 1, flagged.Total)
	assert.True(t, flagged.Flagged[0].Recommended.Equal(decimal.NewFromInt(12)))

	var created dto.OrderListResponse
	status = call(t, app, apphttp.RoleBodeguero, http.MethodPost, "/api/reorder/orders", dto.BulkCreateOrdersRequest{LocationID: apiLoc1}, &created)
	require.Equal(t, http.StatusCreated, status)
	require.Len(t, created.Items, 1)
	order := created.Items[0]

	var open dto.OpenQuantityResponse
	require.Equal(t, http.StatusOK,
		call(t, app, apphttp.RoleAdmin, http.MethodGet, "/api/orders/open-quantity?product_id=prod-a&location_id=loc-1", nil, &open))
	assert.True(t, open.Open.Equal(decimal.NewFromInt(12)))

	require.Equal(t, http.StatusOK, call(t, app, apphttp.RoleVendedor, http.MethodGet, "/api/reorder/flagged", nil, &flagged))
	assert.Zero(t, flagged.Total)

	receive := movement(apiLoc1, "12")
	receive.OrderID = order.ID
	receive.OrderLineID = order.Lines[0].ID
	require.Equal(t, http.StatusCreated,
		call(t, app, apphttp.RoleBodeguero, http.MethodPost, "/api/inventory/movements/incoming", receive, nil))

	var got dto.OrderResponse
	require.Equal(t, http.StatusOK, call(t, app, apphttp.RoleAdmin, http.MethodGet, "/api/orders/"+order.ID, nil, &got))
	assert.Equal(t, "received", got.Status)

	var errBody dto.ErrorResponse
	status = call(t, app, apphttp.RoleAdmin, http.MethodPost, "/api/orders/"+order.ID+"/cancel", nil, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)

	require.Equal(t, http.StatusNoContent,
		call(t, app, apphttp.RoleAdmin, http.MethodDelete, "/api/reorder/rules/prod-a/loc-1", nil, nil))
	require.Equal(t, http.StatusNotFound,
		call(t, app, apphttp.RoleAdmin, http.MethodDelete, "/api/reorder/rules/prod-a/loc-1", nil, nil))
}

func TestAPI_OrdersCreateAndCancelLine(t *testing.T) {
	app := newAPI(t)

	var order dto.OrderResponse
	status := call(t, app, apphttp.RoleBodeguero, http.MethodPost, "/api/orders", dto.CreateOrderRequest{
		LocationID: apiLoc2,
		Reference:  "PO-7",
		Lines:      []dto.CreateOrderLineRequest{{ProductID: apiProduct, Quantity: decimal.NewFromInt(4)}},
	}, &order)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "open", order.Status)

	var list dto.OrderListResponse
	require.Equal(t, http.StatusOK, call(t, app, apphttp.RoleVendedor, http.MethodGet, "/api/orders?location_id=loc-2", nil, &list))
	assert.Len(t, list.Items, 1)

	var cancelled dto.OrderResponse
	require.Equal(t, http.StatusOK, call(t, app, apphttp.RoleAdmin, http.MethodPost,
		"/api/orders/"+order.ID+"/lines/"+order.Lines[0].ID+"/cancel", nil, &cancelled))
	assert.Equal(t, "cancelled", cancelled.Status)

	require.Equal(t, http.StatusOK, call(t, app, apphttp.RoleVendedor, http.MethodGet, "/api/orders?location_id=loc-2", nil, &list))
	assert.Empty(t, list.Items)

	require.Equal(t, http.StatusNotFound, call(t, app, apphttp.RoleAdmin, http.MethodGet, "/api/orders/no-existe", nil, nil))
}

func TestAPI_SinToken(t *testing.T) {
	app := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/api/inventory/stock", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
