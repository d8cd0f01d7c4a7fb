package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	tenantID      = "tenant-1"
	otherTenantID = "tenant-2"
	productA      = "prod-a"
	productB      = "prod-b"
	foreignProd   = "prod-foreign"
	loc1          = "loc-1"
	loc2          = "loc-2"
	placement1    = "pl-1"
	placementLoc2 = "pl-2"
	barredPl      = "pl-barred"
	batch1        = "batch-1"
	barredBatch   = "batch-barred"
	actorID       = "user-1"
)

type fixture struct {
	store     *memory.Store
	cfg       inventory.EngineConfig
	movements *inventory.MovementUseCase
	transfers *inventory.TransferUseCase
	queries   *inventory.StockQueryUseCase
}

func testConfig() inventory.EngineConfig {
	cfg := inventory.DefaultEngineConfig()
	cfg.Retry = inventory.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	return cfg
}

// newFixture arma un almacén en memoria con catálogo de dos bodegas y los use cases sobre él.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	seedCatalog(store.Catalog())
	return newFixtureWithRunner(t, store, store, testConfig())
}

func newFixtureWithRunner(t *testing.T, store *memory.Store, runner repository.TxRunner, cfg inventory.EngineConfig) *fixture {
	t.Helper()
	log := logger.Nop()
	return &fixture{
		store:     store,
		cfg:       cfg,
		movements: inventory.NewMovementUseCase(runner, store.Catalog(), store.Settings(), cfg, log),
		transfers: inventory.NewTransferUseCase(runner, store.Catalog(), store.Settings(), cfg, log),
		queries:   inventory.NewStockQueryUseCase(runner, log),
	}
}

func seedCatalog(c *memory.Catalog) {
	c.PutProduct(entity.Product{ID: productA, TenantID: tenantID, SKU: "A", Name: "Producto A", UnitMeasure: "UND"})
	c.PutProduct(entity.Product{ID: productB, TenantID: tenantID, SKU: "B", Name: "Producto B", UnitMeasure: "UND"})
	c.PutProduct(entity.Product{ID: foreignProd, TenantID: otherTenantID, SKU: "X", Name: "Ajeno", UnitMeasure: "UND"})
	c.PutLocation(entity.Location{ID: loc1, TenantID: tenantID, Name: "Bodega 1"})
	c.PutLocation(entity.Location{ID: loc2, TenantID: tenantID, Name: "Bodega 2"})
	c.PutPlacement(entity.Placement{ID: placement1, TenantID: tenantID, LocationID: loc1, Name: "Estante 1"})
	c.PutPlacement(entity.Placement{ID: placementLoc2, TenantID: tenantID, LocationID: loc2, Name: "Estante 2"})
	c.PutPlacement(entity.Placement{ID: barredPl, TenantID: tenantID, LocationID: loc1, Name: "Bloqueado", Barred: true})
	c.PutBatch(entity.Batch{ID: batch1, TenantID: tenantID, LocationID: loc1, Name: "L-001"})
	c.PutBatch(entity.Batch{ID: barredBatch, TenantID: tenantID, LocationID: loc1, Name: "L-BAD", Barred: true})
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fullKey es la tupla (A, loc1, pl1, batch1) de los escenarios.
func fullKey() entity.StockKey {
	return entity.StockKey{TenantID: tenantID, ProductID: productA, LocationID: loc1, PlacementID: placement1, BatchID: batch1}
}

func input(key entity.StockKey, qty string) inventory.MovementInput {
	return inventory.MovementInput{
		TenantID:    key.TenantID,
		ProductID:   key.ProductID,
		LocationID:  key.LocationID,
		PlacementID: key.PlacementID,
		BatchID:     key.BatchID,
		Quantity:    dec(qty),
		ActorID:     actorID,
	}
}

func (f *fixture) receive(t *testing.T, key entity.StockKey, qty string) {
	t.Helper()
	_, err := f.movements.RecordIncoming(context.Background(), input(key, qty))
	require.NoError(t, err)
}

func (f *fixture) stock(t *testing.T, key entity.StockKey) decimal.Decimal {
	t.Helper()
	lvl, err := f.queries.CurrentStock(context.Background(), key)
	require.NoError(t, err)
	return lvl.Quantity
}

func (f *fixture) movementCount(t *testing.T) int {
	t.Helper()
	list, err := f.queries.ListMovements(context.Background(), repository.MovementFilter{TenantID: tenantID}, 500, 0)
	require.NoError(t, err)
	return len(list)
}
