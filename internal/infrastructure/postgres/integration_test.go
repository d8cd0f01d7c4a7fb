//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/orders"
	"github.com/jhoicas/Inventario-ledger/internal/application/reorder"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	sharedPool *pgxpool.Pool
	sharedDSN  string
)

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		panic(err)
	}
	sharedDSN, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic(err)
	}
	if _, err := postgres.Migrate(sharedDSN); err != nil {
		panic(err)
	}
	sharedPool, err = postgres.Open(ctx, sharedDSN)
	if err != nil {
		panic(err)
	}

	code := m.Run()

	sharedPool.Close()
	// down + up debe volver a dejar el esquema aplicable
	if code == 0 {
		if err := postgres.MigrateDown(sharedDSN); err != nil {
			fmt.Fprintln(os.Stderr, "migración down:", err)
			code = 1
		} else if _, err := postgres.Migrate(sharedDSN); err != nil {
			fmt.Fprintln(os.Stderr, "migración up tras down:", err)
			code = 1
		}
	}
	_ = container.Terminate(ctx)
	os.Exit(code)
}

const (
	loc1       = "loc-1"
	loc2       = "loc-2"
	placement1 = "pl-1"
	barredPl   = "pl-barred"
	productA   = "prod-a"
)

type env struct {
	tenant    string
	movements *inventory.MovementUseCase
	transfers *inventory.TransferUseCase
	queries   *inventory.StockQueryUseCase
	orders    *orders.UseCase
	reorder   *reorder.UseCase
}

// newEnv siembra un catálogo propio por prueba: cada prueba usa su empresa, sin limpiar tablas.
func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	tenant := "tenant-" + t.Name()

	catalog := postgres.NewCatalogRepository(sharedPool)
	settings := postgres.NewSettingsRepository(sharedPool)
	id := func(s string) string { return tenant + "/" + s }

	require.NoError(t, catalog.UpsertProduct(ctx, entity.Product{ID: id(productA), TenantID: tenant, SKU: "A", Name: "Producto A", UnitMeasure: "UND"}))
	require.NoError(t, catalog.UpsertLocation(ctx, entity.Location{ID: id(loc1), TenantID: tenant, Name: "Principal"}))
	require.NoError(t, catalog.UpsertLocation(ctx, entity.Location{ID: id(loc2), TenantID: tenant, Name: "Secundaria"}))
	require.NoError(t, catalog.UpsertPlacement(ctx, entity.Placement{ID: id(placement1), TenantID: tenant, LocationID: id(loc1), Name: "A-01"}))
	require.NoError(t, catalog.UpsertPlacement(ctx, entity.Placement{ID: id(barredPl), TenantID: tenant, LocationID: id(loc1), Name: "X-99", Barred: true}))

	log := logger.Nop()
	runner := postgres.NewTxRunner(sharedPool, 2*time.Second)
	cfg := inventory.DefaultEngineConfig()
	orderUC := orders.NewUseCase(runner, catalog, cfg.Retry, log)
	return &env{
		tenant:    tenant,
		movements: inventory.NewMovementUseCase(runner, catalog, settings, cfg, log),
		transfers: inventory.NewTransferUseCase(runner, catalog, settings, cfg, log),
		queries:   inventory.NewStockQueryUseCase(runner, log),
		orders:    orderUC,
		reorder:   reorder.NewUseCase(runner, catalog, orderUC, log),
	}
}

func (e *env) id(s string) string { return e.tenant + "/" + s }

func (e *env) input(loc, qty string) inventory.MovementInput {
	return inventory.MovementInput{
		TenantID:   e.tenant,
		ProductID:  e.id(productA),
		LocationID: e.id(loc),
		Quantity:   decimal.RequireFromString(qty),
	}
}

func (e *env) stock(t *testing.T, loc string) decimal.Decimal {
	t.Helper()
	lvl, err := e.queries.CurrentStock(context.Background(), entity.StockKey{
		TenantID: e.tenant, ProductID: e.id(productA), LocationID: e.id(loc),
	})
	require.NoError(t, err)
	return lvl.Quantity
}

func TestIncomingOutgoing_AndInsufficientStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.movements.RecordIncoming(ctx, e.input(loc1, "10"))
	require.NoError(t, err)
	_, err = e.movements.RecordOutgoing(ctx, e.input(loc1, "4"))
	require.NoError(t, err)

	_, err = e.movements.RecordOutgoing(ctx, e.input(loc1, "7"))
	require.Error(t, err)
	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.True(t, insufficient.Available.Equal(decimal.NewFromInt(6)))

	assert.True(t, e.stock(t, loc1).Equal(decimal.NewFromInt(6)))

	report, err := e.queries.Verify(ctx, e.tenant)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	assert.Equal(t, 2, report.Movements)
}

func TestBarredPlacementRejected(t *testing.T) {
	e := newEnv(t)
	in := e.input(loc1, "1")
	in.PlacementID = e.id(barredPl)
	_, err := e.movements.RecordIncoming(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransfer_Atomic(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.movements.RecordIncoming(ctx, e.input(loc1, "10"))
	require.NoError(t, err)

	res, err := e.transfers.Transfer(ctx, inventory.TransferInput{
		TenantID: e.tenant,
		From:     entity.StockKey{ProductID: e.id(productA), LocationID: e.id(loc1)},
		To:       entity.StockKey{ProductID: e.id(productA), LocationID: e.id(loc2)},
		Quantity: decimal.NewFromInt(3),
	})
	require.NoError(t, err)
	assert.True(t, e.stock(t, loc1).Equal(decimal.NewFromInt(7)))
	assert.True(t, e.stock(t, loc2).Equal(decimal.NewFromInt(3)))

	legs, err := e.queries.MovementsByReference(ctx, e.tenant, res.Reference)
	require.NoError(t, err)
	assert.Len(t, legs, 2)

	_, err = e.transfers.Transfer(ctx, inventory.TransferInput{
		TenantID: e.tenant,
		From:     entity.StockKey{ProductID: e.id(productA), LocationID: e.id(loc2)},
		To:       entity.StockKey{ProductID: e.id(productA), LocationID: e.id(loc1)},
		Quantity: decimal.NewFromInt(4),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, e.stock(t, loc2).Equal(decimal.NewFromInt(3)))
}

// Envíos simultáneos del mismo traslado: solo uno anexa patas.
func TestTransfer_ConcurrentSameReference(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.movements.RecordIncoming(ctx, e.input(loc1, "10"))
	require.NoError(t, err)

	in := inventory.TransferInput{
		TenantID:  e.tenant,
		From:      entity.StockKey{ProductID: e.id(productA), LocationID: e.id(loc1)},
		To:        entity.StockKey{ProductID: e.id(productA), LocationID: e.id(loc2)},
		Quantity:  decimal.NewFromInt(2),
		Reference: "TR-X",
	}
	var ok, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.transfers.Transfer(ctx, in)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInvalidInput):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(4), rejected.Load())
	assert.True(t, e.stock(t, loc1).Equal(decimal.NewFromInt(8)))

	incoming := e.input(loc1, "1")
	incoming.Reference = "TR-X"
	_, err = e.movements.RecordIncoming(ctx, incoming)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	legs, err := e.queries.MovementsByReference(ctx, e.tenant, "TR-X")
	require.NoError(t, err)
	assert.Len(t, legs, 2)
}

func TestConcurrentOutgoing_NeverNegative(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.movements.RecordIncoming(ctx, e.input(loc1, "25"))
	require.NoError(t, err)

	var (
		wg sync.WaitGroup
		ok atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.movements.RecordOutgoing(ctx, e.input(loc1, "2")); err == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(12), ok.Load())
	assert.True(t, e.stock(t, loc1).Equal(decimal.NewFromInt(1)))

	report, err := e.queries.Verify(ctx, e.tenant)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
}

func TestConcurrentCrossingTransfers_NoDeadlock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.movements.RecordIncoming(ctx, e.input(loc1, "50"))
	require.NoError(t, err)
	_, err = e.movements.RecordIncoming(ctx, e.input(loc2, "50"))
	require.NoError(t, err)

	a := entity.StockKey{ProductID: e.id(productA), LocationID: e.id(loc1)}
	b := entity.StockKey{ProductID: e.id(productA), LocationID: e.id(loc2)}

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := e.transfers.Transfer(ctx, inventory.TransferInput{TenantID: e.tenant, From: a, To: b, Quantity: decimal.NewFromInt(1)})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := e.transfers.Transfer(ctx, inventory.TransferInput{TenantID: e.tenant, From: b, To: a, Quantity: decimal.NewFromInt(1)})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	total := e.stock(t, loc1).Add(e.stock(t, loc2))
	assert.True(t, total.Equal(decimal.NewFromInt(100)))
}

func TestReorderAndOrderReconciliation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.movements.RecordIncoming(ctx, e.input(loc1, "5"))
	require.NoError(t, err)
	_, err = e.reorder.CreateReorderRule(ctx, e.tenant, reorder.RuleInput{
		ProductID: e.id(productA), LocationID: e.id(loc1),
		Minimum: decimal.NewFromInt(20), ReorderAmount: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	flagged, err := e.reorder.ListFlagged(ctx, e.tenant, "")
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.True(t, flagged[0].Recommended.Equal(decimal.NewFromInt(15)))

	created, err := e.reorder.BulkCreateOrders(ctx, e.tenant, "actor", flagged)
	require.NoError(t, err)
	require.Len(t, created, 1)
	order := created[0]
	require.Len(t, order.Lines, 1)

	flagged, err = e.reorder.ListFlagged(ctx, e.tenant, "")
	require.NoError(t, err)
	assert.Empty(t, flagged)

	in := e.input(loc1, "6")
	in.OrderID = order.ID
	in.OrderLineID = order.Lines[0].ID
	_, err = e.movements.RecordIncoming(ctx, in)
	require.NoError(t, err)

	got, err := e.orders.GetOrder(ctx, e.tenant, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderLinePartiallyReceived, got.Lines[0].Status)

	open, err := e.orders.OpenQuantity(ctx, e.tenant, e.id(productA), e.id(loc1))
	require.NoError(t, err)
	assert.True(t, open.Equal(got.Lines[0].Quantity.Sub(decimal.NewFromInt(6))))

	_, err = e.orders.CancelOrder(ctx, e.tenant, order.ID)
	require.NoError(t, err)
	open, err = e.orders.OpenQuantity(ctx, e.tenant, e.id(productA), e.id(loc1))
	require.NoError(t, err)
	assert.True(t, open.IsZero())
}

func TestRebuild_RestoresProjection(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.movements.RecordIncoming(ctx, e.input(loc1, "9"))
	require.NoError(t, err)

	// Deriva forzada: la proyección se corrompe por fuera del motor.
	_, err = sharedPool.Exec(ctx, `UPDATE stock_levels SET quantity = 1 WHERE tenant_id = $1`, e.tenant)
	require.NoError(t, err)

	report, err := e.queries.Verify(ctx, e.tenant)
	require.NoError(t, err)
	assert.Len(t, report.Drifts, 1)

	_, err = e.queries.Rebuild(ctx, e.tenant)
	require.NoError(t, err)
	assert.True(t, e.stock(t, loc1).Equal(decimal.NewFromInt(9)))

	report, err = e.queries.Verify(ctx, e.tenant)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
}

func TestLedgerIsAppendOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.movements.RecordIncoming(ctx, e.input(loc1, "1"))
	require.NoError(t, err)

	_, err = sharedPool.Exec(ctx, `UPDATE inventory_movements SET delta = 100 WHERE tenant_id = $1`, e.tenant)
	assert.Error(t, err)
	_, err = sharedPool.Exec(ctx, `DELETE FROM inventory_movements WHERE tenant_id = $1`, e.tenant)
	assert.Error(t, err)
}

func TestSettingsOverrideDimensionPolicy(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	settings := postgres.NewSettingsRepository(sharedPool)
	require.NoError(t, settings.PutDimensionPolicy(ctx, e.tenant, entity.DimensionPolicy{PlacementRequired: true}))

	_, err := e.movements.RecordIncoming(ctx, e.input(loc1, "1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in := e.input(loc1, "1")
	in.PlacementID = e.id(placement1)
	_, err = e.movements.RecordIncoming(ctx, in)
	require.NoError(t, err)
}

var _ repository.TxRunner = (*postgres.TxRunner)(nil)
